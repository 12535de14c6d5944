package core

import "fmt"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden actor lacks the required role
	ErrOperationForbidden ErrorCode = 100001

	// ErrSelfTransfer sender equals receiver
	ErrSelfTransfer ErrorCode = 100100
	// ErrInvalidAmount non positive or unknown-symbol quantity
	ErrInvalidAmount ErrorCode = 100101
	// ErrSymbolMismatch wrong symbol passed to a rate function
	ErrSymbolMismatch ErrorCode = 100102
	// ErrMemoTooLong memo exceeds 256 bytes
	ErrMemoTooLong ErrorCode = 100103
	// ErrArbitraryTransfer unrecognized receiver and asset combination
	ErrArbitraryTransfer ErrorCode = 100104
	// ErrInvalidAddress bitcoin address failed validation
	ErrInvalidAddress ErrorCode = 100105
	// ErrUnknownToken requested token is not sold here
	ErrUnknownToken ErrorCode = 100106
	// ErrAssetNotAllowed deposited asset is not approved collateral
	ErrAssetNotAllowed ErrorCode = 100107
	// ErrInsufficientBalance overdrawn balance
	ErrInsufficientBalance ErrorCode = 100108
	// ErrWrongRedeemTarget DUSD or DPS sent to the custodian instead of the bank
	ErrWrongRedeemTarget ErrorCode = 100109
	// ErrInvalidTxID external transaction id is not 64 lowercase hex chars
	ErrInvalidTxID ErrorCode = 100110
	// ErrNotImplemented recognized request without a conversion path yet
	ErrNotImplemented ErrorCode = 100111

	// ErrConversionsDisabled main switch is off
	ErrConversionsDisabled ErrorCode = 100200
	// ErrOrderTooLarge order maximum value exceeded
	ErrOrderTooLarge ErrorCode = 100201
	// ErrDayVolumeExceeded total daily volume exceeded
	ErrDayVolumeExceeded ErrorCode = 100202
	// ErrInsufficientLiquidity not enough liquidity for the order
	ErrInsufficientLiquidity ErrorCode = 100203
	// ErrInsufficientCapital bank capital below the hard margin
	ErrInsufficientCapital ErrorCode = 100204
	// ErrLeverageTooHigh hedge share below the hard minimum
	ErrLeverageTooHigh ErrorCode = 100205
	// ErrRedeemNotEnabled equity redemption not enabled yet
	ErrRedeemNotEnabled ErrorCode = 100206
	// ErrEquitySoldOut no equity units left for sale
	ErrEquitySoldOut ErrorCode = 100207

	// ErrVariableNotFound required variable missing from the store
	ErrVariableNotFound ErrorCode = 100300
	// ErrLimitChangeTooEarly band bound changed before the minimum age
	ErrLimitChangeTooEarly ErrorCode = 100301
	// ErrLimitChangeTooLarge band bound moved more than allowed
	ErrLimitChangeTooLarge ErrorCode = 100302
	// ErrPriceOutOfBand price feed value outside the allowed band
	ErrPriceOutOfBand ErrorCode = 100303
	// ErrArbitraryScope scope is not one of the known scopes
	ErrArbitraryScope ErrorCode = 100304

	// ErrOrderNotFound custody order not found
	ErrOrderNotFound ErrorCode = 100400
	// ErrOrderNotNew custody order already left the new state
	ErrOrderNotNew ErrorCode = 100401
	// ErrDuplicateSettlement external transaction id already used
	ErrDuplicateSettlement ErrorCode = 100402
	// ErrCollateralNotAuthorized valuation source not registered
	ErrCollateralNotAuthorized ErrorCode = 100403
)

var errorMsgs = map[ErrorCode]string{
	ErrUnknown:                 "unknown error",
	ErrOperationForbidden:      "operation forbidden",
	ErrSelfTransfer:            "cannot transfer to self",
	ErrInvalidAmount:           "invalid quantity",
	ErrSymbolMismatch:          "symbol mismatch",
	ErrMemoTooLong:             "memo has more than 256 bytes",
	ErrArbitraryTransfer:       "arbitrary transfer to bank account",
	ErrInvalidAddress:          "invalid bitcoin address",
	ErrUnknownToken:            "unknown token requested",
	ErrAssetNotAllowed:         "asset is not approved collateral",
	ErrInsufficientBalance:     "overdrawn balance",
	ErrWrongRedeemTarget:       "for redemption, send DPS and DUSD to the bank account",
	ErrInvalidTxID:             "bad external transaction id",
	ErrNotImplemented:          "not implemented",
	ErrConversionsDisabled:     "anti-hack system is enabled, conversions disabled",
	ErrOrderTooLarge:           "order maximum value exceeded, decrease the size",
	ErrDayVolumeExceeded:       "total daily volume exceeded, try later",
	ErrInsufficientLiquidity:   "there is not enough liquidity for your order",
	ErrInsufficientCapital:     "system needs to increase bank capital",
	ErrLeverageTooHigh:         "minting is not available due to high demand",
	ErrRedeemNotEnabled:        "equity redeem not enabled",
	ErrEquitySoldOut:           "there is no DPS for sale at the moment",
	ErrVariableNotFound:        "variable not found",
	ErrLimitChangeTooEarly:     "limit change requested too early",
	ErrLimitChangeTooLarge:     "max limit change percent exceeded",
	ErrPriceOutOfBand:          "price out of allowed range",
	ErrArbitraryScope:          "arbitrary scope is not allowed",
	ErrOrderNotFound:           "order not found",
	ErrOrderNotNew:             "order is not new",
	ErrDuplicateSettlement:     "duplicate mint or redeem",
	ErrCollateralNotAuthorized: "collateral source not authorized",
}

func (e ErrorCode) String() string {
	if msg, ok := errorMsgs[e]; ok {
		return msg
	}

	return fmt.Sprintf("error %d", int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}

package core

// System stores the fixed account roles of the economy.
type System struct {
	BankAccount      string
	CustodianAccount string
	AdminAccount     string
	DevelAccount     string
	OracleAccount    string
	HedgeAccount     string
	HedgeAddress     string
	Operators        []string
	BitcoinTestnet   bool
	Version          string
}

// IsAdmin is admin
func (s *System) IsAdmin(userID string) bool {
	return userID == s.AdminAccount
}

// IsOracle is the price oracle account
func (s *System) IsOracle(userID string) bool {
	return userID == s.OracleAccount
}

// IsOperator may settle custody orders
func (s *System) IsOperator(userID string) bool {
	if userID == s.CustodianAccount {
		return true
	}

	for _, op := range s.Operators {
		if op == userID {
			return true
		}
	}

	return false
}

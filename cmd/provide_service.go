package cmd

import (
	"deposbank/core"
	balancerservice "deposbank/service/balancer"
	collateralservice "deposbank/service/collateral"
	custodianservice "deposbank/service/custodian"
	rateservice "deposbank/service/rate"
	riskservice "deposbank/service/risk"
	routerservice "deposbank/service/router"
	variableservice "deposbank/service/variable"
)

func provideSystem() *core.System {
	return &core.System{
		BankAccount:      cfg.Accounts.Bank,
		CustodianAccount: cfg.Accounts.Custodian,
		AdminAccount:     cfg.Accounts.Admin,
		DevelAccount:     cfg.Accounts.Devel,
		OracleAccount:    cfg.Accounts.Oracle,
		HedgeAccount:     cfg.Accounts.Hedge,
		HedgeAddress:     cfg.Accounts.HedgeAddress,
		Operators:        cfg.Accounts.Operators,
		BitcoinTestnet:   cfg.App.BitcoinTestnet,
		Version:          rootCmd.Version,
	}
}

func provideRateService(system *core.System, vars core.VariableStore, ledger core.Ledger) core.RateService {
	return rateservice.New(system, vars, ledger)
}

func provideRiskGate(system *core.System, vars core.VariableStore, ledger core.Ledger, orders core.OrderStore) core.RiskGate {
	return riskservice.New(system, vars, ledger, orders, nil)
}

func provideValuator(vars core.VariableStore) core.Valuator {
	return collateralservice.NewValuator(vars)
}

func provideBalancer(system *core.System, vars core.VariableStore, ledger core.Ledger, collaterals core.CollateralStore, valuator core.Valuator) core.Balancer {
	return balancerservice.New(system, vars, ledger, collaterals, valuator)
}

func provideCustodian(system *core.System, ledger core.Ledger, orders core.OrderStore, transfers core.TransferStore) core.Custodian {
	return custodianservice.New(system, ledger, orders, transfers)
}

func provideRouter(
	system *core.System,
	vars core.VariableStore,
	ledger core.Ledger,
	rate core.RateService,
	risk core.RiskGate,
	balancer core.Balancer,
	custodian core.Custodian,
	collaterals core.CollateralStore,
) core.Router {
	return routerservice.New(system, vars, ledger, rate, risk, balancer, custodian, collaterals)
}

func provideVariableService(system *core.System, vars core.VariableStore, balancer core.Balancer) core.VariableService {
	return variableservice.New(system, vars, balancer)
}

func provideAdminService(system *core.System, vars core.VariableStore, ledger core.Ledger, collaterals core.CollateralStore) core.AdminService {
	return collateralservice.New(system, vars, ledger, collaterals)
}

package core

import (
	"github.com/fox-one/pkg/store/db"
)

// Config deposbank config
type Config struct {
	App      App       `json:"app"`
	DB       db.Config `json:"db"`
	Accounts Accounts  `json:"accounts"`
	API      API       `json:"api"`
}

// App app config
type App struct {
	Location       string `json:"location"`
	BitcoinTestnet bool   `json:"bitcoin_testnet"`
}

// Accounts fixed account roles
type Accounts struct {
	Bank         string   `json:"bank"`
	Custodian    string   `json:"custodian"`
	Admin        string   `json:"admin"`
	Devel        string   `json:"devel"`
	Oracle       string   `json:"oracle"`
	Hedge        string   `json:"hedge"`
	HedgeAddress string   `json:"hedge_address"`
	Operators    []string `json:"operators"`
}

// API rest api config
type API struct {
	Port int `json:"port"`
}

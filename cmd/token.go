package cmd

import (
	"deposbank/core"

	"github.com/spf13/cobra"
)

// bootstrap the three bank tokens plus the EOS bridge entry
var initTokensCmd = &cobra.Command{
	Use:   "inittokens",
	Short: "create the bank token set",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		db := provideDatabase()
		defer db.Close()

		system := provideSystem()
		ledger := provideLedger(db)

		for _, symbol := range []core.Symbol{core.SymbolDUSD, core.SymbolDPS, core.SymbolDBTC, core.SymbolEOS} {
			if err := ledger.CreateToken(ctx, symbol, 0, system.BankAccount); err != nil {
				cmd.PrintErrln("create token error:", err)
				return
			}
			cmd.Println("token", symbol, "ready")
		}
	},
}

func init() {
	rootCmd.AddCommand(initTokensCmd)
}

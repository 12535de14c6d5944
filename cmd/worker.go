package cmd

import (
	"deposbank/worker"
	"deposbank/worker/rebalancer"
	"deposbank/worker/teller"

	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "deposbank job worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		db := provideDatabase()
		defer db.Close()

		system := provideSystem()

		propertyStore := providePropertyStore(db)
		variableStore := provideVariableStore(db)
		ledger := provideLedger(db)
		orderStore := provideOrderStore(db)
		transferStore := provideTransferStore(db)
		collateralStore := provideCollateralStore(db)

		rateService := provideRateService(system, variableStore, ledger)
		riskGate := provideRiskGate(system, variableStore, ledger, orderStore)
		valuator := provideValuator(variableStore)
		balancer := provideBalancer(system, variableStore, ledger, collateralStore, valuator)
		custodian := provideCustodian(system, ledger, orderStore, transferStore)
		router := provideRouter(system, variableStore, ledger, rateService, riskGate, balancer, custodian, collateralStore)

		workers := []worker.Worker{
			teller.New(system, propertyStore, transferStore, router),
			rebalancer.New(system, &cfg, variableStore, balancer, custodian),
		}

		g, ctx := errgroup.WithContext(ctx)
		for _, w := range workers {
			w := w
			g.Go(func() error {
				return w.Run(ctx)
			})
		}

		if err := g.Wait(); err != nil {
			log.WithError(err).Error("workers aborted")
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

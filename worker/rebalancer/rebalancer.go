package rebalancer

import (
	"context"
	"time"

	"deposbank/core"
	"deposbank/pkg/number"
	"deposbank/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Worker rebalancer worker. Periodically trues up the stable supply
// and keeps the hedge venue stocked toward its target share.
type Worker struct {
	worker.BaseJob
	system    *core.System
	vars      core.VariableStore
	balancer  core.Balancer
	custodian core.Custodian
}

// New new rebalancer worker
func New(system *core.System, cfg *core.Config, vars core.VariableStore, balancer core.Balancer, custodian core.Custodian) *Worker {
	job := Worker{
		system:    system,
		vars:      vars,
		balancer:  balancer,
		custodian: custodian,
	}

	l, _ := time.LoadLocation(cfg.App.Location)
	job.Cron = cron.New(cron.WithLocation(l))
	spec := "@every 1m"
	job.Cron.AddFunc(spec, job.BaseJob.Run)
	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

// Run run worker
func (w *Worker) Run(ctx context.Context) error {
	w.Cron.Start()
	defer w.Cron.Stop()

	<-ctx.Done()
	return ctx.Err()
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "rebalancer")
	ctx = logger.WithContext(ctx, log)

	if err := w.balancer.Rebalance(ctx); err != nil {
		log.WithError(err).Errorln("rebalance failed")
		return err
	}

	return w.watchHedge(ctx)
}

// watchHedge opens a treasury balancing order whenever the hedge venue
// holds less than its target share of total custody.
func (w *Worker) watchHedge(ctx context.Context) error {
	log := logger.FromContext(ctx)

	target, err := core.OptVar(ctx, w.vars, core.ScopeSystem, core.VarHedgeTarget, 0)
	if err != nil || target <= 0 {
		return err
	}

	hedgeSat, err := core.OptVar(ctx, w.vars, core.ScopePeriodic, core.VarHedgeBTC, 0)
	if err != nil {
		return err
	}
	coldSat, err := core.OptVar(ctx, w.vars, core.ScopePeriodic, core.VarColdBTC, 0)
	if err != nil {
		return err
	}

	total := hedgeSat + coldSat
	if total <= 0 {
		return nil
	}

	want := number.RoundInt64(decimal.New(total, 0).Mul(number.Scaled(target, 10)))
	gap := want - hedgeSat
	if gap <= 0 {
		return nil
	}

	log.Infof("hedge %d satoshi under target, balancing", gap)
	return w.custodian.BalanceHedge(ctx, w.system.BankAccount, gap)
}

package teller

import (
	"context"
	"errors"
	"time"

	"deposbank/core"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
)

const (
	checkpointKey = "transfers_checkpoint"
	limit         = 500
)

var errNoNewRecords = errors.New("no new records")

// Teller drains the incoming transfer queue through the router in
// arrival order, exactly once per record.
type Teller struct {
	system        *core.System
	propertyStore property.Store
	transferStore core.TransferStore
	router        core.Router
}

// New new teller worker
func New(system *core.System, propertyStore property.Store, transferStore core.TransferStore, router core.Router) *Teller {
	return &Teller{
		system:        system,
		propertyStore: propertyStore,
		transferStore: transferStore,
		router:        router,
	}
}

// Run run worker
func (w *Teller) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "teller")
	ctx = logger.WithContext(ctx, log)

	dur := time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
			if err := w.run(ctx); err == nil {
				dur = 100 * time.Millisecond
			} else {
				dur = 500 * time.Millisecond
			}
		}
	}
}

func (w *Teller) run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	v, err := w.propertyStore.Get(ctx, checkpointKey)
	if err != nil {
		log.WithError(err).Errorln("read checkpoint failed")
		return err
	}

	fromID := uint64(v.Int64())
	transfers, err := w.transferStore.List(ctx, fromID, limit)
	if err != nil {
		log.WithError(err).Errorln("list transfers failed")
		return err
	}

	if len(transfers) == 0 {
		return errNoNewRecords
	}

	for _, transfer := range transfers {
		if err := w.handle(ctx, transfer); err != nil {
			return err
		}

		if err := w.propertyStore.Save(ctx, checkpointKey, transfer.ID); err != nil {
			log.WithError(err).Errorln("save checkpoint failed")
			return err
		}
	}

	return nil
}

// handle routes one record. Business rejections are final: they are
// logged and the record is skipped. Anything else aborts the batch so
// the record is retried.
func (w *Teller) handle(ctx context.Context, transfer *core.Transfer) error {
	log := logger.FromContext(ctx).WithField("trace", transfer.TraceID)

	var err error
	if transfer.Deposit {
		err = w.router.ProcessDeposit(ctx, transfer)
	} else {
		err = w.router.ProcessTransfer(ctx, transfer)
	}

	var code core.ErrorCode
	if errors.As(err, &code) {
		log.WithField("code", int(code)).Infof("transfer rejected: %s", code)
		return nil
	}

	return err
}

// Package mem holds in-memory store implementations backing the
// service tests.
package mem

import (
	"context"
	"sync"
	"time"

	"deposbank/core"
)

type varKey struct {
	scope core.Scope
	name  string
}

// VariableStore in-memory core.VariableStore
type VariableStore struct {
	mu   sync.Mutex
	vars map[varKey]*core.Variable
}

func NewVariableStore() *VariableStore {
	return &VariableStore{vars: map[varKey]*core.Variable{}}
}

func (s *VariableStore) Get(ctx context.Context, scope core.Scope, name string) (*core.Variable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vars[varKey{scope, name}]
	if !ok {
		return nil, core.ErrVariableNotFound
	}

	dup := *v
	return &dup, nil
}

func (s *VariableStore) Set(ctx context.Context, scope core.Scope, name string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vars[varKey{scope, name}] = &core.Variable{
		Scope:     scope,
		Name:      name,
		Value:     value,
		UpdatedAt: time.Now(),
	}

	return nil
}

// SetAt seeds a variable with an explicit update time.
func (s *VariableStore) SetAt(scope core.Scope, name string, value int64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vars[varKey{scope, name}] = &core.Variable{
		Scope:     scope,
		Name:      name,
		Value:     value,
		UpdatedAt: at,
	}
}

func (s *VariableStore) Delete(ctx context.Context, scope core.Scope, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.vars, varKey{scope, name})
	return nil
}

func (s *VariableStore) List(ctx context.Context, scope core.Scope) ([]*core.Variable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*core.Variable
	for k, v := range s.vars {
		if k.scope == scope {
			dup := *v
			out = append(out, &dup)
		}
	}

	return out, nil
}

// OrderStore in-memory core.OrderStore
type OrderStore struct {
	mu     sync.Mutex
	nextID uint64
	orders []*core.Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{nextID: 1}
}

func (s *OrderStore) Create(ctx context.Context, order *core.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order.ID = s.nextID
	s.nextID++
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt

	dup := *order
	s.orders = append(s.orders, &dup)
	return nil
}

func (s *OrderStore) Find(ctx context.Context, kind core.OrderKind, id uint64) (*core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.Kind == kind && o.ID == id {
			dup := *o
			return &dup, nil
		}
	}

	return nil, core.ErrOrderNotFound
}

func (s *OrderStore) FindByTxID(ctx context.Context, kind core.OrderKind, txID string) (*core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.Kind == kind && o.TxID == txID {
			dup := *o
			return &dup, nil
		}
	}

	return nil, core.ErrOrderNotFound
}

func (s *OrderStore) Update(ctx context.Context, order *core.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.ID == order.ID {
			o.Status = order.Status
			o.TxID = order.TxID
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return core.ErrOrderNotFound
}

func (s *OrderStore) SumByStatus(ctx context.Context, kind core.OrderKind, userID string, statuses ...core.OrderStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, o := range s.orders {
		if o.Kind != kind {
			continue
		}
		if userID != "" && o.UserID != userID {
			continue
		}
		for _, st := range statuses {
			if o.Status == st {
				total += o.Amount
				break
			}
		}
	}

	return total, nil
}

func (s *OrderStore) List(ctx context.Context, kind core.OrderKind, fromID uint64, limit int) ([]*core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*core.Order
	for _, o := range s.orders {
		if o.Kind == kind && o.ID > fromID {
			dup := *o
			out = append(out, &dup)
			if len(out) == limit {
				break
			}
		}
	}

	return out, nil
}

// TransferStore in-memory core.TransferStore
type TransferStore struct {
	mu        sync.Mutex
	nextID    uint64
	transfers []*core.Transfer
	traces    map[string]bool
}

func NewTransferStore() *TransferStore {
	return &TransferStore{nextID: 1, traces: map[string]bool{}}
}

func (s *TransferStore) Create(ctx context.Context, transfer *core.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.traces[transfer.TraceID] {
		return nil
	}
	s.traces[transfer.TraceID] = true

	transfer.ID = s.nextID
	s.nextID++
	transfer.CreatedAt = time.Now()

	dup := *transfer
	s.transfers = append(s.transfers, &dup)
	return nil
}

func (s *TransferStore) List(ctx context.Context, fromID uint64, limit int) ([]*core.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*core.Transfer
	for _, t := range s.transfers {
		if t.ID > fromID {
			dup := *t
			out = append(out, &dup)
			if len(out) == limit {
				break
			}
		}
	}

	return out, nil
}

// CollateralStore in-memory core.CollateralStore
type CollateralStore struct {
	mu          sync.Mutex
	nextID      uint64
	collaterals []*core.Collateral
}

func NewCollateralStore() *CollateralStore {
	return &CollateralStore{nextID: 1}
}

func (s *CollateralStore) Create(ctx context.Context, collateral *core.Collateral) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.collaterals {
		if c.Contract == collateral.Contract && c.BondID == collateral.BondID {
			return nil
		}
	}

	collateral.ID = s.nextID
	s.nextID++
	collateral.CreatedAt = time.Now()

	dup := *collateral
	s.collaterals = append(s.collaterals, &dup)
	return nil
}

func (s *CollateralStore) Delete(ctx context.Context, contract, bondID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.collaterals {
		if c.Contract == contract && c.BondID == bondID {
			s.collaterals = append(s.collaterals[:i], s.collaterals[i+1:]...)
			return nil
		}
	}

	return nil
}

func (s *CollateralStore) Find(ctx context.Context, contract, bondID string) (*core.Collateral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.collaterals {
		if c.Contract == contract && c.BondID == bondID {
			dup := *c
			return &dup, nil
		}
	}

	return nil, core.ErrCollateralNotAuthorized
}

func (s *CollateralStore) All(ctx context.Context) ([]*core.Collateral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*core.Collateral, 0, len(s.collaterals))
	for _, c := range s.collaterals {
		dup := *c
		out = append(out, &dup)
	}

	return out, nil
}

type balanceKey struct {
	user   string
	symbol core.Symbol
}

// Ledger in-memory core.Ledger
type Ledger struct {
	mu       sync.Mutex
	balances map[balanceKey]int64
	supplies map[core.Symbol]int64
	max      map[core.Symbol]int64
}

func NewLedger() *Ledger {
	return &Ledger{
		balances: map[balanceKey]int64{},
		supplies: map[core.Symbol]int64{},
		max:      map[core.Symbol]int64{},
	}
}

// Deposit seeds a balance directly, bumping supply to match.
func (l *Ledger) Deposit(userID string, quantity core.Asset) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.supplies[quantity.Symbol]; !ok {
		l.supplies[quantity.Symbol] = 0
	}
	l.balances[balanceKey{userID, quantity.Symbol}] += quantity.Amount
	l.supplies[quantity.Symbol] += quantity.Amount
}

func (l *Ledger) CreateToken(ctx context.Context, symbol core.Symbol, maxSupply int64, issuer string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.supplies[symbol]; !ok {
		l.supplies[symbol] = 0
		l.max[symbol] = maxSupply
	}

	return nil
}

func (l *Ledger) Balance(ctx context.Context, userID string, symbol core.Symbol) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.balances[balanceKey{userID, symbol}], nil
}

func (l *Ledger) Supply(ctx context.Context, symbol core.Symbol) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.supplies[symbol], nil
}

func (l *Ledger) Transfer(ctx context.Context, from, to string, quantity core.Asset, memo string) error {
	if !quantity.IsValid() {
		return core.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := balanceKey{from, quantity.Symbol}
	if l.balances[key] < quantity.Amount {
		return core.ErrInsufficientBalance
	}

	l.balances[key] -= quantity.Amount
	l.balances[balanceKey{to, quantity.Symbol}] += quantity.Amount
	return nil
}

func (l *Ledger) Issue(ctx context.Context, to string, quantity core.Asset, memo string) error {
	if !quantity.IsValid() {
		return core.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.supplies[quantity.Symbol]; !ok {
		return core.ErrUnknownToken
	}
	if max := l.max[quantity.Symbol]; max > 0 && l.supplies[quantity.Symbol]+quantity.Amount > max {
		return core.ErrInvalidAmount
	}

	l.supplies[quantity.Symbol] += quantity.Amount
	l.balances[balanceKey{to, quantity.Symbol}] += quantity.Amount
	return nil
}

func (l *Ledger) Retire(ctx context.Context, from string, quantity core.Asset, memo string) error {
	if !quantity.IsValid() {
		return core.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := balanceKey{from, quantity.Symbol}
	if l.balances[key] < quantity.Amount {
		return core.ErrInsufficientBalance
	}

	l.balances[key] -= quantity.Amount
	l.supplies[quantity.Symbol] -= quantity.Amount
	return nil
}

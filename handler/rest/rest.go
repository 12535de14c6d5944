package rest

import (
	"errors"
	"net/http"

	"deposbank/core"
	"deposbank/handler/render"

	"github.com/go-chi/chi"
	"github.com/spf13/cast"
)

// Handle handle rest api request
func Handle(
	system *core.System,
	vars core.VariableStore,
	ledger core.Ledger,
	orders core.OrderStore,
	custodian core.Custodian,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/status", statusHandler(system, vars, ledger))
	router.Get("/orders", ordersHandler(orders))
	router.Get("/orders/{kind}/{id}", orderHandler(orders))
	router.Get("/variables/{scope}", variablesHandler(vars))
	router.Get("/accounts/{user}/balances", balancesHandler(ledger, custodian))

	return router
}

func statusHandler(system *core.System, vars core.VariableStore, ledger core.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		supplies := make(map[string]int64, 3)
		for _, symbol := range []core.Symbol{core.SymbolDUSD, core.SymbolDPS, core.SymbolDBTC} {
			supply, err := ledger.Supply(ctx, symbol)
			if err != nil {
				render.BadRequest(w, err)
				return
			}
			supplies[string(symbol)] = supply
		}

		manual, err := core.OptVar(ctx, vars, core.ScopeSystem, core.VarManualSwitch, 1)
		if err != nil {
			render.BadRequest(w, err)
			return
		}
		service, err := core.OptVar(ctx, vars, core.ScopeSystem, core.VarServiceSwitch, 1)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, render.H{
			"version":  system.Version,
			"supplies": supplies,
			"enabled":  manual != 0 && service != 0,
		})
	}
}

func ordersHandler(orders core.OrderStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		kind := core.OrderKind(r.URL.Query().Get("kind"))
		if kind != core.OrderKindMint && kind != core.OrderKindRedeem {
			render.BadRequest(w, errors.New("invalid kind"))
			return
		}

		fromID := cast.ToUint64(r.URL.Query().Get("from"))
		limit := cast.ToInt(r.URL.Query().Get("limit"))
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		list, err := orders.List(ctx, kind, fromID, limit)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, render.H{"orders": list})
	}
}

func orderHandler(orders core.OrderStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		kind := core.OrderKind(chi.URLParam(r, "kind"))
		id := cast.ToUint64(chi.URLParam(r, "id"))

		order, err := orders.Find(ctx, kind, id)
		if err == core.ErrOrderNotFound {
			render.NotFoundRequest(w, err)
			return
		} else if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, order)
	}
}

func variablesHandler(vars core.VariableStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		scope := core.Scope(chi.URLParam(r, "scope"))
		if !core.CheckScope(scope) {
			render.BadRequest(w, core.ErrArbitraryScope)
			return
		}

		list, err := vars.List(ctx, scope)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, render.H{"variables": list})
	}
}

func balancesHandler(ledger core.Ledger, custodian core.Custodian) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID := chi.URLParam(r, "user")
		if userID == "" {
			render.BadRequest(w, errors.New("invalid user"))
			return
		}

		balances := make(map[string]int64, 4)
		for _, symbol := range []core.Symbol{core.SymbolDUSD, core.SymbolDPS, core.SymbolDBTC, core.SymbolEOS} {
			balance, err := ledger.Balance(ctx, userID, symbol)
			if err != nil {
				render.BadRequest(w, err)
				return
			}
			if balance != 0 {
				balances[string(symbol)] = balance
			}
		}

		inflight, err := custodian.InFlight(ctx, userID)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, render.H{
			"balances":  balances,
			"in_flight": inflight,
		})
	}
}

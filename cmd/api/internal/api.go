package internal

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	datafeed "github.com/fazecat/squeezescope/Internal/database"
	"github.com/fazecat/squeezescope/Internal/database/watchlist"
	"github.com/fazecat/squeezescope/Internal/handlers"
)

type API struct {
	Screener *handlers.Screener
	Logger   *zap.Logger
}

type symbolRequest struct {
	Symbol string `json:"symbol"`
}

// Routes mounts the screener endpoints on r.
func (api *API) Routes(r chi.Router) {
	r.Get("/tickers", api.HandleGetTickers)
	r.Get("/tickers/{symbol}", api.HandleGetTicker)
	r.Get("/columns", api.HandleGetColumns)

	r.Get("/watchlist", api.HandleGetWatchlist)
	r.Post("/watchlist", api.HandleAddToWatchlist)
	r.Delete("/watchlist", api.HandleRemoveFromWatchlist)
	r.Get("/watchlist/rows", api.HandleGetWatchlistRows)
	r.Post("/watchlist/{symbol}/toggle", api.HandleToggleWatchlist)
}

// HandleGetTickers decodes the screener query, runs the pipeline and returns
// the canonical query alongside the rows.
func (api *API) HandleGetTickers(w http.ResponseWriter, r *http.Request) {
	res, err := api.Screener.ScreenQuery(r.Context(), r.URL.Query())
	if err != nil {
		api.writeFetchError(w, "Failed to fetch tickers", err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (api *API) HandleGetTicker(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	view, err := api.Screener.Detail(r.Context(), symbol)
	if err != nil {
		api.writeFetchError(w, "Failed to fetch "+datafeed.NormalizeSymbol(symbol), err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

func (api *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := api.Screener.Health(r.Context()); err != nil {
		api.Logger.Warn("health check failed", zap.Error(err))
		WriteError(w, http.StatusServiceUnavailable, "watchlist store unavailable")
		return
	}
	WriteJSON(w, http.StatusOK, "healthy")
}

func (api *API) HandleGetColumns(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, api.Screener.Columns())
}

func (api *API) HandleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tickers": api.Screener.Watchlist().List(),
	})
}

func (api *API) HandleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	symbol, ok := readSymbol(w, r)
	if !ok {
		return
	}
	if err := api.Screener.Watchlist().Add(r.Context(), symbol); err != nil {
		api.writeWatchlistError(w, err)
		return
	}
	api.HandleGetWatchlist(w, r)
}

func (api *API) HandleRemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		var ok bool
		if symbol, ok = readSymbol(w, r); !ok {
			return
		}
	}
	if err := api.Screener.Watchlist().Remove(r.Context(), symbol); err != nil {
		api.writeWatchlistError(w, err)
		return
	}
	api.HandleGetWatchlist(w, r)
}

func (api *API) HandleToggleWatchlist(w http.ResponseWriter, r *http.Request) {
	symbol := datafeed.NormalizeSymbol(chi.URLParam(r, "symbol"))
	on, err := api.Screener.Watchlist().Toggle(r.Context(), symbol)
	if err != nil {
		api.writeWatchlistError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  symbol,
		"watched": on,
		"tickers": api.Screener.Watchlist().List(),
	})
}

func (api *API) HandleGetWatchlistRows(w http.ResponseWriter, r *http.Request) {
	view, err := api.Screener.WatchlistRows(r.Context())
	if err != nil {
		api.writeFetchError(w, "Failed to fetch watchlist", err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

func readSymbol(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req symbolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return "", false
	}
	symbol := datafeed.NormalizeSymbol(req.Symbol)
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return "", false
	}
	return symbol, true
}

func (api *API) writeFetchError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, datafeed.ErrNotFound):
		WriteError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, datafeed.ErrEmptySymbol):
		WriteError(w, http.StatusBadRequest, "symbol is required")
	default:
		api.Logger.Error(msg, zap.Error(err))
		WriteError(w, http.StatusBadGateway, msg)
	}
}

func (api *API) writeWatchlistError(w http.ResponseWriter, err error) {
	if errors.Is(err, watchlist.ErrFull) {
		WriteError(w, http.StatusConflict, err.Error())
		return
	}
	api.Logger.Error("watchlist update failed", zap.Error(err))
	WriteError(w, http.StatusInternalServerError, "Failed to update watchlist")
}

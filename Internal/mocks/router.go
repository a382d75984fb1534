package mocks

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fazecat/squeezescope/Internal/types"
)

// Router serves GET /tickers and GET /tickers/{symbol}. Pass
// ?shape=wrapped on the list route to get {"rows": [...]} instead of a bare
// array.
func (f *Fixtures) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/tickers", func(w http.ResponseWriter, r *http.Request) {
		rows := f.Rows()
		if r.URL.Query().Get("shape") == "wrapped" {
			writeJSON(w, http.StatusOK, types.WrappedRows(rows))
			return
		}
		writeJSON(w, http.StatusOK, types.BareRows(rows))
	})

	r.Get("/tickers/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		m, ok := f.Lookup(chi.URLParam(r, "symbol"))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
			return
		}
		writeJSON(w, http.StatusOK, m)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

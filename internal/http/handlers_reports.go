package http

import (
	"errors"
	"log/slog"
	"net/http"

	"tally/internal/query"
	"tally/internal/store"
)

// viewNotFoundMessages mirrors the per-view 404 bodies of the API contract.
var viewNotFoundMessages = map[query.View]string{
	query.ChartOfAccounts:     "Chart of Accounts not found",
	query.CollectionsAccounts: "Collections Accounts not found",
	query.BadTransactions:     "Bad Transactions not found",
}

// viewHandler builds the GET handler for one report view. responseKey is the
// JSON key the items are returned under.
func (s *Server) viewHandler(view query.View, responseKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET, OPTIONS")
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		params := s.parseListParams(r)
		result, err := s.queries.Query(r.Context(), view, params.searchTerm, params.page, params.itemsPerPage)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, viewNotFoundMessages[view])
				return
			}
			slog.ErrorContext(r.Context(), "View query failed", "view", string(view), "error", err)
			writeError(w, http.StatusInternalServerError, "An error occurred while retrieving the "+responseKey)
			return
		}

		items := result.Items
		if items == nil {
			items = []query.Row{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			responseKey:    items,
			"total_items":  result.TotalItems,
			"total_pages":  result.TotalPages,
			"current_page": result.CurrentPage,
		})
	}
}

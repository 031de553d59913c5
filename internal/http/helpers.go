package http

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// listParams are the common query parameters of the report endpoints.
type listParams struct {
	searchTerm   string
	page         int
	itemsPerPage int
}

func (s *Server) parseListParams(r *http.Request) listParams {
	p := listParams{
		searchTerm:   strings.TrimSpace(r.URL.Query().Get("search_term")),
		page:         1,
		itemsPerPage: s.itemsPerPage,
	}
	if v := strings.TrimSpace(r.URL.Query().Get("page")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.page = n
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("items_per_page")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.itemsPerPage = n
		}
	}
	return p
}

// extractClientIP prefers forwarding headers only when the peer is a
// loopback or private address, so public clients cannot spoof them.
func extractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsed := net.ParseIP(directIP)
	if parsed == nil || !(parsed.IsLoopback() || parsed.IsPrivate()) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
		if net.ParseIP(rip) != nil {
			return rip
		}
	}
	return directIP
}

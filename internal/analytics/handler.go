package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// maxTop bounds the ranking size a caller may ask for.
const maxTop = 100

type Handler struct {
	aggregator *Aggregator
	logger     *slog.Logger
}

func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{
		aggregator: aggregator,
		logger:     slog.Default().With("component", "analytics-handler"),
	}
}

// Stats serves GET /api/v1/analytics?top=. top sizes the query rankings and
// defaults to DefaultTop.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	top := DefaultTop
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTop {
			h.write(w, http.StatusBadRequest, map[string]string{
				"error": "top must be an integer between 1 and " + strconv.Itoa(maxTop),
			})
			return
		}
		top = n
	}
	h.write(w, http.StatusOK, h.aggregator.StatsTop(top))
}

func (h *Handler) write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to write analytics response", "error", err)
	}
}

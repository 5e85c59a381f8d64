package sentiment

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"market-pulse/internal/domain/entity"
	"market-pulse/internal/handler/http/respond"
	"market-pulse/internal/usecase/report"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

// TopHandler serves GET /api/sentiment/top/{label}?limit=N.
type TopHandler struct{ Svc *report.Service }

func (h TopHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	label, err := entity.ParseSentimentLabel(r.PathValue("label"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	results, err := h.Svc.Top(r.Context(), label, limit)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, report.ErrInvalidLimit) {
			code = http.StatusBadRequest
		}
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, TopResponse{
		Label:   string(label),
		Limit:   limit,
		Results: ToResultDTOs(results),
	})
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultTopLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid limit: %q", raw)
	}
	if n <= 0 || n > maxTopLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", maxTopLimit)
	}
	return n, nil
}

package sentiment

import (
	"errors"
	"net/http"
	"time"

	"market-pulse/internal/domain/entity"
	"market-pulse/internal/handler/http/respond"
	"market-pulse/internal/repository"
	"market-pulse/internal/usecase/report"
)

const dateLayout = "2006-01-02"

// TodayHandler serves GET /api/sentiment/today.
type TodayHandler struct {
	Svc *report.Service
	Now func() time.Time
}

func (h TodayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	now := h.Now()
	results, err := h.Svc.TodayResults(r.Context(), now)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	day, _ := repository.DayBounds(now, h.Svc.Location())
	respond.JSON(w, http.StatusOK, TodayResponse{
		Date:    day.Format(dateLayout),
		Stats:   ToStatsDTO(entity.CalculateStats(results)),
		Results: ToResultDTOs(results),
	})
}

// ReportHandler serves GET /api/sentiment/report, the digest the worker
// would send right now.
type ReportHandler struct {
	Svc *report.Service
	Now func() time.Time
}

func (h ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	digest, err := h.Svc.BuildDailyReport(r.Context(), h.Now())
	if err != nil {
		if errors.Is(err, report.ErrNoArticles) {
			respond.SafeError(w, http.StatusNotFound, respond.NewAppError(http.StatusNotFound, "no articles processed today", nil))
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, NewReportResponse(digest))
}

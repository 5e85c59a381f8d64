package sentiment

import (
	"net/http"
	"time"

	"market-pulse/internal/usecase/report"
)

// Register mounts the read API on mux.
func Register(mux *http.ServeMux, svc *report.Service) {
	clock := time.Now
	mux.Handle("GET /api/sentiment/today", TodayHandler{Svc: svc, Now: clock})
	mux.Handle("GET /api/sentiment/report", ReportHandler{Svc: svc, Now: clock})
	mux.Handle("GET /api/sentiment/top/{label}", TopHandler{Svc: svc})
}

package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	apimw "github.com/kiddoconnect/campaign-service/internal/api/middleware"
	"github.com/kiddoconnect/campaign-service/internal/dispatch"
	"github.com/kiddoconnect/campaign-service/internal/scheduler"
)

// ScheduleRunner and DispatchRunner are the two pass entry points the
// trigger endpoints invoke. Narrow interfaces keep the handler testable
// without a real orchestrator behind it.
type ScheduleRunner interface {
	Run(ctx context.Context) (*scheduler.Summary, error)
}

type DispatchRunner interface {
	Run(ctx context.Context) (*dispatch.Summary, error)
}

// RunHandler exposes the internal trigger endpoints invoked by the
// external cron. A completed run always answers success:true; failures of
// individual tenants or campaigns live inside the summary, not in the
// response status. Only a run that could not start at all is an error.
type RunHandler struct {
	sched   ScheduleRunner
	disp    DispatchRunner
	observe func(pass string, d time.Duration)
	logger  *zap.Logger
}

func NewRunHandler(
	sched ScheduleRunner,
	disp DispatchRunner,
	observe func(pass string, d time.Duration),
	logger *zap.Logger,
) *RunHandler {
	if observe == nil {
		observe = func(string, time.Duration) {}
	}
	return &RunHandler{sched: sched, disp: disp, observe: observe, logger: logger}
}

// RunSchedule handles POST /internal/run/schedule
func (h *RunHandler) RunSchedule(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	summary, err := h.sched.Run(r.Context())
	if err != nil {
		h.logger.Error("schedule run could not start",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.observe("schedule", time.Since(start))

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"summary": summary,
	})
}

// RunDispatch handles POST /internal/run/dispatch
func (h *RunHandler) RunDispatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	summary, err := h.disp.Run(r.Context())
	if err != nil {
		h.logger.Error("dispatch run could not start",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.observe("dispatch", time.Since(start))

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"summary": summary,
	})
}

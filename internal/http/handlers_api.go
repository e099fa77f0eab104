package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"expensetracker/internal/core"
	"expensetracker/internal/lib/sl"
	"expensetracker/internal/log"
	"expensetracker/internal/session"
)

type summaryResponse struct {
	Expenses []core.Expense `json:"expenses"`
	Total    core.Money     `json:"total"`
	Count    int            `json:"count"`
}

type analyticsResponse struct {
	Title      string                `json:"title"`
	Total      core.Money            `json:"total"`
	ByCategory []core.CategoryAmount `json:"by_category"`
}

func (s *Server) loadSummary(w http.ResponseWriter, r *http.Request) ([]core.Expense, core.Summary, bool) {
	username, _ := session.Current(r.Context())
	items, summary, err := s.expenses.Summary(r.Context(), username)
	if err != nil {
		log.FromContext(r.Context()).Error("Failed to load expenses",
			log.FieldUsername, username, log.FieldOperation, log.OpList, sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: msgStorageError})
		return nil, core.Summary{}, false
	}
	return items, summary, true
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	items, summary, ok := s.loadSummary(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, summaryResponse{
		Expenses: items,
		Total:    summary.Total,
		Count:    summary.Count,
	})
}

func (s *Server) handleAPIAnalytics(w http.ResponseWriter, r *http.Request) {
	_, summary, ok := s.loadSummary(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, analyticsResponse{
		Title:      "Expenses by Category",
		Total:      summary.Total,
		ByCategory: summary.ByCategory,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady checks templates and storage with a short deadline.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{
		"templates":    "ok",
		"rate_limiter": map[string]any{"active_clients": s.limiter.ActiveClients()},
	}

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).Warn("Readiness check failed", sl.Err(err))
			checks["storage"] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["storage"] = "ok"
		}
	} else {
		checks["storage"] = "not_checked"
	}

	render.Status(r, httpStatus)
	render.JSON(w, r, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

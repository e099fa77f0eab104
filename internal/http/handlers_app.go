package http

import (
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/lib/sl"
	"expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/session"
)

const (
	tabAdd       = "add"
	tabSummary   = "summary"
	tabAnalytics = "analytics"
)

// appPage loads the user's expenses and fills the shared parts of the
// logged-in page. A storage failure is reported inline.
func (s *Server) appPage(r *http.Request, username string) page {
	p := page{
		Title:        "Expense Tracker",
		LoggedIn:     true,
		Username:     username,
		Tab:          tabAdd,
		Categories:   core.Categories(),
		Form:         newExpenseForm(),
		EmptySummary: msgNoExpenses,
		EmptyChart:   msgNoData,
	}
	switch tab := r.URL.Query().Get("tab"); tab {
	case tabSummary, tabAnalytics:
		p.Tab = tab
	}

	items, summary, err := s.expenses.Summary(r.Context(), username)
	if err != nil {
		log.FromContext(r.Context()).Error("Failed to load expenses",
			log.FieldUsername, username, log.FieldOperation, log.OpList, sl.Err(err))
		p.Flash = &flash{Kind: flashError, Message: msgStorageError}
		return p
	}
	p.Expenses = items
	p.Summary = summary
	return p
}

func (s *Server) handleApp(w http.ResponseWriter, r *http.Request) {
	username, _ := session.Current(r.Context())
	p := s.appPage(r, username)
	if p.Flash == nil {
		q := r.URL.Query()
		switch {
		case q.Get("added") != "":
			p.Flash = &flash{Kind: flashSuccess, Message: msgExpenseAdded}
		case q.Get("welcome") != "":
			p.Flash = &flash{Kind: flashSuccess, Message: "Welcome, " + username + "!"}
		}
	}
	s.renderPage(w, r, http.StatusOK, "app.html", p)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	username, _ := session.Current(r.Context())
	logger := log.FromContext(r.Context()).With(log.FieldUsername, username, log.FieldOperation, log.OpAppend)

	if err := r.ParseForm(); err != nil {
		logger.Warn("Failed to parse expense form", sl.Err(err))
		p := s.appPage(r, username)
		p.Flash = &flash{Kind: flashError, Message: "Invalid request."}
		s.renderPage(w, r, http.StatusBadRequest, "app.html", p)
		return
	}

	form := readExpenseForm(r)
	if errs := form.check(); len(errs) > 0 {
		p := s.appPage(r, username)
		p.Form = form
		p.Errors = errs
		s.renderPage(w, r, http.StatusUnprocessableEntity, "app.html", p)
		return
	}

	e, err := form.expense()
	if err == nil {
		err = s.expenses.AddExpense(r.Context(), username, e)
	}
	if err != nil {
		status := http.StatusInternalServerError
		msg := msgStorageError
		if services.IsValidationError(err) {
			status = http.StatusUnprocessableEntity
			msg = "Invalid expense: " + err.Error()
		} else {
			logger.Error("Failed to add expense", sl.Err(err))
		}
		p := s.appPage(r, username)
		p.Form = form
		if p.Flash == nil {
			p.Flash = &flash{Kind: flashError, Message: msg}
		}
		s.renderPage(w, r, status, "app.html", p)
		return
	}

	logger.Info("Expense added",
		log.FieldCategory, e.Category.String(),
		log.FieldAmount, e.Amount.String(),
		log.FieldDate, e.Date.String())

	// Redirect so a browser refresh does not append the expense again.
	http.Redirect(w, r, "/app?tab=summary&added=1", http.StatusSeeOther)
}

package http

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/go-chi/render"

	"expensetracker/internal/core"
	"expensetracker/internal/lib/sl"
	"expensetracker/internal/log"
)

type flashKind string

const (
	flashSuccess flashKind = "success"
	flashWarning flashKind = "warning"
	flashError   flashKind = "error"
)

const (
	msgUsernameTaken   = "Username already exists."
	msgAccountCreated  = "Account created successfully! You can now log in."
	msgInvalidLogin    = "Invalid username or password"
	msgExpenseAdded    = "Expense added successfully!"
	msgNoExpenses      = "No expenses yet. Add some above!"
	msgNoData          = "No data to show."
	msgStorageError    = "Storage error, please try again"
	msgSessionError    = "Could not start your session, please try again"
	msgTooManyAttempts = "Too many attempts. Please wait a moment and try again."
)

type flash struct {
	Kind    flashKind
	Message string
}

// page is the data every template receives.
type page struct {
	Title    string
	LoggedIn bool
	Username string
	Flash    *flash

	// login / signup
	FormUsername string

	// app
	Tab        string
	Categories []core.Category
	Form       expenseFormValues
	Errors     map[string]string
	Expenses   []core.Expense
	Summary    core.Summary

	EmptySummary string
	EmptyChart   string
}

var templateFuncs = template.FuncMap{
	"money": func(m core.Money) string { return m.Display() },
}

// renderPage executes name into a buffer first so a failing template never
// leaves a half-written response.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data page) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).Error("Template execution failed",
			log.FieldOperation, log.OpRender, "template", name, sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) renderUnauthorized(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, errorResponse{Error: "authentication required"})
}

func (s *Server) renderThrottled(w http.ResponseWriter, r *http.Request) {
	name := "login.html"
	title := "Login to Your Account"
	if r.URL.Path == "/signup" {
		name = "signup.html"
		title = "Create New Account"
	}
	s.renderPage(w, r, http.StatusTooManyRequests, name, page{
		Title: title,
		Flash: &flash{Kind: flashError, Message: msgTooManyAttempts},
	})
}

package http

import (
	"errors"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/lib/sl"
	"expensetracker/internal/log"
	"expensetracker/internal/session"
)

const (
	titleSignup = "Create New Account"
	titleLogin  = "Login to Your Account"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, ok := session.Current(r.Context()); ok {
		http.Redirect(w, r, "/app", http.StatusSeeOther)
		return
	}
	s.renderPage(w, r, http.StatusOK, "index.html", page{Title: "Expense Tracker"})
}

func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, "signup.html", page{Title: titleSignup})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	logger := log.FromContext(r.Context()).With(log.FieldOperation, log.OpRegister)

	err := s.accounts.Register(r.Context(), username, password)
	switch {
	case err == nil:
		logger.Info("User registered", log.FieldUsername, username)
		s.renderPage(w, r, http.StatusOK, "signup.html", page{
			Title: titleSignup,
			Flash: &flash{Kind: flashSuccess, Message: msgAccountCreated},
		})
	case errors.Is(err, core.ErrDuplicateUser):
		s.renderPage(w, r, http.StatusConflict, "signup.html", page{
			Title:        titleSignup,
			FormUsername: username,
			Flash:        &flash{Kind: flashWarning, Message: msgUsernameTaken},
		})
	default:
		logger.Error("Registration failed", log.FieldUsername, username, sl.Err(err))
		s.renderPage(w, r, http.StatusInternalServerError, "signup.html", page{
			Title:        titleSignup,
			FormUsername: username,
			Flash:        &flash{Kind: flashError, Message: msgStorageError},
		})
	}
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, "login.html", page{Title: titleLogin})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	logger := log.FromContext(r.Context()).With(log.FieldOperation, log.OpLogin)

	err := s.accounts.Authenticate(r.Context(), username, password)
	switch {
	case errors.Is(err, core.ErrInvalidCredentials):
		s.renderPage(w, r, http.StatusUnauthorized, "login.html", page{
			Title:        titleLogin,
			FormUsername: username,
			Flash:        &flash{Kind: flashError, Message: msgInvalidLogin},
		})
		return
	case err != nil:
		logger.Error("Login failed", log.FieldUsername, username, sl.Err(err))
		s.renderPage(w, r, http.StatusInternalServerError, "login.html", page{
			Title:        titleLogin,
			FormUsername: username,
			Flash:        &flash{Kind: flashError, Message: msgStorageError},
		})
		return
	}

	if err := s.sessions.Login(w, username); err != nil {
		logger.Error("Failed to issue session", log.FieldUsername, username, sl.Err(err))
		s.renderPage(w, r, http.StatusInternalServerError, "login.html", page{
			Title: titleLogin,
			Flash: &flash{Kind: flashError, Message: msgSessionError},
		})
		return
	}
	logger.Info("User logged in", log.FieldUsername, username)
	http.Redirect(w, r, "/app?welcome=1", http.StatusSeeOther)
}

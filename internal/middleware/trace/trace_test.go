package trace

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type observation struct {
	method, route string
	status        int
}

func TestMiddlewareReportsRoutePattern(t *testing.T) {
	var got []observation
	observe := func(method, route string, status int, _ time.Duration) {
		got = append(got, observation{method, route, status})
	}

	r := chi.NewRouter()
	r.Use(Middleware(observe))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	r.Get("/plain", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/42", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plain", nil))

	assert.Equal(t, []observation{
		{http.MethodGet, "/items/{id}", http.StatusAccepted},
		{http.MethodGet, "/plain", http.StatusOK},
	}, got)
}

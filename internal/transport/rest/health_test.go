package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/vesta-ledger/internal/transport/rest"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Health", func() {
	get := func(h *rest.HealthHandler, target string) *httptest.ResponseRecorder {
		router := chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{Health: h}, rest.Options{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	It("should answer ping without checking dependencies", func() {
		h := rest.NewHealthHandler(nil).WithCheck("broker", func(context.Context) (map[string]any, error) {
			return nil, errors.New("down")
		})

		w := get(h, "/api/v1/ping")
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("should report every component", func() {
		h := rest.NewHealthHandler(nil).WithCheck("broker", func(context.Context) (map[string]any, error) {
			return map[string]any{"exchange": "vesta.ledger"}, nil
		})

		w := get(h, "/api/v1/health")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp rest.HealthResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Status).To(Equal(rest.HealthHealthy))
		Expect(resp.Components).To(HaveKey("broker"))
	})

	It("should be unavailable when a component fails", func() {
		h := rest.NewHealthHandler(nil).
			WithCheck("cache", func(context.Context) (map[string]any, error) { return nil, nil }).
			WithCheck("broker", func(context.Context) (map[string]any, error) { return nil, errors.New("connection closed") })

		w := get(h, "/api/v1/health")
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))

		var resp rest.HealthResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Components["broker"].Message).To(Equal("connection closed"))
		Expect(resp.Components["cache"].Status).To(Equal(rest.HealthHealthy))
	})
})

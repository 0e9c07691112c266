package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func (s *Server) routes() http.Handler {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(s.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(s.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/healthz", s.healthzHandler)

	router.HandlerFunc(http.MethodGet, "/entries", s.listEntriesHandler)
	router.HandlerFunc(http.MethodPost, "/entries", s.createEntryHandler)
	router.HandlerFunc(http.MethodGet, "/entries/:id", s.showEntryHandler)
	router.HandlerFunc(http.MethodPut, "/entries/:id", s.updateEntryHandler)
	router.HandlerFunc(http.MethodDelete, "/entries/:id", s.deleteEntryHandler)

	var h http.Handler = router
	h = s.enableCORS(h)
	h = s.recoverPanic(h)
	h = s.logRequests(h)
	h = s.requestID(h)
	return otelhttp.NewHandler(h, "catalog",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

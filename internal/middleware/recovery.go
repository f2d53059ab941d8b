package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/2beens/gymflow/internal/telemetry/metrics"
	"github.com/2beens/gymflow/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PanicRecovery turns a handler panic into a 500. The panic is logged with the route
// template and marked on the request span.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				route := routeName(req)
				log.WithField("route", route).Errorf("http: panic serving %s %s: %v\n%s", req.Method, req.URL.Path, r, debug.Stack())

				span := trace.SpanFromContext(req.Context())
				span.SetAttributes(attribute.String("panic", fmt.Sprint(r)))
				span.SetStatus(codes.Error, "panic on "+route)

				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				pkg.WriteJSONError(respWriter, http.StatusInternalServerError, "internal error")
			}()

			next.ServeHTTP(respWriter, req)
		})
	}
}

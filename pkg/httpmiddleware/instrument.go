package httpmiddleware

import (
	"net/http"
	"time"

	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Instrument returns a middleware that traces every request through otelhttp
// and records request count and duration metrics tagged with method, path
// and status class.
func Instrument(service string, m *app.Telemetry) Middleware {
	meter := m.MeterProvider().Meter(service)

	requests, _ := meter.Int64Counter("http.server.request.count",
		metric.WithDescription("Number of handled HTTP requests"),
	)
	duration, _ := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request handling duration"),
		metric.WithUnit("s"),
	)

	return func(next http.Handler) http.Handler {
		measured := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(sw, r)

			if sw.status == 0 {
				sw.status = http.StatusOK
			}
			statusAttr := attribute.Int("http.status_code", sw.status)
			trace.SpanFromContext(r.Context()).SetAttributes(statusAttr)

			attrs := metric.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", r.URL.Path),
				statusAttr,
			)
			requests.Add(r.Context(), 1, attrs)
			duration.Record(r.Context(), time.Since(start).Seconds(), attrs)
		})

		return otelhttp.NewHandler(measured, service,
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		)
	}
}

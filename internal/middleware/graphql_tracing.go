package middleware

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"nameparse/internal/logging"
	"nameparse/internal/observability"
)

// GraphQLTracingMiddleware wraps GraphQL execution in a "graphql.execute"
// span and attaches trace and span ids to the request logger.
func GraphQLTracingMiddleware() func(http.Handler) http.Handler {
	tracer := otel.Tracer(observability.InstrumentationName + "/graphql")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op, ok := GraphQLOperationFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := tracer.Start(r.Context(), "graphql.execute")
			defer span.End()

			if spanCtx := span.SpanContext(); spanCtx.IsValid() {
				reqLogger := logging.FromContext(ctx).WithFields(
					slog.String("trace_id", spanCtx.TraceID().String()),
					slog.String("span_id", spanCtx.SpanID().String()),
				)
				ctx = logging.WithLogger(ctx, reqLogger)
			}
			if span.IsRecording() {
				span.SetAttributes(
					attribute.String("graphql.operation.type", op.Type),
					attribute.String("graphql.operation.name", op.Name),
					attribute.StringSlice("graphql.root_fields", op.RootFields),
				)
			}

			wrapped := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			if wrapped.statusCode >= 400 || responseHasGraphQLErrors(wrapped.body.Bytes()) {
				span.SetStatus(codes.Error, "graphql errors")
			}
		})
	}
}

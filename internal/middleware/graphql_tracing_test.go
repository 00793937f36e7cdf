package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestAnalyzeQuery(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		operationName string
		want          *GraphQLOperation
		wantErr       bool
	}{
		{
			name:  "anonymous query",
			query: `{ parseName(text: "Mr John Smith") { type } }`,
			want:  &GraphQLOperation{Type: "query", RootFields: []string{"parseName"}},
		},
		{
			name:  "named query with several root fields",
			query: `query Batch { parseNames(texts: ["a"]) { type } cleanName(text: "x") caseSurname(text: "y") parseNames(texts: []) { type } }`,
			want: &GraphQLOperation{
				Type:       "query",
				Name:       "Batch",
				RootFields: []string{"caseSurname", "cleanName", "parseNames"},
			},
		},
		{
			name: "operation selected by name",
			query: `query A { cleanName(text: "x") }
				query B { caseSurname(text: "y") }`,
			operationName: "B",
			want:          &GraphQLOperation{Type: "query", Name: "B", RootFields: []string{"caseSurname"}},
		},
		{
			name:          "unknown operation name",
			query:         `query A { cleanName(text: "x") }`,
			operationName: "Z",
		},
		{
			name:  "empty query",
			query: "  ",
		},
		{
			name:    "syntax error",
			query:   `query {`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := analyzeQuery(tt.query, tt.operationName)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGraphQLOperation_Label(t *testing.T) {
	var nilOp *GraphQLOperation
	assert.Equal(t, "unknown", nilOp.Label())
	assert.Equal(t, "unknown", (&GraphQLOperation{Type: "query"}).Label())
	assert.Equal(t, "cleanName,parseName", (&GraphQLOperation{RootFields: []string{"cleanName", "parseName"}}).Label())
}

func TestGraphQLRequestMiddleware(t *testing.T) {
	var seen *GraphQLOperation
	var body string
	handler := GraphQLRequestMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GraphQLOperationFromContext(r.Context())
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
	}))

	t.Run("json post keeps body", func(t *testing.T) {
		payload := `{"query":"query Q { cleanName(text: \"x\") }","operationName":"Q"}`
		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.NotNil(t, seen)
		assert.Equal(t, "Q", seen.Name)
		assert.Equal(t, payload, body)
	})

	t.Run("application/graphql post", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{ caseSurname(text: "MACNAY") }`))
		req.Header.Set("Content-Type", "application/graphql")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.NotNil(t, seen)
		assert.Equal(t, []string{"caseSurname"}, seen.RootFields)
	})

	t.Run("get query string", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/graphql?query=%7BcleanName(text:%22x%22)%7D", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.NotNil(t, seen)
		assert.Equal(t, "query", seen.Type)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":`))
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Nil(t, seen)
	})
}

func TestGraphQLTracingMiddleware(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	old := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
		otel.SetTracerProvider(old)
	})

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"salutation not configured"}]}`))
	})
	handler := GraphQLRequestMiddleware()(GraphQLTracingMiddleware()(inner))

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"query Sal { parseName(text: \"Mr J Smith\") { salutation } }"}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "graphql.execute", span.Name())
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Contains(t, span.Attributes(), attribute.String("graphql.operation.name", "Sal"))
	assert.Contains(t, span.Attributes(), attribute.StringSlice("graphql.root_fields", []string{"parseName"}))
}

func TestGraphQLTracingMiddleware_SkipsWithoutOperation(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	old := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
		otel.SetTracerProvider(old)
	})

	handler := GraphQLTracingMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/graphql", nil))

	assert.Empty(t, recorder.Ended())
}

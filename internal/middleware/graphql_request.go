package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
)

// GraphQLOperation is what the middleware chain knows about a request
// before it reaches the executor.
type GraphQLOperation struct {
	Type       string // query, mutation, subscription
	Name       string
	RootFields []string // sorted, deduplicated
}

// Label is a low-cardinality identifier for metrics and span names.
func (op *GraphQLOperation) Label() string {
	if op == nil || len(op.RootFields) == 0 {
		return "unknown"
	}
	return strings.Join(op.RootFields, ",")
}

type graphQLEnvelope struct {
	Query         string `json:"query"`
	OperationName string `json:"operationName"`
}

type graphQLOperationKey struct{}

// GraphQLRequestMiddleware decodes the GraphQL envelope once and stores the
// analyzed operation in the request context for downstream middleware. The
// request body is restored for the handler.
func GraphQLRequestMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query, operationName := extractGraphQLRequest(r)
			op, err := analyzeQuery(query, operationName)
			if err == nil && op != nil {
				r = r.WithContext(context.WithValue(r.Context(), graphQLOperationKey{}, op))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GraphQLOperationFromContext returns the operation stored by
// GraphQLRequestMiddleware, if any.
func GraphQLOperationFromContext(ctx context.Context) (*GraphQLOperation, bool) {
	op, ok := ctx.Value(graphQLOperationKey{}).(*GraphQLOperation)
	return op, ok
}

func extractGraphQLRequest(r *http.Request) (string, string) {
	switch r.Method {
	case http.MethodGet:
		return r.URL.Query().Get("query"), r.URL.Query().Get("operationName")
	case http.MethodPost:
	default:
		return "", ""
	}

	if r.Body == nil {
		return "", ""
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", ""
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if strings.Contains(r.Header.Get("Content-Type"), "application/graphql") {
		return string(body), ""
	}

	var payload graphQLEnvelope
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", ""
	}
	return payload.Query, payload.OperationName
}

func analyzeQuery(query, operationName string) (*GraphQLOperation, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{
			Body: []byte(query),
			Name: "graphql",
		}),
	})
	if err != nil {
		return nil, err
	}

	var target, first *ast.OperationDefinition
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if first == nil {
			first = op
		}
		if operationName != "" && op.Name != nil && op.Name.Value == operationName {
			target = op
			break
		}
	}
	if target == nil && operationName == "" {
		target = first
	}
	if target == nil {
		return nil, nil
	}

	op := &GraphQLOperation{Type: string(target.Operation)}
	if target.Name != nil {
		op.Name = target.Name.Value
	}

	seen := map[string]bool{}
	if target.SelectionSet != nil {
		for _, sel := range target.SelectionSet.Selections {
			field, ok := sel.(*ast.Field)
			if !ok || field.Name == nil || seen[field.Name.Value] {
				continue
			}
			seen[field.Name.Value] = true
			op.RootFields = append(op.RootFields, field.Name.Value)
		}
	}
	sort.Strings(op.RootFields)

	return op, nil
}

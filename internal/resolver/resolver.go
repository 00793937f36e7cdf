// Package resolver exposes the name parser as a GraphQL schema.
// Every query resolves against the parser that is current when the field
// runs, so an override reload never changes a parse half way through.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/graphql-go/graphql"
	"go.opentelemetry.io/otel/attribute"

	"nameparse/internal/logging"
	"nameparse/internal/naming"
	"nameparse/internal/observability"
)

// metricsSource labels parses made through GraphQL.
const metricsSource = "graphql"

// ParserProvider returns the parser requests should use.
type ParserProvider interface {
	Parser() *naming.Parser
}

// StaticParser serves one fixed parser.
type StaticParser struct {
	P *naming.Parser
}

func (s StaticParser) Parser() *naming.Parser { return s.P }

// Resolver builds the GraphQL schema and resolves its fields.
type Resolver struct {
	parsers      ParserProvider
	metrics      *observability.ParseMetrics
	maxBatchSize int

	componentsType *graphql.Object
	issueType      *graphql.Object
	nameParseType  *graphql.Object
	optionsInput   *graphql.InputObject
}

// NewResolver creates a resolver. metrics may be nil. A non-positive
// maxBatchSize leaves parseNames unbounded.
func NewResolver(parsers ParserProvider, metrics *observability.ParseMetrics, maxBatchSize int) *Resolver {
	return &Resolver{
		parsers:      parsers,
		metrics:      metrics,
		maxBatchSize: maxBatchSize,
	}
}

// BuildGraphQLSchema constructs the executable schema.
func (r *Resolver) BuildGraphQLSchema() (graphql.Schema, error) {
	r.buildTypes()

	optionsArg := &graphql.ArgumentConfig{
		Type:        r.optionsInput,
		Description: "Overrides for the server's configured parser options",
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"parseName": &graphql.Field{
				Type:        graphql.NewNonNull(r.nameParseType),
				Description: "Parse a single name",
				Args: graphql.FieldConfigArgument{
					"text":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"options": optionsArg,
				},
				Resolve: r.resolveParseName,
			},
			"parseNames": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(r.nameParseType))),
				Description: "Parse a batch of names with shared options",
				Args: graphql.FieldConfigArgument{
					"texts":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
					"options": optionsArg,
				},
				Resolve: r.resolveParseNames,
			},
			"caseSurname": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "Apply surname casing rules and the override table to text",
				Args: graphql.FieldConfigArgument{
					"text":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"lcPrefix": &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: r.resolveCaseSurname,
			},
			"cleanName": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "Fold accents, strip disallowed characters and collapse whitespace",
				Args: graphql.FieldConfigArgument{
					"text": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					text, _ := p.Args["text"].(string)
					return naming.Clean(text), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}

func (r *Resolver) resolveParseName(p graphql.ResolveParams) (interface{}, error) {
	parser, err := r.requestParser(p.Args)
	if err != nil {
		return nil, err
	}
	text, _ := p.Args["text"].(string)
	return r.parse(p.Context, parser, text), nil
}

func (r *Resolver) resolveParseNames(p graphql.ResolveParams) (interface{}, error) {
	raw, _ := p.Args["texts"].([]interface{})
	if r.maxBatchSize > 0 && len(raw) > r.maxBatchSize {
		return nil, fmt.Errorf("parseNames accepts at most %d names, got %d", r.maxBatchSize, len(raw))
	}
	parser, err := r.requestParser(p.Args)
	if err != nil {
		return nil, err
	}

	ctx := contextOrBackground(p.Context)
	ctx, span := startResolverSpan(ctx, "nameparse.parse_batch", attribute.Int("nameparse.batch.size", len(raw)))
	defer finishResolverSpan(span, nil)

	r.metrics.RecordBatch(ctx, metricsSource, len(raw))
	names := make([]*naming.Name, 0, len(raw))
	for _, item := range raw {
		text, _ := item.(string)
		names = append(names, r.parse(ctx, parser, text))
	}
	return names, nil
}

func (r *Resolver) resolveCaseSurname(p graphql.ResolveParams) (interface{}, error) {
	parser := r.parsers.Parser()
	text, _ := p.Args["text"].(string)
	lcPrefix := parser.Options().LcPrefix
	if v, ok := p.Args["lcPrefix"].(bool); ok {
		lcPrefix = v
	}
	return parser.CaseSurname(text, lcPrefix), nil
}

// parse runs one parse inside its own span and records its outcome.
func (r *Resolver) parse(ctx context.Context, parser *naming.Parser, text string) *naming.Name {
	ctx = contextOrBackground(ctx)
	ctx, span := startResolverSpan(ctx, "nameparse.parse")

	start := time.Now()
	name := parser.Parse(text)
	elapsed := time.Since(start)

	props := name.Properties()
	issues := name.Issues()
	kinds := make([]string, len(issues))
	for i, issue := range issues {
		kinds[i] = issue.Kind.String()
	}

	span.SetAttributes(
		attribute.String("nameparse.layout", string(props.Type)),
		attribute.Int("nameparse.number", props.Number),
		attribute.Bool("nameparse.error", props.Error),
		attribute.Bool("nameparse.cleaned", props.Cleaned),
	)
	finishResolverSpan(span, nil)

	r.metrics.RecordParse(ctx, metricsSource, observability.ParseOutcome{
		Layout:   string(props.Type),
		Error:    props.Error,
		Cleaned:  props.Cleaned,
		Issues:   kinds,
		Duration: elapsed,
	})

	if props.Error {
		logging.FromContext(ctx).Debug("name flagged",
			slog.String("layout", string(props.Type)),
			slog.Any("issues", kinds),
		)
	}
	return name
}

// requestParser returns the current parser, or a parser with the
// request's options overlaid on it.
func (r *Resolver) requestParser(args map[string]interface{}) (*naming.Parser, error) {
	base := r.parsers.Parser()
	raw, ok := args["options"].(map[string]interface{})
	if !ok || len(raw) == 0 {
		return base, nil
	}
	opts, err := overlayOptions(base.Options(), raw)
	if err != nil {
		return nil, err
	}
	return naming.New(opts, base.Overrides()), nil
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

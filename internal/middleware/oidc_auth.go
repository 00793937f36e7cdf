package middleware

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"nameparse/internal/logging"
	"nameparse/internal/observability"
)

const (
	defaultOIDCClockSkew  = 2 * time.Minute
	oidcDiscoveryTimeout  = 10 * time.Second
	oidcHTTPClientTimeout = 10 * time.Second
)

// OIDCAuthConfig controls bearer token validation against an OIDC issuer.
type OIDCAuthConfig struct {
	IssuerURL string
	Audience  string
	ClockSkew time.Duration
	// CAFile adds a PEM root to the pool used for discovery and JWKS.
	CAFile        string
	SkipTLSVerify bool
	// Metrics is optional; rejected requests are counted when set.
	Metrics *observability.ParseMetrics
}

type authContextKey struct{}

// AuthContext carries the validated token claims of a request.
type AuthContext struct {
	Subject  string
	Issuer   string
	Audience []string
	Claims   map[string]interface{}
}

// AuthFromContext returns the auth context stored by OIDCAuthMiddleware.
func AuthFromContext(ctx context.Context) (AuthContext, bool) {
	auth, ok := ctx.Value(authContextKey{}).(AuthContext)
	return auth, ok
}

// OIDCAuthMiddleware validates "Authorization: Bearer" tokens issued by
// cfg.IssuerURL for cfg.Audience. Provider discovery happens here, so an
// unreachable issuer fails start-up rather than the first request.
func OIDCAuthMiddleware(ctx context.Context, cfg OIDCAuthConfig, logger *logging.Logger) (func(http.Handler) http.Handler, error) {
	if cfg.IssuerURL == "" || cfg.Audience == "" {
		return nil, errors.New("oidc auth requires issuer url and audience")
	}
	issuerURL, err := url.Parse(cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid oidc issuer url: %w", err)
	}
	if issuerURL.Scheme != "https" {
		return nil, errors.New("oidc issuer url must use https")
	}
	if cfg.ClockSkew == 0 {
		cfg.ClockSkew = defaultOIDCClockSkew
	}
	if logger != nil && cfg.SkipTLSVerify {
		logger.Warn("oidc tls verification is disabled; enable only for local development",
			slog.String("issuer", cfg.IssuerURL),
		)
	}

	httpClient, err := newOIDCHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	discoveryCtx, cancel := context.WithTimeout(ctx, oidcDiscoveryTimeout)
	defer cancel()

	// The provider keeps only the HTTP client from this context for later
	// JWKS fetches, not its deadline.
	provider, err := oidc.NewProvider(context.WithValue(discoveryCtx, oauth2.HTTPClient, httpClient), cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize oidc provider: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{
		ClientID:        cfg.Audience,
		SkipExpiryCheck: true,
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reject := func(reason, message string, err error) {
				cfg.Metrics.RecordAuthDenied(r.Context(), r.URL.Path, reason)
				attrs := []any{
					slog.String("path", r.URL.Path),
					slog.String("reason", reason),
					slog.String("remote_addr", r.RemoteAddr),
				}
				if err != nil {
					attrs = append(attrs, slog.String("error", err.Error()))
				}
				logging.FromContext(r.Context()).Warn("bearer authentication failed", attrs...)
				writeBearerUnauthorized(w, message)
			}

			raw := bearerToken(r.Header.Get("Authorization"))
			if raw == "" {
				reject("missing_token", "missing bearer token", nil)
				return
			}

			idToken, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				reject("invalid_token", "invalid token", err)
				return
			}

			claims := map[string]interface{}{}
			if err := idToken.Claims(&claims); err != nil {
				reject("invalid_claims", "invalid token claims", err)
				return
			}
			if err := validateTimeClaims(claims, cfg.ClockSkew, time.Now()); err != nil {
				reject("expired_token", "invalid token", err)
				return
			}

			auth := AuthContext{
				Subject:  idToken.Subject,
				Issuer:   idToken.Issuer,
				Audience: idToken.Audience,
				Claims:   claims,
			}
			if span := trace.SpanFromContext(r.Context()); span.IsRecording() {
				span.SetAttributes(
					attribute.String("auth.subject", auth.Subject),
					attribute.String("auth.issuer", auth.Issuer),
					attribute.Bool("auth.authenticated", true),
				)
			}
			reqLogger := logging.FromContext(r.Context()).WithFields(slog.String("subject", auth.Subject))
			ctx := logging.WithLogger(context.WithValue(r.Context(), authContextKey{}, auth), reqLogger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}, nil
}

func newOIDCHTTPClient(cfg OIDCAuthConfig) (*http.Client, error) {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.SkipTLSVerify, //nolint:gosec // opt-in for local development
	}
	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read oidc CA file: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("failed to parse oidc CA file %s", cfg.CAFile)
		}
		tlsConfig.RootCAs = pool
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig
	return &http.Client{Transport: transport, Timeout: oidcHTTPClientTimeout}, nil
}

func bearerToken(value string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(value), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeBearerUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = fmt.Fprintf(w, `{"error":%q}`, message)
}

// validateTimeClaims checks exp and nbf with the configured skew.
func validateTimeClaims(claims map[string]interface{}, skew time.Duration, now time.Time) error {
	if exp, ok := numericDate(claims["exp"]); ok && now.After(exp.Add(skew)) {
		return errors.New("token expired")
	}
	if nbf, ok := numericDate(claims["nbf"]); ok && now.Add(skew).Before(nbf) {
		return errors.New("token not valid yet")
	}
	return nil
}

func numericDate(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case float64:
		return time.Unix(int64(v), 0), true
	case int64:
		return time.Unix(v, 0), true
	case int:
		return time.Unix(int64(v), 0), true
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(parsed, 0), true
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(parsed, 0), true
	default:
		return time.Time{}, false
	}
}

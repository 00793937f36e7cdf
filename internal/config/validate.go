package config

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"nameparse/internal/naming"
)

// ValidationError represents a configuration validation error with context.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
	Hint    string
}

// ValidationResult contains the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns a combined error message if there are validation errors.
func (r *ValidationResult) Error() string {
	if !r.HasErrors() {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for errors and returns validation results.
// It returns both errors (fatal) and warnings (non-fatal issues).
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}

	validateParserOptions(result, c.Parser)
	c.Overrides.validate(result)
	if c.Overrides.Source == OverridesSourceDatabase {
		c.Database.validate(result)
	}
	c.Server.validate(result)
	c.Observability.validate(result)

	return result
}

func validateParserOptions(result *ValidationResult, opts naming.Options) {
	if opts.Initials != 0 && naming.ClampInitials(opts.Initials) != opts.Initials {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "parser.initials",
			Message: fmt.Sprintf("initials %d is outside 1-3 and will be clamped to %d", opts.Initials, naming.ClampInitials(opts.Initials)),
		})
	}

	salutation := strings.TrimSpace(opts.Salutation)
	fallback := strings.TrimSpace(opts.SalutationDefault)
	if salutation != "" && fallback == "" {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "parser.salutation_default",
			Message: "salutation is set without a salutation_default",
			Hint:    "salutations will fail until both are configured",
		})
	}
	if salutation == "" && fallback != "" {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "parser.salutation",
			Message: "salutation_default is set without a salutation",
			Hint:    "salutations will fail until both are configured",
		})
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*(\.[A-Za-z_][A-Za-z0-9_$]*)?$`)

func (o *OverridesConfig) validate(result *ValidationResult) {
	switch o.Source {
	case OverridesSourceNone:
	case OverridesSourceFile:
		if strings.TrimSpace(o.Path) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "overrides.path",
				Message: "path is required when overrides.source is 'file'",
				Hint:    "set overrides.path or use overrides.source=none",
			})
		}
	case OverridesSourceDatabase:
		if !identifierPattern.MatchString(o.Table) {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "overrides.table",
				Message: fmt.Sprintf("invalid table name %q", o.Table),
				Hint:    "use a plain identifier, optionally qualified as schema.table",
			})
		}
		if !identifierPattern.MatchString(o.Column) || strings.Contains(o.Column, ".") {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "overrides.column",
				Message: fmt.Sprintf("invalid column name %q", o.Column),
			})
		}
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "overrides.source",
			Message: fmt.Sprintf("invalid override source %q", o.Source),
			Hint:    "valid values are: none, file, database",
		})
	}
}

func (d *DatabaseConfig) validate(result *ValidationResult) {
	// Port range validation (only if not using connection string)
	if d.ConnectionString == "" && (d.Port < 1 || d.Port > 65535) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.port",
			Message: fmt.Sprintf("port %d is out of valid range (1-65535)", d.Port),
		})
	}

	validTLSModes := map[string]bool{"": true, "false": true, "true": true, "skip-verify": true, "preferred": true}
	if !validTLSModes[d.TLSMode] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.tls_mode",
			Message: fmt.Sprintf("invalid TLS mode %q", d.TLSMode),
			Hint:    "valid values are: false, true, skip-verify, preferred",
		})
	}
	if d.TLSMode == "skip-verify" {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "database.tls_mode",
			Message: "skip-verify mode does not verify server certificates",
			Hint:    "use tls_mode=true in production",
		})
	}

	// Connection pool validation
	if d.Pool.MaxOpen < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.pool.max_open",
			Message: "max_open cannot be negative",
		})
	}
	if d.Pool.MaxIdle < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.pool.max_idle",
			Message: "max_idle cannot be negative",
		})
	}
	if d.Pool.MaxIdle > d.Pool.MaxOpen && d.Pool.MaxOpen > 0 {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "database.pool.max_idle",
			Message: "max_idle is greater than max_open",
			Hint:    "idle connections will be limited to max_open",
		})
	}
	if d.ConnectionTimeout < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.connection_timeout",
			Message: "connection_timeout cannot be negative",
		})
	}

	if _, err := d.driverConfig(); err != nil {
		field := "database.database"
		if strings.HasPrefix(err.Error(), "database.dsn") {
			field = "database.dsn"
		}
		result.Errors = append(result.Errors, ValidationError{
			Field:   field,
			Message: err.Error(),
			Hint:    "set a valid MySQL DSN in database.dsn or the discrete database.* fields",
		})
	}
}

func (s *ServerConfig) validate(result *ValidationResult) {
	// Port range validation
	if s.Port < 1 || s.Port > 65535 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port %d is out of valid range (1-65535)", s.Port),
		})
	}

	if s.MaxBatchSize < 1 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.max_batch_size",
			Message: "max_batch_size must be at least 1",
		})
	}

	// Rate limit validation
	if s.RateLimitEnabled {
		if s.RateLimitRPS <= 0 {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "server.rate_limit_rps",
				Message: "rate_limit_rps must be greater than 0 when rate limiting is enabled",
			})
		}
		if s.RateLimitBurst <= 0 {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "server.rate_limit_burst",
				Message: "rate_limit_burst must be greater than 0 when rate limiting is enabled",
			})
		}
	}

	if !s.RateLimitEnabled && (s.RateLimitRPS > 0 || s.RateLimitBurst > 0) {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "server.rate_limit_enabled",
			Message: "rate limit values are set but rate limiting is disabled",
			Hint:    "enable server.rate_limit_enabled to apply rate limits",
		})
	}

	s.Auth.validate(result)

	if s.Admin.ReloadEnabled && !s.Auth.OIDCEnabled && strings.TrimSpace(s.Admin.AuthToken) == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.admin.auth_token",
			Message: "auth token is required when the reload endpoint is enabled",
			Hint:    "set server.admin.auth_token or server.admin.auth_token_file, or enable server.auth.oidc_enabled",
		})
	}

	if (s.TLSCertFile == "") != (s.TLSKeyFile == "") {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.tls_cert_file",
			Message: "both tls_cert_file and tls_key_file must be set to enable TLS",
		})
	}
}

func (a *AuthConfig) validate(result *ValidationResult) {
	if !a.OIDCEnabled {
		if a.ProtectGraphQL {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "server.auth.protect_graphql",
				Message: "protect_graphql requires OIDC auth",
				Hint:    "enable server.auth.oidc_enabled",
			})
		}
		return
	}

	if strings.TrimSpace(a.OIDCIssuerURL) == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.auth.oidc_issuer_url",
			Message: "issuer url is required when OIDC auth is enabled",
		})
	} else if u, err := url.Parse(a.OIDCIssuerURL); err != nil || u.Scheme != "https" || u.Host == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.auth.oidc_issuer_url",
			Message: fmt.Sprintf("issuer url %q must be an absolute https url", a.OIDCIssuerURL),
		})
	}
	if strings.TrimSpace(a.OIDCAudience) == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.auth.oidc_audience",
			Message: "audience is required when OIDC auth is enabled",
		})
	}
	if a.OIDCClockSkew < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.auth.oidc_clock_skew",
			Message: "clock skew must not be negative",
		})
	}
	if a.OIDCSkipTLSVerify {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "server.auth.oidc_skip_tls_verify",
			Message: "TLS verification for the OIDC issuer is disabled",
			Hint:    "use server.auth.oidc_ca_file instead outside local development",
		})
	}
}

func (o *ObservabilityConfig) validate(result *ValidationResult) {
	// Log level validation
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[o.Logging.Level] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "observability.logging.level",
			Message: fmt.Sprintf("invalid log level %q", o.Logging.Level),
			Hint:    "valid values are: debug, info, warn, error",
		})
	}

	// Log format validation
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[o.Logging.Format] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "observability.logging.format",
			Message: fmt.Sprintf("invalid log format %q", o.Logging.Format),
			Hint:    "valid values are: json, text",
		})
	}

	if o.TraceSampleRatio < 0 || o.TraceSampleRatio > 1 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "observability.trace_sample_ratio",
			Message: fmt.Sprintf("trace_sample_ratio %v is outside 0.0-1.0", o.TraceSampleRatio),
		})
	}

	// OTLP protocol validation
	o.OTLP.validate("observability.otlp", result)

	// Signal-specific OTLP validation
	if o.Traces != nil {
		o.Traces.validate("observability.traces", result)
	}
	if o.Logs != nil {
		o.Logs.validate("observability.logs", result)
	}
}

func (o *OTLPConfig) validate(prefix string, result *ValidationResult) {
	validProtocols := map[string]bool{"": true, "grpc": true, "http/protobuf": true}
	if !validProtocols[o.Protocol] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   prefix + ".protocol",
			Message: fmt.Sprintf("invalid OTLP protocol %q", o.Protocol),
			Hint:    "valid values are: grpc, http/protobuf",
		})
	}

	if o.Protocol == "http/protobuf" {
		if !validOTLPEndpoint(o.Endpoint) {
			result.Errors = append(result.Errors, ValidationError{
				Field:   prefix + ".endpoint",
				Message: fmt.Sprintf("invalid OTLP endpoint %q for http/protobuf", o.Endpoint),
				Hint:    "use host:port or a full URL",
			})
		}
	}

	validCompressions := map[string]bool{"": true, "none": true, "gzip": true}
	if !validCompressions[o.Compression] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   prefix + ".compression",
			Message: fmt.Sprintf("invalid OTLP compression %q", o.Compression),
			Hint:    "valid values are: none, gzip",
		})
	}

	if o.RetryMaxAttempts < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   prefix + ".retry_max_attempts",
			Message: "retry_max_attempts cannot be negative",
		})
	}
}

func validOTLPEndpoint(endpoint string) bool {
	if endpoint == "" {
		return false
	}
	if strings.Contains(endpoint, "://") {
		parsed, err := url.Parse(endpoint)
		if err != nil {
			return false
		}
		return parsed.Host != ""
	}
	_, _, err := net.SplitHostPort(endpoint)
	return err == nil
}

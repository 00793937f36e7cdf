package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// EnvPrefix is prepended to environment variable names, e.g.
// NAMEPARSE_PARSER_INITIALS.
const EnvPrefix = "NAMEPARSE"

// Load loads configuration for the process from the global flag set and
// os.Args. See LoadFlags for precedence.
func Load() (*Config, error) {
	return LoadFlags(pflag.CommandLine, os.Args[1:])
}

// LoadFlags defines the configuration flags on fs (once), parses args
// unless fs was already parsed, and loads with this precedence:
//  1. Explicit overrides (v.Set) for secrets read from files or a prompt
//  2. Command line flags that were set
//  3. Environment variables
//  4. Config file
//  5. Default values
func LoadFlags(fs *pflag.FlagSet, args []string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	DefineFlags(fs)
	if !fs.Parsed() {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}

	// --- Config file ---
	cfgPath, _ := fs.GetString("config")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.SetConfigName("nameparse")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/nameparse/")
		v.AddConfigPath("$HOME/.nameparse")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgPath != "" {
			return nil, fmt.Errorf("failed to read config file %q: %w", cfgPath, err)
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// --- Environment variables ---
	// Canonical keys: dot + snake_case
	// Env vars: NAMEPARSE_PARSER_JOINT_NAMES
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	bindChangedFlagsToViper(fs, v)
	if err := validateSingleStdinFileSource(v); err != nil {
		return nil, err
	}

	// --- Secrets ---
	if v.GetString("database.password") == "" && v.GetString("database.password_file") != "" {
		pwd, err := readSecretFile(v.GetString("database.password_file"))
		if err != nil {
			return nil, fmt.Errorf("failed to read database password file: %w", err)
		}
		v.Set("database.password", pwd)
	}
	if v.GetString("database.password") == "" && v.GetBool("database.password_prompt") &&
		v.GetString("overrides.source") == OverridesSourceDatabase {
		pwd, err := promptPassword()
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		v.Set("database.password", pwd)
	}
	if v.GetString("server.admin.auth_token") == "" && v.GetString("server.admin.auth_token_file") != "" {
		tokenPath := v.GetString("server.admin.auth_token_file")
		token, err := readSecretFile(tokenPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read admin auth token file: %w", err)
		}
		if token == "" {
			return nil, fmt.Errorf("admin auth token file %q is empty", tokenPath)
		}
		v.Set("server.admin.auth_token", token)
	}

	// --- Unmarshal (strict) ---
	var cfg Config
	if err := v.UnmarshalExact(
		&cfg,
		viper.DecodeHook(
			mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				stringToStringSliceHookFunc(","),
			),
		),
	); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// bindChangedFlagsToViper copies only explicitly-set flags into Viper,
// preserving precedence: flags > env > file > defaults.
func bindChangedFlagsToViper(fs *pflag.FlagSet, v *viper.Viper) {
	fs.Visit(func(f *pflag.Flag) {
		if _, ok := configFlags[f.Name]; !ok {
			return
		}

		switch f.Value.Type() {
		case "string":
			val, _ := fs.GetString(f.Name)
			v.Set(f.Name, val)
		case "int":
			val, _ := fs.GetInt(f.Name)
			v.Set(f.Name, val)
		case "bool":
			val, _ := fs.GetBool(f.Name)
			v.Set(f.Name, val)
		case "float64":
			val, _ := fs.GetFloat64(f.Name)
			v.Set(f.Name, val)
		case "duration":
			val, _ := fs.GetDuration(f.Name)
			v.Set(f.Name, val)
		default:
			v.Set(f.Name, f.Value.String())
		}
	})
}

// configFlags lists every flag that maps onto a configuration key.
var configFlags = map[string]struct{}{}

type flagDef struct {
	name  string
	value interface{}
	usage string
}

var flagDefs = []flagDef{
	// Parser flags
	{"parser.initials", 0, "Maximum number of initials (1-3)"},
	{"parser.lc_prefix", false, "Lower-case surname prefixes (van der Berg)"},
	{"parser.force_case", false, "Case unmatched trailing text as well"},
	{"parser.auto_clean", false, "Retry failed parses once on cleaned input"},
	{"parser.allow_reversed", false, "Accept 'Surname, Title Initials' input"},
	{"parser.joint_names", false, "Accept two-person layouts"},
	{"parser.extended_titles", false, "Accept professional titles and suffixes"},
	{"parser.salutation", "", "Salutation word, e.g. Dear"},
	{"parser.salutation_default", "", "Fallback salutation noun, e.g. Sir"},

	// Override table flags
	{"overrides.source", "", "Surname override source (none, file, database)"},
	{"overrides.path", "", "Path to surname override list"},
	{"overrides.table", "", "Database table holding surname overrides"},
	{"overrides.column", "", "Database column holding surname overrides"},

	// Database flags
	{"database.dsn", "", "Complete MySQL DSN (user:pass@tcp(host:port)/db)"},
	{"database.host", "", "Database host"},
	{"database.port", 0, "Database port"},
	{"database.user", "", "Database user"},
	{"database.password", "", "Database password"},
	{"database.password_file", "", "Path to file containing database password (use @- for stdin)"},
	{"database.password_prompt", false, "Prompt for database password securely"},
	{"database.database", "", "Database name"},
	{"database.tls_mode", "", "MySQL driver tls parameter (false, true, skip-verify, preferred)"},
	{"database.pool.max_open", 0, "Maximum open database connections"},
	{"database.pool.max_idle", 0, "Maximum idle connections in pool"},
	{"database.pool.max_lifetime", time.Duration(0), "Connection max lifetime (e.g. 5m, 30s)"},
	{"database.connection_timeout", time.Duration(0), "Timeout for connecting and loading overrides"},

	// Server flags
	{"server.port", 0, "HTTP server port"},
	{"server.graphiql_enabled", false, "Enable GraphiQL UI for /graphql (dev only)"},
	{"server.max_batch_size", 0, "Maximum names accepted by parseNames"},
	{"server.admin.reload_enabled", false, "Enable /admin/reload-overrides endpoint"},
	{"server.admin.auth_token", "", "Shared secret required in X-Admin-Token header"},
	{"server.admin.auth_token_file", "", "Path to file containing admin auth token (use @- for stdin)"},
	{"server.auth.oidc_enabled", false, "Validate OIDC bearer tokens on protected endpoints"},
	{"server.auth.oidc_issuer_url", "", "OIDC issuer URL (https)"},
	{"server.auth.oidc_audience", "", "Required audience claim of bearer tokens"},
	{"server.auth.oidc_clock_skew", time.Duration(0), "Allowed clock skew for token exp and nbf"},
	{"server.auth.oidc_ca_file", "", "PEM CA bundle trusted for OIDC discovery and JWKS"},
	{"server.auth.oidc_skip_tls_verify", false, "Skip TLS verification for the OIDC issuer (dev only)"},
	{"server.auth.protect_graphql", false, "Require a bearer token on /graphql"},
	{"server.rate_limit_enabled", false, "Enable global rate limiting for all HTTP endpoints"},
	{"server.rate_limit_rps", float64(0), "Global rate limit requests per second"},
	{"server.rate_limit_burst", 0, "Global rate limit burst size"},
	{"server.read_timeout", time.Duration(0), "HTTP server read timeout"},
	{"server.write_timeout", time.Duration(0), "HTTP server write timeout"},
	{"server.idle_timeout", time.Duration(0), "HTTP server idle timeout"},
	{"server.shutdown_timeout", time.Duration(0), "HTTP server graceful shutdown timeout"},
	{"server.tls_cert_file", "", "Path to TLS certificate file"},
	{"server.tls_key_file", "", "Path to TLS private key file"},

	// Observability flags
	{"observability.service_name", "", "Service name for observability"},
	{"observability.service_version", "", "Service version for observability"},
	{"observability.environment", "", "Environment name (dev, staging, prod)"},
	{"observability.metrics_enabled", false, "Enable metrics collection"},
	{"observability.tracing_enabled", false, "Enable distributed tracing"},
	{"observability.trace_sample_ratio", float64(0), "Trace sampling ratio from 0.0 to 1.0"},
	{"observability.sqlcommenter_enabled", false, "Inject trace context into SQL queries"},
	{"observability.logging.level", "", "Log level (debug, info, warn, error)"},
	{"observability.logging.format", "", "Log format (json, text)"},
	{"observability.logging.exports_enabled", false, "Enable OTLP log export"},
	{"observability.otlp.endpoint", "", "OTLP endpoint for all signals (e.g., localhost:4317)"},
	{"observability.otlp.protocol", "", "OTLP protocol for all signals (grpc, http/protobuf)"},
	{"observability.otlp.insecure", false, "Use insecure connection (no TLS)"},
	{"observability.otlp.timeout", time.Duration(0), "OTLP export timeout"},
	{"observability.otlp.compression", "", "OTLP compression (none, gzip)"},
	{"observability.traces.endpoint", "", "OTLP endpoint for traces only"},
	{"observability.traces.protocol", "", "OTLP protocol for traces (grpc, http/protobuf)"},
	{"observability.logs.endpoint", "", "OTLP endpoint for logs only"},
	{"observability.logs.protocol", "", "OTLP protocol for logs (grpc, http/protobuf)"},
}

func init() {
	for _, d := range flagDefs {
		configFlags[d.name] = struct{}{}
	}
}

// DefineFlags defines all configuration flags on fs using canonical
// snake_case keys. Calling it again on the same set is a no-op.
func DefineFlags(fs *pflag.FlagSet) {
	if fs.Lookup("config") != nil {
		return
	}
	for _, d := range flagDefs {
		switch val := d.value.(type) {
		case string:
			fs.String(d.name, val, d.usage)
		case int:
			fs.Int(d.name, val, d.usage)
		case bool:
			fs.Bool(d.name, val, d.usage)
		case float64:
			fs.Float64(d.name, val, d.usage)
		case time.Duration:
			fs.Duration(d.name, val, d.usage)
		}
	}
	fs.StringP("config", "c", "", "Config file path")
}

// setDefaults sets default values (lowest precedence).
func setDefaults(v *viper.Viper) {
	// Parser defaults
	v.SetDefault("parser.initials", 2)
	v.SetDefault("parser.lc_prefix", false)
	v.SetDefault("parser.force_case", false)
	v.SetDefault("parser.auto_clean", false)
	v.SetDefault("parser.allow_reversed", false)
	v.SetDefault("parser.joint_names", false)
	v.SetDefault("parser.extended_titles", false)
	v.SetDefault("parser.salutation", "")
	v.SetDefault("parser.salutation_default", "")

	// Override table defaults
	v.SetDefault("overrides.source", OverridesSourceFile)
	v.SetDefault("overrides.path", "surnames.txt")
	v.SetDefault("overrides.table", "surname_overrides")
	v.SetDefault("overrides.column", "surname")

	// Database defaults
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "nameparse")
	v.SetDefault("database.password", "")
	v.SetDefault("database.password_file", "")
	v.SetDefault("database.password_prompt", false)
	v.SetDefault("database.database", "nameparse")
	v.SetDefault("database.tls_mode", "")
	v.SetDefault("database.pool.max_open", 4)
	v.SetDefault("database.pool.max_idle", 2)
	v.SetDefault("database.pool.max_lifetime", 5*time.Minute)
	v.SetDefault("database.connection_timeout", 10*time.Second)

	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.graphiql_enabled", false)
	v.SetDefault("server.max_batch_size", 1000)
	v.SetDefault("server.admin.reload_enabled", false)
	v.SetDefault("server.admin.auth_token", "")
	v.SetDefault("server.admin.auth_token_file", "")
	v.SetDefault("server.auth.oidc_enabled", false)
	v.SetDefault("server.auth.oidc_issuer_url", "")
	v.SetDefault("server.auth.oidc_audience", "")
	v.SetDefault("server.auth.oidc_clock_skew", 2*time.Minute)
	v.SetDefault("server.auth.oidc_ca_file", "")
	v.SetDefault("server.auth.oidc_skip_tls_verify", false)
	v.SetDefault("server.auth.protect_graphql", false)
	v.SetDefault("server.rate_limit_enabled", false)
	v.SetDefault("server.rate_limit_rps", 0.0)
	v.SetDefault("server.rate_limit_burst", 0)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.tls_cert_file", "")
	v.SetDefault("server.tls_key_file", "")

	// Observability defaults
	v.SetDefault("observability.service_name", "nameparse")
	v.SetDefault("observability.service_version", "")
	v.SetDefault("observability.environment", "development")
	v.SetDefault("observability.metrics_enabled", true)
	v.SetDefault("observability.tracing_enabled", false)
	v.SetDefault("observability.trace_sample_ratio", 1.0)
	v.SetDefault("observability.sqlcommenter_enabled", true)

	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.logging.exports_enabled", false)

	v.SetDefault("observability.otlp.endpoint", "localhost:4317")
	v.SetDefault("observability.otlp.protocol", "grpc")
	v.SetDefault("observability.otlp.insecure", false)
	v.SetDefault("observability.otlp.tls_cert_file", "")
	v.SetDefault("observability.otlp.tls_client_cert_file", "")
	v.SetDefault("observability.otlp.tls_client_key_file", "")
	v.SetDefault("observability.otlp.timeout", 10*time.Second)
	v.SetDefault("observability.otlp.compression", "gzip")
	v.SetDefault("observability.otlp.retry_enabled", true)
	v.SetDefault("observability.otlp.retry_max_attempts", 3)
}

// promptPassword prompts the user for a password without echoing to terminal.
func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Enter database password: ")
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(bytePassword), nil
}

// readSecretFile reads a trimmed secret from path, or from stdin for "@-".
func readSecretFile(path string) (string, error) {
	var data []byte
	var err error

	if path == "@-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func validateSingleStdinFileSource(v *viper.Viper) error {
	stdinBackedKeys := []string{
		"database.password_file",
		"server.admin.auth_token_file",
	}

	var configured []string
	for _, key := range stdinBackedKeys {
		if strings.TrimSpace(v.GetString(key)) == "@-" {
			configured = append(configured, key)
		}
	}

	if len(configured) > 1 {
		return fmt.Errorf(
			"multiple stdin-backed file settings use @- (%s); only one @- source is allowed",
			strings.Join(configured, ", "),
		)
	}

	return nil
}

func stringToStringSliceHookFunc(sep string) mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
			return data, nil
		}

		raw := strings.TrimSpace(data.(string))
		if raw == "" {
			return []string{}, nil
		}

		parts := strings.Split(raw, sep)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
}

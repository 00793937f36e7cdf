package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadArgs(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	return LoadFlags(fs, args)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFlags_Defaults(t *testing.T) {
	cfg, err := loadArgs(t, "--config", writeFile(t, "empty.yaml", "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Parser.Initials)
	assert.False(t, cfg.Parser.JointNames)
	assert.Equal(t, OverridesSourceFile, cfg.Overrides.Source)
	assert.Equal(t, "surnames.txt", cfg.Overrides.Path)
	assert.Equal(t, "surname_overrides", cfg.Overrides.Table)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Server.MaxBatchSize)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Server.Auth.OIDCEnabled)
	assert.Equal(t, 2*time.Minute, cfg.Server.Auth.OIDCClockSkew)
	assert.Equal(t, "nameparse", cfg.Observability.ServiceName)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.Nil(t, cfg.Observability.Traces)

	assert.False(t, cfg.Validate().HasErrors())
}

func TestLoadFlags_Precedence(t *testing.T) {
	path := writeFile(t, "nameparse.yaml", `
parser:
  initials: 3
  joint_names: true
  salutation: Dear
  salutation_default: Sir
server:
  port: 9000
  max_batch_size: 50
`)

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := loadArgs(t, "--config", path)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Parser.Initials)
		assert.True(t, cfg.Parser.JointNames)
		assert.Equal(t, "Dear", cfg.Parser.Salutation)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, 50, cfg.Server.MaxBatchSize)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("NAMEPARSE_SERVER_PORT", "9100")
		t.Setenv("NAMEPARSE_PARSER_ALLOW_REVERSED", "true")

		cfg, err := loadArgs(t, "--config", path)
		require.NoError(t, err)
		assert.Equal(t, 9100, cfg.Server.Port)
		assert.True(t, cfg.Parser.AllowReversed)
		assert.Equal(t, 3, cfg.Parser.Initials)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("NAMEPARSE_SERVER_PORT", "9100")

		cfg, err := loadArgs(t,
			"--config", path,
			"--server.port", "9200",
			"--parser.initials", "1",
			"--parser.joint_names=false",
			"--server.read_timeout", "3s",
		)
		require.NoError(t, err)
		assert.Equal(t, 9200, cfg.Server.Port)
		assert.Equal(t, 1, cfg.Parser.Initials)
		assert.False(t, cfg.Parser.JointNames)
		assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	})
}

func TestLoadFlags_AuthSection(t *testing.T) {
	cfg, err := loadArgs(t,
		"--config", writeFile(t, "empty.yaml", "{}\n"),
		"--server.auth.oidc_enabled",
		"--server.auth.oidc_issuer_url", "https://issuer.example.com",
		"--server.auth.oidc_audience", "nameparse",
		"--server.auth.oidc_clock_skew", "30s",
		"--server.auth.protect_graphql",
	)
	require.NoError(t, err)

	assert.Equal(t, AuthConfig{
		OIDCEnabled:    true,
		OIDCIssuerURL:  "https://issuer.example.com",
		OIDCAudience:   "nameparse",
		OIDCClockSkew:  30 * time.Second,
		ProtectGraphQL: true,
	}, cfg.Server.Auth)
	assert.False(t, cfg.Validate().HasErrors())
}

func TestLoadFlags_UnknownKeyRejected(t *testing.T) {
	path := writeFile(t, "bad.yaml", "parser:\n  initals: 3\n")

	_, err := loadArgs(t, "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal config")
}

func TestLoadFlags_MissingExplicitConfigFile(t *testing.T) {
	_, err := loadArgs(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFlags_SecretFiles(t *testing.T) {
	cfgPath := writeFile(t, "empty.yaml", "{}\n")

	t.Run("password and token", func(t *testing.T) {
		pwd := writeFile(t, "pwd", "s3cret\n")
		token := writeFile(t, "token", "  admin-token \n")

		cfg, err := loadArgs(t,
			"--config", cfgPath,
			"--database.password_file", pwd,
			"--server.admin.auth_token_file", token,
		)
		require.NoError(t, err)
		assert.Equal(t, "s3cret", cfg.Database.Password)
		assert.Equal(t, "admin-token", cfg.Server.Admin.AuthToken)
	})

	t.Run("explicit password wins", func(t *testing.T) {
		pwd := writeFile(t, "pwd", "from-file")

		cfg, err := loadArgs(t,
			"--config", cfgPath,
			"--database.password", "from-flag",
			"--database.password_file", pwd,
		)
		require.NoError(t, err)
		assert.Equal(t, "from-flag", cfg.Database.Password)
	})

	t.Run("empty token file", func(t *testing.T) {
		token := writeFile(t, "token", "\n")

		_, err := loadArgs(t, "--config", cfgPath, "--server.admin.auth_token_file", token)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is empty")
	})

	t.Run("missing password file", func(t *testing.T) {
		_, err := loadArgs(t, "--config", cfgPath, "--database.password_file", filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read database password file")
	})
}

func TestDefineFlags_Idempotent(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	DefineFlags(fs)
	assert.NotPanics(t, func() { DefineFlags(fs) })
	assert.NotNil(t, fs.Lookup("parser.lc_prefix"))
	assert.NotNil(t, fs.ShorthandLookup("c"))
}

func TestLoadFlags_PreParsedFlagSet(t *testing.T) {
	fs := pflag.NewFlagSet("cli", pflag.ContinueOnError)
	DefineFlags(fs)
	fs.Bool("pretty", false, "")
	require.NoError(t, fs.Parse([]string{"--config", writeFile(t, "empty.yaml", "{}\n"), "--parser.force_case", "--pretty", "input.txt"}))

	cfg, err := LoadFlags(fs, nil)
	require.NoError(t, err)
	assert.True(t, cfg.Parser.ForceCase)
	assert.Equal(t, []string{"input.txt"}, fs.Args())
}

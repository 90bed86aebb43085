package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "fleetwatch.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FLEETWATCH_LISTEN", "FLEETWATCH_DB_PATH", "FLEETWATCH_LOG_LEVEL",
		"FLEETWATCH_LOG_FORMAT", "FLEETWATCH_DECODER", "FLEETWATCH_DEFAULT_WINDOW_HOURS",
		"FLEETWATCH_API_KEY", "FLEETWATCH_API_KEY_HASH", "FLEETWATCH_ENV_FILE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	// keep a stray .env in the working directory out of the way
	t.Chdir(t.TempDir())
}

const fullYAML = `
listen: ":9090"
db_path: "/tmp/test.db"
log_level: "debug"
log_format: "json"
decoder: "vocabulary"
default_window_hours: 48
shutdown_timeout: "30s"
webhook:
  api_key: "s3cret"
`

func TestLoad_FromYAML(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, fullYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "vocabulary", cfg.Decoder)
	assert.Equal(t, 48, cfg.DefaultWindowHours)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout.Duration)

	// the plain key is replaced by its hash
	assert.Empty(t, cfg.Webhook.APIKey)
	require.NotEmpty(t, cfg.Webhook.APIKeyHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(cfg.Webhook.APIKeyHash), []byte("s3cret")))
}

func TestLoad_FileNotFound(t *testing.T) {
	clearEnv(t)
	_, err := Load("/nonexistent/path/fleetwatch.yml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}

func TestLoad_EnvVarSubstitution(t *testing.T) {
	clearEnv(t)
	t.Setenv("NAS_DB", "/srv/nas.db")

	path := writeYAML(t, `db_path: "${NAS_DB}"`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/nas.db", cfg.DBPath)
}

func TestLoad_EnvVarSubstitution_Unset(t *testing.T) {
	clearEnv(t)

	path := writeYAML(t, `db_path: "${NAS_DB_UNSET}"`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db_path is required")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Listen)
	assert.Equal(t, "/data/fleetwatch.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "positional", cfg.Decoder)
	assert.Equal(t, 24, cfg.DefaultWindowHours)
	assert.Empty(t, cfg.Webhook.APIKeyHash)
}

func TestLoad_FromEnvVars(t *testing.T) {
	clearEnv(t)

	t.Setenv("FLEETWATCH_LISTEN", ":4000")
	t.Setenv("FLEETWATCH_DB_PATH", "/tmp/env.db")
	t.Setenv("FLEETWATCH_LOG_LEVEL", "warn")
	t.Setenv("FLEETWATCH_LOG_FORMAT", "json")
	t.Setenv("FLEETWATCH_DECODER", "vocabulary")
	t.Setenv("FLEETWATCH_DEFAULT_WINDOW_HOURS", "72")
	t.Setenv("FLEETWATCH_API_KEY", "envkey")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.Listen)
	assert.Equal(t, "/tmp/env.db", cfg.DBPath)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "vocabulary", cfg.Decoder)
	assert.Equal(t, 72, cfg.DefaultWindowHours)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(cfg.Webhook.APIKeyHash), []byte("envkey")))
}

func TestLoad_EnvOverridesYAMLScalars(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, fullYAML)

	t.Setenv("FLEETWATCH_LISTEN", ":5555")
	t.Setenv("FLEETWATCH_LOG_LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":5555", cfg.Listen)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, "fleetwatch.env")
	require.NoError(t, os.WriteFile(envFile, []byte("FLEETWATCH_LISTEN=:7000\nNAS_DB=/srv/from-env-file.db\n"), 0644))
	t.Setenv("FLEETWATCH_ENV_FILE", envFile)
	t.Cleanup(func() {
		os.Unsetenv("FLEETWATCH_LISTEN")
		os.Unsetenv("NAS_DB")
	})

	path := writeYAML(t, `db_path: "${NAS_DB}"`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Listen)
	assert.Equal(t, "/srv/from-env-file.db", cfg.DBPath)
}

func TestLoad_EnvFileMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("FLEETWATCH_ENV_FILE", "/nonexistent/fleetwatch.env")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}

func TestLoad_BothKeysRejected(t *testing.T) {
	clearEnv(t)
	hash, err := HashAPIKey("a")
	require.NoError(t, err)

	path := writeYAML(t, "webhook:\n  api_key: \"a\"\n  api_key_hash: \""+hash+"\"\n")
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not both")
}

func TestLoad_EnvKeyOverridesYAMLKeys(t *testing.T) {
	yamlHash, err := HashAPIKey("from-yaml")
	require.NoError(t, err)
	envHash, err := HashAPIKey("from-hash-env")
	require.NoError(t, err)

	tests := []struct {
		name    string
		yaml    string
		key     string
		hash    string
		want    string
		wantErr string
	}{
		{name: "key env over yaml hash", yaml: "webhook:\n  api_key_hash: \"" + yamlHash + "\"\n", key: "from-env", want: "from-env"},
		{name: "key env over yaml key", yaml: "webhook:\n  api_key: \"from-yaml\"\n", key: "from-env", want: "from-env"},
		{name: "hash env over yaml key", yaml: "webhook:\n  api_key: \"from-yaml\"\n", hash: envHash, want: "from-hash-env"},
		{name: "no env keeps yaml hash", yaml: "webhook:\n  api_key_hash: \"" + yamlHash + "\"\n", want: "from-yaml"},
		{name: "both env vars", yaml: "listen: \":8000\"\n", key: "a", hash: envHash, wantErr: "not both"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.key != "" {
				t.Setenv("FLEETWATCH_API_KEY", tt.key)
			}
			if tt.hash != "" {
				t.Setenv("FLEETWATCH_API_KEY_HASH", tt.hash)
			}

			cfg, err := Load(writeYAML(t, tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cfg.Webhook.APIKey)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(cfg.Webhook.APIKeyHash), []byte(tt.want)))
		})
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "missing listen",
			mutate:  func(c *Config) { c.Listen = "" },
			wantErr: "listen is required",
		},
		{
			name:    "missing db path",
			mutate:  func(c *Config) { c.DBPath = "" },
			wantErr: "db_path is required",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "log_level must be one of",
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.LogFormat = "yaml" },
			wantErr: "log_format must be one of",
		},
		{
			name:    "unknown decoder",
			mutate:  func(c *Config) { c.Decoder = "regex" },
			wantErr: "unknown decoder strategy",
		},
		{
			name:    "window zero",
			mutate:  func(c *Config) { c.DefaultWindowHours = 0 },
			wantErr: "default_window_hours must be between 1 and 8760",
		},
		{
			name:    "window too large",
			mutate:  func(c *Config) { c.DefaultWindowHours = 8761 },
			wantErr: "default_window_hours must be between 1 and 8760",
		},
		{
			name:    "shutdown timeout zero",
			mutate:  func(c *Config) { c.ShutdownTimeout = Duration{} },
			wantErr: "shutdown_timeout must be > 0",
		},
		{
			name:    "api key hash not bcrypt",
			mutate:  func(c *Config) { c.Webhook.APIKeyHash = "plaintext" },
			wantErr: "not a bcrypt hash",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, "{{invalid yaml")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, `shutdown_timeout: "not-a-duration"`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestDuration_MarshalYAML(t *testing.T) {
	d := Duration{Duration: 5 * time.Minute}
	v, err := d.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "5m0s", v)
}

func TestLoad_ValidationFails(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, `decoder: "bogus"`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation")
}

func TestLoad_EmptyFile(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Listen)
}

func TestHashAPIKey(t *testing.T) {
	hash, err := HashAPIKey("hunter2")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter3")))
}

func FuzzExpandEnvVars(f *testing.F) {
	f.Add([]byte(`listen: ":8000"`))
	f.Add([]byte(`api_key: "${FLEETWATCH_SECRET}"`))
	f.Add([]byte(`${} ${VAR} $VAR`))
	f.Add([]byte(`db_path: "${A}${B}"`))
	f.Fuzz(func(t *testing.T, data []byte) {
		// Must not panic
		_ = expandEnvVars(data)
	})
}

// validConfig returns a minimal valid Config for mutation in tests.
func validConfig() *Config {
	return &Config{
		Listen:             ":8000",
		DBPath:             "/data/fleetwatch.db",
		LogLevel:           "info",
		LogFormat:          "text",
		Decoder:            "positional",
		DefaultWindowHours: 24,
		ShutdownTimeout:    Duration{10 * time.Second},
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	sserr "github.com/StricklySoft/stricklysoft-reliability/pkg/errors"
)

// ===========================================================================
// Test Types
// ===========================================================================

// testSecret mimics notify.Secret: a named string type with a redacted
// String() method. Verifies that setField works for named string types
// without importing the notify package.
type testSecret string

func (s testSecret) String() string { return "[REDACTED]" }
func (s testSecret) Value() string  { return string(s) }

// serviceConfig is the primary fixture: one field per commonly loaded
// kind (string, int, bool, Duration), each with a default.
type serviceConfig struct {
	Addr       string        `env:"ADDR" envDefault:":8090" yaml:"addr" json:"addr"`
	ErrorLimit int           `env:"ERROR_LIMIT" envDefault:"15" yaml:"error_limit" json:"error_limit"`
	Debug      bool          `env:"DEBUG" envDefault:"false" yaml:"debug" json:"debug"`
	Cooldown   time.Duration `env:"COOLDOWN" envDefault:"30s" yaml:"cooldown" json:"cooldown"`
}

type requiredConfig struct {
	Service    string `env:"SERVICE" required:"true"`
	ErrorLimit int    `env:"ERROR_LIMIT"`
}

type secretConfig struct {
	URL   string     `env:"URL"`
	Token testSecret `env:"TOKEN"`
}

type nestedConfig struct {
	Service string           `env:"SERVICE"`
	Webhook webhookSubConfig `env:"WEBHOOK"`
}

type webhookSubConfig struct {
	URL        string     `env:"URL" yaml:"url" json:"url"`
	MaxRetries int        `env:"MAX_RETRIES" yaml:"max_retries" json:"max_retries"`
	Token      testSecret `env:"TOKEN"`
}

type sliceConfig struct {
	Recipients []string `env:"RECIPIENTS" envDefault:"ops,sre,oncall"`
}

type int32Config struct {
	MaxEvents int32 `env:"MAX_EVENTS" envDefault:"500"`
}

type floatConfig struct {
	HealthFloor float64 `env:"HEALTH_FLOOR" envDefault:"40.5"`
}

type uintConfig struct {
	MaxFailures uint32 `env:"MAX_FAILURES" envDefault:"5"`
}

type validatableConfig struct {
	Addr       string `env:"ADDR"`
	AlertBelow int    `env:"ALERT_BELOW"`
}

func (c *validatableConfig) Validate() error {
	if c.AlertBelow < 0 || c.AlertBelow > 100 {
		return sserr.Newf(sserr.CategoryValidation,
			"config: alert floor %d is outside [0, 100]", c.AlertBelow)
	}
	return nil
}

type validatableStdlibConfig struct {
	Team string `env:"TEAM"`
}

func (c *validatableStdlibConfig) Validate() error {
	if c.Team == "" {
		return errors.New("owning team is required")
	}
	return nil
}

type nestedRequiredConfig struct {
	Service    string              `env:"SERVICE"`
	Escalation escalationSubConfig `env:"ESCALATION"`
}

type escalationSubConfig struct {
	Endpoint string `env:"ENDPOINT" required:"true"`
}

// writeConfigFile creates a config file in the test's temp directory and
// returns its path. The test is failed if the file cannot be written.
func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writeConfigFile() error: %v", err)
	}
	return path
}

// ===========================================================================
// Loader Builder Tests
// ===========================================================================

// TestNew_ReturnsNonNilLoader verifies that New returns a non-nil Loader.
func TestNew_ReturnsNonNilLoader(t *testing.T) {
	l := New()
	if l == nil {
		t.Fatal("New() = nil, want non-nil Loader")
	}
}

// TestLoader_BuilderChaining verifies that WithEnvPrefix and WithFile
// both return the same Loader for fluent chaining.
func TestLoader_BuilderChaining(t *testing.T) {
	l := New()
	if got := l.WithEnvPrefix("RESILIENT"); got != l {
		t.Error("WithEnvPrefix() did not return the same Loader")
	}
	if got := l.WithFile("reliability.yaml"); got != l {
		t.Error("WithFile() did not return the same Loader")
	}
}

// ===========================================================================
// Load — Input Validation Tests
// ===========================================================================

// TestLoader_Load_NilPointer verifies that Load rejects a nil pointer.
func TestLoader_Load_NilPointer(t *testing.T) {
	err := New().Load((*serviceConfig)(nil))
	if err == nil {
		t.Fatal("Load(nil) expected error, got nil")
	}
	if !sserr.IsConfiguration(err) {
		t.Errorf("IsConfiguration() = false, want true for nil pointer")
	}
}

// TestLoader_Load_NonPointer verifies that Load rejects a struct passed
// by value.
func TestLoader_Load_NonPointer(t *testing.T) {
	err := New().Load(serviceConfig{})
	if err == nil {
		t.Fatal("Load(struct) expected error, got nil")
	}
	if !sserr.IsConfiguration(err) {
		t.Errorf("IsConfiguration() = false, want true for non-pointer")
	}
}

// TestLoader_Load_PointerToNonStruct verifies that Load rejects a pointer
// to a non-struct type.
func TestLoader_Load_PointerToNonStruct(t *testing.T) {
	n := 42
	err := New().Load(&n)
	if err == nil {
		t.Fatal("Load(*int) expected error, got nil")
	}
	if !sserr.IsConfiguration(err) {
		t.Errorf("IsConfiguration() = false, want true for non-struct pointer")
	}
}

// ===========================================================================
// Load — envDefault Tag Tests
// ===========================================================================

// TestLoader_Load_Defaults_Applied verifies that envDefault tags fill
// zero-valued fields of every basic kind (string, int, bool, Duration).
func TestLoader_Load_Defaults_Applied(t *testing.T) {
	var cfg serviceConfig
	if err := New().Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Addr != ":8090" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":8090")
	}
	if cfg.ErrorLimit != 15 {
		t.Errorf("ErrorLimit = %d, want %d", cfg.ErrorLimit, 15)
	}
	if cfg.Debug != false {
		t.Errorf("Debug = %v, want false", cfg.Debug)
	}
	if cfg.Cooldown != 30*time.Second {
		t.Errorf("Cooldown = %v, want %v", cfg.Cooldown, 30*time.Second)
	}
}

// TestLoader_Load_Defaults_NotOverwriteExisting verifies that envDefault
// tags leave pre-populated non-zero fields alone.
func TestLoader_Load_Defaults_NotOverwriteExisting(t *testing.T) {
	cfg := serviceConfig{Addr: "monitor.internal:7070", ErrorLimit: 25}
	if err := New().Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Addr != "monitor.internal:7070" {
		t.Errorf("Addr = %q, want %q (should not be overwritten)",
			cfg.Addr, "monitor.internal:7070")
	}
	if cfg.ErrorLimit != 25 {
		t.Errorf("ErrorLimit = %d, want %d (should not be overwritten)", cfg.ErrorLimit, 25)
	}
}

// TestLoader_Load_Defaults_Slice verifies that a comma-separated
// envDefault is split into a string slice.
func TestLoader_Load_Defaults_Slice(t *testing.T) {
	var cfg sliceConfig
	if err := New().Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := []string{"ops", "sre", "oncall"}
	if len(cfg.Recipients) != len(want) {
		t.Fatalf("Recipients length = %d, want %d", len(cfg.Recipients), len(want))
	}
	for i := range want {
		if cfg.Recipients[i] != want[i] {
			t.Errorf("Recipients[%d] = %q, want %q", i, cfg.Recipients[i], want[i])
		}
	}
}

// TestLoader_Load_Defaults_NumericKinds verifies that envDefault parsing
// covers the sized numeric kinds used across the SDK's config structs.
func TestLoader_Load_Defaults_NumericKinds(t *testing.T) {
	t.Run("int32", func(t *testing.T) {
		var cfg int32Config
		if err := New().Load(&cfg); err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.MaxEvents != 500 {
			t.Errorf("MaxEvents = %d, want 500", cfg.MaxEvents)
		}
	})

	t.Run("float64", func(t *testing.T) {
		var cfg floatConfig
		if err := New().Load(&cfg); err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.HealthFloor != 40.5 {
			t.Errorf("HealthFloor = %v, want 40.5", cfg.HealthFloor)
		}
	})

	t.Run("uint32", func(t *testing.T) {
		var cfg uintConfig
		if err := New().Load(&cfg); err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.MaxFailures != 5 {
			t.Errorf("MaxFailures = %d, want 5", cfg.MaxFailures)
		}
	})
}

// ===========================================================================
// Load — YAML File Loading Tests
// ===========================================================================

// TestLoader_Load_YAMLFile verifies that values are loaded from a YAML file.
func TestLoader_Load_YAMLFile(t *testing.T) {
	path := writeConfigFile(t, "reliability.yaml", `
addr: diag.internal:7070
error_limit: 40
debug: true
cooldown: 10s
`)

	var cfg serviceConfig
	if err := New().WithFile(path).Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Addr != "diag.internal:7070" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, "diag.internal:7070")
	}
	if cfg.ErrorLimit != 40 {
		t.Errorf("ErrorLimit = %d, want %d", cfg.ErrorLimit, 40)
	}
	if cfg.Debug != true {
		t.Errorf("Debug = %v, want true", cfg.Debug)
	}
	if cfg.Cooldown != 10*time.Second {
		t.Errorf("Cooldown = %v, want %v", cfg.Cooldown, 10*time.Second)
	}
}

// TestLoader_Load_YAMLFile_OverridesDefaults verifies that file values
// beat envDefault values.
func TestLoader_Load_YAMLFile_OverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, "reliability.yaml", `
addr: from-file
error_limit: 99
`)

	var cfg serviceConfig
	if err := New().WithFile(path).Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Addr != "from-file" {
		t.Errorf("Addr = %q, want %q (file should override default)", cfg.Addr, "from-file")
	}
	if cfg.ErrorLimit != 99 {
		t.Errorf("ErrorLimit = %d, want %d (file should override default)", cfg.ErrorLimit, 99)
	}
}

// TestLoader_Load_MissingFile_NoError verifies that a missing config file
// is not an error — file configuration is optional.
func TestLoader_Load_MissingFile_NoError(t *testing.T) {
	var cfg serviceConfig
	err := New().WithFile("/nonexistent/path/reliability.yaml").Load(&cfg)
	if err != nil {
		t.Fatalf("Load() with missing file error: %v (expected nil)", err)
	}

	// Defaults should still be applied.
	if cfg.Addr != ":8090" {
		t.Errorf("Addr = %q, want %q (default should apply)", cfg.Addr, ":8090")
	}
}

// TestLoader_Load_YMLExtension verifies that .yml extension is recognized.
func TestLoader_Load_YMLExtension(t *testing.T) {
	path := writeConfigFile(t, "reliability.yml", `
addr: from-yml
`)

	var cfg serviceConfig
	if err := New().WithFile(path).Load(&cfg); err != nil {
		t.Fatalf("Load() with .yml error: %v", err)
	}

	if cfg.Addr != "from-yml" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, "from-yml")
	}
}

// ===========================================================================
// Load — JSON File Loading Tests
// ===========================================================================

// TestLoader_Load_JSONFile verifies that values are loaded from a JSON file.
func TestLoader_Load_JSONFile(t *testing.T) {
	path := writeConfigFile(t, "reliability.json", `{
  "addr": "diag.internal:9191",
  "error_limit": 60,
  "debug": true
}`)

	var cfg serviceConfig
	if err := New().WithFile(path).Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Addr != "diag.internal:9191" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, "diag.internal:9191")
	}
	if cfg.ErrorLimit != 60 {
		t.Errorf("ErrorLimit = %d, want %d", cfg.ErrorLimit, 60)
	}
}

// TestLoader_Load_UnsupportedExtension verifies that an unsupported file
// extension returns a configuration error.
func TestLoader_Load_UnsupportedExtension(t *testing.T) {
	path := writeConfigFile(t, "reliability.toml", `addr = ":8090"`)

	var cfg serviceConfig
	err := New().WithFile(path).Load(&cfg)
	if err == nil {
		t.Fatal("Load() with .toml expected error, got nil")
	}
	if !sserr.IsConfiguration(err) {
		t.Errorf("IsConfiguration() = false, want true for unsupported extension")
	}
}

// ===========================================================================
// Load — File Security Tests
// ===========================================================================

// TestLoader_Load_DirectoryTraversal verifies that file paths containing
// directory traversal sequences are rejected.
func TestLoader_Load_DirectoryTraversal(t *testing.T) {
	var cfg serviceConfig
	err := New().WithFile("../../../etc/passwd").Load(&cfg)
	if err == nil {
		t.Fatal("Load() with directory traversal expected error, got nil")
	}
	if !sserr.IsConfiguration(err) {
		t.Errorf("IsConfiguration() = false, want true for directory traversal")
	}
}

// ===========================================================================
// Load — Environment Variable Tests
// ===========================================================================

// TestLoader_Load_EnvOverridesFile verifies that environment variables
// beat file values.
func TestLoader_Load_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "reliability.yaml", `
addr: from-file
error_limit: 40
`)

	t.Setenv("ADDR", "from-env")
	t.Setenv("ERROR_LIMIT", "70")

	var cfg serviceConfig
	if err := New().WithFile(path).Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Addr != "from-env" {
		t.Errorf("Addr = %q, want %q (env should override file)", cfg.Addr, "from-env")
	}
	if cfg.ErrorLimit != 70 {
		t.Errorf("ErrorLimit = %d, want %d (env should override file)", cfg.ErrorLimit, 70)
	}
}

// TestLoader_Load_EnvOverridesDefault verifies that environment variables
// beat envDefault values.
func TestLoader_Load_EnvOverridesDefault(t *testing.T) {
	t.Setenv("ADDR", "env.internal:8090")

	var cfg serviceConfig
	if err := New().Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Addr != "env.internal:8090" {
		t.Errorf("Addr = %q, want %q (env should override default)",
			cfg.Addr, "env.internal:8090")
	}
}

// TestLoader_Load_EnvPrefix verifies that WithEnvPrefix prepends the
// prefix to environment variable lookups.
func TestLoader_Load_EnvPrefix(t *testing.T) {
	t.Setenv("RESILIENT_ADDR", "prefixed.internal:8090")
	t.Setenv("RESILIENT_ERROR_LIMIT", "35")

	var cfg serviceConfig
	if err := New().WithEnvPrefix("RESILIENT").Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Addr != "prefixed.internal:8090" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, "prefixed.internal:8090")
	}
	if cfg.ErrorLimit != 35 {
		t.Errorf("ErrorLimit = %d, want %d", cfg.ErrorLimit, 35)
	}
}

// TestLoader_Load_EnvPrefix_UppercaseNormalization verifies that a
// lowercase prefix is uppercased automatically.
func TestLoader_Load_EnvPrefix_UppercaseNormalization(t *testing.T) {
	t.Setenv("RESILIENT_ADDR", "upper.internal:8090")

	var cfg serviceConfig
	if err := New().WithEnvPrefix("resilient").Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Addr != "upper.internal:8090" {
		t.Errorf("Addr = %q, want %q (prefix should be uppercased)",
			cfg.Addr, "upper.internal:8090")
	}
}

// TestLoader_Load_EnvNotSet_KeepsFileValue verifies that an unset
// environment variable does not clear the file value.
func TestLoader_Load_EnvNotSet_KeepsFileValue(t *testing.T) {
	path := writeConfigFile(t, "reliability.yaml", `
addr: from-file
`)

	// Do NOT set the ADDR env var.

	var cfg serviceConfig
	if err := New().WithFile(path).Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Addr != "from-file" {
		t.Errorf("Addr = %q, want %q (unset env should preserve file value)",
			cfg.Addr, "from-file")
	}
}

// ===========================================================================
// Load — Type Parsing Tests
// ===========================================================================

// TestLoader_Load_Types verifies that all supported types are correctly
// parsed from environment variables.
func TestLoader_Load_Types(t *testing.T) {
	tests := []struct {
		name    string
		envKey  string
		envVal  string
		loadCfg func(t *testing.T) error
	}{
		{
			name:   "string",
			envKey: "ADDR",
			envVal: "diag.internal:8090",
			loadCfg: func(t *testing.T) error {
				var cfg serviceConfig
				err := New().Load(&cfg)
				if err == nil && cfg.Addr != "diag.internal:8090" {
					t.Errorf("Addr = %q, want %q", cfg.Addr, "diag.internal:8090")
				}
				return err
			},
		},
		{
			name:   "int",
			envKey: "ERROR_LIMIT",
			envVal: "25",
			loadCfg: func(t *testing.T) error {
				var cfg serviceConfig
				err := New().Load(&cfg)
				if err == nil && cfg.ErrorLimit != 25 {
					t.Errorf("ErrorLimit = %d, want %d", cfg.ErrorLimit, 25)
				}
				return err
			},
		},
		{
			name:   "int32",
			envKey: "MAX_EVENTS",
			envVal: "750",
			loadCfg: func(t *testing.T) error {
				var cfg int32Config
				err := New().Load(&cfg)
				if err == nil && cfg.MaxEvents != 750 {
					t.Errorf("MaxEvents = %d, want %d", cfg.MaxEvents, 750)
				}
				return err
			},
		},
		{
			name:   "float64",
			envKey: "HEALTH_FLOOR",
			envVal: "72.25",
			loadCfg: func(t *testing.T) error {
				var cfg floatConfig
				err := New().Load(&cfg)
				if err == nil && cfg.HealthFloor != 72.25 {
					t.Errorf("HealthFloor = %v, want %v", cfg.HealthFloor, 72.25)
				}
				return err
			},
		},
		{
			name:   "uint32",
			envKey: "MAX_FAILURES",
			envVal: "7",
			loadCfg: func(t *testing.T) error {
				var cfg uintConfig
				err := New().Load(&cfg)
				if err == nil && cfg.MaxFailures != 7 {
					t.Errorf("MaxFailures = %d, want %d", cfg.MaxFailures, 7)
				}
				return err
			},
		},
		{
			name:   "bool_true",
			envKey: "DEBUG",
			envVal: "true",
			loadCfg: func(t *testing.T) error {
				var cfg serviceConfig
				err := New().Load(&cfg)
				if err == nil && !cfg.Debug {
					t.Error("Debug = false, want true")
				}
				return err
			},
		},
		{
			name:   "bool_1",
			envKey: "DEBUG",
			envVal: "1",
			loadCfg: func(t *testing.T) error {
				var cfg serviceConfig
				err := New().Load(&cfg)
				if err == nil && !cfg.Debug {
					t.Error("Debug = false, want true (from '1')")
				}
				return err
			},
		},
		{
			name:   "duration",
			envKey: "COOLDOWN",
			envVal: "1h30m",
			loadCfg: func(t *testing.T) error {
				var cfg serviceConfig
				err := New().Load(&cfg)
				if err == nil && cfg.Cooldown != 90*time.Minute {
					t.Errorf("Cooldown = %v, want %v", cfg.Cooldown, 90*time.Minute)
				}
				return err
			},
		},
		{
			name:   "slice_trims_whitespace",
			envKey: "RECIPIENTS",
			envVal: "ops, sre, oncall",
			loadCfg: func(t *testing.T) error {
				var cfg sliceConfig
				err := New().Load(&cfg)
				if err == nil {
					want := []string{"ops", "sre", "oncall"}
					if len(cfg.Recipients) != len(want) {
						t.Fatalf("Recipients length = %d, want %d", len(cfg.Recipients), len(want))
					}
					for i := range want {
						if cfg.Recipients[i] != want[i] {
							t.Errorf("Recipients[%d] = %q, want %q", i, cfg.Recipients[i], want[i])
						}
					}
				}
				return err
			},
		},
		{
			name:   "named_string_secret",
			envKey: "TOKEN",
			envVal: "tok-93f1",
			loadCfg: func(t *testing.T) error {
				var cfg secretConfig
				err := New().Load(&cfg)
				if err == nil {
					if cfg.Token.Value() != "tok-93f1" {
						t.Errorf("Token.Value() = %q, want %q", cfg.Token.Value(), "tok-93f1")
					}
					if cfg.Token.String() != "[REDACTED]" {
						t.Errorf("Token.String() = %q, want %q", cfg.Token.String(), "[REDACTED]")
					}
				}
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envVal)
			if err := tt.loadCfg(t); err != nil {
				t.Fatalf("Load() error: %v", err)
			}
		})
	}
}

// ===========================================================================
// Load — Secret Type Tests
// ===========================================================================

// TestLoader_Load_SecretFromEnv verifies that named string types (like
// notify.Secret) are populated from environment variables, and that
// Value() exposes the raw value while String() stays redacted.
func TestLoader_Load_SecretFromEnv(t *testing.T) {
	t.Setenv("TOKEN", "hook-token-93f1")

	var cfg secretConfig
	if err := New().Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Token.Value() != "hook-token-93f1" {
		t.Errorf("Token.Value() = %q, want %q", cfg.Token.Value(), "hook-token-93f1")
	}
	if cfg.Token.String() != "[REDACTED]" {
		t.Errorf("Token.String() = %q, want %q", cfg.Token.String(), "[REDACTED]")
	}
}

// ===========================================================================
// Load — Nested Struct Tests
// ===========================================================================

// TestLoader_Load_NestedStruct_Env verifies that nested struct fields are
// loaded from environment variables with the parent's env tag as prefix.
func TestLoader_Load_NestedStruct_Env(t *testing.T) {
	t.Setenv("SERVICE", "alerting")
	t.Setenv("WEBHOOK_URL", "https://hooks.example.com/oncall")
	t.Setenv("WEBHOOK_MAX_RETRIES", "4")
	t.Setenv("WEBHOOK_TOKEN", "hook-tok")

	var cfg nestedConfig
	if err := New().Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Service != "alerting" {
		t.Errorf("Service = %q, want %q", cfg.Service, "alerting")
	}
	if cfg.Webhook.URL != "https://hooks.example.com/oncall" {
		t.Errorf("Webhook.URL = %q, want %q",
			cfg.Webhook.URL, "https://hooks.example.com/oncall")
	}
	if cfg.Webhook.MaxRetries != 4 {
		t.Errorf("Webhook.MaxRetries = %d, want %d", cfg.Webhook.MaxRetries, 4)
	}
	if cfg.Webhook.Token.Value() != "hook-tok" {
		t.Errorf("Webhook.Token.Value() = %q, want %q",
			cfg.Webhook.Token.Value(), "hook-tok")
	}
}

// TestLoader_Load_NestedStruct_WithPrefix verifies that the global env
// prefix is combined with the nested struct prefix.
func TestLoader_Load_NestedStruct_WithPrefix(t *testing.T) {
	t.Setenv("RESILIENT_WEBHOOK_URL", "https://hooks.internal/prefixed")
	t.Setenv("RESILIENT_WEBHOOK_MAX_RETRIES", "6")

	var cfg nestedConfig
	if err := New().WithEnvPrefix("RESILIENT").Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Webhook.URL != "https://hooks.internal/prefixed" {
		t.Errorf("Webhook.URL = %q, want %q",
			cfg.Webhook.URL, "https://hooks.internal/prefixed")
	}
	if cfg.Webhook.MaxRetries != 6 {
		t.Errorf("Webhook.MaxRetries = %d, want %d", cfg.Webhook.MaxRetries, 6)
	}
}

// TestLoader_Load_NestedStruct_File verifies that nested struct fields
// are loaded from a YAML file with nested structure.
func TestLoader_Load_NestedStruct_File(t *testing.T) {
	// The parent fields carry only env tags, so YAML maps them by the
	// lowercased field name (service, webhook). The webhookSubConfig
	// fields carry explicit yaml tags, which control the inner mapping.
	path := writeConfigFile(t, "reliability.yaml", `
service: alerting-file
webhook:
  url: https://hooks.internal/from-file
  max_retries: 2
`)

	var cfg nestedConfig
	if err := New().WithFile(path).Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Service != "alerting-file" {
		t.Errorf("Service = %q, want %q", cfg.Service, "alerting-file")
	}
	if cfg.Webhook.URL != "https://hooks.internal/from-file" {
		t.Errorf("Webhook.URL = %q, want %q",
			cfg.Webhook.URL, "https://hooks.internal/from-file")
	}
	if cfg.Webhook.MaxRetries != 2 {
		t.Errorf("Webhook.MaxRetries = %d, want %d", cfg.Webhook.MaxRetries, 2)
	}
}

// ===========================================================================
// Load — Validation Tests (required tag)
// ===========================================================================

// TestLoader_Load_RequiredField_Set verifies that a populated required
// field passes validation.
func TestLoader_Load_RequiredField_Set(t *testing.T) {
	t.Setenv("SERVICE", "monitor-prod")

	var cfg requiredConfig
	if err := New().Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Service != "monitor-prod" {
		t.Errorf("Service = %q, want %q", cfg.Service, "monitor-prod")
	}
}

// TestLoader_Load_RequiredField_Missing verifies that a missing required
// field produces a validation error carrying CodeValidationRequired.
func TestLoader_Load_RequiredField_Missing(t *testing.T) {
	var cfg requiredConfig
	err := New().Load(&cfg)
	if err == nil {
		t.Fatal("Load() expected error for missing required field, got nil")
	}

	var ssErr *sserr.Error
	if !errors.As(err, &ssErr) {
		t.Fatalf("error type = %T, want *sserr.Error", err)
	}
	if ssErr.Code != sserr.CodeValidationRequired {
		t.Errorf("error code = %q, want %q", ssErr.Code, sserr.CodeValidationRequired)
	}
	if !sserr.IsValidation(err) {
		t.Error("IsValidation() = false, want true for required field violation")
	}
}

// TestLoader_Load_NestedRequiredField_Missing verifies that required-tag
// validation reaches fields inside nested structs.
func TestLoader_Load_NestedRequiredField_Missing(t *testing.T) {
	var cfg nestedRequiredConfig
	err := New().Load(&cfg)
	if err == nil {
		t.Fatal("Load() expected error for nested required field, got nil")
	}
	if !sserr.IsValidation(err) {
		t.Error("IsValidation() = false, want true for nested required field")
	}
}

// ===========================================================================
// Load — Validator Interface Tests
// ===========================================================================

// TestLoader_Load_Validator_Called verifies that the Validator interface
// Validate method runs after loading and tag validation succeed.
func TestLoader_Load_Validator_Called(t *testing.T) {
	t.Setenv("ADDR", ":8090")
	t.Setenv("ALERT_BELOW", "40")

	var cfg validatableConfig
	if err := New().Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v (Validate should pass for floor 40)", err)
	}

	if cfg.AlertBelow != 40 {
		t.Errorf("AlertBelow = %d, want 40", cfg.AlertBelow)
	}
}

// TestLoader_Load_Validator_ReturnsError verifies that a Validate()
// failure is surfaced through Load().
func TestLoader_Load_Validator_ReturnsError(t *testing.T) {
	t.Setenv("ADDR", ":8090")
	t.Setenv("ALERT_BELOW", "-5") // Invalid: floor must be within [0, 100].

	var cfg validatableConfig
	err := New().Load(&cfg)
	if err == nil {
		t.Fatal("Load() expected error from Validator, got nil")
	}
	if !sserr.IsValidation(err) {
		t.Errorf("IsValidation() = false, want true for Validator error")
	}
}

// TestLoader_Load_Validator_StdlibError verifies that plain errors from
// Validate() are wrapped with CategoryValidation.
func TestLoader_Load_Validator_StdlibError(t *testing.T) {
	// Don't set TEAM — triggers the Validate() failure.
	var cfg validatableStdlibConfig
	err := New().Load(&cfg)
	if err == nil {
		t.Fatal("Load() expected error from Validator, got nil")
	}
	if !sserr.IsValidation(err) {
		t.Errorf("IsValidation() = false, want true for wrapped stdlib error")
	}
}

// TestLoader_Load_Validator_NotCalledOnRequiredFailure verifies that the
// required-tag check runs (and fails) before any Validator.
func TestLoader_Load_Validator_NotCalledOnRequiredFailure(t *testing.T) {
	// requiredConfig does not implement Validator, so an error code of
	// CodeValidationRequired proves the tag check produced the failure.
	var cfg requiredConfig
	err := New().Load(&cfg)
	if err == nil {
		t.Fatal("Load() expected error, got nil")
	}
	var ssErr *sserr.Error
	if !errors.As(err, &ssErr) {
		t.Fatalf("error type = %T, want *sserr.Error", err)
	}
	if ssErr.Code != sserr.CodeValidationRequired {
		t.Errorf("error code = %q, want %q (required should fail before Validator)",
			ssErr.Code, sserr.CodeValidationRequired)
	}
}

// ===========================================================================
// Load — Priority Order Tests (Integration)
// ===========================================================================

// TestLoader_Load_PriorityOrder verifies the full priority chain:
// env > file > default.
func TestLoader_Load_PriorityOrder(t *testing.T) {
	path := writeConfigFile(t, "reliability.yaml", `
addr: from-file
error_limit: 40
`)

	// Env overrides the file value for Addr only.
	t.Setenv("ADDR", "from-env")
	// ERROR_LIMIT stays unset — the file value should win over the default.

	var cfg serviceConfig
	if err := New().WithFile(path).Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Addr != "from-env" {
		t.Errorf("Addr = %q, want %q (env > file)", cfg.Addr, "from-env")
	}
	if cfg.ErrorLimit != 40 {
		t.Errorf("ErrorLimit = %d, want %d (file > default)", cfg.ErrorLimit, 40)
	}
	if cfg.Cooldown != 30*time.Second {
		t.Errorf("Cooldown = %v, want %v (default only)", cfg.Cooldown, 30*time.Second)
	}
}

// TestLoader_Load_DefaultOnly verifies that envDefault values are used
// when neither a file nor env vars provide the field.
func TestLoader_Load_DefaultOnly(t *testing.T) {
	var cfg serviceConfig
	if err := New().Load(&cfg); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Addr != ":8090" {
		t.Errorf("Addr = %q, want %q (default only)", cfg.Addr, ":8090")
	}
	if cfg.ErrorLimit != 15 {
		t.Errorf("ErrorLimit = %d, want %d (default only)", cfg.ErrorLimit, 15)
	}
}

// ===========================================================================
// MustLoad Tests
// ===========================================================================

// TestMustLoad_Success verifies that MustLoad returns a populated struct
// when loading succeeds.
func TestMustLoad_Success(t *testing.T) {
	cfg := MustLoad[serviceConfig](New())

	if cfg.Addr != ":8090" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":8090")
	}
	if cfg.ErrorLimit != 15 {
		t.Errorf("ErrorLimit = %d, want %d", cfg.ErrorLimit, 15)
	}
}

// TestMustLoad_Panics verifies that MustLoad panics when a required
// field is missing.
func TestMustLoad_Panics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("MustLoad() expected panic, got none")
		}
		msg, ok := r.(string)
		if !ok {
			t.Fatalf("panic value type = %T, want string", r)
		}
		if msg == "" {
			t.Error("panic message is empty, want descriptive message")
		}
	}()

	_ = MustLoad[requiredConfig](New())
}

// ===========================================================================
// Load — Parse Error Tests
// ===========================================================================

// TestLoader_Load_ParseErrors_FromEnv verifies that malformed environment
// values for each parsed kind surface as configuration errors.
func TestLoader_Load_ParseErrors_FromEnv(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		load   func() error
	}{
		{
			name:   "invalid_int",
			envKey: "ERROR_LIMIT",
			envVal: "not-a-number",
			load: func() error {
				var cfg serviceConfig
				return New().Load(&cfg)
			},
		},
		{
			name:   "invalid_bool",
			envKey: "DEBUG",
			envVal: "not-a-bool",
			load: func() error {
				var cfg serviceConfig
				return New().Load(&cfg)
			},
		},
		{
			name:   "invalid_duration",
			envKey: "COOLDOWN",
			envVal: "not-a-duration",
			load: func() error {
				var cfg serviceConfig
				return New().Load(&cfg)
			},
		},
		{
			name:   "invalid_float",
			envKey: "HEALTH_FLOOR",
			envVal: "not-a-float",
			load: func() error {
				var cfg floatConfig
				return New().Load(&cfg)
			},
		},
		{
			name:   "negative_uint",
			envKey: "MAX_FAILURES",
			envVal: "-1",
			load: func() error {
				var cfg uintConfig
				return New().Load(&cfg)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envVal)
			err := tt.load()
			if err == nil {
				t.Fatalf("Load() with %s=%q expected error, got nil", tt.envKey, tt.envVal)
			}
			if !sserr.IsConfiguration(err) {
				t.Errorf("IsConfiguration() = false, want true for parse error")
			}
		})
	}
}

// TestLoader_Load_InvalidYAML_File verifies that a malformed YAML file
// returns a configuration error.
func TestLoader_Load_InvalidYAML_File(t *testing.T) {
	path := writeConfigFile(t, "bad.yaml", `
addr: [invalid yaml
  missing closing bracket
`)

	var cfg serviceConfig
	err := New().WithFile(path).Load(&cfg)
	if err == nil {
		t.Fatal("Load() expected error for malformed YAML, got nil")
	}
	if !sserr.IsConfiguration(err) {
		t.Errorf("IsConfiguration() = false, want true for YAML parse error")
	}
}

// TestLoader_Load_InvalidJSON_File verifies that a malformed JSON file
// returns a configuration error.
func TestLoader_Load_InvalidJSON_File(t *testing.T) {
	path := writeConfigFile(t, "bad.json", `{"addr": invalid}`)

	var cfg serviceConfig
	err := New().WithFile(path).Load(&cfg)
	if err == nil {
		t.Fatal("Load() expected error for malformed JSON, got nil")
	}
	if !sserr.IsConfiguration(err) {
		t.Errorf("IsConfiguration() = false, want true for JSON parse error")
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `# SIVEC backend config
database:
  host: db.internal
  port: 5433
  user: sivec
  password: "s3cret"  # quoted on purpose
  database: sivec_despacho

roster_db:
  host: erp.internal
  user: lector
  password: 'otra'
  database: planilla

rabbitmq:
  user: guest
  password: guest

jwt:
  secret_key: "super-secret"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Database.Host != "db.internal" || cfg.Database.Port != 5433 {
		t.Errorf("database endpoint: %s:%d", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Database.Password != "s3cret" {
		t.Errorf("quoted password mangled: %q", cfg.Database.Password)
	}
	if cfg.RosterDB.Password != "otra" {
		t.Errorf("single-quoted scalar mangled: %q", cfg.RosterDB.Password)
	}
	if cfg.JWT.SecretKey != "super-secret" {
		t.Errorf("secret must lose its quotes: %q", cfg.JWT.SecretKey)
	}

	// defaults fill whatever the file omits
	if cfg.RosterDB.Port != 3306 {
		t.Errorf("roster db default port: %d", cfg.RosterDB.Port)
	}
	if cfg.RabbitMQ.Host != "localhost" || cfg.RabbitMQ.Port != 5672 {
		t.Errorf("rabbitmq defaults: %s:%d", cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	}
	if cfg.Services.DispatchServicePort != 3000 || cfg.Services.TrackingServicePort != 3001 {
		t.Errorf("service port defaults: %+v", cfg.Services)
	}
}

func TestLoadFromFileMissingRequired(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, "database:\n  host: localhost\n"))
	if err == nil {
		t.Fatal("config without credentials must fail validation")
	}
	if !strings.Contains(err.Error(), "database.user is required") {
		t.Errorf("error must name the missing field: %v", err)
	}
}

func TestParseYAMLRejectsUnknownKeys(t *testing.T) {
	var cfg Config
	err := parseYAML(strings.NewReader("database:\n  hostname: x\n"), &cfg)
	if err == nil || !strings.Contains(err.Error(), "unknown key") {
		t.Errorf("unknown nested key must fail: %v", err)
	}

	err = parseYAML(strings.NewReader("postgres:\n  host: x\n"), &cfg)
	if err == nil || !strings.Contains(err.Error(), "unknown top-level key") {
		t.Errorf("unknown section must fail: %v", err)
	}
}

func TestParseYAMLRejectsDuplicateSections(t *testing.T) {
	var cfg Config
	err := parseYAML(strings.NewReader("database:\n  host: a\ndatabase:\n  host: b\n"), &cfg)
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("duplicate section must fail: %v", err)
	}
}

func TestResolveScalar(t *testing.T) {
	cases := map[string]string{
		`"localhost"`: "localhost",
		`'pass123'`:   "pass123",
		`plain`:       "plain",
		`  padded  `:  "padded",
	}
	for in, want := range cases {
		if got := resolveScalar(in); got != want {
			t.Errorf("resolveScalar(%q) = %q, want %q", in, got, want)
		}
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	wantStore, err := expandPath(defaultStorePath)
	if err != nil {
		t.Fatalf("expandPath(defaultStorePath) returned error: %v", err)
	}
	if cfg.StorePath != wantStore {
		t.Fatalf("StorePath = %q, want %q", cfg.StorePath, wantStore)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Fatalf("PollInterval = %v, want 2s", cfg.PollInterval)
	}
	if cfg.LogPath() != filepath.Join(home, ".local/state/multilogue/multilogue.log") {
		t.Fatalf("LogPath = %q", cfg.LogPath())
	}
	if cfg.Settings != "" {
		t.Fatalf("Settings = %q, want empty", cfg.Settings)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
store_path = "  ~/dialogues/store.toml  "
log_dir = "/var/tmp/multilogue"
machine_config = "~/m.jsonc"
settings = " temperature=0.7&max_output_tokens=256 "
poll_seconds = 5
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.StorePath != filepath.Join(home, "dialogues/store.toml") {
		t.Fatalf("StorePath = %q", cfg.StorePath)
	}
	if cfg.LogDir != "/var/tmp/multilogue" {
		t.Fatalf("LogDir = %q", cfg.LogDir)
	}
	if !strings.HasPrefix(cfg.MachineConfigPath, home) {
		t.Fatalf("MachineConfigPath = %q, want it under HOME %q", cfg.MachineConfigPath, home)
	}
	if cfg.Settings != "temperature=0.7&max_output_tokens=256" {
		t.Fatalf("Settings = %q", cfg.Settings)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Fatalf("PollInterval = %v, want 5s", cfg.PollInterval)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
store_path = "   "
log_dir = ""
poll_seconds = -1
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	wantLogDir, err := expandPath(defaultLogDir)
	if err != nil {
		t.Fatalf("expandPath(defaultLogDir) returned error: %v", err)
	}
	if cfg.LogDir != wantLogDir {
		t.Fatalf("LogDir = %q, want %q", cfg.LogDir, wantLogDir)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Fatalf("PollInterval = %v, want default", cfg.PollInterval)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`store_path = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoadMachine_ParsesJSONC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machine.jsonc")
	if err := os.WriteFile(path, []byte(`{
  // served by the local token helper
  "token": "keys/openai.txt",
  "token_host": "https://127.0.0.1:8443",
  "insecure_tls": true,
  "endpoint": "http://localhost:11434/v1",
  "model": " llama3 ",
  "speaker": "Oracle",
  /* trailing comma is fine */
  "system_prompt": "Answer as a Platonic interlocutor.",
}`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, err := LoadMachine(path)
	if err != nil {
		t.Fatalf("LoadMachine returned error: %v", err)
	}
	if m.Token != "keys/openai.txt" || m.TokenHost != "https://127.0.0.1:8443" || !m.InsecureTLS {
		t.Fatalf("token fields = %#v", m)
	}
	if m.Model != "llama3" || m.Speaker != "Oracle" || m.Endpoint != "http://localhost:11434/v1" {
		t.Fatalf("machine fields = %#v", m)
	}
}

func TestLoadMachine_MissingAndInvalid(t *testing.T) {
	dir := t.TempDir()
	m, err := LoadMachine(filepath.Join(dir, "absent.jsonc"))
	if err != nil {
		t.Fatalf("LoadMachine returned error: %v", err)
	}
	if m.Token != defaultTokenPath {
		t.Fatalf("Token = %q, want %q", m.Token, defaultTokenPath)
	}

	bad := filepath.Join(dir, "bad.jsonc")
	if err := os.WriteFile(bad, []byte(`{"token": 5}`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadMachine(bad); err == nil || !strings.Contains(err.Error(), "parse machine config") {
		t.Fatalf("LoadMachine error = %v, want parse error", err)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

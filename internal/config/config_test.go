package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// tempConfigPath returns a path to a config file inside a temp directory.
func tempConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.json")
}

// chdir switches the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(prev) })
}

// --- Defaults ---

func TestDefaults(t *testing.T) {
	d := Defaults()

	if d.TimeFormat != "24h" {
		t.Errorf("Defaults().TimeFormat = %q, want %q", d.TimeFormat, "24h")
	}
	if d.Province != "" || d.Regency != "" || d.CacheDir != "" || d.Format != "" {
		t.Errorf("Defaults() should leave everything else unset, got %+v", d)
	}
}

// --- Dir and Path with XDG ---

func TestDir_XDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}

	want := filepath.Join("/tmp/xdg-test", "jadwal-shalat")
	if dir != want {
		t.Errorf("Dir() = %q, want %q", dir, want)
	}
}

func TestDir_FallbackToHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".config", "jadwal-shalat")
	if dir != want {
		t.Errorf("Dir() = %q, want %q", dir, want)
	}
}

func TestPath_XDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	p, err := Path()
	if err != nil {
		t.Fatalf("Path() error: %v", err)
	}

	want := filepath.Join("/tmp/xdg-test", "jadwal-shalat", "config.json")
	if p != want {
		t.Errorf("Path() = %q, want %q", p, want)
	}
}

// --- LoadFrom ---

func TestLoadFrom_NonExistentFile(t *testing.T) {
	cfg, err := LoadFrom("/no/such/file.json")
	if err != nil {
		t.Fatalf("LoadFrom non-existent should not error, got: %v", err)
	}
	if *cfg != (Config{}) {
		t.Errorf("LoadFrom non-existent should return empty config, got %+v", cfg)
	}
}

func TestLoadFrom_ValidJSON(t *testing.T) {
	path := tempConfigPath(t)

	data := Config{
		Province:   "JAWA BARAT",
		Regency:    "KOTA BANDUNG",
		TimeFormat: "12h",
	}
	raw, _ := json.MarshalIndent(data, "", "  ")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if *cfg != data {
		t.Errorf("LoadFrom = %+v, want %+v", *cfg, data)
	}
}

func TestLoadFrom_CommentsAndTrailingCommas(t *testing.T) {
	path := tempConfigPath(t)
	raw := `{
  // where I live
  "province": "DKI JAKARTA",
  "regency": "KOTA JAKARTA SELATAN", /* block */
  "time_format": "24h",
}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if cfg.Province != "DKI JAKARTA" || cfg.Regency != "KOTA JAKARTA SELATAN" {
		t.Errorf("LoadFrom = %+v", cfg)
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := tempConfigPath(t)
	if err := os.WriteFile(path, []byte("{bad json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("LoadFrom with invalid JSON should error")
	}
}

func TestLoadFrom_InvalidValue(t *testing.T) {
	path := tempConfigPath(t)
	if err := os.WriteFile(path, []byte(`{"time_format": "48h"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("LoadFrom with invalid time_format should error")
	}
	if !strings.Contains(err.Error(), "time_format") {
		t.Errorf("error should name the key: %v", err)
	}
}

// --- SaveTo ---

func TestSaveTo_CreatesDirectoryAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dir", "config.json")

	cfg := &Config{Province: "ACEH"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("saved file has invalid JSON: %v", err)
	}
	if loaded.Province != "ACEH" {
		t.Errorf("loaded Province = %q, want %q", loaded.Province, "ACEH")
	}
}

func TestSaveTo_TrailingNewline(t *testing.T) {
	path := tempConfigPath(t)
	cfg := &Config{Regency: "KOTA SABANG"}

	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if len(data) == 0 || data[len(data)-1] != '\n' {
		t.Error("saved file should end with a newline")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := tempConfigPath(t)

	original := &Config{
		Province:   "JAWA TIMUR",
		Regency:    "KOTA SURABAYA",
		TimeFormat: "12h",
		Format:     "{{.Name}} {{.Remaining}}",
		CacheDir:   "/tmp/cache",
	}

	if err := original.SaveTo(path); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if *loaded != *original {
		t.Errorf("round trip = %+v, want %+v", *loaded, *original)
	}
}

// --- Save / Load / Reset via XDG ---

func TestSaveLoadReset_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &Config{Province: "BALI"}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Province != "BALI" {
		t.Errorf("Province = %q, want BALI", loaded.Province)
	}

	if err := Reset(); err != nil {
		t.Fatalf("Reset error: %v", err)
	}
	loaded, _ = Load()
	if loaded.Province != "" {
		t.Errorf("Province after reset = %q, want empty", loaded.Province)
	}
}

// --- ResetAt ---

func TestResetAt_DeletesFile(t *testing.T) {
	path := tempConfigPath(t)

	cfg := &Config{Province: "ACEH"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	if err := ResetAt(path); err != nil {
		t.Fatalf("ResetAt error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("ResetAt should have deleted the file")
	}
}

func TestResetAt_NonExistentFile(t *testing.T) {
	if err := ResetAt(filepath.Join(t.TempDir(), "nope.json")); err != nil {
		t.Errorf("ResetAt non-existent should not error, got: %v", err)
	}
}

// --- Set / Get ---

func TestSet_ValidKeys(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  string
	}{
		{"province", "jawa barat", "JAWA BARAT"},
		{"regency", "Kota Bandung", "KOTA BANDUNG"},
		{"time_format", "12h", "12h"},
		{"time_format", "24h", "24h"},
		{"format", "short-name-and-time", "short-name-and-time"},
		{"cache_dir", "/var/cache/jadwal", "/var/cache/jadwal"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			var cfg Config
			if err := cfg.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set(%q, %q) error: %v", tt.key, tt.value, err)
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error: %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestSet_InvalidTimeFormat(t *testing.T) {
	cfg := Config{TimeFormat: "24h"}
	if err := cfg.Set("time_format", "13h"); err == nil {
		t.Fatal("Set(time_format, 13h) should error")
	}
	if cfg.TimeFormat != "24h" {
		t.Errorf("failed Set modified the config: TimeFormat = %q", cfg.TimeFormat)
	}
}

func TestSet_UnknownKey(t *testing.T) {
	var cfg Config
	err := cfg.Set("city", "Bandung")
	if err == nil {
		t.Fatal("Set with unknown key should error")
	}
	if !strings.Contains(err.Error(), "valid keys") {
		t.Errorf("error should list valid keys: %v", err)
	}
}

func TestGet_UnknownKey(t *testing.T) {
	var cfg Config
	if _, err := cfg.Get("latitude"); err == nil {
		t.Fatal("Get with unknown key should error")
	}
}

func TestValidKeys_AllSettable(t *testing.T) {
	for _, key := range ValidKeys {
		var cfg Config
		value := "x"
		if key == "time_format" {
			value = "12h"
		}
		if err := cfg.Set(key, value); err != nil {
			t.Errorf("ValidKeys contains %q but Set rejects it: %v", key, err)
		}
	}
}

// --- Environment ---

func TestLoadEnv_FromProcess(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JADWAL_SHALAT_PROVINCE", "ACEH")
	t.Setenv("JADWAL_SHALAT_REGENCY", "KOTA SABANG")
	t.Setenv("JADWAL_SHALAT_CACHE_DIR", "/tmp/jadwal")

	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv error: %v", err)
	}
	want := Env{Province: "ACEH", Regency: "KOTA SABANG", CacheDir: "/tmp/jadwal"}
	if env != want {
		t.Errorf("LoadEnv = %+v, want %+v", env, want)
	}
}

func TestLoadEnv_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("JADWAL_SHALAT_PROVINCE", "")
	t.Setenv("JADWAL_SHALAT_REGENCY", "FROM PROCESS")
	os.Unsetenv("JADWAL_SHALAT_PROVINCE")

	dotenv := "JADWAL_SHALAT_PROVINCE=BALI\nJADWAL_SHALAT_REGENCY=FROM FILE\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o644); err != nil {
		t.Fatal(err)
	}

	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv error: %v", err)
	}
	if env.Province != "BALI" {
		t.Errorf("Province = %q, want BALI from .env", env.Province)
	}
	if env.Regency != "FROM PROCESS" {
		t.Errorf("Regency = %q, process environment should win over .env", env.Regency)
	}
}

func TestEnv_Apply(t *testing.T) {
	cfg := Config{Province: "ACEH", Regency: "KOTA SABANG", CacheDir: "/a"}
	Env{Regency: "KOTA LHOKSEUMAWE"}.Apply(&cfg)

	want := Config{Province: "ACEH", Regency: "KOTA LHOKSEUMAWE", CacheDir: "/a"}
	if cfg != want {
		t.Errorf("Apply = %+v, want %+v", cfg, want)
	}
}

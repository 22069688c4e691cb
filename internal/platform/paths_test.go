package platform

import (
	"path/filepath"
	"testing"
)

func TestPathsForLinuxDefaults(t *testing.T) {
	paths, err := PathsFor("linux", map[string]string{}, "/home/u/.config", "/home/u/.local/share", "lagerkoll")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if paths.ConfigPath != filepath.Join("/home/u/.config", "lagerkoll", "config.toml") {
		t.Fatalf("unexpected config path %q", paths.ConfigPath)
	}
	if paths.DataDir != filepath.Join("/home/u/.local/share", "lagerkoll") {
		t.Fatalf("unexpected data dir %q", paths.DataDir)
	}
}

func TestPathsForLinuxHonorsXDGOverrides(t *testing.T) {
	env := map[string]string{
		"XDG_CONFIG_HOME": "/custom/config",
		"XDG_DATA_HOME":   "/custom/data",
	}
	paths, err := PathsFor("linux", env, "/home/u/.config", "/home/u/.local/share", "lagerkoll")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if paths.ConfigPath != filepath.Join("/custom/config", "lagerkoll", "config.toml") {
		t.Fatalf("unexpected config path %q", paths.ConfigPath)
	}
	if paths.DataDir != filepath.Join("/custom/data", "lagerkoll") {
		t.Fatalf("unexpected data dir %q", paths.DataDir)
	}
}

func TestPathsForWindowsHonorsAppData(t *testing.T) {
	env := map[string]string{
		"APPDATA":      `C:\Users\u\AppData\Roaming`,
		"LOCALAPPDATA": `C:\Users\u\AppData\Local`,
	}
	paths, err := PathsFor("windows", env, `C:\fallback`, `C:\fallback`, "lagerkoll")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if paths.ConfigPath != filepath.Join(`C:\Users\u\AppData\Roaming`, "lagerkoll", "config.toml") {
		t.Fatalf("unexpected config path %q", paths.ConfigPath)
	}
	if paths.DataDir != filepath.Join(`C:\Users\u\AppData\Local`, "lagerkoll") {
		t.Fatalf("unexpected data dir %q", paths.DataDir)
	}
}

func TestPathsForDarwinUsesBaseDirs(t *testing.T) {
	base := "/Users/u/Library/Application Support"
	paths, err := PathsFor("darwin", map[string]string{}, base, base, "lagerkoll")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if paths.ConfigPath != filepath.Join(base, "lagerkoll", "config.toml") {
		t.Fatalf("unexpected config path %q", paths.ConfigPath)
	}
}

func TestPathsForRejectsEmptyInputs(t *testing.T) {
	if _, err := PathsFor("linux", nil, "", "/data", "lagerkoll"); err == nil {
		t.Fatal("expected error for empty config base")
	}
	if _, err := PathsFor("linux", nil, "/config", "/data", "  "); err == nil {
		t.Fatal("expected error for empty app name")
	}
}

func TestDefaultPathsWithOptionsDevSuffix(t *testing.T) {
	paths, err := DefaultPathsWithOptions(Options{AppName: "lagerkoll", DevMode: true})
	if err != nil {
		t.Skipf("user dirs unavailable: %v", err)
	}
	if filepath.Base(filepath.Dir(paths.ConfigPath)) != "lagerkoll-dev" {
		t.Fatalf("expected dev-suffixed app dir, got %q", paths.ConfigPath)
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reliquary.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 || cfg.Graphics.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}
	if cfg.Graphics.FOV != 45 || cfg.Graphics.Near != 0.1 || cfg.Graphics.Far != 1000 {
		t.Errorf("unexpected projection defaults %+v", cfg.Graphics)
	}

	if cfg.Camera.Distance != 5 || cfg.Camera.MinDistance != 2 || cfg.Camera.MaxDistance != 8 {
		t.Errorf("unexpected camera distances %+v", cfg.Camera)
	}
	if cfg.Camera.Sensitivity != 100 || cfg.Camera.TouchSensitivity != 200 {
		t.Errorf("unexpected camera sensitivities %+v", cfg.Camera)
	}

	if cfg.Scene.GemCount != 10 {
		t.Errorf("expected 10 gems, got %d", cfg.Scene.GemCount)
	}
	if cfg.Scene.Meshes.Skull != "objects/skull.obj" {
		t.Errorf("unexpected skull mesh %q", cfg.Scene.Meshes.Skull)
	}
	if cfg.Scene.Animate || cfg.Scene.Reflect || cfg.Scene.Toon {
		t.Error("toggles should start off")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  fov: 60

camera:
  distance: 6
  max_distance: 10

scene:
  asset_root: /srv/reliquary
  gem_count: 16
  seed: 99
  skybox:
    up: sky/top.png

logging:
  level: debug
  format: json
  log_file: viewer.log
`)

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen || cfg.Graphics.VSync {
		t.Error("fullscreen/vsync not loaded")
	}
	if cfg.Graphics.FOV != 60 {
		t.Errorf("expected fov 60, got %v", cfg.Graphics.FOV)
	}
	if cfg.Graphics.Near != 0.1 {
		t.Errorf("unset near should keep default, got %v", cfg.Graphics.Near)
	}

	if cfg.Camera.Distance != 6 || cfg.Camera.MaxDistance != 10 || cfg.Camera.MinDistance != 2 {
		t.Errorf("unexpected camera %+v", cfg.Camera)
	}

	if cfg.Scene.AssetRoot != "/srv/reliquary" || cfg.Scene.GemCount != 16 || cfg.Scene.Seed != 99 {
		t.Errorf("unexpected scene %+v", cfg.Scene)
	}
	if cfg.Scene.Skybox.Up != "sky/top.png" || cfg.Scene.Skybox.Down != "skybox/down.png" {
		t.Errorf("skybox merge failed: %+v", cfg.Scene.Skybox)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" || cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	path := writeConfig(t, `
graphics:
  width: not a number
  invalid syntax here
`)
	if err := loadFromFile(Default(), path); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	path := writeConfig(t, "camera:\n  distnce: 3\n")
	if err := loadFromFile(Default(), path); err == nil {
		t.Error("expected error for misspelled key")
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	path := writeConfig(t, "")
	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("empty file should be accepted: %v", err)
	}
	if cfg.Graphics.Width != 1280 {
		t.Error("empty file changed defaults")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Graphics.Width = 0
	cfg.Graphics.Near = 10
	cfg.Graphics.Far = 1
	cfg.Camera.MinDistance = 9
	cfg.Scene.Meshes.Skull = ""
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("errors should wrap ErrInvalid: %v", err)
	}

	errs := multierr.Errors(err)
	if len(errs) != 5 {
		t.Errorf("expected 5 problems, got %d: %v", len(errs), err)
	}
	if !strings.Contains(err.Error(), "scene.meshes.skull") {
		t.Errorf("missing path not named: %v", err)
	}
}

func TestValidateDistanceOutsideRange(t *testing.T) {
	cfg := Default()
	cfg.Camera.Distance = 12

	if err := cfg.Validate(); err == nil {
		t.Error("distance above max should be rejected")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile("reliquary.yaml", []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find reliquary.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" || !cfg.Debug.ShowFPS {
					t.Errorf("debug flag not applied: %+v %+v", cfg.Logging, cfg.Debug)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "size flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "scene flags",
			setup: func() {
				*flagAssets = "/data/reliquary"
				*flagSeed = 1234
				*flagAnimate = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scene.AssetRoot != "/data/reliquary" || cfg.Scene.Seed != 1234 || !cfg.Scene.Animate {
					t.Errorf("scene flags not applied: %+v", cfg.Scene)
				}
			},
			teardown: func() {
				*flagAssets = ""
				*flagSeed = 0
				*flagAnimate = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	path := writeConfig(t, `
graphics:
  width: 1600
  height: 900
`)

	*flagConfig = path
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width from flag, height from file.
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	*flagConfig = writeConfig(t, "camera:\n  min_distance: 0\n")
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reliquary.yaml")

	cfg := Default()
	cfg.Scene.GemCount = 3
	cfg.Camera.LookOffset = 0.5
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Scene.GemCount != 3 || loaded.Camera.LookOffset != 0.5 {
		t.Errorf("saved values not restored: %+v %+v", loaded.Scene, loaded.Camera)
	}
}

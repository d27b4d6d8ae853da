package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBaseDir(t *testing.T) {
	t.Run("default uses home directory", func(t *testing.T) {
		t.Setenv(EnvQweryDir, "")

		dir, err := BaseDir()
		if err != nil {
			t.Fatalf("BaseDir() error = %v", err)
		}
		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".qwery")
		if dir != expected {
			t.Errorf("BaseDir() = %q, want %q", dir, expected)
		}
	})

	t.Run("QWERY_DIR overrides default", func(t *testing.T) {
		t.Setenv(EnvQweryDir, "/tmp/qwery-test")

		dir, err := BaseDir()
		if err != nil {
			t.Fatalf("BaseDir() error = %v", err)
		}
		if dir != "/tmp/qwery-test" {
			t.Errorf("BaseDir() = %q, want %q", dir, "/tmp/qwery-test")
		}
	})
}

func TestConfigPath(t *testing.T) {
	t.Run("default uses home config directory", func(t *testing.T) {
		t.Setenv(EnvQweryDir, "")

		path, err := ConfigPath()
		if err != nil {
			t.Fatalf("ConfigPath() error = %v", err)
		}
		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".config", "qwery", "config.toml")
		if path != expected {
			t.Errorf("ConfigPath() = %q, want %q", path, expected)
		}
	})

	t.Run("QWERY_DIR overrides to QWERY_DIR/config", func(t *testing.T) {
		t.Setenv(EnvQweryDir, "/tmp/qwery-test")

		path, err := ConfigPath()
		if err != nil {
			t.Fatalf("ConfigPath() error = %v", err)
		}
		if path != "/tmp/qwery-test/config/config.toml" {
			t.Errorf("ConfigPath() = %q, want %q", path, "/tmp/qwery-test/config/config.toml")
		}
	})
}

func TestDerivedPaths(t *testing.T) {
	t.Setenv(EnvQweryDir, "/tmp/qwery-test")

	tests := []struct {
		name string
		got  func() (string, error)
		want string
	}{
		{"log", func() (string, error) { return LogPath(), nil }, "/tmp/qwery-test/qwery.log"},
		{"history", HistoryPath, "/tmp/qwery-test/history.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.got()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func writeConfig(t *testing.T, localPath string) string {
	t.Helper()
	dir := t.TempDir()
	content := `server:
  port: "8080"
  mode: debug

storage:
  type: local
  write_mode: mutation
  local_path: ` + localPath + `
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfigCreatesLocalPath(t *testing.T) {
	viper.Reset()
	localPath := filepath.Join(t.TempDir(), "a", "b", "data")

	cfg, err := LoadConfig(writeConfig(t, localPath))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Storage.LocalPath != localPath {
		t.Fatalf("local_path = %q, expected %q", cfg.Storage.LocalPath, localPath)
	}

	info, err := os.Stat(localPath)
	if err != nil {
		t.Fatalf("local path not created: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("local path is not a directory")
	}
}

func TestLoadConfigFailsOnUnusableLocalPath(t *testing.T) {
	viper.Reset()

	// Eine reguläre Datei als Elternpfad macht MkdirAll unmöglich
	parent := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(parent, []byte("x"), 0644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	if _, err := LoadConfig(writeConfig(t, filepath.Join(parent, "data"))); err == nil {
		t.Fatal("expected error for uncreatable local path")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Compiler.ParallelMode != "serial" {
		t.Errorf("Compiler.ParallelMode = %q, want serial", cfg.Compiler.ParallelMode)
	}
	if cfg.Compiler.MaxDirectArity != 12 {
		t.Errorf("Compiler.MaxDirectArity = %d, want 12", cfg.Compiler.MaxDirectArity)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFillsMissingFieldsFromDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ramc.toml")
	toml := "[compiler]\nmax-direct-arity = 4\n"
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Compiler.MaxDirectArity != 4 {
		t.Errorf("Compiler.MaxDirectArity = %d, want 4", cfg.Compiler.MaxDirectArity)
	}
	if cfg.Compiler.ParallelMode != "serial" {
		t.Errorf("Compiler.ParallelMode = %q, want the default serial (untouched by the file)", cfg.Compiler.ParallelMode)
	}
}

func TestLoadRejectsInvalidParallelMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ramc.toml")
	toml := "[compiler]\nparallel-mode = \"bogus\"\n"
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load should reject an unrecognized parallel-mode")
	}
}

func TestLoadRejectsNonPositiveMaxDirectArity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ramc.toml")
	toml := "[compiler]\nmax-direct-arity = 0\n"
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load should reject a non-positive max-direct-arity")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load should error on a missing file")
	}
}

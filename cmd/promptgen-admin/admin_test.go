package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/timmy/promptgen/internal/config"
	"github.com/timmy/promptgen/internal/domain"
	"github.com/timmy/promptgen/internal/repository"
)

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("JWT_SECRET", "admin-test")

	root := filepath.Join(dir, "public")
	content := "database:\n" +
		"  driver: sqlite\n" +
		"  path: " + filepath.Join(dir, "promptgen.db") + "\n" +
		"  auto_migrate: false\n" +
		"storage:\n" +
		"  type: local\n" +
		"  local_root: " + root + "\n"
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path, root
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func writeBlob(t *testing.T, root, key string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Now().Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMigrateAndSweep(t *testing.T) {
	cfgPath, root := writeConfig(t)

	if out := run(t, "migrate", "--config", cfgPath); !strings.Contains(out, "migrated sqlite") {
		t.Fatalf("migrate output = %q", out)
	}

	kept := writeBlob(t, root, "uploads/images/kept_AAAAAAAAAA.jpg", 48*time.Hour)
	orphan := writeBlob(t, root, "uploads/images/orphan_BBBBBBBBBB.jpg", 48*time.Hour)
	fresh := writeBlob(t, root, "uploads/images/fresh_CCCCCCCCCC.jpg", time.Minute)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	db, closeDB, err := openDB(cfg)
	if err != nil {
		t.Fatal(err)
	}
	err = repository.NewGenerationRepository(db).Create(context.Background(), &domain.GenerationRecord{
		OwnerID:       "owner",
		StoragePath:   "uploads/images/kept_AAAAAAAAAA.jpg",
		GeneratedText: "kept",
		FileSize:      3,
	})
	closeDB()
	if err != nil {
		t.Fatal(err)
	}

	if out := run(t, "sweep", "--config", cfgPath, "--dry-run"); !strings.Contains(out, "1 orphaned images would be removed") {
		t.Fatalf("dry run output = %q", out)
	}
	if _, err := os.Stat(orphan); err != nil {
		t.Fatalf("dry run deleted the orphan: %v", err)
	}

	if out := run(t, "sweep", "--config", cfgPath); !strings.Contains(out, "removed 1 orphaned images") {
		t.Fatalf("sweep output = %q", out)
	}

	if _, err := os.Stat(orphan); !os.IsNotExist(err) {
		t.Errorf("orphan still present: %v", err)
	}
	for _, p := range []string{kept, fresh} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s removed: %v", filepath.Base(p), err)
		}
	}
}

func TestSweepRejectsZeroGrace(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"sweep", "--config", cfgPath, "--grace", "0s"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.ExecuteContext(context.Background()); err == nil || !strings.Contains(err.Error(), "--grace") {
		t.Fatalf("err = %v, want grace error", err)
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir on Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore cwd %s: %v", prev, err)
		}
	})
}

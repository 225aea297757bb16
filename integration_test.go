//go:build integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/mattsolo1/grove-foldergen/pkg/history"
	"github.com/mattsolo1/grove-foldergen/pkg/service"
	"github.com/mattsolo1/grove-foldergen/pkg/tree"
)

const integrationDiagram = `app
├── run.sh
├── data
│   └── cache.db
└── README.md
`

func newIntegrationService(t *testing.T, tmpDir string) *service.Service {
	t.Helper()
	config := &service.Config{
		DataDir:    filepath.Join(tmpDir, "data"),
		DirPerm:    0o755,
		FilePerm:   0o644,
		ExecGlobs:  []string{"*.sh"},
		DBMode0600: true,
		History:    true,
		Debounce:   50 * time.Millisecond,
	}
	svc, err := service.New(config, tree.NewRegistry(), afero.NewOsFs(), nil)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	return svc
}

func TestIntegration(t *testing.T) {
	// Skip if not running integration tests
	if os.Getenv("RUN_INTEGRATION_TESTS") == "" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=1 to run.")
	}

	tmpDir := t.TempDir()
	source := filepath.Join(tmpDir, "layout.txt")
	if err := os.WriteFile(source, []byte(integrationDiagram), 0o644); err != nil {
		t.Fatalf("Failed to write diagram: %v", err)
	}

	// Test 1: Build on disk
	t.Run("BuildOnDisk", func(t *testing.T) {
		svc := newIntegrationService(t, tmpDir)
		defer svc.Close()

		dest := filepath.Join(tmpDir, "out")
		out, err := svc.Build(source, dest)
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if out.Record.Dirs != 2 || out.Record.Files != 3 {
			t.Errorf("Expected 2 dirs and 3 files, got %d and %d", out.Record.Dirs, out.Record.Files)
		}

		modes := map[string]os.FileMode{
			"app":               0o755,
			"app/run.sh":        0o755,
			"app/data":          0o755,
			"app/data/cache.db": 0o600,
			"app/README.md":     0o644,
		}
		for rel, want := range modes {
			info, err := os.Stat(filepath.Join(dest, rel))
			if err != nil {
				t.Fatalf("Expected %s to exist: %v", rel, err)
			}
			// The umask can only remove bits.
			if got := info.Mode().Perm(); got&^want != 0 {
				t.Errorf("%s: mode %o has bits outside %o", rel, got, want)
			}
		}
	})

	// Test 2: History survives reopening
	t.Run("HistoryPersists", func(t *testing.T) {
		svc := newIntegrationService(t, tmpDir)
		defer svc.Close()

		builds, err := svc.Builds(0)
		if err != nil {
			t.Fatalf("Failed to list builds: %v", err)
		}
		if len(builds) != 1 {
			t.Fatalf("Expected 1 recorded build, got %d", len(builds))
		}
		if builds[0].Status != history.StatusOK || builds[0].Root != "app" {
			t.Errorf("Unexpected build record: %+v", builds[0])
		}
	})

	// Test 3: Non-empty destination
	t.Run("RefuseNonEmpty", func(t *testing.T) {
		svc := newIntegrationService(t, tmpDir)
		defer svc.Close()

		dest := filepath.Join(tmpDir, "out")
		if _, err := svc.Build(source, dest); err == nil {
			t.Fatal("Expected a second build into the same destination to fail")
		}
		if _, err := svc.Build(source, dest, service.Override()); err != nil {
			t.Fatalf("Override build failed: %v", err)
		}
	})
}

func TestEndToEnd(t *testing.T) {
	if os.Getenv("RUN_E2E_TESTS") == "" {
		t.Skip("Skipping E2E test. Set RUN_E2E_TESTS=1 to run.")
	}

	tmpDir := t.TempDir()
	svc := newIntegrationService(t, tmpDir)
	defer svc.Close()

	source := filepath.Join(tmpDir, "layout.txt")
	if err := os.WriteFile(source, []byte(integrationDiagram), 0o644); err != nil {
		t.Fatalf("Failed to write diagram: %v", err)
	}
	dest := filepath.Join(tmpDir, "out")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	builds := make(chan *service.Outcome, 4)
	done := make(chan error, 1)
	go func() {
		done <- svc.Watch(ctx, source, dest, func(out *service.Outcome, err error) {
			if err != nil {
				t.Errorf("Watch build failed: %v", err)
				return
			}
			builds <- out
		})
	}()

	// Initial build
	<-builds

	updated := `app
├── run.sh
├── data
│   └── cache.db
├── README.md
└── LICENSE
`
	if err := os.WriteFile(source, []byte(updated), 0o644); err != nil {
		t.Fatalf("Failed to update diagram: %v", err)
	}

	select {
	case out := <-builds:
		if out.Record.Files != 4 {
			t.Errorf("Expected 4 files after rebuild, got %d", out.Record.Files)
		}
	case <-ctx.Done():
		t.Fatal("Timed out waiting for rebuild")
	}

	if _, err := os.Stat(filepath.Join(dest, "app", "LICENSE")); err != nil {
		t.Errorf("Expected LICENSE to be created by the rebuild: %v", err)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned error: %v", err)
	}

	t.Logf("Successfully completed end-to-end test")
}

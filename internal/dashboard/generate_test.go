package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderMissingEnv(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "")
	t.Setenv("POSTGRES_DATASOURCE_UID", "")
	if err := Render(t.TempDir()); err == nil {
		t.Fatalf("expected error for missing env vars")
	}
}

func TestRenderSuccess(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "uid1")
	t.Setenv("POSTGRES_DATASOURCE_UID", "uid2")

	dir := t.TempDir()
	if err := Render(dir); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	tables := CurrentTables()

	b, err := os.ReadFile(filepath.Join(dir, "search-telemetry.json"))
	if err != nil {
		t.Fatalf("read telemetry dashboard: %v", err)
	}
	if !strings.Contains(string(b), "uid1") {
		t.Fatalf("greptime uid not rendered")
	}
	if !strings.Contains(string(b), "FROM "+tables.Telemetry) {
		t.Fatalf("telemetry table not rendered")
	}

	b, err = os.ReadFile(filepath.Join(dir, "search-results.json"))
	if err != nil {
		t.Fatalf("read results dashboard: %v", err)
	}
	if !strings.Contains(string(b), "uid2") {
		t.Fatalf("postgres uid not rendered")
	}
	if !strings.Contains(string(b), "FROM mission_decisions") {
		t.Fatalf("decision table not rendered")
	}
}

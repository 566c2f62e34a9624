// Package dashboard renders Grafana dashboards for the mission tables.
package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"dronesearch-sim/internal/telemetry"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Tables are the table names the dashboards query.
type Tables struct {
	Telemetry string
	Reports   string
	Events    string
	Decisions string
	State     string
}

// CurrentTables returns the table names in use, including environment
// overrides.
func CurrentTables() Tables {
	return Tables{
		Telemetry: telemetry.TelemetryTableName,
		Reports:   telemetry.ReportTableName,
		Events:    telemetry.EventTableName,
		Decisions: telemetry.DecisionTableName,
		State:     telemetry.StateTableName,
	}
}

// Render executes every dashboard template and writes the results to
// outDir. Datasource UIDs come from GREPTIMEDB_DATASOURCE_UID and
// POSTGRES_DATASOURCE_UID.
func Render(outDir string) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
	}

	t, err := template.New("dashboards").Funcs(funcMap).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	data := CurrentTables()
	for _, tpl := range t.Templates() {
		name := tpl.Name()
		if !strings.HasSuffix(name, ".tmpl") {
			continue
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(name, ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := tpl.Execute(f, data); err != nil {
			f.Close()
			return fmt.Errorf("render %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

package sim

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"dronesearch-sim/internal/telemetry"
)

// FilePaths names the JSONL files a FileWriter produces. Everything but
// Telemetry may be empty to skip that log.
type FilePaths struct {
	Telemetry string
	Reports   string
	Events    string
	Decisions string
	State     string
}

type jsonlFile struct {
	f   *os.File
	enc *json.Encoder
}

func (j *jsonlFile) encode(v any) error {
	if j == nil {
		return nil
	}
	return j.enc.Encode(v)
}

// FileWriter writes every row kind to its own JSONL file.
type FileWriter struct {
	mu        sync.Mutex
	files     []*jsonlFile
	tele      *jsonlFile
	reports   *jsonlFile
	events    *jsonlFile
	decisions *jsonlFile
	state     *jsonlFile
}

// NewFileWriter creates the files named in p.
func NewFileWriter(p FilePaths) (*FileWriter, error) {
	fw := &FileWriter{}
	open := func(path string) (*jsonlFile, error) {
		if path == "" {
			return nil, nil
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		j := &jsonlFile{f: f, enc: json.NewEncoder(f)}
		fw.files = append(fw.files, j)
		return j, nil
	}
	if p.Telemetry == "" {
		return nil, errors.New("telemetry path is required")
	}
	var err error
	for _, t := range []struct {
		dst  **jsonlFile
		path string
	}{
		{&fw.tele, p.Telemetry},
		{&fw.reports, p.Reports},
		{&fw.events, p.Events},
		{&fw.decisions, p.Decisions},
		{&fw.state, p.State},
	} {
		if *t.dst, err = open(t.path); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return fw, nil
}

// Write logs a single telemetry row.
func (f *FileWriter) Write(row telemetry.TelemetryRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tele.encode(row)
}

// WriteBatch logs multiple telemetry rows.
func (f *FileWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rows {
		if err := f.tele.encode(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteReport logs a scan report, if enabled.
func (f *FileWriter) WriteReport(row telemetry.ReportRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reports.encode(row)
}

// WriteEvent logs a mission event, if enabled.
func (f *FileWriter) WriteEvent(row telemetry.EventRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events.encode(row)
}

// WriteDecision logs the decision, if enabled.
func (f *FileWriter) WriteDecision(row telemetry.DecisionRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.decisions.encode(row)
}

// WriteState logs a simulation state row, if enabled.
func (f *FileWriter) WriteState(row telemetry.SimulationStateRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.encode(row)
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var errs []error
	for _, j := range f.files {
		errs = append(errs, j.f.Close())
	}
	f.files = nil
	return errors.Join(errs...)
}

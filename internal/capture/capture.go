// Package capture persists frames taken during scan passes.
package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dronesearch-sim/internal/scan"
)

// ObjectName returns the file name used for a frame:
// <drone>_<target>_<yyyyMMdd_HHmmss>.png.
func ObjectName(f scan.Frame) string {
	return fmt.Sprintf("%s_%s_%s.png", sanitize(f.DroneID), sanitize(f.Target.ID), f.CapturedAt.Format("20060102_150405"))
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':':
			return '-'
		}
		return r
	}, s)
}

// DirStore writes frames into a local directory.
type DirStore struct {
	Dir string
}

// NewDirStore creates dir if needed.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create capture dir: %w", err)
	}
	return &DirStore{Dir: dir}, nil
}

// Save implements scan.Store.
func (s *DirStore) Save(_ context.Context, f scan.Frame) (string, error) {
	path := filepath.Join(s.Dir, ObjectName(f))
	if err := os.WriteFile(path, f.Image, 0o644); err != nil {
		return "", fmt.Errorf("write capture: %w", err)
	}
	return path, nil
}

// MultiStore saves every frame to all stores. The returned path is the
// first successful store's; failures are joined into the error.
type MultiStore []scan.Store

// Save implements scan.Store.
func (m MultiStore) Save(ctx context.Context, f scan.Frame) (string, error) {
	var (
		first string
		errs  []error
	)
	for _, s := range m {
		path, err := s.Save(ctx, f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if first == "" {
			first = path
		}
	}
	return first, errors.Join(errs...)
}

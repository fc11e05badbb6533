package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go-photomap/types"
)

// FileStore reads a JSON file holding either a LocationsPayload object or a
// bare array of records.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) ListLocations(ctx context.Context) ([]types.LocationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, s.path)
		}
		return nil, fmt.Errorf("read locations file: %w", err)
	}

	var records []types.LocationRecord
	if err := json.Unmarshal(data, &records); err == nil {
		if records == nil {
			records = []types.LocationRecord{}
		}
		return records, nil
	}

	var payload types.LocationsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode locations file %s: %w", s.path, err)
	}
	if payload.Locations == nil {
		payload.Locations = []types.LocationRecord{}
	}
	return payload.Locations, nil
}

// FileExporter writes indented JSON to a local file.
type FileExporter struct {
	path string
}

func NewFileExporter(path string) *FileExporter {
	return &FileExporter{path: path}
}

func (e *FileExporter) Export(ctx context.Context, payload *types.LocationsPayload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}

	if dir := filepath.Dir(e.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := os.WriteFile(e.path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export file %s: %w", e.path, err)
	}
	return e.path, nil
}

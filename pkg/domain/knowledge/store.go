package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	shared "github.com/fitglue/musclemap/pkg"
)

// Store is durable storage for the table. Save always rewrites the whole
// table. Load of a store that was never written returns an empty table.
type Store interface {
	Load(ctx context.Context) (Table, error)
	Save(ctx context.Context, t Table) error
}

func encodeTable(t Table) ([]byte, error) {
	return json.MarshalIndent(t, "", "    ")
}

func decodeTable(data []byte) (Table, error) {
	t := Table{}
	if len(data) == 0 {
		return t, nil
	}
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode table: %w", err)
	}
	return t, nil
}

// FileStore keeps the table in a JSON file.
type FileStore struct {
	Path string
}

func (s FileStore) Load(ctx context.Context) (Table, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Table{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	return decodeTable(data)
}

// Save writes to a temporary file next to Path and renames it into place, so
// a crash mid-write leaves the previous table intact.
func (s FileStore) Save(ctx context.Context, t Table) error {
	data, err := encodeTable(t)
	if err != nil {
		return fmt.Errorf("failed to encode table: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.Path, err)
	}
	return nil
}

// BlobStore keeps the table as a JSON object in a bucket.
type BlobStore struct {
	Store  shared.BlobStore
	Bucket string
	Object string
}

func (s BlobStore) Load(ctx context.Context) (Table, error) {
	data, err := s.Store.Read(ctx, s.Bucket, s.Object)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Table{}, nil
		}
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", s.Bucket, s.Object, err)
	}
	return decodeTable(data)
}

func (s BlobStore) Save(ctx context.Context, t Table) error {
	data, err := encodeTable(t)
	if err != nil {
		return fmt.Errorf("failed to encode table: %w", err)
	}
	if err := s.Store.Write(ctx, s.Bucket, s.Object, data); err != nil {
		return fmt.Errorf("failed to write gs://%s/%s: %w", s.Bucket, s.Object, err)
	}
	return nil
}

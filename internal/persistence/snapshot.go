package persistence

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"
	"github.com/ncruces/go-strftime"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/talgya/hearthvale/internal/engine"
)

// SnapshotPattern names snapshot files; it sorts chronologically.
const SnapshotPattern = "hearthvale-%Y%m%d-%H%M%S.json.zst"

//go:embed snapshot.schema.json
var snapshotSchemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func snapshotSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("snapshot.schema.json", snapshotSchemaJSON)
	})
	return schema, schemaErr
}

// WriteSnapshot writes snap as zstd-compressed JSON into dir, naming the
// file after at. It returns the file path.
func WriteSnapshot(dir string, snap *engine.Snapshot, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, strftime.Format(SnapshotPattern, at.UTC()))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return "", err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)
	if err := json.NewEncoder(bw).Encode(snap); err != nil {
		enc.Close()
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}

	if info, err := f.Stat(); err == nil {
		slog.Info("snapshot written", "path", path, "size", humanize.Bytes(uint64(info.Size())), "tick", snap.Ticks)
	}
	return path, nil
}

// ReadSnapshot decompresses the file at path, validates it against the
// snapshot schema and decodes it.
func ReadSnapshot(path string) (*engine.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}
	return DecodeSnapshot(raw)
}

// DecodeSnapshot validates raw JSON against the snapshot schema and decodes it.
func DecodeSnapshot(raw []byte) (*engine.Snapshot, error) {
	sch, err := snapshotSchema()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	d := json.NewDecoder(bytes.NewReader(raw))
	d.UseNumber()
	var doc any
	if err := d.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}

	var snap engine.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// LatestSnapshot returns the newest snapshot file in dir, or "" if none.
func LatestSnapshot(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "hearthvale-*.json.zst"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

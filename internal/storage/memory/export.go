// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/markerlane/markerlane/pkg/core"
	"gopkg.in/yaml.v3"
)

// FixtureVersion is the current fixture file format.
const FixtureVersion = 1

// SnapshotName prefixes the exports Close writes and Init reads back.
const SnapshotName = "markerlane"

// Fixture is the on-disk marker set of one or more scenes.
type Fixture struct {
	Version    int           `json:"version" yaml:"version"`
	ExportedAt time.Time     `json:"exportedAt" yaml:"exported_at"`
	Markers    []core.Marker `json:"markers" yaml:"markers"`
}

type format int

const (
	formatJSON format = iota
	formatYAML
)

// detectFormat picks the encoding from the file name. A trailing .gz means
// gzip over the inner format.
func detectFormat(path string) (format, bool, error) {
	name := strings.ToLower(filepath.Base(path))
	gz := strings.HasSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".gz")

	switch filepath.Ext(name) {
	case ".json":
		return formatJSON, gz, nil
	case ".yaml", ".yml":
		return formatYAML, gz, nil
	default:
		return 0, false, fmt.Errorf("unsupported fixture format: %s", path)
	}
}

// ReadFixture loads a JSON or YAML fixture, optionally gzipped.
func ReadFixture(path string) (Fixture, error) {
	var f Fixture

	fm, gz, err := detectFormat(path)
	if err != nil {
		return f, err
	}

	file, err := os.Open(path)
	if err != nil {
		return f, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if gz {
		gzReader, err := gzip.NewReader(file)
		if err != nil {
			return f, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gzReader.Close()
		r = gzReader
	}

	switch fm {
	case formatYAML:
		err = yaml.NewDecoder(r).Decode(&f)
	default:
		err = json.NewDecoder(r).Decode(&f)
	}
	if err != nil && err != io.EOF {
		return f, fmt.Errorf("failed to decode fixture %s: %w", path, err)
	}
	if f.Version > FixtureVersion {
		return f, fmt.Errorf("fixture version %d is newer than supported version %d", f.Version, FixtureVersion)
	}
	return f, nil
}

// WriteFixture writes a fixture in the format implied by path.
func WriteFixture(path string, f Fixture) error {
	fm, gz, err := detectFormat(path)
	if err != nil {
		return err
	}
	if f.Version == 0 {
		f.Version = FixtureVersion
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	var w io.Writer = file
	if gz {
		gzWriter := gzip.NewWriter(file)
		defer gzWriter.Close()
		w = gzWriter
	}

	switch fm {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	default:
		return json.NewEncoder(w).Encode(f)
	}
}

// Export writes every marker in the store to OutputDir as JSON, gzipped when
// CompressOutput is set, and returns the path written.
func (b *Backend) Export(name string) (string, error) {
	b.mu.RLock()
	f := Fixture{Version: FixtureVersion, ExportedAt: time.Now().UTC()}
	for _, m := range b.markers {
		f.Markers = append(f.Markers, cloneMarker(m))
	}
	b.mu.RUnlock()

	sortMarkers(f.Markers)

	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	timestamp := f.ExportedAt.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", name, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", name, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)
	if err := WriteFixture(outputPath, f); err != nil {
		return "", err
	}

	b.mu.Lock()
	b.lastExportPath = outputPath
	b.mu.Unlock()
	return outputPath, nil
}

// latestSnapshot returns the newest SnapshotName export in dir, or "" when
// there is none. Export names embed a sortable timestamp.
func latestSnapshot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to list snapshots: %w", err)
	}

	latest := ""
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, SnapshotName+"_") {
			continue
		}
		if !strings.HasSuffix(name, ".json") && !strings.HasSuffix(name, ".json.gz") {
			continue
		}
		if stamp(name) > stamp(latest) {
			latest = name
		}
	}
	if latest == "" {
		return "", nil
	}
	return filepath.Join(dir, latest), nil
}

func stamp(name string) string {
	return strings.TrimSuffix(strings.TrimSuffix(name, ".gz"), ".json")
}

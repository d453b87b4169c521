package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TimestampLayout names output artifacts with second resolution.
const TimestampLayout = "2006-01-02_15:04:05"

// Record encodings accepted by FileStore.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Store persists a completed dataset.
type Store interface {
	Save(ds *Dataset, ts time.Time) (string, error)
}

// seriesRecord is the on-disk shape of one variant: four parallel sequences.
type seriesRecord struct {
	Threads   []int     `json:"t" yaml:"t"`
	Reference []float64 `json:"s" yaml:"s"`
	Measured  []float64 `json:"m" yaml:"m"`
	Speedup   []float64 `json:"sp" yaml:"sp"`
}

// FileStore writes one record file per sweep into a directory.
type FileStore struct {
	dir    string
	prefix string
	format string
}

func NewFileStore(dir, prefix, format string) (*FileStore, error) {
	format = strings.ToLower(format)
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatYAML {
		return nil, fmt.Errorf("unsupported record format %q", format)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, prefix: prefix, format: format}, nil
}

// Path returns the record file name used for a sweep saved at ts.
func (s *FileStore) Path(ts time.Time) string {
	name := fmt.Sprintf("%s_data_%s.%s", s.prefix, ts.Format(TimestampLayout), s.format)
	return filepath.Join(s.dir, name)
}

func (s *FileStore) Save(ds *Dataset, ts time.Time) (string, error) {
	data, err := Encode(ds, s.format)
	if err != nil {
		return "", err
	}

	path := s.Path(ts)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Load reads back a record written by Save.
func (s *FileStore) Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, s.format)
}

// Encode serializes ds in the given format.
func Encode(ds *Dataset, format string) ([]byte, error) {
	rec := make(map[string]seriesRecord, len(ds.series))
	for _, id := range ds.Variants() {
		s := ds.series[id]
		sr := seriesRecord{
			Threads:   make([]int, 0, len(s.Runs)),
			Reference: make([]float64, 0, len(s.Runs)),
			Measured:  make([]float64, 0, len(s.Runs)),
			Speedup:   make([]float64, 0, len(s.Runs)),
		}
		for _, r := range s.Runs {
			sr.Threads = append(sr.Threads, r.Threads)
			sr.Reference = append(sr.Reference, r.Reference)
			sr.Measured = append(sr.Measured, r.Measured)
			sr.Speedup = append(sr.Speedup, r.Speedup)
		}
		rec[VariantKey(id)] = sr
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(rec, "", "    ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal dataset: %w", err)
		}
		return data, nil
	case FormatYAML:
		data, err := yaml.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal dataset: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported record format %q", format)
	}
}

// Decode rebuilds a dataset from a record. Stored speedups are kept as-is.
func Decode(data []byte, format string) (*Dataset, error) {
	var rec map[string]seriesRecord
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &rec)
	case FormatYAML:
		err = yaml.Unmarshal(data, &rec)
	default:
		return nil, fmt.Errorf("unsupported record format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal dataset: %w", err)
	}

	ds := NewDataset()
	for key, sr := range rec {
		id, err := strconv.Atoi(strings.TrimPrefix(key, "v"))
		if err != nil || !strings.HasPrefix(key, "v") {
			return nil, fmt.Errorf("invalid variant key %q", key)
		}
		n := len(sr.Threads)
		if len(sr.Reference) != n || len(sr.Measured) != n || len(sr.Speedup) != n {
			return nil, fmt.Errorf("variant %s: sequences have different lengths", key)
		}
		s := &Series{Variant: id, Runs: make([]Run, n)}
		for i := range sr.Threads {
			s.Runs[i] = Run{
				Threads:   sr.Threads[i],
				Reference: sr.Reference[i],
				Measured:  sr.Measured[i],
				Speedup:   sr.Speedup[i],
			}
		}
		ds.series[id] = s
	}
	return ds, nil
}

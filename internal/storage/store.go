// Package storage persists render and trace runs as one directory per run:
// metadata.json next to the image or trajectory data.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kmoroz/gravbasin/internal/analysis"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	Preset       string  `json:"preset,omitempty"`
	Method       string  `json:"method"`
	Dt           float64 `json:"dt"`
	MaxSteps     int     `json:"max_steps"`
	Width        int     `json:"width,omitempty"`
	Height       int     `json:"height,omitempty"`
	Zoom         float64 `json:"zoom"`
	OffsetX      float64 `json:"offset_x"`
	OffsetY      float64 `json:"offset_y"`
	VX           float64 `json:"vx"`
	VY           float64 `json:"vy"`
	ElapsedMilli int64   `json:"elapsed_ms"`

	Basins *analysis.Report `json:"basins,omitempty"`
}

// SaveRender writes a run dir with metadata.json and basins.png, returning
// the run ID.
func (s *Store) SaveRender(meta RunMetadata, img image.Image) (string, error) {
	meta.Kind = "render"
	runDir, err := s.newRunDir(&meta)
	if err != nil {
		return "", err
	}
	if err := s.writeMeta(runDir, meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, "basins.png"))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// SaveTrace writes a run dir with metadata.json and trajectory.csv
// (step, t, x, y rows).
func (s *Store) SaveTrace(meta RunMetadata, history []r2.Vec) (string, error) {
	meta.Kind = "trace"
	runDir, err := s.newRunDir(&meta)
	if err != nil {
		return "", err
	}
	if err := s.writeMeta(runDir, meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, "trajectory.csv"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"step", "t", "x", "y"}); err != nil {
		return "", err
	}
	for i, p := range history {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(float64(i)*meta.Dt, 'g', -1, 64),
			strconv.FormatFloat(p.X, 'g', -1, 64),
			strconv.FormatFloat(p.Y, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return meta.ID, w.Error()
}

// List returns the metadata of every saved run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, e.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

// Dir returns the directory of a run ID.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

func (s *Store) newRunDir(meta *RunMetadata) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.ID = fmt.Sprintf("%s_%d", meta.Kind, meta.Timestamp.UnixNano())
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	return runDir, nil
}

func (s *Store) writeMeta(runDir string, meta RunMetadata) error {
	f, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

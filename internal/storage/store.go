package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/dynode/internal/config"
	"github.com/san-kum/dynode/internal/dynamo"
	"github.com/san-kum/dynode/internal/solver"
)

// Latest selects the most recent run wherever a run ID is accepted.
const Latest = "latest"

var ErrNoRuns = errors.New("no stored runs")

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
	ID        string             `json:"id"`
	Model     string             `json:"model"`
	Method    string             `json:"method"`
	Timestamp time.Time          `json:"timestamp"`
	T0        float64            `json:"t0"`
	TF        float64            `json:"tf"`
	Params    map[string]float64 `json:"params,omitempty"`
	Solver    solver.Config      `json:"solver"`
	Status    solver.Status      `json:"status"`
	Stats     solver.Stats       `json:"stats"`
	Labels    []string           `json:"labels,omitempty"`
	Points    int                `json:"points"`
	Metrics   map[string]float64 `json:"metrics"`
}

func newRunID(model string) string {
	id, err := uuid.NewV7()
	if err != nil {
		return model + "_" + uuid.New().String()
	}
	return model + "_" + id.String()
}

// Save writes metadata.json and states.csv for a finished solve and
// returns the new run ID. States are written at full precision so a
// loaded trajectory reproduces the solved one exactly.
func (s *Store) Save(cfg *config.Config, sol *solver.Solution, labels []string, metrics map[string]float64) (string, error) {
	runID := newRunID(cfg.Model)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Model:     cfg.Model,
		Method:    sol.Method,
		Timestamp: time.Now(),
		T0:        cfg.T0,
		TF:        cfg.TF,
		Params:    cfg.Params,
		Solver:    cfg.Solver,
		Status:    sol.Status,
		Stats:     sol.Stats,
		Labels:    labels,
		Points:    sol.Trajectory.Len(),
		Metrics:   metrics,
	}
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, "states.csv"), sol.Trajectory, labels); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, tr *solver.Trajectory, labels []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	dim := len(tr.First().Y)
	header := []string{"t"}
	for i := 0; i < dim; i++ {
		if i < len(labels) {
			header = append(header, labels[i])
		} else {
			header = append(header, fmt.Sprintf("x%d", i))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, dim+1)
	var werr error
	tr.Each(func(_ int, p solver.Point) bool {
		row[0] = strconv.FormatFloat(p.T, 'g', -1, 64)
		for i, v := range p.Y {
			row[i+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		werr = w.Write(row)
		return werr == nil
	})
	if werr != nil {
		return werr
	}
	w.Flush()
	return w.Error()
}

// List returns stored runs, oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

// Resolve maps Latest to the newest run ID; any other ID is returned
// unchanged.
func (s *Store) Resolve(runID string) (string, error) {
	if runID != Latest {
		return runID, nil
	}
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrNoRuns
	}
	return runs[len(runs)-1].ID, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadTrajectory reads states.csv back into a trajectory. Stored
// trajectories carry no dense output.
func (s *Store) LoadTrajectory(runID string) (*solver.Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("run %s: no states recorded", runID)
	}

	points := make([]solver.Point, 0, len(records)-1)
	for i, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s: row %d: %w", runID, i+1, err)
			}
			vals[j] = v
		}
		points = append(points, solver.Point{T: vals[0], Y: dynamo.State(vals[1:])})
	}
	return solver.NewTrajectory(points)
}

func (s *Store) Delete(runID string) error {
	if _, err := s.Load(runID); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(s.baseDir, runID))
}

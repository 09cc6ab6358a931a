package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/dynode/internal/config"
	"github.com/san-kum/dynode/internal/dynamo"
	"github.com/san-kum/dynode/internal/solver"
)

func solveDecay(t *testing.T) (*config.Config, *solver.Solution) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Model = "decay"
	cfg.TF = 2
	cfg.Y0 = []float64{1, -0.5}

	sys := dynamo.Func(2, func(_ float64, x dynamo.State) dynamo.State {
		return dynamo.State{-x[0], -0.3 * x[1]}
	})
	p, err := dynamo.NewProblem(sys, cfg.T0, cfg.TF, cfg.Y0)
	if err != nil {
		t.Fatal(err)
	}
	sol, err := solver.Solve(context.Background(), p, cfg.Solver)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	return cfg, sol
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, sol := solveDecay(t)
	runID, err := st.Save(cfg, sol, []string{"a", "b"}, map[string]float64{"energy_drift": 1.5})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "decay_") {
		t.Errorf("expected run id prefixed with model, got %s", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Model != "decay" || meta.Method != "dop853" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["energy_drift"] != 1.5 {
		t.Errorf("expected energy_drift 1.5, got %f", meta.Metrics["energy_drift"])
	}
	if meta.Stats.Accepted != sol.Stats.Accepted || meta.Points != sol.Trajectory.Len() {
		t.Errorf("stats not stored: %+v", meta.Stats)
	}
	if meta.Solver.RTol != cfg.Solver.RTol {
		t.Errorf("solver config not stored: %+v", meta.Solver)
	}

	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}
	if tr.Len() != sol.Trajectory.Len() {
		t.Fatalf("expected %d points, got %d", sol.Trajectory.Len(), tr.Len())
	}
	for i := 0; i < tr.Len(); i++ {
		got, want := tr.At(i), sol.Trajectory.At(i)
		if got.T != want.T || got.Y[0] != want.Y[0] || got.Y[1] != want.Y[1] {
			t.Fatalf("point %d: got %v, want %v", i, got, want)
		}
	}
}

func TestStoreCSVHeader(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	cfg, sol := solveDecay(t)

	runID, err := st.Save(cfg, sol, []string{"a"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, runID, "states.csv"))
	if err != nil {
		t.Fatal(err)
	}
	first := strings.SplitN(string(data), "\n", 2)[0]
	if first != "t,a,x1" {
		t.Errorf("unexpected header %q", first)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
	if _, err := st.Resolve(Latest); err != ErrNoRuns {
		t.Errorf("expected ErrNoRuns, got %v", err)
	}

	cfg, sol := solveDecay(t)
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := st.Save(cfg, sol, nil, nil)
		if err != nil {
			t.Fatalf("save failed: %v", err)
		}
		ids = append(ids, id)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}

	latest, err := st.Resolve(Latest)
	if err != nil {
		t.Fatal(err)
	}
	if latest != ids[2] {
		t.Errorf("expected latest %s, got %s", ids[2], latest)
	}
	if id, _ := st.Resolve("other"); id != "other" {
		t.Errorf("explicit id changed to %s", id)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreLoadNotFound(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nonexistent"); err == nil {
		t.Error("expected error for nonexistent run")
	}
	if _, err := st.LoadTrajectory("nonexistent"); err == nil {
		t.Error("expected error for nonexistent states")
	}
}

func TestStoreDelete(t *testing.T) {
	st := New(t.TempDir())
	cfg, sol := solveDecay(t)
	id, err := st.Save(cfg, sol, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Delete(id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := st.Load(id); err == nil {
		t.Error("run still present after delete")
	}
	if err := st.Delete("nonexistent"); err == nil {
		t.Error("expected error deleting unknown run")
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	cfg, sol := solveDecay(t)
	id, err := st.Save(cfg, sol, []string{"a", "b"}, map[string]float64{"m": 2})
	if err != nil {
		t.Fatal(err)
	}
	meta, err := st.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := st.LoadTrajectory(id)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, tr); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if data.Steps != tr.Len() || len(data.Times) != tr.Len() || len(data.States) != tr.Len() {
		t.Errorf("expected %d samples, got %d/%d/%d", tr.Len(), data.Steps, len(data.Times), len(data.States))
	}
	if data.Model != "decay" || data.Metrics["m"] != 2 || data.TF != 2 {
		t.Errorf("unexpected export %+v", data)
	}
}

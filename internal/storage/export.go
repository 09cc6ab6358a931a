package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/dynode/internal/solver"
)

type ExportData struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Method  string             `json:"method"`
	T0      float64            `json:"t0"`
	TF      float64            `json:"tf"`
	RTol    float64            `json:"rtol"`
	ATol    float64            `json:"atol"`
	Status  solver.Status      `json:"status"`
	Stats   solver.Stats       `json:"stats"`
	Labels  []string           `json:"labels,omitempty"`
	Steps   int                `json:"steps"`
	Times   []float64          `json:"times"`
	States  [][]float64        `json:"states"`
	Metrics map[string]float64 `json:"metrics"`
}

func NewExportData(meta *RunMetadata, tr *solver.Trajectory) ExportData {
	data := ExportData{
		ID:      meta.ID,
		Model:   meta.Model,
		Method:  meta.Method,
		T0:      meta.T0,
		TF:      meta.TF,
		RTol:    meta.Solver.RTol,
		ATol:    meta.Solver.ATol,
		Status:  meta.Status,
		Stats:   meta.Stats,
		Labels:  meta.Labels,
		Steps:   tr.Len(),
		Times:   tr.Times(),
		States:  make([][]float64, tr.Len()),
		Metrics: meta.Metrics,
	}
	for i, s := range tr.States() {
		data.States[i] = s
	}
	return data
}

// ExportJSON writes a run as one indented JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, tr *solver.Trajectory) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, tr))
}

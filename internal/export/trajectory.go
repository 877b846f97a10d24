package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Trajectory is a sequence of frames produced by repeatedly stepping a model.
type Trajectory struct {
	Model   string             `json:"model"`
	Preset  string             `json:"preset,omitempty"`
	Dt      float64            `json:"dt"`
	Params  []float64          `json:"params"`
	Times   []float64          `json:"times"`
	States  [][]float64        `json:"states"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

func NewTrajectory(model string, dt float64, params []float64) *Trajectory {
	return &Trajectory{
		Model:   model,
		Dt:      dt,
		Params:  append([]float64{}, params...),
		Metrics: make(map[string]float64),
	}
}

// Append records a copy of state at time t.
func (tr *Trajectory) Append(t float64, state []float64) {
	tr.Times = append(tr.Times, t)
	tr.States = append(tr.States, append([]float64{}, state...))
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Column extracts component i of every frame.
func (tr *Trajectory) Column(i int) []float64 {
	out := make([]float64, len(tr.States))
	for k, s := range tr.States {
		if i < len(s) {
			out[k] = s[i]
		}
	}
	return out
}

// WriteCSV writes one row per frame with a "time,x0,x1,..." header.
func (tr *Trajectory) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if len(tr.States) == 0 {
		cw.Flush()
		return cw.Error()
	}

	header := []string{"time"}
	for i := range tr.States[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, state := range tr.States {
		row := []string{strconv.FormatFloat(tr.Times[i], 'g', -1, 64)}
		for _, val := range state {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func (tr *Trajectory) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tr)
}

package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/tankersim/internal/env"
	"github.com/san-kum/tankersim/internal/sim"
)

type ExportData struct {
	Name       string             `json:"name,omitempty"`
	Mode       string             `json:"mode"`
	Policy     string             `json:"policy"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	Seed       int64              `json:"seed"`
	Steps      int                `json:"steps"`
	Return     float64            `json:"return"`
	Done       bool               `json:"done"`
	Telemetry  []env.Telemetry    `json:"telemetry"`
	Actions    []int              `json:"actions"`
	Rewards    []float64          `json:"rewards"`
	Metrics    map[string]float64 `json:"metrics"`
	Track      string             `json:"track_wkt"`
}

// ExportJSON writes the full record of a run as indented JSON.
func ExportJSON(w io.Writer, info RunInfo, result *sim.Result) error {
	track, err := Track(result.Telemetry)
	if err != nil {
		return err
	}
	data := ExportData{
		Name:       info.Name,
		Mode:       info.Mode,
		Policy:     info.Policy,
		Integrator: info.Integrator,
		Dt:         info.Dt,
		Seed:       info.Seed,
		Steps:      result.StepsTaken,
		Return:     result.Return,
		Done:       result.Done,
		Telemetry:  result.Telemetry,
		Actions:    result.Actions,
		Rewards:    result.Rewards,
		Metrics:    finite(result.Metrics),
		Track:      track.AsText(),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

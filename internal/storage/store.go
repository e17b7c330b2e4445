package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/peterstace/simplefeatures/geom"
	"gorm.io/gorm"

	"github.com/san-kum/tankersim/internal/env"
	"github.com/san-kum/tankersim/internal/field"
	"github.com/san-kum/tankersim/internal/guidance"
	"github.com/san-kum/tankersim/internal/sim"
	"github.com/san-kum/tankersim/internal/vessel"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
	trackFile      = "track.wkt"
	indexFile      = "index.db"
)

var ErrRunNotFound = errors.New("storage: run not found")

// Store keeps one directory per run under baseDir and a SQLite index of all
// runs next to them.
type Store struct {
	baseDir string
	db      *gorm.DB
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}
	db, err := openIndex(filepath.Join(s.baseDir, indexFile))
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.db = nil
	return sqlDB.Close()
}

// RunInfo describes how a run was produced.
type RunInfo struct {
	Name       string
	Mode       string
	Policy     string
	Integrator string
	Dt         float64
	Seed       int64
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Mode       string             `json:"mode"`
	Policy     string             `json:"policy"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	Seed       int64              `json:"seed"`
	Steps      int                `json:"steps"`
	Return     float64            `json:"return"`
	Done       bool               `json:"done"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes the run directory and adds the run to the index. It returns
// the run id.
func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	if s.db == nil {
		return "", errors.New("storage: not initialized")
	}
	now := time.Now()
	runID, runDir, err := s.newRunDir(info, now)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       info.Name,
		Timestamp:  now,
		Mode:       info.Mode,
		Policy:     info.Policy,
		Integrator: info.Integrator,
		Dt:         info.Dt,
		Seed:       info.Seed,
		Steps:      result.StepsTaken,
		Return:     result.Return,
		Done:       result.Done,
		Metrics:    finite(result.Metrics),
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), result); err != nil {
		return "", err
	}

	track, err := Track(result.Telemetry)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, trackFile), []byte(track.AsText()), 0644); err != nil {
		return "", err
	}

	if err := s.index(meta, track); err != nil {
		return "", fmt.Errorf("storage: index %s: %w", runID, err)
	}
	return runID, nil
}

// newRunDir creates a fresh directory, suffixing the id when runs collide
// within the same second.
func (s *Store) newRunDir(info RunInfo, now time.Time) (string, string, error) {
	name := info.Policy
	if info.Name != "" {
		name = info.Name
	}
	base := fmt.Sprintf("%s_%s_s%d", name, now.Format("20060102_150405"), info.Seed)
	for i := 0; ; i++ {
		runID := base
		if i > 0 {
			runID = fmt.Sprintf("%s_%d", base, i)
		}
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
	}
}

// finite drops metrics JSON cannot encode, e.g. a clearance never observed.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
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

// Track is the geographic track of a run, X longitude and Y latitude. A run
// that never left its start position has the empty track.
func Track(tel []env.Telemetry) (geom.LineString, error) {
	coords := make([]float64, 0, 2*len(tel))
	moved := false
	for _, t := range tel {
		coords = append(coords, t.Lon, t.Lat)
		if t.Lon != tel[0].Lon || t.Lat != tel[0].Lat {
			moved = true
		}
	}
	if !moved {
		return geom.LineString{}, nil
	}
	ls, err := geom.NewLineString(geom.NewSequence(coords, geom.DimXY))
	if err != nil {
		return geom.LineString{}, fmt.Errorf("storage: track: %w", err)
	}
	return ls, nil
}

var trajectoryHeader = []string{
	"step", "time", "lat", "lon",
	"north", "east", "psi", "u", "v", "r",
	"rudder", "nps",
	"depth", "current_speed", "current_angle", "wind_speed", "wind_angle",
	"cross_track", "desired_course", "path_bearing", "course", "course_error",
	"wp1", "wp2", "action", "reward",
}

func writeTrajectory(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(trajectoryHeader); err != nil {
		return err
	}

	ff := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for i, t := range result.Telemetry {
		// the first record is the reset state and has no action
		action, reward := "", ""
		if i > 0 && i-1 < len(result.Actions) {
			action = strconv.Itoa(result.Actions[i-1])
			reward = ff(result.Rewards[i-1])
		}
		row := []string{
			strconv.Itoa(t.Step), ff(t.Time), ff(t.Lat), ff(t.Lon),
			ff(t.State.North), ff(t.State.East), ff(t.State.Psi), ff(t.State.U), ff(t.State.V), ff(t.State.R),
			ff(t.Rudder), ff(t.Nps),
			ff(t.Env.Depth), ff(t.Env.CurrentSpeed), ff(t.Env.CurrentAngle), ff(t.Env.WindSpeed), ff(t.Env.WindAngle),
			ff(t.Guidance.CrossTrack), ff(t.Guidance.DesiredCourse), ff(t.Guidance.PathBearing), ff(t.Course), ff(t.CourseError),
			strconv.Itoa(t.WP1), strconv.Itoa(t.WP2), action, reward,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *Store) runDir(runID string) (string, error) {
	dir := filepath.Join(s.baseDir, runID)
	if _, err := os.Stat(filepath.Join(dir, metadataFile)); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return "", err
	}
	return dir, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTelemetry reads the recorded trajectory back. Sensor readings are not
// stored.
func (s *Store) LoadTelemetry(runID string) ([]env.Telemetry, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(dir, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(trajectoryHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []env.Telemetry{}, nil
	}

	out := make([]env.Telemetry, 0, len(records)-1)
	for i, rec := range records[1:] {
		t, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", trajectoryFile, i+2, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func parseRecord(rec []string) (env.Telemetry, error) {
	var firstErr error
	num := func(i int) float64 {
		v, err := strconv.ParseFloat(rec[i], 64)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return v
	}
	integer := func(i int) int {
		v, err := strconv.Atoi(rec[i])
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return v
	}

	t := env.Telemetry{
		Step: integer(0),
		Time: num(1),
		Lat:  num(2),
		Lon:  num(3),
		State: vessel.State{
			North: num(4),
			East:  num(5),
			Psi:   num(6),
			U:     num(7),
			V:     num(8),
			R:     num(9),
		},
		Rudder: num(10),
		Nps:    num(11),
		Env: field.Sample{
			Depth:        num(12),
			CurrentSpeed: num(13),
			CurrentAngle: num(14),
			WindSpeed:    num(15),
			WindAngle:    num(16),
		},
		Guidance: guidance.Result{
			CrossTrack:    num(17),
			DesiredCourse: num(18),
			PathBearing:   num(19),
		},
		Course:      num(20),
		CourseError: num(21),
		WP1:         integer(22),
		WP2:         integer(23),
	}
	return t, firstErr
}

// LoadTrack reads the stored track geometry.
func (s *Store) LoadTrack(runID string) (geom.LineString, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return geom.LineString{}, err
	}
	data, err := os.ReadFile(filepath.Join(dir, trackFile))
	if err != nil {
		return geom.LineString{}, err
	}
	g, err := geom.UnmarshalWKT(string(data))
	if err != nil {
		return geom.LineString{}, err
	}
	ls, ok := g.AsLineString()
	if !ok {
		return geom.LineString{}, fmt.Errorf("storage: %s of %s is a %s", trackFile, runID, g.Type())
	}
	return ls, nil
}

// Delete removes a run directory and its index entry.
func (s *Store) Delete(runID string) error {
	dir, err := s.runDir(runID)
	if err != nil {
		return err
	}
	if s.db != nil {
		if err := s.db.Delete(&Run{ID: runID}).Error; err != nil {
			return err
		}
	}
	return os.RemoveAll(dir)
}

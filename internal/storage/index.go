package storage

import (
	"time"

	"github.com/glebarez/sqlite"
	"github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Run is the index row of a stored run.
type Run struct {
	ID         string    `gorm:"primaryKey;size:127"`
	CreatedAt  time.Time `gorm:"index:idx_run_created"`
	Name       string    `gorm:"size:64"`
	Mode       string    `gorm:"size:16"`
	Policy     string    `gorm:"size:32;index:idx_run_policy"`
	Integrator string    `gorm:"size:16"`
	Seed       int64
	Steps      int
	Return     float64
	Done       bool
	Metrics    datatypes.JSONMap
	Track      string  `gorm:"type:text"` // WKT
	LengthDeg  float64 // track length in degrees
}

func openIndex(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Run{}); err != nil {
		return nil, err
	}
	return db, nil
}

func (s *Store) index(meta RunMetadata, track geom.LineString) error {
	metrics := make(datatypes.JSONMap, len(meta.Metrics))
	for k, v := range meta.Metrics {
		metrics[k] = v
	}
	return s.db.Create(&Run{
		ID:         meta.ID,
		CreatedAt:  meta.Timestamp,
		Name:       meta.Name,
		Mode:       meta.Mode,
		Policy:     meta.Policy,
		Integrator: meta.Integrator,
		Seed:       meta.Seed,
		Steps:      meta.Steps,
		Return:     meta.Return,
		Done:       meta.Done,
		Metrics:    metrics,
		Track:      track.AsText(),
		LengthDeg:  track.Length(),
	}).Error
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Policy string
	Mode   string
	Limit  int
}

// List returns indexed runs, newest first.
func (s *Store) List(f Filter) ([]Run, error) {
	if s.db == nil {
		return []Run{}, nil
	}
	q := s.db.Model(&Run{}).Order("created_at desc")
	if f.Policy != "" {
		q = q.Where("policy = ?", f.Policy)
	}
	if f.Mode != "" {
		q = q.Where("mode = ?", f.Mode)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var runs []Run
	if err := q.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// Metric returns a stored metric of the run and whether it was recorded.
func (r Run) Metric(name string) (float64, bool) {
	v, ok := r.Metrics[name]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

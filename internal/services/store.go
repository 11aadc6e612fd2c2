package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/cmzlocks/value-props-model/internal/models"
)

// DocumentStore reads and writes the persisted JSON documents: the pick
// store, the performance rollup and the props history archive. Writes are
// atomic (temp file + rename) so a failed run never leaves a torn document.
type DocumentStore struct {
	trackingFile    string
	performanceFile string
	historyFile     string
	logger          *logrus.Logger
}

// NewDocumentStore creates a store rooted at the given file paths.
func NewDocumentStore(trackingFile, performanceFile, historyFile string, logger *logrus.Logger) *DocumentStore {
	return &DocumentStore{
		trackingFile:    trackingFile,
		performanceFile: performanceFile,
		historyFile:     historyFile,
		logger:          logger,
	}
}

// LoadPickStore reads the tracking document. A missing file yields an empty
// store; an unreadable one yields an empty store and the error, so a run can
// proceed without history rather than fail.
func (s *DocumentStore) LoadPickStore() (*models.PickStore, error) {
	store := models.NewPickStore()
	if err := readJSON(s.trackingFile, store); err != nil {
		if os.IsNotExist(err) {
			return models.NewPickStore(), nil
		}
		return models.NewPickStore(), fmt.Errorf("failed to load pick store: %w", err)
	}
	if store.SchemaVersion == 0 {
		store.SchemaVersion = models.PickStoreSchemaVersion
	}
	if store.Picks == nil {
		store.Picks = []*models.Pick{}
	}
	return store, nil
}

// SavePickStore writes the tracking document.
func (s *DocumentStore) SavePickStore(store *models.PickStore) error {
	store.SchemaVersion = models.PickStoreSchemaVersion
	if err := writeJSON(s.trackingFile, store); err != nil {
		return fmt.Errorf("failed to save pick store: %w", err)
	}
	return nil
}

// LoadPerformance reads the performance rollup document.
func (s *DocumentStore) LoadPerformance() (*models.PerformanceReport, error) {
	report := models.NewPerformanceReport()
	if err := readJSON(s.performanceFile, report); err != nil {
		if os.IsNotExist(err) {
			return models.NewPerformanceReport(), nil
		}
		return models.NewPerformanceReport(), fmt.Errorf("failed to load performance: %w", err)
	}
	if report.Daily == nil {
		report.Daily = map[string]*models.DailyRollup{}
	}
	if report.DailyByType == nil {
		report.DailyByType = map[string]models.TypeRollups{}
	}
	return report, nil
}

// SavePerformance writes the performance rollup document.
func (s *DocumentStore) SavePerformance(report *models.PerformanceReport) error {
	report.SchemaVersion = models.PerformanceSchemaVersion
	if err := writeJSON(s.performanceFile, report); err != nil {
		return fmt.Errorf("failed to save performance: %w", err)
	}
	return nil
}

// AppendPropsHistory records a run's analyzed props under its date, replacing
// any earlier entry for the same date.
func (s *DocumentStore) AppendPropsHistory(date string, analyses []*models.PropAnalysis) error {
	history := models.PropsHistory{}
	if err := readJSON(s.historyFile, &history); err != nil && !os.IsNotExist(err) {
		s.logger.Warnf("Could not load props history, starting fresh: %v", err)
		history = models.PropsHistory{}
	}

	valuePlays := 0
	for _, a := range analyses {
		if a.IsValuePlay {
			valuePlays++
		}
	}
	history[date] = &models.PropsHistoryDay{
		Date:       date,
		TotalProps: len(analyses),
		ValuePlays: valuePlays,
		Props:      analyses,
	}

	if err := writeJSON(s.historyFile, history); err != nil {
		return fmt.Errorf("failed to save props history: %w", err)
	}
	return nil
}

func readJSON(path string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func writeJSON(path string, v interface{}) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

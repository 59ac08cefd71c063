package storage

import (
	"sync"

	"github.com/aOelschlager/islandora-dimensions/internal/models"
)

type RunStore struct {
	runs map[string]*models.Run
	mu   sync.RWMutex
}

func New() *RunStore {
	return &RunStore{
		runs: make(map[string]*models.Run),
	}
}

func (s *RunStore) Get(runID string) (*models.Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, exists := s.runs[runID]
	return run, exists
}

// Set stores a snapshot of the run. Callers keep mutating their own Run
// between Sets; readers only ever see immutable snapshots.
func (s *RunStore) Set(runID string, run *models.Run) {
	snapshot := *run
	snapshot.Results = append([]models.MediaResult(nil), run.Results...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[runID] = &snapshot
}

func (s *RunStore) GetAll() map[string]*models.Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*models.Run, len(s.runs))
	for k, v := range s.runs {
		result[k] = v
	}
	return result
}

func (s *RunStore) Delete(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, runID)
}

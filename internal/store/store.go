package store

import (
	"encoding/json"
	"os"
	"time"

	"github.com/homehab/hrv-controller/internal/model"
)

// RuntimeState is the one piece of state the pipeline carries across ticks:
// the bypass valve's last known position. Persisting it lets a restart resume
// the hysteresis state machine where it left off.
type RuntimeState struct {
	Bypass    model.BypassState `json:"bypass"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load() (*RuntimeState, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var state RuntimeState
	if err := json.NewDecoder(file).Decode(&state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Store) Save(state *RuntimeState) error {
	tmpPath := s.path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(state); err != nil {
		file.Close()
		return err
	}
	file.Sync()
	file.Close()

	return os.Rename(tmpPath, s.path)
}

package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homehab/hrv-controller/internal/model"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := New(path)

	saved := &RuntimeState{Bypass: model.BypassOpen, UpdatedAt: time.Now().UTC()}
	require.NoError(t, s.Save(saved))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, model.BypassOpen, loaded.Bypass)
}

func TestLoad_MissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing.json"))

	_, err := s.Load()
	assert.Error(t, err)
}

func TestSave_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := New(path)

	require.NoError(t, s.Save(&RuntimeState{Bypass: model.BypassOpen}))
	require.NoError(t, s.Save(&RuntimeState{Bypass: model.BypassClosed}))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, model.BypassClosed, loaded.Bypass)
}

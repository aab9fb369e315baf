package workspace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-evaluasi-api/pkg/errors"
)

type gaugeRecorder struct{ values []int }

func (g *gaugeRecorder) SetWorkspaceSessions(n int) { g.values = append(g.values, n) }

func TestManagerLifecycle(t *testing.T) {
	now := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	gauge := &gaugeRecorder{}
	stores := Stores{Problems: &fakeProblems{}, Programs: &fakePrograms{}, Logs: &fakeLogs{}}
	m := NewManager(stores, Options{Now: func() time.Time { return now }}, time.Hour, gauge)

	ctrl := m.Open(context.Background())
	require.NotEmpty(t, ctrl.ID())
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(ctrl.ID())
	require.NoError(t, err)
	assert.Same(t, ctrl, got)

	now = now.Add(50 * time.Minute)
	_, err = m.Get(ctrl.ID())
	require.NoError(t, err)

	now = now.Add(50 * time.Minute)
	assert.Zero(t, m.EvictExpired())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, m.EvictExpired())
	_, err = m.Get(ctrl.ID())
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, []int{1, 0}, gauge.values)
}

func TestManagerClose(t *testing.T) {
	stores := Stores{Problems: &fakeProblems{}, Programs: &fakePrograms{}, Logs: &fakeLogs{}}
	m := NewManager(stores, Options{}, 0, nil)
	ctrl := m.Open(context.Background())

	m.Close(ctrl.ID())
	m.Close("unknown")
	assert.Zero(t, m.Len())
}

package server

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerstate/internal/game"
)

func newTestRegistry(t *testing.T, idle time.Duration) (*Registry, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	logger := testLogger()
	return NewRegistry(logger, clock, idle, nil, NewMetrics(), NewHub(logger)), clock
}

func TestRegistryCreateGetDelete(t *testing.T) {
	t.Parallel()
	reg, _ := newTestRegistry(t, time.Minute)

	seed := int64(11)
	instance, err := reg.Create(CreateOptions{BigBlind: 10, Seed: &seed})
	require.NoError(t, err)
	assert.Equal(t, seed, instance.Seed)

	got, ok := reg.Get(instance.ID)
	require.True(t, ok)
	assert.Same(t, instance, got)
	assert.Equal(t, 1, reg.Len())

	_, err = reg.Create(CreateOptions{BigBlind: 1})
	require.ErrorIs(t, err, game.ErrInvalidAmount)
	assert.Equal(t, 1, reg.Len())

	assert.True(t, reg.Delete(instance.ID))
	assert.False(t, reg.Delete(instance.ID))
	_, ok = reg.Get(instance.ID)
	assert.False(t, ok)
}

func TestRegistryUpdateErrors(t *testing.T) {
	t.Parallel()
	reg, _ := newTestRegistry(t, time.Minute)

	err := reg.Update("missing", func(*game.Game) error { return nil })
	require.ErrorIs(t, err, ErrGameNotFound)
	err = reg.View("missing", func(*game.Game) error { return nil })
	require.ErrorIs(t, err, ErrGameNotFound)

	instance, err := reg.Create(CreateOptions{BigBlind: 10})
	require.NoError(t, err)
	err = reg.Update(instance.ID, func(g *game.Game) error {
		_, err := g.Step()
		return err
	})
	require.ErrorIs(t, err, game.ErrIllegalAction)
}

func TestRegistryListOrder(t *testing.T) {
	t.Parallel()
	reg, clock := newTestRegistry(t, time.Hour)
	ctx := context.Background()

	first, err := reg.Create(CreateOptions{BigBlind: 10})
	require.NoError(t, err)
	clock.Advance(time.Second).MustWait(ctx)
	second, err := reg.Create(CreateOptions{BigBlind: 20})
	require.NoError(t, err)

	summaries := reg.List()
	require.Len(t, summaries, 2)
	assert.Equal(t, first.ID, summaries[0].ID)
	assert.Equal(t, second.ID, summaries[1].ID)
	assert.Equal(t, 20, summaries[1].BigBlind)
	assert.Equal(t, game.PhaseHandStageValidator, summaries[0].Phase)
}

func TestRegistryReapIdle(t *testing.T) {
	t.Parallel()
	reg, clock := newTestRegistry(t, time.Minute)
	ctx := context.Background()

	stale, err := reg.Create(CreateOptions{BigBlind: 10})
	require.NoError(t, err)
	fresh, err := reg.Create(CreateOptions{BigBlind: 10})
	require.NoError(t, err)

	clock.Advance(30 * time.Second).MustWait(ctx)
	require.NoError(t, reg.View(fresh.ID, func(*game.Game) error { return nil }))

	clock.Advance(20 * time.Second).MustWait(ctx)
	assert.Equal(t, 0, reg.ReapIdle(), "nothing idle past a minute yet")

	clock.Advance(15 * time.Second).MustWait(ctx)
	assert.Equal(t, 1, reg.ReapIdle())

	_, ok := reg.Get(stale.ID)
	assert.False(t, ok)
	_, ok = reg.Get(fresh.ID)
	assert.True(t, ok)
}

func TestRegistryReapDisabled(t *testing.T) {
	t.Parallel()
	reg, clock := newTestRegistry(t, 0)

	_, err := reg.Create(CreateOptions{BigBlind: 10})
	require.NoError(t, err)
	clock.Advance(24 * time.Hour).MustWait(context.Background())
	assert.Equal(t, 0, reg.ReapIdle())
	assert.Equal(t, 1, reg.Len())
}

func TestRunReaper(t *testing.T) {
	t.Parallel()
	reg, clock := newTestRegistry(t, time.Minute)

	_, err := reg.Create(CreateOptions{BigBlind: 10})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reg.RunReaper(ctx, 30*time.Second) }()

	for i := 0; i < 100 && reg.Len() > 0; i++ {
		clock.Advance(30 * time.Second).MustWait(ctx)
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 0, reg.Len())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("reaper did not stop")
	}
}

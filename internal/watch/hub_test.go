package watch

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaolinyi828/mahjong-pro/internal/models"
)

func countingLoader() (LoadFunc, *int) {
	n := 0
	load := func(ctx context.Context) (*Snapshot, error) {
		n++
		return &Snapshot{
			Players: []models.Player{{ID: models.NewPlayerID()}},
		}, nil
	}
	return load, &n
}

func TestSubscribeDeliversCurrentSnapshot(t *testing.T) {
	load, _ := countingLoader()
	h := NewHub(load, logrus.New())
	require.NoError(t, h.Refresh(context.Background()))

	id, ch := h.Subscribe()
	defer h.Unsubscribe(id)

	select {
	case snap := <-ch:
		require.NotNil(t, snap)
		assert.Len(t, snap.Players, 1)
	default:
		t.Fatal("current snapshot should be pending immediately after Subscribe")
	}
}

func TestSubscribeBeforeFirstLoad(t *testing.T) {
	load, _ := countingLoader()
	h := NewHub(load, logrus.New())

	id, ch := h.Subscribe()
	defer h.Unsubscribe(id)

	select {
	case <-ch:
		t.Fatal("nothing to deliver before the first load")
	default:
	}

	require.NoError(t, h.Refresh(context.Background()))
	select {
	case snap := <-ch:
		assert.NotNil(t, snap)
	default:
		t.Fatal("refresh should fan out to the waiting subscriber")
	}
}

func TestSlowSubscriberGetsLatestOnly(t *testing.T) {
	load, calls := countingLoader()
	h := NewHub(load, logrus.New())

	id, ch := h.Subscribe()
	defer h.Unsubscribe(id)

	// Three refreshes without a read in between: the channel must hold
	// only the newest snapshot, never a backlog.
	ctx := context.Background()
	require.NoError(t, h.Refresh(ctx))
	require.NoError(t, h.Refresh(ctx))
	require.NoError(t, h.Refresh(ctx))
	assert.Equal(t, 3, *calls)

	latest := <-ch
	assert.Same(t, h.current, latest)
	select {
	case <-ch:
		t.Fatal("intermediate snapshots must be dropped, not queued")
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	load, _ := countingLoader()
	h := NewHub(load, logrus.New())

	id, ch := h.Subscribe()
	h.Unsubscribe(id)

	_, ok := <-ch
	assert.False(t, ok)

	// Idempotent.
	h.Unsubscribe(id)
}

func TestRefreshPropagatesLoadError(t *testing.T) {
	boom := errors.New("storage down")
	h := NewHub(func(ctx context.Context) (*Snapshot, error) {
		return nil, boom
	}, logrus.New())

	err := h.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

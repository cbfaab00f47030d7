package governing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/usecases/governing"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/usecases/governing/mocks"
)

func TestGovernor_PersistAndRestore(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSnapshotStore(ctrl)

	source, _, _ := newGovernor(t, testConfig(), governing.WithStore(store))
	admitAndRecord(t, source, call("a"), governing.Usage{Tokens: 40, Cost: decimal.NewFromInt(11)}, nil)

	var saved governing.Snapshot
	store.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, snapshot governing.Snapshot) error {
		saved = snapshot
		return nil
	})
	require.NoError(t, source.Persist(ctx))

	assert.Equal(t, governing.StateOpen, saved.State)
	assert.Equal(t, int64(40), saved.Counters.DailyTokens)
	require.Len(t, saved.Buckets, 1)
	require.Len(t, saved.Alerts, 1)

	store.EXPECT().Load(gomock.Any()).Return(&saved, nil)
	restored, _, _ := newGovernor(t, testConfig(), governing.WithStore(store))
	require.NoError(t, restored.Restore(ctx))

	status := restored.Status()
	assert.Equal(t, governing.StateOpen, status.State)
	assert.Equal(t, saved.Reason, status.Reason)
	assert.True(t, status.Counters.DailyCost.Equal(decimal.NewFromInt(11)))
	assert.Len(t, restored.Alerts(0), 1)
	assert.Equal(t, int64(40), restored.Usage(1)[0].Tokens)
}

func TestGovernor_RestoreFromPreviousDay(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSnapshotStore(ctrl)

	yesterday := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	store.EXPECT().Load(gomock.Any()).Return(&governing.Snapshot{
		State:    governing.StateClosed,
		Counters: governing.Counters{DailyTokens: 900, DailyCost: decimal.NewFromInt(9), LastResetAt: yesterday},
		Config:   testConfig(),
	}, nil)

	g, _, _ := newGovernor(t, testConfig(), governing.WithStore(store))
	require.NoError(t, g.Restore(ctx))

	counters := g.Counters()
	assert.Zero(t, counters.DailyTokens)
	assert.True(t, counters.DailyCost.IsZero())
}

func TestGovernor_RestoreNothingSaved(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSnapshotStore(ctrl)
	store.EXPECT().Load(gomock.Any()).Return(nil, nil)

	g, _, _ := newGovernor(t, testConfig(), governing.WithStore(store))
	require.NoError(t, g.Restore(context.Background()))
	assert.Equal(t, governing.StateClosed, g.Status().State)
}

func TestGovernor_RestoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSnapshotStore(ctrl)
	store.EXPECT().Load(gomock.Any()).Return(nil, errors.New("connection refused"))

	g, _, _ := newGovernor(t, testConfig(), governing.WithStore(store))
	assert.Error(t, g.Restore(context.Background()))
}

func TestGovernor_PersistWithoutStore(t *testing.T) {
	g, _, _ := newGovernor(t, testConfig())
	assert.NoError(t, g.Persist(context.Background()))
	assert.NoError(t, g.Restore(context.Background()))
}

func TestGovernor_RunPersistenceSavesOnShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSnapshotStore(ctrl)
	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).MinTimes(1)

	g, _, _ := newGovernor(t, testConfig(), governing.WithStore(store))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		g.RunPersistence(ctx, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunPersistence did not return after cancel")
	}
}

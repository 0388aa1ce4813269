package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamwise/streamwise/internal/testutil"
)

func noop(context.Context) error { return nil }

func TestRegisterTask_DuplicateID(t *testing.T) {
	s, err := New(testutil.NopLogger())
	require.NoError(t, err)

	require.NoError(t, s.RegisterTask(TaskConfig{ID: "warm", Name: "Warm", Cron: "0 3 * * *", Func: noop}))
	err = s.RegisterTask(TaskConfig{ID: "warm", Name: "Warm Again", Cron: "0 4 * * *", Func: noop})
	assert.Error(t, err)
}

func TestRegisterTask_InvalidCron(t *testing.T) {
	s, err := New(testutil.NopLogger())
	require.NoError(t, err)

	err = s.RegisterTask(TaskConfig{ID: "bad", Name: "Bad", Cron: "not a cron", Func: noop})
	assert.Error(t, err)
}

func TestStart_RunsStartupTasks(t *testing.T) {
	s, err := New(testutil.NopLogger())
	require.NoError(t, err)

	done := make(chan struct{})
	require.NoError(t, s.RegisterTask(TaskConfig{
		ID:         "startup",
		Name:       "Startup",
		Cron:       "0 3 * * *",
		RunOnStart: true,
		Func: func(context.Context) error {
			close(done)
			return nil
		},
	}))

	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop() })

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("startup task never ran")
	}
}

func TestRun_SkipsOverlappingInvocation(t *testing.T) {
	s, err := New(testutil.NopLogger())
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32

	require.NoError(t, s.RegisterTask(TaskConfig{
		ID:   "slow",
		Name: "Slow",
		Cron: "0 3 * * *",
		Func: func(context.Context) error {
			atomic.AddInt32(&calls, 1)
			close(started)
			<-release
			return nil
		},
	}))

	go s.run("slow")
	<-started

	// second invocation while the first is in flight is a no-op
	s.run("slow")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	close(release)
}

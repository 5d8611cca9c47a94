package scheduler

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshotter struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSnapshotter) SnapshotNAV(_ context.Context) error {
	f.calls.Add(1)
	return f.err
}

func TestScheduleNAVSnapshot(t *testing.T) {
	t.Run("registers a valid schedule", func(t *testing.T) {
		s := New(zerolog.Nop())

		err := s.ScheduleNAVSnapshot("0 18 * * 1-5", &fakeSnapshotter{})

		require.NoError(t, err)
		assert.Equal(t, 1, s.Entries())
	})

	t.Run("accepts descriptors", func(t *testing.T) {
		s := New(zerolog.Nop())

		require.NoError(t, s.ScheduleNAVSnapshot("@daily", &fakeSnapshotter{}))
	})

	t.Run("rejects an invalid schedule", func(t *testing.T) {
		s := New(zerolog.Nop())

		err := s.ScheduleNAVSnapshot("every tuesday", &fakeSnapshotter{})

		assert.Error(t, err)
		assert.Equal(t, 0, s.Entries())
	})
}

func TestRunSnapshot(t *testing.T) {
	t.Run("calls the snapshotter", func(t *testing.T) {
		var buf bytes.Buffer
		s := New(zerolog.New(&buf))
		fake := &fakeSnapshotter{}

		s.runSnapshot(fake)

		assert.Equal(t, int32(1), fake.calls.Load())
		assert.Contains(t, buf.String(), "nav snapshot completed")
	})

	t.Run("logs failures", func(t *testing.T) {
		var buf bytes.Buffer
		s := New(zerolog.New(&buf))
		fake := &fakeSnapshotter{err: errors.New("database is locked")}

		s.runSnapshot(fake)

		assert.Equal(t, int32(1), fake.calls.Load())
		assert.Contains(t, buf.String(), "nav snapshot failed")
		assert.Contains(t, buf.String(), "database is locked")
	})
}

func TestStartStop(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.ScheduleNAVSnapshot("@hourly", &fakeSnapshotter{}))

	s.Start()
	s.Stop(context.Background())
}

package predstore

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pdwriter/internal/prediction"
	"github.com/banshee-data/pdwriter/internal/testutil"
	"github.com/banshee-data/pdwriter/internal/timeutil"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	testutil.QuietLogs(t)

	s, err := Open(filepath.Join(t.TempDir(), "predictions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleObjects(t *testing.T) *prediction.Objects {
	t.Helper()
	objs := prediction.ExampleObjects()
	frame := testutil.SyntheticObjects(t, "ctx-store", 7, 1).Objects
	overlap := true
	frame[0].OverlapWithNLZ = &overlap
	frame[1].CameraName = prediction.CameraSideLeft
	objs.Append(frame...)
	return objs
}

func TestOpen_AppliesMigrations(t *testing.T) {
	s := setupStore(t)

	version, dirty, err := s.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Re-running is a no-op.
	require.NoError(t, s.MigrateUp())
}

func TestMigrateDown(t *testing.T) {
	s := setupStore(t)
	require.NoError(t, s.MigrateDown())

	version, _, err := s.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)

	_, err = s.ListRuns(context.Background())
	assert.Error(t, err, "tables should be dropped")
}

func TestOpen_Memory(t *testing.T) {
	testutil.QuietLogs(t)

	s, err := Open(MemoryPath)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	run, err := s.CreateRun(ctx, prediction.TaskDetection3D, "")
	require.NoError(t, err)
	n, err := s.InsertObjects(ctx, run.RunID, prediction.ExampleObjects())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_RoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, prediction.TaskTracking3D, "nightly")
	require.NoError(t, err)
	assert.NotEmpty(t, run.RunID)
	assert.NotZero(t, run.CreatedAt)

	want := sampleObjects(t)
	n, err := s.InsertObjects(ctx, run.RunID, want)
	require.NoError(t, err)
	assert.Equal(t, want.Len(), n)

	got, err := s.LoadObjects(ctx, run.RunID)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stored objects mismatch (-want +got):\n%s", diff)
	}

	testutil.AssertSameBytes(t, want, got)
}

func TestStore_RoundTripNaN(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	nan := math.NaN()
	o := prediction.ExampleObject()
	o.Score = float32(nan)
	o.Box.CenterX = nan
	o.Box.Heading = nan
	o.Metadata = &prediction.Metadata{SpeedX: nan, SpeedY: 1.5}
	want := &prediction.Objects{Objects: []prediction.Object{o}}

	run, err := s.CreateRunWithObjects(ctx, prediction.TaskDetection3D, "nan", want)
	require.NoError(t, err)
	assert.Equal(t, 1, run.ObjectCount)

	got, err := s.LoadObjects(ctx, run.RunID)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("NaN fields should survive storage (-want +got):\n%s", diff)
	}
	require.Equal(t, 1, got.Len())
	assert.True(t, math.IsNaN(float64(got.Objects[0].Score)))
	assert.Equal(t, 1.5, got.Objects[0].Metadata.SpeedY)
}

func TestStore_CreateRunWithObjects(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	want := sampleObjects(t)
	run, err := s.CreateRunWithObjects(ctx, prediction.TaskTracking3D, "batch", want)
	require.NoError(t, err)

	got, err := s.GetRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, want.Len(), got.ObjectCount)
	assert.Equal(t, "batch", got.Notes)
}

func TestStore_CreateRunWithObjectsRollsBack(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.DB().Exec(`CREATE TRIGGER reject_objects BEFORE INSERT ON prediction_objects
		BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	require.NoError(t, err)

	_, err = s.CreateRunWithObjects(ctx, prediction.TaskDetection3D, "doomed", sampleObjects(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs, "failed insert must not leave a run behind")
}

func TestStore_InsertAppendsInOrder(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, prediction.TaskDetection3D, "")
	require.NoError(t, err)

	first := &prediction.Objects{}
	second := &prediction.Objects{}
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		o := prediction.ExampleObject()
		o.ObjectID = id
		if i < 2 {
			first.Append(o)
		} else {
			second.Append(o)
		}
	}
	_, err = s.InsertObjects(ctx, run.RunID, first)
	require.NoError(t, err)
	_, err = s.InsertObjects(ctx, run.RunID, second)
	require.NoError(t, err)

	got, err := s.LoadObjects(ctx, run.RunID)
	require.NoError(t, err)
	var ids []string
	for _, o := range got.Objects {
		ids = append(ids, o.ObjectID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids)
}

func TestStore_EmptyRun(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, prediction.TaskDetection3D, "")
	require.NoError(t, err)

	n, err := s.InsertObjects(ctx, run.RunID, &prediction.Objects{})
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := s.LoadObjects(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestStore_ListAndDelete(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	a, err := s.CreateRun(ctx, prediction.TaskDetection3D, "a")
	require.NoError(t, err)
	b, err := s.CreateRun(ctx, prediction.TaskTracking2D, "b")
	require.NoError(t, err)
	_, err = s.InsertObjects(ctx, b.RunID, sampleObjects(t))
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	counts := map[string]int{}
	for _, r := range runs {
		counts[r.RunID] = r.ObjectCount
	}
	assert.Equal(t, 0, counts[a.RunID])
	assert.Equal(t, sampleObjects(t).Len(), counts[b.RunID])

	got, err := s.GetRun(ctx, b.RunID)
	require.NoError(t, err)
	assert.Equal(t, prediction.TaskTracking2D, got.Task)
	assert.Equal(t, "b", got.Notes)

	require.NoError(t, s.DeleteRun(ctx, b.RunID))
	_, err = s.LoadObjects(ctx, b.RunID)
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, s.DeleteRun(ctx, b.RunID), ErrRunNotFound)

	var orphaned int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM prediction_objects`).Scan(&orphaned))
	assert.Zero(t, orphaned)
}

func TestStore_ListRunsNewestFirst(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	clock := timeutil.NewMockClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	s.SetClock(clock)

	older, err := s.CreateRun(ctx, prediction.TaskDetection3D, "older")
	require.NoError(t, err)
	clock.Advance(time.Minute)
	newer, err := s.CreateRun(ctx, prediction.TaskDetection3D, "newer")
	require.NoError(t, err)
	assert.Equal(t, time.Minute.Nanoseconds(), newer.CreatedAt-older.CreatedAt)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.RunID, runs[0].RunID)
	assert.Equal(t, older.RunID, runs[1].RunID)
}

func TestStore_UnknownRun(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.InsertObjects(ctx, "missing", prediction.ExampleObjects())
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestIsSQLiteBusy(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "database is locked", err: errors.New("database is locked (5) (SQLITE_BUSY)"), expected: true},
		{name: "SQLITE_BUSY", err: errors.New("SQLITE_BUSY"), expected: true},
		{name: "other error", err: errors.New("some other error"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSQLiteBusy(tt.err); got != tt.expected {
				t.Errorf("isSQLiteBusy(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestRetryOnBusy(t *testing.T) {
	busy := errors.New("database is locked (5) (SQLITE_BUSY)")
	newClock := func() *timeutil.MockClock { return timeutil.NewMockClock(time.Unix(0, 0)) }

	t.Run("success after retry", func(t *testing.T) {
		callCount := 0
		err := retryOnBusy(newClock(), func() error {
			callCount++
			if callCount < 3 {
				return busy
			}
			return nil
		})
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if callCount != 3 {
			t.Errorf("expected 3 calls, got %d", callCount)
		}
	})

	t.Run("non-busy error fails immediately", func(t *testing.T) {
		callCount := 0
		testErr := errors.New("some other error")
		err := retryOnBusy(newClock(), func() error {
			callCount++
			return testErr
		})
		if err != testErr {
			t.Errorf("expected error %v, got %v", testErr, err)
		}
		if callCount != 1 {
			t.Errorf("expected 1 call, got %d", callCount)
		}
	})

	t.Run("exponential backoff timing", func(t *testing.T) {
		clock := newClock()
		callCount := 0
		err := retryOnBusy(clock, func() error {
			callCount++
			return busy
		})
		if err != busy {
			t.Errorf("expected busy error, got %v", err)
		}
		want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond, 80 * time.Millisecond}
		assert.Equal(t, want, clock.Sleeps())
	})

	t.Run("max retries exceeded", func(t *testing.T) {
		callCount := 0
		err := retryOnBusy(newClock(), func() error {
			callCount++
			return busy
		})
		if err == nil {
			t.Error("expected error, got nil")
		}
		if callCount != busyMaxAttempts {
			t.Errorf("expected %d calls, got %d", busyMaxAttempts, callCount)
		}
	})
}

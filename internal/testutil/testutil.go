// Package testutil provides shared test fixtures for packages that consume
// prediction collections.
package testutil

import (
	"testing"

	"github.com/banshee-data/pdwriter/internal/monitoring"
	"github.com/banshee-data/pdwriter/internal/prediction"
)

// QuietLogs captures diagnostic logging for the rest of the test and
// returns the recorder.
func QuietLogs(t *testing.T) *monitoring.Recorder {
	t.Helper()
	rec, restore := monitoring.Capture()
	t.Cleanup(restore)
	return rec
}

// SyntheticObjects returns frames frames of synthetic tracks for one context.
func SyntheticObjects(t *testing.T, contextName string, seed int64, frames int) *prediction.Objects {
	t.Helper()
	g := prediction.NewSyntheticGenerator(contextName, 1_000_000, seed)
	objs := &prediction.Objects{}
	for i := 0; i < frames; i++ {
		frame, err := g.NextFrame()
		if err != nil {
			t.Fatalf("synthetic frame %d: %v", i, err)
		}
		objs.Append(frame...)
	}
	return objs
}

// AssertSameBytes fails the test unless want and got serialize to the same
// canonical bytes.
func AssertSameBytes(t *testing.T, want, got *prediction.Objects) {
	t.Helper()
	wb, err := prediction.Marshal(want)
	if err != nil {
		t.Fatalf("marshal want: %v", err)
	}
	gb, err := prediction.Marshal(got)
	if err != nil {
		t.Fatalf("marshal got: %v", err)
	}
	if string(wb) != string(gb) {
		t.Errorf("serialized bytes differ: want %d bytes, got %d bytes", len(wb), len(gb))
	}
}

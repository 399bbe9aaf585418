package testutil

import (
	"testing"

	"github.com/banshee-data/pdwriter/internal/monitoring"
	"github.com/banshee-data/pdwriter/internal/prediction"
)

func TestQuietLogs(t *testing.T) {
	rec := QuietLogs(t)
	monitoring.Logf("[Test] %d", 1)
	if lines := rec.Lines(); len(lines) != 1 || lines[0] != "[Test] 1" {
		t.Errorf("Lines() = %v", lines)
	}
}

func TestSyntheticObjects(t *testing.T) {
	objs := SyntheticObjects(t, "ctx", 1, 2)
	if objs.Len() != 10 {
		t.Fatalf("Len() = %d, want 10 (5 tracks x 2 frames)", objs.Len())
	}
	if objs.Objects[0].ContextName != "ctx" {
		t.Errorf("ContextName = %q", objs.Objects[0].ContextName)
	}
	AssertSameBytes(t, objs, SyntheticObjects(t, "ctx", 1, 2))
}

func TestAssertSameBytes_Empty(t *testing.T) {
	AssertSameBytes(t, &prediction.Objects{}, &prediction.Objects{})
}

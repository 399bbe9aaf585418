package prediction

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationMode selects what a Builder does with caller-obligation violations.
type ValidationMode string

const (
	// ValidateOff serializes records as given.
	ValidateOff ValidationMode = "off"
	// ValidateWarn logs violations and serializes records as given.
	ValidateWarn ValidationMode = "warn"
	// ValidateStrict rejects a collection with any violation.
	ValidateStrict ValidationMode = "strict"
)

// ParseValidationMode parses "off", "warn" or "strict".
func ParseValidationMode(s string) (ValidationMode, error) {
	switch m := ValidationMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ValidateOff, ValidateWarn, ValidateStrict:
		return m, nil
	}
	return "", fmt.Errorf("unknown validation mode %q (want off, warn or strict)", s)
}

// Task is the evaluation task a collection is produced for.
type Task string

const (
	TaskDetection3D Task = "detection_3d"
	TaskDetection2D Task = "detection_2d"
	TaskTracking3D  Task = "tracking_3d"
	TaskTracking2D  Task = "tracking_2d"
)

// ParseTask parses a task name.
func ParseTask(s string) (Task, error) {
	switch t := Task(strings.ToLower(strings.TrimSpace(s))); t {
	case TaskDetection3D, TaskDetection2D, TaskTracking3D, TaskTracking2D:
		return t, nil
	}
	return "", fmt.Errorf("unknown task %q", s)
}

// Is2D reports whether records must name a camera.
func (t Task) Is2D() bool { return t == TaskDetection2D || t == TaskTracking2D }

// IsTracking reports whether object IDs must be stable and unique.
func (t Task) IsTracking() bool { return t == TaskTracking3D || t == TaskTracking2D }

// Validation causes. Issues wrap exactly one of these.
var (
	ErrScoreOutOfRange   = errors.New("score outside [0, 1]")
	ErrUnknownObjectType = errors.New("object type unset or unknown")
	ErrNegativeTimestamp = errors.New("frame timestamp negative")
	ErrUnsetTimestamp    = errors.New("frame timestamp unset")
	ErrEmptyContextName  = errors.New("context name empty")
	ErrMissingCamera     = errors.New("camera name required for 2D task")
	ErrEmptyObjectID     = errors.New("object id required for tracking task")
	ErrDuplicateObjectID = errors.New("object id repeated within frame")
	ErrFrameOverLimit    = errors.New("frame exceeds soft object limit")
)

// Issue is a single validation finding. Index is the record index, or -1 for
// frame-level findings.
type Issue struct {
	Index  int
	Field  string
	Err    error
	Detail string
}

func (i Issue) String() string {
	var b strings.Builder
	if i.Index >= 0 {
		fmt.Fprintf(&b, "objects[%d]", i.Index)
	} else {
		b.WriteString("frame")
	}
	if i.Field != "" {
		b.WriteString(".")
		b.WriteString(i.Field)
	}
	b.WriteString(": ")
	b.WriteString(i.Err.Error())
	if i.Detail != "" {
		b.WriteString(" (")
		b.WriteString(i.Detail)
		b.WriteString(")")
	}
	return b.String()
}

// ValidationError is returned when a collection has one or more errors.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return "invalid predictions: " + e.Issues[0].String()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.String())
	}
	return fmt.Sprintf("invalid predictions: %d issues: %s", len(e.Issues), strings.Join(parts, "; "))
}

// Unwrap exposes the cause of every issue to errors.Is.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Issues))
	for _, is := range e.Issues {
		errs = append(errs, is.Err)
	}
	return errs
}

// ValidateOptions configures Validate.
type ValidateOptions struct {
	Task Task
	// MaxObjectsPerFrame is the soft limit; 0 means DefaultMaxObjectsPerFrame,
	// negative disables the check.
	MaxObjectsPerFrame int
}

// Report holds validation findings. Warnings never fail a collection.
type Report struct {
	Errors   []Issue
	Warnings []Issue
}

// Err returns a *ValidationError when the report has errors.
func (r *Report) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return &ValidationError{Issues: r.Errors}
}

// Validate checks the obligations the wire schema cannot enforce.
func Validate(objs *Objects, opts ValidateOptions) *Report {
	r := &Report{}
	if objs.Len() == 0 {
		return r
	}
	task := opts.Task
	if task == "" {
		task = TaskDetection3D
	}

	for i := range objs.Objects {
		o := &objs.Objects[i]
		if !(o.Score >= 0 && o.Score <= 1) {
			r.Errors = append(r.Errors, Issue{Index: i, Field: "score", Err: ErrScoreOutOfRange, Detail: fmt.Sprintf("%g", o.Score)})
		}
		if !o.ObjectType.Valid() {
			r.Errors = append(r.Errors, Issue{Index: i, Field: "object.type", Err: ErrUnknownObjectType, Detail: o.ObjectType.String()})
		}
		if o.ContextName == "" {
			r.Errors = append(r.Errors, Issue{Index: i, Field: "context_name", Err: ErrEmptyContextName})
		}
		switch {
		case o.FrameTimestampMicros == InvalidTimestamp:
			r.Warnings = append(r.Warnings, Issue{Index: i, Field: "frame_timestamp_micros", Err: ErrUnsetTimestamp})
		case o.FrameTimestampMicros < 0:
			r.Errors = append(r.Errors, Issue{Index: i, Field: "frame_timestamp_micros", Err: ErrNegativeTimestamp, Detail: fmt.Sprintf("%d", o.FrameTimestampMicros)})
		}
		if task.Is2D() && !o.CameraName.Valid() {
			r.Errors = append(r.Errors, Issue{Index: i, Field: "camera_name", Err: ErrMissingCamera, Detail: o.CameraName.String()})
		}
		if task.IsTracking() && o.ObjectID == "" {
			r.Errors = append(r.Errors, Issue{Index: i, Field: "object.id", Err: ErrEmptyObjectID})
		}
	}

	frames := objs.ByFrame()
	keys := make([]FrameKey, 0, len(frames))
	for k := range frames {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].ContextName != keys[b].ContextName {
			return keys[a].ContextName < keys[b].ContextName
		}
		return keys[a].FrameTimestampMicros < keys[b].FrameTimestampMicros
	})

	limit := opts.MaxObjectsPerFrame
	if limit == 0 {
		limit = DefaultMaxObjectsPerFrame
	}
	for _, k := range keys {
		idx := frames[k]
		if limit > 0 && len(idx) > limit {
			r.Warnings = append(r.Warnings, Issue{
				Index:  -1,
				Err:    ErrFrameOverLimit,
				Detail: fmt.Sprintf("%s@%d has %d objects, limit %d", k.ContextName, k.FrameTimestampMicros, len(idx), limit),
			})
		}
		if !task.IsTracking() {
			continue
		}
		seen := make(map[string]int, len(idx))
		for _, i := range idx {
			id := objs.Objects[i].ObjectID
			if id == "" {
				continue
			}
			if first, dup := seen[id]; dup {
				r.Errors = append(r.Errors, Issue{
					Index:  i,
					Field:  "object.id",
					Err:    ErrDuplicateObjectID,
					Detail: fmt.Sprintf("%q first used by objects[%d]", id, first),
				})
				continue
			}
			seen[id] = i
		}
	}
	return r
}

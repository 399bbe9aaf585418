package prediction

import (
	"github.com/banshee-data/pdwriter/internal/monitoring"
)

// Builder assembles a prediction collection and applies the configured
// validation policy when it is built.
type Builder struct {
	task        Task
	mode        ValidationMode
	maxPerFrame int

	objs   Objects
	report *Report
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithTask sets the evaluation task the collection targets.
func WithTask(t Task) BuilderOption {
	return func(b *Builder) { b.task = t }
}

// WithValidation sets the validation mode.
func WithValidation(m ValidationMode) BuilderOption {
	return func(b *Builder) { b.mode = m }
}

// WithMaxObjectsPerFrame sets the soft per-frame limit used for warnings.
func WithMaxObjectsPerFrame(n int) BuilderOption {
	return func(b *Builder) { b.maxPerFrame = n }
}

// NewBuilder returns a Builder for 3D detection that logs violations
// without rejecting them.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		task: TaskDetection3D,
		mode: ValidateWarn,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add appends records in order.
func (b *Builder) Add(objs ...Object) *Builder {
	b.objs.Append(objs...)
	return b
}

// Len returns the number of records added so far.
func (b *Builder) Len() int {
	return b.objs.Len()
}

// Build returns a snapshot of the collection. In strict mode a collection
// with validation errors is rejected with a *ValidationError.
func (b *Builder) Build() (*Objects, error) {
	out := &Objects{Objects: make([]Object, len(b.objs.Objects))}
	copy(out.Objects, b.objs.Objects)

	b.report = nil
	if b.mode == ValidateOff {
		return out, nil
	}

	b.report = Validate(out, ValidateOptions{Task: b.task, MaxObjectsPerFrame: b.maxPerFrame})
	if b.mode == ValidateStrict {
		if err := b.report.Err(); err != nil {
			return nil, err
		}
	}
	for _, is := range b.report.Errors {
		monitoring.Logf("[Predictions] invalid %s", is)
	}
	for _, is := range b.report.Warnings {
		monitoring.Logf("[Predictions] warning %s", is)
	}
	return out, nil
}

// Report returns the findings of the last Build, or nil when validation was off.
func (b *Builder) Report() *Report {
	return b.report
}

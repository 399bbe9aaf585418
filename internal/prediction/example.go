package prediction

// Placeholder values for the example collection. A real producer fills these
// from its detection or tracking output.
const (
	ExampleContextName = "context_name for the prediction. See Frame::context::name in  dataset.proto."
	ExampleObjectID    = "unique object tracking ID"
	ExampleScore       = float32(0.5)

	// DefaultOutputPath is where the example file is written when no path is given.
	DefaultOutputPath = "/tmp/your_preds.bin"
)

// ExampleObject returns the placeholder prediction: a zero box for a
// pedestrian seen by the front camera, score 0.5, timestamp unset.
func ExampleObject() Object {
	return Object{
		ContextName:          ExampleContextName,
		FrameTimestampMicros: InvalidTimestamp,
		CameraName:           CameraFront,
		Box:                  Box{},
		Score:                ExampleScore,
		ObjectID:             ExampleObjectID,
		ObjectType:           TypePedestrian,
	}
}

// ExampleObjects returns a collection holding ExampleObject.
func ExampleObjects() *Objects {
	objs := &Objects{}
	objs.Append(ExampleObject())
	return objs
}

package predstore

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/banshee-data/pdwriter/internal/prediction"
)

const objectColumns = `context_name, frame_timestamp_micros, camera_name,
	center_x, center_y, center_z, length, width, height, heading,
	object_id, object_type, score,
	has_metadata, speed_x, speed_y, speed_z, accel_x, accel_y, accel_z,
	overlap_with_nlz`

// InsertObjects appends objs to a run in one transaction. Stored order
// follows append order, after any objects already in the run. Returns the
// number of objects written.
func (s *Store) InsertObjects(ctx context.Context, runID string, objs *prediction.Objects) (int, error) {
	if objs.Len() == 0 {
		return 0, nil
	}

	err := s.retry(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM prediction_runs WHERE run_id = ?`, runID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}

		if err := insertObjectsTx(ctx, tx, runID, objs); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert objects into run %s: %w", runID, err)
	}
	return objs.Len(), nil
}

// insertObjectsTx appends objs after the run's current highest seq.
func insertObjectsTx(ctx context.Context, tx *sql.Tx, runID string, objs *prediction.Objects) error {
	var next int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq) + 1, 0) FROM prediction_objects WHERE run_id = ?`, runID).Scan(&next); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO prediction_objects (run_id, seq, `+objectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range objs.Objects {
		if _, err := stmt.ExecContext(ctx, objectArgs(runID, next+int64(i), &objs.Objects[i])...); err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
	}
	return nil
}

// nullFloat binds NaN as NULL explicitly rather than relying on the driver.
func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
}

// floatOrNaN reverses nullFloat.
func floatOrNaN(n sql.NullFloat64) float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Float64
}

func objectArgs(runID string, seq int64, o *prediction.Object) []interface{} {
	var (
		hasMetadata            bool
		speedX, speedY, speedZ sql.NullFloat64
		accelX, accelY, accelZ sql.NullFloat64
	)
	if m := o.Metadata; m != nil {
		hasMetadata = true
		speedX, speedY, speedZ = nullFloat(m.SpeedX), nullFloat(m.SpeedY), nullFloat(m.SpeedZ)
		accelX, accelY, accelZ = nullFloat(m.AccelX), nullFloat(m.AccelY), nullFloat(m.AccelZ)
	}
	var overlap interface{}
	if o.OverlapWithNLZ != nil {
		overlap = *o.OverlapWithNLZ
	}
	b := o.Box
	return []interface{}{
		runID, seq,
		o.ContextName, o.FrameTimestampMicros, int32(o.CameraName),
		nullFloat(b.CenterX), nullFloat(b.CenterY), nullFloat(b.CenterZ),
		nullFloat(b.Length), nullFloat(b.Width), nullFloat(b.Height), nullFloat(b.Heading),
		o.ObjectID, int32(o.ObjectType), nullFloat(float64(o.Score)),
		hasMetadata, speedX, speedY, speedZ, accelX, accelY, accelZ,
		overlap,
	}
}

// LoadObjects returns a run's objects in stored order.
func (s *Store) LoadObjects(ctx context.Context, runID string) (*prediction.Objects, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+objectColumns+` FROM prediction_objects WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query objects for run %s: %w", runID, err)
	}
	defer rows.Close()

	out := &prediction.Objects{}
	for rows.Next() {
		o, err := scanObject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan object: %w", err)
		}
		out.Append(o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanObject(r rowScanner) (prediction.Object, error) {
	var (
		o                                 prediction.Object
		camera, typ                       int32
		cx, cy, cz, length, width, height sql.NullFloat64
		heading, score                    sql.NullFloat64
		hasMetadata                       bool
		speedX, speedY, speedZ            sql.NullFloat64
		accelX, accelY, accelZ            sql.NullFloat64
		overlap                           sql.NullBool
	)
	err := r.Scan(
		&o.ContextName, &o.FrameTimestampMicros, &camera,
		&cx, &cy, &cz, &length, &width, &height, &heading,
		&o.ObjectID, &typ, &score,
		&hasMetadata, &speedX, &speedY, &speedZ, &accelX, &accelY, &accelZ,
		&overlap,
	)
	if err != nil {
		return o, err
	}
	o.CameraName = prediction.CameraName(camera)
	o.ObjectType = prediction.ObjectType(typ)
	o.Score = float32(floatOrNaN(score))
	o.Box = prediction.Box{
		CenterX: floatOrNaN(cx), CenterY: floatOrNaN(cy), CenterZ: floatOrNaN(cz),
		Length: floatOrNaN(length), Width: floatOrNaN(width), Height: floatOrNaN(height),
		Heading: floatOrNaN(heading),
	}
	if hasMetadata {
		o.Metadata = &prediction.Metadata{
			SpeedX: floatOrNaN(speedX), SpeedY: floatOrNaN(speedY), SpeedZ: floatOrNaN(speedZ),
			AccelX: floatOrNaN(accelX), AccelY: floatOrNaN(accelY), AccelZ: floatOrNaN(accelZ),
		}
	}
	if overlap.Valid {
		v := overlap.Bool
		o.OverlapWithNLZ = &v
	}
	return o, nil
}

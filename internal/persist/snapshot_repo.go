package persist

import (
	"context"
	"fmt"

	"github.com/ecsbridge/ecsbridge/internal/geom"
)

// SnapshotRow is one entity transform captured at a frame.
type SnapshotRow struct {
	EntityID  uint64
	Name      string
	Transform geom.Transform
}

type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// SaveSnapshot writes all rows of one frame in a single transaction.
func (r *SnapshotRepo) SaveSnapshot(ctx context.Context, frame uint64, rows []SnapshotRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, row := range rows {
		t := row.Transform
		if _, err := tx.Exec(ctx,
			`INSERT INTO transform_snapshots
			   (frame, entity_id, name, loc_x, loc_y, loc_z, rot_x, rot_y, rot_z, rot_w, scale_x, scale_y, scale_z)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			int64(frame), int64(row.EntityID), row.Name,
			t.Location.X, t.Location.Y, t.Location.Z,
			t.Rotation.X, t.Rotation.Y, t.Rotation.Z, t.Rotation.W,
			t.Scale.X, t.Scale.Y, t.Scale.Z,
		); err != nil {
			return fmt.Errorf("snapshot insert entity %d: %w", row.EntityID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("snapshot commit: %w", err)
	}
	return nil
}

// LatestSnapshot loads the most recent row of every entity.
func (r *SnapshotRepo) LatestSnapshot(ctx context.Context) ([]SnapshotRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT DISTINCT ON (entity_id)
		        entity_id, name, loc_x, loc_y, loc_z, rot_x, rot_y, rot_z, rot_w, scale_x, scale_y, scale_z
		   FROM transform_snapshots
		  ORDER BY entity_id, frame DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotRow
	for rows.Next() {
		var (
			row SnapshotRow
			id  int64
			t   geom.Transform
		)
		if err := rows.Scan(&id, &row.Name,
			&t.Location.X, &t.Location.Y, &t.Location.Z,
			&t.Rotation.X, &t.Rotation.Y, &t.Rotation.Z, &t.Rotation.W,
			&t.Scale.X, &t.Scale.Y, &t.Scale.Z,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		row.EntityID = uint64(id)
		row.Transform = t
		out = append(out, row)
	}
	return out, rows.Err()
}

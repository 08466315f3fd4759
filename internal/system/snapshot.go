package system

import (
	"context"
	"sort"
	"time"

	"github.com/ecsbridge/ecsbridge/internal/component"
	"github.com/ecsbridge/ecsbridge/internal/core/ecs"
	coresys "github.com/ecsbridge/ecsbridge/internal/core/system"
	"github.com/ecsbridge/ecsbridge/internal/geom"
	"github.com/ecsbridge/ecsbridge/internal/persist"
	"go.uber.org/zap"
)

// SnapshotWriter stores one frame worth of transforms.
type SnapshotWriter interface {
	SaveSnapshot(ctx context.Context, frame uint64, rows []persist.SnapshotRow) error
}

// SnapshotSystem periodically records the transform of every entity linked
// to a world object. PostPhysics, so it sees the frame's final transforms.
type SnapshotSystem struct {
	writer   SnapshotWriter
	log      *zap.Logger
	interval *coresys.IntervalSystem
	saved    int
}

func NewSnapshotSystem(writer SnapshotWriter, log *zap.Logger, interval time.Duration) *SnapshotSystem {
	s := &SnapshotSystem{writer: writer, log: log}
	s.interval = coresys.NewIntervalSystem(coresys.PhasePostPhysics, interval, func(_ time.Duration, store *ecs.Store) {
		s.save(store)
	})
	return s
}

func (s *SnapshotSystem) Phase() coresys.Phase { return coresys.PhasePostPhysics }

func (s *SnapshotSystem) Update(dt time.Duration, store *ecs.Store) {
	s.interval.Update(dt, store)
}

// SaveAll writes a snapshot immediately. Called on shutdown.
func (s *SnapshotSystem) SaveAll(store *ecs.Store) {
	s.save(store)
}

// Saved returns the number of snapshots written successfully.
func (s *SnapshotSystem) Saved() int { return s.saved }

func (s *SnapshotSystem) save(store *ecs.Store) {
	rows := Capture(store)
	if len(rows) == 0 {
		return
	}
	frame := currentFrame(store)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.writer.SaveSnapshot(ctx, frame, rows); err != nil {
		s.log.Error("save snapshot failed", zap.Uint64("frame", frame), zap.Error(err))
		return
	}
	s.saved++
	s.log.Debug("snapshot saved", zap.Uint64("frame", frame), zap.Int("entities", len(rows)))
}

// currentFrame reads the FrameClock singleton; 0 when the store has none.
func currentFrame(store *ecs.Store) uint64 {
	if c, ok := ecs.TryGet[component.FrameClock](store.Singleton()); ok {
		return c.Frame
	}
	return 0
}

// Capture collects the transforms of entities linked to a live world
// object, ordered by entity id.
func Capture(store *ecs.Store) []persist.SnapshotRow {
	var rows []persist.SnapshotRow
	ecs.Each2(store, func(e ecs.Entity, t *geom.Transform, ref *component.WorldObjectRef) {
		if !ref.Valid() {
			return
		}
		name := ref.Object.Name()
		if n, ok := ecs.TryGet[component.Name](e); ok {
			name = n.Value
		}
		rows = append(rows, persist.SnapshotRow{EntityID: uint64(e.ID()), Name: name, Transform: *t})
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].EntityID < rows[j].EntityID })
	return rows
}

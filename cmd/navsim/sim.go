package main

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/arnav/internal/agent"
	"github.com/Faultbox/arnav/internal/config"
	"github.com/Faultbox/arnav/internal/logger"
	"github.com/Faultbox/arnav/internal/navmesh"
	"github.com/Faultbox/arnav/internal/scene"
	"github.com/Faultbox/arnav/internal/scheduler"
	"github.com/Faultbox/arnav/internal/store"
	"github.com/Faultbox/arnav/pkg/math"
)

// eyeHeight is how far above the walked ground the device is held.
const eyeHeight = 1.2

// maxAgentSteps bounds the agent walk.
const maxAgentSteps = 100000

type options struct {
	from, to math.Vec3
	frames   int
	dt       time.Duration
}

type result struct {
	Session    string
	SnapshotID string
	Scans      int
	Area       float32
	Surfaces   int
	Path       navmesh.Path
	Final      math.Vec3
	Elapsed    time.Duration
}

// simClock advances only when told to.
type simClock struct {
	now time.Time
}

func (c *simClock) Now() time.Time { return c.now }

// run carries the device from opts.from to opts.to, scanning on the way,
// then plans a path between the two and walks an agent along it. The
// navmesh is resumed from and saved to snapshots when a store is given.
func run(cfg *config.Config, sc *scene.Scene, snapshots *store.SnapshotStore, opts options) (*result, error) {
	nav, err := navmesh.New(cfg.ModelSettings(), sc)
	if err != nil {
		return nil, err
	}
	query, err := cfg.AgentConfiguration()
	if err != nil {
		return nil, err
	}

	session := cfg.Store.Session
	if session == "" {
		session = store.NewSessionID()
	} else if snapshots != nil {
		rec, err := snapshots.Latest(session)
		switch {
		case errors.Is(err, store.ErrNotFound):
			logger.Info("no snapshot to resume", zap.String("session", session))
		case err != nil:
			return nil, fmt.Errorf("resuming session %s: %w", session, err)
		default:
			if err := nav.Restore(rec.Snapshot); err != nil {
				return nil, fmt.Errorf("restoring snapshot %s: %w", rec.SnapshotID, err)
			}
			logger.Info("resumed session",
				zap.String("session", session),
				zap.String("snapshot", rec.SnapshotID),
				zap.Int("nodes", rec.NodeCount),
			)
		}
	}

	// Device walk
	clock := &simClock{now: time.Unix(0, 0)}
	frame := 0
	pose := scheduler.PoseFunc(func() (math.Vec3, bool) {
		return devicePose(opts, frame), true
	})
	sched, err := scheduler.New(cfg.Scheduler(), nav, pose, clock)
	if err != nil {
		return nil, err
	}
	for frame = 0; frame < opts.frames; frame++ {
		sched.Update()
		clock.now = clock.now.Add(opts.dt)
	}
	if _, ok := nav.FindNearestFreePositionInRange(opts.to, cfg.Scan.Range); !ok {
		frame = opts.frames - 1
		sched.Force()
	}

	res := &result{
		Session:  session,
		Scans:    sched.Scans(),
		Area:     nav.Area(),
		Surfaces: len(nav.Surfaces()),
	}

	path, ok := nav.CalculatePath(opts.from, opts.to, query)
	if !ok {
		return nil, fmt.Errorf("no path from %v to %v with %s", opts.from, opts.to, query.Behaviour)
	}
	res.Path = path

	walker, err := agent.New(cfg.Motion(), path.Waypoints[0].Position)
	if err != nil {
		return nil, err
	}
	walker.SetPath(path)
	dt := float32(opts.dt.Seconds())
	for i := 0; i < maxAgentSteps && walker.State() != agent.Idle; i++ {
		walker.Update(dt)
		res.Elapsed += opts.dt
	}
	res.Final = walker.Position()

	if snapshots != nil {
		id, err := snapshots.Insert(session, nav.Snapshot())
		if err != nil {
			return nil, err
		}
		res.SnapshotID = id
	}

	logger.Info("simulation done",
		zap.Int("scans", res.Scans),
		zap.Float32("area", res.Area),
		zap.Int("surfaces", res.Surfaces),
		zap.Stringer("status", path.Status),
		zap.Int("jumps", path.Jumps()),
		zap.Duration("walked", res.Elapsed),
	)
	return res, nil
}

// devicePose is where the device is held at a frame of the walk. Frames past
// the last one stay at the destination.
func devicePose(opts options, frame int) math.Vec3 {
	t := min(float32(frame)/float32(max(opts.frames-1, 1)), 1)
	p := opts.from.Lerp(opts.to, t)
	p.Y += eyeHeight
	return p
}

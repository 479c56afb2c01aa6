package simulation

import (
	"fmt"
	"math"
	"time"

	"k8s.io/klog/v2"

	"particle-sim/pkg/physics"
	"particle-sim/pkg/quadtree"
)

// --- Simulator ---

// Simulator owns the particle buffer and advances it one tick per Step. It is not safe
// for concurrent use.
type Simulator struct {
	Name      string
	Gravity   float64
	Dt        float64
	Capacity  int
	Particles []physics.Particle

	metrics *Metrics
	tree    *quadtree.Tree
	stats   *quadtree.Stats
	bounds  Bounds
	ticks   uint64
}

// NewSimulator builds the initial particles of sc. metrics may be nil.
func NewSimulator(sc Scenario, metrics *Metrics) (*Simulator, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	particles, err := sc.Particles()
	if err != nil {
		return nil, err
	}
	if metrics != nil {
		metrics.Particles.Set(float64(len(particles)))
	}
	return &Simulator{
		Name:      sc.Name,
		Gravity:   sc.Gravity,
		Dt:        sc.Dt,
		Capacity:  sc.Capacity,
		Particles: particles,
		metrics:   metrics,
	}, nil
}

// Step builds a quadtree over the current bounding box, inserts every particle and
// advances them by Dt. The tree is kept for drawing until the next Step.
func (s *Simulator) Step() error {
	start := time.Now()

	bounds, err := BoundingBox(s.Particles)
	if err != nil {
		return err
	}
	tree, err := quadtree.New(bounds.Center(), bounds.Width(), bounds.Height(), s.Capacity)
	if err != nil {
		return err
	}
	for i := range s.Particles {
		if err := tree.Insert(s.Particles, i); err != nil {
			return fmt.Errorf("tick %d: %w", s.ticks, err)
		}
	}
	tree.Tick(s.Particles, s.Gravity, s.Dt)

	s.tree = tree
	s.stats = nil
	s.bounds = bounds
	s.ticks++

	elapsed := time.Since(start)
	klog.V(2).Infof("Tick %d: %d particles in %v", s.ticks, len(s.Particles), elapsed)
	if klog.V(4).Enabled() {
		klog.Infof("Tick %d tree: %+v", s.ticks, s.TreeStats())
	}
	if s.metrics != nil {
		s.metrics.Ticks.Inc()
		s.metrics.TickDuration.Observe(elapsed.Seconds())
		s.metrics.NonFinite.Set(float64(s.NonFinite()))
		s.metrics.observeTree(s.TreeStats())
	}
	return nil
}

// TreeStats returns the shape of the last tree. The walk runs at most once per Step.
func (s *Simulator) TreeStats() quadtree.Stats {
	if s.stats == nil && s.tree != nil {
		stats := s.tree.Stats()
		s.stats = &stats
	}
	if s.stats == nil {
		return quadtree.Stats{}
	}
	return *s.stats
}

// Tree returns the quadtree built by the last Step, or nil before the first one.
func (s *Simulator) Tree() *quadtree.Tree { return s.tree }

// Bounds returns the box the last tree was built over.
func (s *Simulator) Bounds() Bounds { return s.bounds }

func (s *Simulator) Ticks() uint64 { return s.ticks }

// Limits on the real-time tick rate.
const (
	MinTPS = 1
	MaxTPS = 240
)

// TicksPerSecond is the tick rate that plays one Dt per tick in real time, clamped to
// [MinTPS, MaxTPS].
func (s *Simulator) TicksPerSecond() int {
	if !(s.Dt > 0) {
		return MaxTPS
	}
	tps := math.Round(1 / s.Dt)
	return int(math.Max(MinTPS, math.Min(MaxTPS, tps)))
}

// NonFinite counts particles with a NaN or infinite position.
func (s *Simulator) NonFinite() int {
	n := 0
	for _, p := range s.Particles {
		if !finite(p.Pos.X) || !finite(p.Pos.Y) {
			n++
		}
	}
	return n
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

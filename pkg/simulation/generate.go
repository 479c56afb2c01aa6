package simulation

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/aquilax/go-perlin"
	"k8s.io/klog/v2"

	"particle-sim/pkg/physics"
)

// perlin noise parameters
const (
	noiseAlpha       = 2.0
	noiseBeta        = 2.0
	noiseOctaves     = 3
	noiseMaxAttempts = 200
)

// Generate places cfg.Count random particles. A zero seed picks one from the clock; the
// chosen seed is logged so the run can be repeated.
func Generate(cfg GeneratorConfig, g float64) ([]physics.Particle, error) {
	if cfg.Count == 0 {
		return nil, nil
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
		klog.Infof("Generating %d %s particles with seed %d", cfg.Count, cfg.Kind, seed)
	}
	rng := rand.New(rand.NewSource(seed))

	mass := cfg.Mass
	if mass == 0 {
		mass = 1
	}
	radius := cfg.ParticleRadius
	if radius == 0 {
		radius = 1
	}
	origin := physics.Vec2{X: cfg.Origin[0], Y: cfg.Origin[1]}

	particles := make([]physics.Particle, 0, cfg.Count)
	add := func(pos physics.Vec2) {
		particles = append(particles, physics.Particle{Pos: pos, Radius: radius, Mass: mass})
	}

	switch cfg.Kind {
	case GeneratorUniform:
		for i := 0; i < cfg.Count; i++ {
			add(physics.Vec2{
				X: origin.X + rng.Float64()*cfg.Width,
				Y: origin.Y + rng.Float64()*cfg.Height,
			})
		}

	case GeneratorDisk:
		for i := 0; i < cfg.Count; i++ {
			r := cfg.Radius * math.Sqrt(rng.Float64())
			theta := 2 * math.Pi * rng.Float64()
			add(origin.Add(physics.Vec2{X: r * math.Cos(theta), Y: r * math.Sin(theta)}))
		}
		if cfg.Orbit {
			orbitDisk(particles, 0, origin, g)
		}

	case GeneratorNoise:
		scale := cfg.NoiseScale
		if scale == 0 {
			scale = 0.01
		}
		noise := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed)
		for attempts := 0; len(particles) < cfg.Count; attempts++ {
			if attempts >= cfg.Count*noiseMaxAttempts {
				return nil, fmt.Errorf("noise generator placed %d of %d particles", len(particles), cfg.Count)
			}
			x := rng.Float64() * cfg.Width
			y := rng.Float64() * cfg.Height
			density := (noise.Noise2D(x*scale, y*scale) + 1) / 2
			if rng.Float64() < density {
				add(physics.Vec2{X: origin.X + x, Y: origin.Y + y})
			}
		}

	default:
		return nil, fmt.Errorf("%w: unknown generator %q", ErrInvalidScenario, cfg.Kind)
	}

	return particles, nil
}

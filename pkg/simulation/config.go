package simulation

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"sort"

	"sigs.k8s.io/yaml"

	"particle-sim/pkg/physics"
)

// Generator kinds.
const (
	GeneratorUniform = "uniform"
	GeneratorDisk    = "disk"
	GeneratorNoise   = "noise"
)

var ErrInvalidScenario = errors.New("invalid scenario")

// --- Scenario ---

// Scenario describes the physical constants and initial particles of a run. It is read
// from YAML or JSON.
type Scenario struct {
	Name       string          `json:"name"`
	Gravity    float64         `json:"gravity"`
	Dt         float64         `json:"dt"`
	Capacity   int             `json:"capacity"`
	Generator  GeneratorConfig `json:"generator"`
	Bodies     []BodyConfig    `json:"bodies,omitempty"`
	AutoOrbit  bool            `json:"autoOrbit,omitempty"`
	Color      string          `json:"color,omitempty"`
	Background string          `json:"background,omitempty"`
}

// BodyConfig is a single explicitly placed particle.
type BodyConfig struct {
	Mass   float64    `json:"mass"`
	Pos    [2]float64 `json:"pos"`
	Vel    [2]float64 `json:"vel,omitempty"`
	Radius float64    `json:"radius,omitempty"`
}

// GeneratorConfig describes randomly placed particles. Origin is the corner of the
// uniform and noise regions and the center of the disk.
type GeneratorConfig struct {
	Kind           string     `json:"kind"`
	Count          int        `json:"count"`
	Seed           int64      `json:"seed,omitempty"`
	Origin         [2]float64 `json:"origin,omitempty"`
	Width          float64    `json:"width,omitempty"`
	Height         float64    `json:"height,omitempty"`
	Radius         float64    `json:"radius,omitempty"`
	Orbit          bool       `json:"orbit,omitempty"`
	NoiseScale     float64    `json:"noiseScale,omitempty"`
	Mass           float64    `json:"mass,omitempty"`
	ParticleRadius float64    `json:"particleRadius,omitempty"`
}

// DefaultScenario returns the classic setup: a thousand unit particles at rest, spread
// over a 500x100 strip.
func DefaultScenario() Scenario {
	return Scenario{
		Name:     "strip",
		Gravity:  10,
		Dt:       1.0 / 30.0,
		Capacity: 100,
		Generator: GeneratorConfig{
			Kind:   GeneratorUniform,
			Count:  1000,
			Width:  500,
			Height: 100,
		},
		Color:      "#ffffff",
		Background: "#000000",
	}
}

// LoadScenario reads a scenario file. Fields missing from the file keep the values of
// DefaultScenario.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario: %v", err)
	}

	sc := DefaultScenario()
	if err := yaml.UnmarshalStrict(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario %s: %v", path, err)
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Validate checks the scenario for values the simulator cannot run with.
func (sc Scenario) Validate() error {
	switch {
	case sc.Dt <= 0 || math.IsInf(sc.Dt, 0) || math.IsNaN(sc.Dt):
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidScenario, sc.Dt)
	case sc.Capacity < 1:
		return fmt.Errorf("%w: capacity must be at least 1, got %d", ErrInvalidScenario, sc.Capacity)
	case sc.Generator.Count < 0:
		return fmt.Errorf("%w: generator count must not be negative", ErrInvalidScenario)
	case sc.Generator.Count+len(sc.Bodies) == 0:
		return fmt.Errorf("%w: no particles", ErrInvalidScenario)
	}
	switch sc.Generator.Kind {
	case GeneratorUniform, GeneratorDisk, GeneratorNoise:
	case "":
		if sc.Generator.Count > 0 {
			return fmt.Errorf("%w: generator kind is required", ErrInvalidScenario)
		}
	default:
		return fmt.Errorf("%w: unknown generator %q", ErrInvalidScenario, sc.Generator.Kind)
	}
	return nil
}

// Marshal renders the scenario as YAML.
func (sc Scenario) Marshal() ([]byte, error) {
	return yaml.Marshal(sc)
}

// Particles builds the initial particle buffer: explicit bodies first, then generated
// ones.
func (sc Scenario) Particles() ([]physics.Particle, error) {
	bodies := sc.Bodies
	if sc.AutoOrbit {
		bodies = append([]BodyConfig(nil), bodies...)
		SetOrbitalVelocities(bodies, sc.Gravity)
	}

	particles := make([]physics.Particle, 0, len(bodies)+sc.Generator.Count)
	for _, b := range bodies {
		radius := b.Radius
		if radius == 0 {
			radius = 1
		}
		particles = append(particles, physics.Particle{
			Pos:    physics.Vec2{X: b.Pos[0], Y: b.Pos[1]},
			Vel:    physics.Vec2{X: b.Vel[0], Y: b.Vel[1]},
			Radius: radius,
			Mass:   b.Mass,
		})
	}

	generated, err := Generate(sc.Generator, sc.Gravity)
	if err != nil {
		return nil, err
	}
	particles = append(particles, generated...)

	// explicit bodies add to the mass a generated disk orbits
	if len(bodies) > 0 && sc.Generator.Kind == GeneratorDisk && sc.Generator.Orbit {
		origin := physics.Vec2{X: sc.Generator.Origin[0], Y: sc.Generator.Origin[1]}
		orbitDisk(particles, len(bodies), origin, sc.Gravity)
	}
	return particles, nil
}

// Colors returns the particle and background colors.
func (sc Scenario) Colors() (fg, bg color.RGBA) {
	return parseColor(sc.Color, color.RGBA{255, 255, 255, 255}), parseColor(sc.Background, color.RGBA{0, 0, 0, 255})
}

// SetOrbitalVelocities gives every body at rest a circular orbit around the first body.
//
// Under the 1/r pull of this simulation the circular speed is sqrt(g*M), independent of
// the distance.
func SetOrbitalVelocities(bodies []BodyConfig, g float64) {
	if len(bodies) == 0 {
		return
	}
	central := bodies[0]
	v := math.Sqrt(g * central.Mass)
	for i := 1; i < len(bodies); i++ {
		if bodies[i].Vel[0] != 0 || bodies[i].Vel[1] != 0 {
			continue
		}
		dx := bodies[i].Pos[0] - central.Pos[0]
		dy := bodies[i].Pos[1] - central.Pos[1]
		r := math.Hypot(dx, dy)
		if r == 0 {
			continue
		}
		bodies[i].Vel[0] = central.Vel[0] - dy/r*v
		bodies[i].Vel[1] = central.Vel[1] + dx/r*v
	}
}

// orbitDisk sets tangential velocities around center for particles[fixed:], each
// orbiting the mass of all particles that lie closer to the center than itself.
func orbitDisk(particles []physics.Particle, fixed int, center physics.Vec2, g float64) {
	order := make([]int, len(particles))
	for i := range order {
		order[i] = i
	}
	dist := func(i int) float64 { return particles[i].Pos.Sub(center).LenSq() }
	sort.SliceStable(order, func(a, b int) bool { return dist(order[a]) < dist(order[b]) })

	var enclosed float64
	for _, i := range order {
		d := particles[i].Pos.Sub(center)
		r := math.Sqrt(d.LenSq())
		if i >= fixed && r > 0 && enclosed > 0 {
			v := math.Sqrt(g * enclosed)
			particles[i].Vel = physics.Vec2{X: -d.Y / r * v, Y: d.X / r * v}
		}
		enclosed += particles[i].Mass
	}
}

// parseColor reads #rrggbb, falling back to def.
func parseColor(hex string, def color.RGBA) color.RGBA {
	var r, g, b uint8
	if len(hex) == 7 && hex[0] == '#' {
		n, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b)
		if err == nil && n == 3 {
			return color.RGBA{r, g, b, 255}
		}
	}
	return def
}

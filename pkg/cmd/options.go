// Package cmd holds the command line plumbing shared by the particles commands.
package cmd

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"particle-sim/pkg/simulation"
)

const envPrefix = "PARTICLES"

// Flag names. They double as viper keys, so PARTICLES_NUM_PARTICLES sets
// --num-particles.
const (
	FlagScenario     = "scenario"
	FlagNumParticles = "num-particles"
	FlagCapacity     = "capacity"
	FlagGravity      = "gravity"
	FlagDt           = "dt"
	FlagSeed         = "seed"
	FlagMetricsAddr  = "metrics-addr"
	FlagTicks        = "ticks"
	FlagReportEvery  = "report-every"
)

// Options resolves settings from flags, environment and the scenario file.
type Options struct {
	V *viper.Viper
}

func NewOptions() *Options {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return &Options{V: v}
}

// Bind makes every flag in flags visible through V.
func (o *Options) Bind(flags *pflag.FlagSet) error {
	return o.V.BindPFlags(flags)
}

// AddScenarioFlags registers the flags that shape the simulation.
func AddScenarioFlags(flags *pflag.FlagSet) {
	flags.String(FlagScenario, "", "Scenario file (YAML or JSON). Defaults to the built-in strip of particles.")
	flags.Int(FlagNumParticles, 1000, "Number of generated particles.")
	flags.Int(FlagCapacity, 100, "Particles a quadtree leaf holds before it splits.")
	flags.Float64(FlagGravity, 10, "Gravitational constant.")
	flags.Float64(FlagDt, 1.0/30.0, "Simulated seconds per tick.")
	flags.Int64(FlagSeed, 0, "Seed for generated particles; 0 picks one from the clock.")
	flags.String(FlagMetricsAddr, "", "Serve Prometheus metrics on this address, e.g. :9090.")
}

// Scenario loads the scenario file, if any, and applies explicitly set flags and
// environment variables on top of it.
func (o *Options) Scenario() (simulation.Scenario, error) {
	sc := simulation.DefaultScenario()
	if path := o.V.GetString(FlagScenario); path != "" {
		loaded, err := simulation.LoadScenario(path)
		if err != nil {
			return simulation.Scenario{}, err
		}
		sc = loaded
	}

	if o.V.IsSet(FlagNumParticles) {
		sc.Generator.Count = o.V.GetInt(FlagNumParticles)
	}
	if o.V.IsSet(FlagCapacity) {
		sc.Capacity = o.V.GetInt(FlagCapacity)
	}
	if o.V.IsSet(FlagGravity) {
		sc.Gravity = o.V.GetFloat64(FlagGravity)
	}
	if o.V.IsSet(FlagDt) {
		sc.Dt = o.V.GetFloat64(FlagDt)
	}
	if o.V.IsSet(FlagSeed) {
		sc.Generator.Seed = o.V.GetInt64(FlagSeed)
	}
	return sc, sc.Validate()
}

// Simulator builds the simulator for the resolved scenario and starts the metrics
// listener when an address is set.
func (o *Options) Simulator() (*simulation.Simulator, simulation.Scenario, error) {
	sc, err := o.Scenario()
	if err != nil {
		return nil, sc, err
	}

	var metrics *simulation.Metrics
	if addr := o.V.GetString(FlagMetricsAddr); addr != "" {
		reg := prometheus.NewRegistry()
		metrics = simulation.NewMetrics(reg)
		simulation.Listen(addr, reg)
	}
	sim, err := simulation.NewSimulator(sc, metrics)
	return sim, sc, err
}

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"particle-sim/pkg/simulation"
)

// NewHeadlessCommand runs the simulation without a window.
func NewHeadlessCommand(o *Options, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "headless",
		Short: "Run the simulation without a window and report statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sim, _, err := o.Simulator()
			if err != nil {
				return err
			}
			return RunHeadless(sim, o.V.GetInt(FlagTicks), o.V.GetInt(FlagReportEvery), out)
		},
	}
	cmd.Flags().Int(FlagTicks, 300, "Number of ticks to run.")
	cmd.Flags().Int(FlagReportEvery, 30, "Log tree statistics every this many ticks; 0 disables.")
	return cmd
}

// RunHeadless steps sim ticks times and writes a summary to out.
func RunHeadless(sim *simulation.Simulator, ticks, reportEvery int, out io.Writer) error {
	if ticks < 0 {
		return fmt.Errorf("ticks must not be negative, got %d", ticks)
	}
	klog.Infof("Running %q headless: %d particles, %d ticks", sim.Name, len(sim.Particles), ticks)
	for i := 1; i <= ticks; i++ {
		if err := sim.Step(); err != nil {
			return err
		}
		if reportEvery > 0 && i%reportEvery == 0 {
			s := sim.Tree().Stats()
			klog.Infof("Tick %d: nodes=%d leaves=%d depth=%d fullest leaf=%d non-finite=%d",
				i, s.Nodes, s.Leaves, s.MaxDepth, s.MaxLeafLen, sim.NonFinite())
		}
	}

	b := sim.Bounds()
	fmt.Fprintf(out, "scenario:   %s\n", sim.Name)
	fmt.Fprintf(out, "ticks:      %d\n", sim.Ticks())
	fmt.Fprintf(out, "particles:  %d\n", len(sim.Particles))
	fmt.Fprintf(out, "non-finite: %d\n", sim.NonFinite())
	fmt.Fprintf(out, "bounds:     [%g, %g] x [%g, %g]\n", b.Min.X, b.Max.X, b.Min.Y, b.Max.Y)
	return nil
}

// NewScenarioCommand prints the resolved scenario.
func NewScenarioCommand(o *Options, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario",
		Short: "Print the effective scenario as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc, err := o.Scenario()
			if err != nil {
				return err
			}
			data, err := sc.Marshal()
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
}

package main

import (
	goflag "flag"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"particle-sim/pkg/cmd"
	"particle-sim/pkg/render"
)

const (
	flagWindowWidth  = "window-width"
	flagWindowHeight = "window-height"
	flagOverlay      = "overlay"
)

func main() {
	klog.InitFlags(goflag.CommandLine)
	pflag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	defer klog.Flush()

	if err := NewParticlesCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		klog.Flush()
		os.Exit(1)
	}
}

// NewParticlesCommand returns the root command, which runs the simulation in a window.
func NewParticlesCommand(out io.Writer) *cobra.Command {
	o := cmd.NewOptions()
	root := &cobra.Command{
		Use:          "particles",
		Short:        "Simulate gravity between particles on a quadtree",
		SilenceUsage: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return o.Bind(c.Flags())
		},
		RunE: func(c *cobra.Command, _ []string) error {
			sim, sc, err := o.Simulator()
			if err != nil {
				return err
			}
			fg, bg := sc.Colors()
			return render.Run(sim, render.Options{
				Width:      o.V.GetInt(flagWindowWidth),
				Height:     o.V.GetInt(flagWindowHeight),
				Overlay:    o.V.GetBool(flagOverlay),
				Foreground: fg,
				Background: bg,
			})
		},
	}

	cmd.AddScenarioFlags(root.PersistentFlags())
	root.Flags().Int(flagWindowWidth, 1600, "Window width in pixels.")
	root.Flags().Int(flagWindowHeight, 900, "Window height in pixels.")
	root.Flags().Bool(flagOverlay, false, "Draw quadtree leaves and node summaries.")

	root.AddCommand(cmd.NewHeadlessCommand(o, out))
	root.AddCommand(cmd.NewScenarioCommand(o, out))
	return root
}

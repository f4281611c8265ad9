// Command xeplcli is the reference host for the XEPL runtime: a cobra root
// command that boots a cortex.Cortex with the default keyword/operator/
// mutual table installed, then drives it from stdin through the §6
// prefix-dispatch REPL. Grounded on qubicDB-qubicdb/cmd/qubicdb-cli's
// split between a cobra root command and a standalone runREPL, adapted
// from an HTTP admin client onto a single in-process interpreter.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xepl-run/xepl/cortex"
	"github.com/xepl-run/xepl/defaults"
	"github.com/xepl-run/xepl/trace"
)

func main() {
	var (
		showTrace     bool
		showCounters  bool
		showMemCounts bool
		resourcePaths []string
		configPath    string
	)

	root := &cobra.Command{
		Use:   "xeplcli",
		Short: "xeplcli runs an XEPL program and drops into its REPL",
		Long: "xeplcli boots a cortex with the built-in keyword, operator, and " +
			"mutual tables registered, then reads lines from stdin: \"<...\" " +
			"parses and dispatches inline XML, \"{...\"/\"!...\"/\"%...\" evaluate " +
			"RNA, \"}name\" loads and dispatches a resource, \"~name\" drops a " +
			"neuron, \"|...\" runs a shell command, \";\" closes the current " +
			"dispatch, and \";;\" reboots the cortex.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cortex.DefaultConfig()
			if configPath != "" {
				loaded, err := cortex.LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			applyExplicitFlags(cmd.Flags(), &cfg, showTrace, showCounters, showMemCounts, resourcePaths)

			return runHost(cmd.Context(), cfg)
		},
	}

	root.PersistentFlags().BoolVar(&showTrace, "trace", false, "print a dispatch trace line for every keyword, method, and render resolution")
	root.PersistentFlags().BoolVar(&showCounters, "counters", false, "print mailbox posted/executed counters on exit")
	root.PersistentFlags().BoolVar(&showMemCounts, "memory-counts", false, "set the show_memory_counts flag (no atom counts are printed)")
	root.PersistentFlags().StringSliceVar(&resourcePaths, "resources", nil, "resource search roots, checked in order (default ./resources)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to an xepl.yaml overriding the compiled-in defaults")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// applyExplicitFlags overrides cfg's observability and resource-path
// fields only with flags the user actually passed, so a loaded xepl.yaml's
// values survive when the corresponding flag was left at its zero default.
// Grounded on qubicDB-qubicdb/cmd/qubicdb's applyExplicitFlags, which walks
// the same *pflag.FlagSet.Changed check per CLI override.
func applyExplicitFlags(flags *pflag.FlagSet, cfg *cortex.Config, showTrace, counters, memCounts bool, resources []string) {
	if flags.Changed("trace") {
		cfg.ShowTrace = showTrace
	}
	if flags.Changed("counters") {
		cfg.ShowCounters = counters
	}
	if flags.Changed("memory-counts") {
		cfg.ShowMemoryCounts = memCounts
	}
	if flags.Changed("resources") {
		cfg.ResourcePaths = resources
	}
}

// runHost boots one cortex under cfg and runs the REPL against stdin,
// rebooting into a fresh cortex each time the REPL returns errReboot, so a
// ";;" line restarts the whole interpreter without restarting the process.
func runHost(ctx context.Context, cfg cortex.Config) error {
	for {
		reporter := trace.NewReporter(os.Stderr, nil)
		reporter.Flags.SetTrace(cfg.ShowTrace)
		reporter.Flags.SetCounters(cfg.ShowCounters)
		reporter.Flags.SetMemoryCounts(cfg.ShowMemoryCounts)

		c := cortex.New(cfg, reporter)
		defaults.Register(c, os.Stdout)
		rootLobe := c.Boot(nil)

		s := &session{
			cortex: c,
			root:   rootLobe,
			files:  newResourceFileKit(cfg.ResourcePaths),
			out:    os.Stdout,
		}

		err := runREPL(ctx, s, os.Stdin)

		if cfg.ShowCounters {
			posted, executed := rootLobe.MailboxStats()
			fmt.Fprintf(os.Stdout, "mailbox: posted=%d executed=%d dispatched=%d\n", posted, executed, rootLobe.DispatchedCount())
		}

		c.Shutdown()

		if err == errReboot {
			continue
		}
		return err
	}
}

// Command mlp trains and tests multi-layer perceptrons described by
// specfiles.
package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.dedis.ch/onet/v3/log"

	"github.com/fpclass/mlp/driver"
)

// Config is the optional driver configuration file.
type Config struct {
	Debug      int    `toml:"debug"`
	ScanOnly   bool   `toml:"scan_only"`
	SummaryDir string `toml:"summary_dir"`
	PlotDir    string `toml:"plot_dir"`
}

var (
	configPath string
	debugLevel int
	summaryDir string
	plotDir    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mlp",
	Short: "Train and test multi-layer perceptrons from specfiles",
	Long: `mlp reads a specfile of run-blocks separated by "newrun" lines and
trains or tests one two-layer perceptron per block. Reports go to the long
outfile of each block and to standard error.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run <specfile>",
	Short: "Run every block of a specfile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.ScanOnly {
			return scan(args[0])
		}
		for _, dir := range []string{cfg.SummaryDir, cfg.PlotDir} {
			if dir == "" {
				continue
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.Wrapf(err, "creating %s", dir)
			}
		}
		outs, err := driver.RunFile(args[0], driver.Options{
			SummaryDir: cfg.SummaryDir,
			PlotDir:    cfg.PlotDir,
		})
		for _, o := range outs {
			log.Lvlf1("run %d: %d iterations, stop %d (%s)", o.Block, o.Iterations, o.StopCode, o.StopReason)
		}
		return err
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan <specfile>",
	Short: "Check every block of a specfile without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadConfig(cmd); err != nil {
			return err
		}
		return scan(args[0])
	},
}

func scan(path string) error {
	bad, err := driver.Scan(path, os.Stdout)
	if err != nil {
		return err
	}
	if bad > 0 {
		return errors.Wrapf(driver.ErrBadBlocks, "%d", bad)
	}
	return nil
}

// loadConfig reads the --config file, if any, and lets flags that were set
// explicitly override it.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{Debug: 1}
	if configPath != "" {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", configPath)
		}
	}
	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug = debugLevel
	}
	if flags.Changed("summary-dir") {
		cfg.SummaryDir = summaryDir
	}
	if flags.Changed("plot-dir") {
		cfg.PlotDir = plotDir
	}
	log.SetDebugVisible(cfg.Debug)
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML driver configuration file")
	rootCmd.PersistentFlags().IntVarP(&debugLevel, "debug", "d", 1, "log verbosity (0-5)")
	runCmd.Flags().StringVar(&summaryDir, "summary-dir", "", "write a TOML summary per run to this directory")
	runCmd.Flags().StringVar(&plotDir, "plot-dir", "", "write a weight histogram per run to this directory")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scanCmd)
}

// Package main provides the genome-track command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/genome-track/internal/config"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

// app carries state shared by every subcommand.
type app struct {
	cfgFile string
	verbose bool
	cfg     *config.Config
	log     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "genome-track",
		Short: "Render GFF3 gene annotations as a genome-browser track",
		Long: `genome-track draws genes from a GFF3 file as strand-aware arrows and
repeat regions as rectangles, as SVG, PNG or an interactive HTML viewer.`,
		Example: `  genome-track render genes.gff3 --start 5000 --end 7000 -o track.svg
  genome-track patches genes.gff3 --start 5000 --end 7000
  genome-track serve genes.gff3`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}
	root.SetVersionTemplate("genome-track version {{.Version}}\n")

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "Config file (default: ~/.genome-track.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose logging")

	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newPatchesCmd(a))
	root.AddCommand(newGenesCmd(a))
	root.AddCommand(newImportCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newDownloadCmd(a))
	root.AddCommand(newConfigCmd())

	return root
}

// init reads configuration and builds the logger.
func (a *app) init() error {
	if err := config.Init(viper.GetViper(), a.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := newLogger(a.verbose, cfg.Log.Level)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

// newLogger builds a development logger when verbose, otherwise a
// production logger at the configured level.
func newLogger(verbose bool, level string) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	zc.Encoding = "console"
	zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	return zc.Build()
}

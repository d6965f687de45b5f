package cmd

import (
	"fmt"
	"os"

	"github.com/op/go-logging"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/tipsight/internal/config"
	"github.com/KaramelBytes/tipsight/internal/render"
)

var log = logging.MustGetLogger("tipsight")

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagOutputDir string

	// Loaded configuration
	cfg *cfgpkg.Config
)

var rootCmd = &cobra.Command{
	Use:   "tipsight",
	Short: "Tipsight: descriptive statistics and charts for restaurant tips",
	Long: `Tipsight loads a fixed-schema CSV of restaurant bill records, computes
descriptive and grouped statistics, and renders a set of PNG charts.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tipsight/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagOutputDir, "output-dir", "", "directory for chart artifacts (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
	} else {
		cfg = c
	}
	initLogger(effectiveConfig().LogLevel)
}

// effectiveConfig returns the loaded config (or built-in defaults) with CLI
// overrides applied.
func effectiveConfig() *cfgpkg.Config {
	c := cfg
	if c == nil {
		c = cfgpkg.Default()
	}
	out := *c
	if f := rootCmd.PersistentFlags(); f.Changed("output-dir") && flagOutputDir != "" {
		out.OutputDir = flagOutputDir
	}
	return &out
}

func renderOptions(c *cfgpkg.Config) render.Options {
	opt := render.DefaultOptions()
	if c.ChartWidth > 0 {
		opt.Width = c.ChartWidth
	}
	if c.ChartHeight > 0 {
		opt.Height = c.ChartHeight
	}
	if c.HistBinWidth > 0 {
		opt.HistBinWidth = c.HistBinWidth
	}
	return opt
}

func initLogger(level string) {
	baseBackend := logging.NewLogBackend(os.Stderr, "", 0)
	format := logging.MustStringFormatter(
		`%{time:2006-01-02 15:04:05} %{level:.5s} %{message}`,
	)
	backendFormatter := logging.NewBackendFormatter(baseBackend, format)
	backendLeveled := logging.AddModuleLevel(backendFormatter)

	lvl := logging.INFO
	if parsed, err := logging.LogLevel(level); err == nil {
		lvl = parsed
	}
	if debug {
		lvl = logging.DEBUG
	}
	backendLeveled.SetLevel(lvl, "")
	logging.SetBackend(backendLeveled)
}

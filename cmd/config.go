package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/tipsight/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set tipsight configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		fmt.Printf("data_file: %s\n", c.DataFile)
		fmt.Printf("output_dir: %s\n", c.OutputDir)
		fmt.Printf("chart_width: %d\n", c.ChartWidth)
		fmt.Printf("chart_height: %d\n", c.ChartHeight)
		fmt.Printf("hist_bin_width: %.2f\n", c.HistBinWidth)
		fmt.Printf("log_level: %s\n", c.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "data_file":
			cfg.DataFile = val
		case "output_dir":
			cfg.OutputDir = val
		case "chart_width":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return fmt.Errorf("chart_width must be a positive integer, got %q", val)
			}
			cfg.ChartWidth = n
		case "chart_height":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return fmt.Errorf("chart_height must be a positive integer, got %q", val)
			}
			cfg.ChartHeight = n
		case "hist_bin_width":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("hist_bin_width must be a positive number, got %q", val)
			}
			cfg.HistBinWidth = f
		case "log_level":
			cfg.LogLevel = val
		default:
			return fmt.Errorf("unknown config key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Printf("✓ Saved %s\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

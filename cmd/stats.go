package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tipsight/internal/dataset"
	"github.com/KaramelBytes/tipsight/internal/stats"
)

var (
	statsFormat string
	statsOutput string
)

var statsCmd = &cobra.Command{
	Use:   "stats [file]",
	Short: "Print summary statistics without rendering charts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		path := c.DataFile
		if len(args) == 1 {
			path = args[0]
		}
		t, err := dataset.Load(path)
		if err != nil {
			return err
		}
		sum, err := stats.Summarize(t)
		if err != nil {
			return err
		}
		log.Debugf("stats %s: %d rows from %s", sum.RunID, sum.Rows, sum.Source)

		var out string
		switch statsFormat {
		case "", "text":
			out = sum.Text()
		case "yaml":
			b, err := yaml.Marshal(sum)
			if err != nil {
				return fmt.Errorf("marshal summary: %w", err)
			}
			out = string(b)
		default:
			return fmt.Errorf("unsupported --format: %s (use text|yaml)", statsFormat)
		}

		if statsOutput != "" {
			if err := os.WriteFile(statsOutput, []byte(out), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote summary to %s\n", statsOutput)
			return nil
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsFormat, "format", "text", "output format: text | yaml")
	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", "", "optional path to write the summary")
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tipsight/internal/dataset"
	"github.com/KaramelBytes/tipsight/internal/render"
	"github.com/KaramelBytes/tipsight/internal/stats"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Load the dataset, print summary statistics, and render all charts",
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
		log.Debugf("run %s: %d rows from %s", sum.RunID, sum.Rows, sum.Source)
		fmt.Println(sum.Text())

		arts, err := render.Render(t, c.OutputDir, renderOptions(c), nil)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %d charts to %s\n", len(arts), c.OutputDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tipsight/internal/dataset"
	"github.com/KaramelBytes/tipsight/internal/render"
)

var chartsOnly []string

var chartsCmd = &cobra.Command{
	Use:   "charts [file]",
	Short: "Render chart artifacts without printing statistics",
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
		arts, err := render.Render(t, c.OutputDir, renderOptions(c), chartsOnly)
		if err != nil {
			return err
		}
		for _, a := range arts {
			log.Debugf("rendered %s", a.Path)
		}
		fmt.Printf("✓ Wrote %d charts to %s\n", len(arts), c.OutputDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartsCmd)
	chartsCmd.Flags().StringSliceVar(&chartsOnly, "only", nil,
		fmt.Sprintf("render only the named charts (available: %s)", strings.Join(render.Names(), ", ")))
}

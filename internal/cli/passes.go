package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mhalver/gatefold/pkg/optimize"
)

// passDescriptions maps pass names to one-line summaries for display.
var passDescriptions = map[string]string{
	optimize.PassH:  "cancel adjacent Hadamards and fold H conjugations into phase gates",
	optimize.PassRz: "merge Z-axis rotations that commute to adjacency",
	optimize.PassCx: "cancel CNOT pairs separated by commuting gates",
}

// passesCommand creates the passes command, which lists the available
// rewrite passes and the default schedule.
func (c *CLI) passesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "passes",
		Short: "List the available rewrite passes",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(StyleTitle.Render("Rewrite passes"))
			for _, name := range []string{optimize.PassH, optimize.PassRz, optimize.PassCx} {
				red, err := optimize.NewReduction(name)
				if err != nil {
					return err
				}
				printKeyValue(name, red.Name())
				printDetail("%s", passDescriptions[name])
			}

			fmt.Println()
			fmt.Println(StyleTitle.Render("Default schedule"))
			printDetail("%s", strings.Join(optimize.LightSchedule(), " "+iconArrow+" "))
			return nil
		},
	}
}

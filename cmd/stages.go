package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/slipway-sh/slipway/stages"
)

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "List the pipeline stages in execution order",
	RunE:  runStages,
}

func runStages(cmd *cobra.Command, args []string) error {
	reg, err := stages.Defaults(stages.Options{})
	if err != nil {
		return fmt.Errorf("building stage registry: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tLABEL")
	for i, d := range reg.Defs() {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, d.ID, d.Label)
	}
	return w.Flush()
}

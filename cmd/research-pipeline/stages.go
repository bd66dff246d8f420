package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/researchpipeline/internal/flows"
)

func newStagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "List the pipeline stages and their document contracts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STAGE\tINPUTS\tOUTPUT")
			for _, s := range flows.Stages(nil, nil) {
				inputs := make([]string, len(s.Config.InputFamilies))
				for i, f := range s.Config.InputFamilies {
					inputs[i] = f.CanonicalName()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, strings.Join(inputs, ","), s.Config.OutputFamily.CanonicalName())
			}
			return w.Flush()
		},
	}
}

package main

import (
	"fmt"

	"github.com/dgnsrekt/compass_chart/internal/port"
	"github.com/spf13/cobra"
)

func newChartsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "charts",
		Short: "List, create, load and delete charts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List charts in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.svc.State(cmd.Context())
			if a.asJSON {
				return a.printJSON(map[string]any{"charts": st.Charts, "loaded_chart": st.LoadedChart})
			}
			for _, id := range st.Charts {
				marker := " "
				if st.ChartLoaded && id == st.LoadedChart {
					marker = "*"
				}
				fmt.Fprintf(a.out, "%s %s\n", marker, id)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create [name]",
		Short: "Create and load an empty chart; prompts for a name when none is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p port.Prompter = a.term
			if len(args) == 1 {
				p = port.NewScripted(args[0])
			}
			st, err := a.svc.PromptNewChart(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "created %s\n", st.LoadedChart)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "load <id>",
		Short: "Load a chart so later commands act on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.svc.LoadChart(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !st.ChartLoaded {
				fmt.Fprintln(a.out, "no chart loaded")
				return nil
			}
			fmt.Fprintf(a.out, "loaded %s (%d points)\n", st.LoadedChart, len(st.Points))
			return nil
		},
	})

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a chart and its points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var c port.Confirmer = a.term
			if yes {
				c = port.Confirming(true)
			}
			st, err := a.svc.ConfirmDeleteChart(cmd.Context(), args[0], c)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted %s\n", args[0])
			if st.ChartLoaded {
				fmt.Fprintf(a.out, "loaded %s\n", st.LoadedChart)
			}
			return nil
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.AddCommand(deleteCmd)

	return cmd
}

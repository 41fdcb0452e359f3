package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTransformCmd(a *app) *cobra.Command {
	var width float64
	cmd := &cobra.Command{
		Use:   "transform <index>",
		Short: "Print the CSS transform of a point's image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			tf, err := a.svc.ImageTransform(cmd.Context(), i, width)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(map[string]any{"transform": tf, "css": tf.CSS()})
			}
			fmt.Fprintln(a.out, tf.CSS())
			return nil
		},
	}
	cmd.Flags().Float64Var(&width, "width", 100, "Container width in pixels")
	return cmd
}

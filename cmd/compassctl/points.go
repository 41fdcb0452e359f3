package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid point index %q", s)
	}
	return i, nil
}

func parseFraction(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	if !(v >= 0 && v <= 1) {
		return 0, fmt.Errorf("invalid %s %q: want a fraction between 0 and 1", name, s)
	}
	return v, nil
}

func newPointsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "points",
		Short: "Edit the points of the loaded chart",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List points of the loaded chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.requireLoaded(cmd.Context())
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(st.Points)
			}
			for i, e := range st.Points {
				image := "-"
				if e.Point.Image != nil {
					image = e.Point.Image.Src
				}
				fmt.Fprintf(a.out, "%d\t%.4f\t%.4f\t%s\t%s\n", i, e.Point.X, e.Point.Y, e.Point.Name, image)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name> <x> <y>",
		Short: "Add a point at fractional position x, y",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := parseFraction("x", args[1])
			if err != nil {
				return err
			}
			y, err := parseFraction("y", args[2])
			if err != nil {
				return err
			}
			st, err := a.svc.AddPoint(cmd.Context(), args[0], x, y)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "added %s at index %d\n", args[0], len(st.Points)-1)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <index>",
		Short: "Delete the point at index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			before, err := a.requireLoaded(cmd.Context())
			if err != nil {
				return err
			}
			st, err := a.svc.DeletePoint(cmd.Context(), i)
			if err != nil {
				return err
			}
			if len(st.Points) == len(before.Points) {
				return fmt.Errorf("no point at index %d", i)
			}
			fmt.Fprintf(a.out, "deleted point %d\n", i)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <index> <name>",
		Short: "Rename the point at index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			if _, err := a.svc.RenamePoint(cmd.Context(), i, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "renamed point %d to %s\n", i, args[1])
			return nil
		},
	})

	return cmd
}

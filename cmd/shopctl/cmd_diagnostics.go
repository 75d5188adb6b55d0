package main

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/shopdir/internal/diagnostics"
)

func checkCmd(e *env) *cobra.Command {
	var city string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Print the shop count, shops in a city and a sample of cities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStore(cmd.Context(), func(st shopStore) error {
				return diagnostics.CheckData(cmd.Context(), st, e.stdout, city)
			})
		},
	}

	cmd.Flags().StringVar(&city, "city", diagnostics.DefaultCity, "City to look for (case-insensitive substring)")
	return cmd
}

func showCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the cities and shop names available to search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStore(cmd.Context(), func(st shopStore) error {
				return diagnostics.ShowSearchable(cmd.Context(), st, e.stdout)
			})
		},
	}
}

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"javinity/internal/config"
)

func newRoutesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the registered HTTP routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			// Routes only need a signing key to wire the session middleware.
			if cfg.Session.Secret == "" {
				cfg.Session.Secret = "routes"
			}
			cfg.Store.Driver = config.StoreMemory

			logger := newLogger("error")
			a, err := buildApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()
			return printRoutes(cmd.OutOrStdout(), a)
		},
	}
}

func printRoutes(w io.Writer, a *app) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range a.router.Routes() {
		fmt.Fprintf(tw, "%s\t%s\n", r.Method, r.Path)
	}
	return tw.Flush()
}

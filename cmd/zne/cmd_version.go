package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput(cmd) {
				return json.NewEncoder(out(cmd)).Encode(map[string]string{
					"version": version,
					"commit":  commit,
					"date":    date,
				})
			}

			_, err := fmt.Fprintf(out(cmd), "zne version %s (commit: %s, built: %s)\n", version, commit, date)

			return err
		},
	}
}

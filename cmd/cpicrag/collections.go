package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCollectionsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List collections and their entry counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, svc, _, err := root.setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()
			infos, err := svc.Collections(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, info := range infos {
				fmt.Fprintf(out, "%s\t%d\n", info.Name, info.Entries)
			}
			return nil
		},
	}
}

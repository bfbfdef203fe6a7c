package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func cacheCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the --cache-db credential cache",
	}
	cmd.AddCommand(cachePurgeCmd(opts))
	return cmd
}

func cachePurgeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete expired credentials from the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.credentialStore(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := store.DeleteExpired(cmd.Context(), time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired credential(s)\n", removed)
			return nil
		},
	}
}

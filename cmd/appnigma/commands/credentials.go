package commands

import (
	"github.com/appnigma/go-integrations-client/core"
	"github.com/spf13/cobra"
)

func credentialsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Fetch or invalidate connection credentials",
	}
	cmd.AddCommand(credentialsGetCmd(opts), credentialsInvalidateCmd(opts))
	return cmd
}

func credentialsGetCmd(opts *globalOptions) *cobra.Command {
	var showToken bool
	cmd := &cobra.Command{
		Use:   "get <connection-id>",
		Short: "Print the credentials of a connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			credentials, err := client.GetConnectionCredentials(cmd.Context(), core.GetConnectionCredentialsRequest{
				ConnectionID:  args[0],
				IntegrationID: opts.integrationID,
			})
			if err != nil {
				return err
			}
			if !showToken {
				credentials.AccessToken = core.RedactedValue
			}
			return writeJSON(cmd.OutOrStdout(), credentials)
		},
	}
	cmd.Flags().BoolVar(&showToken, "show-token", false, "print the access token instead of a placeholder")
	return cmd
}

func credentialsInvalidateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate <connection-id>",
		Short: "Drop cached credentials for a connection (requires --cache-db)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			return client.InvalidateConnectionCredentials(cmd.Context(), args[0])
		},
	}
}

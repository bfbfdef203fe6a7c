package commands

import (
	"github.com/appnigma/go-integrations-client/core"
	"github.com/appnigma/go-integrations-client/providers/salesforce"
	"github.com/spf13/cobra"
)

func queryCmd(opts *globalOptions) *cobra.Command {
	var (
		apiVersion string
		maxPages   int
	)
	cmd := &cobra.Command{
		Use:   "query <connection-id> <soql>",
		Short: "Run a SOQL query and print every record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			records, err := salesforce.QueryAllPages[map[string]any](
				cmd.Context(),
				client,
				salesforce.New(apiVersion),
				core.ProxySalesforceRequestInput{
					ConnectionID:  args[0],
					IntegrationID: opts.integrationID,
				},
				args[1],
				maxPages,
			)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().StringVar(&apiVersion, "api-version", salesforce.DefaultAPIVersion, "Salesforce REST API version")
	cmd.Flags().IntVar(&maxPages, "max-pages", 50, "stop after this many result pages (0 for no limit)")
	return cmd
}

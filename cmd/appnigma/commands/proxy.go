package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/appnigma/go-integrations-client/core"
	"github.com/spf13/cobra"
)

type proxyFlags struct {
	method string
	path   string
	query  []string
	data   string
}

func proxyCmd(opts *globalOptions) *cobra.Command {
	flags := proxyFlags{}
	cmd := &cobra.Command{
		Use:   "proxy <connection-id>",
		Short: "Send a Salesforce API request through the proxy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			response, err := client.ProxySalesforceRequest(cmd.Context(), core.ProxySalesforceRequestInput{
				ConnectionID:  args[0],
				IntegrationID: opts.integrationID,
				Request:       req,
			})
			if err != nil {
				return err
			}
			if limit := response.LimitInfo(); limit != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", core.HeaderLimitInfo, limit)
			}
			return writeBody(cmd.OutOrStdout(), response.Body)
		},
	}
	cmd.Flags().StringVar(&flags.method, "method", "", "HTTP method: GET, POST, PUT, PATCH or DELETE")
	cmd.Flags().StringVar(&flags.path, "path", "", "Salesforce API path, e.g. /services/data/v60.0/limits")
	cmd.Flags().StringArrayVar(&flags.query, "query", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&flags.data, "data", "", "JSON request body")
	return cmd
}

// request maps flags onto a proxy request. Flags that were not given stay
// unset so they are omitted on the wire.
func (f proxyFlags) request() (core.SalesforceProxyRequest, error) {
	req := core.NewSalesforceProxyRequest()
	if f.method != "" {
		method, err := core.ParseHTTPMethod(f.method)
		if err != nil {
			return core.SalesforceProxyRequest{}, err
		}
		req = req.WithMethod(method)
	}
	if f.path != "" {
		req = req.WithPath(f.path)
	}
	if len(f.query) > 0 {
		query := make(map[string]any, len(f.query))
		for _, pair := range f.query {
			key, value, ok := strings.Cut(pair, "=")
			if !ok || strings.TrimSpace(key) == "" {
				return core.SalesforceProxyRequest{}, fmt.Errorf("invalid --query %q, expected key=value", pair)
			}
			query[strings.TrimSpace(key)] = value
		}
		req = req.WithQuery(query)
	}
	if f.data != "" {
		decoder := json.NewDecoder(bytes.NewReader([]byte(f.data)))
		decoder.UseNumber()
		var data any
		if err := decoder.Decode(&data); err != nil {
			return core.SalesforceProxyRequest{}, fmt.Errorf("invalid --data: %w", err)
		}
		req = req.WithData(data)
	}
	return req, req.Validate()
}

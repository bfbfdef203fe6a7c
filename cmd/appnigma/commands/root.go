package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	integrations "github.com/appnigma/go-integrations-client"
	"github.com/appnigma/go-integrations-client/adapters/gologger"
	"github.com/appnigma/go-integrations-client/core"
	"github.com/appnigma/go-integrations-client/security"
	sqlstore "github.com/appnigma/go-integrations-client/store/sql"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	apiKey        string
	baseURL       string
	integrationID string
	timeout       time.Duration
	debug         bool
	cacheDB       string

	stderr io.Writer
	db     *persistence.Client
	store  *sqlstore.CredentialStore
}

func Execute() error {
	err := NewRootCommand(os.Stdout, os.Stderr).Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "appnigma:", err)
	}
	return err
}

func NewRootCommand(stdout io.Writer, stderr io.Writer) *cobra.Command {
	root, _ := newRootCommand(stdout, stderr)
	return root
}

func newRootCommand(stdout io.Writer, stderr io.Writer) (*cobra.Command, *globalOptions) {
	opts := &globalOptions{stderr: stderr}
	root := &cobra.Command{
		Use:           "appnigma",
		Short:         "Appnigma integrations API client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.apiKey, "api-key", "", "API key (default $"+core.EnvAPIKey+")")
	flags.StringVar(&opts.baseURL, "base-url", "", "API base URL (default $"+core.EnvBaseURL+" or "+core.DefaultBaseURL+")")
	flags.StringVar(&opts.integrationID, "integration-id", "", "integration id sent with each request")
	flags.DurationVar(&opts.timeout, "timeout", 0, "request timeout (default $"+core.EnvTimeout+" or 30s)")
	flags.BoolVar(&opts.debug, "debug", false, "log requests and responses to stderr")
	flags.StringVar(&opts.cacheDB, "cache-db", "", "sqlite file for an encrypted credential cache; key from $"+security.EnvCacheKey)

	root.AddCommand(
		credentialsCmd(opts),
		proxyCmd(opts),
		queryCmd(opts),
		cacheCmd(opts),
		versionCmd(),
	)
	closeAfterRun(root, opts)
	return root, opts
}

// closeAfterRun wraps every RunE so the cache database is closed whether the
// command succeeds or fails. Cobra skips post-run hooks after a RunE error.
func closeAfterRun(cmd *cobra.Command, opts *globalOptions) {
	for _, child := range cmd.Commands() {
		closeAfterRun(child, opts)
	}
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if closeErr := opts.close(); err == nil {
				err = closeErr
			}
		}()
		return run(cmd, args)
	}
}

func (o *globalOptions) client(cmd *cobra.Command) (*integrations.AppnigmaClient, error) {
	ctx := cmd.Context()
	cfg := integrations.Config{
		APIKey:  strings.TrimSpace(o.apiKey),
		BaseURL: strings.TrimSpace(o.baseURL),
		Timeout: o.timeout,
		Debug:   o.debug,
	}

	var clientOpts []integrations.Option
	flags := cmd.Flags()
	var explicit []string
	if flags.Changed("timeout") {
		explicit = append(explicit, "timeout")
	}
	if flags.Changed("debug") {
		explicit = append(explicit, "debug")
	}
	if len(explicit) > 0 {
		clientOpts = append(clientOpts, integrations.WithExplicitConfig(explicit...))
	}
	if o.debug {
		clientOpts = append(clientOpts, gologger.ClientOptions(nil, newStderrLogger(o.stderr))...)
	}
	if strings.TrimSpace(o.cacheDB) != "" {
		store, err := o.credentialStore(ctx)
		if err != nil {
			return nil, err
		}
		clientOpts = append(clientOpts, integrations.WithCredentialCache(store))
	}
	return integrations.NewClient(cfg, clientOpts...)
}

func (o *globalOptions) credentialStore(ctx context.Context) (*sqlstore.CredentialStore, error) {
	if o.store != nil {
		return o.store, nil
	}
	path := strings.TrimSpace(o.cacheDB)
	if path == "" {
		return nil, fmt.Errorf("--cache-db is required")
	}
	secrets, err := security.NewAppKeySecretProviderFromEnv(nil)
	if err != nil {
		return nil, err
	}
	db, err := sqlstore.Open(ctx, sqlstore.SQLiteConfig(path))
	if err != nil {
		return nil, err
	}
	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(db, secrets)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	o.db = db
	o.store = factory.CredentialStore()
	return o.store, nil
}

func (o *globalOptions) close() error {
	if o.db == nil {
		return nil
	}
	err := o.db.Close()
	o.db = nil
	o.store = nil
	return err
}

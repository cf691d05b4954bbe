package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crlszmr/vuln-scanner-sub000/config"
	"github.com/crlszmr/vuln-scanner-sub000/pkg/api"
	"github.com/crlszmr/vuln-scanner-sub000/pkg/session"
)

var (
	rootCmd = &cobra.Command{
		Use:   "vulnconsole [OPTIONS]",
		Short: "Console for the vulnerability management platform",
		Long: `Vulnconsole drives the platform backend from the terminal:
import CVE/CPE/CWE reference data, follow import progress, run device
matching and manage stored reference data.`,
	}

	versions = "vulnconsole version v0.4.2"

	apiURL   string
	skipAsk  bool
	username string
	password string
)

// console bundles the pieces every command needs.
type console struct {
	cfg    *config.Config
	client *api.Client
	store  *session.Store
}

func newConsole() (*console, error) {
	cfg := config.Load()
	if apiURL != "" {
		cfg.APIURL = apiURL
	}

	store, err := session.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open the session store: %w", err)
	}

	client := api.New(cfg.APIURL)
	if token, err := store.Get(tokenKey); err == nil && token != "" {
		client.SetToken(token)
	}

	return &console{cfg: cfg, client: client, store: store}, nil
}

func (c *console) close() {
	c.store.Close()
}

func Execute() error {
	nvd()
	match()
	auth()

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information and quit",
		Args:  NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(versions)
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "backend base URL")

	rootCmd.AddCommand(versionCmd)
	return rootCmd.Execute()
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Erkan3034/yurtgate/client"
	credfile "github.com/Erkan3034/yurtgate/credstore/file"
	"github.com/Erkan3034/yurtgate/session"
)

var (
	serverURL string
	homeDir   string
)

var rootCmd = &cobra.Command{
	Use:   "yurtgate",
	Short: "Yurtgate is the Yurt Market account and access gateway",
	Long: `Yurtgate serves the Yurt Market users API and ships the client
commands for it: register, login, profile inspection, and the seller
store toggle. Sessions persist across invocations in the yurtgate home
directory.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server",
		envOr("YURTGATE_SERVER", "http://localhost:8642"),
		"Base URL of the yurtgate server")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home",
		os.Getenv("YURTGATE_HOME"),
		"Directory for credentials and data (default ~/.yurtgate)")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// sessionEnv is the client-side wiring shared by every command that
// talks to the server: durable credentials, the reactive session, and
// an API client whose bearer token tracks the session live.
type sessionEnv struct {
	store  *session.Store
	client *client.Client
	boot   *session.Bootstrapper
}

func newSessionEnv() (*sessionEnv, error) {
	var (
		creds *credfile.Store
		err   error
	)
	if homeDir != "" {
		creds, err = credfile.NewStoreAt(homeDir)
	} else {
		creds, err = credfile.NewStore()
	}
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}

	store := session.NewStore(creds)
	c := client.New(serverURL,
		client.WithTokenSource(store.AccessToken),
		client.WithUnauthorizedHook(func() { store.Logout() }))
	return &sessionEnv{
		store:  store,
		client: c,
		boot:   session.NewBootstrapper(store, c),
	}, nil
}

// Package main provides the datarequest CLI for driving the research data
// request workflow against a configured object store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"
	"github.com/viant/datarequest"
)

// Global flags
var (
	configURL string
	principal string
)

var rootCmd = &cobra.Command{
	Use:   "datarequest",
	Short: "Drive the research data request workflow",
	Long: `datarequest runs workflow calls on behalf of a user.

Configuration is read from --config (yaml or json, any afs URL) and then
overridden by DATAREQUEST_* environment variables.

Examples:
  datarequest methods                                         # List remote calls
  datarequest call submitDatarequest '{"name":"Alice"}' -u alice
  datarequest call assignRequest '["bob"]' <requestId> -u gina
  datarequest group create datarequests-research-board --attr category=datarequests-research
  datarequest group add-member datarequests-research-board dave`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configURL, "config", "c", "", "Configuration URL")
	rootCmd.PersistentFlags().StringVarP(&principal, "user", "u", "", "Acting user (defaults to the OS user)")

	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(methodsCmd)
	rootCmd.AddCommand(groupCmd)
}

func newService(ctx context.Context) (*datarequest.Service, error) {
	config, err := datarequest.LoadConfig(ctx, configURL)
	if err != nil {
		return nil, err
	}
	return datarequest.New(ctx, config)
}

func actingUser() string {
	if principal != "" {
		return principal
	}
	if current, err := user.Current(); err == nil {
		return current.Username
	}
	return ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}

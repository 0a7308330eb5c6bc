package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/datarequest/service/api"
)

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List remote calls with their positional arguments",
	Args:  cobra.NoArgs,
	RunE:  runMethods,
}

func runMethods(cmd *cobra.Command, args []string) error {
	srv := api.New(nil)
	for _, signature := range srv.Methods() {
		fmt.Fprintf(cmd.OutOrStdout(), "%-18s %-32s %s\n", signature.Name, "("+strings.Join(signature.Args, ", ")+")", signature.Description)
	}
	return nil
}

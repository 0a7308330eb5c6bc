package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/datarequest/service/api"
)

var callCmd = &cobra.Command{
	Use:   "call <method> [args...]",
	Short: "Run a remote call and print its JSON reply",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCall,
}

func runCall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	srv, err := newService(ctx)
	if err != nil {
		return err
	}
	defer srv.Close()
	result := srv.Call(ctx, actingUser(), args[0], args[1:]...)
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	if result.Status != api.StatusOK {
		return fmt.Errorf("%v failed with status %d", args[0], result.Status)
	}
	return nil
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var groupAttributes []string

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage directory groups",
}

var groupCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a group with attributes",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroupCreate,
}

var groupAddMemberCmd = &cobra.Command{
	Use:   "add-member <group> <user>...",
	Short: "Add users to a group",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runGroupAddMember,
}

func init() {
	groupCreateCmd.Flags().StringArrayVar(&groupAttributes, "attr", nil, "Group attribute as name=value")
	groupCmd.AddCommand(groupCreateCmd)
	groupCmd.AddCommand(groupAddMemberCmd)
}

func parseAttributes(pairs []string) (map[string]string, error) {
	ret := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid attribute %q, expected name=value", pair)
		}
		ret[name] = value
	}
	return ret, nil
}

func runGroupCreate(cmd *cobra.Command, args []string) error {
	attributes, err := parseAttributes(groupAttributes)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	srv, err := newService(ctx)
	if err != nil {
		return err
	}
	defer srv.Close()
	return srv.CreateGroup(ctx, args[0], attributes)
}

func runGroupAddMember(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	srv, err := newService(ctx)
	if err != nil {
		return err
	}
	defer srv.Close()
	for _, member := range args[1:] {
		if err = srv.AddMember(ctx, args[0], member); err != nil {
			return err
		}
	}
	return nil
}

package storetest

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/datarequest/service/store"
)

// Group describes a group seeded for tests
type Group struct {
	Name       string
	Attributes map[string]string
	Members    []string
}

// Seed creates groups with their attributes and members; users are created on first use
func Seed(t *testing.T, dir store.Directory, zone string, groups ...*Group) {
	ctx := context.Background()
	users := map[string]bool{}
	for _, aGroup := range groups {
		assert.NoError(t, dir.CreateUser(ctx, &store.User{Name: aGroup.Name, Zone: zone, Type: store.UserTypeGroup}))
		names := make([]string, 0, len(aGroup.Attributes))
		for name := range aGroup.Attributes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			assert.NoError(t, dir.SetUserAttribute(ctx, aGroup.Name, name, aGroup.Attributes[name]))
		}
	}
	for _, aGroup := range groups {
		for _, member := range aGroup.Members {
			if !users[member] {
				users[member] = true
				assert.NoError(t, dir.CreateUser(ctx, &store.User{Name: member, Zone: zone, Type: store.UserTypeUser}))
			}
			assert.NoError(t, dir.AddMember(ctx, aGroup.Name, member))
		}
	}
}

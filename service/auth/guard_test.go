package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/viant/datarequest/model"
	"github.com/viant/datarequest/service/store"
	"github.com/viant/datarequest/service/store/fs"
	"github.com/viant/datarequest/service/store/storetest"
)

const zone = "tempZone"

func newTestGuard(t *testing.T) (*Guard, *fs.Service) {
	srv, err := fs.New("mem://localhost/auth-" + uuid.New().String())
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	storetest.Seed(t, srv, zone,
		&storetest.Group{
			Name:       "datarequests-research-board-of-directors",
			Attributes: map[string]string{"category": "datarequests-research", "description": "."},
			Members:    []string{"bob", "rods"},
		},
		&storetest.Group{
			Name:       "research-cohort",
			Attributes: map[string]string{"category": "youth", "subcategory": "wave1", "data_classification": "sensitive", "manager": "alice#tempZone"},
			Members:    []string{"alice", "carol"},
		},
		&storetest.Group{Name: "read-cohort", Attributes: map[string]string{"category": "youth"}, Members: []string{"dave"}},
		&storetest.Group{Name: "vault-cohort", Attributes: map[string]string{"category": "youth"}, Members: []string{"erin"}},
		&storetest.Group{Name: "public", Members: []string{"frank"}},
		&storetest.Group{Name: "datarequests-research-datamanagers", Members: []string{"gina"}},
	)
	return New(srv, zone), srv
}

func TestGuard_Membership(t *testing.T) {
	testCases := []struct {
		description string
		group       string
		user        string
		expect      bool
	}{
		{description: "member", group: "datarequests-research-board-of-directors", user: "bob", expect: true},
		{description: "qualified member", group: "datarequests-research-board-of-directors", user: "bob#tempZone", expect: true},
		{description: "other zone", group: "datarequests-research-board-of-directors", user: "bob#otherZone", expect: false},
		{description: "non member", group: "datarequests-research-board-of-directors", user: "alice", expect: false},
		{description: "read member is not a member", group: "research-cohort", user: "dave", expect: false},
		{description: "research member", group: "research-cohort", user: "carol", expect: true},
		{description: "vault group is skipped", group: "vault-cohort", user: "erin", expect: false},
		{description: "public group is skipped", group: "public", user: "frank", expect: false},
		{description: "group without attributes has no record", group: "datarequests-research-datamanagers", user: "gina", expect: false},
		{description: "unknown group", group: "nope", user: "bob", expect: false},
		{description: "group is not its own member", group: "research-cohort", user: "research-cohort", expect: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			guard, _ := newTestGuard(t)
			actual, err := guard.Membership(context.Background(), testCase.group, testCase.user)
			assert.NoError(t, err)
			assert.Equal(t, testCase.expect, actual)
		})
	}
}

func TestGuard_Group(t *testing.T) {
	guard, _ := newTestGuard(t)
	ctx := context.Background()
	aGroup, err := guard.Group(ctx, "research-cohort")
	assert.NoError(t, err)
	assert.EqualValues(t, &model.Group{
		Name:               "research-cohort",
		Category:           "youth",
		Subcategory:        "wave1",
		DataClassification: "sensitive",
		Managers:           []string{"alice#tempZone"},
		Members:            []string{"alice#tempZone", "carol#tempZone"},
		Read:               []string{"dave#tempZone"},
	}, aGroup)

	aGroup, err = guard.Group(ctx, "datarequests-research-board-of-directors")
	assert.NoError(t, err)
	assert.Equal(t, "", aGroup.Description)

	aGroup, err = guard.Group(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, aGroup)

	members, err := guard.Members(ctx, "datarequests-research-board-of-directors")
	assert.NoError(t, err)
	assert.Equal(t, []string{"bob", "rods"}, members)
}

func TestGuard_Groups(t *testing.T) {
	guard, _ := newTestGuard(t)
	groups, err := guard.Groups(context.Background())
	assert.NoError(t, err)
	var names []string
	for _, aGroup := range groups {
		names = append(names, aGroup.Name)
	}
	assert.Equal(t, []string{"datarequests-research-board-of-directors", "read-cohort", "research-cohort", "vault-cohort"}, names)
	for _, aGroup := range groups {
		switch aGroup.Name {
		case "research-cohort":
			assert.Equal(t, []string{"dave#tempZone"}, aGroup.Read)
			assert.Equal(t, []string{"alice#tempZone", "carol#tempZone"}, aGroup.Members)
		case "vault-cohort":
			assert.Empty(t, aGroup.Members)
		}
	}
}

func TestGuard_Ownership(t *testing.T) {
	guard, srv := newTestGuard(t)
	ctx := context.Background()
	collection := "/tempZone/home/datarequests-research/r1"
	objectPath := collection + "/datarequest.json"
	assert.NoError(t, srv.CreateCollection(ctx, "alice", collection))
	assert.NoError(t, srv.WriteObject(ctx, "alice", objectPath, []byte(`{}`)))

	testCases := []struct {
		description string
		path        string
		user        string
		expect      bool
		expectErr   error
	}{
		{description: "owner", path: objectPath, user: "alice", expect: true},
		{description: "qualified owner", path: objectPath, user: "alice#tempZone", expect: true},
		{description: "not owner", path: objectPath, user: "bob", expect: false},
		{description: "missing object", path: collection + "/other.json", user: "alice", expectErr: ErrAmbiguousOwner},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			actual, err := guard.Ownership(ctx, testCase.path, testCase.user)
			if testCase.expectErr != nil {
				assert.True(t, errors.Is(err, testCase.expectErr))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, testCase.expect, actual)
		})
	}
}

func TestGuard_NestedGroupIsNotMember(t *testing.T) {
	guard, srv := newTestGuard(t)
	ctx := context.Background()
	assert.NoError(t, srv.AddMember(ctx, "research-cohort", "datarequests-research-board-of-directors"))

	isMember, err := guard.Membership(ctx, "research-cohort", "datarequests-research-board-of-directors")
	assert.NoError(t, err)
	assert.False(t, isMember)
	members, err := guard.Members(ctx, "research-cohort")
	assert.NoError(t, err)
	assert.Equal(t, []string{"alice", "carol"}, members)

	groups, err := guard.Groups(ctx)
	assert.NoError(t, err)
	for _, aGroup := range groups {
		if aGroup.Name == "research-cohort" {
			assert.Equal(t, []string{"alice#tempZone", "carol#tempZone"}, aGroup.Members)
		}
	}
}

func TestGuard_ReadMembersPreferResearchGroup(t *testing.T) {
	guard, srv := newTestGuard(t)
	ctx := context.Background()
	assert.NoError(t, srv.CreateUser(ctx, &store.User{Name: "initial-cohort", Zone: zone, Type: store.UserTypeGroup}))
	assert.NoError(t, srv.SetUserAttribute(ctx, "initial-cohort", "category", "youth"))
	assert.NoError(t, srv.AddMember(ctx, "initial-cohort", "carol"))

	testCases := []struct {
		description string
		group       string
		expectRead  []string
	}{
		{description: "research group takes read members", group: "research-cohort", expectRead: []string{"dave#tempZone"}},
		{description: "initial group next to research group", group: "initial-cohort", expectRead: []string{}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			aGroup, err := guard.Group(ctx, testCase.group)
			assert.NoError(t, err)
			if assert.NotNil(t, aGroup) {
				assert.Equal(t, testCase.group, aGroup.Name)
				assert.Equal(t, testCase.expectRead, aGroup.Read)
			}
		})
	}

	groups, err := guard.Groups(ctx)
	assert.NoError(t, err)
	for _, aGroup := range groups {
		if aGroup.Name == "initial-cohort" {
			assert.Empty(t, aGroup.Read)
			assert.Equal(t, []string{"carol#tempZone"}, aGroup.Members)
		}
	}
}

func TestGuard_ReadMembersOfInitialGroup(t *testing.T) {
	srv, err := fs.New("mem://localhost/auth-" + uuid.New().String())
	if !assert.NoError(t, err) {
		return
	}
	storetest.Seed(t, srv, zone,
		&storetest.Group{Name: "initial-pilot", Attributes: map[string]string{"category": "youth"}, Members: []string{"alice"}},
		&storetest.Group{Name: "read-pilot", Attributes: map[string]string{"category": "youth"}, Members: []string{"dave"}},
	)
	aGroup, err := New(srv, zone).Group(context.Background(), "initial-pilot")
	assert.NoError(t, err)
	if assert.NotNil(t, aGroup) {
		assert.Equal(t, []string{"dave#tempZone"}, aGroup.Read)
	}
}

// Package storetest holds behaviour tests shared by every store adapter.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/datarequest/service/dao"
	"github.com/viant/datarequest/service/query"
	"github.com/viant/datarequest/service/store"
)

// Store represents an adapter under test
type Store interface {
	store.Service
	store.Directory
}

// Run runs the shared store behaviour tests; newStore has to return an empty store
func Run(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("objects", func(t *testing.T) { testObjects(t, newStore(t)) })
	t.Run("attributes", func(t *testing.T) { testSetAttribute(t, newStore(t)) })
	t.Run("acl", func(t *testing.T) { testACL(t, newStore(t)) })
	t.Run("directory", func(t *testing.T) { testDirectory(t, newStore(t)) })
}

func testObjects(t *testing.T, srv Store) {
	ctx := context.Background()
	collection := "/tempZone/home/datarequests-research/r1"
	objectPath := collection + "/datarequest.json"

	assert.Error(t, srv.WriteObject(ctx, "alice", objectPath, []byte("{}")), "collection has to exist")
	assert.NoError(t, srv.CreateCollection(ctx, "alice", collection))
	payload := []byte(`{"name":"Alice","email":"alice@example.com"}`)
	assert.NoError(t, srv.WriteObject(ctx, "alice", objectPath, payload))
	assert.NoError(t, srv.WriteObject(ctx, "bob", objectPath, payload), "overwrite keeps owner")

	data, err := srv.ReadObject(ctx, objectPath)
	assert.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = srv.ReadObject(ctx, collection+"/missing.json")
	assert.True(t, errors.Is(err, dao.ErrNotFound))

	aQuery, err := query.Select(query.DataOwnerName, query.DataSize).Where("COLL_NAME = ? AND DATA_NAME = ?", collection, "datarequest.json")
	assert.NoError(t, err)
	rows, err := srv.Query(ctx, aQuery)
	assert.NoError(t, err)
	assert.Equal(t, query.Rows{{query.DataOwnerName: "alice", query.DataSize: "44"}}, rows)
}

func testSetAttribute(t *testing.T, srv Store) {
	ctx := context.Background()
	collection := "/zone/requests/r1"
	objectPath := collection + "/datarequest.json"
	assert.NoError(t, srv.CreateCollection(ctx, "alice", collection))
	assert.NoError(t, srv.WriteObject(ctx, "alice", objectPath, []byte("{}")))

	testCases := []struct {
		description string
		values      []string
		expected    []string
	}{
		{description: "set multiple values", values: []string{"bob", "carol"}, expected: []string{"bob", "carol"}},
		{description: "full replacement", values: []string{"carol"}, expected: []string{"carol"}},
		{description: "removal", values: nil, expected: []string{}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.NoError(t, srv.SetAttribute(ctx, objectPath, "assignedForReview", testCase.values...))
			aQuery, err := query.Select(query.MetaDataAttrValue).Where("COLL_NAME = ? AND DATA_NAME = ? AND META_DATA_ATTR_NAME = ?", collection, "datarequest.json", "assignedForReview")
			assert.NoError(t, err)
			rows, err := srv.Query(ctx, aQuery)
			assert.NoError(t, err)
			assert.EqualValues(t, testCase.expected, rows.Values(query.MetaDataAttrValue))
		})
	}
	assert.True(t, errors.Is(srv.SetAttribute(ctx, collection+"/other.json", "status", "submitted"), dao.ErrNotFound))
}

func testACL(t *testing.T, srv Store) {
	ctx := context.Background()
	collection := "/zone/requests/r1"
	objectPath := collection + "/datarequest.json"
	assert.NoError(t, srv.CreateCollection(ctx, "alice", collection))
	assert.NoError(t, srv.WriteObject(ctx, "alice", objectPath, []byte("{}")))

	assert.NoError(t, srv.SetACL(ctx, store.NewACL(store.ModeRecursive, store.AccessWrite, "datamanagers", collection)))
	assert.Error(t, srv.SetACL(ctx, store.NewACL("sideways", store.AccessWrite, "datamanagers", collection)))
	assert.True(t, errors.Is(srv.SetACL(ctx, store.NewACL(store.ModeDefault, store.AccessRead, "board", "/zone/none")), dao.ErrNotFound))

	acl, err := srv.Permissions(ctx, objectPath)
	assert.NoError(t, err)
	assert.EqualValues(t, []*store.ACL{store.NewACL(store.ModeRecursive, store.AccessWrite, "datamanagers", objectPath)}, acl)

	assert.NoError(t, srv.SetACL(ctx, store.NewACL(store.ModeDefault, store.AccessNull, "datamanagers", objectPath)))
	acl, err = srv.Permissions(ctx, objectPath)
	assert.NoError(t, err)
	assert.Empty(t, acl)
}

func testDirectory(t *testing.T, srv Store) {
	ctx := context.Background()
	assert.NoError(t, srv.CreateUser(ctx, &store.User{Name: "research-a", Zone: "tempZone", Type: store.UserTypeGroup}))
	assert.NoError(t, srv.CreateUser(ctx, &store.User{Name: "bob", Zone: "tempZone"}))
	assert.Error(t, srv.CreateUser(ctx, &store.User{Name: "bob", Zone: "tempZone"}))
	assert.NoError(t, srv.SetUserAttribute(ctx, "research-a", "category", "youth"))
	assert.NoError(t, srv.AddMember(ctx, "research-a", "bob"))
	assert.NoError(t, srv.AddMember(ctx, "research-a", "bob"))
	assert.Error(t, srv.AddMember(ctx, "bob", "research-a"))

	groups, err := query.Select(query.UserGroupName, query.MetaUserAttrName, query.MetaUserAttrValue).Where("USER_TYPE = ?", store.UserTypeGroup)
	assert.NoError(t, err)
	rows, err := srv.Query(ctx, groups)
	assert.NoError(t, err)
	assert.Equal(t, query.Rows{{query.UserGroupName: "research-a", query.MetaUserAttrName: "category", query.MetaUserAttrValue: "youth"}}, rows)

	members, err := query.Select(query.UserGroupName, query.UserName, query.UserZone).Where("USER_TYPE != ?", store.UserTypeGroup)
	assert.NoError(t, err)
	rows, err = srv.Query(ctx, members)
	assert.NoError(t, err)
	assert.Equal(t, query.Rows{
		{query.UserGroupName: "bob", query.UserName: "bob", query.UserZone: "tempZone"},
		{query.UserGroupName: "research-a", query.UserName: "bob", query.UserZone: "tempZone"},
	}, rows)
}

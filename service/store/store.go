// Package store defines the object store adapter: hierarchical collections of
// data objects carrying multi-valued attributes, ownership and ACLs, plus a
// directory of users and groups. All reads go through parameterized queries.
package store

import (
	"context"

	"github.com/viant/datarequest/service/query"
)

// Service represents an object store adapter
type Service interface {
	// Query returns rows matching q; rows carry only the selected columns
	Query(ctx context.Context, q *query.Query) (query.Rows, error)

	// CreateCollection creates a collection owned by owner, parents included
	CreateCollection(ctx context.Context, owner, path string) error

	// WriteObject creates or overwrites a data object; owner is set on creation only
	WriteObject(ctx context.Context, owner, path string, data []byte) error

	// ReadObject returns data object content
	ReadObject(ctx context.Context, path string) ([]byte, error)

	// SetAttribute replaces all values of a data object attribute; no values removes it
	SetAttribute(ctx context.Context, path, name string, values ...string) error

	// SetACL grants access on a collection or data object
	SetACL(ctx context.Context, acl *ACL) error

	// Permissions returns ACLs granted on a path
	Permissions(ctx context.Context, path string) ([]*ACL, error)
}

// Directory manages users, groups and their attributes
type Directory interface {
	// CreateUser registers a user or a group (Type == UserTypeGroup)
	CreateUser(ctx context.Context, user *User) error

	// AddMember adds user to group
	AddMember(ctx context.Context, group, user string) error

	// SetUserAttribute appends a user or group attribute value
	SetUserAttribute(ctx context.Context, user, name, value string) error
}

// User types
const (
	UserTypeUser  = "rodsuser"
	UserTypeGroup = "rodsgroup"
	UserTypeAdmin = "rodsadmin"
)

// User represents a directory entry
type User struct {
	Name string `json:"name"`
	Zone string `json:"zone"`
	Type string `json:"type"`
}

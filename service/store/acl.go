package store

import "fmt"

// Mode defines how an ACL applies
type Mode string

const (
	// ModeRecursive applies the ACL to the path and everything below it
	ModeRecursive Mode = "recursive"
	// ModeDefault applies the ACL to the path only
	ModeDefault Mode = "default"
)

// Access defines the granted access level
type Access string

const (
	AccessNull  Access = "null"
	AccessRead  Access = "read"
	AccessWrite Access = "write"
	AccessOwn   Access = "own"
)

// ACL represents an access grant
type ACL struct {
	Mode      Mode   `json:"mode"`
	Access    Access `json:"access"`
	Principal string `json:"principal"`
	Path      string `json:"path"`
}

// NewACL creates an ACL
func NewACL(mode Mode, access Access, principal, path string) *ACL {
	return &ACL{Mode: mode, Access: access, Principal: principal, Path: path}
}

// Validate checks ACL fields
func (a *ACL) Validate() error {
	switch a.Mode {
	case ModeRecursive, ModeDefault:
	default:
		return fmt.Errorf("invalid acl mode: %q", a.Mode)
	}
	switch a.Access {
	case AccessNull, AccessRead, AccessWrite, AccessOwn:
	default:
		return fmt.Errorf("invalid acl access: %q", a.Access)
	}
	if a.Principal == "" {
		return fmt.Errorf("acl principal was empty")
	}
	if a.Path == "" {
		return fmt.Errorf("acl path was empty")
	}
	return nil
}

// At returns a copy of the ACL applied to aPath
func (a *ACL) At(aPath string) *ACL {
	ret := *a
	ret.Path = aPath
	return &ret
}

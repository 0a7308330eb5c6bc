package fs

import (
	"time"

	"github.com/viant/datarequest/service/store"
)

type attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type collection struct {
	Path      string       `json:"path"`
	Owner     string       `json:"owner"`
	CreatedAt time.Time    `json:"createdAt"`
	ACL       []*store.ACL `json:"acl,omitempty"`
}

type object struct {
	Collection string       `json:"collection"`
	Name       string       `json:"name"`
	Owner      string       `json:"owner"`
	Size       int          `json:"size"`
	CreatedAt  time.Time    `json:"createdAt"`
	ModifiedAt time.Time    `json:"modifiedAt"`
	Attributes []*attribute `json:"attributes,omitempty"`
	ACL        []*store.ACL `json:"acl,omitempty"`
}

type user struct {
	store.User
	Groups     []string     `json:"groups,omitempty"`
	Attributes []*attribute `json:"attributes,omitempty"`
}

// catalog holds store metadata; object content is kept in separate files
type catalog struct {
	Collections map[string]*collection `json:"collections"`
	Objects     map[string]*object     `json:"objects"`
	Users       map[string]*user       `json:"users"`
}

func newCatalog() *catalog {
	return &catalog{
		Collections: map[string]*collection{},
		Objects:     map[string]*object{},
		Users:       map[string]*user{},
	}
}

func (c *catalog) ensureMaps() {
	if c.Collections == nil {
		c.Collections = map[string]*collection{}
	}
	if c.Objects == nil {
		c.Objects = map[string]*object{}
	}
	if c.Users == nil {
		c.Users = map[string]*user{}
	}
}

// grant replaces principal's entry in acl; AccessNull revokes it
func grant(acl []*store.ACL, entry *store.ACL) []*store.ACL {
	result := make([]*store.ACL, 0, len(acl)+1)
	for _, candidate := range acl {
		if candidate.Principal != entry.Principal {
			result = append(result, candidate)
		}
	}
	if entry.Access != store.AccessNull {
		result = append(result, entry)
	}
	return result
}

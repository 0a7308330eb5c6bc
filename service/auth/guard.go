// Package auth answers group membership and object ownership questions from
// live store queries. Group records are derived on every call and never cached.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/viant/datarequest/model"
	"github.com/viant/datarequest/service/query"
	"github.com/viant/datarequest/service/store"
)

// ErrAmbiguousOwner is returned when an object does not have exactly one owner row
var ErrAmbiguousOwner = errors.New("auth: ambiguous owner")

const (
	groupAdmin  = "rodsadmin"
	groupPublic = "public"
	vaultPrefix = "vault-"
	readPrefix  = "read-"

	researchPrefix = "research-"
	initialPrefix  = "initial-"
)

// Guard represents authorization guard
type Guard struct {
	store store.Service
	zone  string
}

// Zone returns the zone used to qualify user names
func (g *Guard) Zone() string {
	return g.zone
}

// Membership reports whether user belongs to group; exactly one group record
// has to match.
func (g *Guard) Membership(ctx context.Context, group, user string) (bool, error) {
	groups, err := g.scoped(ctx, group)
	if err != nil {
		return false, err
	}
	if len(groups) != 1 {
		return false, nil
	}
	return groups[0].HasMember(model.QualifiedUser(user, g.zone)), nil
}

// Ownership reports whether user is the single owner of objectPath
func (g *Guard) Ownership(ctx context.Context, objectPath, user string) (bool, error) {
	collection, name, err := store.Split(objectPath)
	if err != nil {
		return false, err
	}
	aQuery, err := query.Select(query.DataOwnerName).
		Where("COLL_NAME = ? AND DATA_NAME = ?", collection, name)
	if err != nil {
		return false, err
	}
	rows, err := g.store.Query(ctx, aQuery)
	if err != nil {
		return false, fmt.Errorf("failed to read owner of %v: %w", objectPath, err)
	}
	if len(rows) != 1 {
		return false, fmt.Errorf("%w: %v has %d owner rows", ErrAmbiguousOwner, objectPath, len(rows))
	}
	return rows[0][query.DataOwnerName] == model.PlainUser(user), nil
}

// Group returns a single group record, nil when none matches
func (g *Guard) Group(ctx context.Context, name string) (*model.Group, error) {
	groups, err := g.scoped(ctx, name)
	if err != nil || len(groups) != 1 {
		return nil, err
	}
	return groups[0], nil
}

// Groups returns every group record ordered by name
func (g *Guard) Groups(ctx context.Context) ([]*model.Group, error) {
	attributes, err := query.Select(query.UserName, query.MetaUserAttrName, query.MetaUserAttrValue).
		Where("USER_TYPE = ?", store.UserTypeGroup)
	if err != nil {
		return nil, err
	}
	memberships, err := query.Select(query.UserGroupName, query.UserName, query.UserZone).
		Where("USER_TYPE != ?", store.UserTypeGroup)
	if err != nil {
		return nil, err
	}
	return g.derive(ctx, attributes, memberships)
}

// Members returns plain user names of the group members
func (g *Guard) Members(ctx context.Context, name string) ([]string, error) {
	aGroup, err := g.Group(ctx, name)
	if err != nil || aGroup == nil {
		return nil, err
	}
	result := make([]string, 0, len(aGroup.Members))
	for _, member := range aGroup.Members {
		result = append(result, model.PlainUser(member))
	}
	return result, nil
}

// scoped derives the record of group name only; an initial-X group also loads
// research-X so that read-X members land on the group that takes them.
func (g *Guard) scoped(ctx context.Context, name string) ([]*model.Group, error) {
	names := []string{name}
	if strings.HasPrefix(name, initialPrefix) {
		names = append(names, researchPrefix+strings.TrimPrefix(name, initialPrefix))
	}
	attributes, err := query.Select(query.UserName, query.MetaUserAttrName, query.MetaUserAttrValue).
		Where("USER_NAME IN ("+placeholders(len(names))+") AND USER_TYPE = ?", names, store.UserTypeGroup)
	if err != nil {
		return nil, err
	}
	groupNames := []string{name}
	if readGroup := model.ReadGroup(name); readGroup != "" {
		groupNames = append(groupNames, readGroup)
	}
	memberships, err := query.Select(query.UserGroupName, query.UserName, query.UserZone).
		Where("USER_TYPE != ? AND USER_GROUP_NAME IN ("+placeholders(len(groupNames))+")", store.UserTypeGroup, groupNames)
	if err != nil {
		return nil, err
	}
	groups, err := g.derive(ctx, attributes, memberships)
	if err != nil {
		return nil, err
	}
	result := groups[:0]
	for _, aGroup := range groups {
		if aGroup.Name == name {
			result = append(result, aGroup)
		}
	}
	return result, nil
}

func placeholders(count int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}

func (g *Guard) derive(ctx context.Context, attributes, memberships *query.Query) ([]*model.Group, error) {
	rows, err := g.store.Query(ctx, attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to query group attributes: %w", err)
	}
	groups := map[string]*model.Group{}
	for _, row := range rows {
		name := row[query.UserName]
		aGroup, ok := groups[name]
		if !ok {
			aGroup = &model.Group{Name: name, Managers: []string{}, Members: []string{}, Read: []string{}}
			groups[name] = aGroup
		}
		aGroup.SetAttribute(row[query.MetaUserAttrName], row[query.MetaUserAttrValue])
	}
	if rows, err = g.store.Query(ctx, memberships); err != nil {
		return nil, fmt.Errorf("failed to query group members: %w", err)
	}
	for _, row := range rows {
		name, user := row[query.UserGroupName], row[query.UserName]
		if name == user || name == groupAdmin || name == groupPublic || strings.HasPrefix(name, vaultPrefix) {
			continue
		}
		member := model.QualifiedUser(user, row[query.UserZone])
		if strings.HasPrefix(name, readPrefix) {
			suffix := strings.TrimPrefix(name, readPrefix)
			for _, candidate := range []string{researchPrefix + suffix, initialPrefix + suffix} {
				if aGroup, ok := groups[candidate]; ok {
					aGroup.Read = append(aGroup.Read, member)
					break
				}
			}
			continue
		}
		if aGroup, ok := groups[name]; ok {
			aGroup.Members = append(aGroup.Members, member)
		}
	}
	result := make([]*model.Group, 0, len(groups))
	for _, aGroup := range groups {
		sort.Strings(aGroup.Members)
		sort.Strings(aGroup.Read)
		result = append(result, aGroup)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// New creates an authorization guard qualifying user names with zone
func New(srv store.Service, zone string) *Guard {
	return &Guard{store: srv, zone: zone}
}

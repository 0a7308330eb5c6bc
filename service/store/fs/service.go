package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/datarequest/internal/clock"
	"github.com/viant/datarequest/service/dao"
	"github.com/viant/datarequest/service/query"
	"github.com/viant/datarequest/service/store"
)

const catalogFile = "catalog.json"

// Service implements an afs backed object store; metadata lives in a single
// catalog document next to a content tree.
type Service struct {
	baseURL string
	fs      afs.Service
	mu      sync.Mutex
}

var _ store.Service = (*Service)(nil)
var _ store.Directory = (*Service)(nil)

// Query returns rows matching q
func (s *Service) Query(ctx context.Context, q *query.Query) (query.Rows, error) {
	domain, err := q.Domain()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	aCatalog, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	var candidates query.Rows
	switch domain {
	case query.DomainData:
		candidates = dataRows(aCatalog, q.HasMeta())
	case query.DomainUser:
		candidates = userRows(aCatalog, q.HasMeta())
	}
	var result query.Rows
	seen := map[string]bool{}
	for _, row := range candidates {
		if !q.Match(row) {
			continue
		}
		projected := q.Project(row)
		key := rowKey(q.Columns, projected)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, projected)
	}
	return result, nil
}

func dataRows(aCatalog *catalog, meta bool) query.Rows {
	var result query.Rows
	for _, key := range sortedKeys(aCatalog.Objects) {
		anObject := aCatalog.Objects[key]
		base := query.Row{
			query.CollName:       anObject.Collection,
			query.DataName:       anObject.Name,
			query.DataSize:       strconv.Itoa(anObject.Size),
			query.DataOwnerName:  anObject.Owner,
			query.DataCreateTime: strconv.FormatInt(anObject.CreatedAt.Unix(), 10),
		}
		if !meta {
			result = append(result, base)
			continue
		}
		for _, attr := range anObject.Attributes {
			row := query.Row{query.MetaDataAttrName: attr.Name, query.MetaDataAttrValue: attr.Value}
			for k, v := range base {
				row[k] = v
			}
			result = append(result, row)
		}
	}
	return result
}

func userRows(aCatalog *catalog, meta bool) query.Rows {
	var result query.Rows
	for _, key := range sortedKeys(aCatalog.Users) {
		aUser := aCatalog.Users[key]
		groups := append([]string{aUser.Name}, aUser.Groups...)
		for _, group := range groups {
			base := query.Row{
				query.UserGroupName: group,
				query.UserName:      aUser.Name,
				query.UserZone:      aUser.Zone,
				query.UserType:      aUser.Type,
			}
			if !meta {
				result = append(result, base)
				continue
			}
			for _, attr := range aUser.Attributes {
				row := query.Row{query.MetaUserAttrName: attr.Name, query.MetaUserAttrValue: attr.Value}
				for k, v := range base {
					row[k] = v
				}
				result = append(result, row)
			}
		}
	}
	return result
}

// CreateCollection creates a collection and any missing parent
func (s *Service) CreateCollection(ctx context.Context, owner, collectionPath string) error {
	if owner == "" {
		return fmt.Errorf("collection owner was empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	aCatalog, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := aCatalog.Objects[path.Clean(collectionPath)]; ok {
		return fmt.Errorf("failed to create collection %v: data object exists", collectionPath)
	}
	now := clock.Now()
	for _, parent := range store.Parents(collectionPath) {
		if _, ok := aCatalog.Collections[parent]; ok {
			continue
		}
		aCatalog.Collections[parent] = &collection{Path: parent, Owner: owner, CreatedAt: now}
	}
	return s.store(ctx, aCatalog)
}

// WriteObject creates or overwrites a data object
func (s *Service) WriteObject(ctx context.Context, owner, objectPath string, data []byte) error {
	collectionPath, name, err := store.Split(objectPath)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	aCatalog, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := aCatalog.Collections[collectionPath]; !ok {
		return fmt.Errorf("failed to write %v: %w: collection %v", objectPath, dao.ErrNotFound, collectionPath)
	}
	key := path.Join(collectionPath, name)
	now := clock.Now()
	anObject, ok := aCatalog.Objects[key]
	if !ok {
		if owner == "" {
			return fmt.Errorf("failed to write %v: owner was empty", objectPath)
		}
		anObject = &object{Collection: collectionPath, Name: name, Owner: owner, CreatedAt: now}
		aCatalog.Objects[key] = anObject
	}
	anObject.Size = len(data)
	anObject.ModifiedAt = now
	if err = s.fs.Upload(ctx, s.contentURL(key), file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %v: %w", objectPath, err)
	}
	return s.store(ctx, aCatalog)
}

// ReadObject returns data object content
func (s *Service) ReadObject(ctx context.Context, objectPath string) ([]byte, error) {
	collectionPath, name, err := store.Split(objectPath)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	aCatalog, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	key := path.Join(collectionPath, name)
	if _, ok := aCatalog.Objects[key]; !ok {
		return nil, fmt.Errorf("failed to read %v: %w", objectPath, dao.ErrNotFound)
	}
	data, err := s.fs.DownloadWithURL(ctx, s.contentURL(key))
	if err != nil {
		return nil, fmt.Errorf("failed to read %v: %w", objectPath, err)
	}
	return data, nil
}

// SetAttribute replaces all values of an attribute
func (s *Service) SetAttribute(ctx context.Context, objectPath, name string, values ...string) error {
	if name == "" {
		return fmt.Errorf("attribute name was empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	aCatalog, err := s.load(ctx)
	if err != nil {
		return err
	}
	anObject, ok := aCatalog.Objects[path.Clean(objectPath)]
	if !ok {
		return fmt.Errorf("failed to set %v on %v: %w", name, objectPath, dao.ErrNotFound)
	}
	attributes := make([]*attribute, 0, len(anObject.Attributes)+len(values))
	for _, attr := range anObject.Attributes {
		if attr.Name != name {
			attributes = append(attributes, attr)
		}
	}
	for _, value := range values {
		attributes = append(attributes, &attribute{Name: name, Value: value})
	}
	anObject.Attributes = attributes
	return s.store(ctx, aCatalog)
}

// SetACL grants access on a path; recursive grants apply to every existing descendant
func (s *Service) SetACL(ctx context.Context, acl *store.ACL) error {
	if err := acl.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	aCatalog, err := s.load(ctx)
	if err != nil {
		return err
	}
	target := path.Clean(acl.Path)
	matched := false
	if aCollection, ok := aCatalog.Collections[target]; ok {
		matched = true
		aCollection.ACL = grant(aCollection.ACL, acl.At(target))
		if acl.Mode == store.ModeRecursive {
			prefix := target + "/"
			for key, candidate := range aCatalog.Collections {
				if strings.HasPrefix(key, prefix) {
					candidate.ACL = grant(candidate.ACL, acl.At(key))
				}
			}
			for key, candidate := range aCatalog.Objects {
				if strings.HasPrefix(key, prefix) {
					candidate.ACL = grant(candidate.ACL, acl.At(key))
				}
			}
		}
	}
	if anObject, ok := aCatalog.Objects[target]; ok {
		matched = true
		anObject.ACL = grant(anObject.ACL, acl.At(target))
	}
	if !matched {
		return fmt.Errorf("failed to set acl on %v: %w", acl.Path, dao.ErrNotFound)
	}
	return s.store(ctx, aCatalog)
}

// Permissions returns ACLs granted on a path
func (s *Service) Permissions(ctx context.Context, aPath string) ([]*store.ACL, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	aCatalog, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	target := path.Clean(aPath)
	var acl []*store.ACL
	if aCollection, ok := aCatalog.Collections[target]; ok {
		acl = aCollection.ACL
	} else if anObject, ok := aCatalog.Objects[target]; ok {
		acl = anObject.ACL
	} else {
		return nil, fmt.Errorf("failed to get acl of %v: %w", aPath, dao.ErrNotFound)
	}
	result := append([]*store.ACL(nil), acl...)
	sort.Slice(result, func(i, j int) bool { return result[i].Principal < result[j].Principal })
	return result, nil
}

// CreateUser registers a user or group
func (s *Service) CreateUser(ctx context.Context, aUser *store.User) error {
	if aUser == nil || aUser.Name == "" {
		return fmt.Errorf("user name was empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	aCatalog, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := aCatalog.Users[aUser.Name]; ok {
		return fmt.Errorf("user %v already exists", aUser.Name)
	}
	entry := *aUser
	if entry.Type == "" {
		entry.Type = store.UserTypeUser
	}
	aCatalog.Users[aUser.Name] = &user{User: entry}
	return s.store(ctx, aCatalog)
}

// AddMember adds a user to a group
func (s *Service) AddMember(ctx context.Context, group, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	aCatalog, err := s.load(ctx)
	if err != nil {
		return err
	}
	aGroup, ok := aCatalog.Users[group]
	if !ok || aGroup.Type != store.UserTypeGroup {
		return fmt.Errorf("failed to add %v: %w: group %v", member, dao.ErrNotFound, group)
	}
	aUser, ok := aCatalog.Users[member]
	if !ok {
		return fmt.Errorf("failed to add to %v: %w: user %v", group, dao.ErrNotFound, member)
	}
	for _, candidate := range aUser.Groups {
		if candidate == group {
			return nil
		}
	}
	aUser.Groups = append(aUser.Groups, group)
	return s.store(ctx, aCatalog)
}

// SetUserAttribute appends a user attribute value
func (s *Service) SetUserAttribute(ctx context.Context, name, attrName, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	aCatalog, err := s.load(ctx)
	if err != nil {
		return err
	}
	aUser, ok := aCatalog.Users[name]
	if !ok {
		return fmt.Errorf("failed to set %v: %w: user %v", attrName, dao.ErrNotFound, name)
	}
	aUser.Attributes = append(aUser.Attributes, &attribute{Name: attrName, Value: value})
	return s.store(ctx, aCatalog)
}

func (s *Service) load(ctx context.Context) (*catalog, error) {
	URL := url.Join(s.baseURL, catalogFile)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check catalog: %w", err)
	}
	if !exists {
		return newCatalog(), nil
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	aCatalog := newCatalog()
	if err = json.Unmarshal(data, aCatalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	aCatalog.ensureMaps()
	return aCatalog, nil
}

func (s *Service) store(ctx context.Context, aCatalog *catalog) error {
	data, err := json.Marshal(aCatalog)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err = s.fs.Upload(ctx, url.Join(s.baseURL, catalogFile), file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

func (s *Service) contentURL(objectPath string) string {
	return url.Join(s.baseURL, "data", strings.TrimPrefix(objectPath, "/"))
}

func rowKey(columns []query.Column, row query.Row) string {
	builder := strings.Builder{}
	for _, column := range columns {
		builder.WriteString(row[column])
		builder.WriteByte(0)
	}
	return builder.String()
}

func sortedKeys[T any](m map[string]T) []string {
	result := make([]string, 0, len(m))
	for k := range m {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// New creates an afs backed store rooted at baseURL, e.g. file:///var/datarequest or mem://localhost/store
func New(baseURL string) (*Service, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	return &Service{
		baseURL: url.Normalize(baseURL, file.Scheme),
		fs:      afs.New(),
	}, nil
}

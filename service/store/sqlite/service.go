package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/viant/datarequest/internal/clock"
	"github.com/viant/datarequest/service/dao"
	"github.com/viant/datarequest/service/query"
	"github.com/viant/datarequest/service/store"
	"github.com/viant/datarequest/service/store/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Service implements a sqlite backed object store
type Service struct {
	db *sql.DB
}

var _ store.Service = (*Service)(nil)
var _ store.Directory = (*Service)(nil)

// Open opens a sqlite store and applies migrations
func Open(ctx context.Context, location string) (*Service, error) {
	if strings.TrimSpace(location) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(location) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=case_sensitive_like(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err = applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Service{db: db}, nil
}

// Close releases the sqlite connection
func (s *Service) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Query returns rows matching q
func (s *Service) Query(ctx context.Context, q *query.Query) (query.Rows, error) {
	SQL, args, err := render(q)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, SQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run %v: %w", q, err)
	}
	defer rows.Close()
	var result query.Rows
	values := make([]sql.NullString, len(q.Columns))
	targets := make([]interface{}, len(q.Columns))
	for i := range values {
		targets[i] = &values[i]
	}
	for rows.Next() {
		if err = rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan %v: %w", q, err)
		}
		row := make(query.Row, len(q.Columns))
		for i, column := range q.Columns {
			row[column] = values[i].String
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// CreateCollection creates a collection and any missing parent
func (s *Service) CreateCollection(ctx context.Context, owner, collectionPath string) error {
	if owner == "" {
		return fmt.Errorf("collection owner was empty")
	}
	now := clock.Now().Unix()
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, parent := range store.Parents(collectionPath) {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO collections (path, owner, created_at) VALUES (?, ?, ?)`, parent, owner, now); err != nil {
				return fmt.Errorf("failed to create collection %v: %w", parent, err)
			}
		}
		return nil
	})
}

// WriteObject creates or overwrites a data object
func (s *Service) WriteObject(ctx context.Context, owner, objectPath string, data []byte) error {
	collectionPath, name, err := store.Split(objectPath)
	if err != nil {
		return err
	}
	now := clock.Now().Unix()
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if exists, err := s.exists(ctx, tx, `SELECT COUNT(*) FROM collections WHERE path = ?`, collectionPath); err != nil {
			return err
		} else if !exists {
			return fmt.Errorf("failed to write %v: %w: collection %v", objectPath, dao.ErrNotFound, collectionPath)
		}
		result, err := tx.ExecContext(ctx, `UPDATE data_objects SET content = ?, size = ?, modified_at = ? WHERE coll_name = ? AND data_name = ?`,
			data, len(data), now, collectionPath, name)
		if err != nil {
			return fmt.Errorf("failed to write %v: %w", objectPath, err)
		}
		if affected, _ := result.RowsAffected(); affected > 0 {
			return nil
		}
		if owner == "" {
			return fmt.Errorf("failed to write %v: owner was empty", objectPath)
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO data_objects (coll_name, data_name, owner, content, size, created_at, modified_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			collectionPath, name, owner, data, len(data), now, now); err != nil {
			return fmt.Errorf("failed to create %v: %w", objectPath, err)
		}
		return nil
	})
}

// ReadObject returns data object content
func (s *Service) ReadObject(ctx context.Context, objectPath string) ([]byte, error) {
	collectionPath, name, err := store.Split(objectPath)
	if err != nil {
		return nil, err
	}
	var data []byte
	err = s.db.QueryRowContext(ctx, `SELECT content FROM data_objects WHERE coll_name = ? AND data_name = ?`, collectionPath, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read %v: %w", objectPath, dao.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %v: %w", objectPath, err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// SetAttribute replaces all values of an attribute
func (s *Service) SetAttribute(ctx context.Context, objectPath, name string, values ...string) error {
	if name == "" {
		return fmt.Errorf("attribute name was empty")
	}
	collectionPath, dataName, err := store.Split(objectPath)
	if err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if exists, err := s.exists(ctx, tx, `SELECT COUNT(*) FROM data_objects WHERE coll_name = ? AND data_name = ?`, collectionPath, dataName); err != nil {
			return err
		} else if !exists {
			return fmt.Errorf("failed to set %v on %v: %w", name, objectPath, dao.ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM data_meta WHERE coll_name = ? AND data_name = ? AND attr_name = ?`, collectionPath, dataName, name); err != nil {
			return fmt.Errorf("failed to clear %v on %v: %w", name, objectPath, err)
		}
		for _, value := range values {
			if _, err := tx.ExecContext(ctx, `INSERT INTO data_meta (coll_name, data_name, attr_name, attr_value) VALUES (?, ?, ?, ?)`, collectionPath, dataName, name, value); err != nil {
				return fmt.Errorf("failed to set %v on %v: %w", name, objectPath, err)
			}
		}
		return nil
	})
}

// SetACL grants access on a path; recursive grants apply to every existing descendant
func (s *Service) SetACL(ctx context.Context, acl *store.ACL) error {
	if err := acl.Validate(); err != nil {
		return err
	}
	target := path.Clean(acl.Path)
	return s.inTx(ctx, func(tx *sql.Tx) error {
		targets, err := s.aclTargets(ctx, tx, target, acl.Mode == store.ModeRecursive)
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			return fmt.Errorf("failed to set acl on %v: %w", acl.Path, dao.ErrNotFound)
		}
		for _, candidate := range targets {
			if acl.Access == store.AccessNull {
				_, err = tx.ExecContext(ctx, `DELETE FROM acls WHERE path = ? AND principal = ?`, candidate, acl.Principal)
			} else {
				_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO acls (path, principal, mode, access) VALUES (?, ?, ?, ?)`, candidate, acl.Principal, string(acl.Mode), string(acl.Access))
			}
			if err != nil {
				return fmt.Errorf("failed to set acl on %v: %w", candidate, err)
			}
		}
		return nil
	})
}

func (s *Service) aclTargets(ctx context.Context, tx *sql.Tx, target string, recursive bool) ([]string, error) {
	var result []string
	collectionSQL := `SELECT path FROM collections WHERE path = ?`
	objectSQL := `SELECT coll_name || '/' || data_name FROM data_objects WHERE coll_name || '/' || data_name = ?`
	args := []interface{}{target}
	if recursive {
		prefix := query.EscapeLike(target) + "/%"
		collectionSQL += ` OR path LIKE ? ESCAPE '\'`
		objectSQL += ` OR coll_name = ? OR coll_name LIKE ? ESCAPE '\'`
		args = append(args, prefix)
	}
	collected, err := s.collect(ctx, tx, collectionSQL, args...)
	if err != nil {
		return nil, err
	}
	result = append(result, collected...)
	objectArgs := []interface{}{target}
	if recursive {
		objectArgs = append(objectArgs, target, query.EscapeLike(target)+"/%")
	}
	if collected, err = s.collect(ctx, tx, objectSQL, objectArgs...); err != nil {
		return nil, err
	}
	return append(result, collected...), nil
}

// Permissions returns ACLs granted on a path
func (s *Service) Permissions(ctx context.Context, aPath string) ([]*store.ACL, error) {
	target := path.Clean(aPath)
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT (SELECT COUNT(*) FROM collections WHERE path = ?) + (SELECT COUNT(*) FROM data_objects WHERE coll_name || '/' || data_name = ?)`, target, target).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to get acl of %v: %w", aPath, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("failed to get acl of %v: %w", aPath, dao.ErrNotFound)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT principal, mode, access FROM acls WHERE path = ? ORDER BY principal`, target)
	if err != nil {
		return nil, fmt.Errorf("failed to get acl of %v: %w", aPath, err)
	}
	defer rows.Close()
	var result []*store.ACL
	for rows.Next() {
		acl := &store.ACL{Path: target}
		var mode, access string
		if err = rows.Scan(&acl.Principal, &mode, &access); err != nil {
			return nil, err
		}
		acl.Mode, acl.Access = store.Mode(mode), store.Access(access)
		result = append(result, acl)
	}
	return result, rows.Err()
}

// CreateUser registers a user or group
func (s *Service) CreateUser(ctx context.Context, aUser *store.User) error {
	if aUser == nil || aUser.Name == "" {
		return fmt.Errorf("user name was empty")
	}
	userType := aUser.Type
	if userType == "" {
		userType = store.UserTypeUser
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO users (name, zone, type) VALUES (?, ?, ?)`, aUser.Name, aUser.Zone, userType); err != nil {
		return fmt.Errorf("failed to create user %v: %w", aUser.Name, err)
	}
	return nil
}

// AddMember adds a user to a group
func (s *Service) AddMember(ctx context.Context, group, member string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if exists, err := s.exists(ctx, tx, `SELECT COUNT(*) FROM users WHERE name = ? AND type = ?`, group, store.UserTypeGroup); err != nil {
			return err
		} else if !exists {
			return fmt.Errorf("failed to add %v: %w: group %v", member, dao.ErrNotFound, group)
		}
		if exists, err := s.exists(ctx, tx, `SELECT COUNT(*) FROM users WHERE name = ?`, member); err != nil {
			return err
		} else if !exists {
			return fmt.Errorf("failed to add to %v: %w: user %v", group, dao.ErrNotFound, member)
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO group_members (group_name, user_name) VALUES (?, ?)`, group, member); err != nil {
			return fmt.Errorf("failed to add %v to %v: %w", member, group, err)
		}
		return nil
	})
}

// SetUserAttribute appends a user attribute value
func (s *Service) SetUserAttribute(ctx context.Context, name, attrName, value string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if exists, err := s.exists(ctx, tx, `SELECT COUNT(*) FROM users WHERE name = ?`, name); err != nil {
			return err
		} else if !exists {
			return fmt.Errorf("failed to set %v: %w: user %v", attrName, dao.ErrNotFound, name)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO user_meta (user_name, attr_name, attr_value) VALUES (?, ?, ?)`, name, attrName, value); err != nil {
			return fmt.Errorf("failed to set %v on %v: %w", attrName, name, err)
		}
		return nil
	})
}

func (s *Service) exists(ctx context.Context, tx *sql.Tx, SQL string, args ...interface{}) (bool, error) {
	var count int
	if err := tx.QueryRowContext(ctx, SQL, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return count > 0, nil
}

func (s *Service) collect(ctx context.Context, tx *sql.Tx, SQL string, args ...interface{}) ([]string, error) {
	rows, err := tx.QueryContext(ctx, SQL, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []string
	for rows.Next() {
		var value string
		if err = rows.Scan(&value); err != nil {
			return nil, err
		}
		result = append(result, value)
	}
	return result, rows.Err()
}

func (s *Service) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

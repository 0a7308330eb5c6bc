// Package request persists data requests, reviews and evaluations as objects
// of a request collection. Every read is a live store query; nothing is cached.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/viant/datarequest/internal/idgen"
	"github.com/viant/datarequest/model"
	"github.com/viant/datarequest/service/dao"
	"github.com/viant/datarequest/service/query"
	"github.com/viant/datarequest/service/store"
	"github.com/viant/toolbox"
)

// ErrAmbiguousState is returned when a request carries more than one status value
var ErrAmbiguousState = errors.New("request: ambiguous state")

// ErrInvalidPayload is returned when a payload is not a JSON object
var ErrInvalidPayload = errors.New("request: payload is not a JSON object")

// Service represents request repository
type Service struct {
	store  store.Service
	layout model.Layout
	newID  func() string
}

// Layout returns the store layout
func (s *Service) Layout() model.Layout {
	return s.layout
}

// Create stores a new request collection and payload object owned by owner and
// copies top-level scalar payload fields onto the payload object as attributes.
func (s *Service) Create(ctx context.Context, owner string, payload []byte) (string, error) {
	fields, err := decodeObject(payload)
	if err != nil {
		return "", err
	}
	requestID := s.newID()
	if err = s.store.CreateCollection(ctx, owner, s.layout.Collection(requestID)); err != nil {
		return "", fmt.Errorf("failed to create request %v: %w", requestID, err)
	}
	if err = s.WritePayload(ctx, owner, requestID, payload); err != nil {
		return requestID, err
	}
	payloadPath := s.layout.Payload(requestID)
	for _, name := range sortedNames(fields) {
		if isProtected(name) {
			continue
		}
		value, ok := scalar(fields[name])
		if !ok {
			continue
		}
		if err = s.store.SetAttribute(ctx, payloadPath, name, value); err != nil {
			return requestID, fmt.Errorf("failed to set %v on request %v: %w", name, requestID, err)
		}
	}
	return requestID, nil
}

// WritePayload writes the payload object verbatim
func (s *Service) WritePayload(ctx context.Context, owner, requestID string, payload []byte) error {
	if err := s.store.WriteObject(ctx, owner, s.layout.Payload(requestID), payload); err != nil {
		return fmt.Errorf("failed to write request %v: %w", requestID, err)
	}
	return nil
}

// ReadPayload returns the payload object bytes as written
func (s *Service) ReadPayload(ctx context.Context, requestID string) ([]byte, error) {
	data, err := s.store.ReadObject(ctx, s.layout.Payload(requestID))
	if err != nil {
		return nil, fmt.Errorf("failed to read request %v: %w", requestID, err)
	}
	return data, nil
}

// ReadStatus returns the single status value of a request
func (s *Service) ReadStatus(ctx context.Context, requestID string) (model.Status, error) {
	values, err := s.attribute(ctx, requestID, model.PayloadObject, model.AttributeStatus)
	if err != nil {
		return "", err
	}
	switch len(values) {
	case 0:
		return "", fmt.Errorf("status of request %v: %w", requestID, dao.ErrNotFound)
	case 1:
		return model.ParseStatus(values[0])
	}
	return "", fmt.Errorf("%w: request %v has %d status values", ErrAmbiguousState, requestID, len(values))
}

// Reviewers returns the current reviewer set
func (s *Service) Reviewers(ctx context.Context, requestID string) ([]string, error) {
	return s.attribute(ctx, requestID, model.PayloadObject, model.AttributeReviewers)
}

// Owners returns owner names of the payload object
func (s *Service) Owners(ctx context.Context, requestID string) ([]string, error) {
	rows, err := s.objects(ctx, requestID, model.PayloadObject, query.DataOwnerName)
	if err != nil {
		return nil, err
	}
	return rows.Values(query.DataOwnerName), nil
}

// Attributes returns all payload object attributes
func (s *Service) Attributes(ctx context.Context, requestID string) (map[string][]string, error) {
	aQuery, err := query.Select(query.MetaDataAttrName, query.MetaDataAttrValue).
		Where("COLL_NAME = ? AND DATA_NAME = ?", s.layout.Collection(requestID), model.PayloadObject)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.Query(ctx, aQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to read attributes of request %v: %w", requestID, err)
	}
	result := map[string][]string{}
	for _, row := range rows {
		name := row[query.MetaDataAttrName]
		result[name] = append(result[name], row[query.MetaDataAttrValue])
	}
	return result, nil
}

// Load returns the request with its payload, status and owner
func (s *Service) Load(ctx context.Context, requestID string) (*model.DataRequest, error) {
	rows, err := s.objects(ctx, requestID, model.PayloadObject, query.DataOwnerName, query.DataCreateTime)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("request %v: %w", requestID, dao.ErrNotFound)
	}
	if len(rows) > 1 {
		return nil, fmt.Errorf("%w: request %v has %d owners", ErrAmbiguousState, requestID, len(rows))
	}
	ret := &model.DataRequest{ID: requestID, Owner: rows[0][query.DataOwnerName]}
	if seconds, err := strconv.ParseInt(rows[0][query.DataCreateTime], 10, 64); err == nil {
		ret.CreatedAt = time.Unix(seconds, 0).UTC()
	}
	if ret.Payload, err = s.ReadPayload(ctx, requestID); err != nil {
		return nil, err
	}
	status, err := s.ReadStatus(ctx, requestID)
	if err != nil && !errors.Is(err, dao.ErrNotFound) {
		return nil, err
	}
	ret.Status = status
	return ret, nil
}

// WriteReview writes the author's review; resubmission overwrites it
func (s *Service) WriteReview(ctx context.Context, requestID, author string, payload []byte) error {
	if _, err := decodeObject(payload); err != nil {
		return err
	}
	if err := s.store.WriteObject(ctx, author, s.layout.Object(requestID, model.ReviewObject(author)), payload); err != nil {
		return fmt.Errorf("failed to write review of %v on %v: %w", author, requestID, err)
	}
	return nil
}

// WriteEvaluation writes the author's evaluation and its decision attribute
func (s *Service) WriteEvaluation(ctx context.Context, requestID, author string, decision model.Decision, payload []byte) error {
	if _, err := decodeObject(payload); err != nil {
		return err
	}
	objectPath := s.layout.Object(requestID, model.EvaluationObject(author))
	if err := s.store.WriteObject(ctx, author, objectPath, payload); err != nil {
		return fmt.Errorf("failed to write evaluation of %v on %v: %w", author, requestID, err)
	}
	if err := s.store.SetAttribute(ctx, objectPath, model.AttributeDecision, string(decision)); err != nil {
		return fmt.Errorf("failed to set decision of %v on %v: %w", author, requestID, err)
	}
	return nil
}

// Reviews returns every review of a request ordered by object name
func (s *Service) Reviews(ctx context.Context, requestID string) ([]*model.Review, error) {
	names, err := s.objectNames(ctx, requestID, model.ReviewPrefix)
	if err != nil {
		return nil, err
	}
	var result []*model.Review
	for _, name := range names {
		data, err := s.store.ReadObject(ctx, s.layout.Object(requestID, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %v of %v: %w", name, requestID, err)
		}
		result = append(result, &model.Review{RequestID: requestID, Author: author(name, model.ReviewPrefix), Payload: data})
	}
	return result, nil
}

// Evaluations returns every evaluation of a request ordered by object name
func (s *Service) Evaluations(ctx context.Context, requestID string) ([]*model.Evaluation, error) {
	names, err := s.objectNames(ctx, requestID, model.EvaluationPrefix)
	if err != nil {
		return nil, err
	}
	var result []*model.Evaluation
	for _, name := range names {
		data, err := s.store.ReadObject(ctx, s.layout.Object(requestID, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %v of %v: %w", name, requestID, err)
		}
		values, err := s.attribute(ctx, requestID, name, model.AttributeDecision)
		if err != nil {
			return nil, err
		}
		evaluation := &model.Evaluation{RequestID: requestID, Author: author(name, model.EvaluationPrefix), Payload: data}
		if len(values) == 1 {
			evaluation.Decision = model.Decision(values[0])
		}
		result = append(result, evaluation)
	}
	return result, nil
}

func (s *Service) objects(ctx context.Context, requestID, name string, columns ...query.Column) (query.Rows, error) {
	aQuery, err := query.Select(columns...).
		Where("COLL_NAME = ? AND DATA_NAME = ?", s.layout.Collection(requestID), name)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.Query(ctx, aQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query %v of %v: %w", name, requestID, err)
	}
	return rows, nil
}

func (s *Service) objectNames(ctx context.Context, requestID, prefix string) ([]string, error) {
	aQuery, err := query.Select(query.DataName).
		Where("COLL_NAME = ? AND DATA_NAME LIKE ?", s.layout.Collection(requestID), query.EscapeLike(prefix)+"%")
	if err != nil {
		return nil, err
	}
	rows, err := s.store.Query(ctx, aQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list %v objects of %v: %w", prefix, requestID, err)
	}
	names := rows.Values(query.DataName)
	sort.Strings(names)
	return names, nil
}

func (s *Service) attribute(ctx context.Context, requestID, name, attribute string) ([]string, error) {
	aQuery, err := query.Select(query.MetaDataAttrValue).
		Where("COLL_NAME = ? AND DATA_NAME = ? AND META_DATA_ATTR_NAME = ?", s.layout.Collection(requestID), name, attribute)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.Query(ctx, aQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to read %v of %v: %w", attribute, requestID, err)
	}
	return rows.Values(query.MetaDataAttrValue), nil
}

func author(name, prefix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(name, prefix), model.ObjectSuffix)
}

func isProtected(name string) bool {
	return name == model.AttributeStatus || name == model.AttributeReviewers
}

func decodeObject(payload []byte) (map[string]interface{}, error) {
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	var fields map[string]interface{}
	if err := decoder.Decode(&fields); err != nil || fields == nil {
		return nil, ErrInvalidPayload
	}
	return fields, nil
}

func scalar(value interface{}) (string, bool) {
	switch actual := value.(type) {
	case json.Number:
		return actual.String(), true
	case string, bool:
		return toolbox.AsString(actual), true
	}
	return "", false
}

func sortedNames(fields map[string]interface{}) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a request repository
func New(srv store.Service, layout model.Layout, options ...Option) *Service {
	ret := &Service{store: srv, layout: layout, newID: idgen.New}
	for _, option := range options {
		option(ret)
	}
	return ret
}

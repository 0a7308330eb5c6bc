package datarequest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/viant/datarequest/model"
	"github.com/viant/datarequest/policy"
	"github.com/viant/datarequest/service/api"
	"github.com/viant/datarequest/service/dao"
	"github.com/viant/datarequest/service/event"
	"github.com/viant/datarequest/service/messaging"
	"github.com/viant/datarequest/service/metadata"
	"github.com/viant/datarequest/service/notify"
	"github.com/viant/datarequest/service/notify/memory"
	"github.com/viant/datarequest/service/notify/sendmail"
	"github.com/viant/datarequest/service/notify/smtp"
	"github.com/viant/datarequest/service/store"
	"github.com/viant/datarequest/service/store/fs"
	"github.com/viant/datarequest/service/store/sqlite"
	"github.com/viant/datarequest/service/workflow"
	"github.com/viant/datarequest/tracing"
)

// Service wires the object store, metadata agent, notification transport,
// workflow engine and remote call dispatcher from a Config.
type Service struct {
	config       *Config
	store        ObjectStore
	sender       notify.Sender
	logger       *slog.Logger
	eventService *event.Service
	engine       *workflow.Engine
	api          *api.Service
	tracingErr   error
}

// Config returns service config
func (s *Service) Config() *Config {
	return s.config
}

// Engine returns the workflow engine
func (s *Service) Engine() *workflow.Engine {
	return s.engine
}

// API returns the remote call dispatcher
func (s *Service) API() *api.Service {
	return s.api
}

// Store returns the object store
func (s *Service) Store() ObjectStore {
	return s.store
}

// Sender returns the notification sender
func (s *Service) Sender() notify.Sender {
	return s.sender
}

// Call executes a remote call on behalf of principal
func (s *Service) Call(ctx context.Context, principal, method string, args ...string) *api.Result {
	return s.api.Call(ctx, principal, method, args...)
}

// CreateGroup creates a group with attributes set in name order
func (s *Service) CreateGroup(ctx context.Context, name string, attributes map[string]string) error {
	if err := s.store.CreateUser(ctx, &store.User{Name: name, Zone: s.config.Zone, Type: store.UserTypeGroup}); err != nil {
		return err
	}
	names := make([]string, 0, len(attributes))
	for k := range attributes {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, attrName := range names {
		if err := s.store.SetUserAttribute(ctx, name, attrName, attributes[attrName]); err != nil {
			return err
		}
	}
	return nil
}

// AddMember adds user to group, registering the user when unknown
func (s *Service) AddMember(ctx context.Context, group, user string) error {
	err := s.store.AddMember(ctx, group, user)
	if err == nil || !errors.Is(err, dao.ErrNotFound) {
		return err
	}
	if createErr := s.store.CreateUser(ctx, &store.User{Name: user, Zone: s.config.Zone, Type: store.UserTypeUser}); createErr != nil {
		return err
	}
	return s.store.AddMember(ctx, group, user)
}

// Close releases the store and stops event listeners
func (s *Service) Close() error {
	if s.eventService != nil {
		s.eventService.Close()
	}
	if closer, ok := s.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (s *Service) init(ctx context.Context) (err error) {
	if s.tracingErr != nil {
		return fmt.Errorf("failed to init tracing: %w", s.tracingErr)
	}
	if s.config.Tracing.Enabled {
		if err = tracing.Init(s.config.Tracing.ServiceName, "", s.config.Tracing.OutputFile); err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.store == nil {
		if s.store, err = openStore(ctx, &s.config.Store); err != nil {
			return err
		}
	}
	if s.eventService == nil && s.config.Events.Enabled {
		if s.eventService, err = newAuditLog(&s.config.Events, s.logger); err != nil {
			return err
		}
	}
	if s.sender == nil {
		if s.sender, err = newSender(s.config); err != nil {
			return err
		}
	}
	layout := model.Layout{Root: s.config.CollectionRoot}
	newQueue, err := metadata.QueuesOf(messaging.Vendor(s.config.Queue.Vendor), s.config.Queue.BasePath)
	if err != nil {
		return err
	}
	aPolicy := metadata.DefaultPolicy()
	if s.config.Policy != nil {
		if aPolicy, err = policy.New(s.config.Policy); err != nil {
			return err
		}
	}
	metadataService := metadata.New(s.store, layout,
		metadata.WithQueues(newQueue),
		metadata.WithAgent(metadata.NewAgent(s.store, aPolicy, layout)))
	options := []workflow.Option{
		workflow.WithMetadata(metadataService),
		workflow.WithSender(s.sender),
		workflow.WithTemplates(notify.NewTemplates(s.config.Portal.Domain)),
		workflow.WithLogger(s.logger),
	}
	if s.eventService != nil {
		options = append(options, workflow.WithEvents(s.eventService))
	}
	s.engine = workflow.New(&s.config.Config, s.store, layout, options...)
	s.api = api.New(s.engine, api.WithLogger(s.logger))
	return nil
}

// newAuditLog logs every committed status transition
func newAuditLog(config *EventsConfig, logger *slog.Logger) (*event.Service, error) {
	options := []event.Option{event.WithLogger(logger)}
	if config.BasePath != "" {
		options = append(options, event.WithFsBasePath(config.BasePath))
	}
	ret, err := event.New(messaging.Vendor(config.Vendor), options...)
	if err != nil {
		return nil, err
	}
	err = event.SetListenerOf[model.Transition](ret, func(ctx context.Context, e *event.Event[model.Transition]) error {
		logger.InfoContext(ctx, "status transition",
			"requestId", e.Data.RequestID, "from", string(e.Data.From), "to", string(e.Data.To), "principal", e.Data.Principal)
		return nil
	})
	if err != nil {
		ret.Close()
		return nil, err
	}
	return ret, nil
}

func openStore(ctx context.Context, config *StoreConfig) (ObjectStore, error) {
	switch config.Vendor {
	case StoreSQLite:
		return sqlite.Open(ctx, config.URL)
	case StoreFS:
		return fs.New(config.URL)
	}
	return nil, fmt.Errorf("unsupported store vendor: %v", config.Vendor)
}

func newSender(config *Config) (notify.Sender, error) {
	switch config.Mail.Transport {
	case MailSMTP:
		return smtp.New(config.smtpConfig())
	case MailSendmail:
		return sendmail.New(&sendmail.Config{
			Host:        config.Mail.Host,
			Credentials: config.Mail.CredentialsURL,
			Command:     config.Mail.Command,
			From:        config.Mail.From,
			TimeoutMs:   config.TimeoutMs,
		}), nil
	case MailMemory:
		return memory.New(), nil
	case MailNone, "":
		return notify.Nop{}, nil
	}
	return nil, fmt.Errorf("unsupported mail transport: %v", config.Mail.Transport)
}

// New creates a datarequest service
func New(ctx context.Context, config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	config.Init()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	ret := &Service{config: config}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(ctx); err != nil {
		return nil, err
	}
	return ret, nil
}

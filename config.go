package datarequest

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/viant/datarequest/policy"
	"github.com/viant/datarequest/service/messaging"
	"github.com/viant/datarequest/service/meta"
	"github.com/viant/datarequest/service/notify/smtp"
	"github.com/viant/datarequest/service/workflow"
)

// EnvPrefix prefixes environment overrides, i.e. DATAREQUEST_STORE_URL
const EnvPrefix = "DATAREQUEST_"

// Store vendors
const (
	StoreFS     = "fs"
	StoreSQLite = "sqlite"
)

// Mail transports
const (
	MailSMTP     = "smtp"
	MailSendmail = "sendmail"
	MailMemory   = "memory"
	MailNone     = "none"
)

// Config is a serialisable representation of the service configuration. It
// can be populated from YAML, JSON and environment variables. Unset fields
// inherit package defaults.
type Config struct {
	workflow.Config `yaml:",inline"`
	CollectionRoot  string         `json:"collectionRoot,omitempty" yaml:"collectionRoot,omitempty" env:"COLLECTION_ROOT"`
	Portal          PortalConfig   `json:"portal" yaml:"portal" envPrefix:"PORTAL_"`
	Store           StoreConfig    `json:"store" yaml:"store" envPrefix:"STORE_"`
	Queue           QueueConfig    `json:"queue" yaml:"queue" envPrefix:"QUEUE_"`
	Mail            MailConfig     `json:"mail" yaml:"mail" envPrefix:"MAIL_"`
	Events          EventsConfig   `json:"events" yaml:"events" envPrefix:"EVENTS_"`
	Tracing         TracingConfig  `json:"tracing" yaml:"tracing" envPrefix:"TRACING_"`
	Policy          *policy.Config `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// PortalConfig names the portal linked from notifications
type PortalConfig struct {
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty" env:"DOMAIN"`
}

// StoreConfig selects the object store backend
type StoreConfig struct {
	Vendor string `json:"vendor,omitempty" yaml:"vendor,omitempty" env:"VENDOR"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty" env:"URL"`
}

// QueueConfig selects the metadata change queue backend
type QueueConfig struct {
	Vendor   string `json:"vendor,omitempty" yaml:"vendor,omitempty" env:"VENDOR"`
	BasePath string `json:"basePath,omitempty" yaml:"basePath,omitempty" env:"BASE_PATH"`
}

// MailConfig selects the notification transport
type MailConfig struct {
	Transport      string `json:"transport,omitempty" yaml:"transport,omitempty" env:"TRANSPORT"`
	From           string `json:"from,omitempty" yaml:"from,omitempty" env:"FROM"`
	Server         string `json:"server,omitempty" yaml:"server,omitempty" env:"SERVER"`
	CredentialsURL string `json:"credentialsURL,omitempty" yaml:"credentialsURL,omitempty" env:"CREDENTIALS_URL"`
	Key            string `json:"key,omitempty" yaml:"key,omitempty" env:"KEY"`
	Host           string `json:"host,omitempty" yaml:"host,omitempty" env:"HOST"`
	Command        string `json:"command,omitempty" yaml:"command,omitempty" env:"COMMAND"`
}

// EventsConfig enables the status transition audit log
type EventsConfig struct {
	Enabled  bool   `json:"enabled,omitempty" yaml:"enabled,omitempty" env:"ENABLED"`
	Vendor   string `json:"vendor,omitempty" yaml:"vendor,omitempty" env:"VENDOR"`
	BasePath string `json:"basePath,omitempty" yaml:"basePath,omitempty" env:"BASE_PATH"`
}

// TracingConfig enables the stdout span exporter
type TracingConfig struct {
	Enabled     bool   `json:"enabled,omitempty" yaml:"enabled,omitempty" env:"ENABLED"`
	ServiceName string `json:"serviceName,omitempty" yaml:"serviceName,omitempty" env:"SERVICE_NAME"`
	OutputFile  string `json:"outputFile,omitempty" yaml:"outputFile,omitempty" env:"OUTPUT_FILE"`
}

// Init sets defaults
func (c *Config) Init() {
	c.Config.Init()
	if c.CollectionRoot == "" {
		c.CollectionRoot = "/" + c.Zone + "/home/datarequests-research"
	}
	if c.Store.Vendor == "" {
		c.Store.Vendor = StoreFS
	}
	if c.Store.URL == "" && c.Store.Vendor == StoreFS {
		c.Store.URL = "mem://localhost/datarequest"
	}
	if c.Queue.Vendor == "" {
		c.Queue.Vendor = string(messaging.VendorMemory)
	}
	if c.Events.Vendor == "" {
		c.Events.Vendor = string(messaging.VendorMemory)
	}
	if c.Mail.Transport == "" {
		c.Mail.Transport = MailNone
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "datarequest"
	}
}

// DefaultConfig returns a Config populated with package defaults
func DefaultConfig() *Config {
	ret := &Config{}
	ret.Init()
	return ret
}

// Validate returns an error describing the first invalid setting
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config was nil")
	}
	if c.TimeoutMs <= 0 {
		return fmt.Errorf("timeoutMs must be > 0")
	}
	switch c.Store.Vendor {
	case StoreFS, StoreSQLite:
		if c.Store.URL == "" {
			return fmt.Errorf("store.url was empty")
		}
	default:
		return fmt.Errorf("unsupported store vendor: %v", c.Store.Vendor)
	}
	if err := validateQueue("queue", c.Queue.Vendor, c.Queue.BasePath); err != nil {
		return err
	}
	if err := validateQueue("events", c.Events.Vendor, c.Events.BasePath); c.Events.Enabled && err != nil {
		return err
	}
	if c.Policy != nil {
		if err := c.Policy.Validate(); err != nil {
			return err
		}
	}
	switch c.Mail.Transport {
	case MailSMTP, MailSendmail:
		if c.Portal.Domain == "" {
			return fmt.Errorf("portal.domain was empty")
		}
		if c.Mail.Transport == MailSMTP {
			return c.smtpConfig().Validate()
		}
	case MailMemory, MailNone:
	default:
		return fmt.Errorf("unsupported mail transport: %v", c.Mail.Transport)
	}
	return nil
}

func validateQueue(section, vendor, basePath string) error {
	switch messaging.Vendor(vendor) {
	case messaging.VendorMemory:
	case messaging.VendorFS:
		if basePath == "" {
			return fmt.Errorf("%v.basePath was empty", section)
		}
	default:
		return fmt.Errorf("unsupported %v vendor: %v", section, vendor)
	}
	return nil
}

func (c *Config) smtpConfig() *smtp.Config {
	return &smtp.Config{Server: c.Mail.Server, From: c.Mail.From, CredentialsURL: c.Mail.CredentialsURL, Key: c.Mail.Key}
}

// LoadConfig loads config from URL, when set, then applies DATAREQUEST_* environment overrides
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	ret := &Config{}
	if URL != "" {
		if err := meta.New(nil).Load(ctx, URL, ret); err != nil {
			return nil, err
		}
	}
	if err := env.ParseWithOptions(ret, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	ret.Init()
	if err := ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, nil
}

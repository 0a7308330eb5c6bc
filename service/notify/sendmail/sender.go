// Package sendmail delivers notifications by running the mail command on a
// local or remote host.
package sendmail

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/afs/url"
	"github.com/viant/datarequest/service/notify"
	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
	rssh "github.com/viant/gosh/runner/ssh"
	"github.com/viant/scy/cred/secret"
	"golang.org/x/crypto/ssh"
)

const (
	// DefaultCommand is the mail user agent
	DefaultCommand = "mail"
	// DefaultTimeoutMs bounds a single delivery
	DefaultTimeoutMs = 30000
	localhost        = "localhost"
)

// Config represents sendmail transport config
type Config struct {
	// Host is ssh://host[:port] or empty for the local host
	Host        string `json:"host,omitempty" yaml:"host,omitempty"`
	Credentials string `json:"credentials,omitempty" yaml:"credentials,omitempty"`
	Command     string `json:"command,omitempty" yaml:"command,omitempty"`
	From        string `json:"from,omitempty" yaml:"from,omitempty"`
	TimeoutMs   int    `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
}

// Init sets defaults
func (c *Config) Init() {
	if c.Command == "" {
		c.Command = DefaultCommand
	}
	if c.TimeoutMs == 0 {
		c.TimeoutMs = DefaultTimeoutMs
	}
}

func (c *Config) isLocal() bool {
	return c.Host == "" || url.Host(c.Host) == localhost
}

// Runner runs a shell command
type Runner interface {
	Run(ctx context.Context, command string, options ...runner.Option) (string, int, error)
	Close() error
}

// Sender represents mail command transport
type Sender struct {
	config *Config
	runner Runner
	mux    sync.Mutex
}

var _ notify.Sender = (*Sender)(nil)

// Send pipes the message body into the mail command
func (s *Sender) Send(ctx context.Context, message *notify.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}
	session, err := s.session(ctx)
	if err != nil {
		return err
	}
	command := Command(s.config, message)
	stdout, status, err := session.Run(ctx, command, runner.WithTimeout(s.config.TimeoutMs))
	if err != nil {
		return fmt.Errorf("failed to send %q to %v: %w", message.Subject, message.To, err)
	}
	if status != 0 {
		return fmt.Errorf("failed to send %q to %v: %v exited with %d: %s", message.Subject, message.To, s.config.Command, status, strings.TrimSpace(stdout))
	}
	return nil
}

// Close releases the shell session
func (s *Sender) Close() error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.runner == nil {
		return nil
	}
	err := s.runner.Close()
	s.runner = nil
	return err
}

func (s *Sender) session(ctx context.Context) (Runner, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.runner != nil {
		return s.runner, nil
	}
	var service *gosh.Service
	var err error
	if s.config.isLocal() {
		service, err = gosh.New(ctx, local.New())
	} else {
		config, cErr := s.sshConfig(ctx)
		if cErr != nil {
			return nil, fmt.Errorf("failed to get ssh config: %w", cErr)
		}
		host := url.Host(s.config.Host)
		if !strings.Contains(host, ":") {
			host += ":22"
		}
		service, err = gosh.New(ctx, rssh.New(host, config))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open mail session on %v: %w", s.config.Host, err)
	}
	s.runner = service
	return service, nil
}

func (s *Sender) sshConfig(ctx context.Context) (*ssh.ClientConfig, error) {
	credentials := s.config.Credentials
	if credentials == "" {
		credentials = localhost
	}
	generic, err := secret.New().GetCredentials(ctx, credentials)
	if err != nil {
		return nil, err
	}
	return generic.SSH.Config(ctx)
}

// Command renders the shell command delivering message
func Command(config *Config, message *notify.Message) string {
	builder := new(strings.Builder)
	builder.WriteString("printf '%s' ")
	builder.WriteString(Quote(message.Body))
	builder.WriteString(" | ")
	builder.WriteString(config.Command)
	builder.WriteString(" -s ")
	builder.WriteString(Quote(message.Subject))
	if config.From != "" {
		builder.WriteString(" -r ")
		builder.WriteString(Quote(config.From))
	}
	builder.WriteString(" -- ")
	builder.WriteString(Quote(message.To))
	return builder.String()
}

// Quote returns a single quoted shell word
func Quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

// New creates a sendmail sender
func New(config *Config, options ...Option) *Sender {
	config.Init()
	ret := &Sender{config: config}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Option represents a sender option
type Option func(s *Sender)

// WithRunner sets the shell session
func WithRunner(aRunner Runner) Option {
	return func(s *Sender) {
		s.runner = aRunner
	}
}

// Package smtp delivers notifications through an SMTP relay. Relay
// credentials are loaded from an encrypted scy secret.
package smtp

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"sync"

	"github.com/viant/datarequest/service/notify"
	"github.com/viant/scy"
	"github.com/viant/scy/cred"
)

// Config represents smtp transport config
type Config struct {
	Server         string `json:"server" yaml:"server"`
	From           string `json:"from" yaml:"from"`
	CredentialsURL string `json:"credentialsURL,omitempty" yaml:"credentialsURL,omitempty"`
	Key            string `json:"key,omitempty" yaml:"key,omitempty"`
}

// Validate checks config
func (c *Config) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("smtp server was empty")
	}
	if _, _, err := net.SplitHostPort(c.Server); err != nil {
		return fmt.Errorf("invalid smtp server %q: %w", c.Server, err)
	}
	if c.From == "" {
		return fmt.Errorf("smtp from address was empty")
	}
	return nil
}

type sendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// Sender represents smtp transport
type Sender struct {
	config  *Config
	secrets *scy.Service
	send    sendFunc
	auth    smtp.Auth
	once    sync.Once
	authErr error
}

var _ notify.Sender = (*Sender)(nil)

// Send delivers message through the relay
func (s *Sender) Send(ctx context.Context, message *notify.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}
	auth, err := s.authenticate(ctx)
	if err != nil {
		return err
	}
	if err = s.send(s.config.Server, auth, s.config.From, []string{message.To}, Encode(s.config.From, message)); err != nil {
		return fmt.Errorf("failed to send %q to %v: %w", message.Subject, message.To, err)
	}
	return nil
}

func (s *Sender) authenticate(ctx context.Context) (smtp.Auth, error) {
	s.once.Do(func() {
		if s.config.CredentialsURL == "" {
			return
		}
		target, err := cred.TargetType("basic")
		if err != nil {
			s.authErr = err
			return
		}
		secret, err := s.secrets.Load(ctx, scy.NewResource(target, s.config.CredentialsURL, s.config.Key))
		if err != nil {
			s.authErr = fmt.Errorf("failed to load smtp credentials from %v: %w", s.config.CredentialsURL, err)
			return
		}
		basic, ok := secret.Target.(*cred.Basic)
		if !ok {
			s.authErr = fmt.Errorf("unsupported smtp credentials type: %T", secret.Target)
			return
		}
		host, _, _ := net.SplitHostPort(s.config.Server)
		s.auth = smtp.PlainAuth("", basic.Username, basic.Password, host)
	})
	return s.auth, s.authErr
}

// Encode renders an RFC 5322 plain text message
func Encode(from string, message *notify.Message) []byte {
	buffer := new(bytes.Buffer)
	buffer.WriteString("From: " + from + "\r\n")
	buffer.WriteString("To: " + message.To + "\r\n")
	buffer.WriteString("Subject: " + message.Subject + "\r\n")
	buffer.WriteString("MIME-Version: 1.0\r\n")
	buffer.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	buffer.WriteString("\r\n")
	buffer.WriteString(strings.ReplaceAll(message.Body, "\n", "\r\n"))
	return buffer.Bytes()
}

// New creates smtp sender
func New(config *Config) (*Sender, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Sender{config: config, secrets: scy.New(), send: smtp.SendMail}, nil
}

package policy

import (
	"fmt"
	"sort"
	"strings"
)

// Mode controls whether the agent writes any attribute at all
type Mode string

const (
	// ModeAuto writes attributes the lists permit
	ModeAuto Mode = "auto"
	// ModeDeny freezes every request attribute
	ModeDeny Mode = "deny"
)

// Config is the declarative form loaded with the service configuration
type Config struct {
	Mode      Mode     `json:"mode,omitempty" yaml:"mode,omitempty"`
	AllowList []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	BlockList []string `json:"block,omitempty" yaml:"block,omitempty"`
}

// Validate checks mode and attribute names
func (c *Config) Validate() error {
	switch c.Mode {
	case "", ModeAuto, ModeDeny:
	default:
		return fmt.Errorf("policy: unsupported mode: %v", c.Mode)
	}
	for _, name := range append(append([]string{}, c.AllowList...), c.BlockList...) {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("policy: empty attribute name")
		}
	}
	return nil
}

// Policy decides which attributes the privileged agent may write.
// Attribute names compare case-insensitively; a block entry overrides an allow entry.
// A nil *Policy permits every attribute.
type Policy struct {
	deny    bool
	allowed map[string]bool
	blocked map[string]bool
}

// Permits reports whether attribute may be written
func (p *Policy) Permits(attribute string) bool {
	if p == nil {
		return true
	}
	if p.deny {
		return false
	}
	key := strings.ToLower(attribute)
	if p.blocked[key] {
		return false
	}
	return len(p.allowed) == 0 || p.allowed[key]
}

// Config returns the declarative form of the policy
func (p *Policy) Config() *Config {
	if p == nil {
		return nil
	}
	ret := &Config{Mode: ModeAuto, AllowList: keys(p.allowed), BlockList: keys(p.blocked)}
	if p.deny {
		ret.Mode = ModeDeny
	}
	return ret
}

// Only returns a policy permitting just the named attributes
func Only(attributes ...string) *Policy {
	return &Policy{allowed: index(attributes), blocked: map[string]bool{}}
}

// New compiles config; nil config yields a nil (permissive) policy
func New(config *Config) (*Policy, error) {
	if config == nil {
		return nil, nil
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Policy{
		deny:    config.Mode == ModeDeny,
		allowed: index(config.AllowList),
		blocked: index(config.BlockList),
	}, nil
}

func index(names []string) map[string]bool {
	ret := make(map[string]bool, len(names))
	for _, name := range names {
		ret[strings.ToLower(name)] = true
	}
	return ret
}

func keys(set map[string]bool) []string {
	var ret []string
	for key := range set {
		ret = append(ret, key)
	}
	sort.Strings(ret)
	return ret
}

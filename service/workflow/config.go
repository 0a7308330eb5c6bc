package workflow

// Default group names and accounts
const (
	DefaultDataManagers       = "datarequests-research-datamanagers"
	DefaultBoard              = "datarequests-research-board-of-directors"
	DefaultCommittee          = "datarequests-research-data-management-committee"
	DefaultOperationalAccount = "rods"
	DefaultTimeoutMs          = 30000
	DefaultZone               = "tempZone"
)

// Groups names the groups gating workflow transitions
type Groups struct {
	DataManagers string `json:"dataManagers,omitempty" yaml:"dataManagers,omitempty" env:"DATA_MANAGERS"`
	Board        string `json:"board,omitempty" yaml:"board,omitempty" env:"BOARD"`
	Committee    string `json:"committee,omitempty" yaml:"committee,omitempty" env:"COMMITTEE"`
}

// Config represents engine config
type Config struct {
	// Zone qualifies user names in group membership checks
	Zone string `json:"zone,omitempty" yaml:"zone,omitempty" env:"ZONE"`

	// OperationalAccount never receives notifications
	OperationalAccount string `json:"operationalAccount,omitempty" yaml:"operationalAccount,omitempty" env:"OPERATIONAL_ACCOUNT"`
	TimeoutMs          int    `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty" env:"TIMEOUT_MS"`
	Groups             Groups `json:"groups" yaml:"groups" envPrefix:"GROUP_"`
}

// Init sets defaults
func (c *Config) Init() {
	if c.Zone == "" {
		c.Zone = DefaultZone
	}
	if c.OperationalAccount == "" {
		c.OperationalAccount = DefaultOperationalAccount
	}
	if c.TimeoutMs == 0 {
		c.TimeoutMs = DefaultTimeoutMs
	}
	if c.Groups.DataManagers == "" {
		c.Groups.DataManagers = DefaultDataManagers
	}
	if c.Groups.Board == "" {
		c.Groups.Board = DefaultBoard
	}
	if c.Groups.Committee == "" {
		c.Groups.Committee = DefaultCommittee
	}
}

// DefaultConfig returns engine defaults
func DefaultConfig() *Config {
	ret := &Config{}
	ret.Init()
	return ret
}

package config

// Storage backends for the wizard record
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// Config provides read-only access to application configuration.
// The app layer depends on this interface only; where the values come from
// (setting.json, THEMIS_* environment, defaults) is an infra concern.
type Config interface {
	// Core settings
	Home() string    // Base directory (THEMIS_HOME)
	Storage() string // "file" or "sqlite" (THEMIS_STORAGE)

	// Wizard
	StateName() string // Record name the wizard state is saved under (THEMIS_STATE_NAME)
	FlowsPath() string // Optional YAML flow catalog (THEMIS_FLOWS_PATH)

	// Feature flags
	Journal() bool // Append wizard events to var/journal.ndjson (THEMIS_JOURNAL)

	// Logging
	StderrLevel() string // Stderr log level (THEMIS_STDERR_LEVEL)

	// Metadata
	ConfigSource() string // Source of configuration: "json", "env", or "default"
	SettingPath() string  // Path to setting.json if loaded from file
}

// AppConfig is the concrete implementation of Config
type AppConfig struct {
	home    string
	storage string

	stateName string
	flowsPath string

	journal bool

	stderrLevel string

	configSource string
	settingPath  string
}

func (c *AppConfig) Home() string         { return c.home }
func (c *AppConfig) Storage() string      { return c.storage }
func (c *AppConfig) StateName() string    { return c.stateName }
func (c *AppConfig) FlowsPath() string    { return c.flowsPath }
func (c *AppConfig) Journal() bool        { return c.journal }
func (c *AppConfig) StderrLevel() string  { return c.stderrLevel }
func (c *AppConfig) ConfigSource() string { return c.configSource }
func (c *AppConfig) SettingPath() string  { return c.settingPath }

// NewAppConfig creates a new AppConfig with the given values
func NewAppConfig(
	home, storage string,
	stateName, flowsPath string,
	journal bool,
	stderrLevel string,
	configSource, settingPath string,
) *AppConfig {
	return &AppConfig{
		home:         home,
		storage:      storage,
		stateName:    stateName,
		flowsPath:    flowsPath,
		journal:      journal,
		stderrLevel:  stderrLevel,
		configSource: configSource,
		settingPath:  settingPath,
	}
}

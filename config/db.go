package config

const (
	defaultDBPath              = ".vigcoin/store"
	defaultNoticePercentage    = 70
	defaultWarnPercentage      = 90
	defaultTerminatePercentage = 95
)

type DBConfig struct {
	Path string `yaml:"path"`
	// Storage capacity thresholds for emitting notices
	NoticePercentage int `yaml:"noticePercentage"`
	// Storage capacity thresholds for emitting warnings
	WarnPercentage int `yaml:"warnPercentage"`
	// Storage capacity thresholds for terminating the process
	TerminatePercentage int `yaml:"terminatePercentage"`

	// Test-only parameters, do not enable outside of tests
	InMemoryDONOTUSE bool `yaml:"-"`
}

// WithDefaults returns a copy of the DBConfig with any missing fields set to
// their default values.
func (c DBConfig) WithDefaults() DBConfig {
	cpy := c
	if cpy.Path == "" {
		cpy.Path = defaultDBPath
	}
	if cpy.NoticePercentage == 0 {
		cpy.NoticePercentage = defaultNoticePercentage
	}
	if cpy.WarnPercentage == 0 {
		cpy.WarnPercentage = defaultWarnPercentage
	}
	if cpy.TerminatePercentage == 0 {
		cpy.TerminatePercentage = defaultTerminatePercentage
	}
	return cpy
}

package config

// dbConfig locates the sqlite download history.
type dbConfig struct {
	Enable bool   `toml:"enable" mapstructure:"enable" json:"enable"`
	Path   string `toml:"path" mapstructure:"path" json:"path"`
}

package config

// DefaultConfigTemplate is a commented config file written by
// `gitstage init` when no user config exists yet.
const DefaultConfigTemplate = `# gitstage configuration

db_path: ~/.gitstage/changes.db       # Change ledger database location
remote: origin                        # Remote that stage branches track
skip_confirmations: false             # Answer every prompt with its default

# Stage order used by 'gitstage init' when --stages is not given.
# Promotion flows left to right.
default_stages:
  - dev
  - testing
  - main
`

// Defaults returns the default configuration values.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"db_path":            "",
		"default_stages":     []string{"dev", "testing", "main"},
		"remote":             "origin",
		"skip_confirmations": false,
	}
}

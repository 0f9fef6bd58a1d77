// Package config loads and validates ghledger configuration from a YAML
// file, environment variables, and an optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the full runtime configuration.
type Config struct {
	GitHub  GitHubConfig
	Notion  NotionConfig
	Project ProjectConfig
	Reverse ReverseConfig
}

// GitHubConfig holds source tracker credentials and scope.
type GitHubConfig struct {
	Token string
	Owner string
	Repo  string
}

// NotionConfig holds ledger credentials and target database.
type NotionConfig struct {
	Token      string
	DatabaseID string
}

// ProjectConfig selects the planning board for status syncing.
type ProjectConfig struct {
	// Name is the board title. Required when status syncing is enabled;
	// there is no silent default.
	Name string
	// AllowFirstBoard permits falling back to the owner's first board when
	// Name is unset. This is a deliberate degraded mode and is logged as
	// such wherever it engages.
	AllowFirstBoard bool
}

// ReverseConfig tunes the reverse status-sync path.
type ReverseConfig struct {
	// Statuses filters which ledger records the reverse sync considers.
	// Empty means the full shared status vocabulary.
	Statuses []string
}

// DefaultConfigName is the config file looked up in the home directory when
// --config is not given.
const DefaultConfigName = ".ghledger.yaml"

// Load reads configuration with the usual precedence: explicit flag values
// are handled by the CLI; here it is env > config file > defaults. A .env
// file in the working directory is folded into the environment first, so
// tokens can live outside the config file.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configPath, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.SetConfigFile(filepath.Join(home, DefaultConfigName))
			// Missing default config is fine; env can carry everything.
			_ = v.ReadInConfig()
		}
	}

	v.SetEnvPrefix("GHLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		GitHub: GitHubConfig{
			Token: firstNonEmpty(v.GetString("github.token"), os.Getenv("GITHUB_TOKEN")),
			Owner: v.GetString("github.owner"),
			Repo:  v.GetString("github.repo"),
		},
		Notion: NotionConfig{
			Token:      firstNonEmpty(v.GetString("notion.token"), os.Getenv("NOTION_TOKEN")),
			DatabaseID: firstNonEmpty(v.GetString("notion.database_id"), os.Getenv("NOTION_DATABASE_ID")),
		},
		Project: ProjectConfig{
			Name:            v.GetString("project.name"),
			AllowFirstBoard: v.GetBool("project.allow_first_board"),
		},
		Reverse: ReverseConfig{
			Statuses: v.GetStringSlice("reverse.statuses"),
		},
	}

	return cfg, nil
}

// Validate checks the preconditions for a run. A missing credential fails
// the whole run up front: no partial progress is meaningful without one.
// requireBoard is set by commands that sync status.
func (c *Config) Validate(requireBoard bool) error {
	var missing []string

	if c.GitHub.Token == "" {
		missing = append(missing, "github.token (or GITHUB_TOKEN)")
	}
	if c.GitHub.Owner == "" {
		missing = append(missing, "github.owner")
	}
	if c.GitHub.Repo == "" {
		missing = append(missing, "github.repo")
	}
	if c.Notion.Token == "" {
		missing = append(missing, "notion.token (or NOTION_TOKEN)")
	}
	if c.Notion.DatabaseID == "" {
		missing = append(missing, "notion.database_id (or NOTION_DATABASE_ID)")
	}
	if requireBoard && c.Project.Name == "" && !c.Project.AllowFirstBoard {
		missing = append(missing, "project.name (or set project.allow_first_board)")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// BoardConfigured reports whether any planning board selection exists.
func (c *Config) BoardConfigured() bool {
	return c.Project.Name != "" || c.Project.AllowFirstBoard
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

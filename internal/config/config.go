// Package config provides centralized configuration management for the
// application, loaded from environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration parameters for the application.
type Config struct {
	Jira   JiraConfig
	GitHub GitHubConfig
	Server ServerConfig
}

// JiraConfig holds Jira specific configuration.
type JiraConfig struct {
	BaseURL    string
	Username   string
	APIToken   string
	ProjectKey string
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	Token         string
	WebhookSecret string
	Owner         string
	Repo          string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port                int
	SimilarityThreshold float64
}

// LoadConfig initializes and loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("jira.base_url", "JIRA_BASE_URL")
	v.BindEnv("jira.username", "JIRA_USERNAME")
	v.BindEnv("jira.api_token", "JIRA_API_TOKEN")
	v.BindEnv("jira.project_key", "JIRA_PROJECT_KEY")
	v.BindEnv("github.token", "GITHUB_TOKEN")
	v.BindEnv("github.webhook_secret", "GITHUB_WEBHOOK_SECRET")
	v.BindEnv("github.owner", "GITHUB_OWNER")
	v.BindEnv("github.repo", "GITHUB_REPO")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.similarity_threshold", "SIMILARITY_THRESHOLD")

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.similarity_threshold", 0.7)

	config := &Config{
		Jira: JiraConfig{
			BaseURL:    v.GetString("jira.base_url"),
			Username:   v.GetString("jira.username"),
			APIToken:   v.GetString("jira.api_token"),
			ProjectKey: v.GetString("jira.project_key"),
		},
		GitHub: GitHubConfig{
			Token:         v.GetString("github.token"),
			WebhookSecret: v.GetString("github.webhook_secret"),
			Owner:         v.GetString("github.owner"),
			Repo:          v.GetString("github.repo"),
		},
		Server: ServerConfig{
			Port:                v.GetInt("server.port"),
			SimilarityThreshold: v.GetFloat64("server.similarity_threshold"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig ensures that all required configuration values are provided.
func validateConfig(config *Config) error {
	var missingVars []string

	if config.Jira.BaseURL == "" {
		missingVars = append(missingVars, "JIRA_BASE_URL")
	}
	if config.Jira.Username == "" {
		missingVars = append(missingVars, "JIRA_USERNAME")
	}
	if config.Jira.APIToken == "" {
		missingVars = append(missingVars, "JIRA_API_TOKEN")
	}
	if config.Jira.ProjectKey == "" {
		missingVars = append(missingVars, "JIRA_PROJECT_KEY")
	}
	if config.GitHub.Token == "" {
		missingVars = append(missingVars, "GITHUB_TOKEN")
	}
	if config.GitHub.WebhookSecret == "" {
		missingVars = append(missingVars, "GITHUB_WEBHOOK_SECRET")
	}
	if config.GitHub.Owner == "" {
		missingVars = append(missingVars, "GITHUB_OWNER")
	}
	if config.GitHub.Repo == "" {
		missingVars = append(missingVars, "GITHUB_REPO")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	if config.Server.SimilarityThreshold < 0 || config.Server.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be between 0 and 1, got %v", config.Server.SimilarityThreshold)
	}

	return nil
}

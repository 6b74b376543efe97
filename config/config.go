package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"roster-bot/settings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DiscordToken     string `env:"DISCORD_TOKEN"`
	AppID            string `env:"APP_ID"`
	PublicKey        string `env:"PUBLIC_KEY"`
	GuildID          string `env:"GUILD_ID"`
	RegisterCommands bool   `env:"ROSTER_REGISTER_COMMANDS" envDefault:"false"`
	MentionRoleID    string `env:"ROSTER_MENTION_ROLE_ID"`
	BuildsChannelID  string `env:"ROSTER_BUILDS_CHANNEL_ID"`

	Port          int    `env:"PORT" envDefault:"3000"`
	LogLevel      string `env:"ROSTER_LOG_LEVEL" envDefault:"info"`
	DatabasePath  string `env:"ROSTER_DB_PATH" envDefault:"roster.db"`
	DefaultPrefix string `env:"DEFAULT_PREFIX" envDefault:"!"`

	PubsubTopic     string `env:"ROSTER_EVENT_TOPIC"`
	Subscription    string `env:"ROSTER_REQUEST_SUBSCRIPTION"`
	PubsubProjectID string `env:"ROSTER_PUBSUB_PROJECT_ID"`
	GSACredentials  string `env:"ROSTER_GSA_CREDENTIALS"`
	AppCredentials  string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	GoogleProjectID string `env:"-"`
	CredentialsFile string `env:"-"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.trim()

	cfg.CredentialsFile = firstNonEmpty(cfg.AppCredentials, cfg.GSACredentials)
	if err := settings.ValidatePrefix(cfg.DefaultPrefix); err != nil {
		log.Warn().Str("prefix", cfg.DefaultPrefix).Msg("DEFAULT_PREFIX is invalid; using " + settings.DefaultPrefix)
		cfg.DefaultPrefix = settings.DefaultPrefix
	}

	if cfg.PubsubEnabled() {
		cfg.GoogleProjectID = getGoogleProjectID(cfg.CredentialsFile, cfg.PubsubProjectID)
		if cfg.GoogleProjectID == "" {
			log.Warn().Msg("Google project ID not resolved; set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_PROJECT_ID or ROSTER_PUBSUB_PROJECT_ID")
		}
	}
	if cfg.PublicKey == "" {
		log.Warn().Msg("PUBLIC_KEY not set; every interaction will be rejected")
	}
	if cfg.RegisterCommands && cfg.AppID == "" {
		log.Warn().Msg("ROSTER_REGISTER_COMMANDS is set without APP_ID; commands will not be registered")
	}
	return cfg, nil
}

func (c *Config) trim() {
	for _, s := range []*string{
		&c.DiscordToken, &c.AppID, &c.PublicKey, &c.GuildID, &c.MentionRoleID, &c.BuildsChannelID,
		&c.LogLevel, &c.DatabasePath, &c.DefaultPrefix, &c.PubsubTopic, &c.Subscription,
		&c.PubsubProjectID, &c.GSACredentials, &c.AppCredentials,
	} {
		*s = strings.TrimSpace(*s)
	}
}

// PubsubEnabled reports whether a request subscription or an event topic is configured.
func (c *Config) PubsubEnabled() bool {
	return c.Subscription != "" || c.PubsubTopic != ""
}

// InteractionKey decodes PUBLIC_KEY, the hex Ed25519 key Discord signs interactions with.
func (c *Config) InteractionKey() (ed25519.PublicKey, error) {
	b, err := hex.DecodeString(c.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("decode PUBLIC_KEY: %w", err)
	}
	if len(b) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("PUBLIC_KEY is %d bytes, want %d", len(b), ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(b), nil
}

func (c *Config) HTTPAddr() string {
	return net.JoinHostPort("0.0.0.0", strconv.Itoa(c.Port))
}

// Redacted returns a view safe for logging
func (c *Config) Redacted() map[string]any {
	return map[string]any{
		"appID":               c.AppID,
		"guildID":             c.GuildID,
		"registerCommands":    c.RegisterCommands,
		"tokenProvided":       c.DiscordToken != "",
		"publicKeyProvided":   c.PublicKey != "",
		"port":                c.Port,
		"logLevel":            c.LogLevel,
		"databasePath":        c.DatabasePath,
		"defaultPrefix":       c.DefaultPrefix,
		"projectID":           c.GoogleProjectID,
		"requestSubscription": c.Subscription,
		"eventTopic":          c.PubsubTopic,
		"credentialsProvided": c.CredentialsFile != "",
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func projectIDFromCredentials(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	var x struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(b, &x); err != nil {
		return "", fmt.Errorf("parse credentials %s: %w", path, err)
	}
	return x.ProjectID, nil
}

func getGoogleProjectID(credsFile string, explicit string) string {
	// 1) Prefer GOOGLE_APPLICATION_CREDENTIALS if set
	if p := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); p != "" {
		if pid, err := projectIDFromCredentials(p); err == nil && pid != "" {
			log.Info().Str("credsFile", p).Msg("using project_id from GOOGLE_APPLICATION_CREDENTIALS")
			return strings.TrimSpace(pid)
		}
		log.Warn().Str("credsFile", p).Msg("project_id not found in credentials file or unreadable")
	}

	// 2) Explicit override
	if explicit := strings.TrimSpace(explicit); explicit != "" {
		log.Info().Str("projectID", explicit).Msg("using ROSTER_PUBSUB_PROJECT_ID for Google project")
		return explicit
	}

	// 3) Deployment override
	if v := strings.TrimSpace(os.Getenv("GOOGLE_PROJECT_ID")); v != "" {
		log.Info().Str("projectID", v).Msg("using GOOGLE_PROJECT_ID from environment")
		return v
	}

	// 4) Common Google envs
	if v := firstNonEmpty(os.Getenv("GOOGLE_CLOUD_PROJECT"), os.Getenv("GCLOUD_PROJECT"), os.Getenv("GCP_PROJECT")); strings.TrimSpace(v) != "" {
		v = strings.TrimSpace(v)
		log.Info().Str("projectID", v).Msg("using Google project from common environment variables")
		return v
	}

	// 5) Fallback to the provided credentials file (ROSTER_GSA_CREDENTIALS)
	if p := strings.TrimSpace(credsFile); p != "" {
		if pid, err := projectIDFromCredentials(p); err == nil && pid != "" {
			log.Info().Str("credsFile", p).Msg("using project_id from provided credentials file")
			return strings.TrimSpace(pid)
		}
	}
	return ""
}

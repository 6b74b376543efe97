package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

var configEnv = []string{
	"DISCORD_TOKEN", "APP_ID", "PUBLIC_KEY", "GUILD_ID", "ROSTER_REGISTER_COMMANDS", "ROSTER_MENTION_ROLE_ID",
	"ROSTER_BUILDS_CHANNEL_ID", "PORT", "ROSTER_LOG_LEVEL", "ROSTER_DB_PATH", "DEFAULT_PREFIX",
	"ROSTER_EVENT_TOPIC", "ROSTER_REQUEST_SUBSCRIPTION", "ROSTER_PUBSUB_PROJECT_ID", "ROSTER_GSA_CREDENTIALS",
	"GOOGLE_APPLICATION_CREDENTIALS", "GOOGLE_PROJECT_ID", "GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT", "GCP_PROJECT",
}

// clearEnv blanks every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnv {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func Test_firstNonEmpty(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"all empty", []string{"", "", ""}, ""},
		{"first non-empty", []string{"a", "b"}, "a"},
		{"later non-empty", []string{"", "b"}, "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := firstNonEmpty(tt.in...)
			if got != tt.want {
				t.Errorf("firstNonEmpty() got=%#v want=%#v", got, tt.want)
			}
		})
	}
}

func Test_Config_HTTPAddr(t *testing.T) {
	tests := []struct {
		name string
		port int
		want string
	}{
		{"default", 3000, "0.0.0.0:3000"},
		{"custom", 9090, "0.0.0.0:9090"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Port: tt.port}
			if got := c.HTTPAddr(); got != tt.want {
				t.Errorf("HTTPAddr() got=%#v want=%#v", got, tt.want)
			}
		})
	}
}

func Test_Config_Redacted(t *testing.T) {
	c := &Config{
		DiscordToken: "secret", AppID: "app", PublicKey: "abcd", GuildID: "g", RegisterCommands: true,
		Port: 3001, LogLevel: "debug", DatabasePath: "/data/roster.db", DefaultPrefix: "?",
		GoogleProjectID: "pid", Subscription: "sub", PubsubTopic: "topic", CredentialsFile: "creds.json",
	}
	got := c.Redacted()
	want := map[string]any{
		"appID":               "app",
		"guildID":             "g",
		"registerCommands":    true,
		"tokenProvided":       true,
		"publicKeyProvided":   true,
		"port":                3001,
		"logLevel":            "debug",
		"databasePath":        "/data/roster.db",
		"defaultPrefix":       "?",
		"projectID":           "pid",
		"requestSubscription": "sub",
		"eventTopic":          "topic",
		"credentialsProvided": true,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Redacted()\n got=%#v\nwant=%#v", got, want)
	}
	for _, v := range got {
		if v == "secret" {
			t.Errorf("Redacted() leaked the token")
		}
	}
}

func Test_Config_InteractionKey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	tests := []struct {
		name    string
		key     string
		wantErr string
	}{
		{"valid", hex.EncodeToString(pub), ""},
		{"not hex", "zz", "decode PUBLIC_KEY"},
		{"short", "abcd", "2 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{PublicKey: tt.key}
			got, err := c.InteractionKey()
			if tt.wantErr == "" {
				if err != nil || !got.Equal(pub) {
					t.Errorf("InteractionKey() got=%x err=%v", got, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("InteractionKey() err=%v want containing %q", err, tt.wantErr)
			}
		})
	}
}

func Test_projectIDFromCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "creds.json")
	if err := os.WriteFile(path, []byte(`{"project_id":"my-proj"}`), 0o600); err != nil {
		t.Fatalf("write temp creds: %#v", err)
	}
	pid, err := projectIDFromCredentials(path)
	if err != nil || pid != "my-proj" {
		t.Errorf("projectIDFromCredentials() pid=%#v err=%#v", pid, err)
	}

	// valid json without project_id returns empty id, no error
	if err := os.WriteFile(path, []byte(`{"nope":1}`), 0o600); err != nil {
		t.Fatalf("write temp creds: %#v", err)
	}
	pid2, err2 := projectIDFromCredentials(path)
	if err2 != nil || pid2 != "" {
		t.Errorf("projectIDFromCredentials(no id) pid=%#v err=%#v", pid2, err2)
	}

	if err := os.WriteFile(path, []byte(`not json`), 0o600); err != nil {
		t.Fatalf("write temp creds: %#v", err)
	}
	if _, err := projectIDFromCredentials(path); err == nil {
		t.Errorf("projectIDFromCredentials(garbage) err=nil")
	}
}

func Test_getGoogleProjectID(t *testing.T) {
	dir := t.TempDir()
	credFile := filepath.Join(dir, "creds.json")
	_ = os.WriteFile(credFile, []byte(`{"project_id":"file-proj"}`), 0o600)

	tests := []struct {
		name     string
		setEnv   map[string]string
		creds    string
		explicit string
		want     string
	}{
		{"from GOOGLE_APPLICATION_CREDENTIALS", map[string]string{"GOOGLE_APPLICATION_CREDENTIALS": credFile}, "", "explicit-proj", "file-proj"},
		{"from explicit ROSTER_PUBSUB_PROJECT_ID", map[string]string{"GOOGLE_PROJECT_ID": "env-proj"}, "", "explicit-proj", "explicit-proj"},
		{"from GOOGLE_PROJECT_ID", map[string]string{"GOOGLE_PROJECT_ID": "env-proj"}, "", "", "env-proj"},
		{"from common env", map[string]string{"GOOGLE_CLOUD_PROJECT": "common-proj"}, "", "", "common-proj"},
		{"from provided credsFile path", map[string]string{}, credFile, "", "file-proj"},
		{"none -> empty", map[string]string{}, "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.setEnv {
				t.Setenv(k, v)
			}
			got := getGoogleProjectID(tt.creds, tt.explicit)
			if got != tt.want {
				t.Errorf("getGoogleProjectID() got=%#v want=%#v", got, tt.want)
			}
		})
	}
}

func Test_Load(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() defaults err=%v", err)
	}
	if cfg.Port != 3000 || cfg.LogLevel != "info" || cfg.DatabasePath != "roster.db" || cfg.DefaultPrefix != "!" || cfg.RegisterCommands || cfg.PubsubEnabled() {
		t.Errorf("Load() defaults unexpected: %#v", cfg)
	}

	t.Setenv("DISCORD_TOKEN", " tok ")
	t.Setenv("APP_ID", "app")
	t.Setenv("PORT", "8081")
	t.Setenv("ROSTER_LOG_LEVEL", "warn")
	t.Setenv("ROSTER_REGISTER_COMMANDS", "true")
	t.Setenv("DEFAULT_PREFIX", "$")
	t.Setenv("ROSTER_REQUEST_SUBSCRIPTION", "sub")
	t.Setenv("ROSTER_PUBSUB_PROJECT_ID", "proj")
	t.Setenv("ROSTER_GSA_CREDENTIALS", "/tmp/missing.json")

	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if cfg.DiscordToken != "tok" || cfg.AppID != "app" || cfg.Port != 8081 || cfg.LogLevel != "warn" || !cfg.RegisterCommands || cfg.DefaultPrefix != "$" {
		t.Errorf("Load() unexpected cfg: %#v", cfg)
	}
	if !cfg.PubsubEnabled() || cfg.GoogleProjectID != "proj" || cfg.CredentialsFile != "/tmp/missing.json" {
		t.Errorf("Load() pubsub cfg: enabled=%v project=%q creds=%q", cfg.PubsubEnabled(), cfg.GoogleProjectID, cfg.CredentialsFile)
	}
}

func Test_Load_Errors(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_PREFIX", "toolong")
	cfg, err := Load()
	if err != nil || cfg.DefaultPrefix != "!" {
		t.Errorf("Load() invalid prefix: cfg=%#v err=%v", cfg, err)
	}

	t.Setenv("PORT", "http")
	if _, err := Load(); err == nil {
		t.Errorf("Load() with bad PORT err=nil")
	}
}

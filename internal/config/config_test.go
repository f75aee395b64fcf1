package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_PORT", "LOG_LEVEL", "RATION_STRICT_CODES",
	"WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "META_VERIFY_TOKEN",
	"WHATSAPP_BASE_URL", "WHATSAPP_API_VERSION", "WHATSAPP_REPORT_RECIPIENT",
	"GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID",
	"REPORT_CRON_SCHEDULE", "TIMEZONE",
	"MONGODB_URI", "MONGODB_DB_NAME", "MONGODB_CONNECT_RETRIES",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
	t.Setenv("TIMEZONE", "UTC")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.False(t, cfg.Ration.StrictCodes)
	assert.Equal(t, "0 20 * * 5", cfg.Reporting.CronSchedule)
	assert.Equal(t, "herdbook", cfg.MongoDB.DBName)
	assert.Equal(t, 5, cfg.MongoDB.ConnectRetries)

	assert.False(t, cfg.WhatsApp.Enabled())
	assert.False(t, cfg.Sheets.Enabled())
	assert.False(t, cfg.MongoDB.Enabled())
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	content := "APP_PORT=9090\nRATION_STRICT_CODES=true\nMONGODB_URI=mongodb://localhost:27017\n" +
		"WHATSAPP_TOKEN=token\nWHATSAPP_PHONE_NUMBER_ID=123\nMETA_VERIFY_TOKEN=verify\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// godotenv never overrides variables that already exist, even empty ones.
	// t.Setenv in clearEnv restores the originals afterwards.
	for _, key := range []string{"APP_PORT", "RATION_STRICT_CODES", "MONGODB_URI", "WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "META_VERIFY_TOKEN"} {
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Ration.StrictCodes)
	assert.True(t, cfg.MongoDB.Enabled())
	assert.True(t, cfg.WhatsApp.Enabled())
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"strict flag", "RATION_STRICT_CODES", "maybe"},
		{"retries", "MONGODB_CONNECT_RETRIES", "many"},
		{"cron", "REPORT_CRON_SCHEDULE", "every friday"},
		{"timezone", "TIMEZONE", "Mars/Olympus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:    ServerConfig{Port: "8080"},
			Reporting: ReportingConfig{CronSchedule: "0 20 * * 5", Timezone: "UTC"},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())

	cfg = base()
	cfg.Server.Port = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.WhatsApp = WhatsAppConfig{AccessToken: "t", PhoneNumberID: "1", BaseURL: "https://graph.facebook.com", APIVersion: "v20.0"}
	assert.Error(t, cfg.Validate(), "verify token is required once WhatsApp is enabled")

	cfg = base()
	cfg.Sheets = SheetsConfig{CredentialsPath: "/etc/creds.json"}
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.MongoDB = MongoDBConfig{URI: "mongodb://localhost", DBName: "herdbook", ConnectRetries: 0}
	assert.Error(t, cfg.Validate())
}

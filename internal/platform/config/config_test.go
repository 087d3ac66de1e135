package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "test-session-secret-0123")
	t.Setenv("ADMIN_PASSWORD", "hunter22")
	t.Setenv("LEDGER_BACKEND", "sheets")
	t.Setenv("GOOGLE_CLIENTS_SHEET_ID", "clients-sheet")
	t.Setenv("GOOGLE_SESSIONS_SHEET_ID", "sessions-sheet")
	t.Setenv("GOOGLE_CREDENTIALS_JSON", `{"type":"service_account"}`)
}

func TestLoad_AllRequiredVarsSet(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "clients-sheet", cfg.GoogleClientsSheetID)
	assert.Equal(t, "sessions-sheet", cfg.GoogleSessionsSheetID)
	assert.Equal(t, "hunter22", cfg.AdminPassword)
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		skipEnv string
		wantErr string
	}{
		{"missing SESSION_SECRET", "SESSION_SECRET", "SESSION_SECRET is required"},
		{"missing ADMIN_PASSWORD", "ADMIN_PASSWORD", "ADMIN_PASSWORD is required"},
		{"missing GOOGLE_CLIENTS_SHEET_ID", "GOOGLE_CLIENTS_SHEET_ID", "GOOGLE_CLIENTS_SHEET_ID is required"},
		{"missing GOOGLE_SESSIONS_SHEET_ID", "GOOGLE_SESSIONS_SHEET_ID", "GOOGLE_SESSIONS_SHEET_ID is required"},
		{"missing GOOGLE_CREDENTIALS_JSON", "GOOGLE_CREDENTIALS_JSON", "GOOGLE_CREDENTIALS_JSON is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.skipEnv, "")

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, 168*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, 30*time.Second, cfg.ClientCacheTTL)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.AIBaseURL)
	assert.Equal(t, "anthropic/claude-3-5-sonnet", cfg.AIModel)
	assert.Equal(t, 30*time.Second, cfg.AITimeout)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTPHost)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.Equal(t, "Coaching Team", cfg.GmailSenderName)
	assert.Equal(t, 5.0, cfg.RateLimitPerSecond)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.MailEnabled())
	assert.Empty(t, cfg.AIKey())
}

func TestLoad_ShortSessionSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_SECRET", "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 16 characters")
}

func TestLoad_BackendSpecificRequirements(t *testing.T) {
	t.Run("postgres needs DATABASE_URL", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("LEDGER_BACKEND", "postgres")
		t.Setenv("DATABASE_URL", "")

		_, err := Load()
		require.Error(t, err)
		assert.Equal(t, "DATABASE_URL is required", err.Error())
	})

	t.Run("sqlite needs nothing extra", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", "test-session-secret-0123")
		t.Setenv("ADMIN_PASSWORD", "hunter22")
		t.Setenv("LEDGER_BACKEND", "sqlite")
		t.Setenv("GOOGLE_CLIENTS_SHEET_ID", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "coaching.db", cfg.SQLitePath)
	})

	t.Run("unknown backend", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("LEDGER_BACKEND", "excel")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LEDGER_BACKEND")
	})
}

func TestConfig_Helpers(t *testing.T) {
	cfg := &Config{
		AppEnv:           "production",
		AnthropicAPIKey:  "anthropic-key",
		GmailSenderEmail: "coach@example.com",
		GmailAppPassword: "app-password",
		CORSOrigins:      "https://a.example, https://b.example ,",
	}

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "anthropic-key", cfg.AIKey())
	assert.True(t, cfg.MailEnabled())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())

	cfg.OpenRouterAPIKey = "openrouter-key"
	assert.Equal(t, "openrouter-key", cfg.AIKey())
}

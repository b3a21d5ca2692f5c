package bootstrap

import (
	"testing"

	"github.com/dalemusser/ecahub/internal/app/system/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAppConfig() AppConfig {
	return AppConfig{
		SessionKey:              "session-key-session-key-session-key!",
		TokenSecret:             "token-secret-token-secret-token-secret",
		CSRFKey:                 "0123456789abcdef0123456789abcdef",
		AuditAuth:               "all",
		EventCompletionSchedule: tasks.DefaultEventCompletionSchedule,
	}
}

func TestValidateApp_Accepts(t *testing.T) {
	require.NoError(t, validateApp(true, validAppConfig()))
}

func TestValidateApp_Rejects(t *testing.T) {
	cases := map[string]func(*AppConfig){
		"short token secret":     func(c *AppConfig) { c.TokenSecret = "short" },
		"csrf key length":        func(c *AppConfig) { c.CSRFKey = "too-short" },
		"empty session key":      func(c *AppConfig) { c.SessionKey = "" },
		"bad schedule":           func(c *AppConfig) { c.EventCompletionSchedule = "every tuesday" },
		"email without password": func(c *AppConfig) { c.SuperAdminEmail = "root@example.com" },
		"unknown audit mode":     func(c *AppConfig) { c.AuditAuth = "sometimes" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validAppConfig()
			mutate(&cfg)
			assert.Error(t, validateApp(false, cfg))
		})
	}
}

func TestValidateApp_DevSecretsOnlyOutsideProd(t *testing.T) {
	cfg := AppConfig{
		SessionKey:              devSessionKey,
		TokenSecret:             devTokenSecret,
		CSRFKey:                 devCSRFKey,
		AuditAuth:               "off",
		EventCompletionSchedule: tasks.DefaultEventCompletionSchedule,
	}
	assert.NoError(t, validateApp(false, cfg))
	assert.Error(t, validateApp(true, cfg))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"https://a.example", "https://b.example"},
		splitList(" https://a.example, ,https://b.example "))
	assert.Nil(t, splitList(""))
}

package config

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": secret,
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.Session.ShortTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.LongTTL)
	assert.True(t, cfg.Session.Revocation)
	assert.False(t, cfg.Cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cfg.Cookie.SameSiteMode())
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "sip_kpbj", cfg.Mongo.Database)
}

func TestLoad_RequiresSecret(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	assert.Error(t, err)
}

func TestLoad_RejectsShortSecret(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "dev-secret",
	}))
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestValidate_CookieModes(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"tunnel preview", map[string]string{"COOKIE_SECURE": "true", "COOKIE_SAMESITE": "none"}, ""},
		{"none without secure", map[string]string{"COOKIE_SAMESITE": "none"}, "COOKIE_SECURE=true"},
		{"unknown samesite", map[string]string{"COOKIE_SAMESITE": "loose"}, "COOKIE_SAMESITE"},
		{"production insecure", map[string]string{"ENV": "production"}, "ENV=production"},
		{"wildcard cors", map[string]string{"CORS_ALLOWED_ORIGINS": "*"}, "CORS_ALLOWED_ORIGINS"},
		{"short ttl above long", map[string]string{"SESSION_SHORT_TTL": "200h"}, "SESSION_SHORT_TTL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := map[string]string{"JWT_SECRET": secret}
			for k, v := range tc.env {
				env[k] = v
			}
			_, err := load(context.Background(), envconfig.MapLookuper(env))
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestSameSiteMode(t *testing.T) {
	assert.Equal(t, http.SameSiteStrictMode, CookieConfig{SameSite: "Strict"}.SameSiteMode())
	assert.Equal(t, http.SameSiteNoneMode, CookieConfig{SameSite: "none"}.SameSiteMode())
	assert.Equal(t, http.SameSiteLaxMode, CookieConfig{SameSite: "lax"}.SameSiteMode())
}

package app

import (
	"strings"
	"testing"

	"minisocial/cmd/security/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSecurityConfig(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "jwt secret missing",
			env:     map[string]string{},
			wantErr: "MINISOCIAL_JWT_SECRET is missing",
		},
		{
			name:    "jwt secret short",
			env:     map[string]string{"MINISOCIAL_JWT_SECRET": "short"},
			wantErr: "MINISOCIAL_JWT_SECRET is too short",
		},
		{
			name:    "paseto key missing",
			env:     map[string]string{"MINISOCIAL_TOKEN_FORMAT": "PASETO"},
			wantErr: "MINISOCIAL_PASETO_V4_SECRET_KEY_HEX is missing",
		},
		{
			name:    "bad ttl",
			env:     map[string]string{"MINISOCIAL_JWT_SECRET": testSecret, "MINISOCIAL_TOKEN_TTL": "soon"},
			wantErr: "security policy:",
		},
		{
			name: "ok",
			env:  map[string]string{"MINISOCIAL_JWT_SECRET": testSecret},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, k := range []string{"MINISOCIAL_JWT_SECRET", "MINISOCIAL_TOKEN_FORMAT", "MINISOCIAL_TOKEN_TTL", "MINISOCIAL_PASETO_V4_SECRET_KEY_HEX"} {
				t.Setenv(k, "")
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadSecurityConfig()
			if tc.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, token.FormatJWT, cfg.Format)
				return
			}
			require.Error(t, err)
			assert.True(t, strings.HasPrefix(err.Error(), "security policy:"), err.Error())
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNew_FailsWithoutSecret(t *testing.T) {
	t.Setenv("MINISOCIAL_JWT_SECRET", "")
	t.Setenv("MINISOCIAL_TOKEN_FORMAT", "")

	_, err := New(t.Context(), Config{}, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MINISOCIAL_JWT_SECRET")
}

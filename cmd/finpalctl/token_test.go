package main

import (
	"bytes"
	"regexp"
	"testing"

	"codeberg.org/finpal/server/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCmd(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	const userID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

	var out bytes.Buffer
	cmd := newTokenCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--user", userID, "--email", "ops@finpal.dev", "--ttl", "1h"})

	require.NoError(t, cmd.Execute())

	match := regexp.MustCompile(`export TEST_TOKEN="([^"]+)"`).FindStringSubmatch(out.String())
	require.Len(t, match, 2)

	claims, err := auth.ValidateJWT("cli-secret", match[1])
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID())
	assert.Equal(t, "ops@finpal.dev", claims.Email)
}

func TestTokenCmd_Errors(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		cmd := newTokenCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{})

		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("invalid user id", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "cli-secret")

		cmd := newTokenCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--user", "not-a-uuid"})

		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid user id")
	})
}

package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("sess-1", "2024-01-01/sess-1.png")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	sessionID, path, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "sess-1", sessionID)
	require.Equal(t, "2024-01-01/sess-1.png", path)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Millisecond*10)
	token, _, err := signer.Generate("sess-1", "2024-01-01/sess-1.png")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	sessionID, path, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "sess-1", sessionID)
	require.Equal(t, "2024-01-01/sess-1.png", path)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("sess-1", "2024-01-01/sess-1.png")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[0] = "sess-2"
	_, _, _, err = signer.Parse(strings.Join(parts, "."), false)
	require.Error(t, err)
}

func TestSignedURLSignerWrongSecret(t *testing.T) {
	token, _, err := NewSignedURLSigner("secret", time.Hour).Generate("sess-1", "a.png")
	require.NoError(t, err)

	_, _, _, err = NewSignedURLSigner("other", time.Hour).Parse(token, false)
	require.Error(t, err)
}

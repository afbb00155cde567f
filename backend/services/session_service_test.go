package services

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hobbyline/cardbinder/backend/models"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	s := NewSessionService("test-secret", "development")

	payload := []byte(`{"user_id":"user-1"}`)
	signed, err := s.SignData(payload)
	require.NoError(t, err)

	decoded, err := s.VerifyAndDecodeData(signed)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestVerifyRejectsTamperedData(t *testing.T) {
	s := NewSessionService("test-secret", "development")

	signed, err := s.SignData([]byte(`{"user_id":"user-1"}`))
	require.NoError(t, err)

	raw, err := base64.URLEncoding.DecodeString(signed)
	require.NoError(t, err)
	raw[0] ^= 0xff
	tampered := base64.URLEncoding.EncodeToString(raw)

	_, err = s.VerifyAndDecodeData(tampered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature verification failed")
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer := NewSessionService("secret-a", "development")
	verifier := NewSessionService("secret-b", "development")

	signed, err := signer.SignData([]byte("hello"))
	require.NoError(t, err)

	_, err = verifier.VerifyAndDecodeData(signed)
	require.Error(t, err)
}

func TestVerifyRejectsShortData(t *testing.T) {
	s := NewSessionService("test-secret", "development")

	short := base64.URLEncoding.EncodeToString([]byte("too short"))
	_, err := s.VerifyAndDecodeData(short)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid data length")
}

func TestVerifyRejectsGarbageEncoding(t *testing.T) {
	s := NewSessionService("test-secret", "development")

	_, err := s.VerifyAndDecodeData("%%% not base64 %%%")
	require.Error(t, err)
}

func TestSignRequiresSecret(t *testing.T) {
	s := NewSessionService("", "development")

	_, err := s.SignData([]byte("data"))
	require.Error(t, err)
}

func TestShouldRefresh(t *testing.T) {
	s := NewSessionService("test-secret", "development")

	fresh := &models.UserSession{ExpiresAt: time.Now().Add(20 * time.Hour)}
	assert.False(t, s.ShouldRefresh(fresh))

	aging := &models.UserSession{ExpiresAt: time.Now().Add(time.Hour)}
	assert.True(t, s.ShouldRefresh(aging))

	expired := &models.UserSession{ExpiresAt: time.Now().Add(-time.Minute)}
	assert.True(t, s.ShouldRefresh(expired))
}

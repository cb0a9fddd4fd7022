package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workforce-ai/corsgate/internal/tokensource"
)

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		value   string
		want    string
		wantErr error
	}{
		{"bearer", "Authorization", "Bearer abc", "abc", nil},
		{"lowercase scheme", "authorization", "bearer abc", "abc", nil},
		{"extra spaces", "Authorization", "  Bearer   abc  ", "abc", nil},
		{"empty", "Authorization", "", "", ErrMissingToken},
		{"bearer without token", "Authorization", "Bearer ", "", ErrMissingToken},
		{"basic scheme", "Authorization", "Basic abc123", "", ErrInvalidToken},
		{"no scheme", "Authorization", "abc123", "", ErrInvalidToken},
		{"custom header raw", "X-Origin-Verify", "abc123", "abc123", nil},
		{"custom header empty", "X-Origin-Verify", "  ", "", ErrMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractToken(tt.header, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHeaderValue(t *testing.T) {
	headers := map[string]string{"authorization": "Bearer x", "X-ORIGIN-VERIFY": "y"}

	assert.Equal(t, "Bearer x", HeaderValue(headers, "Authorization"))
	assert.Equal(t, "y", HeaderValue(headers, "x-origin-verify"))
	assert.Equal(t, "", HeaderValue(headers, "X-Missing"))
}

func TestStaticVerifier_Accepts(t *testing.T) {
	v := NewStaticVerifier("cloudfront", tokensource.Static("s3cret"))

	p, err := v.Verify(context.Background(), "s3cret")
	require.NoError(t, err)
	assert.Equal(t, &Principal{ID: "cloudfront", Role: ServiceRole, Method: MethodStatic}, p)
}

func TestStaticVerifier_Rejects(t *testing.T) {
	v := NewStaticVerifier("cloudfront", tokensource.Static("s3cret"))

	_, err := v.Verify(context.Background(), "wrong")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.True(t, IsRejection(err))

	_, err = v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = v.Verify(context.Background(), "s3cre")
	assert.ErrorIs(t, err, ErrInvalidToken, "prefix of the token must not match")
}

func TestStaticVerifier_AcceptsPreviousTokenDuringRotation(t *testing.T) {
	v := NewStaticVerifier("cloudfront", tokensource.Static("new"), tokensource.Static("old"))

	_, err := v.Verify(context.Background(), "new")
	assert.NoError(t, err)
	_, err = v.Verify(context.Background(), "old")
	assert.NoError(t, err)
	_, err = v.Verify(context.Background(), "older")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStaticVerifier_SkipsUnconfiguredSource(t *testing.T) {
	v := NewStaticVerifier("cloudfront", tokensource.Static("current"), tokensource.Static(""))

	_, err := v.Verify(context.Background(), "current")
	assert.NoError(t, err)
}

func TestStaticVerifier_FailsClosedOnSourceError(t *testing.T) {
	broken := tokensource.SourceFunc(func(context.Context) (string, error) {
		return "", errors.New("parameter store unavailable")
	})
	v := NewStaticVerifier("cloudfront", broken)

	p, err := v.Verify(context.Background(), "anything")
	require.Error(t, err)
	assert.Nil(t, p)
	assert.False(t, IsRejection(err), "an outage is not a credential rejection")
}

func TestStaticVerifier_NothingConfigured(t *testing.T) {
	v := NewStaticVerifier("cloudfront", tokensource.Static(""))

	_, err := v.Verify(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, tokensource.ErrNotFound)
	assert.False(t, IsRejection(err))
}

func TestJWTVerifier(t *testing.T) {
	v := NewJWTVerifier(testSecret, testIssuer)

	token, err := GenerateToken(testSecret, testIssuer, "alice", "admin", 1)
	require.NoError(t, err)

	p, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, &Principal{ID: "alice", Role: "admin", Method: MethodJWT}, p)

	forged, err := GenerateToken("attacker-secret", testIssuer, "alice", "admin", 1)
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

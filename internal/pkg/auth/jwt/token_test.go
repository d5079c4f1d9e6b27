package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	req := require.New(t)

	payload := &Payload{
		UserID: 42,
		Name:   "Alice",
		Avatar: "avatars/42_abc.png",
	}

	tokenString, err := GenerateToken(payload, testSecret, SessionExpiration)
	req.NoError(err)
	req.NotEmpty(tokenString)

	parsed, err := ParseToken(tokenString, testSecret)
	req.NoError(err)
	req.Equal(int64(42), parsed.UserID)
	req.Equal("Alice", parsed.Name)
	req.Equal("avatars/42_abc.png", parsed.Avatar)
	req.Equal(TokenIssuer, parsed.Issuer)
}

func TestParseTokenWrongSecret(t *testing.T) {
	req := require.New(t)

	tokenString, err := GenerateToken(&Payload{UserID: 1}, testSecret, SessionExpiration)
	req.NoError(err)

	_, err = ParseToken(tokenString, "other-secret")
	req.Error(err)
}

func TestParseTokenExpired(t *testing.T) {
	req := require.New(t)

	tokenString, err := GenerateToken(&Payload{UserID: 1}, testSecret, -time.Minute)
	req.NoError(err)

	_, err = ParseToken(tokenString, testSecret)
	req.Error(err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token", testSecret)
	require.Error(t, err)
}

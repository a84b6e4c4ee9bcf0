package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/buildops-leveling/internal/auth"
)

const secret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func TestParseValidToken(t *testing.T) {
	userID := uuid.New()
	companyID := uuid.New()
	parser := auth.NewParser(secret)

	token := signToken(t, jwt.MapClaims{
		"user_id":    userID.String(),
		"company_id": companyID.String(),
		"exp":        time.Now().Add(time.Hour).Unix(),
	}, secret)

	principal, err := parser.Parse(token)
	require.NoError(t, err)
	require.Equal(t, userID, principal.UserID)
	require.Equal(t, companyID, principal.CompanyID)
}

func TestParseRejectsWrongKey(t *testing.T) {
	parser := auth.NewParser(secret)
	token := signToken(t, jwt.MapClaims{
		"user_id":    uuid.NewString(),
		"company_id": uuid.NewString(),
	}, "other-secret")

	_, err := parser.Parse(token)
	require.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	parser := auth.NewParser(secret)
	token := signToken(t, jwt.MapClaims{
		"user_id":    uuid.NewString(),
		"company_id": uuid.NewString(),
		"exp":        time.Now().Add(-time.Hour).Unix(),
	}, secret)

	_, err := parser.Parse(token)
	require.Error(t, err)
}

func TestParseRejectsMissingClaims(t *testing.T) {
	parser := auth.NewParser(secret)
	token := signToken(t, jwt.MapClaims{
		"user_id": uuid.NewString(),
	}, secret)

	_, err := parser.Parse(token)
	require.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	parser := auth.NewParser(secret)
	_, err := parser.Parse("not-a-token")
	require.Error(t, err)
}

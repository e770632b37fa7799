package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certify-dev/practices-service/internal/model"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestParse(t *testing.T) {
	userID := uuid.New()
	tokenString := signToken(t, testSecret, jwt.MapClaims{
		"user_id": userID.String(),
		"role":    string(model.RoleCommission),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	principal, err := NewParser(testSecret).Parse(tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID, principal.UserID)
	assert.Equal(t, model.RoleCommission, principal.Role)
}

func TestParse_Errors(t *testing.T) {
	userID := uuid.New()
	parser := NewParser(testSecret)

	tests := []struct {
		name  string
		token string
	}{
		{
			name: "wrong secret",
			token: signToken(t, "other-secret", jwt.MapClaims{
				"user_id": userID.String(),
				"role":    string(model.RoleSubmitter),
			}),
		},
		{
			name: "expired",
			token: signToken(t, testSecret, jwt.MapClaims{
				"user_id": userID.String(),
				"role":    string(model.RoleSubmitter),
				"exp":     time.Now().Add(-time.Hour).Unix(),
			}),
		},
		{
			name: "unknown role",
			token: signToken(t, testSecret, jwt.MapClaims{
				"user_id": userID.String(),
				"role":    "AUDITOR",
			}),
		},
		{
			name: "bad user id",
			token: signToken(t, testSecret, jwt.MapClaims{
				"user_id": "not-a-uuid",
				"role":    string(model.RoleSubmitter),
			}),
		},
		{
			name:  "garbage",
			token: "not.a.token",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.token)
			assert.Error(t, err)
		})
	}
}

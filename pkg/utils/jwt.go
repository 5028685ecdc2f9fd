package utils

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var jwtSecret = []byte("secret")

// SetSecret allows injecting the secret from config
func SetSecret(secret string) {
	jwtSecret = []byte(secret)
}

// UserClaimsKey addresses claims in fiber Locals; ClaimsContextKey addresses
// them in a context.Context (Locals keys are plain strings, context keys are
// typed to avoid collisions).
const UserClaimsKey = "user_claims"

type contextKey string

const ClaimsContextKey contextKey = "user_claims"

// ClaimsFromContext returns the claims attached by the auth middleware, or nil.
func ClaimsFromContext(ctx context.Context) *UserClaims {
	claims, _ := ctx.Value(ClaimsContextKey).(*UserClaims)
	return claims
}

type UserClaims struct {
	MemberID string `json:"member_id"`
	TenantID string `json:"tenant_id"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

func GenerateToken(memberID, tenantID primitive.ObjectID, isAdmin bool) (string, error) {
	claims := UserClaims{
		MemberID: memberID.Hex(),
		TenantID: tenantID.Hex(),
		IsAdmin:  isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrTokenSignatureInvalid
}

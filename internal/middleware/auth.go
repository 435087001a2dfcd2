package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

type contextKey string

const dealerIDKey contextKey = "dealerID"

// AuthMiddleware resolves the dealer identity from the bearer token issued
// by the identity service. Handlers never trust a dealer ID from the body.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Get token from Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		// Extract token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		dealerID, err := validateToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithDealerID(r.Context(), dealerID)))
	})
}

// WithDealerID stores the authenticated dealer in ctx
func WithDealerID(ctx context.Context, dealerID string) context.Context {
	return context.WithValue(ctx, dealerIDKey, dealerID)
}

// DealerIDFromContext returns the authenticated dealer, if any
func DealerIDFromContext(ctx context.Context) (string, bool) {
	dealerID, ok := ctx.Value(dealerIDKey).(string)
	return dealerID, ok && dealerID != ""
}

func validateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(viper.GetString("jwt.secret_key")), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("unexpected claims type")
	}

	dealerID, ok := claims["dealer_id"]
	if !ok {
		dealerID, ok = claims["user_id"]
	}
	if !ok || dealerID == nil {
		return "", errors.New("token carries no dealer identity")
	}

	id := fmt.Sprintf("%v", dealerID)
	if id == "" {
		return "", errors.New("token carries no dealer identity")
	}
	return id, nil
}

package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateRoomToken signs a short-lived token granting fan-out access to one
// realtime session.
func GenerateRoomToken(sessionID, userID string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sessionId": sessionID,
		"userId":    userID,
		"exp":       time.Now().Add(24 * time.Hour).Unix(),
		"iat":       time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateRoomToken checks the signature and expiry and returns the session
// and user ids baked into the token.
func ValidateRoomToken(tokenStr string, secret []byte) (sessionID, userID string, err error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("invalid room token")
	}
	sessionID, _ = claims["sessionId"].(string)
	userID, _ = claims["userId"].(string)
	if sessionID == "" {
		return "", "", fmt.Errorf("room token missing sessionId")
	}
	return sessionID, userID, nil
}

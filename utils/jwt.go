package utils

import (
	"errors"
	"os"
	"time"

	"authlink/config"

	"github.com/golang-jwt/jwt"
)

// devSecret signs app tokens outside production when no JWT_SECRET is configured.
const devSecret = "authlink-dev-secret"

var errNoSecret = errors.New("JWT_SECRET is not configured")

func getSecret() ([]byte, error) {
	secret := config.AppConfig.JWTSecret
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		if config.IsProduction() {
			return nil, errNoSecret
		}
		secret = devSecret
	}
	return []byte(secret), nil
}

// GenerateToken creates a signed app token binding an identity to the device it signed in from.
// The token expires after the given duration.
func GenerateToken(uid, deviceID string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": uid,
		"did": deviceID,
		"iat": now.Unix(),
		"exp": now.Add(duration).Unix(),
	}
	secret, err := getSecret()
	if err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return getSecret()
	})
}

// ExtractIDsFromToken returns the identity and device ids carried by a valid app token.
func ExtractIDsFromToken(tokenString string) (string, string, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return "", "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", "", errors.New("token does not contain a valid 'sub' claim")
	}
	did, _ := claims["did"].(string)

	return sub, did, nil
}

package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// GenerateToken issues the session JWT handed out on login. The email is the
// stable identity for the whole session; duel participation is rejected
// without it.
func GenerateToken(email string) (string, error) {
	claims := jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

func parseToken(tokenString string) (string, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected JWT signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid JWT")
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", errors.New("JWT has no email claim")
	}
	return email, nil
}

// JWT_decoder extracts the authenticated email from a request's
// Authorization header. Controllers call this to know who the caller is.
func JWT_decoder(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization header"})
		return "", errors.New("missing Authorization header")
	}
	email, err := parseToken(header)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid JWT"})
		return "", err
	}
	return email, nil
}

// Socketio_JWT_decoder extracts the authenticated email from a socket.io
// handshake's auth data ("authorization" field, "Bearer " prefix expected).
func Socketio_JWT_decoder(authData map[string]interface{}) (string, error) {
	token, ok := authData["authorization"].(string)
	if !ok || token == "" {
		return "", errors.New("missing authorization token in handshake")
	}
	return parseToken(token)
}

// AuthRequired gates the /auth route group on a valid JWT.
func AuthRequired(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if _, err := parseToken(header); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

package middleware

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/judemcastillo/social-media-clone/internal/httpx"
	"github.com/judemcastillo/social-media-clone/internal/models"
)

// Claims is what the identity service signs into a socket/API token. This
// subsystem only verifies; it never issues credentials.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		var tokenString string
		if authHeader != "" {
			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return httpx.Unauthorized(c, "invalid_authorization", "Invalid authorization format")
			}
			tokenString = parts[1]
		} else if q := c.Query("token"); q != "" {
			// Browsers cannot set headers on a websocket handshake.
			tokenString = q
		} else {
			tokenString = c.Cookies("chat_token")
		}

		if tokenString == "" {
			return httpx.Unauthorized(c, "missing_token", "Missing access token")
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			if token.Method == nil || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return []byte(os.Getenv("AUTH_SECRET")), nil
		})
		if err != nil || !token.Valid {
			return httpx.Unauthorized(c, "auth_failed", "Invalid or expired token")
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || claims.UserID == 0 {
			return httpx.Unauthorized(c, "auth_failed", "Invalid token")
		}

		role := claims.Role
		if role == "" {
			role = models.RoleUser
		}
		c.Locals("userID", claims.UserID)
		c.Locals("role", role)

		return c.Next()
	}
}

// NoGuests rejects transient accounts. Guests can browse the app but never
// reach the chat subsystem.
func NoGuests() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if httpx.LocalString(c, "role") == models.RoleGuest {
			return httpx.Forbidden(c, "guests_forbidden", "Guests cannot use chat")
		}
		return c.Next()
	}
}

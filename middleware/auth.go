package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Locals keys set by Authenticate.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
	LocalRoles    = "user_roles"
)

// ErrInvalidToken is returned by verifiers for any token they reject.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the caller resolved from a request.
type Identity struct {
	UserID   string
	Username string
	Roles    []string
}

// TokenVerifier turns a bearer token into an Identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// Claims is the payload of tokens signed by the identity provider.
type Claims struct {
	UserID   string   `json:"user_id,omitempty"`
	Username string   `json:"username,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier checks HS256 tokens with a shared secret.
type JWTVerifier struct {
	Secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{Secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, fmt.Errorf("token expired: %w", ErrInvalidToken)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Identity{}, fmt.Errorf("token malformed: %w", ErrInvalidToken)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Identity{}, fmt.Errorf("bad signature: %w", ErrInvalidToken)
		default:
			return Identity{}, fmt.Errorf("%v: %w", err, ErrInvalidToken)
		}
	}
	if !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return Identity{}, fmt.Errorf("token has no subject: %w", ErrInvalidToken)
	}
	return Identity{UserID: userID, Username: claims.Username, Roles: claims.Roles}, nil
}

// AuthOptions configures Authenticate. Any combination may be set.
type AuthOptions struct {
	GatewayToken string
	Verifiers    []TokenVerifier
}

// Authenticate resolves the caller from gateway headers or a bearer token
// and stores it in Locals. Requests with neither are rejected with 401.
func Authenticate(opts AuthOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := gatewayIdentity(c, opts.GatewayToken); ok {
			setIdentity(c, id)
			return c.Next()
		}

		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Token is missing"})
		}

		var lastErr error
		for _, v := range opts.Verifiers {
			id, err := v.Verify(c.UserContext(), token)
			if err == nil {
				setIdentity(c, id)
				return c.Next()
			}
			lastErr = err
		}
		log.Printf("❌ [AUTH] Rejected token for %s: %v", c.Path(), lastErr)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Token is invalid"})
	}
}

// RequireRole allows the request only when the caller holds role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, r := range Roles(c) {
			if r == role {
				return c.Next()
			}
		}
		log.Printf("🚫 [AUTH] User %s lacks role %q for %s", UserID(c), role, c.Path())
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Forbidden"})
	}
}

// UserID returns the authenticated caller, or "".
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// Username returns the caller's display name when the token carried one.
func Username(c *fiber.Ctx) string {
	name, _ := c.Locals(LocalUsername).(string)
	return name
}

// Roles returns the caller's roles.
func Roles(c *fiber.Ctx) []string {
	roles, _ := c.Locals(LocalRoles).([]string)
	return roles
}

func setIdentity(c *fiber.Ctx, id Identity) {
	c.Locals(LocalUserID, id.UserID)
	c.Locals(LocalUsername, id.Username)
	c.Locals(LocalRoles, id.Roles)
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func splitRoles(s string) []string {
	var roles []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

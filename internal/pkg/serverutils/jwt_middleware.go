package serverutils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const userIdLocal = "user_id"

// Authenticator resolves the caller's identity from a bearer token signed by
// the identity provider.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// IdentityMiddleware attaches the caller's user id when a valid token is
// present and lets the request through either way, so services can order
// their own validation, existence and ownership checks.
func (a *Authenticator) IdentityMiddleware(ctx *fiber.Ctx) error {
	if userId, ok := a.resolve(ctx); ok {
		ctx.Locals(userIdLocal, userId)
	}
	return ctx.Next()
}

// JwtMiddleware rejects requests without a valid token.
func (a *Authenticator) JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
	}

	userId, ok := a.resolve(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	ctx.Locals(userIdLocal, userId)
	return ctx.Next()
}

func (a *Authenticator) resolve(ctx *fiber.Ctx) (string, bool) {
	authHeader := ctx.Get(fiber.HeaderAuthorization)
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " || len(a.secret) == 0 {
		return "", false
	}
	tokenStr := authHeader[7:]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}

	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, true
	}
	if userId, ok := claims["user_id"].(string); ok && userId != "" {
		return userId, true
	}
	return "", false
}

// UserID returns the identity attached by the middlewares, or "" when the
// request is anonymous.
func UserID(ctx *fiber.Ctx) string {
	userId, _ := ctx.Locals(userIdLocal).(string)
	return userId
}

package middleware

import (
	"context"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v3"
)

// subjectKey is the Locals key holding the verified token subject.
const subjectKey = "subject"

// TokenVerifier verifies a raw bearer token and returns its subject.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, rawToken string) (string, error)
}

type oidcVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the issuer and verifies ID tokens issued to clientID.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (TokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, err
	}
	return &oidcVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

func (v *oidcVerifier) VerifyToken(ctx context.Context, rawToken string) (string, error) {
	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return "", err
	}
	return token.Subject, nil
}

// AuthMiddleware guards mutating routes with bearer tokens.
type AuthMiddleware struct {
	verifier TokenVerifier
}

// NewAuthMiddleware creates a new auth middleware instance. A nil verifier
// disables authentication.
func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireToken rejects requests without a valid bearer token.
func (m *AuthMiddleware) RequireToken(c fiber.Ctx) error {
	if m.verifier == nil {
		return c.Next()
	}

	raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return unauthorized(c, "missing bearer token")
	}

	subject, err := m.verifier.VerifyToken(c.Context(), raw)
	if err != nil {
		return unauthorized(c, "invalid bearer token")
	}

	c.Locals(subjectKey, subject)
	return c.Next()
}

// Subject returns the verified token subject, or "" when auth is disabled.
func Subject(c fiber.Ctx) string {
	subject, _ := c.Locals(subjectKey).(string)
	return subject
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}

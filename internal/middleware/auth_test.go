package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
)

type fakeVerifier struct{}

func (fakeVerifier) VerifyToken(ctx context.Context, rawToken string) (string, error) {
	if rawToken == "good" {
		return "operator-1", nil
	}
	return "", errors.New("bad token")
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
		ok       bool
	}{
		{
			name:     "standard bearer",
			header:   "Bearer abc.def",
			expected: "abc.def",
			ok:       true,
		},
		{
			name:     "scheme is case-insensitive",
			header:   "bearer abc",
			expected: "abc",
			ok:       true,
		},
		{
			name:   "basic scheme",
			header: "Basic dXNlcjpwYXNz",
		},
		{
			name:   "empty header",
			header: "",
		},
		{
			name:   "scheme only",
			header: "Bearer ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, ok := bearerToken(tt.header)
			if ok != tt.ok || token != tt.expected {
				t.Errorf("bearerToken(%q) = (%q, %v), want (%q, %v)", tt.header, token, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestRequireToken(t *testing.T) {
	tests := []struct {
		name       string
		verifier   TokenVerifier
		header     string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "auth disabled",
			verifier:   nil,
			wantStatus: http.StatusOK,
			wantBody:   "",
		},
		{
			name:       "missing token",
			verifier:   fakeVerifier{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			verifier:   fakeVerifier{},
			header:     "Bearer bad",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid token",
			verifier:   fakeVerifier{},
			header:     "Bearer good",
			wantStatus: http.StatusOK,
			wantBody:   "operator-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Post("/", NewAuthMiddleware(tt.verifier).RequireToken, func(c fiber.Ctx) error {
				return c.SendString(Subject(c))
			})

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				if string(body) != tt.wantBody {
					t.Errorf("body = %q, want %q", body, tt.wantBody)
				}
			}
		})
	}
}

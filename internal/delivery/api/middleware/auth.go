package middleware

import (
	"strings"

	"github.com/passgage/passgage-go/config"
	"github.com/passgage/passgage-go/internal/delivery/api/response"
	domainerrors "github.com/passgage/passgage-go/internal/domain/errors"
	"github.com/passgage/passgage-go/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	contextKeyUserID    = "userID"
	contextKeyCompanyID = "companyID"

	// HeaderAPIKey is the static key mobile clients present on every request.
	HeaderAPIKey = "X-Api-Key"
)

// AuthMiddleware provides middleware for JWT authentication and API key checks.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	cfg      *config.Config
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, cfg: cfg}
}

// RequireAPIKey rejects requests that do not carry the configured client key.
// An empty configured key disables the check.
func (m *AuthMiddleware) RequireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.cfg.APIKey == "" {
			return next(c)
		}

		if c.Request().Header.Get(HeaderAPIKey) != m.cfg.APIKey {
			return response.Unauthorized(c, "INVALID_API_KEY", "Missing or invalid API key")
		}

		return next(c)
	}
}

// Authenticate is the core middleware function that validates the JWT access token.
// An expired token is reported with a distinct code so clients know a refresh
// attempt is worthwhile.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return response.Unauthorized(c, "TOKEN_MISSING", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "TOKEN_INVALID", "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.ValidateAccessToken(tokenString)
		if err != nil {
			if errors.Is(err, domainerrors.ErrTokenExpired) {
				return response.Unauthorized(c, domainerrors.ErrTokenExpired.ErrorCode(), domainerrors.ErrTokenExpired.Message())
			}

			return response.Unauthorized(c, domainerrors.ErrTokenInvalid.ErrorCode(), domainerrors.ErrTokenInvalid.Message())
		}

		// Set user info on the context for handlers to use
		c.Set(contextKeyUserID, claims.UserID)
		c.Set(contextKeyCompanyID, claims.CompanyID)

		return next(c)
	}
}

// GetUserID extracts the authenticated user's ID set by Authenticate.
func GetUserID(c echo.Context) (uuid.UUID, bool) {
	userID, ok := c.Get(contextKeyUserID).(uuid.UUID)

	return userID, ok
}

// GetCompanyID extracts the authenticated user's company ID set by Authenticate.
func GetCompanyID(c echo.Context) (uuid.UUID, bool) {
	companyID, ok := c.Get(contextKeyCompanyID).(uuid.UUID)

	return companyID, ok
}

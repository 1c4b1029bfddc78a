package middleware

import (
	"context"
	"net/http"
	"strings"

	"emporium_back_end/internal/apperr"
	"emporium_back_end/internal/models"
	"emporium_back_end/internal/services"
	"emporium_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenCookie is the HttpOnly cookie carrying the session token.
const TokenCookie = "token"

type TokenParser interface {
	ParseJWT(tokenString string) (*utils.Claims, error)
}

type RevocationChecker interface {
	IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

// AccountChecker loads the stored account behind a token. It rejects
// unknown and disabled accounts with an apperr kind.
type AccountChecker interface {
	CheckAuth(ctx context.Context, actor services.Actor) (*models.User, error)
}

// AuthRequired accepts the token cookie or an Authorization: Bearer header.
// With accounts set, the role and enabled flag come from the stored user
// rather than the token.
func AuthRequired(tokens TokenParser, revoked RevocationChecker, accounts AccountChecker, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerOrCookie(c)
		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "Token missing, please login again")
			return
		}

		claims, err := tokens.ParseJWT(tokenString)
		if err != nil {
			log.Debug().Err(err).Str("path", c.FullPath()).Msg("rejected token")
			abort(c, http.StatusUnauthorized, "Token expired, please login again")
			return
		}

		if isRevoked(c.Request.Context(), revoked, claims, log) {
			abort(c, http.StatusUnauthorized, "Token expired, please login again")
			return
		}

		user, err := lookupAccount(c.Request.Context(), accounts, claims)
		if err != nil {
			log.Debug().Err(err).Str("user", claims.UserID).Msg("rejected account")
			abort(c, apperr.Status(err), apperr.PublicMessage(err))
			return
		}

		setIdentity(c, claims, user)
		c.Next()
	}
}

// OptionalAuth sets the caller when a valid token for an enabled account
// is present and continues anonymously otherwise.
func OptionalAuth(tokens TokenParser, revoked RevocationChecker, accounts AccountChecker, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerOrCookie(c)
		if tokenString == "" {
			c.Next()
			return
		}
		claims, err := tokens.ParseJWT(tokenString)
		if err != nil || isRevoked(c.Request.Context(), revoked, claims, log) {
			c.Next()
			return
		}
		user, err := lookupAccount(c.Request.Context(), accounts, claims)
		if err != nil {
			log.Debug().Err(err).Str("user", claims.UserID).Msg("ignoring token of rejected account")
			c.Next()
			return
		}
		setIdentity(c, claims, user)
		c.Next()
	}
}

// isRevoked fails open when the blacklist store is unreachable.
func isRevoked(ctx context.Context, revoked RevocationChecker, claims *utils.Claims, log zerolog.Logger) bool {
	if revoked == nil {
		return false
	}
	blacklisted, err := revoked.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		log.Warn().Err(err).Msg("token revocation check failed")
	}
	return blacklisted
}

func lookupAccount(ctx context.Context, accounts AccountChecker, claims *utils.Claims) (*models.User, error) {
	if accounts == nil {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Token expired, please login again")
	}
	return accounts.CheckAuth(ctx, services.Actor{ID: id, Email: claims.Email, IsAdmin: claims.IsAdmin})
}

func setIdentity(c *gin.Context, claims *utils.Claims, user *models.User) {
	email, isAdmin := claims.Email, claims.IsAdmin
	if user != nil {
		email, isAdmin = user.Email, user.IsAdmin
	}
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextEmail, email)
	c.Set(ContextIsAdmin, isAdmin)
	c.Set(ContextClaims, claims)
}

func bearerOrCookie(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

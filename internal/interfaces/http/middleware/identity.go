package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ledgercore/backend/internal/infrastructure/logger"
	"github.com/ledgercore/backend/internal/interfaces/http/dto"
)

// Gin context keys set by the identity middleware
const (
	CompanyIDKey = "company_id"
	ActorIDKey   = "actor_id"
	ActorRoleKey = "actor_role"
)

// RoleAdmin is the role the gateway asserts for administrative callers
const RoleAdmin = "admin"

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// Identity resolves the calling company and actor from the X-Company-ID and
// X-Actor-ID headers and stores them in the gin and request contexts. Every
// bookkeeping route requires a company; the actor is required only by routes
// that write, which enforce it themselves.
//
// The headers stand in for a real authentication layer: this service sits
// behind a gateway that has already verified the caller.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		companyIDStr := c.GetHeader("X-Company-ID")
		if companyIDStr == "" || !uuidPattern.MatchString(companyIDStr) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized,
				"A valid X-Company-ID header is required",
				c.GetString("request_id"),
			))
			return
		}
		companyID, err := uuid.Parse(companyIDStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized,
				"A valid X-Company-ID header is required",
				c.GetString("request_id"),
			))
			return
		}

		c.Set(CompanyIDKey, companyID)
		ctx, _ := logger.WithCompanyID(c.Request.Context(), logger.FromContext(c.Request.Context()), companyID.String())

		if actorIDStr := c.GetHeader("X-Actor-ID"); actorIDStr != "" && uuidPattern.MatchString(actorIDStr) {
			if actorID, err := uuid.Parse(actorIDStr); err == nil {
				c.Set(ActorIDKey, actorID)
				ctx, _ = logger.WithActorID(ctx, logger.FromContext(ctx), actorID.String())
			}
		}
		if role := c.GetHeader("X-Actor-Role"); role != "" {
			c.Set(ActorRoleKey, role)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetCompanyID returns the company resolved by the Identity middleware
func GetCompanyID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(CompanyIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetActorID returns the acting user resolved by the Identity middleware
func GetActorID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ActorIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetActorRole returns the role asserted for the caller, empty when none
func GetActorRole(c *gin.Context) string {
	return c.GetString(ActorRoleKey)
}

// RequireRole rejects the request with 403 unless the caller carries the
// given role. Applied per route on top of Identity.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetActorRole(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden,
				"This operation requires the "+role+" role",
				c.GetString("request_id"),
			))
			return
		}
		c.Next()
	}
}

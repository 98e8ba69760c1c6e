package app

import (
	"Gin_postgres_redis_fleet_custody/config"
	"Gin_postgres_redis_fleet_custody/db"
	"Gin_postgres_redis_fleet_custody/models"
	"Gin_postgres_redis_fleet_custody/session"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

// Context keys set by AuthRequired.
const (
	CtxProfileID = "profileID"
	CtxUsername  = "username"
	CtxRole      = "role"
	CtxKind      = "principalKind"
)

// AuthRequired resolves the principal once per request. Native principals
// carry the session cookie; federated ones carry a bearer token pointing at a
// broker session. Whichever resolves first wins; neither means 401.
func AuthRequired(appSess *session.AppSessionStore, brokerSess *session.BrokerSessionStore, repo *db.Repo, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if ck, err := c.Request.Cookie(AppSessionCookie); err == nil && ck.Value != "" {
			as, err := appSess.Get(ctx, ck.Value)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
				return
			}
			p, err := repo.FindProfileByID(ctx, as.ProfileID)
			if err != nil || !p.Active {
				_ = appSess.Delete(ctx, ck.Value)
				c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
				return
			}
			setPrincipal(c, p, models.KindNative)
			c.Next()
			return
		}

		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			claims, err := ParseFederatedToken(cfg, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid token"})
				return
			}
			bs, err := brokerSess.Load(ctx, claims.SessionID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "session expired"})
				return
			}
			p, err := repo.FindProfileByID(ctx, bs.ProfileID)
			if err != nil || !p.Active {
				c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
				return
			}
			setPrincipal(c, p, models.KindFederated)
			c.Set("brokerSessionID", claims.SessionID)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
	}
}

func setPrincipal(c *gin.Context, p *models.Profile, kind string) {
	c.Set(CtxProfileID, p.ID)
	c.Set(CtxUsername, p.Username)
	c.Set(CtxRole, p.Role)
	c.Set(CtxKind, kind)
}

// RoleRequired re-reads the role from the profile table; the value stashed by
// AuthRequired is for UI hints only.
func RoleRequired(repo *db.Repo, minRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxProfileID)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		uid, _ := v.(string)
		role, err := repo.LookupRole(c.Request.Context(), uid)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if !models.RoleAtLeast(role, minRole) {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

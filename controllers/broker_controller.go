// controllers/broker_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"Gin_postgres_redis_fleet_custody/app"
	"Gin_postgres_redis_fleet_custody/broker"
	"Gin_postgres_redis_fleet_custody/models"
	"Gin_postgres_redis_fleet_custody/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BrokerController struct{ *Srv }

func GetBrokerController(s *Srv) *BrokerController { return &BrokerController{Srv: s} }

// POST /auth/broker/callback
// Finishes the federated login entirely server-side: authorization-code
// exchange, role derivation from directory groups, profile upsert, broker
// session + bearer token issuance. The client only ever sees the code and the
// resulting token.
func (bc *BrokerController) Callback(c *gin.Context) {
	var in struct {
		Code        string `json:"code" binding:"required"`
		RedirectURI string `json:"redirectUri" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	ts, err := bc.Broker.ExchangeCode(ctx, in.Code, in.RedirectURI)
	if err != nil {
		bc.Log.Warn("broker exchange failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, app.H{"error": "code exchange failed"})
		return
	}

	groups, err := bc.Broker.FetchGroups(ctx, ts.AccessToken)
	if err != nil {
		bc.Log.Warn("directory lookup failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, app.H{"error": "directory lookup failed"})
		return
	}
	role := broker.MapGroupsToRole(groups, bc.Cfg.BrokerAdminGroup, bc.Cfg.BrokerGestorGroup)

	username := ts.Email
	if username == "" {
		username = ts.Subject
	}
	p, err := bc.Repo.FindOrCreateProfile(ctx, username, uuid.NewString(), models.KindFederated, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if !p.Active {
		c.JSON(http.StatusForbidden, app.H{"error": "profile inactive"})
		return
	}
	// directory groups win over whatever the profile had
	if p.Role != role {
		_ = bc.Repo.UpdateProfileRole(ctx, p.ID, role)
	}
	sid := uuid.NewString()
	if err := bc.BrokerSess.Save(ctx, sid, &session.BrokerSession{
		ProfileID:    p.ID,
		Subject:      ts.Subject,
		Role:         role,
		AccessToken:  ts.AccessToken,
		RefreshToken: ts.RefreshToken,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	token, exp, err := app.IssueFederatedToken(bc.Cfg, sid, ts.Subject, 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	_ = bc.Repo.TouchProfileLogin(ctx, p.ID, c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, app.H{
		"token":     token,
		"expiresAt": exp.Unix(),
		"profile": app.H{
			"id":          p.ID,
			"username":    p.Username,
			"displayName": p.DisplayName,
			"role":        role,
		},
	})
}

// POST /auth/broker/logout
func (bc *BrokerController) Logout(c *gin.Context) {
	// the bearer token dies with its session
	if sid := c.GetString("brokerSessionID"); sid != "" {
		_ = bc.BrokerSess.Clear(c.Request.Context(), sid)
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

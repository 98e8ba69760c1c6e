// controllers/invite_controller.go
package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"Gin_postgres_redis_fleet_custody/app"
	"Gin_postgres_redis_fleet_custody/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newInviteToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// POST /api/admin/invites (admin). There is no mail delivery here; the
// registration link comes back in the response and is logged for the operator.
func (s *Srv) CreateInvite(c *gin.Context) {
	var in struct {
		Email string `json:"email" binding:"required,email"`
		Role  string `json:"role"`
		Days  int    `json:"days"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	switch in.Role {
	case "":
		in.Role = models.RoleAgent
	case models.RoleAgent, models.RoleManager, models.RoleAdmin:
	default:
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid role"})
		return
	}
	if in.Days <= 0 || in.Days > 30 {
		in.Days = 7
	}

	token := newInviteToken()
	inv, err := s.Repo.CreateInvite(
		c.Request.Context(),
		in.Email,
		in.Role,
		token,
		time.Now().Add(time.Duration(in.Days)*24*time.Hour),
		principalUsername(c),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	link := fmt.Sprintf("%s/register?invite=%s", s.Cfg.WebOrigin, token)
	s.Log.Info("invite created",
		zap.String("email", in.Email),
		zap.String("role", in.Role),
		zap.String("link", link))

	c.JSON(http.StatusCreated, app.H{
		"email":     inv.Email,
		"role":      inv.Role,
		"link":      link,
		"expiresAt": inv.ExpiresAt,
	})
}

// GET /api/admin/profiles (admin)
func (s *Srv) ListProfiles(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	res, err := s.Repo.ListProfiles(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// PUT /api/admin/profiles/:id/role (admin)
func (s *Srv) SetProfileRole(c *gin.Context) {
	var in struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	switch in.Role {
	case models.RoleAgent, models.RoleManager, models.RoleAdmin:
	default:
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid role"})
		return
	}
	if err := s.Repo.UpdateProfileRole(c.Request.Context(), c.Param("id"), in.Role); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// DELETE /api/admin/profiles/:id (admin). Every session of the profile is
// revoked before the rows go.
func (s *Srv) DeleteProfile(c *gin.Context) {
	id := c.Param("id")
	if uid, _ := principalID(c); uid == id {
		c.JSON(http.StatusBadRequest, app.H{"error": "cannot delete yourself"})
		return
	}
	ctx := c.Request.Context()
	_ = s.AppSess.RevokeAllForProfile(ctx, id)
	if err := s.Repo.DeleteProfileByID(ctx, id); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/admin/audit?kind=&limit= (admin)
func (s *Srv) ListAudit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	logs, err := s.Repo.ListAudit(c.Request.Context(), c.Query("kind"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"logs": logs})
}

// POST /auth/logout, native session logout
func (s *Srv) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		_ = s.AppSess.Delete(c.Request.Context(), ck.Value)
	}
	s.setAppCookie(c.Writer, "", -time.Second)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

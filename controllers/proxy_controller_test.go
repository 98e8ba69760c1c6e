package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Gin_postgres_redis_fleet_custody/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dispatchRequest(t *testing.T, pc *ProxyController, body string, principal string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/proxy", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if principal != "" {
		c.Set("profileID", principal)
	}
	pc.Dispatch(c)
	return w
}

func TestDispatchUnknownAction(t *testing.T) {
	pc := NewProxyController(&Srv{})
	w := dispatchRequest(t, pc, `{"action":"vehicle.explode"}`, "uid-1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown action")
}

func TestDispatchRejectsMalformedBody(t *testing.T) {
	pc := NewProxyController(&Srv{})
	w := dispatchRequest(t, pc, `{"params":{}}`, "uid-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDispatchRequiresPrincipal(t *testing.T) {
	pc := NewProxyController(&Srv{})
	w := dispatchRequest(t, pc, `{"action":"vehicle.list"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActionTableShape(t *testing.T) {
	valid := map[string]bool{
		models.RoleAgent:   true,
		models.RoleManager: true,
		models.RoleAdmin:   true,
	}
	for name, action := range proxyActions {
		assert.True(t, valid[action.MinRole], "action %s has invalid min role %q", name, action.MinRole)
		assert.NotNil(t, action.Handle, "action %s has no handler", name)
	}
}

func TestActionTableRoleFloors(t *testing.T) {
	// reads are open to agents, writes start at gestor, profile management is
	// admin-only
	reads := []string{"vehicle.list", "vehicle.available", "vehicle.get", "item.list", "protocol.list", "protocol.get", "protocol.checklists", "vehicle.items"}
	for _, a := range reads {
		require.Contains(t, proxyActions, a)
		assert.Equal(t, models.RoleAgent, proxyActions[a].MinRole, a)
	}

	writes := []string{"vehicle.create", "vehicle.update", "vehicle.delete", "vehicle.custody", "item.create", "item.update", "item.delete", "vehicle.item.set", "vehicle.item.remove", "dashboard.summary"}
	for _, a := range writes {
		require.Contains(t, proxyActions, a)
		assert.Equal(t, models.RoleManager, proxyActions[a].MinRole, a)
	}

	admin := []string{"profile.list", "profile.set_role"}
	for _, a := range admin {
		require.Contains(t, proxyActions, a)
		assert.Equal(t, models.RoleAdmin, proxyActions[a].MinRole, a)
	}
}

func TestDecodeParams(t *testing.T) {
	type p struct {
		ID string `json:"id"`
	}
	out, err := decodeParams[p]([]byte(`{"id":"abc"}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", out.ID)

	_, err = decodeParams[p](nil)
	assert.ErrorIs(t, err, errBadProxyParams)

	_, err = decodeParams[p]([]byte(`not json`))
	assert.ErrorIs(t, err, errBadProxyParams)
}

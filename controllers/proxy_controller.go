// controllers/proxy_controller.go
package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"Gin_postgres_redis_fleet_custody/app"
	"Gin_postgres_redis_fleet_custody/db"
	"Gin_postgres_redis_fleet_custody/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProxyController is the single dispatch endpoint the federated clients use.
// Every call names one action out of a fixed table; the role is re-read from
// the profile table on each dispatch, never taken from the token.
type ProxyController struct{ *Srv }

func NewProxyController(s *Srv) *ProxyController { return &ProxyController{Srv: s} }

type proxyHandler func(ctx context.Context, pc *ProxyController, principal *models.Profile, params json.RawMessage) (any, error)

type proxyAction struct {
	MinRole string
	Handle  proxyHandler
}

var errProxyNotFound = errors.New("registro não encontrado")

// proxyActions is the closed set of dispatchable operations. Adding an action
// means adding a row here; nothing is routed dynamically.
var proxyActions = map[string]proxyAction{
	"vehicle.list":      {models.RoleAgent, proxyVehicleList},
	"vehicle.available": {models.RoleAgent, proxyVehicleAvailable},
	"vehicle.get":       {models.RoleAgent, proxyVehicleGet},
	"vehicle.create":    {models.RoleManager, proxyVehicleCreate},
	"vehicle.update":    {models.RoleManager, proxyVehicleUpdate},
	"vehicle.delete":    {models.RoleManager, proxyVehicleDelete},
	"vehicle.custody":   {models.RoleManager, proxyVehicleCustody},

	"item.list":           {models.RoleAgent, proxyItemList},
	"item.create":         {models.RoleManager, proxyItemCreate},
	"item.update":         {models.RoleManager, proxyItemUpdate},
	"item.delete":         {models.RoleManager, proxyItemDelete},
	"vehicle.items":       {models.RoleAgent, proxyVehicleItems},
	"vehicle.item.set":    {models.RoleManager, proxyVehicleItemSet},
	"vehicle.item.remove": {models.RoleManager, proxyVehicleItemRemove},

	"protocol.list":       {models.RoleAgent, proxyProtocolList},
	"protocol.get":        {models.RoleAgent, proxyProtocolGet},
	"protocol.checklists": {models.RoleAgent, proxyProtocolChecklists},

	"dashboard.summary": {models.RoleManager, proxyDashboardSummary},

	"profile.list":     {models.RoleAdmin, proxyProfileList},
	"profile.set_role": {models.RoleAdmin, proxyProfileSetRole},
}

// POST /api/proxy {action, params}
func (pc *ProxyController) Dispatch(c *gin.Context) {
	var in struct {
		Action string          `json:"action" binding:"required"`
		Params json.RawMessage `json:"params"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	action, ok := proxyActions[in.Action]
	if !ok {
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown action"})
		return
	}

	uid, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	ctx := c.Request.Context()

	role, err := pc.Repo.LookupRole(ctx, uid)
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	if !models.RoleAtLeast(role, action.MinRole) {
		detail := fmt.Sprintf("action=%s role=%s", in.Action, role)
		_, _ = pc.Repo.LogAudit(ctx, models.AuditProxyDenied, uid, principalUsername(c), nil, &detail)
		c.JSON(http.StatusForbidden, app.H{"error": "Unauthorized"})
		return
	}

	principal, err := pc.Repo.FindProfileByID(ctx, uid)
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}

	result, err := action.Handle(ctx, pc, principal, in.Params)
	if err != nil {
		pc.renderProxyError(c, in.Action, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"result": result})
}

func (pc *ProxyController) renderProxyError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, errProxyNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": "registro não encontrado"})
	case errors.Is(err, db.ErrVehicleBusy):
		c.JSON(http.StatusConflict, app.H{"error": "veículo já possui empenho em andamento"})
	case errors.Is(err, errBadProxyParams):
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
	default:
		pc.Log.Error("proxy action failed", zap.String("action", action), zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "falha ao executar a ação"})
	}
}

var errBadProxyParams = errors.New("parâmetros inválidos")

func decodeParams[T any](params json.RawMessage) (T, error) {
	var out T
	if len(params) == 0 {
		return out, fmt.Errorf("%w: params ausentes", errBadProxyParams)
	}
	if err := json.Unmarshal(params, &out); err != nil {
		return out, fmt.Errorf("%w: %v", errBadProxyParams, err)
	}
	return out, nil
}

// ===== vehicle actions =====

func proxyVehicleList(ctx context.Context, pc *ProxyController, _ *models.Profile, params json.RawMessage) (any, error) {
	var q db.VehiclesQuery
	if len(params) > 0 {
		if err := json.Unmarshal(params, &q); err != nil {
			return nil, fmt.Errorf("%w: %v", errBadProxyParams, err)
		}
	}
	return pc.Repo.ListVehicles(ctx, q)
}

func proxyVehicleAvailable(ctx context.Context, pc *ProxyController, _ *models.Profile, _ json.RawMessage) (any, error) {
	return pc.Repo.ListAvailableForCheckin(ctx)
}

func proxyVehicleGet(ctx context.Context, pc *ProxyController, _ *models.Profile, params json.RawMessage) (any, error) {
	p, err := decodeParams[struct {
		ID string `json:"id"`
	}](params)
	if err != nil {
		return nil, err
	}
	return pc.Repo.FindVehicleByID(ctx, p.ID)
}

func proxyVehicleCreate(ctx context.Context, pc *ProxyController, _ *models.Profile, params json.RawMessage) (any, error) {
	in, err := decodeParams[vehicleReq](params)
	if err != nil {
		return nil, err
	}
	if in.Plate == "" {
		return nil, fmt.Errorf("%w: placa é obrigatória", errBadProxyParams)
	}
	v := &models.Vehicle{
		ID:              uuid.NewString(),
		Plate:           in.Plate,
		Prefix:          in.Prefix,
		Make:            in.Make,
		Model:           in.Model,
		Year:            in.Year,
		Chassis:         in.Chassis,
		Renavam:         in.Renavam,
		InitialOdometer: in.InitialOdometer,
		CurrentOdometer: in.InitialOdometer,
		Status:          models.VehicleAvailable,
	}
	if in.LicensingStatus != "" {
		v.LicensingStatus = in.LicensingStatus
	}
	if err := pc.Repo.CreateVehicle(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func proxyVehicleUpdate(ctx context.Context, pc *ProxyController, principal *models.Profile, params json.RawMessage) (any, error) {
	p, err := decodeParams[struct {
		ID     string         `json:"id"`
		Fields map[string]any `json:"fields"`
	}](params)
	if err != nil {
		return nil, err
	}
	if p.ID == "" || len(p.Fields) == 0 {
		return nil, fmt.Errorf("%w: id e fields são obrigatórios", errBadProxyParams)
	}
	newStatus, hasStatus := p.Fields["status"].(string)
	if hasStatus && !models.ValidVehicleStatus(newStatus) {
		return nil, fmt.Errorf("%w: status inválido", errBadProxyParams)
	}

	var prevStatus string
	if hasStatus {
		prev, err := pc.Repo.FindVehicleByID(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		prevStatus = prev.Status
	}

	v, err := pc.Repo.UpdateVehicle(ctx, p.ID, p.Fields)
	if err != nil {
		return nil, err
	}
	if hasStatus && prevStatus != newStatus {
		detail := vehicleStatusDetail(prevStatus, newStatus)
		_, _ = pc.Repo.LogAudit(ctx, models.AuditVehicleStatus, principal.ID, principal.Username, &p.ID, &detail)
	}
	return v, nil
}

func proxyVehicleDelete(ctx context.Context, pc *ProxyController, _ *models.Profile, params json.RawMessage) (any, error) {
	p, err := decodeParams[struct {
		ID string `json:"id"`
	}](params)
	if err != nil {
		return nil, err
	}
	if err := pc.Repo.DeleteVehicleByID(ctx, p.ID); err != nil {
		return nil, err
	}
	return app.H{"ok": true}, nil
}

func proxyVehicleCustody(ctx context.Context, pc *ProxyController, _ *models.Profile, _ json.RawMessage) (any, error) {
	return pc.Repo.ListVehiclesWithOpenProtocol(ctx)
}

// ===== item actions =====

func proxyItemList(ctx context.Context, pc *ProxyController, _ *models.Profile, params json.RawMessage) (any, error) {
	var p struct {
		Category string `json:"category"`
	}
	if len(params) > 0 {
		_ = json.Unmarshal(params, &p)
	}
	return pc.Repo.ListItems(ctx, p.Category)
}

func proxyItemCreate(ctx context.Context, pc *ProxyController, _ *models.Profile, params json.RawMessage) (any, error) {
	p, err := decodeParams[struct {
		Name        string `json:"name"`
		Category    string `json:"category"`
		Type        string `json:"type"`
		Description string `json:"description"`
	}](params)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, fmt.Errorf("%w: nome é obrigatório", errBadProxyParams)
	}
	it := &models.Item{
		ID:          uuid.NewString(),
		Name:        p.Name,
		Category:    p.Category,
		Type:        p.Type,
		Description: p.Description,
	}
	if it.Category == "" {
		it.Category = models.CategoryOther
	}
	if it.Type == "" {
		it.Type = models.TypeOther
	}
	if err := pc.Repo.CreateItem(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func proxyItemUpdate(ctx context.Context, pc *ProxyController, _ *models.Profile, params json.RawMessage) (any, error) {
	p, err := decodeParams[struct {
		ID     string         `json:"id"`
		Fields map[string]any `json:"fields"`
	}](params)
	if err != nil {
		return nil, err
	}
	if p.ID == "" || len(p.Fields) == 0 {
		return nil, fmt.Errorf("%w: id e fields são obrigatórios", errBadProxyParams)
	}
	return pc.Repo.UpdateItem(ctx, p.ID, p.Fields)
}

func proxyItemDelete(ctx context.Context, pc *ProxyController, _ *models.Profile, params json.RawMessage) (any, error) {
	p, err := decodeParams[struct {
		ID string `json:"id"`
	}](params)
	if err != nil {
		return nil, err
	}
	if err := pc.Repo.DeleteItemByID(ctx, p.ID); err != nil {
		return nil, err
	}
	return app.H{"ok": true}, nil
}

func proxyVehicleItems(ctx context.Context, pc *ProxyController, _ *models.Profile, params json.RawMessage) (any, error) {
	p, err := decodeParams[struct {
		VehicleID string `json:"vehicleId"`
	}](params)
	if err != nil {
		return nil, err
	}
	return pc.Repo.ListVehicleItems(ctx, p.VehicleID)
}

func proxyVehicleItemSet(ctx context.Context, pc *ProxyController, _ *models.Profile, params json.RawMessage) (any, error) {
	p, err := decodeParams[struct {
		VehicleID  string `json:"vehicleId"`
		ItemID     string `json:"itemId"`
		Quantity   int    `json:"quantity"`
		Obligation string `json:"obligation"`
	}](params)
	if err != nil {
		return nil, err
	}
	if p.VehicleID == "" || p.ItemID == "" {
		return nil, fmt.Errorf("%w: vehicleId e itemId são obrigatórios", errBadProxyParams)
	}
	if p.Quantity <= 0 {
		p.Quantity = 1
	}
	if p.Obligation == "" {
		p.Obligation = models.ObligationMandatory
	}
	cfg := &models.VehicleItemConfig{
		ID:         uuid.NewString(),
		VehicleID:  p.VehicleID,
		ItemID:     p.ItemID,
		Quantity:   p.Quantity,
		Obligation: p.Obligation,
	}
	if err := pc.Repo.ConfigureVehicleItem(ctx, cfg); err != nil {
		return nil, err
	}
	return app.H{"ok": true}, nil
}

func proxyVehicleItemRemove(ctx context.Context, pc *ProxyController, _ *models.Profile, params json.RawMessage) (any, error) {
	p, err := decodeParams[struct {
		VehicleID string `json:"vehicleId"`
		ItemID    string `json:"itemId"`
	}](params)
	if err != nil {
		return nil, err
	}
	if err := pc.Repo.RemoveVehicleItem(ctx, p.VehicleID, p.ItemID); err != nil {
		return nil, err
	}
	return app.H{"ok": true}, nil
}

// ===== protocol actions =====

func proxyProtocolList(ctx context.Context, pc *ProxyController, principal *models.Profile, params json.RawMessage) (any, error) {
	var q db.ProtocolsQuery
	if len(params) > 0 {
		if err := json.Unmarshal(params, &q); err != nil {
			return nil, fmt.Errorf("%w: %v", errBadProxyParams, err)
		}
	}
	// agents only ever see themselves, whatever the params asked for
	if !models.RoleAtLeast(principal.Role, models.RoleManager) {
		q.AgentID = principal.ID
	}
	return pc.Repo.ListProtocols(ctx, q)
}

func proxyProtocolGet(ctx context.Context, pc *ProxyController, principal *models.Profile, params json.RawMessage) (any, error) {
	p, err := decodeParams[struct {
		ID string `json:"id"`
	}](params)
	if err != nil {
		return nil, err
	}
	proto, err := pc.Repo.FindProtocolByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if !models.RoleAtLeast(principal.Role, models.RoleManager) && proto.AgentID != principal.ID {
		return nil, errProxyNotFound
	}
	return proto, nil
}

func proxyProtocolChecklists(ctx context.Context, pc *ProxyController, principal *models.Profile, params json.RawMessage) (any, error) {
	p, err := decodeParams[struct {
		ProtocolID string `json:"protocolId"`
	}](params)
	if err != nil {
		return nil, err
	}
	proto, err := pc.Repo.FindProtocolByID(ctx, p.ProtocolID)
	if err != nil {
		return nil, err
	}
	if !models.RoleAtLeast(principal.Role, models.RoleManager) && proto.AgentID != principal.ID {
		return nil, errProxyNotFound
	}
	return pc.Repo.ListChecklists(ctx, p.ProtocolID)
}

// ===== dashboard / profiles =====

func proxyDashboardSummary(ctx context.Context, pc *ProxyController, _ *models.Profile, _ json.RawMessage) (any, error) {
	return pc.Repo.DashboardSummary(ctx)
}

func proxyProfileList(ctx context.Context, pc *ProxyController, _ *models.Profile, params json.RawMessage) (any, error) {
	var p struct {
		Q    string `json:"q"`
		Page int    `json:"page"`
		Size int    `json:"size"`
	}
	if len(params) > 0 {
		_ = json.Unmarshal(params, &p)
	}
	return pc.Repo.ListProfiles(ctx, p.Q, p.Page, p.Size)
}

func proxyProfileSetRole(ctx context.Context, pc *ProxyController, _ *models.Profile, params json.RawMessage) (any, error) {
	p, err := decodeParams[struct {
		ProfileID string `json:"profileId"`
		Role      string `json:"role"`
	}](params)
	if err != nil {
		return nil, err
	}
	switch p.Role {
	case models.RoleAgent, models.RoleManager, models.RoleAdmin:
	default:
		return nil, fmt.Errorf("%w: papel inválido", errBadProxyParams)
	}
	if err := pc.Repo.UpdateProfileRole(ctx, p.ProfileID, p.Role); err != nil {
		return nil, err
	}
	return app.H{"ok": true}, nil
}

// controllers/wizard_controller.go
package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"Gin_postgres_redis_fleet_custody/app"
	"Gin_postgres_redis_fleet_custody/config"
	"Gin_postgres_redis_fleet_custody/db"
	"Gin_postgres_redis_fleet_custody/models"
	"Gin_postgres_redis_fleet_custody/storage"
	"Gin_postgres_redis_fleet_custody/wizard"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WizardController drives the five-step custody wizard. Both modes share the
// same endpoints; the :mode parameter selects empenho or devolucao.
type WizardController struct{ *Srv }

func NewWizardController(s *Srv) *WizardController { return &WizardController{Srv: s} }

func parseMode(c *gin.Context) (wizard.Mode, bool) {
	switch m := wizard.Mode(c.Param("mode")); m {
	case wizard.ModeCheckin, wizard.ModeCheckout:
		return m, true
	default:
		c.JSON(http.StatusBadRequest, app.H{"error": "modo inválido"})
		return "", false
	}
}

func (wc *WizardController) configuredItems(c *gin.Context, vehicleID string) ([]wizard.ConfiguredItem, error) {
	cfgs, err := wc.Repo.ListVehicleItems(c.Request.Context(), vehicleID)
	if err != nil {
		return nil, err
	}
	out := make([]wizard.ConfiguredItem, 0, len(cfgs))
	for _, cfg := range cfgs {
		ci := wizard.ConfiguredItem{ItemID: cfg.ItemID, Obligation: cfg.Obligation}
		if cfg.Item != nil {
			ci.Name = cfg.Item.Name
		}
		out = append(out, ci)
	}
	return out, nil
}

// POST /api/wizard/:mode/start {vehicleId}
func (wc *WizardController) Start(c *gin.Context) {
	mode, ok := parseMode(c)
	if !ok {
		return
	}
	uid, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	var in struct {
		VehicleID string `json:"vehicleId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	v, err := wc.Repo.FindVehicleByID(ctx, in.VehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	var protocolID string
	switch mode {
	case wizard.ModeCheckin:
		if v.Status != models.VehicleAvailable {
			c.JSON(http.StatusConflict, app.H{"error": "veículo não está disponível para empenho"})
			return
		}
	case wizard.ModeCheckout:
		p, err := wc.Repo.FindOpenProtocolByVehicle(ctx, in.VehicleID)
		if err != nil {
			c.JSON(http.StatusConflict, app.H{"error": "veículo não possui empenho em andamento"})
			return
		}
		protocolID = p.ID
	}

	d := wizard.NewDraft(wizard.FlowConfig{
		Mode:          mode,
		OdometerFloor: v.CurrentOdometer,
		PhotoPolicy:   wc.Cfg.PhotoPolicy,
	}, v.ID, protocolID)
	if err := wc.Drafts.Save(ctx, uid, d); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, app.H{"draft": d})
}

// GET /api/wizard/:mode returns the current draft plus the configured items step 3 needs
func (wc *WizardController) Get(c *gin.Context) {
	mode, ok := parseMode(c)
	if !ok {
		return
	}
	uid, _ := principalID(c)
	d, err := wc.Drafts.Load(c.Request.Context(), uid, mode)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.JSON(http.StatusNotFound, app.H{"error": "nenhum rascunho em andamento"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	configured, err := wc.configuredItems(c, d.VehicleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"draft": d, "configuredItems": configured})
}

// PUT /api/wizard/:mode/step stores the current step's fields on the draft.
// Saving never validates; validation runs when the draft tries to advance.
func (wc *WizardController) SaveStep(c *gin.Context) {
	mode, ok := parseMode(c)
	if !ok {
		return
	}
	uid, _ := principalID(c)
	ctx := c.Request.Context()

	d, err := wc.Drafts.Load(ctx, uid, mode)
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "nenhum rascunho em andamento"})
		return
	}

	var in struct {
		General     *wizard.GeneralData         `json:"general"`
		Condition   *wizard.ConditionData       `json:"condition"`
		Items       map[string]wizard.ItemCheck `json:"items"`
		Photos      map[string]wizard.PhotoMeta `json:"photos"`
		Observation *string                     `json:"observation"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	switch d.State {
	case wizard.StateStep1:
		if in.General != nil {
			d.General = *in.General
		}
	case wizard.StateStep2:
		if in.Condition != nil {
			d.Condition = *in.Condition
		}
	case wizard.StateStep3:
		if in.Items != nil {
			d.Items = in.Items
		}
	case wizard.StateStep4:
		if in.Photos != nil {
			d.Photos = in.Photos
		}
	case wizard.StateStep5:
		if in.Observation != nil {
			d.Observation = *in.Observation
		}
	default:
		c.JSON(http.StatusConflict, app.H{"error": fmt.Sprintf("rascunho em estado %s não aceita edição", d.State)})
		return
	}

	if err := wc.Drafts.Save(ctx, uid, d); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"draft": d})
}

// POST /api/wizard/:mode/advance
func (wc *WizardController) Advance(c *gin.Context) {
	mode, ok := parseMode(c)
	if !ok {
		return
	}
	uid, _ := principalID(c)
	ctx := c.Request.Context()

	d, err := wc.Drafts.Load(ctx, uid, mode)
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "nenhum rascunho em andamento"})
		return
	}
	configured, err := wc.configuredItems(c, d.VehicleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if violations := d.Advance(configured); len(violations) > 0 {
		c.JSON(http.StatusUnprocessableEntity, app.H{"violations": violations, "draft": d})
		return
	}
	if err := wc.Drafts.Save(ctx, uid, d); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"draft": d})
}

// POST /api/wizard/:mode/back
func (wc *WizardController) Back(c *gin.Context) {
	mode, ok := parseMode(c)
	if !ok {
		return
	}
	uid, _ := principalID(c)
	ctx := c.Request.Context()

	d, err := wc.Drafts.Load(ctx, uid, mode)
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "nenhum rascunho em andamento"})
		return
	}
	if err := d.Back(); err != nil {
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
		return
	}
	if err := wc.Drafts.Save(ctx, uid, d); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"draft": d})
}

// DELETE /api/wizard/:mode discards the draft
func (wc *WizardController) Discard(c *gin.Context) {
	mode, ok := parseMode(c)
	if !ok {
		return
	}
	uid, _ := principalID(c)
	if err := wc.Drafts.Delete(c.Request.Context(), uid, mode); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// photoUpload is one decoded multipart photo, keyed by slot type.
type photoUpload struct {
	Type        string
	Filename    string
	ContentType string
	Description string
	Data        []byte
}

func readPhotoPart(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > wizard.MaxPhotoSize {
		return nil, storage.ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, wizard.MaxPhotoSize+1))
}

func (wc *WizardController) collectPhotos(c *gin.Context, d *wizard.Draft) ([]photoUpload, []string) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, []string{"envio deve ser multipart com as fotos anexadas"}
	}

	var (
		uploads    []photoUpload
		violations []string
	)
	for slot, meta := range d.Photos {
		fhs := form.File[slot]
		if len(fhs) == 0 {
			violations = append(violations, fmt.Sprintf("foto %q declarada mas não enviada", slot))
			continue
		}
		fh := fhs[0]
		data, err := readPhotoPart(fh)
		if err != nil {
			violations = append(violations, fmt.Sprintf("foto %q: %v", slot, err))
			continue
		}
		if len(data) > wizard.MaxPhotoSize {
			violations = append(violations, fmt.Sprintf("foto %q excede o limite de 10 MB", slot))
			continue
		}
		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = meta.ContentType
		}
		uploads = append(uploads, photoUpload{
			Type:        slot,
			Filename:    fh.Filename,
			ContentType: ct,
			Description: meta.Description,
			Data:        data,
		})
	}
	return uploads, violations
}

// photoFailure records one blob upload that did not go through.
type photoFailure struct {
	Slot   string
	Object string
	Err    error
}

// uploadEvidence pushes photos to the blob store before any database write.
// Under the strict policy the first failure aborts; under the lenient policy
// the failed slot is dropped and reported in the failure list.
func uploadEvidence(ctx context.Context, blob storage.Store, mode wizard.Mode, policy config.PhotoFailurePolicy, entityID string, uploads []photoUpload) ([]models.Photo, []photoFailure, error) {
	var (
		rows     []models.Photo
		failures []photoFailure
	)
	for _, up := range uploads {
		var objectPath string
		if mode == wizard.ModeCheckin {
			objectPath = storage.CheckinPhotoPath(entityID, up.Type, up.Filename)
		} else {
			objectPath = storage.CheckoutPhotoPath(entityID, up.Type, up.Filename)
		}
		url, err := blob.Upload(ctx, objectPath, up.ContentType, up.Data)
		if err != nil {
			failures = append(failures, photoFailure{Slot: up.Type, Object: objectPath, Err: err})
			if policy == config.PhotoStrict {
				return nil, failures, fmt.Errorf("upload da foto %q falhou: %w", up.Type, err)
			}
			continue
		}
		rows = append(rows, models.Photo{
			Type:        up.Type,
			URL:         url,
			Description: up.Description,
		})
	}
	return rows, failures, nil
}

func (wc *WizardController) uploadPhotos(c *gin.Context, d *wizard.Draft, entityID string, uploads []photoUpload) ([]models.Photo, error) {
	ctx := c.Request.Context()
	uid, _ := principalID(c)

	rows, failures, err := uploadEvidence(ctx, wc.Blob, d.Flow.Mode, d.Flow.PhotoPolicy, entityID, uploads)
	for _, f := range failures {
		detail := fmt.Sprintf("slot=%s path=%s err=%v", f.Slot, f.Object, f.Err)
		_, _ = wc.Repo.LogAudit(ctx, models.AuditPhotoUploadFailed, uid, principalUsername(c), &entityID, &detail)
		if err == nil {
			wc.Log.Warn("photo upload tolerated",
				zap.String("slot", f.Slot),
				zap.String("object", f.Object),
				zap.Error(f.Err))
		}
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (wc *WizardController) failDraft(c *gin.Context, uid string, d *wizard.Draft) {
	if err := d.Fail(); err == nil {
		_ = wc.Drafts.Save(c.Request.Context(), uid, d)
	}
}

// POST /api/wizard/:mode/submit is multipart, one file part per photo slot.
// Order of operations: re-validate, decode photos, upload blobs, then one
// custody transaction, then the photo rows. A failed transaction leaves the
// draft on the review step with everything still filled in.
func (wc *WizardController) Submit(c *gin.Context) {
	mode, ok := parseMode(c)
	if !ok {
		return
	}
	uid, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	ctx := c.Request.Context()

	d, err := wc.Drafts.Load(ctx, uid, mode)
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "nenhum rascunho em andamento"})
		return
	}
	configured, err := wc.configuredItems(c, d.VehicleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	if violations := d.BeginSubmit(configured); len(violations) > 0 {
		c.JSON(http.StatusUnprocessableEntity, app.H{"violations": violations})
		return
	}
	_ = wc.Drafts.Save(ctx, uid, d)

	uploads, violations := wc.collectPhotos(c, d)
	if len(violations) > 0 {
		wc.failDraft(c, uid, d)
		c.JSON(http.StatusUnprocessableEntity, app.H{"violations": violations})
		return
	}

	entityID := uuid.NewString()
	photoRows, err := wc.uploadPhotos(c, d, entityID, uploads)
	if err != nil {
		wc.failDraft(c, uid, d)
		c.JSON(http.StatusBadGateway, app.H{"error": err.Error()})
		return
	}

	checklistIn := db.ChecklistInput{
		Odometer:     *d.General.Odometer,
		FuelLevel:    d.Condition.FuelLevel,
		OilLevel:     d.Condition.OilLevel,
		MechanicalOK: d.Condition.Mechanical == wizard.MechanicalOK,
		Observation:  d.Condition.Observation,
	}
	for itemID, chk := range d.Items {
		checklistIn.Items = append(checklistIn.Items, db.ChecklistItemInput{
			ItemID:      itemID,
			Situation:   chk.Situation,
			Observation: chk.Observation,
		})
	}

	switch mode {
	case wizard.ModeCheckin:
		wc.submitCheckin(c, uid, d, entityID, checklistIn, photoRows)
	case wizard.ModeCheckout:
		wc.submitCheckout(c, uid, d, entityID, checklistIn, photoRows)
	}
}

func (wc *WizardController) submitCheckin(c *gin.Context, uid string, d *wizard.Draft, protocolID string, cl db.ChecklistInput, photos []models.Photo) {
	ctx := c.Request.Context()
	p, checklist, err := wc.Repo.CreateCheckin(ctx, db.CheckinInput{
		ProtocolID: protocolID,
		VehicleID:  d.VehicleID,
		AgentID:    uid,
		AgentName:  d.General.AgentName,
		Reason:     d.General.Reason,
		Lat:        d.General.Lat,
		Lng:        d.General.Lng,
		Location:   d.General.Location,
		Checklist:  cl,
	})
	if err != nil {
		wc.failDraft(c, uid, d)
		wc.renderCustodyError(c, err)
		return
	}

	for i := range photos {
		photos[i].ProtocolID = &p.ID
		photos[i].ChecklistID = checklist.ID
		if err := wc.Repo.AddPhoto(ctx, &photos[i]); err != nil {
			wc.Log.Warn("photo row insert failed", zap.String("protocol", p.ID), zap.Error(err))
		}
	}

	_ = d.Complete()
	_ = wc.Drafts.Delete(ctx, uid, d.Flow.Mode)
	c.JSON(http.StatusCreated, app.H{"protocol": p, "checklist": checklist})
}

func (wc *WizardController) submitCheckout(c *gin.Context, uid string, d *wizard.Draft, devolucaoID string, cl db.ChecklistInput, photos []models.Photo) {
	ctx := c.Request.Context()
	dev, checklist, err := wc.Repo.CreateCheckout(ctx, db.CheckoutInput{
		ProtocolID:  d.ProtocolID,
		DevolucaoID: devolucaoID,
		AgentID:     uid,
		Lat:         d.General.Lat,
		Lng:         d.General.Lng,
		Location:    d.General.Location,
		Notes:       d.Observation,
		Checklist:   cl,
	})
	if err != nil {
		wc.failDraft(c, uid, d)
		wc.renderCustodyError(c, err)
		return
	}

	for i := range photos {
		photos[i].DevolucaoID = &dev.ID
		photos[i].ChecklistID = checklist.ID
		if err := wc.Repo.AddPhoto(ctx, &photos[i]); err != nil {
			wc.Log.Warn("photo row insert failed", zap.String("devolucao", dev.ID), zap.Error(err))
		}
	}

	_ = d.Complete()
	_ = wc.Drafts.Delete(ctx, uid, d.Flow.Mode)
	c.JSON(http.StatusCreated, app.H{"devolucao": dev, "checklist": checklist})
}

func (wc *WizardController) renderCustodyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrVehicleBusy):
		c.JSON(http.StatusConflict, app.H{"error": "veículo já possui empenho em andamento"})
	case errors.Is(err, db.ErrVehicleNotAvail):
		c.JSON(http.StatusConflict, app.H{"error": "veículo não está disponível"})
	case errors.Is(err, db.ErrProtocolClosed):
		c.JSON(http.StatusConflict, app.H{"error": "protocolo não está em andamento"})
	case errors.Is(err, db.ErrAlreadyReturned):
		c.JSON(http.StatusConflict, app.H{"error": "protocolo já possui devolução"})
	case errors.Is(err, db.ErrOdometerRegression):
		c.JSON(http.StatusConflict, app.H{"error": "hodômetro não pode regredir"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": "registro não encontrado"})
	default:
		wc.Log.Error("custody submission failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "falha ao registrar a operação"})
	}
}

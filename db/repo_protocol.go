// db/repo_protocol.go
package db

import (
	"Gin_postgres_redis_fleet_custody/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrVehicleBusy     = errors.New("vehicle already under an open protocol")
	ErrVehicleNotAvail = errors.New("vehicle is not available for check-in")
	ErrProtocolClosed  = errors.New("protocol is not open")
	ErrAlreadyReturned = errors.New("protocol already has a return")
)

// NextProtocolNumber asks the database for the next unique number. The format
// is informational; uniqueness comes from the sequence.
func (r *Repo) NextProtocolNumber(ctx context.Context) (string, error) {
	var n int64
	if err := r.DB.WithContext(ctx).
		Raw("SELECT nextval('frota_protocolo_seq')").
		Scan(&n).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("EMP-%d-%06d", time.Now().Year(), n), nil
}

// ChecklistInput carries the wizard's accumulated condition data into a
// transaction.
type ChecklistInput struct {
	Odometer     int64
	FuelLevel    string
	OilLevel     string
	MechanicalOK bool
	Observation  string
	Items        []ChecklistItemInput
}

type ChecklistItemInput struct {
	ItemID      string
	Situation   string
	Observation string
}

type CheckinInput struct {
	// ProtocolID may be pre-generated by the caller so photo objects can be
	// keyed before the transaction runs. Empty means the repo generates one.
	ProtocolID string
	VehicleID  string
	AgentID    string
	AgentName  string
	Reason     string
	Lat, Lng   *float64
	Location   string
	Checklist  ChecklistInput
}

// CreateCheckin opens custody: one transaction that locks the vehicle row,
// refuses busy or regressed input, creates Protocol + Checklist + items and
// flips the vehicle to empenhada with the new odometer. Photos are uploaded
// after commit and are not part of the transaction.
func (r *Repo) CreateCheckin(ctx context.Context, in CheckinInput) (*models.Protocol, *models.Checklist, error) {
	number, err := r.NextProtocolNumber(ctx)
	if err != nil {
		return nil, nil, err
	}

	var (
		protocol  *models.Protocol
		checklist *models.Checklist
	)
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) lock the vehicle
		var v models.Vehicle
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&v, "id = ?", in.VehicleID).Error; err != nil {
			return err
		}
		if v.Status != models.VehicleAvailable {
			return ErrVehicleNotAvail
		}
		// 2) no second open protocol; the partial unique index backs this up
		var n int64
		if err := tx.Model(&models.Protocol{}).
			Where("vehicle_id = ? AND status = ?", in.VehicleID, models.ProtocolOpen).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrVehicleBusy
		}
		// 3) odometer floor, re-checked under the lock
		if in.Checklist.Odometer < v.CurrentOdometer {
			return ErrOdometerRegression
		}

		pid := in.ProtocolID
		if pid == "" {
			pid = uuid.NewString()
		}
		p := &models.Protocol{
			ID:        pid,
			Number:    number,
			VehicleID: in.VehicleID,
			AgentID:   in.AgentID,
			AgentName: in.AgentName,
			Reason:    in.Reason,
			Lat:       in.Lat,
			Lng:       in.Lng,
			Location:  in.Location,
			Status:    models.ProtocolOpen,
		}
		if err := tx.Create(p).Error; err != nil {
			return err
		}

		cl, err := createChecklist(tx, &p.ID, nil, in.Checklist)
		if err != nil {
			return err
		}

		// 4) status + odometer move together
		if err := tx.Model(&models.Vehicle{}).
			Where("id = ?", v.ID).
			Updates(map[string]any{
				"status":           models.VehicleCheckedOut,
				"current_odometer": in.Checklist.Odometer,
			}).Error; err != nil {
			return err
		}

		protocol, checklist = p, cl
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return protocol, checklist, nil
}

type CheckoutInput struct {
	ProtocolID string
	// DevolucaoID, like CheckinInput.ProtocolID, may be pre-generated.
	DevolucaoID string
	AgentID     string
	Lat, Lng    *float64
	Location    string
	Notes       string
	Checklist   ChecklistInput
}

// CreateCheckout closes custody: locks the open protocol, creates the
// Devolucao + checklist, flips the protocol to concluido (one-way) and the
// vehicle back to disponivel with the new odometer.
func (r *Repo) CreateCheckout(ctx context.Context, in CheckoutInput) (*models.Devolucao, *models.Checklist, error) {
	var (
		devolucao *models.Devolucao
		checklist *models.Checklist
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Protocol
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&p, "id = ?", in.ProtocolID).Error; err != nil {
			return err
		}
		if p.Status != models.ProtocolOpen {
			return ErrProtocolClosed
		}

		var n int64
		if err := tx.Model(&models.Devolucao{}).
			Where("protocol_id = ?", p.ID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadyReturned
		}

		var v models.Vehicle
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&v, "id = ?", p.VehicleID).Error; err != nil {
			return err
		}
		if in.Checklist.Odometer < v.CurrentOdometer {
			return ErrOdometerRegression
		}

		did := in.DevolucaoID
		if did == "" {
			did = uuid.NewString()
		}
		now := time.Now().UTC()
		d := &models.Devolucao{
			ID:              did,
			ProtocolID:      p.ID,
			AgentID:         in.AgentID,
			Lat:             in.Lat,
			Lng:             in.Lng,
			Location:        in.Location,
			Notes:           in.Notes,
			DurationMinutes: models.CustodyDuration(p.CreatedAt, now),
		}
		if err := tx.Create(d).Error; err != nil {
			return err
		}

		cl, err := createChecklist(tx, nil, &d.ID, in.Checklist)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Protocol{}).
			Where("id = ?", p.ID).
			Update("status", models.ProtocolCompleted).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Vehicle{}).
			Where("id = ?", v.ID).
			Updates(map[string]any{
				"status":           models.VehicleAvailable,
				"current_odometer": in.Checklist.Odometer,
			}).Error; err != nil {
			return err
		}

		devolucao, checklist = d, cl
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return devolucao, checklist, nil
}

func createChecklist(tx *gorm.DB, protocolID, devolucaoID *string, in ChecklistInput) (*models.Checklist, error) {
	cl := &models.Checklist{
		ID:           uuid.NewString(),
		ProtocolID:   protocolID,
		DevolucaoID:  devolucaoID,
		Odometer:     in.Odometer,
		FuelLevel:    in.FuelLevel,
		OilLevel:     in.OilLevel,
		MechanicalOK: in.MechanicalOK,
		Observation:  in.Observation,
	}
	if err := tx.Create(cl).Error; err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return cl, nil
	}
	rows := make([]models.ChecklistItem, 0, len(in.Items))
	for _, it := range in.Items {
		rows = append(rows, models.ChecklistItem{
			ID:          uuid.NewString(),
			ChecklistID: cl.ID,
			ItemID:      it.ItemID,
			Situation:   models.NormalizeSituation(it.Situation),
			Observation: it.Observation,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return nil, err
	}
	cl.Items = rows
	return cl, nil
}

// AddPhoto records one uploaded photo. Called once per successful blob upload,
// outside the submission transaction.
func (r *Repo) AddPhoto(ctx context.Context, ph *models.Photo) error {
	if ph.ID == "" {
		ph.ID = uuid.NewString()
	}
	return r.DB.WithContext(ctx).Create(ph).Error
}

// Reads

func (r *Repo) FindProtocolByID(ctx context.Context, id string) (*models.Protocol, error) {
	var p models.Protocol
	err := r.DB.WithContext(ctx).
		Preload("Vehicle").
		Preload("Devolucao").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) FindOpenProtocolByVehicle(ctx context.Context, vehicleID string) (*models.Protocol, error) {
	var p models.Protocol
	err := r.DB.WithContext(ctx).
		Where("vehicle_id = ? AND status = ?", vehicleID, models.ProtocolOpen).
		Order("created_at DESC").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type ProtocolsQuery struct {
	VehicleID string
	AgentID   string
	Status    string
	Page      int
	Size      int
}

type PagedProtocols struct {
	Total     int64             `json:"total"`
	Protocols []models.Protocol `json:"protocols"`
}

func (r *Repo) ListProtocols(ctx context.Context, q ProtocolsQuery) (*PagedProtocols, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.Protocol{})
	if q.VehicleID != "" {
		tx = tx.Where("vehicle_id = ?", q.VehicleID)
	}
	if q.AgentID != "" {
		tx = tx.Where("agent_id = ?", q.AgentID)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}

	var ps []models.Protocol
	if err := tx.
		Preload("Vehicle").
		Preload("Devolucao").
		Order("created_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&ps).Error; err != nil {
		return nil, err
	}
	return &PagedProtocols{Total: total, Protocols: ps}, nil
}

// ListChecklists returns the checklists of a protocol and of its devolução,
// with items and photos preloaded. The protocol document view renders this.
func (r *Repo) ListChecklists(ctx context.Context, protocolID string) ([]models.Checklist, error) {
	var devIDs []string
	if err := r.DB.WithContext(ctx).Model(&models.Devolucao{}).
		Where("protocol_id = ?", protocolID).
		Pluck("id", &devIDs).Error; err != nil {
		return nil, err
	}

	var cls []models.Checklist
	tx := r.DB.WithContext(ctx).
		Preload("Items").
		Preload("Items.Item").
		Preload("Photos").
		Order("created_at")
	if len(devIDs) > 0 {
		tx = tx.Where("protocol_id = ? OR devolucao_id IN ?", protocolID, devIDs)
	} else {
		tx = tx.Where("protocol_id = ?", protocolID)
	}
	err := tx.Find(&cls).Error
	return cls, err
}

package models

import "time"

// Audit event kinds.
const (
	AuditPhotoUploadFailed = "photo_upload_failed"
	AuditVehicleStatus     = "vehicle_status_change"
	AuditProxyDenied       = "proxy_denied"
)

// AuditLog records diagnostics that are deliberately not surfaced to the user,
// e.g. a tolerated photo-upload failure during submission.
type AuditLog struct {
	ID            string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Kind          string    `gorm:"size:40;index;not null" json:"kind"`
	ActorID       string    `gorm:"type:uuid" json:"actorId"`
	ActorUsername string    `json:"actorUsername"`
	TargetID      *string   `gorm:"type:uuid" json:"targetId,omitempty"`
	Detail        *string   `json:"detail,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (AuditLog) TableName() string { return "frota_audit_log" }

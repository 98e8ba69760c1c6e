// models/profile.go
package models

import "time"

const (
	ProfileTable    = "frota_profiles"
	CredentialTable = "frota_credentials"
)

// Roles, lowest to highest.
const (
	RoleAgent   = "agente"
	RoleManager = "gestor"
	RoleAdmin   = "admin"
)

// Principal kinds. Native profiles log in with passkeys against this service;
// federated ones come through the identity broker and are always routed via
// the proxy dispatch path.
const (
	KindNative    = "native"
	KindFederated = "federated"
)

// Profile matches the authenticated principal one-to-one.
type Profile struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Username     string `gorm:"uniqueIndex;size:255;not null" json:"username"`
	DisplayName  string `gorm:"size:255;not null" json:"displayName"`
	Registration string `gorm:"size:40" json:"registration"`

	Role   string `gorm:"size:10;not null;default:'agente'" json:"role"`
	Active bool   `gorm:"not null;default:true" json:"active"`
	Kind   string `gorm:"size:10;not null;default:'native'" json:"kind"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`
	LastLoginIP string     `gorm:"size:45" json:"-"`
	LastLoginUA string     `gorm:"size:255" json:"-"`

	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Credentials []Credential `json:"-"`
}

func (Profile) TableName() string { return ProfileTable }

// RoleAtLeast reports whether have satisfies want on the agente < gestor < admin
// ladder.
func RoleAtLeast(have, want string) bool {
	rank := map[string]int{RoleAgent: 1, RoleManager: 2, RoleAdmin: 3}
	h, ok1 := rank[have]
	w, ok2 := rank[want]
	return ok1 && ok2 && h >= w
}

// Credential stores one registered passkey of a native profile.
// CredentialID / PublicKey / AAGUID are binary, bytea under Postgres.
type Credential struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ProfileID       string    `gorm:"type:uuid;index" json:"profileId"`
	CredentialID    []byte    `gorm:"uniqueIndex" json:"credentialId"`
	PublicKey       []byte    `json:"publicKey"`
	AttestationType string    `gorm:"size:64" json:"attestationType"`
	AAGUID          []byte    `gorm:"type:bytea" json:"aaguid"`
	SignCount       uint32    `json:"signCount"`
	CloneWarning    bool      `json:"cloneWarning"`
	BackupEligible  bool      `json:"backupEligible"`
	BackupState     bool      `json:"backupState"`
	TransportsJSON  string    `gorm:"type:text" json:"transportsJson"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	LastUsedAt *time.Time `gorm:"index" json:"lastUsedAt,omitempty"`
}

func (Credential) TableName() string { return CredentialTable }

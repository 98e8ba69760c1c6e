package db

import (
	"Gin_postgres_redis_fleet_custody/models"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Profiles

func (r *Repo) TouchProfileLogin(ctx context.Context, profileID, ip, ua string) error {
	// NOW() on the database side avoids concurrent overwrites
	return r.DB.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", profileID).
		Updates(map[string]interface{}{
			"last_login_at": gorm.Expr("NOW()"),
			"last_seen_at":  gorm.Expr("NOW()"),
			"login_count":   gorm.Expr("COALESCE(login_count, 0) + 1"),
			"last_login_ip": ip,
			"last_login_ua": ua,
		}).Error
}

func (r *Repo) TouchProfileSeen(ctx context.Context, profileID string) error {
	return r.DB.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", profileID).
		Update("last_seen_at", gorm.Expr("NOW()")).Error
}

func (r *Repo) FindProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) FindProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var p models.Profile
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// LookupRole is the single source of truth for authorization decisions: the
// proxy path calls it on every dispatch instead of trusting anything the
// client sent. Inactive profiles have no role.
func (r *Repo) LookupRole(ctx context.Context, profileID string) (string, error) {
	var p models.Profile
	if err := r.DB.WithContext(ctx).
		Select("role", "active").
		First(&p, "id = ?", profileID).Error; err != nil {
		return "", err
	}
	if !p.Active {
		return "", errors.New("profile inactive")
	}
	return p.Role, nil
}

func (r *Repo) FindOrCreateProfile(ctx context.Context, username, newID, kind, role string) (*models.Profile, error) {
	var p models.Profile
	err := r.DB.WithContext(ctx).Where("username = ?", username).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p = models.Profile{ID: newID, Username: username, DisplayName: username, Kind: kind, Role: role, Active: true}
		if err := r.DB.WithContext(ctx).Create(&p).Error; err != nil {
			return nil, err
		}
		return &p, nil
	}
	return &p, err
}

// UpdateProfileRole also covers federated principals whose directory groups
// changed since the last login.
func (r *Repo) UpdateProfileRole(ctx context.Context, profileID, role string) error {
	return r.DB.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", profileID).
		Update("role", role).Error
}

type ListProfilesResult struct {
	Profiles []models.Profile `json:"profiles"`
	Total    int64            `json:"total"`
}

func (r *Repo) ListProfiles(ctx context.Context, q string, page, size int) (ListProfilesResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.Profile{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(username) LIKE ? OR LOWER(display_name) LIKE ? OR registration LIKE ?", like, like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListProfilesResult{}, err
	}

	var ps []models.Profile
	if err := tx.
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&ps).Error; err != nil {
		return ListProfilesResult{}, err
	}
	return ListProfilesResult{Profiles: ps, Total: total}, nil
}

func (r *Repo) DeleteProfileByID(ctx context.Context, id string) error {
	if err := r.DB.WithContext(ctx).Where("profile_id = ?", id).Delete(&models.Credential{}).Error; err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Clauses(clause.Returning{}).Delete(&models.Profile{ID: id}).Error
}

// Credentials

func (r *Repo) AddCredential(ctx context.Context, c *models.Credential) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *Repo) LoadProfileCredentials(ctx context.Context, profileID string) ([]models.Credential, error) {
	var cs []models.Credential
	if err := r.DB.WithContext(ctx).Where("profile_id = ?", profileID).Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}

func (r *Repo) UpdateCredentialCounter(ctx context.Context, credID []byte, newCount uint32, cloneWarn bool) error {
	return r.DB.WithContext(ctx).Model(&models.Credential{}).
		Where("credential_id = ?", credID).
		Updates(map[string]any{"sign_count": newCount, "clone_warning": cloneWarn}).Error
}

func (r *Repo) TouchCredentialUsed(ctx context.Context, credID []byte) error {
	return r.DB.WithContext(ctx).Model(&models.Credential{}).
		Where("credential_id = ?", credID).
		Update("last_used_at", gorm.Expr("NOW()")).Error
}

func (r *Repo) FindProfileByCredentialID(ctx context.Context, credID []byte) (*models.Profile, *models.Credential, error) {
	var c models.Credential
	if err := r.DB.WithContext(ctx).Where("credential_id = ?", credID).First(&c).Error; err != nil {
		return nil, nil, err
	}
	var p models.Profile
	if err := r.DB.WithContext(ctx).Where("id = ?", c.ProfileID).First(&p).Error; err != nil {
		return nil, nil, err
	}
	return &p, &c, nil
}

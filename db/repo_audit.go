package db

import (
	"Gin_postgres_redis_fleet_custody/models"
	"context"
	"fmt"
)

func (r *Repo) LogAudit(ctx context.Context, kind, actorID, actorUsername string, targetID, detail *string) (*models.AuditLog, error) {
	entry := &models.AuditLog{
		Kind:          kind,
		ActorID:       actorID,
		ActorUsername: actorUsername,
		TargetID:      targetID,
		Detail:        detail,
	}
	if err := r.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("insert audit log: %w", err)
	}
	return entry, nil
}

func (r *Repo) ListAudit(ctx context.Context, kind string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	tx := r.DB.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if kind != "" {
		tx = tx.Where("kind = ?", kind)
	}
	var logs []models.AuditLog
	err := tx.Find(&logs).Error
	return logs, err
}

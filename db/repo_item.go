// db/repo_item.go
package db

import (
	"Gin_postgres_redis_fleet_custody/models"
	"context"
	"errors"

	"gorm.io/gorm"
)

// Catalog items

func (r *Repo) CreateItem(ctx context.Context, it *models.Item) error {
	return r.DB.WithContext(ctx).Create(it).Error
}

func (r *Repo) FindItemByID(ctx context.Context, id string) (*models.Item, error) {
	var it models.Item
	if err := r.DB.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repo) ListItems(ctx context.Context, category string) ([]models.Item, error) {
	tx := r.DB.WithContext(ctx).Order("name")
	if category != "" {
		tx = tx.Where("category = ?", category)
	}
	var items []models.Item
	err := tx.Find(&items).Error
	return items, err
}

func (r *Repo) UpdateItem(ctx context.Context, id string, fields map[string]any) (*models.Item, error) {
	if err := r.DB.WithContext(ctx).Model(&models.Item{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return nil, err
	}
	return r.FindItemByID(ctx, id)
}

func (r *Repo) DeleteItemByID(ctx context.Context, id string) error {
	// Configured associations go first, checklist history stays.
	if err := r.DB.WithContext(ctx).Where("item_id = ?", id).Delete(&models.VehicleItemConfig{}).Error; err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Delete(&models.Item{ID: id}).Error
}

// Vehicle item configuration

func (r *Repo) ConfigureVehicleItem(ctx context.Context, cfg *models.VehicleItemConfig) error {
	var existing models.VehicleItemConfig
	err := r.DB.WithContext(ctx).
		Where("vehicle_id = ? AND item_id = ?", cfg.VehicleID, cfg.ItemID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.DB.WithContext(ctx).Create(cfg).Error
	}
	if err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(&existing).
		Updates(map[string]any{"quantity": cfg.Quantity, "obligation": cfg.Obligation}).Error
}

// ListVehicleItems returns the configured checklist items of a vehicle with
// the catalog entry preloaded. The step-3 validator runs against this list.
func (r *Repo) ListVehicleItems(ctx context.Context, vehicleID string) ([]models.VehicleItemConfig, error) {
	var cfgs []models.VehicleItemConfig
	err := r.DB.WithContext(ctx).
		Preload("Item").
		Where("vehicle_id = ?", vehicleID).
		Find(&cfgs).Error
	return cfgs, err
}

func (r *Repo) RemoveVehicleItem(ctx context.Context, vehicleID, itemID string) error {
	return r.DB.WithContext(ctx).
		Where("vehicle_id = ? AND item_id = ?", vehicleID, itemID).
		Delete(&models.VehicleItemConfig{}).Error
}

// db/repo_dashboard.go
package db

import (
	"Gin_postgres_redis_fleet_custody/models"
	"context"
	"time"
)

type DashboardSummary struct {
	VehiclesByStatus map[string]int64 `json:"vehiclesByStatus"`
	OpenProtocols    int64            `json:"openProtocols"`
	CompletedToday   int64            `json:"completedToday"`
	ProtocolsByMonth []MonthCount     `json:"protocolsByMonth"`
}

type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// startOfDay is midnight in t's location, not UTC. "Today" on the dashboard
// follows the server's local calendar day.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (r *Repo) DashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	db := r.DB.WithContext(ctx)

	var statusRows []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&models.Vehicle{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&statusRows).Error; err != nil {
		return nil, err
	}
	byStatus := make(map[string]int64, len(statusRows))
	for _, row := range statusRows {
		byStatus[row.Status] = row.Count
	}

	var open int64
	if err := db.Model(&models.Protocol{}).
		Where("status = ?", models.ProtocolOpen).
		Count(&open).Error; err != nil {
		return nil, err
	}

	var completedToday int64
	if err := db.Model(&models.Devolucao{}).
		Where("created_at >= ?", startOfDay(time.Now())).
		Count(&completedToday).Error; err != nil {
		return nil, err
	}

	var months []MonthCount
	if err := db.Model(&models.Protocol{}).
		Select("TO_CHAR(created_at, 'YYYY-MM') AS month, COUNT(*) AS count").
		Where("created_at >= ?", time.Now().AddDate(0, -11, 0)).
		Group("month").
		Order("month").
		Scan(&months).Error; err != nil {
		return nil, err
	}

	return &DashboardSummary{
		VehiclesByStatus: byStatus,
		OpenProtocols:    open,
		CompletedToday:   completedToday,
		ProtocolsByMonth: months,
	}, nil
}

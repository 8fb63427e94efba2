package db

import (
	"context"

	"github.com/DeiroLy/Safe-Tools/models"
)

func (r *Repo) CreateMode(ctx context.Context, m *models.Mode) error {
	return translate(r.DB.WithContext(ctx).Create(m).Error, "mode")
}

func (r *Repo) FindModeByToken(ctx context.Context, token string) (*models.Mode, error) {
	var m models.Mode
	if err := r.DB.WithContext(ctx).Where("token = ?", token).First(&m).Error; err != nil {
		return nil, translate(err, "mode")
	}
	return &m, nil
}

// LatestMode orders by the auto-increment id, which follows insertion order
// even when two modes share a created_at.
func (r *Repo) LatestMode(ctx context.Context, kind models.ModeKind) (*models.Mode, error) {
	q := r.DB.WithContext(ctx).Model(&models.Mode{})
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	var m models.Mode
	if err := q.Order("id DESC").First(&m).Error; err != nil {
		return nil, translate(err, "mode")
	}
	return &m, nil
}

func (r *Repo) RecentModes(ctx context.Context, limit int) ([]models.Mode, error) {
	var ms []models.Mode
	err := r.DB.WithContext(ctx).Order("id DESC").Limit(limit).Find(&ms).Error
	return ms, translate(err, "modes")
}

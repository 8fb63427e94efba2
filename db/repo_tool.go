package db

import (
	"context"
	"time"

	"github.com/DeiroLy/Safe-Tools/models"
	"github.com/DeiroLy/Safe-Tools/tracker"
)

func (r *Repo) FindToolByID(ctx context.Context, id string) (*models.Tool, error) {
	var t models.Tool
	if err := r.DB.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err, "tool")
	}
	return &t, nil
}

func (r *Repo) FindToolByTag(ctx context.Context, tag string) (*models.Tool, error) {
	var t models.Tool
	if err := r.DB.WithContext(ctx).Where("tag_id = ?", tag).First(&t).Error; err != nil {
		return nil, translate(err, "tool")
	}
	return &t, nil
}

func (r *Repo) LockToolByID(ctx context.Context, id string) (*models.Tool, error) {
	var t models.Tool
	if err := r.forUpdate(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err, "tool")
	}
	return &t, nil
}

func (r *Repo) LockToolByTag(ctx context.Context, tag string) (*models.Tool, error) {
	var t models.Tool
	if err := r.forUpdate(ctx).Where("tag_id = ?", tag).First(&t).Error; err != nil {
		return nil, translate(err, "tool")
	}
	return &t, nil
}

func (r *Repo) CreateTool(ctx context.Context, t *models.Tool) error {
	return translate(r.DB.WithContext(ctx).Create(t).Error, "tool")
}

// BindTool moves a placeholder to available under its physical tag and code.
// The status guard makes a second bind of the same placeholder a conflict.
func (r *Repo) BindTool(ctx context.Context, id, tag, code, name string, at time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.Tool{}).
		Where("id = ? AND status = ?", id, models.StatusPlaceholder).
		Updates(map[string]any{
			"tag_id":     tag,
			"code":       code,
			"name":       name,
			"status":     models.StatusAvailable,
			"updated_at": at,
		})
	if res.Error != nil {
		return translate(res.Error, "tool binding")
	}
	if res.RowsAffected == 0 {
		return tracker.Errorf(tracker.KindConflict, "tool %s is no longer a placeholder", id)
	}
	return nil
}

func (r *Repo) SetToolStatus(ctx context.Context, id string, status models.Status, at time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.Tool{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": at})
	if res.Error != nil {
		return translate(res.Error, "tool status")
	}
	if res.RowsAffected == 0 {
		return tracker.Errorf(tracker.KindNotFound, "tool %s not found", id)
	}
	return nil
}

func (r *Repo) CountCodes(ctx context.Context, prefix string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Tool{}).
		Where("code LIKE ?", prefix+"%").
		Count(&n).Error
	return n, translate(err, "code count")
}

// RecentTools lists the newest tools, placeholders included.
func (r *Repo) RecentTools(ctx context.Context, limit int) ([]models.Tool, error) {
	var ts []models.Tool
	err := r.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&ts).Error
	return ts, translate(err, "tools")
}

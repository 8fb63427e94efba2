package db

import (
	"context"
	"time"

	"github.com/DeiroLy/Safe-Tools/models"
	"github.com/DeiroLy/Safe-Tools/tracker"
)

func (r *Repo) AppendLog(ctx context.Context, e *models.LogEntry) error {
	return translate(r.DB.WithContext(ctx).Create(e).Error, "log entry")
}

// LastLogTime returns the timestamp of the newest entry for toolID, or the
// zero time when it has none.
func (r *Repo) LastLogTime(ctx context.Context, toolID string) (time.Time, error) {
	var es []models.LogEntry
	err := r.DB.WithContext(ctx).
		Where("tool_id = ?", toolID).
		Order("timestamp DESC, id DESC").
		Limit(1).
		Find(&es).Error
	if err != nil {
		return time.Time{}, translate(err, "log entry")
	}
	if len(es) == 0 {
		return time.Time{}, nil
	}
	return es[0].Timestamp, nil
}

// ListLogs joins each entry with its tool and operator names.
func (r *Repo) ListLogs(ctx context.Context, q tracker.LogQuery) ([]tracker.LogView, error) {
	qry := r.DB.WithContext(ctx).
		Table(models.LogTable + " l").
		Select(`
			l.*,
			COALESCE(t.name, '')     AS tool_name,
			COALESCE(t.code, '')     AS tool_code,
			COALESCE(u.username, '') AS operator_username
		`).
		Joins("LEFT JOIN " + models.ToolTable + " t ON t.id = l.tool_id").
		Joins("LEFT JOIN lsb_users u ON u.id = l.operator_id")
	if q.ToolID != "" {
		qry = qry.Where("l.tool_id = ?", q.ToolID)
	}
	if q.NewestFirst {
		qry = qry.Order("l.timestamp DESC, l.id DESC")
	} else {
		qry = qry.Order("l.timestamp ASC, l.id ASC")
	}
	if q.Limit > 0 {
		qry = qry.Limit(q.Limit)
	}

	var rows []tracker.LogView
	if err := qry.Scan(&rows).Error; err != nil {
		return nil, translate(err, "log entries")
	}
	return rows, nil
}

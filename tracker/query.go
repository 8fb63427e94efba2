package tracker

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DeiroLy/Safe-Tools/models"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

// ToolView is the read-only projection of a tool handed to consoles and
// devices.
type ToolView struct {
	ID        string        `json:"id"`
	TagID     string        `json:"tagId"`
	Code      string        `json:"code,omitempty"`
	Name      string        `json:"name"`
	Category  string        `json:"category"`
	Status    models.Status `json:"status"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func viewOf(t *models.Tool) ToolView {
	v := ToolView{
		ID:        t.ID,
		TagID:     t.TagID,
		Name:      t.Name,
		Category:  t.Category,
		Status:    t.Status,
		UpdatedAt: t.UpdatedAt,
	}
	if t.Code != nil {
		v.Code = *t.Code
	}
	return v
}

// GetToolByTag looks a tool up by its tag. A placeholder is only reachable
// through its own synthetic tag.
func (s *Service) GetToolByTag(ctx context.Context, rawTag string) (v *ToolView, err error) {
	defer s.track("get_tool", time.Now(), &err)
	ctx, cancel := s.bound(ctx)
	defer cancel()

	tag := NormalizeTag(rawTag)
	if tag == "" {
		return nil, Errorf(KindInvalidInput, "missing tag")
	}
	t, err := s.store.FindToolByTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	out := viewOf(t)
	return &out, nil
}

// History returns the audit trail of one tool, oldest first.
func (s *Service) History(ctx context.Context, toolID string, limit int) (logs []LogView, err error) {
	defer s.track("history", time.Now(), &err)
	ctx, cancel := s.bound(ctx)
	defer cancel()

	toolID = strings.TrimSpace(toolID)
	if toolID == "" {
		return nil, Errorf(KindInvalidInput, "missing tool id")
	}
	if _, err := uuid.Parse(toolID); err != nil {
		return nil, Errorf(KindInvalidInput, "malformed tool id %q", toolID)
	}
	if _, err := s.store.FindToolByID(ctx, toolID); err != nil {
		return nil, err
	}
	return s.store.ListLogs(ctx, LogQuery{ToolID: toolID, Limit: clampLimit(limit)})
}

// RecentLogs returns the newest entries across all tools, newest first.
func (s *Service) RecentLogs(ctx context.Context, limit int) (logs []LogView, err error) {
	defer s.track("recent_logs", time.Now(), &err)
	ctx, cancel := s.bound(ctx)
	defer cancel()

	return s.store.ListLogs(ctx, LogQuery{Limit: clampLimit(limit), NewestFirst: true})
}

func clampLimit(n int) int {
	if n <= 0 {
		return defaultLogLimit
	}
	if n > maxLogLimit {
		return maxLogLimit
	}
	return n
}

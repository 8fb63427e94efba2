package tracker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DeiroLy/Safe-Tools/models"
)

// Intent is an operator's declared intent for the next scan.
type Intent struct {
	Kind       models.ModeKind
	Category   string
	OperatorID string
}

// ModeRecord describes a declared mode. Token is the correlation handle the
// scan should present back; PlaceholderTag and ToolID are set for register.
type ModeRecord struct {
	ID             uint            `json:"id"`
	Token          string          `json:"token"`
	Kind           models.ModeKind `json:"kind"`
	ToolID         string          `json:"toolId,omitempty"`
	PlaceholderTag string          `json:"placeholderTag,omitempty"`
	Category       string          `json:"category,omitempty"`
	OperatorID     string          `json:"operatorId,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// PendingRegistration is the register mode a scan without a token would bind
// to, together with its placeholder tool.
type PendingRegistration struct {
	Mode ModeRecord `json:"mode"`
	Tool ToolView   `json:"tool"`
}

// DeclareIntent appends a mode. For register it also creates the placeholder
// tool under a fresh synthetic tag, regenerating the tag on collision up to
// the configured number of attempts.
func (s *Service) DeclareIntent(ctx context.Context, in Intent) (rec *ModeRecord, err error) {
	defer s.track("declare_intent", time.Now(), &err)
	ctx, cancel := s.bound(ctx)
	defer cancel()

	switch in.Kind {
	case models.ModeRegister, models.ModeCheckOut, models.ModeReturn, models.ModeIdle:
	default:
		return nil, Errorf(KindInvalidInput, "unknown mode kind %q", in.Kind)
	}
	operator, err := operatorRef(in.OperatorID)
	if err != nil {
		return nil, err
	}

	if in.Kind != models.ModeRegister {
		m := &models.Mode{
			Token:      uuid.NewString(),
			Kind:       in.Kind,
			OperatorID: operator,
			CreatedAt:  s.clock.Now().UTC(),
		}
		if err := s.store.CreateMode(ctx, m); err != nil {
			return nil, err
		}
		s.logger.Info("mode declared", "mode_id", m.ID, "kind", m.Kind)
		r := recordOf(m, nil)
		return &r, nil
	}

	category := strings.TrimSpace(in.Category)
	var (
		mode *models.Mode
		tool *models.Tool
	)
	err = retryOnConflict(ctx, s.attempts, func(int) error {
		tag, err := s.newTag()
		if err != nil {
			return Wrap(KindInternal, err, "generate placeholder tag")
		}
		return s.store.Tx(ctx, func(tx Store) error {
			now := s.clock.Now().UTC()
			t := &models.Tool{
				ID:        uuid.NewString(),
				TagID:     tag,
				Category:  category,
				Status:    models.StatusPlaceholder,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.CreateTool(ctx, t); err != nil {
				return err
			}
			m := &models.Mode{
				Token:      uuid.NewString(),
				Kind:       models.ModeRegister,
				ToolID:     &t.ID,
				OperatorID: operator,
				CreatedAt:  now,
			}
			if err := tx.CreateMode(ctx, m); err != nil {
				return err
			}
			mode, tool = m, t
			return nil
		})
	}, func(n int, err error) {
		s.metrics.collision(ctx)
		s.logger.Warn("placeholder tag collision", "attempt", n, "err", err)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("registration pending", "mode_id", mode.ID, "tool_id", tool.ID, "placeholder", tool.TagID, "category", category)
	r := recordOf(mode, tool)
	return &r, nil
}

// LatestPendingRegistration returns the newest register mode if its
// placeholder is still unbound. Only the newest register mode is ever
// active: once it is fulfilled there is nothing pending until the next one.
//
// This fallback assumes a single operator and a single scanner. Concurrent
// consoles should pass the mode token to the scan instead.
func (s *Service) LatestPendingRegistration(ctx context.Context) (p *PendingRegistration, err error) {
	defer s.track("latest_pending", time.Now(), &err)
	ctx, cancel := s.bound(ctx)
	defer cancel()

	mode, tool, err := s.latestPending(ctx, s.store)
	if err != nil {
		return nil, err
	}
	return &PendingRegistration{Mode: recordOf(mode, tool), Tool: viewOf(tool)}, nil
}

func (s *Service) latestPending(ctx context.Context, st Store) (*models.Mode, *models.Tool, error) {
	mode, err := st.LatestMode(ctx, models.ModeRegister)
	if errors.Is(err, ErrNotFound) {
		return nil, nil, ErrNoPendingRegistration
	}
	if err != nil {
		return nil, nil, err
	}
	if mode.ToolID == nil {
		return nil, nil, ErrNoPendingRegistration
	}
	tool, err := st.FindToolByID(ctx, *mode.ToolID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil, ErrNoPendingRegistration
	}
	if err != nil {
		return nil, nil, err
	}
	if tool.Status != models.StatusPlaceholder {
		return nil, nil, ErrNoPendingRegistration
	}
	return mode, tool, nil
}

func recordOf(m *models.Mode, t *models.Tool) ModeRecord {
	r := ModeRecord{
		ID:        m.ID,
		Token:     m.Token,
		Kind:      m.Kind,
		CreatedAt: m.CreatedAt,
	}
	if m.ToolID != nil {
		r.ToolID = *m.ToolID
	}
	if m.OperatorID != nil {
		r.OperatorID = *m.OperatorID
	}
	if t != nil {
		r.PlaceholderTag = t.TagID
		r.Category = t.Category
	}
	return r
}

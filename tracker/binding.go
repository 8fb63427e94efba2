package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/DeiroLy/Safe-Tools/models"
)

type BindOutcome string

const (
	OutcomeBound        BindOutcome = "bound"
	OutcomeAlreadyBound BindOutcome = "already_bound"
)

// BindingResult reports what a registration scan did. AlreadyBound is a
// benign outcome: the tag was registered before and nothing changed.
type BindingResult struct {
	Outcome   BindOutcome `json:"outcome"`
	Tool      ToolView    `json:"tool"`
	ModeToken string      `json:"modeToken,omitempty"`
	LogID     uint        `json:"logId,omitempty"`
}

// ResolveScan binds a freshly scanned physical tag to the placeholder of a
// register mode. The mode is the one named by modeToken, or the latest pending
// registration when the token is empty.
//
// Scanning a tag that is already bound returns OutcomeAlreadyBound and writes
// nothing. A token whose placeholder already holds another tag is
// ErrModeFulfilled. A concurrent scan that binds the same tag, or the latest
// pending placeholder, first makes this call fail with ErrConflict; it is never
// retried internally.
func (s *Service) ResolveScan(ctx context.Context, rawTag, modeToken string) (res *BindingResult, err error) {
	defer s.track("resolve_scan", time.Now(), &err)
	ctx, cancel := s.bound(ctx)
	defer cancel()

	tag, err := physicalTag(rawTag)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.FindToolByTag(ctx, tag)
	switch {
	case err == nil:
		return s.alreadyBound(ctx, existing), nil
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	mode, err := s.registerTarget(ctx, modeToken)
	if err != nil {
		return nil, err
	}

	var (
		out    *BindingResult
		logID  uint
		seen   *models.Tool
		toolID = *mode.ToolID
	)
	err = s.store.Tx(ctx, func(tx Store) error {
		target, err := tx.LockToolByID(ctx, toolID)
		if errors.Is(err, ErrNotFound) {
			return &Error{Kind: KindNotFound, Msg: "placeholder tool " + toolID + " is gone"}
		}
		if err != nil {
			return err
		}
		// A duplicate scan may have committed between the first lookup and
		// the lock.
		if other, err := tx.FindToolByTag(ctx, tag); err == nil {
			seen = other
			return nil
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if target.Status != models.StatusPlaceholder {
			if modeToken != "" {
				return ErrModeFulfilled
			}
			// The latest pending registration was bound under us; a resubmit
			// resolves whatever is pending by then.
			return Errorf(KindConflict, "placeholder %s was already bound to tag %s", target.ID, target.TagID)
		}

		prefix := CodePrefix(target.Category)
		if err := tx.LockCodePrefix(ctx, prefix); err != nil {
			return err
		}
		coded, err := tx.CountCodes(ctx, prefix)
		if err != nil {
			return err
		}
		code := NextCode(target.Category, coded)
		name := target.Name
		if name == "" {
			name = "ITEM-" + code
		}
		now, err := s.stamp(ctx, tx, target.ID)
		if err != nil {
			return err
		}
		if err := tx.BindTool(ctx, target.ID, tag, code, name, now); err != nil {
			if errors.Is(err, ErrConflict) {
				return &Error{Kind: KindConflict, Msg: "tag " + tag + " or code " + code + " bound by a concurrent request", Err: err}
			}
			return err
		}
		entry := &models.LogEntry{
			ToolID:     &target.ID,
			TagID:      tag,
			OperatorID: mode.OperatorID,
			Action:     models.ActionBind,
			Timestamp:  now,
		}
		if err := tx.AppendLog(ctx, entry); err != nil {
			return err
		}
		logID = entry.ID

		target.TagID = tag
		target.Code = &code
		target.Name = name
		target.Status = models.StatusAvailable
		target.UpdatedAt = now
		out = &BindingResult{Outcome: OutcomeBound, Tool: viewOf(target), ModeToken: mode.Token, LogID: logID}
		return nil
	})
	if err != nil {
		s.metrics.scan(ctx, resultLabel(err))
		return nil, err
	}
	if seen != nil {
		return s.alreadyBound(ctx, seen), nil
	}

	s.metrics.bound(ctx)
	s.metrics.scan(ctx, string(OutcomeBound))
	s.logger.Info("tag bound", "tool_id", out.Tool.ID, "tag", tag, "code", out.Tool.Code, "mode_id", mode.ID)
	return out, nil
}

func (s *Service) alreadyBound(ctx context.Context, t *models.Tool) *BindingResult {
	s.metrics.scan(ctx, string(OutcomeAlreadyBound))
	s.logger.Debug("tag already bound", "tool_id", t.ID, "tag", t.TagID)
	return &BindingResult{Outcome: OutcomeAlreadyBound, Tool: viewOf(t)}
}

// registerTarget resolves the register mode a binding scan fulfils.
func (s *Service) registerTarget(ctx context.Context, token string) (*models.Mode, error) {
	if token == "" {
		mode, _, err := s.latestPending(ctx, s.store)
		return mode, err
	}
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrInvalidMode
	}
	mode, err := s.store.FindModeByToken(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidMode
	}
	if err != nil {
		return nil, err
	}
	if mode.Kind != models.ModeRegister || mode.ToolID == nil {
		return nil, ErrInvalidMode
	}
	return mode, nil
}

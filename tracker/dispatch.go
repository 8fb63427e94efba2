package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/DeiroLy/Safe-Tools/models"
)

// ScanEvent is a raw scan as delivered by the device relay. Action and
// ModeToken are both optional; see Dispatch.
type ScanEvent struct {
	Tag           string
	Action        models.ModeKind
	ModeToken     string
	OperatorID    string
	BorrowerName  string
	BorrowerClass string
}

// ScanResult holds exactly one of Binding, Transition or Raw.
type ScanResult struct {
	Kind       models.ModeKind   `json:"kind"`
	Binding    *BindingResult    `json:"binding,omitempty"`
	Transition *TransitionResult `json:"transition,omitempty"`
	Raw        *models.LogEntry  `json:"raw,omitempty"`
}

// Dispatch routes a scan to the resolver or the lending handler. The intent
// is the event's explicit action, else the kind of the mode it references,
// else the newest declared mode. An idle intent, or none at all, records the
// scan as raw evidence without touching any tool.
func (s *Service) Dispatch(ctx context.Context, ev ScanEvent) (*ScanResult, error) {
	kind, err := s.intentFor(ctx, ev)
	if err != nil {
		return nil, err
	}
	switch kind {
	case models.ModeRegister:
		b, err := s.ResolveScan(ctx, ev.Tag, ev.ModeToken)
		if err != nil {
			return nil, err
		}
		return &ScanResult{Kind: kind, Binding: b}, nil
	case models.ModeCheckOut, models.ModeReturn:
		t, err := s.Transition(ctx, TransitionRequest{
			Tag:           ev.Tag,
			Kind:          kind,
			BorrowerName:  ev.BorrowerName,
			BorrowerClass: ev.BorrowerClass,
			OperatorID:    ev.OperatorID,
		})
		if err != nil {
			return nil, err
		}
		return &ScanResult{Kind: kind, Transition: t}, nil
	}
	entry, err := s.RecordRawScan(ctx, ev.Tag, ev.OperatorID)
	if err != nil {
		return nil, err
	}
	return &ScanResult{Kind: models.ModeIdle, Raw: entry}, nil
}

func (s *Service) intentFor(ctx context.Context, ev ScanEvent) (models.ModeKind, error) {
	switch ev.Action {
	case "":
	case models.ModeRegister, models.ModeCheckOut, models.ModeReturn, models.ModeIdle:
		return ev.Action, nil
	default:
		return "", Errorf(KindInvalidInput, "unknown action %q", ev.Action)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if ev.ModeToken != "" {
		if _, err := uuid.Parse(ev.ModeToken); err != nil {
			return "", ErrInvalidMode
		}
		m, err := s.store.FindModeByToken(ctx, ev.ModeToken)
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidMode
		}
		if err != nil {
			return "", err
		}
		return m.Kind, nil
	}
	m, err := s.store.LatestMode(ctx, "")
	if errors.Is(err, ErrNotFound) {
		return models.ModeIdle, nil
	}
	if err != nil {
		return "", err
	}
	return m.Kind, nil
}

// RecordRawScan appends a raw-scan entry. ToolID is filled when the tag
// belongs to a bound tool and left nil otherwise.
func (s *Service) RecordRawScan(ctx context.Context, rawTag, operatorID string) (entry *models.LogEntry, err error) {
	defer s.track("raw_scan", time.Now(), &err)
	ctx, cancel := s.bound(ctx)
	defer cancel()

	tag := NormalizeTag(rawTag)
	if tag == "" {
		return nil, Errorf(KindInvalidInput, "missing tag")
	}
	operator, err := operatorRef(operatorID)
	if err != nil {
		return nil, err
	}
	err = s.store.Tx(ctx, func(tx Store) error {
		e := &models.LogEntry{
			TagID:      tag,
			OperatorID: operator,
			Action:     models.ActionRawScan,
		}
		tool, err := tx.FindToolByTag(ctx, tag)
		switch {
		case err == nil && tool.Status != models.StatusPlaceholder:
			e.ToolID = &tool.ID
		case err != nil && !errors.Is(err, ErrNotFound):
			return err
		}
		toolID := ""
		if e.ToolID != nil {
			toolID = *e.ToolID
		}
		if e.Timestamp, err = s.stamp(ctx, tx, toolID); err != nil {
			return err
		}
		if err := tx.AppendLog(ctx, e); err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.scan(ctx, "raw")
	if entry.ToolID != nil {
		s.logger.Info("raw scan recorded", "tag", tag, "tool_id", *entry.ToolID)
	} else {
		s.logger.Info("raw scan recorded", "tag", tag)
	}
	return entry, nil
}

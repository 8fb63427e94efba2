package tracker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/DeiroLy/Safe-Tools/models"
)

type TransitionOutcome string

const (
	OutcomeTransitioned      TransitionOutcome = "transitioned"
	OutcomeAlreadyCheckedOut TransitionOutcome = "already_checked_out"
	OutcomeAlreadyAvailable  TransitionOutcome = "already_available"
)

// TransitionRequest is a check-out or return scan. Borrower fields turn a
// check-out into a loan.
type TransitionRequest struct {
	Tag           string
	Kind          models.ModeKind
	BorrowerName  string
	BorrowerClass string
	OperatorID    string
}

type TransitionResult struct {
	Outcome  TransitionOutcome `json:"outcome"`
	Previous models.Status     `json:"previous"`
	Tool     ToolView          `json:"tool"`
	LogID    uint              `json:"logId"`
}

// Transition flips the lending status of the tool bound to req.Tag and
// appends the matching log entry in the same transaction.
//
// Checking out a tool that is already out changes nothing but is still
// logged and reported as OutcomeAlreadyCheckedOut. Returning an available tool
// is likewise logged as OutcomeAlreadyAvailable.
func (s *Service) Transition(ctx context.Context, req TransitionRequest) (res *TransitionResult, err error) {
	defer s.track("transition", time.Now(), &err)
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if !req.Kind.Lending() {
		return nil, Errorf(KindInvalidInput, "transition kind must be check-out or return, got %q", req.Kind)
	}
	tag := NormalizeTag(req.Tag)
	if tag == "" {
		return nil, Errorf(KindInvalidInput, "missing tag")
	}
	operator, err := operatorRef(req.OperatorID)
	if err != nil {
		return nil, err
	}
	borrowerName := strPtr(strings.TrimSpace(req.BorrowerName))
	borrowerClass := strPtr(strings.TrimSpace(req.BorrowerClass))

	err = s.store.Tx(ctx, func(tx Store) error {
		tool, err := tx.LockToolByTag(ctx, tag)
		if errors.Is(err, ErrNotFound) {
			return ErrNotLendable
		}
		if err != nil {
			return err
		}
		if tool.Status == models.StatusPlaceholder {
			return ErrNotLendable
		}

		prev := tool.Status
		next, outcome := nextStatus(prev, req.Kind, borrowerName != nil || borrowerClass != nil)
		now, err := s.stamp(ctx, tx, tool.ID)
		if err != nil {
			return err
		}
		if next != prev {
			if err := tx.SetToolStatus(ctx, tool.ID, next, now); err != nil {
				return err
			}
			tool.Status = next
			tool.UpdatedAt = now
		}
		entry := &models.LogEntry{
			ToolID:        &tool.ID,
			TagID:         tag,
			OperatorID:    operator,
			Action:        models.ActionFor(req.Kind),
			BorrowerName:  borrowerName,
			BorrowerClass: borrowerClass,
			Timestamp:     now,
		}
		if err := tx.AppendLog(ctx, entry); err != nil {
			return err
		}
		res = &TransitionResult{Outcome: outcome, Previous: prev, Tool: viewOf(tool), LogID: entry.ID}
		return nil
	})
	if err != nil {
		s.metrics.transition(ctx, string(req.Kind), resultLabel(err))
		return nil, err
	}

	s.metrics.transition(ctx, string(req.Kind), string(res.Outcome))
	if res.Outcome == OutcomeTransitioned {
		s.logger.Info("tool transitioned", "tool_id", res.Tool.ID, "tag", tag, "from", res.Previous, "to", res.Tool.Status)
	} else {
		s.logger.Debug("redundant lending scan", "tool_id", res.Tool.ID, "tag", tag, "kind", req.Kind, "status", res.Tool.Status)
	}
	return res, nil
}

func nextStatus(cur models.Status, kind models.ModeKind, borrower bool) (models.Status, TransitionOutcome) {
	if kind == models.ModeReturn {
		if cur == models.StatusAvailable {
			return cur, OutcomeAlreadyAvailable
		}
		return models.StatusAvailable, OutcomeTransitioned
	}
	if cur.Lent() {
		return cur, OutcomeAlreadyCheckedOut
	}
	if borrower {
		return models.StatusLoaned, OutcomeTransitioned
	}
	return models.StatusCheckedOut, OutcomeTransitioned
}

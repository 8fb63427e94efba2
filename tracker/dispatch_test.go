package tracker_test

import (
	"context"
	"testing"

	"github.com/DeiroLy/Safe-Tools/models"
	"github.com/DeiroLy/Safe-Tools/tracker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchWithoutModesRecordsRawScan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Dispatch(ctx, tracker.ScanEvent{Tag: "de ad"})
	require.NoError(t, err)
	assert.Equal(t, models.ModeIdle, res.Kind)
	require.NotNil(t, res.Raw)
	assert.Nil(t, res.Raw.ToolID)
	assert.Equal(t, "DEAD", res.Raw.TagID)
	assert.Equal(t, models.ActionRawScan, res.Raw.Action)
}

func TestDispatchFollowsLatestMode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.DeclareIntent(ctx, tracker.Intent{Kind: models.ModeRegister, Category: "Ar"})
	require.NoError(t, err)
	res, err := f.svc.Dispatch(ctx, tracker.ScanEvent{Tag: "AIR1"})
	require.NoError(t, err)
	require.NotNil(t, res.Binding)
	assert.Equal(t, tracker.OutcomeBound, res.Binding.Outcome)
	toolID := res.Binding.Tool.ID

	_, err = f.svc.DeclareIntent(ctx, tracker.Intent{Kind: models.ModeCheckOut})
	require.NoError(t, err)
	res, err = f.svc.Dispatch(ctx, tracker.ScanEvent{Tag: "AIR1"})
	require.NoError(t, err)
	require.NotNil(t, res.Transition)
	assert.Equal(t, models.StatusCheckedOut, res.Transition.Tool.Status)

	// An explicit action wins over the declared mode.
	res, err = f.svc.Dispatch(ctx, tracker.ScanEvent{Tag: "AIR1", Action: models.ModeReturn})
	require.NoError(t, err)
	require.NotNil(t, res.Transition)
	assert.Equal(t, models.StatusAvailable, res.Transition.Tool.Status)

	_, err = f.svc.DeclareIntent(ctx, tracker.Intent{Kind: models.ModeIdle})
	require.NoError(t, err)
	op := uuid.NewString()
	res, err = f.svc.Dispatch(ctx, tracker.ScanEvent{Tag: "AIR1", OperatorID: op})
	require.NoError(t, err)
	require.NotNil(t, res.Raw)
	require.NotNil(t, res.Raw.ToolID)
	assert.Equal(t, toolID, *res.Raw.ToolID)
	require.NotNil(t, res.Raw.OperatorID)
	assert.Equal(t, op, *res.Raw.OperatorID)

	logs, err := f.svc.History(ctx, toolID, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 4)
}

func TestDispatchUsesTokenKind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Ar", "TOK1")

	co, err := f.svc.DeclareIntent(ctx, tracker.Intent{Kind: models.ModeCheckOut})
	require.NoError(t, err)
	// A newer register mode does not redirect a scan that names its mode.
	_, err = f.svc.DeclareIntent(ctx, tracker.Intent{Kind: models.ModeRegister, Category: "Ar"})
	require.NoError(t, err)

	res, err := f.svc.Dispatch(ctx, tracker.ScanEvent{Tag: "TOK1", ModeToken: co.Token})
	require.NoError(t, err)
	assert.Equal(t, models.ModeCheckOut, res.Kind)
	require.NotNil(t, res.Transition)
	assert.Equal(t, tracker.OutcomeTransitioned, res.Transition.Outcome)

	_, err = f.svc.Dispatch(ctx, tracker.ScanEvent{Tag: "TOK1", ModeToken: "garbage"})
	assert.ErrorIs(t, err, tracker.ErrInvalidMode)
	_, err = f.svc.Dispatch(ctx, tracker.ScanEvent{Tag: "TOK1", Action: "fly"})
	assert.ErrorIs(t, err, tracker.ErrInvalidInput)
}

func TestRawScanOfPlaceholderTagLeavesToolUnset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.svc.DeclareIntent(ctx, tracker.Intent{Kind: models.ModeRegister})
	require.NoError(t, err)

	entry, err := f.svc.RecordRawScan(ctx, rec.PlaceholderTag, "")
	require.NoError(t, err)
	assert.Nil(t, entry.ToolID)
	assert.Equal(t, rec.PlaceholderTag, entry.TagID)

	_, err = f.svc.RecordRawScan(ctx, " ", "")
	assert.ErrorIs(t, err, tracker.ErrInvalidInput)
}

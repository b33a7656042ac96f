package stock

import (
	"context"
	"testing"

	"github.com/mzjcars/stockdesk/internal/db"
	"github.com/mzjcars/stockdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStateCollection holds the aggregate in memory with the same conditional
// replace semantics as the mongo implementation. conflictsLeft makes the first
// n writes fail with a version conflict to exercise the retry loop.
type memStateCollection struct {
	state         models.StockState
	conflictsLeft int
	writes        int
}

func newMemState(vehicles ...models.VehicleRecord) *memStateCollection {
	return &memStateCollection{state: models.StockState{
		ID:    db.StateDocID,
		Stock: vehicles,
		Moves: []models.TransferRecord{},
	}}
}

func (m *memStateCollection) Get(ctx context.Context) (*models.StockState, error) {
	copied := m.state
	copied.Stock = append([]models.VehicleRecord(nil), m.state.Stock...)
	copied.Moves = append([]models.TransferRecord(nil), m.state.Moves...)
	return &copied, nil
}

func (m *memStateCollection) Replace(ctx context.Context, state models.StockState, expectedVersion int64) error {
	if m.conflictsLeft > 0 {
		m.conflictsLeft--
		m.state.Version++ // the competing writer bumped it
		return db.ErrVersionConflict
	}
	if expectedVersion != m.state.Version {
		return db.ErrVersionConflict
	}
	state.Version = expectedVersion + 1
	m.state = state
	m.writes++
	return nil
}

func (m *memStateCollection) Watch(ctx context.Context) (db.StateStream, error) {
	return nil, nil
}

func vehicle(vin, car string, loc models.Location) models.VehicleRecord {
	return models.VehicleRecord{ID: primitive.NewObjectID(), VIN: vin, Car: car, Location: loc}
}

var (
	warehouseAvail = models.MakeLocation(models.SiteWarehouse, models.StatusAvailable)
	branch1Avail   = models.MakeLocation(models.SiteBranch1, models.StatusAvailable)
	soldPending    = models.MakeLocation(models.SiteWarehouse, models.StatusSoldPending)
)

func TestTransfer_SingleVIN(t *testing.T) {
	states := newMemState(vehicle("V1", "Land Cruiser", warehouseAvail))
	svc := NewService(states)

	result, err := svc.Transfer(context.Background(), []string{"V1"}, branch1Avail, TransferOptions{})
	require.NoError(t, err)

	require.Len(t, result.Outcomes, 1)
	assert.True(t, result.Outcomes[0].OK)
	assert.Equal(t, warehouseAvail, result.Outcomes[0].From)
	assert.Equal(t, branch1Avail, result.Outcomes[0].To)

	assert.Equal(t, branch1Avail, states.state.Stock[0].Location)
	require.Len(t, states.state.Moves, 1)
	assert.Equal(t, warehouseAvail, states.state.Moves[0].From)
	assert.Equal(t, branch1Avail, states.state.Moves[0].To)
	assert.Equal(t, "Land Cruiser", states.state.Moves[0].Car)
}

func TestTransfer_UnknownVINDoesNotAbortBatch(t *testing.T) {
	states := newMemState(
		vehicle("V1", "Camry", warehouseAvail),
		vehicle("V2", "Corolla", warehouseAvail),
	)
	svc := NewService(states)

	result, err := svc.Transfer(context.Background(), []string{"V1", "MISSING", "V2"}, branch1Avail, TransferOptions{})
	require.NoError(t, err)

	require.Len(t, result.Outcomes, 3)
	assert.True(t, result.Outcomes[0].OK)
	assert.False(t, result.Outcomes[1].OK)
	assert.Equal(t, "VIN not found", result.Outcomes[1].Reason)
	assert.True(t, result.Outcomes[2].OK)

	assert.Len(t, states.state.Moves, 2)
	assert.Equal(t, branch1Avail, states.state.Stock[0].Location)
	assert.Equal(t, branch1Avail, states.state.Stock[1].Location)
}

func TestTransfer_AllUnknownLeavesStoreUnchanged(t *testing.T) {
	states := newMemState(vehicle("V1", "Camry", warehouseAvail))
	svc := NewService(states)

	result, err := svc.Transfer(context.Background(), []string{"NOPE"}, branch1Avail, TransferOptions{})
	require.NoError(t, err)

	assert.False(t, result.Outcomes[0].OK)
	assert.Empty(t, states.state.Moves)
	assert.Equal(t, warehouseAvail, states.state.Stock[0].Location)
}

func TestTransfer_Validation(t *testing.T) {
	svc := NewService(newMemState())

	_, err := svc.Transfer(context.Background(), nil, branch1Avail, TransferOptions{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.Transfer(context.Background(), []string{"", ""}, branch1Avail, TransferOptions{})
	require.ErrorAs(t, err, &verr)

	_, err = svc.Transfer(context.Background(), []string{"V1"}, models.Location("Garage : Hidden"), TransferOptions{})
	require.ErrorAs(t, err, &verr)
}

func TestTransfer_NonSoldPendingNeverTouchesApprovals(t *testing.T) {
	states := newMemState(vehicle("V1", "Camry", warehouseAvail))
	svc := NewService(states)

	opts := TransferOptions{AdminApproved: true, AdminNotes: "x", FinanceApproved: true, FinanceNotes: "y"}
	_, err := svc.Transfer(context.Background(), []string{"V1"}, branch1Avail, opts)
	require.NoError(t, err)

	v := states.state.Stock[0]
	assert.False(t, v.AdminApproved)
	assert.False(t, v.FinanceApproved)
	assert.Empty(t, v.AdminNotes)
	assert.Empty(t, v.FinanceNotes)

	m := states.state.Moves[0]
	assert.Nil(t, m.AdminApproved)
	assert.Nil(t, m.FinanceApproved)
	assert.Empty(t, m.AdminNotes)
}

func TestTransfer_SoldPendingCapturesApprovals(t *testing.T) {
	states := newMemState(vehicle("V1", "Land Cruiser", warehouseAvail))
	svc := NewService(states)

	opts := TransferOptions{AdminApproved: true, AdminNotes: "mgmt ok", FinanceApproved: false}
	result, err := svc.Transfer(context.Background(), []string{"V1"}, soldPending, opts)
	require.NoError(t, err)

	require.Len(t, result.Moves, 1)
	move := result.Moves[0]
	require.NotNil(t, move.AdminApproved)
	require.NotNil(t, move.FinanceApproved)
	assert.True(t, *move.AdminApproved)
	assert.False(t, *move.FinanceApproved)
	assert.Equal(t, "mgmt ok", move.AdminNotes)

	v := states.state.Stock[0]
	assert.True(t, v.AdminApproved)
	assert.False(t, v.FinanceApproved)
	assert.Equal(t, "mgmt ok", v.AdminNotes)

	assert.Equal(t, PendingFinance, ApprovalStateOf(move))
}

func TestTransfer_RetriesOnVersionConflict(t *testing.T) {
	states := newMemState(vehicle("V1", "Camry", warehouseAvail))
	states.conflictsLeft = 2
	svc := NewService(states)

	_, err := svc.Transfer(context.Background(), []string{"V1"}, branch1Avail, TransferOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, states.writes)
	assert.Len(t, states.state.Moves, 1)
}

func TestTransfer_GivesUpAfterRepeatedConflicts(t *testing.T) {
	states := newMemState(vehicle("V1", "Camry", warehouseAvail))
	states.conflictsLeft = maxWriteAttempts
	svc := NewService(states)

	_, err := svc.Transfer(context.Background(), []string{"V1"}, branch1Avail, TransferOptions{})
	var serr *RemoteStoreError
	require.ErrorAs(t, err, &serr)
}

func TestAddVehicle(t *testing.T) {
	states := newMemState()
	svc := NewService(states)

	t.Run("requires car and vin", func(t *testing.T) {
		var verr *ValidationError
		_, err := svc.AddVehicle(context.Background(), models.VehicleRecord{VIN: "V1", Location: warehouseAvail})
		require.ErrorAs(t, err, &verr)
		_, err = svc.AddVehicle(context.Background(), models.VehicleRecord{Car: "Camry", Location: warehouseAvail})
		require.ErrorAs(t, err, &verr)
	})

	t.Run("rejects off-taxonomy location", func(t *testing.T) {
		var verr *ValidationError
		_, err := svc.AddVehicle(context.Background(), models.VehicleRecord{Car: "Camry", VIN: "V1", Location: "nowhere"})
		require.ErrorAs(t, err, &verr)
	})

	t.Run("appends to the list", func(t *testing.T) {
		added, err := svc.AddVehicle(context.Background(), models.VehicleRecord{Car: "Camry", VIN: "V1", Location: warehouseAvail})
		require.NoError(t, err)
		assert.False(t, added.ID.IsZero())
		assert.False(t, added.CreatedAt.IsZero())
		require.Len(t, states.state.Stock, 1)
	})
}

func TestUpdateVehicle(t *testing.T) {
	v := vehicle("V1", "Camry", warehouseAvail)
	states := newMemState(v)
	svc := NewService(states)

	plate := "ABC 123"
	updated, err := svc.UpdateVehicle(context.Background(), v.ID.Hex(), models.VehiclePatch{Plate: &plate})
	require.NoError(t, err)
	assert.Equal(t, "ABC 123", updated.Plate)
	assert.Equal(t, "Camry", updated.Car)

	var nerr *NotFoundError
	_, err = svc.UpdateVehicle(context.Background(), primitive.NewObjectID().Hex(), models.VehiclePatch{Plate: &plate})
	require.ErrorAs(t, err, &nerr)
}

func TestAppendMoves_Validation(t *testing.T) {
	svc := NewService(newMemState())
	var verr *ValidationError

	err := svc.AppendMoves(context.Background(), []models.TransferRecord{{From: warehouseAvail, To: warehouseAvail}})
	require.ErrorAs(t, err, &verr)

	err = svc.AppendMoves(context.Background(), []models.TransferRecord{{From: "nowhere", To: warehouseAvail}})
	require.ErrorAs(t, err, &verr)
}

func TestSetMoveApproval(t *testing.T) {
	admin := &models.User{Role: models.RoleAdmin}
	staff := &models.User{Role: models.RoleStaff}

	setup := func(t *testing.T) (*Service, *memStateCollection, string) {
		states := newMemState(vehicle("V1", "Land Cruiser", warehouseAvail))
		svc := NewService(states)
		result, err := svc.Transfer(context.Background(), []string{"V1"}, soldPending, TransferOptions{})
		require.NoError(t, err)
		return svc, states, result.Moves[0].ID
	}

	t.Run("staff may not approve", func(t *testing.T) {
		svc, _, moveID := setup(t)
		var perr *PermissionError
		_, err := svc.SetMoveApproval(context.Background(), moveID, ApprovalAdmin, true, "", staff)
		require.ErrorAs(t, err, &perr)
	})

	t.Run("flags advance toward approved and mirror onto the record", func(t *testing.T) {
		svc, states, moveID := setup(t)

		move, err := svc.SetMoveApproval(context.Background(), moveID, ApprovalFinance, true, "paid", admin)
		require.NoError(t, err)
		assert.Equal(t, PendingAdmin, ApprovalStateOf(*move))
		assert.True(t, states.state.Stock[0].FinanceApproved)
		assert.Equal(t, "paid", states.state.Stock[0].FinanceNotes)

		move, err = svc.SetMoveApproval(context.Background(), moveID, ApprovalAdmin, true, "", admin)
		require.NoError(t, err)
		assert.Equal(t, Approved, ApprovalStateOf(*move))
	})

	t.Run("reversal while pending is allowed", func(t *testing.T) {
		svc, _, moveID := setup(t)

		move, err := svc.SetMoveApproval(context.Background(), moveID, ApprovalAdmin, true, "", admin)
		require.NoError(t, err)
		assert.Equal(t, PendingFinance, ApprovalStateOf(*move))

		move, err = svc.SetMoveApproval(context.Background(), moveID, ApprovalAdmin, false, "", admin)
		require.NoError(t, err)
		assert.Equal(t, PendingBoth, ApprovalStateOf(*move))
	})

	t.Run("approved is terminal", func(t *testing.T) {
		svc, _, moveID := setup(t)
		_, err := svc.SetMoveApproval(context.Background(), moveID, ApprovalAdmin, true, "", admin)
		require.NoError(t, err)
		_, err = svc.SetMoveApproval(context.Background(), moveID, ApprovalFinance, true, "", admin)
		require.NoError(t, err)

		var verr *ValidationError
		_, err = svc.SetMoveApproval(context.Background(), moveID, ApprovalAdmin, false, "", admin)
		require.ErrorAs(t, err, &verr)
	})

	t.Run("unknown move", func(t *testing.T) {
		svc, _, _ := setup(t)
		var nerr *NotFoundError
		_, err := svc.SetMoveApproval(context.Background(), "missing", ApprovalAdmin, true, "", admin)
		require.ErrorAs(t, err, &nerr)
	})

	t.Run("non sold-pending move carries no approval", func(t *testing.T) {
		states := newMemState(vehicle("V1", "Camry", warehouseAvail))
		svc := NewService(states)
		result, err := svc.Transfer(context.Background(), []string{"V1"}, branch1Avail, TransferOptions{})
		require.NoError(t, err)

		var verr *ValidationError
		_, err = svc.SetMoveApproval(context.Background(), result.Moves[0].ID, ApprovalAdmin, true, "", admin)
		require.ErrorAs(t, err, &verr)
	})
}

package stock

import (
	"context"
	"errors"
	"time"

	"github.com/mzjcars/stockdesk/internal/db"
	"github.com/mzjcars/stockdesk/internal/models"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxWriteAttempts bounds the retry loop around version conflicts. Each retry
// recomputes the mutation against freshly read state, so a losing writer never
// clobbers the winner's changes.
const maxWriteAttempts = 3

// Service owns the stock aggregate: the vehicle list and the append-only move
// log, always read and written together.
type Service struct {
	states db.StateCollection
}

// NewService creates a stock service over the aggregate collection.
func NewService(states db.StateCollection) *Service {
	return &Service{states: states}
}

// TransferOptions carries the dual-approval capture for transfers into the
// sold-pending state. Ignored for every other destination.
type TransferOptions struct {
	AdminApproved   bool   `json:"adminApproved"`
	AdminNotes      string `json:"adminNotes"`
	FinanceApproved bool   `json:"financeApproved"`
	FinanceNotes    string `json:"financeNotes"`
}

// VINOutcome is the per-VIN result of a batch transfer.
type VINOutcome struct {
	VIN    string          `json:"vin"`
	OK     bool            `json:"ok"`
	From   models.Location `json:"from,omitempty"`
	To     models.Location `json:"to,omitempty"`
	Reason string          `json:"reason,omitempty"`
}

// TransferResult reports every per-VIN outcome plus the moves appended to the
// log for the successful ones.
type TransferResult struct {
	Outcomes []VINOutcome            `json:"outcomes"`
	Moves    []models.TransferRecord `json:"moves"`
}

// Snapshot returns the vehicle list and move log together, as they are
// persisted.
func (s *Service) Snapshot(ctx context.Context) (*models.StockState, error) {
	state, err := s.states.Get(ctx)
	if err != nil {
		return nil, &RemoteStoreError{Op: "read", Err: err}
	}
	return state, nil
}

// AddVehicle appends one record to the stock list.
func (s *Service) AddVehicle(ctx context.Context, v models.VehicleRecord) (*models.VehicleRecord, error) {
	if v.Car == "" {
		return nil, &ValidationError{Reason: "car model name is required"}
	}
	if v.VIN == "" {
		return nil, &ValidationError{Reason: "vin is required"}
	}
	if !v.Location.IsValid() {
		return nil, &ValidationError{Reason: "location is not in the fixed location set"}
	}

	v.ID = primitive.NewObjectID()
	v.CreatedAt = time.Now()

	err := s.mutate(ctx, func(state *models.StockState) error {
		state.Stock = append(state.Stock, v)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"vin": v.VIN, "car": v.Car, "location": v.Location}).Info("Vehicle added")
	return &v, nil
}

// UpdateVehicle merges patch fields into the record matching id.
func (s *Service) UpdateVehicle(ctx context.Context, id string, patch models.VehiclePatch) (*models.VehicleRecord, error) {
	if patch.Location != nil && !patch.Location.IsValid() {
		return nil, &ValidationError{Reason: "location is not in the fixed location set"}
	}

	var updated models.VehicleRecord
	err := s.mutate(ctx, func(state *models.StockState) error {
		for i := range state.Stock {
			if state.Stock[i].ID.Hex() == id {
				patch.Apply(&state.Stock[i])
				updated = state.Stock[i]
				return nil
			}
		}
		return &NotFoundError{Resource: "vehicle", Key: id}
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// AppendMoves appends entries to the move log without touching the stock list.
func (s *Service) AppendMoves(ctx context.Context, moves []models.TransferRecord) error {
	for _, m := range moves {
		if !m.From.IsValid() || !m.To.IsValid() {
			return &ValidationError{Reason: "move endpoints must be in the fixed location set"}
		}
		if m.From == m.To {
			return &ValidationError{Reason: "move endpoints must differ"}
		}
	}
	return s.mutate(ctx, func(state *models.StockState) error {
		state.Moves = append(state.Moves, moves...)
		return nil
	})
}

// Transfer applies a batch location change. Each VIN is handled independently:
// an unknown VIN records a failure and the rest of the batch proceeds. When the
// destination is the sold-pending state, the approval flags and notes from opts
// are stamped on both the new move and the vehicle record itself, so reporting
// never has to join against the log.
func (s *Service) Transfer(ctx context.Context, vins []string, destination models.Location, opts TransferOptions) (*TransferResult, error) {
	valid := make([]string, 0, len(vins))
	for _, vin := range vins {
		if vin != "" {
			valid = append(valid, vin)
		}
	}
	if len(valid) == 0 {
		return nil, &ValidationError{Reason: "at least one vin is required"}
	}
	if !destination.IsValid() {
		return nil, &ValidationError{Reason: "destination is not in the fixed location set"}
	}

	soldPending := destination.IsSoldPending()
	var result *TransferResult

	err := s.mutate(ctx, func(state *models.StockState) error {
		// Recomputed from scratch on every attempt.
		result = &TransferResult{}
		now := time.Now()

		for _, vin := range valid {
			idx := findByVIN(state.Stock, vin)
			if idx < 0 {
				result.Outcomes = append(result.Outcomes, VINOutcome{VIN: vin, Reason: "VIN not found"})
				continue
			}

			old := state.Stock[idx].Location
			if old == destination {
				result.Outcomes = append(result.Outcomes, VINOutcome{VIN: vin, Reason: "vehicle already at destination"})
				continue
			}

			state.Stock[idx].Location = destination
			if soldPending {
				state.Stock[idx].AdminNotes = opts.AdminNotes
				state.Stock[idx].FinanceNotes = opts.FinanceNotes
				state.Stock[idx].AdminApproved = opts.AdminApproved
				state.Stock[idx].FinanceApproved = opts.FinanceApproved
			}

			move := models.TransferRecord{
				ID:   primitive.NewObjectID().Hex(),
				VIN:  vin,
				Car:  state.Stock[idx].Car,
				From: old,
				To:   destination,
				Date: now,
			}
			if soldPending {
				admin, finance := opts.AdminApproved, opts.FinanceApproved
				move.AdminApproved = &admin
				move.FinanceApproved = &finance
				move.AdminNotes = opts.AdminNotes
				move.FinanceNotes = opts.FinanceNotes
			}

			result.Moves = append(result.Moves, move)
			result.Outcomes = append(result.Outcomes, VINOutcome{VIN: vin, OK: true, From: old, To: destination})
		}

		state.Moves = append(state.Moves, result.Moves...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"destination": destination,
		"requested":   len(valid),
		"moved":       len(result.Moves),
	}).Info("Transfer batch applied")
	return result, nil
}

// SetMoveApproval flips one approval flag on a pending sold-pending move, the
// only in-place edit the log permits, and mirrors the decision onto the
// vehicle record carrying the same VIN. Only the admin role may approve.
func (s *Service) SetMoveApproval(ctx context.Context, moveID string, kind ApprovalKind, approved bool, notes string, actor *models.User) (*models.TransferRecord, error) {
	if actor == nil || !actor.CanApprove() {
		return nil, &PermissionError{Action: "approve transfers"}
	}

	var updated models.TransferRecord
	err := s.mutate(ctx, func(state *models.StockState) error {
		idx := -1
		for i := range state.Moves {
			if state.Moves[i].ID == moveID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return &NotFoundError{Resource: "move", Key: moveID}
		}

		move := &state.Moves[idx]
		if !move.To.IsSoldPending() {
			return &ValidationError{Reason: "move does not require approval"}
		}
		if ApprovalStateOf(*move) == Approved {
			return &ValidationError{Reason: "approval already complete"}
		}

		switch kind {
		case ApprovalAdmin:
			move.AdminApproved = &approved
			move.AdminNotes = notes
		case ApprovalFinance:
			move.FinanceApproved = &approved
			move.FinanceNotes = notes
		default:
			return &ValidationError{Reason: "unknown approval kind"}
		}

		// Mirror onto the current vehicle record so views read one place.
		if vi := findByVIN(state.Stock, move.VIN); vi >= 0 {
			switch kind {
			case ApprovalAdmin:
				state.Stock[vi].AdminApproved = approved
				state.Stock[vi].AdminNotes = notes
			case ApprovalFinance:
				state.Stock[vi].FinanceApproved = approved
				state.Stock[vi].FinanceNotes = notes
			}
		}

		updated = *move
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"move":     moveID,
		"kind":     kind,
		"approved": approved,
		"state":    ApprovalStateOf(updated),
	}).Info("Move approval updated")
	return &updated, nil
}

// mutate runs the read-modify-write cycle with a version check on the write.
// A conflict means another writer replaced the aggregate mid-cycle; the
// mutation is recomputed against the fresh document up to maxWriteAttempts
// times.
func (s *Service) mutate(ctx context.Context, fn func(*models.StockState) error) error {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		state, err := s.states.Get(ctx)
		if err != nil {
			return &RemoteStoreError{Op: "read", Err: err}
		}

		if err := fn(state); err != nil {
			return err
		}

		err = s.states.Replace(ctx, *state, state.Version)
		if err == nil {
			return nil
		}
		if errors.Is(err, db.ErrVersionConflict) {
			log.WithField("attempt", attempt+1).Warn("Stock state version conflict, retrying")
			continue
		}
		return &RemoteStoreError{Op: "write", Err: err}
	}
	return &RemoteStoreError{Op: "write", Err: db.ErrVersionConflict}
}

func findByVIN(stock []models.VehicleRecord, vin string) int {
	for i := range stock {
		if stock[i].VIN == vin {
			return i
		}
	}
	return -1
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleRecord is one physical car in stock, identified externally by VIN.
// Duplicate VINs are not prevented: re-entering a previously sold chassis is
// a supported flow, so uniqueness is left to the operators.
type VehicleRecord struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VIN             string             `bson:"vin" json:"vin"`
	Car             string             `bson:"car" json:"car"`
	Variant         string             `bson:"variant" json:"variant"`
	Dealer          string             `bson:"dealer" json:"dealer"`
	ModelYear       string             `bson:"model_year" json:"modelYear"`
	ExtColor        string             `bson:"ext_color" json:"extColor"`
	IntColor        string             `bson:"int_color" json:"intColor"`
	Plate           string             `bson:"plate" json:"plate"`
	BatchName       string             `bson:"batch_name" json:"batchName"`
	Location        Location           `bson:"location" json:"location"`
	Notes           string             `bson:"notes" json:"notes"`
	AdminNotes      string             `bson:"admin_notes,omitempty" json:"adminNotes,omitempty"`
	FinanceNotes    string             `bson:"finance_notes,omitempty" json:"financeNotes,omitempty"`
	AdminApproved   bool               `bson:"admin_approved,omitempty" json:"adminApproved,omitempty"`
	FinanceApproved bool               `bson:"finance_approved,omitempty" json:"financeApproved,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
}

// IsActualRow reports whether the record is a real physical car rather than an
// in-transit bookkeeping row. Bookkeeping rows carry a VIN but no model name;
// they are excluded from shortage denominators.
func (v VehicleRecord) IsActualRow() bool {
	return v.VIN != "" && v.Car != ""
}

// VehiclePatch carries the editable fields of a vehicle record. Nil pointers
// mean "leave unchanged".
type VehiclePatch struct {
	Car          *string   `json:"car,omitempty"`
	Variant      *string   `json:"variant,omitempty"`
	Dealer       *string   `json:"dealer,omitempty"`
	ModelYear    *string   `json:"modelYear,omitempty"`
	ExtColor     *string   `json:"extColor,omitempty"`
	IntColor     *string   `json:"intColor,omitempty"`
	Plate        *string   `json:"plate,omitempty"`
	BatchName    *string   `json:"batchName,omitempty"`
	Location     *Location `json:"location,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	AdminNotes   *string   `json:"adminNotes,omitempty"`
	FinanceNotes *string   `json:"financeNotes,omitempty"`
}

// Apply merges the patch into v.
func (p VehiclePatch) Apply(v *VehicleRecord) {
	if p.Car != nil {
		v.Car = *p.Car
	}
	if p.Variant != nil {
		v.Variant = *p.Variant
	}
	if p.Dealer != nil {
		v.Dealer = *p.Dealer
	}
	if p.ModelYear != nil {
		v.ModelYear = *p.ModelYear
	}
	if p.ExtColor != nil {
		v.ExtColor = *p.ExtColor
	}
	if p.IntColor != nil {
		v.IntColor = *p.IntColor
	}
	if p.Plate != nil {
		v.Plate = *p.Plate
	}
	if p.BatchName != nil {
		v.BatchName = *p.BatchName
	}
	if p.Location != nil {
		v.Location = *p.Location
	}
	if p.Notes != nil {
		v.Notes = *p.Notes
	}
	if p.AdminNotes != nil {
		v.AdminNotes = *p.AdminNotes
	}
	if p.FinanceNotes != nil {
		v.FinanceNotes = *p.FinanceNotes
	}
}

// TransferRecord is one immutable entry in the move log: a single location
// change for one VIN. The model name is a snapshot taken at transfer time and
// may go stale relative to the vehicle record; it is never the source of truth.
// Approval fields are only meaningful when To is the sold-pending state, and
// flipping them is the only in-place update the log permits.
type TransferRecord struct {
	ID              string    `bson:"id" json:"id"`
	VIN             string    `bson:"vin" json:"vin"`
	Car             string    `bson:"car" json:"car"`
	From            Location  `bson:"from" json:"from"`
	To              Location  `bson:"to" json:"to"`
	Date            time.Time `bson:"date" json:"date"`
	AdminApproved   *bool     `bson:"admin_approved,omitempty" json:"adminApproved,omitempty"`
	FinanceApproved *bool     `bson:"finance_approved,omitempty" json:"financeApproved,omitempty"`
	AdminNotes      string    `bson:"admin_notes,omitempty" json:"adminNotes,omitempty"`
	FinanceNotes    string    `bson:"finance_notes,omitempty" json:"financeNotes,omitempty"`
}

// StockState is the aggregate document: the vehicle list and the move log,
// persisted together so they always move together. Version supports the
// conditional replace that guards concurrent read-modify-write cycles.
type StockState struct {
	ID      string           `bson:"_id" json:"id"`
	Stock   []VehicleRecord  `bson:"stock" json:"stock"`
	Moves   []TransferRecord `bson:"moves" json:"moves"`
	Version int64            `bson:"version" json:"version"`
}

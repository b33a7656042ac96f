package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestKind says what work a request asks for.
type RequestKind string

const (
	KindShoot RequestKind = "shoot"
	KindMove  RequestKind = "move"
	KindMixed RequestKind = "mixed"
)

// IsValidRequestKind checks a kind against the closed set.
func IsValidRequestKind(k RequestKind) bool {
	switch k {
	case KindShoot, KindMove, KindMixed:
		return true
	default:
		return false
	}
}

// RequestStatus is the closed lifecycle of a request.
type RequestStatus string

const (
	RequestNew        RequestStatus = "new"
	RequestInProgress RequestStatus = "in_progress"
	RequestComplete   RequestStatus = "complete"
)

// RequestStep is one stage of the fixed per-row execution order.
type RequestStep string

const (
	StepCreated         RequestStep = "created"
	StepReceivedRequest RequestStep = "received_request"
	StepSentVehicle     RequestStep = "sent_vehicle"
	StepVehicleReceived RequestStep = "vehicle_received"
	StepFinished        RequestStep = "finished"
)

// RequestSteps is the fixed execution order. Rows advance through it one step
// at a time; skipping or going backward is rejected.
var RequestSteps = []RequestStep{
	StepReceivedRequest,
	StepSentVehicle,
	StepVehicleReceived,
	StepFinished,
}

// StepProgress records which stages a row has passed.
type StepProgress struct {
	ReceivedRequest bool `bson:"s1" json:"s1"`
	SentVehicle     bool `bson:"s2" json:"s2"`
	VehicleReceived bool `bson:"s3" json:"s3"`
	Finished        bool `bson:"s4" json:"s4"`
}

// Current returns the furthest stage the row has reached.
func (p StepProgress) Current() RequestStep {
	switch {
	case p.Finished:
		return StepFinished
	case p.VehicleReceived:
		return StepVehicleReceived
	case p.SentVehicle:
		return StepSentVehicle
	case p.ReceivedRequest:
		return StepReceivedRequest
	default:
		return StepCreated
	}
}

// RequestRow is one VIN inside a request, with a denormalized snapshot of the
// car taken at creation time (best-effort: unknown VINs produce empty fields).
type RequestRow struct {
	VIN      string       `bson:"vin" json:"vin"`
	Kind     RequestKind  `bson:"kind" json:"kind"`
	Car      string       `bson:"car" json:"car"`
	Variant  string       `bson:"variant" json:"variant"`
	Location Location     `bson:"location" json:"location"`
	Steps    StepProgress `bson:"steps" json:"steps"`
}

// Request is a work ticket for a batch of vehicles needing photoshoot and/or
// relocation. It is independent state from the transfer log, cross-referenced
// by VIN only.
type Request struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind       RequestKind        `bson:"kind" json:"kind"`
	Status     RequestStatus      `bson:"status" json:"status"`
	Total      int                `bson:"total" json:"total"`
	VINs       []string           `bson:"vins" json:"vins"`
	Rows       []RequestRow       `bson:"rows" json:"rows"`
	CreatedBy  string             `bson:"created_by" json:"createdBy"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updatedAt"`
	FinishedAt *time.Time         `bson:"finished_at,omitempty" json:"finishedAt,omitempty"`
}

// AllRowsFinished reports whether every row has reached the final stage.
func (r Request) AllRowsFinished() bool {
	if len(r.Rows) == 0 {
		return false
	}
	for _, row := range r.Rows {
		if !row.Steps.Finished {
			return false
		}
	}
	return true
}

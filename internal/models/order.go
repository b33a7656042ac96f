package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStageCount is the number of stages a sales order passes through.
const OrderStageCount = 10

// SalesOrder tracks handover paperwork progress for one sold vehicle. DoneCount
// walks 0..10 one stage at a time, mirroring the request-row rule that stages
// cannot be skipped or undone.
type SalesOrder struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNo      string             `bson:"order_no" json:"orderNo"`
	CustomerName string             `bson:"customer_name" json:"customerName"`
	Phone        string             `bson:"phone" json:"phone"`
	Branch       string             `bson:"branch" json:"branch"`
	VIN          string             `bson:"vin" json:"vin"`
	SellerName   string             `bson:"seller_name" json:"sellerName"`
	DoneCount    int                `bson:"done_count" json:"doneCount"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// IsComplete reports whether every stage is done.
func (o SalesOrder) IsComplete() bool {
	return o.DoneCount >= OrderStageCount
}

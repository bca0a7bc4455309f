package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction represents one payment attempt against an invoice. TxnID is the
// gateway-side charge id (pp_id) and is only set once the payment is applied,
// which is what the duplicate-notification check keys on.
type Transaction struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InvoiceID primitive.ObjectID `bson:"invoice_id,omitempty" json:"invoice_id"`
	Gateway   string             `bson:"gateway" json:"gateway"`
	TxnID     string             `bson:"txn_id" json:"txn_id"`
	Amount    string             `bson:"amount" json:"amount"`
	Currency  string             `bson:"currency" json:"currency"`
	TxnStatus string             `bson:"txn_status" json:"txn_status"`
	Type      string             `bson:"type" json:"type"`
	Status    string             `bson:"status" json:"status"` // "received" or "complete"
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// TransactionUpdate carries the fields written to a transaction when a
// verified payment is applied.
type TransactionUpdate struct {
	TxnID     string `json:"txn_id"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	TxnStatus string `json:"txn_status"`
	Type      string `json:"type"`
	Status    string `json:"status"`
}

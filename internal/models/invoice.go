package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InvoiceClient is the client snapshot embedded in an invoice at creation
// time, so checkout keeps working even if the client record changes later.
type InvoiceClient struct {
	FirstName string `bson:"first_name" json:"first_name"`
	LastName  string `bson:"last_name" json:"last_name"`
	Email     string `bson:"email" json:"email"`
}

// Invoice represents an amount owed by a client. Total and Credit are decimal
// strings; arithmetic on them goes through shopspring/decimal, never floats.
type Invoice struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID  primitive.ObjectID `bson:"client_id" json:"client_id"`
	Client    InvoiceClient      `bson:"client" json:"client"`
	Total     string             `bson:"total" json:"total"`
	Currency  string             `bson:"currency" json:"currency"`
	Credit    string             `bson:"credit" json:"credit"`
	Status    string             `bson:"status" json:"status"` // "unpaid" or "paid"
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

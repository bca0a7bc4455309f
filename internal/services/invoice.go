package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rakibuldev/piprapay-gobilling/internal/models"
)

type InvoiceService struct {
	db *mongo.Database
}

func NewInvoiceService(db *mongo.Database) *InvoiceService {
	return &InvoiceService{db: db}
}

func (s *InvoiceService) CreateInvoice(ctx context.Context, invoice *models.Invoice) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	invoice.ID = primitive.NewObjectID()
	if invoice.Status == "" {
		invoice.Status = "unpaid"
	}
	if invoice.Credit == "" {
		invoice.Credit = "0"
	}
	invoice.CreatedAt = time.Now()
	invoice.UpdatedAt = invoice.CreatedAt

	if _, err := decimal.NewFromString(invoice.Total); err != nil {
		return "", fmt.Errorf("invalid invoice total %q: %v", invoice.Total, err)
	}

	result, err := s.db.Collection("invoices").InsertOne(ctx, invoice)
	if err != nil {
		log.Printf("Failed to insert invoice: %v", err)
		return "", fmt.Errorf("failed to create invoice: %v", err)
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *InvoiceService) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invoice %s: %w", id, models.ErrNotFound)
	}

	var invoice models.Invoice
	if err := s.db.Collection("invoices").FindOne(ctx, bson.M{"_id": objID}).Decode(&invoice); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("invoice %s: %w", id, models.ErrNotFound)
		}
		log.Printf("Failed to fetch invoice %s: %v", id, err)
		return nil, fmt.Errorf("failed to fetch invoice: %v", err)
	}
	return &invoice, nil
}

// PayWithCredits draws the invoice total from the client's credit balance.
// When the balance does not cover the total, the whole balance is applied and
// the invoice stays unpaid until more credit arrives.
func (s *InvoiceService) PayWithCredits(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return err
	}
	if invoice.Status == "paid" {
		return nil
	}

	var client models.Client
	if err := s.db.Collection("clients").FindOne(ctx, bson.M{"_id": invoice.ClientID}).Decode(&client); err != nil {
		if err == mongo.ErrNoDocuments {
			return fmt.Errorf("client %s: %w", invoice.ClientID.Hex(), models.ErrNotFound)
		}
		log.Printf("Failed to fetch client %s: %v", invoice.ClientID.Hex(), err)
		return fmt.Errorf("failed to fetch client: %v", err)
	}

	balance, err := parseAmount(client.Balance)
	if err != nil {
		return fmt.Errorf("invalid client balance %q: %v", client.Balance, err)
	}
	total, err := parseAmount(invoice.Total)
	if err != nil {
		return fmt.Errorf("invalid invoice total %q: %v", invoice.Total, err)
	}
	applied, err := parseAmount(invoice.Credit)
	if err != nil {
		return fmt.Errorf("invalid invoice credit %q: %v", invoice.Credit, err)
	}

	drawn, remaining := applyCredit(balance, total.Sub(applied))
	applied = applied.Add(drawn)

	if _, err := s.db.Collection("clients").UpdateOne(ctx,
		bson.M{"_id": invoice.ClientID},
		bson.M{"$set": bson.M{"balance": remaining.String()}},
	); err != nil {
		log.Printf("Failed to update client balance for %s: %v", invoice.ClientID.Hex(), err)
		return fmt.Errorf("failed to update client balance: %v", err)
	}

	update := bson.M{
		"credit":     applied.String(),
		"updated_at": time.Now(),
	}
	if applied.GreaterThanOrEqual(total) {
		update["status"] = "paid"
	}
	if _, err := s.db.Collection("invoices").UpdateOne(ctx,
		bson.M{"_id": invoice.ID},
		bson.M{"$set": update},
	); err != nil {
		log.Printf("Failed to update invoice %s: %v", id, err)
		return fmt.Errorf("failed to update invoice: %v", err)
	}

	log.Printf("Applied %s credits to invoice %s (paid=%v)", drawn.String(), id, applied.GreaterThanOrEqual(total))
	return nil
}

// applyCredit returns how much of owed the balance can cover and what remains
// of the balance afterwards. Exact decimal arithmetic, no rounding.
func applyCredit(balance, owed decimal.Decimal) (drawn, remaining decimal.Decimal) {
	if owed.IsNegative() {
		owed = decimal.Zero
	}
	drawn = balance
	if balance.GreaterThan(owed) {
		drawn = owed
	}
	return drawn, balance.Sub(drawn)
}

// parseAmount treats the empty string as zero; stored amounts are always
// decimal strings.
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

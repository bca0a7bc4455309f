package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rakibuldev/piprapay-gobilling/internal/models"
)

type TransactionService struct {
	db *mongo.Database
}

func NewTransactionService(db *mongo.Database) *TransactionService {
	return &TransactionService{db: db}
}

// EnsureIndexes creates the indexes the IPN pipeline queries against.
func (s *TransactionService) EnsureIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{Keys: bson.M{"txn_id": 1}},
		{Keys: bson.M{"invoice_id": 1}},
	}
	if _, err := s.db.Collection("transactions").Indexes().CreateMany(ctx, indexModels); err != nil {
		log.Printf("Failed to create transaction indexes: %v", err)
		return fmt.Errorf("failed to create indexes: %v", err)
	}
	return nil
}

func (s *TransactionService) CreateTransaction(ctx context.Context, transaction *models.Transaction) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	transaction.ID = primitive.NewObjectID()
	if transaction.Status == "" {
		transaction.Status = "received"
	}
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = transaction.CreatedAt

	result, err := s.db.Collection("transactions").InsertOne(ctx, transaction)
	if err != nil {
		log.Printf("Failed to insert transaction: %v", err)
		return "", fmt.Errorf("failed to create transaction: %v", err)
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *TransactionService) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", id, models.ErrNotFound)
	}

	var transaction models.Transaction
	if err := s.db.Collection("transactions").FindOne(ctx, bson.M{"_id": objID}).Decode(&transaction); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("transaction %s: %w", id, models.ErrNotFound)
		}
		log.Printf("Failed to fetch transaction %s: %v", id, err)
		return nil, fmt.Errorf("failed to fetch transaction: %v", err)
	}
	return &transaction, nil
}

func (s *TransactionService) Update(ctx context.Context, id string, upd models.TransactionUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("transaction %s: %w", id, models.ErrNotFound)
	}

	result, err := s.db.Collection("transactions").UpdateOne(ctx, bson.M{"_id": objID}, bson.M{
		"$set": bson.M{
			"txn_id":     upd.TxnID,
			"amount":     upd.Amount,
			"currency":   upd.Currency,
			"txn_status": upd.TxnStatus,
			"type":       upd.Type,
			"status":     upd.Status,
			"updated_at": time.Now(),
		},
	})
	if err != nil {
		log.Printf("Failed to update transaction %s: %v", id, err)
		return fmt.Errorf("failed to update transaction: %v", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("transaction %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// MarkRejected records why an inbound delivery was not applied, so rejected
// webhook rows are distinguishable from pending ones.
func (s *TransactionService) MarkRejected(ctx context.Context, id string, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("transaction %s: %w", id, models.ErrNotFound)
	}

	if _, err := s.db.Collection("transactions").UpdateOne(ctx, bson.M{"_id": objID}, bson.M{
		"$set": bson.M{
			"status":     "rejected",
			"txn_status": reason,
			"updated_at": time.Now(),
		},
	}); err != nil {
		log.Printf("Failed to mark transaction %s rejected: %v", id, err)
		return fmt.Errorf("failed to mark transaction rejected: %v", err)
	}
	return nil
}

// ExistsByTxnID reports whether any transaction already carries the given
// gateway charge id. The lookup scans newest-first and stops at the first
// match, matching the historical duplicate check.
func (s *TransactionService) ExistsByTxnID(ctx context.Context, txnID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOne().
		SetSort(bson.M{"_id": -1}).
		SetProjection(bson.M{"_id": 1})
	err := s.db.Collection("transactions").FindOne(ctx, bson.M{"txn_id": txnID}, opts).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		log.Printf("Failed to check duplicate txn_id %s: %v", txnID, err)
		return false, fmt.Errorf("failed to check duplicate transaction: %v", err)
	}
	return true, nil
}

// ListTransactions returns all transactions, newest first.
func (s *TransactionService) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := s.db.Collection("transactions").Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		log.Printf("Failed to fetch transactions: %v", err)
		return nil, fmt.Errorf("failed to fetch transactions: %v", err)
	}
	defer cur.Close(ctx)

	var transactions []models.Transaction
	if err := cur.All(ctx, &transactions); err != nil {
		log.Printf("Failed to decode transactions: %v", err)
		return nil, fmt.Errorf("failed to decode transactions: %v", err)
	}
	return transactions, nil
}

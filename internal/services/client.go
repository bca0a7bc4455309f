package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rakibuldev/piprapay-gobilling/internal/models"
)

type ClientService struct {
	db *mongo.Database
}

func NewClientService(db *mongo.Database) *ClientService {
	return &ClientService{db: db}
}

func (s *ClientService) CreateClient(ctx context.Context, client *models.Client) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client.ID = primitive.NewObjectID()
	if client.Balance == "" {
		client.Balance = "0"
	}
	client.CreatedAt = time.Now()

	result, err := s.db.Collection("clients").InsertOne(ctx, client)
	if err != nil {
		log.Printf("Failed to insert client: %v", err)
		return "", fmt.Errorf("failed to create client: %v", err)
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *ClientService) GetClient(ctx context.Context, id string) (*models.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("client %s: %w", id, models.ErrNotFound)
	}

	var client models.Client
	if err := s.db.Collection("clients").FindOne(ctx, bson.M{"_id": objID}).Decode(&client); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("client %s: %w", id, models.ErrNotFound)
		}
		log.Printf("Failed to fetch client %s: %v", id, err)
		return nil, fmt.Errorf("failed to fetch client: %v", err)
	}
	return &client, nil
}

// AddFunds credits the client's balance by the given decimal amount and
// records the movement in the credits collection.
func (s *ClientService) AddFunds(ctx context.Context, id string, amount string, note string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := s.GetClient(ctx, id)
	if err != nil {
		return err
	}

	balance, err := parseAmount(client.Balance)
	if err != nil {
		return fmt.Errorf("invalid client balance %q: %v", client.Balance, err)
	}
	add, err := parseAmount(amount)
	if err != nil {
		return fmt.Errorf("invalid credit amount %q: %v", amount, err)
	}

	if _, err := s.db.Collection("clients").UpdateOne(ctx,
		bson.M{"_id": client.ID},
		bson.M{"$set": bson.M{"balance": balance.Add(add).String()}},
	); err != nil {
		log.Printf("Failed to update balance for client %s: %v", id, err)
		return fmt.Errorf("failed to update client balance: %v", err)
	}

	credit := models.Credit{
		ID:        primitive.NewObjectID(),
		ClientID:  client.ID,
		Amount:    add.String(),
		Note:      note,
		CreatedAt: time.Now(),
	}
	if _, err := s.db.Collection("credits").InsertOne(ctx, credit); err != nil {
		log.Printf("Failed to record credit for client %s: %v", id, err)
		return fmt.Errorf("failed to record credit: %v", err)
	}

	log.Printf("Added %s funds to client %s (%s)", add.String(), id, note)
	return nil
}

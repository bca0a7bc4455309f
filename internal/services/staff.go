package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/rakibuldev/piprapay-gobilling/internal/models"
)

type StaffService struct {
	collection *mongo.Collection
}

func NewStaffService(db *mongo.Database) *StaffService {
	return &StaffService{collection: db.Collection("staff")}
}

func (s *StaffService) CreateStaff(ctx context.Context, staff *models.Staff, password string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %v", err)
	}

	staff.ID = primitive.NewObjectID()
	staff.HPassword = string(hashed)
	staff.CreatedAt = time.Now()

	result, err := s.collection.InsertOne(ctx, staff)
	if err != nil {
		return "", err
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *StaffService) Login(ctx context.Context, email, password string) (*models.Staff, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var staff models.Staff
	if err := s.collection.FindOne(ctx, bson.M{"email": email}).Decode(&staff); err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.HPassword), []byte(password)); err != nil {
		return nil, errors.New("invalid password")
	}
	return &staff, nil
}

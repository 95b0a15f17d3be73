package repositories

import (
	"context"
	"errors"
	"fmt"

	"dailyops/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepo čuva naloge menadžera i radnika u odvojenim kolekcijama.
type UserRepo struct {
	managers *mongo.Collection
	laborers *mongo.Collection
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{
		managers: db.Collection("managers"),
		laborers: db.Collection("laborers"),
	}
}

func (r *UserRepo) InsertManager(ctx context.Context, manager *models.Manager) (string, error) {
	result, err := r.managers.InsertOne(ctx, manager)
	if err != nil {
		return "", fmt.Errorf("failed to save manager: %v", err)
	}
	manager.ID = result.InsertedID.(primitive.ObjectID)
	return manager.ID.Hex(), nil
}

func (r *UserRepo) InsertLaborer(ctx context.Context, laborer *models.Laborer) (string, error) {
	result, err := r.laborers.InsertOne(ctx, laborer)
	if err != nil {
		return "", fmt.Errorf("failed to save laborer: %v", err)
	}
	laborer.ID = result.InsertedID.(primitive.ObjectID)
	return laborer.ID.Hex(), nil
}

func (r *UserRepo) GetManagerByID(ctx context.Context, id string) (models.Manager, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Manager{}, ErrNotFound
	}

	var manager models.Manager
	err = r.managers.FindOne(ctx, bson.M{"_id": objectID}).Decode(&manager)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Manager{}, ErrNotFound
	}
	if err != nil {
		return models.Manager{}, fmt.Errorf("failed to fetch manager: %v", err)
	}
	return manager, nil
}

func (r *UserRepo) GetLaborerByID(ctx context.Context, id string) (models.Laborer, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Laborer{}, ErrNotFound
	}

	var laborer models.Laborer
	err = r.laborers.FindOne(ctx, bson.M{"_id": objectID}).Decode(&laborer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Laborer{}, ErrNotFound
	}
	if err != nil {
		return models.Laborer{}, fmt.Errorf("failed to fetch laborer: %v", err)
	}
	return laborer, nil
}

func (r *UserRepo) GetManagerByEmail(ctx context.Context, email string) (models.Manager, error) {
	var manager models.Manager
	err := r.managers.FindOne(ctx, bson.M{"email": email}).Decode(&manager)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Manager{}, ErrNotFound
	}
	if err != nil {
		return models.Manager{}, fmt.Errorf("failed to fetch manager: %v", err)
	}
	return manager, nil
}

func (r *UserRepo) GetLaborerByEmail(ctx context.Context, email string) (models.Laborer, error) {
	var laborer models.Laborer
	err := r.laborers.FindOne(ctx, bson.M{"email": email}).Decode(&laborer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Laborer{}, ErrNotFound
	}
	if err != nil {
		return models.Laborer{}, fmt.Errorf("failed to fetch laborer: %v", err)
	}
	return laborer, nil
}

func (r *UserRepo) GetManagerByTeamCode(ctx context.Context, code string) (models.Manager, error) {
	var manager models.Manager
	err := r.managers.FindOne(ctx, bson.M{"teamCode": code}).Decode(&manager)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Manager{}, ErrNotFound
	}
	if err != nil {
		return models.Manager{}, fmt.Errorf("failed to fetch manager by team code: %v", err)
	}
	return manager, nil
}

func (r *UserRepo) SetTeamCode(ctx context.Context, managerID, code string) error {
	objectID, err := primitive.ObjectIDFromHex(managerID)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.managers.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"teamCode": code}})
	if err != nil {
		return fmt.Errorf("failed to update team code: %v", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) GetLaborersByManager(ctx context.Context, managerID string) ([]models.Laborer, error) {
	cursor, err := r.laborers.Find(ctx, bson.M{"managerId": managerID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team members: %v", err)
	}
	defer cursor.Close(ctx)

	var laborers []models.Laborer
	if err := cursor.All(ctx, &laborers); err != nil {
		return nil, fmt.Errorf("failed to parse team members: %v", err)
	}
	return laborers, nil
}

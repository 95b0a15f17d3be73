package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dailyops/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type TaskRepo struct {
	tasks *mongo.Collection
}

func NewTaskRepo(db *mongo.Database) *TaskRepo {
	return &TaskRepo{tasks: db.Collection("tasks")}
}

func (r *TaskRepo) Insert(ctx context.Context, task *models.Task) (string, error) {
	result, err := r.tasks.InsertOne(ctx, task)
	if err != nil {
		return "", fmt.Errorf("failed to create task: %v", err)
	}
	task.ID = result.InsertedID.(primitive.ObjectID)
	return task.ID.Hex(), nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id string) (models.Task, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Task{}, ErrNotFound
	}

	var task models.Task
	err = r.tasks.FindOne(ctx, bson.M{"_id": objectID}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to fetch task: %v", err)
	}
	return task, nil
}

// ApplyPatch upisuje samo prosleđena polja, ostala ostaju netaknuta.
func (r *TaskRepo) ApplyPatch(ctx context.Context, id string, patch models.TaskPatch, updatedAt time.Time) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	set := bson.M{"updatedAt": updatedAt}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Priority != nil {
		set["priority"] = *patch.Priority
	}
	if patch.AssignedTo != nil {
		set["assignedTo"] = *patch.AssignedTo
	}
	if patch.AssignedToName != nil {
		set["assignedToName"] = *patch.AssignedToName
	}
	if patch.StartTime != nil {
		set["startTime"] = *patch.StartTime
	}
	if patch.Duration != nil {
		set["duration"] = *patch.Duration
	}

	result, err := r.tasks.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update task: %v", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepo) SetStatus(ctx context.Context, id string, status models.TaskStatus, updatedAt time.Time) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	update := bson.M{"$set": bson.M{"status": status, "updatedAt": updatedAt}}
	result, err := r.tasks.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update task status: %v", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendComment dodaje komentar na kraj niza; postojeći komentari se nikad ne menjaju.
func (r *TaskRepo) AppendComment(ctx context.Context, id string, comment models.Comment, updatedAt time.Time) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	update := bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": updatedAt},
	}
	result, err := r.tasks.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to add comment: %v", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.tasks.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete task: %v", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepo) FindByManager(ctx context.Context, managerID string) ([]models.Task, error) {
	return r.find(ctx, bson.M{"managerId": managerID})
}

func (r *TaskRepo) FindByAssignee(ctx context.Context, laborID string) ([]models.Task, error) {
	return r.find(ctx, bson.M{"assignedTo": laborID})
}

// find ne sortira; poredak po createdAt radi servis da se ne zahteva composite indeks.
func (r *TaskRepo) find(ctx context.Context, filter bson.M) ([]models.Task, error) {
	cursor, err := r.tasks.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}
	return tasks, nil
}

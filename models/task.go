package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// ValidStatus proverava da li je status jedna od poznatih vrednosti.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// ValidPriority proverava da li je prioritet jedna od poznatih vrednosti.
func ValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Comment je jedan unos u append-only nizu komentara zadatka.
type Comment struct {
	ID         string    `bson:"id" json:"id"`
	AuthorID   string    `bson:"authorId" json:"authorId"`
	AuthorName string    `bson:"authorName" json:"authorName"`
	Text       string    `bson:"text" json:"text"`
	AudioURL   string    `bson:"audioUrl,omitempty" json:"audioUrl,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

type Task struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description" json:"description"`
	Priority       TaskPriority       `bson:"priority" json:"priority"`
	Status         TaskStatus         `bson:"status" json:"status"`
	ManagerID      string             `bson:"managerId" json:"managerId"`
	AssignedTo     string             `bson:"assignedTo" json:"assignedTo"`
	AssignedToName string             `bson:"assignedToName" json:"assignedToName"`
	StartTime      *time.Time         `bson:"startTime,omitempty" json:"startTime,omitempty"`
	Duration       int                `bson:"duration,omitempty" json:"duration,omitempty"` // u minutima
	Comments       []Comment          `bson:"comments" json:"comments"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TaskPatch su izmene koje vlasnik zadatka sme da primeni; nil polja se ne diraju.
// AssignedToName popunjava servis kada se menja AssignedTo.
type TaskPatch struct {
	Title          *string       `json:"title,omitempty"`
	Description    *string       `json:"description,omitempty"`
	Priority       *TaskPriority `json:"priority,omitempty"`
	AssignedTo     *string       `json:"assignedTo,omitempty"`
	AssignedToName *string       `json:"-"`
	StartTime      *time.Time    `json:"startTime,omitempty"`
	Duration       *int          `json:"duration,omitempty"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleManager = "manager"
	RoleLabor   = "labor"
)

// Manager je nalog menadžera; teamCode deli sa radnicima prilikom registracije.
type Manager struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	TeamCode  string             `bson:"teamCode" json:"teamCode"`
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Laborer je nalog radnika, trajno vezan za menadžera preko managerId.
type Laborer struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password" json:"-"`
	ManagerID   string             `bson:"managerId" json:"managerId"`
	ManagerCode string             `bson:"managerCode" json:"managerCode"`
	Role        string             `bson:"role" json:"role"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Session je identitet iz validiranog tokena, prosleđuje se eksplicitno kroz servise.
type Session struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

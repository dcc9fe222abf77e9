package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleNormal Role = "NORMAL"
	RoleGestor Role = "GESTOR"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleNormal:
		return RoleNormal, nil
	case RoleGestor:
		return RoleGestor, nil
	}
	return "", fmt.Errorf("unknown role: %s", s)
}

type Collaborator struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Age          *int               `bson:"age,omitempty" json:"age"`
	Regime       *string            `bson:"regime,omitempty" json:"regime,omitempty"`
	Role         Role               `bson:"role" json:"role"`
	Areas        []AreaName         `bson:"areas" json:"areas"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CollaboratorView is the serialized shape returned over HTTP. Regime is a
// privileged field: it is filled in only when the viewer holds the GESTOR role.
type CollaboratorView struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Age       *int       `json:"age"`
	Regime    *string    `json:"regime,omitempty"`
	Role      Role       `json:"role"`
	Areas     []AreaName `json:"areas"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (c *Collaborator) ViewFor(viewer Role) CollaboratorView {
	view := CollaboratorView{
		ID:        c.ID.Hex(),
		Name:      c.Name,
		Email:     c.Email,
		Age:       c.Age,
		Role:      c.Role,
		Areas:     c.Areas,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if view.Areas == nil {
		view.Areas = []AreaName{}
	}
	if viewer == RoleGestor {
		view.Regime = c.Regime
	}
	return view
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectStatus string

const (
	StatusActive    ProjectStatus = "ACTIVE"
	StatusCompleted ProjectStatus = "COMPLETED"
	StatusCancelled ProjectStatus = "CANCELLED"
)

type Project struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Deadline     *time.Time         `bson:"deadline,omitempty" json:"deadline"`
	Description  *string            `bson:"description,omitempty" json:"description"`
	Technologies []string           `bson:"technologies" json:"technologies"`
	Status       ProjectStatus      `bson:"status" json:"status"`
	CompletedAt  *time.Time         `bson:"completedAt,omitempty" json:"completedAt"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Complete moves an ACTIVE project to COMPLETED and stamps the completion
// time. Any other starting status is rejected; re-invoking complete on an
// already-COMPLETED project is an error, not a no-op.
func (p *Project) Complete(now time.Time) error {
	if p.Status != StatusActive {
		return &TransitionError{Status: p.Status, Operation: "complete"}
	}
	p.Status = StatusCompleted
	p.CompletedAt = &now
	return nil
}

// Cancel moves an ACTIVE project to CANCELLED and stamps the completion time.
func (p *Project) Cancel(now time.Time) error {
	if p.Status != StatusActive {
		return &TransitionError{Status: p.Status, Operation: "cancel"}
	}
	p.Status = StatusCancelled
	p.CompletedAt = &now
	return nil
}

// Reopen moves a COMPLETED or CANCELLED project back to ACTIVE and clears the
// completion time.
func (p *Project) Reopen() error {
	if p.Status != StatusCompleted && p.Status != StatusCancelled {
		return &TransitionError{Status: p.Status, Operation: "reopen"}
	}
	p.Status = StatusActive
	p.CompletedAt = nil
	return nil
}

// ProjectUpdate carries the scalar fields of a partial update. Nil means
// "leave unchanged". Membership and status are never touched through here.
type ProjectUpdate struct {
	Name         *string
	Deadline     *time.Time
	Description  *string
	Technologies *[]string
}

func (u ProjectUpdate) Empty() bool {
	return u.Name == nil && u.Deadline == nil && u.Description == nil && u.Technologies == nil
}

// ProjectMember is the member shape embedded in a serialized project.
type ProjectMember struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Role  Role       `json:"role"`
	Areas []AreaName `json:"areas"`
}

type ProjectView struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Deadline     *time.Time      `json:"deadline"`
	Description  *string         `json:"description"`
	Technologies []string        `json:"technologies"`
	Status       ProjectStatus   `json:"status"`
	CompletedAt  *time.Time      `json:"completedAt"`
	Members      []ProjectMember `json:"members"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (p *Project) ViewWith(members []Collaborator) ProjectView {
	view := ProjectView{
		ID:           p.ID.Hex(),
		Name:         p.Name,
		Deadline:     p.Deadline,
		Description:  p.Description,
		Technologies: p.Technologies,
		Status:       p.Status,
		CompletedAt:  p.CompletedAt,
		Members:      make([]ProjectMember, 0, len(members)),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if view.Technologies == nil {
		view.Technologies = []string{}
	}
	for _, m := range members {
		areas := m.Areas
		if areas == nil {
			areas = []AreaName{}
		}
		view.Members = append(view.Members, ProjectMember{
			ID:    m.ID.Hex(),
			Name:  m.Name,
			Role:  m.Role,
			Areas: areas,
		})
	}
	return view
}

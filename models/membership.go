package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership is one row of the project/collaborator association. The project
// owns these rows; collaborators are referenced, never owned.
type Membership struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID      primitive.ObjectID `bson:"projectId" json:"projectId"`
	CollaboratorID primitive.ObjectID `bson:"collaboratorId" json:"collaboratorId"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

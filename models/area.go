package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AreaName is one of the fixed organizational area tags. The set is seeded
// once at startup and never grows at runtime.
type AreaName string

const (
	AreaFrontend   AreaName = "FRONTEND"
	AreaBackend    AreaName = "BACKEND"
	AreaInfra      AreaName = "INFRA"
	AreaDesign     AreaName = "DESIGN"
	AreaRequisitos AreaName = "REQUISITOS"
	AreaGestao     AreaName = "GESTAO"
)

var AllAreaNames = []AreaName{
	AreaFrontend,
	AreaBackend,
	AreaInfra,
	AreaDesign,
	AreaRequisitos,
	AreaGestao,
}

// ParseAreaName rejects anything outside the fixed enumeration. Unknown
// values are refused at the HTTP boundary, never inside the services.
func ParseAreaName(s string) (AreaName, error) {
	for _, name := range AllAreaNames {
		if string(name) == s {
			return name, nil
		}
	}
	return "", fmt.Errorf("unknown area: %s", s)
}

type Area struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name AreaName           `bson:"name" json:"name"`
}

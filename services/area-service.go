package services

import (
	"context"

	"collab-project/backend/management-service/models"
)

type AreaService struct {
	Areas AreaStore
}

func NewAreaService(areas AreaStore) *AreaService {
	return &AreaService{Areas: areas}
}

func (s *AreaService) List(ctx context.Context) ([]models.Area, error) {
	return s.Areas.ListAreas(ctx)
}

// Seed makes sure the fixed area set exists. Runs once at startup; already
// seeded names are left alone.
func (s *AreaService) Seed(ctx context.Context) error {
	return s.Areas.SeedAreas(ctx, models.AllAreaNames)
}

package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"collab-project/backend/management-service/logging"
	"collab-project/backend/management-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectService is the project aggregate: it orchestrates the composition
// validator, the lifecycle transitions and the stores so that no caller ever
// observes a committed member set that violates the composition rule.
type ProjectService struct {
	Projects      ProjectStore
	Memberships   MembershipStore
	Collaborators CollaboratorStore

	// One mutex per project. Compound membership mutations (mutate,
	// re-read, validate, possibly compensate) run under it so two
	// concurrent calls cannot both observe the pre-mutation member set.
	// Only sound in a single-process deployment.
	locks sync.Map
}

func NewProjectService(projects ProjectStore, memberships MembershipStore, collaborators CollaboratorStore) *ProjectService {
	return &ProjectService{
		Projects:      projects,
		Memberships:   memberships,
		Collaborators: collaborators,
	}
}

func (s *ProjectService) lockProject(projectID primitive.ObjectID) func() {
	v, _ := s.locks.LoadOrStore(projectID.Hex(), &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

type CreateProjectInput struct {
	Name         string
	Deadline     *time.Time
	Description  *string
	Technologies []string
	MemberIDs    []primitive.ObjectID
}

type ProjectPage struct {
	Items      []models.ProjectView `json:"items"`
	Page       int64                `json:"page"`
	PerPage    int64                `json:"perPage"`
	Total      int64                `json:"total"`
	TotalPages int64                `json:"totalPages"`
}

// CreateProject validates the initial composition before anything is
// persisted: a project is never created with an invalid non-empty member set.
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*models.ProjectView, error) {
	memberIDs := dedupeIDs(input.MemberIDs)

	var members []models.Collaborator
	if len(memberIDs) > 0 {
		found, err := s.Collaborators.FindByIDs(ctx, memberIDs)
		if err != nil {
			return nil, err
		}
		if len(found) != len(memberIDs) {
			return nil, models.ErrCollaboratorNotFound
		}
		if missing := models.MissingAreas(flattenAreas(found)); len(missing) > 0 {
			return nil, &models.CompositionError{Missing: missing}
		}
		members = found
	}

	now := time.Now()
	project := &models.Project{
		ID:           primitive.NewObjectID(),
		Name:         input.Name,
		Deadline:     input.Deadline,
		Description:  input.Description,
		Technologies: input.Technologies,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if project.Technologies == nil {
		project.Technologies = []string{}
	}

	if err := s.Projects.Insert(ctx, project); err != nil {
		return nil, err
	}

	for _, memberID := range memberIDs {
		if err := s.Memberships.AddMembership(ctx, project.ID, memberID); err != nil {
			logging.Logger.Errorf("Failed to attach collaborator %s while creating project %s: %v", memberID.Hex(), project.ID.Hex(), err)
			return nil, fmt.Errorf("%w: attaching initial members: %v", models.ErrPersistence, err)
		}
	}

	view := project.ViewWith(members)
	return &view, nil
}

func (s *ProjectService) GetProject(ctx context.Context, projectID primitive.ObjectID) (*models.ProjectView, error) {
	project, err := s.Projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.materialize(ctx, project)
}

func (s *ProjectService) ListProjects(ctx context.Context, page, perPage int64, q string) (*ProjectPage, error) {
	projects, total, err := s.Projects.List(ctx, page, perPage, q)
	if err != nil {
		return nil, err
	}

	items := make([]models.ProjectView, 0, len(projects))
	for i := range projects {
		view, err := s.materialize(ctx, &projects[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *view)
	}

	return &ProjectPage{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}, nil
}

// UpdateProject touches scalar fields only; membership and status are out of
// reach from here.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID primitive.ObjectID, update models.ProjectUpdate) (*models.ProjectView, error) {
	if _, err := s.Projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.Projects.UpdateFields(ctx, projectID, update); err != nil {
		return nil, err
	}
	return s.GetProject(ctx, projectID)
}

// AddMember attaches a collaborator, re-reads the full member set and
// validates it. An attach that would break the composition rule is rolled
// back before the error is returned, so the externally observable member set
// never changes on failure. Attaching an existing member is a no-op.
func (s *ProjectService) AddMember(ctx context.Context, projectID, collaboratorID primitive.ObjectID) (*models.ProjectView, error) {
	unlock := s.lockProject(projectID)
	defer unlock()

	project, err := s.Projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Collaborators.FindByID(ctx, collaboratorID); err != nil {
		return nil, err
	}

	already, err := s.Memberships.IsMember(ctx, projectID, collaboratorID)
	if err != nil {
		return nil, err
	}
	if already {
		return s.materialize(ctx, project)
	}

	if err := s.Memberships.AddMembership(ctx, projectID, collaboratorID); err != nil {
		return nil, err
	}

	areaNames, _, err := s.memberAreaNames(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if missing := models.MissingAreas(areaNames); len(missing) > 0 {
		if rbErr := s.Memberships.RemoveMembership(ctx, projectID, collaboratorID); rbErr != nil {
			logging.Logger.Errorf("Rollback of membership attach failed: project=%s collaborator=%s operation=addMember missing=%v rollbackError=%v; member set may be invalid, operator intervention required", projectID.Hex(), collaboratorID.Hex(), missing, rbErr)
			return nil, fmt.Errorf("%w: rollback of membership attach failed: %v", models.ErrPersistence, rbErr)
		}
		return nil, &models.CompositionError{Missing: missing}
	}

	return s.materialize(ctx, project)
}

// RemoveMember detaches a collaborator and validates the remainder. A removal
// that would strip a required area from a non-empty remainder is rolled back.
// Removing the last member is always allowed, and detaching a non-member is a
// no-op.
func (s *ProjectService) RemoveMember(ctx context.Context, projectID, collaboratorID primitive.ObjectID) (*models.ProjectView, error) {
	unlock := s.lockProject(projectID)
	defer unlock()

	project, err := s.Projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	member, err := s.Memberships.IsMember(ctx, projectID, collaboratorID)
	if err != nil {
		return nil, err
	}
	if !member {
		return s.materialize(ctx, project)
	}

	if err := s.Memberships.RemoveMembership(ctx, projectID, collaboratorID); err != nil {
		return nil, err
	}

	areaNames, remaining, err := s.memberAreaNames(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if remaining > 0 {
		if missing := models.MissingAreas(areaNames); len(missing) > 0 {
			if rbErr := s.Memberships.AddMembership(ctx, projectID, collaboratorID); rbErr != nil {
				logging.Logger.Errorf("Rollback of membership detach failed: project=%s collaborator=%s operation=removeMember missing=%v rollbackError=%v; member set may be invalid, operator intervention required", projectID.Hex(), collaboratorID.Hex(), missing, rbErr)
				return nil, fmt.Errorf("%w: rollback of membership detach failed: %v", models.ErrPersistence, rbErr)
			}
			return nil, &models.CompositionError{Missing: missing}
		}
	}

	return s.materialize(ctx, project)
}

func (s *ProjectService) CompleteProject(ctx context.Context, projectID primitive.ObjectID) (*models.ProjectView, error) {
	return s.transition(ctx, projectID, func(p *models.Project) error {
		return p.Complete(time.Now())
	})
}

func (s *ProjectService) CancelProject(ctx context.Context, projectID primitive.ObjectID) (*models.ProjectView, error) {
	return s.transition(ctx, projectID, func(p *models.Project) error {
		return p.Cancel(time.Now())
	})
}

func (s *ProjectService) ReopenProject(ctx context.Context, projectID primitive.ObjectID) (*models.ProjectView, error) {
	return s.transition(ctx, projectID, func(p *models.Project) error {
		return p.Reopen()
	})
}

func (s *ProjectService) transition(ctx context.Context, projectID primitive.ObjectID, apply func(*models.Project) error) (*models.ProjectView, error) {
	unlock := s.lockProject(projectID)
	defer unlock()

	project, err := s.Projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := apply(project); err != nil {
		return nil, err
	}
	project.UpdatedAt = time.Now()
	if err := s.Projects.UpdateStatus(ctx, project); err != nil {
		return nil, err
	}
	return s.materialize(ctx, project)
}

// DeleteProject hard-deletes at any status. Membership rows go first so no
// orphaned rows survive the project.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID primitive.ObjectID) error {
	unlock := s.lockProject(projectID)
	defer unlock()

	if _, err := s.Projects.FindByID(ctx, projectID); err != nil {
		return err
	}
	if err := s.Memberships.RemoveByProject(ctx, projectID); err != nil {
		return fmt.Errorf("%w: cascade delete of memberships: %v", models.ErrPersistence, err)
	}
	return s.Projects.Delete(ctx, projectID)
}

// memberAreaNames returns the flattened area names across the project's
// current members together with the member count, so callers can tell an
// empty project apart from members without areas.
func (s *ProjectService) memberAreaNames(ctx context.Context, projectID primitive.ObjectID) ([]models.AreaName, int, error) {
	memberIDs, err := s.Memberships.ListMemberIDs(ctx, projectID)
	if err != nil {
		return nil, 0, err
	}
	if len(memberIDs) == 0 {
		return nil, 0, nil
	}
	members, err := s.Collaborators.FindByIDs(ctx, memberIDs)
	if err != nil {
		return nil, 0, err
	}
	return flattenAreas(members), len(memberIDs), nil
}

func (s *ProjectService) materialize(ctx context.Context, project *models.Project) (*models.ProjectView, error) {
	memberIDs, err := s.Memberships.ListMemberIDs(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	var members []models.Collaborator
	if len(memberIDs) > 0 {
		members, err = s.Collaborators.FindByIDs(ctx, memberIDs)
		if err != nil {
			return nil, err
		}
	}
	view := project.ViewWith(members)
	return &view, nil
}

func flattenAreas(collaborators []models.Collaborator) []models.AreaName {
	var names []models.AreaName
	for _, c := range collaborators {
		names = append(names, c.Areas...)
	}
	return names
}

func dedupeIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	var unique []primitive.ObjectID
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	return unique
}

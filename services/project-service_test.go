package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"collab-project/backend/management-service/models"
	"collab-project/backend/management-service/services"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeProjectStore struct {
	projects map[primitive.ObjectID]*models.Project
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{projects: make(map[primitive.ObjectID]*models.Project)}
}

func (s *fakeProjectStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, models.ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeProjectStore) List(_ context.Context, page, perPage int64, _ string) ([]models.Project, int64, error) {
	var all []models.Project
	for _, p := range s.projects {
		all = append(all, *p)
	}
	return all, int64(len(all)), nil
}

func (s *fakeProjectStore) Insert(_ context.Context, project *models.Project) error {
	cp := *project
	s.projects[project.ID] = &cp
	return nil
}

func (s *fakeProjectStore) UpdateFields(_ context.Context, id primitive.ObjectID, update models.ProjectUpdate) error {
	p, ok := s.projects[id]
	if !ok {
		return models.ErrProjectNotFound
	}
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Deadline != nil {
		p.Deadline = update.Deadline
	}
	if update.Description != nil {
		p.Description = update.Description
	}
	if update.Technologies != nil {
		p.Technologies = *update.Technologies
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (s *fakeProjectStore) UpdateStatus(_ context.Context, project *models.Project) error {
	if _, ok := s.projects[project.ID]; !ok {
		return models.ErrProjectNotFound
	}
	cp := *project
	s.projects[project.ID] = &cp
	return nil
}

func (s *fakeProjectStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := s.projects[id]; !ok {
		return models.ErrProjectNotFound
	}
	delete(s.projects, id)
	return nil
}

type fakeMembershipStore struct {
	members map[primitive.ObjectID][]primitive.ObjectID

	failAdd    error
	failRemove error
}

func newFakeMembershipStore() *fakeMembershipStore {
	return &fakeMembershipStore{members: make(map[primitive.ObjectID][]primitive.ObjectID)}
}

func (s *fakeMembershipStore) AddMembership(_ context.Context, projectID, collaboratorID primitive.ObjectID) error {
	if s.failAdd != nil {
		return s.failAdd
	}
	for _, id := range s.members[projectID] {
		if id == collaboratorID {
			return nil
		}
	}
	s.members[projectID] = append(s.members[projectID], collaboratorID)
	return nil
}

func (s *fakeMembershipStore) RemoveMembership(_ context.Context, projectID, collaboratorID primitive.ObjectID) error {
	if s.failRemove != nil {
		return s.failRemove
	}
	kept := s.members[projectID][:0]
	for _, id := range s.members[projectID] {
		if id != collaboratorID {
			kept = append(kept, id)
		}
	}
	s.members[projectID] = kept
	return nil
}

func (s *fakeMembershipStore) IsMember(_ context.Context, projectID, collaboratorID primitive.ObjectID) (bool, error) {
	for _, id := range s.members[projectID] {
		if id == collaboratorID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeMembershipStore) ListMemberIDs(_ context.Context, projectID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return append([]primitive.ObjectID(nil), s.members[projectID]...), nil
}

func (s *fakeMembershipStore) RemoveByProject(_ context.Context, projectID primitive.ObjectID) error {
	delete(s.members, projectID)
	return nil
}

func (s *fakeMembershipStore) RemoveByCollaborator(_ context.Context, collaboratorID primitive.ObjectID) error {
	for projectID := range s.members {
		kept := s.members[projectID][:0]
		for _, id := range s.members[projectID] {
			if id != collaboratorID {
				kept = append(kept, id)
			}
		}
		s.members[projectID] = kept
	}
	return nil
}

type fakeCollaboratorStore struct {
	collaborators map[primitive.ObjectID]*models.Collaborator
}

func newFakeCollaboratorStore() *fakeCollaboratorStore {
	return &fakeCollaboratorStore{collaborators: make(map[primitive.ObjectID]*models.Collaborator)}
}

func (s *fakeCollaboratorStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Collaborator, error) {
	c, ok := s.collaborators[id]
	if !ok {
		return nil, models.ErrCollaboratorNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *fakeCollaboratorStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Collaborator, error) {
	var found []models.Collaborator
	for _, id := range ids {
		if c, ok := s.collaborators[id]; ok {
			found = append(found, *c)
		}
	}
	return found, nil
}

func (s *fakeCollaboratorStore) FindByEmail(_ context.Context, email string) (*models.Collaborator, error) {
	for _, c := range s.collaborators {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, models.ErrCollaboratorNotFound
}

func (s *fakeCollaboratorStore) List(_ context.Context, page, perPage int64, _ string) ([]models.Collaborator, int64, error) {
	var all []models.Collaborator
	for _, c := range s.collaborators {
		all = append(all, *c)
	}
	return all, int64(len(all)), nil
}

func (s *fakeCollaboratorStore) Insert(_ context.Context, collaborator *models.Collaborator) error {
	for _, c := range s.collaborators {
		if c.Email == collaborator.Email {
			return models.ErrEmailInUse
		}
	}
	cp := *collaborator
	s.collaborators[collaborator.ID] = &cp
	return nil
}

func (s *fakeCollaboratorStore) Update(_ context.Context, collaborator *models.Collaborator) error {
	if _, ok := s.collaborators[collaborator.ID]; !ok {
		return models.ErrCollaboratorNotFound
	}
	cp := *collaborator
	s.collaborators[collaborator.ID] = &cp
	return nil
}

func (s *fakeCollaboratorStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := s.collaborators[id]; !ok {
		return models.ErrCollaboratorNotFound
	}
	delete(s.collaborators, id)
	return nil
}

type fixture struct {
	service       *services.ProjectService
	projects      *fakeProjectStore
	memberships   *fakeMembershipStore
	collaborators *fakeCollaboratorStore
}

func newFixture() *fixture {
	projects := newFakeProjectStore()
	memberships := newFakeMembershipStore()
	collaborators := newFakeCollaboratorStore()
	return &fixture{
		service:       services.NewProjectService(projects, memberships, collaborators),
		projects:      projects,
		memberships:   memberships,
		collaborators: collaborators,
	}
}

func (f *fixture) addCollaborator(name string, areas ...models.AreaName) primitive.ObjectID {
	c := &models.Collaborator{
		ID:    primitive.NewObjectID(),
		Name:  name,
		Email: name + "@empresa.com",
		Role:  models.RoleNormal,
		Areas: areas,
	}
	f.collaborators.collaborators[c.ID] = c
	return c.ID
}

func (f *fixture) addProject(name string, memberIDs ...primitive.ObjectID) primitive.ObjectID {
	p := &models.Project{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Status:    models.StatusActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.projects.projects[p.ID] = p
	f.memberships.members[p.ID] = append([]primitive.ObjectID(nil), memberIDs...)
	return p.ID
}

func TestCreateProjectSingleCollaboratorCoversAll(t *testing.T) {
	f := newFixture()
	c1 := f.addCollaborator("ana", models.AreaGestao, models.AreaBackend, models.AreaFrontend)

	view, err := f.service.CreateProject(context.Background(), services.CreateProjectInput{
		Name:      "plataforma",
		MemberIDs: []primitive.ObjectID{c1},
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusActive, view.Status)
	require.Len(t, view.Members, 1)
	require.Equal(t, c1.Hex(), view.Members[0].ID)
}

func TestCreateProjectInvalidComposition(t *testing.T) {
	f := newFixture()
	c1 := f.addCollaborator("bruno", models.AreaDesign)

	_, err := f.service.CreateProject(context.Background(), services.CreateProjectInput{
		Name:      "plataforma",
		MemberIDs: []primitive.ObjectID{c1},
	})

	var compositionErr *models.CompositionError
	require.ErrorAs(t, err, &compositionErr)
	require.Equal(t, []models.AreaName{models.AreaGestao, models.AreaBackend, models.AreaFrontend}, compositionErr.Missing)

	// Nothing may have been persisted.
	require.Empty(t, f.projects.projects)
	require.Empty(t, f.memberships.members)
}

func TestCreateProjectUnknownMember(t *testing.T) {
	f := newFixture()

	_, err := f.service.CreateProject(context.Background(), services.CreateProjectInput{
		Name:      "plataforma",
		MemberIDs: []primitive.ObjectID{primitive.NewObjectID()},
	})
	require.ErrorIs(t, err, models.ErrCollaboratorNotFound)
}

func TestCreateProjectWithoutMembersIsExempt(t *testing.T) {
	f := newFixture()

	view, err := f.service.CreateProject(context.Background(), services.CreateProjectInput{Name: "vazio"})
	require.NoError(t, err)
	require.Empty(t, view.Members)
}

func TestAddMemberIdempotent(t *testing.T) {
	f := newFixture()
	c1 := f.addCollaborator("ana", models.AreaGestao, models.AreaBackend, models.AreaFrontend)
	projectID := f.addProject("plataforma", c1)

	for i := 0; i < 2; i++ {
		view, err := f.service.AddMember(context.Background(), projectID, c1)
		require.NoError(t, err)
		require.Len(t, view.Members, 1)
	}
	require.Len(t, f.memberships.members[projectID], 1)
}

func TestAddMemberRollbackOnInvalidComposition(t *testing.T) {
	f := newFixture()
	c1 := f.addCollaborator("bruno", models.AreaDesign)
	projectID := f.addProject("plataforma")

	_, err := f.service.AddMember(context.Background(), projectID, c1)

	var compositionErr *models.CompositionError
	require.ErrorAs(t, err, &compositionErr)
	require.Equal(t, []models.AreaName{models.AreaGestao, models.AreaBackend, models.AreaFrontend}, compositionErr.Missing)

	// The tentative attach must have been rolled back.
	require.Empty(t, f.memberships.members[projectID])
}

func TestAddMemberRollbackFailureIsPersistenceError(t *testing.T) {
	f := newFixture()
	c1 := f.addCollaborator("bruno", models.AreaDesign)
	projectID := f.addProject("plataforma")

	f.memberships.failRemove = errors.New("connection reset")

	_, err := f.service.AddMember(context.Background(), projectID, c1)
	require.ErrorIs(t, err, models.ErrPersistence)
}

func TestAddMemberProjectNotFound(t *testing.T) {
	f := newFixture()
	c1 := f.addCollaborator("ana", models.AreaGestao)

	_, err := f.service.AddMember(context.Background(), primitive.NewObjectID(), c1)
	require.ErrorIs(t, err, models.ErrProjectNotFound)
}

func TestRemoveMemberLoadBearing(t *testing.T) {
	f := newFixture()
	gestor := f.addCollaborator("gestor", models.AreaGestao)
	backend := f.addCollaborator("backend", models.AreaBackend)
	frontend := f.addCollaborator("frontend", models.AreaFrontend)
	projectID := f.addProject("plataforma", gestor, backend, frontend)

	_, err := f.service.RemoveMember(context.Background(), projectID, frontend)

	var compositionErr *models.CompositionError
	require.ErrorAs(t, err, &compositionErr)
	require.Equal(t, []models.AreaName{models.AreaFrontend}, compositionErr.Missing)

	// The detach must have been rolled back.
	member, err := f.memberships.IsMember(context.Background(), projectID, frontend)
	require.NoError(t, err)
	require.True(t, member)
}

func TestRemoveMemberNonExemptRemainder(t *testing.T) {
	f := newFixture()
	c1 := f.addCollaborator("frontend", models.AreaFrontend)
	c2 := f.addCollaborator("backend", models.AreaBackend)
	projectID := f.addProject("plataforma", c1, c2)

	_, err := f.service.RemoveMember(context.Background(), projectID, c2)

	var compositionErr *models.CompositionError
	require.ErrorAs(t, err, &compositionErr)
	require.Equal(t, []models.AreaName{models.AreaGestao, models.AreaBackend}, compositionErr.Missing)

	member, err := f.memberships.IsMember(context.Background(), projectID, c2)
	require.NoError(t, err)
	require.True(t, member)
}

func TestRemoveLastMemberAlwaysAllowed(t *testing.T) {
	f := newFixture()
	c1 := f.addCollaborator("ana", models.AreaGestao, models.AreaBackend, models.AreaFrontend)
	projectID := f.addProject("plataforma", c1)

	view, err := f.service.RemoveMember(context.Background(), projectID, c1)
	require.NoError(t, err)
	require.Empty(t, view.Members)
	require.Empty(t, f.memberships.members[projectID])
}

func TestRemoveMemberNotAttachedIsNoop(t *testing.T) {
	f := newFixture()
	c1 := f.addCollaborator("ana", models.AreaGestao, models.AreaBackend, models.AreaFrontend)
	outsider := f.addCollaborator("outsider", models.AreaDesign)
	projectID := f.addProject("plataforma", c1)

	view, err := f.service.RemoveMember(context.Background(), projectID, outsider)
	require.NoError(t, err)
	require.Len(t, view.Members, 1)
}

func TestRemoveMemberRollbackFailureIsPersistenceError(t *testing.T) {
	f := newFixture()
	gestor := f.addCollaborator("gestor", models.AreaGestao)
	backend := f.addCollaborator("backend", models.AreaBackend)
	frontend := f.addCollaborator("frontend", models.AreaFrontend)
	projectID := f.addProject("plataforma", gestor, backend, frontend)

	f.memberships.failAdd = errors.New("connection reset")

	_, err := f.service.RemoveMember(context.Background(), projectID, frontend)
	require.ErrorIs(t, err, models.ErrPersistence)
}

func TestLifecycleThroughService(t *testing.T) {
	f := newFixture()
	projectID := f.addProject("plataforma")
	ctx := context.Background()

	view, err := f.service.CompleteProject(ctx, projectID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, view.Status)
	require.NotNil(t, view.CompletedAt)

	_, err = f.service.CompleteProject(ctx, projectID)
	var transitionErr *models.TransitionError
	require.ErrorAs(t, err, &transitionErr)
	require.Equal(t, models.StatusCompleted, transitionErr.Status)
	require.Equal(t, "complete", transitionErr.Operation)

	// A rejected transition leaves the stored project untouched.
	stored := f.projects.projects[projectID]
	require.Equal(t, models.StatusCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)

	view, err = f.service.ReopenProject(ctx, projectID)
	require.NoError(t, err)
	require.Equal(t, models.StatusActive, view.Status)
	require.Nil(t, view.CompletedAt)

	view, err = f.service.CancelProject(ctx, projectID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCancelled, view.Status)
	require.NotNil(t, view.CompletedAt)

	_, err = f.service.CancelProject(ctx, projectID)
	require.ErrorAs(t, err, &transitionErr)
}

func TestLifecycleProjectNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.service.CompleteProject(context.Background(), primitive.NewObjectID())
	require.ErrorIs(t, err, models.ErrProjectNotFound)
}

func TestDeleteProjectCascades(t *testing.T) {
	f := newFixture()
	c1 := f.addCollaborator("ana", models.AreaGestao, models.AreaBackend, models.AreaFrontend)
	projectID := f.addProject("plataforma", c1)

	require.NoError(t, f.service.DeleteProject(context.Background(), projectID))

	require.Empty(t, f.memberships.members[projectID])
	_, err := f.service.GetProject(context.Background(), projectID)
	require.ErrorIs(t, err, models.ErrProjectNotFound)
}

func TestUpdateProjectScalarFieldsOnly(t *testing.T) {
	f := newFixture()
	c1 := f.addCollaborator("ana", models.AreaGestao, models.AreaBackend, models.AreaFrontend)
	projectID := f.addProject("plataforma", c1)

	name := "plataforma v2"
	view, err := f.service.UpdateProject(context.Background(), projectID, models.ProjectUpdate{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "plataforma v2", view.Name)
	require.Equal(t, models.StatusActive, view.Status)
	require.Len(t, view.Members, 1)
}

func TestUpdateProjectNotFound(t *testing.T) {
	f := newFixture()

	name := "x"
	_, err := f.service.UpdateProject(context.Background(), primitive.NewObjectID(), models.ProjectUpdate{Name: &name})
	require.ErrorIs(t, err, models.ErrProjectNotFound)
}

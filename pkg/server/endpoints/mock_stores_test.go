package endpoints

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bcgov/restoration-tracker/pkg/identity"
	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/queries"
)

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockCodesStore implements store.CodesStore
type MockCodesStore struct {
	mock.Mock
}

func (m *MockCodesStore) GetCodes(ctx context.Context) (*model.CodeSet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CodeSet), args.Error(1)
}

// MockAuthzStore implements authz.Store
type MockAuthzStore struct {
	mock.Mock
}

func (m *MockAuthzStore) GetSystemUserByIdentity(ctx context.Context, id *identity.Identity) (*model.SystemUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SystemUser), args.Error(1)
}

func (m *MockAuthzStore) GetParticipation(ctx context.Context, projectID, systemUserID int) (*model.Participant, error) {
	args := m.Called(ctx, projectID, systemUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Participant), args.Error(1)
}

// MockUsersStore implements store.UsersStore
type MockUsersStore struct {
	mock.Mock
}

func (m *MockUsersStore) GetSystemUserByIdentity(ctx context.Context, id *identity.Identity) (*model.SystemUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SystemUser), args.Error(1)
}

func (m *MockUsersStore) GetSystemUser(ctx context.Context, systemUserID int) (*model.SystemUser, error) {
	args := m.Called(ctx, systemUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SystemUser), args.Error(1)
}

func (m *MockUsersStore) ListSystemUsers(ctx context.Context) ([]model.SystemUser, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.SystemUser), args.Error(1)
}

func (m *MockUsersStore) AddSystemUser(ctx context.Context, u model.NewUser, actorID int) (*model.SystemUser, error) {
	args := m.Called(ctx, u, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SystemUser), args.Error(1)
}

func (m *MockUsersStore) RemoveSystemUser(ctx context.Context, systemUserID, actorID int) error {
	return m.Called(ctx, systemUserID, actorID).Error(0)
}

func (m *MockUsersStore) AddSystemRoles(ctx context.Context, systemUserID int, roleIDs []int, actorID int) error {
	return m.Called(ctx, systemUserID, roleIDs, actorID).Error(0)
}

func (m *MockUsersStore) RemoveSystemRole(ctx context.Context, systemUserID, roleID int) error {
	return m.Called(ctx, systemUserID, roleID).Error(0)
}

func (m *MockUsersStore) SoleLeadProjects(ctx context.Context, systemUserID int) ([]model.SoleLeadProject, error) {
	args := m.Called(ctx, systemUserID)
	return args.Get(0).([]model.SoleLeadProject), args.Error(1)
}

// MockActivitiesStore implements store.ActivitiesStore
type MockActivitiesStore struct {
	mock.Mock
}

func (m *MockActivitiesStore) CreateAccessRequest(ctx context.Context, reportedSystemUserID int, req model.AccessRequest) (*model.AccessRequestResult, error) {
	args := m.Called(ctx, reportedSystemUserID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessRequestResult), args.Error(1)
}

func (m *MockActivitiesStore) HasPendingAccessRequest(ctx context.Context, userGUID string) (bool, error) {
	args := m.Called(ctx, userGUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockActivitiesStore) ListActivities(ctx context.Context, types, statuses []string) ([]model.AdministrativeActivity, error) {
	args := m.Called(ctx, types, statuses)
	return args.Get(0).([]model.AdministrativeActivity), args.Error(1)
}

func (m *MockActivitiesStore) GetActivity(ctx context.Context, activityID int) (*model.AdministrativeActivity, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdministrativeActivity), args.Error(1)
}

func (m *MockActivitiesStore) UpdateActivityStatus(ctx context.Context, activityID int, status string, actorID int) error {
	return m.Called(ctx, activityID, status, actorID).Error(0)
}

func (m *MockActivitiesStore) ApproveAccessRequest(ctx context.Context, activityID int, req model.ApproveAccessRequest, actorID int) (*model.SystemUser, error) {
	args := m.Called(ctx, activityID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SystemUser), args.Error(1)
}

// MockProjectsStore implements store.ProjectsStore
type MockProjectsStore struct {
	mock.Mock
}

func (m *MockProjectsStore) CreateProject(ctx context.Context, p model.PostProjectObject, creatorID int) (int, error) {
	args := m.Called(ctx, p, creatorID)
	return args.Int(0), args.Error(1)
}

func (m *MockProjectsStore) GetProject(ctx context.Context, projectID int) (*model.ProjectRecord, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProjectRecord), args.Error(1)
}

func (m *MockProjectsStore) GetProjectView(ctx context.Context, projectID int, publicOnly bool) (*model.ProjectView, error) {
	args := m.Called(ctx, projectID, publicOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProjectView), args.Error(1)
}

func (m *MockProjectsStore) GetProjectForUpdate(ctx context.Context, projectID int, entities []string) (*model.ProjectForUpdate, error) {
	args := m.Called(ctx, projectID, entities)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProjectForUpdate), args.Error(1)
}

func (m *MockProjectsStore) UpdateProject(ctx context.Context, projectID int, p model.PutProjectObject, actorID int) error {
	return m.Called(ctx, projectID, p, actorID).Error(0)
}

func (m *MockProjectsStore) PublishProject(ctx context.Context, projectID int, publish bool, actorID int) error {
	return m.Called(ctx, projectID, publish, actorID).Error(0)
}

func (m *MockProjectsStore) DeleteProject(ctx context.Context, projectID int) error {
	return m.Called(ctx, projectID).Error(0)
}

func (m *MockProjectsStore) ListProjects(ctx context.Context, filter model.ProjectFilter, scope queries.Scope, limit int) ([]model.ProjectListItem, error) {
	args := m.Called(ctx, filter, scope, limit)
	return args.Get(0).([]model.ProjectListItem), args.Error(1)
}

func (m *MockProjectsStore) SpatialSearch(ctx context.Context, scope queries.Scope, bbox *model.BoundingBox, limit int) ([]model.SearchResult, error) {
	args := m.Called(ctx, scope, bbox, limit)
	return args.Get(0).([]model.SearchResult), args.Error(1)
}

// MockParticipantsStore implements store.ParticipantsStore
type MockParticipantsStore struct {
	mock.Mock
}

func (m *MockParticipantsStore) GetParticipation(ctx context.Context, projectID, systemUserID int) (*model.Participant, error) {
	args := m.Called(ctx, projectID, systemUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Participant), args.Error(1)
}

func (m *MockParticipantsStore) ListParticipants(ctx context.Context, projectID int) ([]model.Participant, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]model.Participant), args.Error(1)
}

func (m *MockParticipantsStore) AddParticipants(ctx context.Context, projectID int, participants []model.NewParticipant, actorID int) error {
	return m.Called(ctx, projectID, participants, actorID).Error(0)
}

func (m *MockParticipantsStore) UpdateParticipantRole(ctx context.Context, projectID, participationID, roleID, actorID int) error {
	return m.Called(ctx, projectID, participationID, roleID, actorID).Error(0)
}

func (m *MockParticipantsStore) RemoveParticipant(ctx context.Context, projectID, participationID int) error {
	return m.Called(ctx, projectID, participationID).Error(0)
}

// MockAttachmentsStore implements store.AttachmentsStore. UpsertAttachment
// calls write with the configured key so object writes are exercised.
type MockAttachmentsStore struct {
	mock.Mock
}

func (m *MockAttachmentsStore) ListAttachments(ctx context.Context, projectID int) ([]model.Attachment, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]model.Attachment), args.Error(1)
}

func (m *MockAttachmentsStore) GetAttachment(ctx context.Context, projectID, attachmentID int) (*model.Attachment, error) {
	args := m.Called(ctx, projectID, attachmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockAttachmentsStore) UpsertAttachment(ctx context.Context, projectID int, a model.Attachment, actorID int, write func(key string) error) (*model.Attachment, error) {
	args := m.Called(ctx, projectID, a, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	saved := args.Get(0).(*model.Attachment)
	if err := write(saved.Key); err != nil {
		return nil, err
	}
	return saved, args.Error(1)
}

func (m *MockAttachmentsStore) DeleteAttachment(ctx context.Context, projectID, attachmentID int) (string, error) {
	args := m.Called(ctx, projectID, attachmentID)
	return args.String(0), args.Error(1)
}

// MockTreatmentsStore implements store.TreatmentsStore
type MockTreatmentsStore struct {
	mock.Mock
}

func (m *MockTreatmentsStore) TreatmentTypes(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockTreatmentsStore) UploadTreatments(ctx context.Context, projectID int, units []model.TreatmentUnit, actorID int) (*model.TreatmentUploadResult, error) {
	args := m.Called(ctx, projectID, units, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TreatmentUploadResult), args.Error(1)
}

func (m *MockTreatmentsStore) ListTreatments(ctx context.Context, projectID int, years []int) ([]model.TreatmentRow, error) {
	args := m.Called(ctx, projectID, years)
	return args.Get(0).([]model.TreatmentRow), args.Error(1)
}

func (m *MockTreatmentsStore) TreatmentYears(ctx context.Context, projectID int) ([]int, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockTreatmentsStore) DeleteTreatmentYear(ctx context.Context, projectID, year int) error {
	return m.Called(ctx, projectID, year).Error(0)
}

// MockDraftsStore implements store.DraftsStore
type MockDraftsStore struct {
	mock.Mock
}

func (m *MockDraftsStore) CreateDraft(ctx context.Context, systemUserID int, name string, data []byte) (*model.Draft, error) {
	args := m.Called(ctx, systemUserID, name, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Draft), args.Error(1)
}

func (m *MockDraftsStore) UpdateDraft(ctx context.Context, systemUserID, draftID int, name string, data []byte) (*model.Draft, error) {
	args := m.Called(ctx, systemUserID, draftID, name, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Draft), args.Error(1)
}

func (m *MockDraftsStore) ListDrafts(ctx context.Context, systemUserID int) ([]model.Draft, error) {
	args := m.Called(ctx, systemUserID)
	return args.Get(0).([]model.Draft), args.Error(1)
}

func (m *MockDraftsStore) GetDraft(ctx context.Context, systemUserID, draftID int) (*model.Draft, error) {
	args := m.Called(ctx, systemUserID, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Draft), args.Error(1)
}

func (m *MockDraftsStore) DeleteDraft(ctx context.Context, systemUserID, draftID int) error {
	return m.Called(ctx, systemUserID, draftID).Error(0)
}

package testhelpers

import (
	"context"

	"lottery/domain/entities"
	"lottery/domain/interfaces"
	"lottery/events"

	"github.com/stretchr/testify/mock"
)

// MockResultStore is a mock implementation of ResultStore
type MockResultStore struct {
	mock.Mock
}

func (m *MockResultStore) Exists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockResultStore) Load(ctx context.Context) (*entities.DrawResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DrawResult), args.Error(1)
}

func (m *MockResultStore) Commit(ctx context.Context, result *entities.DrawResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockResultStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockRosterStore is a mock implementation of RosterStore
type MockRosterStore struct {
	mock.Mock
}

func (m *MockRosterStore) LoadRoster(ctx context.Context) (entities.Roster, error) {
	args := m.Called(ctx)
	return args.Get(0).(entities.Roster), args.Error(1)
}

// MockParticipantRepository is a mock implementation of ParticipantRepository
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) LoadRoster(ctx context.Context) (entities.Roster, error) {
	args := m.Called(ctx)
	return args.Get(0).(entities.Roster), args.Error(1)
}

func (m *MockParticipantRepository) ReplaceAll(ctx context.Context, roster entities.Roster) error {
	args := m.Called(ctx, roster)
	return args.Error(0)
}

func (m *MockParticipantRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockAuthorizer is a mock implementation of Authorizer
type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) CheckOperator(input string) bool {
	args := m.Called(input)
	return args.Bool(0)
}

func (m *MockAuthorizer) CheckReset(input string) bool {
	args := m.Called(input)
	return args.Bool(0)
}

func (m *MockAuthorizer) Warnings() []error {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]error)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) ParticipantRepository() interfaces.ParticipantRepository {
	args := m.Called()
	return args.Get(0).(interfaces.ParticipantRepository)
}

func (m *MockUnitOfWork) ResultStore() interfaces.ResultStore {
	args := m.Called()
	return args.Get(0).(interfaces.ResultStore)
}

func (m *MockUnitOfWork) EventBus() interfaces.EventPublisher {
	args := m.Called()
	return args.Get(0).(interfaces.EventPublisher)
}

// MockUnitOfWorkFactory returns a fixed unit of work
type MockUnitOfWorkFactory struct {
	UoW *MockUnitOfWork
}

func (f *MockUnitOfWorkFactory) Create() interfaces.UnitOfWork {
	return f.UoW
}

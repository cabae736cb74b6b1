package onboarding

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/database"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/models"
)

type fakeUsers struct {
	mu        sync.Mutex
	signUpErr error
	deleteErr error
	users     map[uuid.UUID]string
	deleted   []uuid.UUID
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[uuid.UUID]string)}
}

func (f *fakeUsers) SignUp(_ context.Context, email, _ string, _ map[string]any) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signUpErr != nil {
		return uuid.Nil, f.signUpErr
	}
	id := uuid.New()
	f.users[id] = email
	return id, nil
}

func (f *fakeUsers) DeleteUser(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.users[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.users, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeEmployees struct {
	mu      sync.Mutex
	err     error
	created []models.Employee
}

func (f *fakeEmployees) CreateEmployee(_ context.Context, e *models.Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	f.created = append(f.created, *e)
	return nil
}

func (f *fakeEmployees) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func testRequest() Request {
	return Request{
		Password: "segredo1",
		Employee: models.Employee{
			Name:        "Ana Domingos",
			Email:       "ana@macon.ao",
			Address:     "Rua 1, Luanda",
			PhoneNumber: "923000111",
			IDNumber:    "004512LA041",
			Role:        "bilheteira",
			CompanyID:   uuid.MustParse("6f1c1f0e-8b52-4c52-9b3a-0d3f1e2a4b5c"),
		},
	}
}

package onboarding

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/auth"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/database"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/models"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/logger"
)

const (
	ActivitySignUpUser     = "SignUpUser"
	ActivityCreateEmployee = "CreateEmployee"
	ActivityDeleteUser     = "DeleteUser"

	errTypeEmailTaken   = "EmailTaken"
	errTypeInvalidInput = "InvalidCredentials"
)

// UserStore creates and removes login accounts
type UserStore interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (uuid.UUID, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// EmployeeStore inserts employee records
type EmployeeStore interface {
	CreateEmployee(ctx context.Context, e *models.Employee) error
}

// Activities holds the onboarding steps
type Activities struct {
	users     UserStore
	employees EmployeeStore
	log       logger.Logger
}

// NewActivities creates the onboarding activities
func NewActivities(users UserStore, employees EmployeeStore, log logger.Logger) *Activities {
	return &Activities{users: users, employees: employees, log: log}
}

type activityRegistry interface {
	RegisterActivityWithOptions(a interface{}, options activity.RegisterOptions)
}

// Register adds the activities to a worker (or test environment) by name.
func (a *Activities) Register(r activityRegistry) {
	r.RegisterActivityWithOptions(a.SignUpUser, activity.RegisterOptions{Name: ActivitySignUpUser})
	r.RegisterActivityWithOptions(a.CreateEmployee, activity.RegisterOptions{Name: ActivityCreateEmployee})
	r.RegisterActivityWithOptions(a.DeleteUser, activity.RegisterOptions{Name: ActivityDeleteUser})
}

// SignUpUserInput is the input for SignUpUser
type SignUpUserInput struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SignUpUserOutput is the output of SignUpUser
type SignUpUserOutput struct {
	UserID string `json:"userId"`
}

// SignUpUser creates the login account. Rejections by the auth store are
// not retried.
func (a *Activities) SignUpUser(ctx context.Context, input SignUpUserInput) (*SignUpUserOutput, error) {
	a.log.Info("Signing up user", "email", input.Email)

	id, err := a.users.SignUp(ctx, input.Email, input.Password, input.Metadata)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), errTypeEmailTaken, err)
		case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), errTypeInvalidInput, err)
		}
		return nil, fmt.Errorf("failed to sign up user: %w", err)
	}

	return &SignUpUserOutput{UserID: id.String()}, nil
}

// CreateEmployeeInput is the input for CreateEmployee
type CreateEmployeeInput struct {
	Employee models.Employee `json:"employee"`
}

// CreateEmployeeOutput is the output of CreateEmployee
type CreateEmployeeOutput struct {
	EmployeeID string `json:"employeeId"`
}

// CreateEmployee inserts the employee record linked to its user
func (a *Activities) CreateEmployee(ctx context.Context, input CreateEmployeeInput) (*CreateEmployeeOutput, error) {
	e := input.Employee
	a.log.Info("Creating employee", "email", e.Email, "company_id", e.CompanyID.String())

	if err := a.employees.CreateEmployee(ctx, &e); err != nil {
		return nil, err
	}
	return &CreateEmployeeOutput{EmployeeID: e.ID.String()}, nil
}

// DeleteUserInput is the input for DeleteUser
type DeleteUserInput struct {
	UserID string `json:"userId"`
}

// DeleteUser removes an orphaned login account. A user that is already
// gone counts as success.
func (a *Activities) DeleteUser(ctx context.Context, input DeleteUserInput) error {
	a.log.Warn("Deleting user after failed onboarding", "user_id", input.UserID)

	id, err := uuid.Parse(input.UserID)
	if err != nil {
		return temporal.NewNonRetryableApplicationError("invalid user id", errTypeInvalidInput, err)
	}
	if err := a.users.DeleteUser(ctx, id); err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// IsEmailTaken reports whether err means the address already has an
// account, whether it came straight from the store or through Temporal.
func IsEmailTaken(err error) bool {
	return errors.Is(err, auth.ErrEmailTaken) || hasAppErrorType(err, errTypeEmailTaken)
}

// IsInvalidCredentials reports a rejected email or password.
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, auth.ErrInvalidEmail) || errors.Is(err, auth.ErrWeakPassword) ||
		hasAppErrorType(err, errTypeInvalidInput)
}

func hasAppErrorType(err error, typ string) bool {
	var appErr *temporal.ApplicationError
	return errors.As(err, &appErr) && appErr.Type() == typ
}

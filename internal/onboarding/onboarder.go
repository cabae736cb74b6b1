package onboarding

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/Wolf-Quiteque/100destinosBackend/pkg/logger"
)

// Onboarder creates an employee together with its login account
type Onboarder interface {
	Onboard(ctx context.Context, req Request) (*Result, error)
}

// TemporalOnboarder runs onboarding as a workflow on a worker
type TemporalOnboarder struct {
	client    client.Client
	taskQueue string
}

// NewTemporalOnboarder creates an onboarder backed by Temporal
func NewTemporalOnboarder(c client.Client, taskQueue string) *TemporalOnboarder {
	return &TemporalOnboarder{client: c, taskQueue: taskQueue}
}

// Onboard starts the workflow and waits for its result
func (o *TemporalOnboarder) Onboard(ctx context.Context, req Request) (*Result, error) {
	options := client.StartWorkflowOptions{
		ID:        "employee-onboarding-" + uuid.NewString(),
		TaskQueue: o.taskQueue,
	}

	run, err := o.client.ExecuteWorkflow(ctx, options, EmployeeOnboardingWorkflow, req)
	if err != nil {
		return nil, fmt.Errorf("failed to start onboarding workflow: %w", err)
	}

	var result Result
	if err := run.Get(ctx, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DirectOnboarder runs the same steps in-process, for deployments
// without a Temporal cluster.
type DirectOnboarder struct {
	acts *Activities
	log  logger.Logger
}

// NewDirectOnboarder creates an in-process onboarder
func NewDirectOnboarder(acts *Activities, log logger.Logger) *DirectOnboarder {
	return &DirectOnboarder{acts: acts, log: log}
}

// Onboard signs up, inserts, and removes the account again if the insert fails
func (o *DirectOnboarder) Onboard(ctx context.Context, req Request) (*Result, error) {
	signUp, err := o.acts.SignUpUser(ctx, signUpInput(req))
	if err != nil {
		return nil, err
	}

	employee := req.Employee
	userID, err := uuid.Parse(signUp.UserID)
	if err != nil {
		return nil, fmt.Errorf("sign up returned an invalid user id: %w", err)
	}
	employee.UserID = userID

	created, err := o.acts.CreateEmployee(ctx, CreateEmployeeInput{Employee: employee})
	if err != nil {
		if cerr := o.acts.DeleteUser(ctx, DeleteUserInput{UserID: signUp.UserID}); cerr != nil {
			o.log.Error("failed to remove user after failed onboarding", "user_id", signUp.UserID, "error", cerr)
		}
		return nil, err
	}

	return &Result{EmployeeID: created.EmployeeID, UserID: signUp.UserID}, nil
}

package onboarding

import (
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/models"
)

const WorkflowName = "EmployeeOnboardingWorkflow"

// Request is the input for the onboarding workflow
type Request struct {
	Password string          `json:"password"`
	Employee models.Employee `json:"employee"`
}

// Result is the result of the onboarding workflow
type Result struct {
	EmployeeID string `json:"employeeId"`
	UserID     string `json:"userId"`
}

func signUpInput(req Request) SignUpUserInput {
	return SignUpUserInput{
		Email:    req.Employee.Email,
		Password: req.Password,
		Metadata: map[string]any{
			"name":       req.Employee.Name,
			"role":       req.Employee.Role,
			"company_id": req.Employee.CompanyID.String(),
		},
	}
}

// EmployeeOnboardingWorkflow signs the employee up and then inserts the
// employee record. If the insert fails the new account is deleted again
// and the insert error is returned.
func EmployeeOnboardingWorkflow(ctx workflow.Context, req Request) (*Result, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Onboarding workflow started", "email", req.Employee.Email)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    3,
		},
	})

	var signUp SignUpUserOutput
	if err := workflow.ExecuteActivity(ctx, ActivitySignUpUser, signUpInput(req)).Get(ctx, &signUp); err != nil {
		logger.Error("Sign up failed", "error", err)
		return nil, err
	}

	employee := req.Employee
	userID, err := uuid.Parse(signUp.UserID)
	if err != nil {
		return nil, temporal.NewNonRetryableApplicationError("sign up returned an invalid user id", errTypeInvalidInput, err)
	}
	employee.UserID = userID

	var created CreateEmployeeOutput
	err = workflow.ExecuteActivity(ctx, ActivityCreateEmployee, CreateEmployeeInput{Employee: employee}).Get(ctx, &created)
	if err != nil {
		logger.Error("Employee insert failed, removing user", "userId", signUp.UserID, "error", err)

		if cerr := workflow.ExecuteActivity(ctx, ActivityDeleteUser, DeleteUserInput{UserID: signUp.UserID}).Get(ctx, nil); cerr != nil {
			logger.Error("Failed to remove user", "userId", signUp.UserID, "error", cerr)
		}
		return nil, err
	}

	logger.Info("Onboarding workflow completed", "employeeId", created.EmployeeID)
	return &Result{EmployeeID: created.EmployeeID, UserID: signUp.UserID}, nil
}

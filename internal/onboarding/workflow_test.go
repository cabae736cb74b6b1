package onboarding

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/testsuite"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/auth"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/logger"
)

type OnboardingWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env       *testsuite.TestWorkflowEnvironment
	users     *fakeUsers
	employees *fakeEmployees
}

func (s *OnboardingWorkflowTestSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.users = newFakeUsers()
	s.employees = &fakeEmployees{}
	NewActivities(s.users, s.employees, logger.NewNop()).Register(s.env)
}

func (s *OnboardingWorkflowTestSuite) AfterTest(suiteName, testName string) {
	s.env.AssertExpectations(s.T())
}

func TestOnboardingWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(OnboardingWorkflowTestSuite))
}

func (s *OnboardingWorkflowTestSuite) TestWorkflow_Success() {
	userID := uuid.New()

	s.env.OnActivity(ActivitySignUpUser, mock.Anything, mock.Anything).
		Return(&SignUpUserOutput{UserID: userID.String()}, nil)
	s.env.OnActivity(ActivityCreateEmployee, mock.Anything, mock.MatchedBy(func(in CreateEmployeeInput) bool {
		return in.Employee.UserID == userID && in.Employee.Email == "ana@macon.ao"
	})).Return(&CreateEmployeeOutput{EmployeeID: "emp-1"}, nil)

	s.env.ExecuteWorkflow(EmployeeOnboardingWorkflow, testRequest())

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result Result
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal("emp-1", result.EmployeeID)
	s.Equal(userID.String(), result.UserID)
}

func (s *OnboardingWorkflowTestSuite) TestWorkflow_CompensatesWhenInsertFails() {
	userID := uuid.New()

	s.env.OnActivity(ActivitySignUpUser, mock.Anything, mock.Anything).
		Return(&SignUpUserOutput{UserID: userID.String()}, nil)
	s.env.OnActivity(ActivityCreateEmployee, mock.Anything, mock.Anything).
		Return(nil, errors.New("insert or update on table \"employees\" violates foreign key constraint"))
	s.env.OnActivity(ActivityDeleteUser, mock.Anything, DeleteUserInput{UserID: userID.String()}).
		Return(nil)

	s.env.ExecuteWorkflow(EmployeeOnboardingWorkflow, testRequest())

	s.True(s.env.IsWorkflowCompleted())
	err := s.env.GetWorkflowError()
	s.Error(err)
	s.Contains(err.Error(), "foreign key")
}

func (s *OnboardingWorkflowTestSuite) TestWorkflow_RealActivities() {
	s.env.ExecuteWorkflow(EmployeeOnboardingWorkflow, testRequest())

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
	s.Equal(1, s.employees.count())
	s.Len(s.users.users, 1)
	s.NotEqual(uuid.Nil, s.employees.created[0].UserID)
}

func (s *OnboardingWorkflowTestSuite) TestWorkflow_EmailTakenIsNotRetried() {
	s.users.signUpErr = auth.ErrEmailTaken

	s.env.ExecuteWorkflow(EmployeeOnboardingWorkflow, testRequest())

	s.True(s.env.IsWorkflowCompleted())
	err := s.env.GetWorkflowError()
	s.Error(err)
	s.True(IsEmailTaken(err))
	s.False(IsInvalidCredentials(err))
	s.Equal(0, s.employees.count())
}

func (s *OnboardingWorkflowTestSuite) TestWorkflow_InsertFailureWithRealActivities() {
	s.employees.err = errors.New("db down")

	s.env.ExecuteWorkflow(EmployeeOnboardingWorkflow, testRequest())

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
	s.Empty(s.users.users)
	s.Len(s.users.deleted, 1)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/catalog"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/models"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/onboarding"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/storage"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/logger"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/metrics"
)

// CatalogStore is the paged CRUD store for catalog records
type CatalogStore interface {
	ListCompanies(ctx context.Context, kind models.TransportKind, page, size int) (*catalog.Page[models.Company], error)
	GetCompany(ctx context.Context, kind models.TransportKind, id uuid.UUID) (*models.Company, error)
	CreateCompany(ctx context.Context, kind models.TransportKind, c *models.Company) error
	UpdateCompany(ctx context.Context, kind models.TransportKind, id uuid.UUID, c *models.Company) error
	DeleteCompany(ctx context.Context, kind models.TransportKind, id uuid.UUID) error

	ListBuses(ctx context.Context, page, size int) (*catalog.Page[models.Bus], error)
	CreateBus(ctx context.Context, b *models.Bus) error
	UpdateBus(ctx context.Context, id uuid.UUID, b *models.Bus) error
	DeleteBus(ctx context.Context, id uuid.UUID) error

	ListRoutes(ctx context.Context, kind models.TransportKind, companyID uuid.UUID, page, size int) (*catalog.Page[models.Route], error)
	CreateRoute(ctx context.Context, kind models.TransportKind, rt *models.Route) error
	UpdateRoute(ctx context.Context, kind models.TransportKind, id uuid.UUID, rt *models.Route) error
	DeleteRoute(ctx context.Context, kind models.TransportKind, id uuid.UUID) error

	ListEmployees(ctx context.Context, page, size int) (*catalog.Page[models.Employee], error)
	UpdateEmployee(ctx context.Context, id uuid.UUID, e *models.Employee) error
	DeleteEmployee(ctx context.Context, id uuid.UUID) error
}

// Upload is a file sent along with a form
type Upload struct {
	Filename string
	Body     io.Reader
}

// CompanyInput is a company form. Logo is optional.
type CompanyInput struct {
	Name          string
	ContactNumber string
	Logo          *Upload
}

// EmployeeInput is the new employee form, password included
type EmployeeInput struct {
	Employee models.Employee
	Password string
}

// CatalogService defines the catalog management operations
type CatalogService interface {
	ListCompanies(ctx context.Context, kind models.TransportKind, page int) (*catalog.Page[models.Company], error)
	GetCompany(ctx context.Context, kind models.TransportKind, id string) (*models.Company, error)
	CreateCompany(ctx context.Context, kind models.TransportKind, in CompanyInput) (*models.Company, error)
	UpdateCompany(ctx context.Context, kind models.TransportKind, id string, in CompanyInput) (*models.Company, error)
	DeleteCompany(ctx context.Context, kind models.TransportKind, id string) error

	ListBuses(ctx context.Context, page int) (*catalog.Page[models.Bus], error)
	CreateBus(ctx context.Context, b *models.Bus) (*models.Bus, error)
	UpdateBus(ctx context.Context, id string, b *models.Bus) (*models.Bus, error)
	DeleteBus(ctx context.Context, id string) error

	ListRoutes(ctx context.Context, kind models.TransportKind, companyID string, page int) (*catalog.Page[models.Route], error)
	CreateRoute(ctx context.Context, kind models.TransportKind, companyID string, rt *models.Route) (*models.Route, error)
	UpdateRoute(ctx context.Context, kind models.TransportKind, id string, rt *models.Route) (*models.Route, error)
	DeleteRoute(ctx context.Context, kind models.TransportKind, id string) error

	ListEmployees(ctx context.Context, page int) (*catalog.Page[models.Employee], error)
	CreateEmployee(ctx context.Context, in EmployeeInput) (*onboarding.Result, error)
	UpdateEmployee(ctx context.Context, id string, e *models.Employee) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error

	DownloadFile(ctx context.Context, bucket, name string, w io.Writer) error
}

// CatalogConfig holds the catalog service settings
type CatalogConfig struct {
	PageSize          int
	LogoBucket        string
	DefaultTotalSeats int
}

// catalogServiceImpl implements CatalogService
type catalogServiceImpl struct {
	store     CatalogStore
	files     storage.FileStore
	onboarder onboarding.Onboarder
	cfg       CatalogConfig
	now       func() time.Time
	log       logger.Logger
	metrics   *metrics.Metrics
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(store CatalogStore, files storage.FileStore, onboarder onboarding.Onboarder, cfg CatalogConfig, log logger.Logger, m *metrics.Metrics) CatalogService {
	return &catalogServiceImpl{
		store:     store,
		files:     files,
		onboarder: onboarder,
		cfg:       cfg,
		now:       time.Now,
		log:       log,
		metrics:   m,
	}
}

func (s *catalogServiceImpl) fail(kind ErrorKind, op, table string, err error) error {
	return storeFailure(s.log, s.metrics, kind, op, table, err)
}

func parseID(field, id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, invalid(field, "must be a valid uuid")
	}
	return parsed, nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "is required")
	}
	return nil
}

// Companies

func (s *catalogServiceImpl) ListCompanies(ctx context.Context, kind models.TransportKind, page int) (*catalog.Page[models.Company], error) {
	p, err := s.store.ListCompanies(ctx, kind, page, s.cfg.PageSize)
	if err != nil {
		return nil, s.fail(KindFetch, "list_companies", kind.CompanyTable(), err)
	}
	return p, nil
}

func (s *catalogServiceImpl) GetCompany(ctx context.Context, kind models.TransportKind, id string) (*models.Company, error) {
	uid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	c, err := s.store.GetCompany(ctx, kind, uid)
	if err != nil {
		return nil, s.fail(KindFetch, "get_company", kind.CompanyTable(), err)
	}
	return c, nil
}

func (s *catalogServiceImpl) CreateCompany(ctx context.Context, kind models.TransportKind, in CompanyInput) (*models.Company, error) {
	if err := required("name", in.Name); err != nil {
		return nil, err
	}

	c := &models.Company{
		Name:          strings.TrimSpace(in.Name),
		ContactNumber: strings.TrimSpace(in.ContactNumber),
	}
	if in.Logo != nil {
		url, err := s.uploadLogo(ctx, in.Logo)
		if err != nil {
			return nil, err
		}
		c.LogoURL = &url
	}

	if err := s.store.CreateCompany(ctx, kind, c); err != nil {
		return nil, s.fail(KindMutation, "create_company", kind.CompanyTable(), err)
	}
	return c, nil
}

// UpdateCompany keeps the stored logo when no new one is sent.
func (s *catalogServiceImpl) UpdateCompany(ctx context.Context, kind models.TransportKind, id string, in CompanyInput) (*models.Company, error) {
	uid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	if err := required("name", in.Name); err != nil {
		return nil, err
	}

	c := &models.Company{
		Name:          strings.TrimSpace(in.Name),
		ContactNumber: strings.TrimSpace(in.ContactNumber),
	}
	if in.Logo != nil {
		url, err := s.uploadLogo(ctx, in.Logo)
		if err != nil {
			return nil, err
		}
		c.LogoURL = &url
	}

	if err := s.store.UpdateCompany(ctx, kind, uid, c); err != nil {
		return nil, s.fail(KindMutation, "update_company", kind.CompanyTable(), err)
	}
	c.ID = uid
	return c, nil
}

func (s *catalogServiceImpl) uploadLogo(ctx context.Context, logo *Upload) (string, error) {
	if err := required("logo", logo.Filename); err != nil {
		return "", err
	}
	path := storage.LogoPath(s.now(), logo.Filename)
	if _, err := s.files.Upload(ctx, s.cfg.LogoBucket, path, logo.Body); err != nil {
		return "", s.fail(KindMutation, "upload_logo", s.cfg.LogoBucket, err)
	}
	return s.files.PublicURL(s.cfg.LogoBucket, path), nil
}

func (s *catalogServiceImpl) DeleteCompany(ctx context.Context, kind models.TransportKind, id string) error {
	uid, err := parseID("id", id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteCompany(ctx, kind, uid); err != nil {
		return s.fail(KindMutation, "delete_company", kind.CompanyTable(), err)
	}
	return nil
}

// Buses

func validateBus(b *models.Bus) error {
	if err := required("reference", b.Reference); err != nil {
		return err
	}
	if b.Seats <= 0 {
		return invalid("seats", "must be greater than zero")
	}
	if b.CompanyID == uuid.Nil {
		return invalid("company_id", "is required")
	}
	return nil
}

func (s *catalogServiceImpl) ListBuses(ctx context.Context, page int) (*catalog.Page[models.Bus], error) {
	p, err := s.store.ListBuses(ctx, page, s.cfg.PageSize)
	if err != nil {
		return nil, s.fail(KindFetch, "list_buses", "buses", err)
	}
	return p, nil
}

func (s *catalogServiceImpl) CreateBus(ctx context.Context, b *models.Bus) (*models.Bus, error) {
	if err := validateBus(b); err != nil {
		return nil, err
	}
	if err := s.store.CreateBus(ctx, b); err != nil {
		return nil, s.fail(KindMutation, "create_bus", "buses", err)
	}
	return b, nil
}

func (s *catalogServiceImpl) UpdateBus(ctx context.Context, id string, b *models.Bus) (*models.Bus, error) {
	uid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	if err := validateBus(b); err != nil {
		return nil, err
	}
	if err := s.store.UpdateBus(ctx, uid, b); err != nil {
		return nil, s.fail(KindMutation, "update_bus", "buses", err)
	}
	b.ID = uid
	return b, nil
}

func (s *catalogServiceImpl) DeleteBus(ctx context.Context, id string) error {
	uid, err := parseID("id", id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteBus(ctx, uid); err != nil {
		return s.fail(KindMutation, "delete_bus", "buses", err)
	}
	return nil
}

// Routes

func (s *catalogServiceImpl) validateRoute(kind models.TransportKind, rt *models.Route) error {
	if err := required("origin", rt.Origin); err != nil {
		return err
	}
	if err := required("destination", rt.Destination); err != nil {
		return err
	}
	if rt.BasePrice < 0 {
		return invalid("base_price", "must not be negative")
	}
	if rt.TotalSeats < 0 {
		return invalid("total_seats", "must not be negative")
	}
	if rt.TotalSeats == 0 {
		rt.TotalSeats = s.cfg.DefaultTotalSeats
	}
	if kind == models.TransportPlane {
		if _, err := models.RouteDuration(rt.DepartureTime, rt.ArrivalTime); err != nil {
			return invalid("departure_time", err.Error())
		}
	}
	rt.Type = kind
	return nil
}

// ListRoutes lists every route of the kind when companyID is empty.
func (s *catalogServiceImpl) ListRoutes(ctx context.Context, kind models.TransportKind, companyID string, page int) (*catalog.Page[models.Route], error) {
	cid := uuid.Nil
	if strings.TrimSpace(companyID) != "" {
		var err error
		if cid, err = parseID("company_id", companyID); err != nil {
			return nil, err
		}
	}
	p, err := s.store.ListRoutes(ctx, kind, cid, page, s.cfg.PageSize)
	if err != nil {
		return nil, s.fail(KindFetch, "list_routes", kind.RouteTable(), err)
	}
	return p, nil
}

func (s *catalogServiceImpl) CreateRoute(ctx context.Context, kind models.TransportKind, companyID string, rt *models.Route) (*models.Route, error) {
	cid, err := parseID("company_id", companyID)
	if err != nil {
		return nil, err
	}
	rt.CompanyID = cid
	if err := s.validateRoute(kind, rt); err != nil {
		return nil, err
	}
	if err := s.store.CreateRoute(ctx, kind, rt); err != nil {
		return nil, s.fail(KindMutation, "create_route", kind.RouteTable(), err)
	}
	return rt, nil
}

func (s *catalogServiceImpl) UpdateRoute(ctx context.Context, kind models.TransportKind, id string, rt *models.Route) (*models.Route, error) {
	uid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	if err := s.validateRoute(kind, rt); err != nil {
		return nil, err
	}
	if err := s.store.UpdateRoute(ctx, kind, uid, rt); err != nil {
		return nil, s.fail(KindMutation, "update_route", kind.RouteTable(), err)
	}
	rt.ID = uid
	return rt, nil
}

func (s *catalogServiceImpl) DeleteRoute(ctx context.Context, kind models.TransportKind, id string) error {
	uid, err := parseID("id", id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRoute(ctx, kind, uid); err != nil {
		return s.fail(KindMutation, "delete_route", kind.RouteTable(), err)
	}
	return nil
}

// Employees

func validateEmployee(e *models.Employee) error {
	if err := required("name", e.Name); err != nil {
		return err
	}
	if err := required("email", e.Email); err != nil {
		return err
	}
	if e.CompanyID == uuid.Nil {
		return invalid("company_id", "is required")
	}
	return nil
}

func (s *catalogServiceImpl) ListEmployees(ctx context.Context, page int) (*catalog.Page[models.Employee], error) {
	p, err := s.store.ListEmployees(ctx, page, s.cfg.PageSize)
	if err != nil {
		return nil, s.fail(KindFetch, "list_employees", "employees", err)
	}
	return p, nil
}

// CreateEmployee signs the employee up and inserts the record through
// the onboarder.
func (s *catalogServiceImpl) CreateEmployee(ctx context.Context, in EmployeeInput) (*onboarding.Result, error) {
	if err := validateEmployee(&in.Employee); err != nil {
		return nil, err
	}

	res, err := s.onboarder.Onboard(ctx, onboarding.Request{Password: in.Password, Employee: in.Employee})
	switch {
	case err == nil:
		s.log.Info("employee onboarded", "employee_id", res.EmployeeID, "user_id", res.UserID)
		return res, nil
	case onboarding.IsEmailTaken(err):
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	case onboarding.IsInvalidCredentials(err):
		return nil, invalid("credentials", "invalid email or password")
	default:
		return nil, s.fail(KindMutation, "create_employee", "employees", err)
	}
}

func (s *catalogServiceImpl) UpdateEmployee(ctx context.Context, id string, e *models.Employee) (*models.Employee, error) {
	uid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	if err := validateEmployee(e); err != nil {
		return nil, err
	}
	if err := s.store.UpdateEmployee(ctx, uid, e); err != nil {
		return nil, s.fail(KindMutation, "update_employee", "employees", err)
	}
	e.ID = uid
	return e, nil
}

func (s *catalogServiceImpl) DeleteEmployee(ctx context.Context, id string) error {
	uid, err := parseID("id", id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteEmployee(ctx, uid); err != nil {
		return s.fail(KindMutation, "delete_employee", "employees", err)
	}
	return nil
}

// Files

func (s *catalogServiceImpl) DownloadFile(ctx context.Context, bucket, name string, w io.Writer) error {
	if err := required("bucket", bucket); err != nil {
		return err
	}
	if err := required("path", name); err != nil {
		return err
	}
	if err := s.files.Download(ctx, bucket, name, w); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, name)
		}
		return s.fail(KindFetch, "download_file", bucket, err)
	}
	return nil
}

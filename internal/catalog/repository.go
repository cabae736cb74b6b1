package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/models"
)

// Repository implements catalog storage on GORM
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// --- Companies ---

// ListCompanies returns companies of kind, newest first
func (r *Repository) ListCompanies(ctx context.Context, kind models.TransportKind, page, size int) (*Page[models.Company], error) {
	page, size = normalizePage(page, size)

	var total int64
	if err := r.db.WithContext(ctx).Table(kind.CompanyTable()).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count companies: %w", err)
	}

	var companies []models.Company
	err := r.db.WithContext(ctx).Table(kind.CompanyTable()).
		Order("created_at DESC").
		Offset(offset(page, size)).Limit(size).
		Find(&companies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	return newPage(companies, total, page, size), nil
}

// GetCompany returns a company by ID
func (r *Repository) GetCompany(ctx context.Context, kind models.TransportKind, id uuid.UUID) (*models.Company, error) {
	var c models.Company
	err := r.db.WithContext(ctx).Table(kind.CompanyTable()).Where("id = ?", id).Take(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// CreateCompany inserts c, assigning an ID when it has none
func (r *Repository) CreateCompany(ctx context.Context, kind models.TransportKind, c *models.Company) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Table(kind.CompanyTable()).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

// UpdateCompany overwrites name and contact number. The logo is only
// replaced when c carries one.
func (r *Repository) UpdateCompany(ctx context.Context, kind models.TransportKind, id uuid.UUID, c *models.Company) error {
	fields := map[string]any{
		"name":           c.Name,
		"contact_number": c.ContactNumber,
	}
	if c.LogoURL != nil {
		fields["logo_url"] = *c.LogoURL
	}
	result := r.db.WithContext(ctx).Table(kind.CompanyTable()).Where("id = ?", id).Updates(fields)
	return affected(result, "update company")
}

// DeleteCompany removes a company with its buses, routes and employees
func (r *Repository) DeleteCompany(ctx context.Context, kind models.TransportKind, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Table(kind.CompanyTable()).Where("id = ?", id).Delete(&models.Company{})
	return affected(result, "delete company")
}

// --- Buses ---

// ListBuses returns buses with their company, newest first
func (r *Repository) ListBuses(ctx context.Context, page, size int) (*Page[models.Bus], error) {
	page, size = normalizePage(page, size)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Bus{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count buses: %w", err)
	}

	var buses []models.Bus
	err := r.db.WithContext(ctx).
		Preload("Company").
		Order("created_at DESC").
		Offset(offset(page, size)).Limit(size).
		Find(&buses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list buses: %w", err)
	}

	return newPage(buses, total, page, size), nil
}

// CreateBus inserts b
func (r *Repository) CreateBus(ctx context.Context, b *models.Bus) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Omit("Company").Create(b).Error; err != nil {
		return fmt.Errorf("failed to create bus: %w", err)
	}
	return nil
}

// UpdateBus overwrites reference, seats and owner
func (r *Repository) UpdateBus(ctx context.Context, id uuid.UUID, b *models.Bus) error {
	result := r.db.WithContext(ctx).Model(&models.Bus{}).Where("id = ?", id).Updates(map[string]any{
		"reference":  b.Reference,
		"seats":      b.Seats,
		"company_id": b.CompanyID,
	})
	return affected(result, "update bus")
}

// DeleteBus removes a bus
func (r *Repository) DeleteBus(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Bus{})
	return affected(result, "delete bus")
}

// --- Routes ---

// ListRoutes returns routes of kind, optionally for one company
func (r *Repository) ListRoutes(ctx context.Context, kind models.TransportKind, companyID uuid.UUID, page, size int) (*Page[models.Route], error) {
	page, size = normalizePage(page, size)

	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Table(kind.RouteTable())
		if companyID != uuid.Nil {
			db = db.Where("company_id = ?", companyID)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Scopes(scope).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count routes: %w", err)
	}

	var routes []models.Route
	err := r.db.WithContext(ctx).Scopes(scope).
		Order("created_at DESC").
		Offset(offset(page, size)).Limit(size).
		Find(&routes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}

	return newPage(routes, total, page, size), nil
}

// CreateRoute inserts rt into the table of kind. Plane routes get their
// duration derived from the schedule.
func (r *Repository) CreateRoute(ctx context.Context, kind models.TransportKind, rt *models.Route) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	rt.Type = kind
	if kind == models.TransportPlane {
		duration, err := models.RouteDuration(rt.DepartureTime, rt.ArrivalTime)
		if err != nil {
			return err
		}
		rt.Duration = duration
	}

	if err := r.db.WithContext(ctx).Table(kind.RouteTable()).Create(rt).Error; err != nil {
		return fmt.Errorf("failed to create route: %w", err)
	}
	return nil
}

// UpdateRoute overwrites the schedule and pricing of a route
func (r *Repository) UpdateRoute(ctx context.Context, kind models.TransportKind, id uuid.UUID, rt *models.Route) error {
	fields := map[string]any{
		"origin":         rt.Origin,
		"destination":    rt.Destination,
		"departure_time": rt.DepartureTime,
		"arrival_time":   rt.ArrivalTime,
		"base_price":     rt.BasePrice,
		"total_seats":    rt.TotalSeats,
	}
	if kind == models.TransportPlane {
		duration, err := models.RouteDuration(rt.DepartureTime, rt.ArrivalTime)
		if err != nil {
			return err
		}
		fields["duration"] = duration
		fields["flight_number"] = rt.FlightNumber
		fields["airline_code"] = rt.AirlineCode
	}

	result := r.db.WithContext(ctx).Table(kind.RouteTable()).Where("id = ?", id).Updates(fields)
	return affected(result, "update route")
}

// DeleteRoute removes a route
func (r *Repository) DeleteRoute(ctx context.Context, kind models.TransportKind, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Table(kind.RouteTable()).Where("id = ?", id).Delete(&models.Route{})
	return affected(result, "delete route")
}

// --- Employees ---

// ListEmployees returns employees with their company, newest first
func (r *Repository) ListEmployees(ctx context.Context, page, size int) (*Page[models.Employee], error) {
	page, size = normalizePage(page, size)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Employee{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count employees: %w", err)
	}

	var employees []models.Employee
	err := r.db.WithContext(ctx).
		Preload("Company").
		Order("created_at DESC").
		Offset(offset(page, size)).Limit(size).
		Find(&employees).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	return newPage(employees, total, page, size), nil
}

// CreateEmployee inserts e. The auth user must already exist.
func (r *Repository) CreateEmployee(ctx context.Context, e *models.Employee) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Omit("Company").Create(e).Error; err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

// UpdateEmployee overwrites the employee's profile. The linked auth user
// is left alone.
func (r *Repository) UpdateEmployee(ctx context.Context, id uuid.UUID, e *models.Employee) error {
	result := r.db.WithContext(ctx).Model(&models.Employee{}).Where("id = ?", id).Updates(map[string]any{
		"name":         e.Name,
		"email":        e.Email,
		"address":      e.Address,
		"phone_number": e.PhoneNumber,
		"id_number":    e.IDNumber,
		"role":         e.Role,
		"company_id":   e.CompanyID,
	})
	return affected(result, "update employee")
}

// DeleteEmployee removes an employee record
func (r *Repository) DeleteEmployee(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Employee{})
	return affected(result, "delete employee")
}

package handlers

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/models"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/service"
)

const maxLogoSize = 5 << 20

func parseKind(r *http.Request) (models.TransportKind, error) {
	kind, err := models.ParseTransportKind(r.URL.Query().Get("kind"))
	if err != nil {
		return "", &service.ValidationError{Field: "kind", Msg: err.Error()}
	}
	return kind, nil
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &service.ValidationError{Field: "body", Msg: "invalid request body"}
	}
	return nil
}

// companyInput reads a company from a multipart form with an optional
// "logo" file, or from a JSON body.
func companyInput(r *http.Request) (service.CompanyInput, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var body struct {
			Name          string `json:"name"`
			ContactNumber string `json:"contact_number"`
		}
		if err := decodeJSON(r, &body); err != nil {
			return service.CompanyInput{}, err
		}
		return service.CompanyInput{Name: body.Name, ContactNumber: body.ContactNumber}, nil
	}

	if err := r.ParseMultipartForm(maxLogoSize); err != nil {
		return service.CompanyInput{}, &service.ValidationError{Field: "body", Msg: "invalid multipart form"}
	}
	in := service.CompanyInput{
		Name:          r.FormValue("name"),
		ContactNumber: r.FormValue("contact_number"),
	}
	file, header, err := r.FormFile("logo")
	switch err {
	case nil:
		in.Logo = &service.Upload{Filename: header.Filename, Body: file}
	case http.ErrMissingFile:
	default:
		return service.CompanyInput{}, &service.ValidationError{Field: "logo", Msg: "unreadable file"}
	}
	return in, nil
}

// ListCompanies handles GET /api/companies
func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	page, err := queryInt(r, "page", 1)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	companies, err := h.catalogService.ListCompanies(r.Context(), kind, page)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, companies)
}

// GetCompany handles GET /api/companies/{id}
func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	company, err := h.catalogService.GetCompany(r.Context(), kind, mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, company)
}

// CreateCompany handles POST /api/companies
func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	in, err := companyInput(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	company, err := h.catalogService.CreateCompany(r.Context(), kind, in)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, company)
}

// UpdateCompany handles PUT /api/companies/{id}
func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	in, err := companyInput(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	company, err := h.catalogService.UpdateCompany(r.Context(), kind, mux.Vars(r)["id"], in)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, company)
}

// DeleteCompany handles DELETE /api/companies/{id}
func (h *Handler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if err := h.catalogService.DeleteCompany(r.Context(), kind, mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Company deleted"})
}

// ListBuses handles GET /api/buses
func (h *Handler) ListBuses(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	buses, err := h.catalogService.ListBuses(r.Context(), page)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, buses)
}

// CreateBus handles POST /api/buses
func (h *Handler) CreateBus(w http.ResponseWriter, r *http.Request) {
	var bus models.Bus
	if err := decodeJSON(r, &bus); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	created, err := h.catalogService.CreateBus(r.Context(), &bus)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// UpdateBus handles PUT /api/buses/{id}
func (h *Handler) UpdateBus(w http.ResponseWriter, r *http.Request) {
	var bus models.Bus
	if err := decodeJSON(r, &bus); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	updated, err := h.catalogService.UpdateBus(r.Context(), mux.Vars(r)["id"], &bus)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteBus handles DELETE /api/buses/{id}
func (h *Handler) DeleteBus(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.DeleteBus(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Bus deleted"})
}

// ListRoutes handles GET /api/routes and GET /api/companies/{id}/routes
func (h *Handler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	page, err := queryInt(r, "page", 1)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	routes, err := h.catalogService.ListRoutes(r.Context(), kind, mux.Vars(r)["id"], page)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, routes)
}

// CreateRoute handles POST /api/companies/{id}/routes
func (h *Handler) CreateRoute(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	var route models.Route
	if err := decodeJSON(r, &route); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	created, err := h.catalogService.CreateRoute(r.Context(), kind, mux.Vars(r)["id"], &route)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// UpdateRoute handles PUT /api/routes/{id}
func (h *Handler) UpdateRoute(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	var route models.Route
	if err := decodeJSON(r, &route); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	updated, err := h.catalogService.UpdateRoute(r.Context(), kind, mux.Vars(r)["id"], &route)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteRoute handles DELETE /api/routes/{id}
func (h *Handler) DeleteRoute(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if err := h.catalogService.DeleteRoute(r.Context(), kind, mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Route deleted"})
}

// ListEmployees handles GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	employees, err := h.catalogService.ListEmployees(r.Context(), page)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, employees)
}

// employeeRequest is an employee form with the new account's password
type employeeRequest struct {
	models.Employee
	Password string `json:"password"`
}

// CreateEmployee handles POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	res, err := h.catalogService.CreateEmployee(r.Context(), service.EmployeeInput{
		Employee: req.Employee,
		Password: req.Password,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

// UpdateEmployee handles PUT /api/employees/{id}
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var employee models.Employee
	if err := decodeJSON(r, &employee); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	updated, err := h.catalogService.UpdateEmployee(r.Context(), mux.Vars(r)["id"], &employee)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteEmployee handles DELETE /api/employees/{id}
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.DeleteEmployee(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Employee deleted"})
}

// ServeFile handles GET /storage/{bucket}/{path}
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["path"]

	var buf bytes.Buffer
	if err := h.catalogService.DownloadFile(r.Context(), vars["bucket"], name, &buf); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = http.DetectContentType(buf.Bytes())
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

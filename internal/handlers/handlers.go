package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/database"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/models"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/reports"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/service"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/logger"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

// Handler contains HTTP handlers for the API
type Handler struct {
	bookingService service.BookingService
	catalogService service.CatalogService
	reportService  service.ReportService
	log            logger.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(bookings service.BookingService, catalog service.CatalogService, reports service.ReportService, log logger.Logger) *Handler {
	return &Handler{
		bookingService: bookings,
		catalogService: catalog,
		reportService:  reports,
		log:            log,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors onto status codes. Internal
// failures are logged and answered with a generic message.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Error())
	case service.IsNotFound(err):
		respondError(w, http.StatusNotFound, "Not found")
	case service.IsConflict(err):
		respondError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// queryInt reads a positive integer query parameter, def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	return queryIntMax(r, name, def, 0)
}

// queryIntMax is queryInt with an upper bound; max < 1 means none.
func queryIntMax(r *http.Request, name string, def, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &service.ValidationError{Field: name, Msg: "must be a positive integer"}
	}
	if max > 0 && n > max {
		return 0, &service.ValidationError{Field: name, Msg: fmt.Sprintf("must not exceed %d", max)}
	}
	return n, nil
}

func parseListQuery(r *http.Request) (service.BookingListQuery, error) {
	q := r.URL.Query()
	status, err := models.ParseBookingStatus(q.Get("status"))
	if err != nil {
		return service.BookingListQuery{}, &service.ValidationError{Field: "status", Msg: err.Error()}
	}
	page, err := queryInt(r, "page", 1)
	if err != nil {
		return service.BookingListQuery{}, err
	}
	return service.BookingListQuery{Search: q.Get("q"), Status: status, Page: page}, nil
}

// ListBookings handles GET /api/bookings
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	page, err := h.bookingService.ListBookings(r.Context(), q)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// ListCompanyBookings handles GET /api/companies/{id}/bookings
func (h *Handler) ListCompanyBookings(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	page, err := h.bookingService.ListCompanyBookings(r.Context(), mux.Vars(r)["id"], q)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// SearchBookings handles GET /api/bookings/search
func (h *Handler) SearchBookings(w http.ResponseWriter, r *http.Request) {
	lq, err := parseListQuery(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	size, err := queryIntMax(r, "page_size", 20, database.MaxSearchPageSize)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	page, err := h.bookingService.SearchBookings(r.Context(), database.BookingQuery{
		Term:     lq.Search,
		Status:   lq.Status,
		RouteIDs: r.URL.Query()["route_id"],
		Page:     lq.Page,
		PageSize: size,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// ExportBookings handles GET /api/bookings/export.xlsx
func (h *Handler) ExportBookings(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	rows, err := h.bookingService.ExportBookings(r.Context(), q)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := reports.ExportBookingsXLSX(&buf, rows); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="reservas.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// DeleteBooking handles DELETE /api/bookings/{id}
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.bookingService.DeleteBooking(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Booking deleted"})
}

// Revenue handles GET /api/reports/revenue
func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reportService.Revenue(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// RevenuePDF handles GET /api/reports/revenue.pdf
func (h *Handler) RevenuePDF(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reportService.Revenue(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := reports.RenderRevenuePDF(&buf, "Relatório financeiro", *summary); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", pdfContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="receita.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// CompanyRevenue handles GET /api/companies/{id}/reports/revenue
func (h *Handler) CompanyRevenue(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reportService.CompanyRevenue(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// AvailableRoutes handles GET /api/routes/available
func (h *Handler) AvailableRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.reportService.AvailableRoutes(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, routes)
}

// SeatMap handles GET /api/routes/{id}/seats
func (h *Handler) SeatMap(w http.ResponseWriter, r *http.Request) {
	total, err := queryIntMax(r, "total_seats", 0, reports.MaxSeats)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	m, err := h.reportService.SeatMap(r.Context(), mux.Vars(r)["id"], total)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/handlers"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/websocket"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/logger"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/metrics"
)

// Options carries what the router needs besides the handlers
type Options struct {
	Hub            *websocket.Hub
	Log            logger.Logger
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	AllowedOrigins []string
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(h *handlers.Handler, opts Options) *mux.Router {
	r := mux.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(opts.Log, opts.Metrics))
	r.Use(corsMiddleware(opts.AllowedOrigins))

	// API routes
	api := r.PathPrefix("/api").Subrouter()

	// Bookings
	api.HandleFunc("/bookings", h.ListBookings).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/bookings/search", h.SearchBookings).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/bookings/export.xlsx", h.ExportBookings).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/bookings/{id}", h.DeleteBooking).Methods(http.MethodDelete, http.MethodOptions)

	// Reports
	api.HandleFunc("/reports/revenue", h.Revenue).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/reports/revenue.pdf", h.RevenuePDF).Methods(http.MethodGet, http.MethodOptions)

	// Companies
	api.HandleFunc("/companies", h.ListCompanies).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/companies", h.CreateCompany).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/companies/{id}", h.GetCompany).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/companies/{id}", h.UpdateCompany).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/companies/{id}", h.DeleteCompany).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/companies/{id}/bookings", h.ListCompanyBookings).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/companies/{id}/reports/revenue", h.CompanyRevenue).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/companies/{id}/routes", h.ListRoutes).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/companies/{id}/routes", h.CreateRoute).Methods(http.MethodPost, http.MethodOptions)

	// Buses
	api.HandleFunc("/buses", h.ListBuses).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/buses", h.CreateBus).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/buses/{id}", h.UpdateBus).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/buses/{id}", h.DeleteBus).Methods(http.MethodDelete, http.MethodOptions)

	// Routes
	api.HandleFunc("/routes", h.ListRoutes).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/routes/available", h.AvailableRoutes).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/routes/{id}/seats", h.SeatMap).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/routes/{id}", h.UpdateRoute).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/routes/{id}", h.DeleteRoute).Methods(http.MethodDelete, http.MethodOptions)

	// Employees
	api.HandleFunc("/employees", h.ListEmployees).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/employees", h.CreateEmployee).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/employees/{id}", h.UpdateEmployee).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/employees/{id}", h.DeleteEmployee).Methods(http.MethodDelete, http.MethodOptions)

	// WebSocket for real-time updates
	if opts.Hub != nil {
		api.HandleFunc("/realtime/ws", opts.Hub.ServeWS)
	}

	// Uploaded files
	r.HandleFunc("/storage/{bucket}/{path:.+}", h.ServeFile).Methods(http.MethodGet)

	// Health check and metrics
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	metricsHandler := opts.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler).Methods(http.MethodGet)

	return r
}

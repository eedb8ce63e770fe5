package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"palika/internal/config"
	"palika/internal/domain"
	"palika/internal/handler"
	"palika/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	log *zap.Logger,
	connH *handler.ConnectionHandler,
	readingH *handler.ReadingHandler,
	billH *handler.BillHandler,
	tariffH *handler.TariffHandler,
	loadH *handler.LoadHandler,
	reportH *handler.ReportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(cfg.JWT))

	// Connection lifecycle
	connections := v1.Group("/connections")
	connections.POST("", connH.Apply)
	connections.GET("", connH.List)
	connections.GET("/:id", connH.GetByID)
	connections.PATCH("/:id/status",
		middleware.RequireRole(domain.RoleOfficer, domain.RoleAdmin), connH.Transition)

	// Meter readings
	connections.POST("/:id/readings", readingH.Submit)
	connections.GET("/:id/readings", readingH.ListByConnection)
	v1.GET("/readings/:id", readingH.GetByID)

	// Meter history
	connections.POST("/:id/meter-events",
		middleware.RequireRole(domain.RoleOfficer, domain.RoleAdmin), connH.RecordMeterEvent)
	connections.GET("/:id/meter-events", connH.ListMeterEvents)

	// Bills and payments
	bills := v1.Group("/bills")
	bills.POST("", middleware.RequireRole(domain.RoleOfficer, domain.RoleAdmin), billH.Generate)
	bills.GET("/:id", billH.GetByID)
	bills.POST("/:id/payments", billH.Pay)
	bills.GET("/:id/payments", billH.ListPayments)
	bills.POST("/:id/send",
		middleware.RequireRole(domain.RoleOfficer, domain.RoleAdmin), billH.MarkSent)
	bills.POST("/:id/cancel",
		middleware.RequireRole(domain.RoleOfficer, domain.RoleAdmin), billH.Cancel)
	connections.GET("/:id/bills", billH.ListByConnection)

	// Tariff administration
	tariffs := v1.Group("/tariffs")
	tariffs.POST("", middleware.RequireRole(domain.RoleAdmin), tariffH.Create)
	tariffs.GET("", tariffH.List)
	tariffs.GET("/:id", tariffH.GetByID)

	// Load accounting
	loadGroup := v1.Group("/load")
	loadGroup.POST("/availability", loadH.CheckAvailability)
	loadGroup.GET("/shedding-order",
		middleware.RequireRole(domain.RoleOfficer, domain.RoleAdmin), loadH.SheddingOrder)
	loadGroup.PUT("/zones", middleware.RequireRole(domain.RoleAdmin), loadH.DeclareZone)
	loadGroup.PUT("/wards", middleware.RequireRole(domain.RoleAdmin), loadH.DeclareWard)
	connections.GET("/:id/load", loadH.GetReservation)
	connections.POST("/:id/demand",
		middleware.RequireRole(domain.RoleOfficer, domain.RoleAdmin), loadH.RecordDemand)

	// Registers
	reports := v1.Group("/reports")
	reports.GET("/bill-register",
		middleware.RequireRole(domain.RoleOfficer, domain.RoleAdmin), reportH.BillRegister)

	return r
}

package handlers

import (
	"fmt"

	portssvc "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/middleware"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	return setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {
	v1 := r.Group("/api/v1")

	RegisterAccountRoutes(v1, services.Account, services.Ledger)
	registerLedgerRoutes(v1, services.Ledger)
	registerJournalRoutes(v1, services.Journal)
	registerCollectionRoutes(v1, services.Collection)

	// Maintenance operations mutate in bulk, so they sit behind their own
	// rate limiter and default to dry-run.
	maintenanceLimiter, err := middleware.NewRateLimiter(cfg.MaintenanceRateLimit)
	if err != nil {
		return fmt.Errorf("maintenance rate limiter: %w", err)
	}
	maintenance := v1.Group("/maintenance", middleware.RateLimit(maintenanceLimiter))
	registerMaintenanceRoutes(maintenance, services.Reconciliation, services.Revenue, services.Integrity, services.Ledger)

	return nil
}

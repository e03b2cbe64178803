package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/apperrors"
	portssvc "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/dto"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/middleware"
	"github.com/gin-gonic/gin"
)

// maintenanceHandler handles the bulk repair operations: balance
// reconciliation, revenue backfill, order deduplication, imported amount
// fixes, and ledger reclassification. Every operation defaults to dry-run.
type maintenanceHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
	revenueService        portssvc.RevenueSvcFacade
	integrityService      portssvc.IntegritySvcFacade
	ledgerService         portssvc.LedgerSvcFacade
}

// newMaintenanceHandler creates a new maintenanceHandler.
func newMaintenanceHandler(
	reconciliation portssvc.ReconciliationSvcFacade,
	revenue portssvc.RevenueSvcFacade,
	integrity portssvc.IntegritySvcFacade,
	ledger portssvc.LedgerSvcFacade,
) *maintenanceHandler {
	return &maintenanceHandler{
		reconciliationService: reconciliation,
		revenueService:        revenue,
		integrityService:      integrity,
		ledgerService:         ledger,
	}
}

// registerMaintenanceRoutes registers the maintenance operation routes.
func registerMaintenanceRoutes(
	rg *gin.RouterGroup,
	reconciliation portssvc.ReconciliationSvcFacade,
	revenue portssvc.RevenueSvcFacade,
	integrity portssvc.IntegritySvcFacade,
	ledger portssvc.LedgerSvcFacade,
) {
	h := newMaintenanceHandler(reconciliation, revenue, integrity, ledger)

	rg.POST("/reconcile", h.reconcileBalances)
	rg.POST("/backfill", h.backfillRevenue)
	rg.POST("/cost-backfill", h.backfillCosts)
	rg.POST("/dedup", h.deduplicateOrders)
	rg.POST("/amount-fix", h.fixImportedAmounts)
	rg.POST("/repair-misclassified", h.repairMisclassified)
}

// reconcileBalances godoc
// @Summary Reconcile cached account balances
// @Description Compares every cached balance against the ledger-derived balance and corrects drift. Defaults to dry-run.
// @Tags maintenance
// @Accept  json
// @Produce  json
// @Param   options body dto.MaintenanceRunRequest false "Run options"
// @Success 200 {object} domain.ReconciliationReport
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 500 {object} map[string]string "Reconciliation failed"
// @Router /maintenance/reconcile [post]
func (h *maintenanceHandler) reconcileBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.MaintenanceRunRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		logger.Warn("Failed to bind JSON for ReconcileBalances", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID := middleware.GetActorID(c)
	dryRun := req.Apply()
	logger = logger.With(slog.String("actor_id", actorID), slog.Bool("dry_run", dryRun))
	logger.Info("Received balance reconciliation request")

	report, err := h.reconciliationService.ReconcileBalances(c.Request.Context(), dryRun, actorID)
	if err != nil {
		logger.Error("Balance reconciliation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation failed"})
		return
	}

	logger.Info("Balance reconciliation completed", slog.Int("checked", report.CheckedAccounts), slog.Int("corrections", len(report.Corrections)))
	c.JSON(http.StatusOK, report)
}

// backfillRevenue godoc
// @Summary Backfill missed revenue recognition
// @Description Scans live delivered orders that never produced a journal entry and recognizes them. Defaults to dry-run.
// @Tags maintenance
// @Accept  json
// @Produce  json
// @Param   options body dto.BackfillRunRequest false "Run options"
// @Success 200 {object} domain.BackfillReport
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 500 {object} map[string]string "Backfill failed"
// @Router /maintenance/backfill [post]
func (h *maintenanceHandler) backfillRevenue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BackfillRunRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		logger.Warn("Failed to bind JSON for BackfillRevenue", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID := middleware.GetActorID(c)
	dryRun := req.Apply()
	logger = logger.With(slog.String("actor_id", actorID), slog.Bool("dry_run", dryRun), slog.Int("limit", req.Limit))
	logger.Info("Received revenue backfill request")

	report, err := h.revenueService.BackfillMissing(c.Request.Context(), dryRun, req.Limit, actorID)
	if err != nil {
		logger.Error("Revenue backfill failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Backfill failed"})
		return
	}

	logger.Info("Revenue backfill completed",
		slog.Int("scanned", report.Scanned),
		slog.Int("recognized", report.Recognized),
		slog.Int("skipped", report.Skipped),
		slog.String("recovered_revenue", report.RecoveredRevenue.String()))
	c.JSON(http.StatusOK, report)
}

// backfillCosts godoc
// @Summary Backfill missing cost-of-goods entries
// @Description Posts the COGS-only entry for recognized orders that were flagged cost-incomplete and now have product cost data. Defaults to dry-run.
// @Tags maintenance
// @Accept  json
// @Produce  json
// @Param   options body dto.MaintenanceRunRequest false "Run options"
// @Success 200 {object} domain.CostBackfillReport
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 500 {object} map[string]string "Cost backfill failed"
// @Router /maintenance/cost-backfill [post]
func (h *maintenanceHandler) backfillCosts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.MaintenanceRunRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		logger.Warn("Failed to bind JSON for BackfillCosts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID := middleware.GetActorID(c)
	dryRun := req.Apply()
	logger = logger.With(slog.String("actor_id", actorID), slog.Bool("dry_run", dryRun))
	logger.Info("Received cost backfill request")

	report, err := h.revenueService.BackfillCosts(c.Request.Context(), dryRun, actorID)
	if err != nil {
		logger.Error("Cost backfill failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cost backfill failed"})
		return
	}

	logger.Info("Cost backfill completed",
		slog.Int("scanned", report.Scanned),
		slog.Int("posted", report.Posted),
		slog.String("total_cogs", report.TotalCOGS.String()))
	c.JSON(http.StatusOK, report)
}

// deduplicateOrders godoc
// @Summary Deduplicate bulk-imported orders
// @Description Fingerprints live bulk-imported orders, soft-deletes duplicate losers, and migrates GL state to the survivor. Defaults to dry-run.
// @Tags maintenance
// @Accept  json
// @Produce  json
// @Param   options body dto.MaintenanceRunRequest false "Run options"
// @Success 200 {object} domain.DedupReport
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 500 {object} map[string]string "Deduplication failed"
// @Router /maintenance/dedup [post]
func (h *maintenanceHandler) deduplicateOrders(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.MaintenanceRunRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		logger.Warn("Failed to bind JSON for DeduplicateOrders", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID := middleware.GetActorID(c)
	dryRun := req.Apply()
	logger = logger.With(slog.String("actor_id", actorID), slog.Bool("dry_run", dryRun))
	logger.Info("Received order deduplication request")

	report, err := h.integrityService.DeduplicateOrders(c.Request.Context(), dryRun, actorID)
	if err != nil {
		logger.Error("Order deduplication failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Deduplication failed"})
		return
	}

	logger.Info("Order deduplication completed",
		slog.Int("scanned", report.ScannedOrders),
		slog.Int("groups", len(report.DuplicateGroups)),
		slog.Int64("soft_deleted", report.SoftDeleted),
		slog.Int("manual_review", report.ManualReview))
	c.JSON(http.StatusOK, report)
}

// fixImportedAmounts godoc
// @Summary Fix misapplied imported amounts
// @Description Corrects bulk-imported order lines where the row total was imported as the unit price. Defaults to dry-run.
// @Tags maintenance
// @Accept  json
// @Produce  json
// @Param   options body dto.MaintenanceRunRequest false "Run options"
// @Success 200 {object} domain.AmountFixReport
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 500 {object} map[string]string "Amount fix failed"
// @Router /maintenance/amount-fix [post]
func (h *maintenanceHandler) fixImportedAmounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.MaintenanceRunRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		logger.Warn("Failed to bind JSON for FixImportedAmounts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID := middleware.GetActorID(c)
	dryRun := req.Apply()
	logger = logger.With(slog.String("actor_id", actorID), slog.Bool("dry_run", dryRun))
	logger.Info("Received imported amount fix request")

	report, err := h.integrityService.FixImportedAmounts(c.Request.Context(), dryRun, actorID)
	if err != nil {
		logger.Error("Imported amount fix failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Amount fix failed"})
		return
	}

	logger.Info("Imported amount fix completed", slog.Int("scanned", report.Scanned), slog.Int("applied", report.Applied))
	c.JSON(http.StatusOK, report)
}

// repairMisclassified godoc
// @Summary Repair misclassified ledger lines
// @Description Re-points posted lines from one account code to another for a given source type, adjusting both cached balances. Defaults to dry-run.
// @Tags maintenance
// @Accept  json
// @Produce  json
// @Param   repair body dto.RepairMisclassifiedRequest true "Repair parameters"
// @Success 200 {object} dto.RepairMisclassifiedResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Repair failed"
// @Router /maintenance/repair-misclassified [post]
func (h *maintenanceHandler) repairMisclassified(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RepairMisclassifiedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RepairMisclassified", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID := middleware.GetActorID(c)
	logger = logger.With(
		slog.String("actor_id", actorID),
		slog.String("from_code", req.FromCode),
		slog.String("to_code", req.ToCode),
		slog.String("source_type", req.SourceType))
	logger.Info("Received ledger repair request")

	resp, err := h.ledgerService.RepairMisclassified(c.Request.Context(), req, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error on ledger repair", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found for ledger repair", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Ledger repair failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Repair failed"})
		}
		return
	}

	logger.Info("Ledger repair completed", slog.Bool("dry_run", resp.DryRun), slog.Int64("lines_moved", resp.LinesMoved))
	c.JSON(http.StatusOK, resp)
}

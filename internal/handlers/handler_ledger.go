package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests against the whole-ledger views.
// Per-account listing lives with the account routes.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{
		ledgerService: ls,
	}
}

// registerLedgerRoutes registers whole-ledger routes.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/ledger")
	{
		ledger.GET("/aggregate", h.aggregateBalances)
	}
}

// aggregateBalances godoc
// @Summary Aggregate the transaction ledger per account
// @Description Computes debit and credit sums per account across the entire ledger, the raw input to balance reconciliation
// @Tags ledger
// @Produce  json
// @Success 200 {array} domain.AccountBalanceSummary
// @Failure 500 {object} map[string]string "Failed to aggregate ledger"
// @Router /ledger/aggregate [get]
func (h *ledgerHandler) aggregateBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	summaries, err := h.ledgerService.AggregateBalances(c.Request.Context())
	if err != nil {
		logger.Error("Failed to aggregate ledger", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate ledger"})
		return
	}

	c.JSON(http.StatusOK, summaries)
}

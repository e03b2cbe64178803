package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/apperrors"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	portssvc "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/dto"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/middleware"
	"github.com/gin-gonic/gin"
)

// collectionHandler handles HTTP requests for agent collections, deposits,
// and agent cash positions.
type collectionHandler struct {
	collectionService portssvc.CollectionSvcFacade
}

// newCollectionHandler creates a new collectionHandler.
func newCollectionHandler(cs portssvc.CollectionSvcFacade) *collectionHandler {
	return &collectionHandler{
		collectionService: cs,
	}
}

// registerCollectionRoutes registers routes related to agent collections.
func registerCollectionRoutes(rg *gin.RouterGroup, collectionService portssvc.CollectionSvcFacade) {
	h := newCollectionHandler(collectionService)

	collections := rg.Group("/collections")
	{
		collections.POST("", h.createCollection)
		collections.GET("", h.listCollections)
		collections.POST("/bulk-verify", h.bulkVerify)
		collections.GET("/:id", h.getCollection)
		collections.POST("/:id/verify", h.verifyCollection)
		collections.POST("/:id/approve", h.approveCollection)
		collections.POST("/:id/reject", h.rejectCollection)
		collections.POST("/:id/reconcile", h.reconcileCollection)
	}

	deposits := rg.Group("/deposits")
	{
		deposits.POST("", h.createDeposit)
		deposits.POST("/:id/verify", h.verifyDeposit)
		deposits.POST("/:id/reject", h.rejectDeposit)
	}

	agents := rg.Group("/agents")
	{
		agents.GET("/aging-report", h.agingReport)
		agents.GET("/:id/balance", h.getAgentBalance)
	}
}

func collectionIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}

// createCollection godoc
// @Summary Record an agent collection
// @Description Records a draft cash collection and accrues the amount onto the agent's balance
// @Tags collections
// @Accept  json
// @Produce  json
// @Param   collection body dto.CreateCollectionRequest true "Collection details"
// @Success 201 {object} dto.CollectionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Order not found"
// @Failure 409 {object} map[string]string "Order deleted or already has a live collection"
// @Failure 500 {object} map[string]string "Failed to create collection"
// @Router /collections [post]
func (h *collectionHandler) createCollection(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCollection", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID := middleware.GetActorID(c)
	logger = logger.With(slog.String("actor_id", actorID), slog.Int64("order_id", req.OrderID), slog.Int64("agent_id", req.AgentID))
	logger.Info("Received request to create collection")

	collection, err := h.collectionService.CreateCollection(c.Request.Context(), req, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating collection", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Order not found for collection", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Collection conflicts with current state", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create collection in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create collection"})
		}
		return
	}

	logger.Info("Collection created successfully", slog.Int64("collection_id", collection.ID))
	c.JSON(http.StatusCreated, dto.ToCollectionResponse(collection))
}

// getCollection godoc
// @Summary Get a collection by ID
// @Tags collections
// @Produce  json
// @Param   id path int true "Collection ID"
// @Success 200 {object} dto.CollectionResponse
// @Failure 404 {object} map[string]string "Collection not found"
// @Failure 500 {object} map[string]string "Failed to retrieve collection"
// @Router /collections/{id} [get]
func (h *collectionHandler) getCollection(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id, ok := collectionIDParam(c)
	if !ok {
		return
	}

	collection, err := h.collectionService.GetCollection(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Collection not found", slog.Int64("collection_id", id))
			c.JSON(http.StatusNotFound, gin.H{"error": "Collection not found"})
		} else {
			logger.Error("Failed to get collection from service", slog.Int64("collection_id", id), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve collection"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToCollectionResponse(collection))
}

// listCollections godoc
// @Summary List collections
// @Description Retrieves collections matching the filter, newest collection date first
// @Tags collections
// @Produce  json
// @Param   agentID query int false "Filter by agent"
// @Param   status query string false "Filter by status"
// @Param   limit query int false "Page size (default 100, max 1000)"
// @Success 200 {array} dto.CollectionResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list collections"
// @Router /collections [get]
func (h *collectionHandler) listCollections(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListCollectionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListCollections", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	collections, err := h.collectionService.ListCollections(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error listing collections", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list collections", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list collections"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToCollectionResponses(collections))
}

// transition runs one plain state-machine step and maps its errors.
func (h *collectionHandler) transition(c *gin.Context, action string, fn func(ctx *gin.Context, id int64, actorID string) (*dto.CollectionResponse, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id, ok := collectionIDParam(c)
	if !ok {
		return
	}

	actorID := middleware.GetActorID(c)
	logger = logger.With(slog.String("actor_id", actorID), slog.Int64("collection_id", id), slog.String("action", action))
	logger.Info("Received collection transition request")

	resp, err := fn(c, id, actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Collection not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Collection not found"})
		case errors.Is(err, services.ErrAlreadyReconciled),
			errors.Is(err, services.ErrInvalidTransition),
			errors.Is(err, apperrors.ErrConflict):
			logger.Warn("Collection transition refused", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrRejectNeedsReason), errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error on collection transition", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrMissingAccountMapping):
			logger.Error("Cash account mapping missing", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Collection transition failed in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action + " collection"})
		}
		return
	}

	logger.Info("Collection transition applied")
	c.JSON(http.StatusOK, resp)
}

// verifyCollection godoc
// @Summary Verify a collection
// @Description Moves a draft collection to verified
// @Tags collections
// @Produce  json
// @Param   id path int true "Collection ID"
// @Success 200 {object} dto.CollectionResponse
// @Failure 404 {object} map[string]string "Collection not found"
// @Failure 409 {object} map[string]string "Transition not allowed from current status"
// @Failure 500 {object} map[string]string "Failed to verify collection"
// @Router /collections/{id}/verify [post]
func (h *collectionHandler) verifyCollection(c *gin.Context) {
	h.transition(c, "verify", func(ctx *gin.Context, id int64, actorID string) (*dto.CollectionResponse, error) {
		collection, err := h.collectionService.VerifyCollection(ctx.Request.Context(), id, actorID)
		if err != nil {
			return nil, err
		}
		resp := dto.ToCollectionResponse(collection)
		return &resp, nil
	})
}

// approveCollection godoc
// @Summary Approve a collection
// @Description Moves a verified collection to approved
// @Tags collections
// @Produce  json
// @Param   id path int true "Collection ID"
// @Success 200 {object} dto.CollectionResponse
// @Failure 404 {object} map[string]string "Collection not found"
// @Failure 409 {object} map[string]string "Transition not allowed from current status"
// @Failure 500 {object} map[string]string "Failed to approve collection"
// @Router /collections/{id}/approve [post]
func (h *collectionHandler) approveCollection(c *gin.Context) {
	h.transition(c, "approve", func(ctx *gin.Context, id int64, actorID string) (*dto.CollectionResponse, error) {
		collection, err := h.collectionService.ApproveCollection(ctx.Request.Context(), id, actorID)
		if err != nil {
			return nil, err
		}
		resp := dto.ToCollectionResponse(collection)
		return &resp, nil
	})
}

// rejectCollection godoc
// @Summary Reject a collection
// @Description Aborts a draft or verified collection with a reason. The agent balance is left unchanged.
// @Tags collections
// @Accept  json
// @Produce  json
// @Param   id path int true "Collection ID"
// @Param   rejection body dto.RejectCollectionRequest true "Rejection reason"
// @Success 200 {object} dto.CollectionResponse
// @Failure 400 {object} map[string]string "Missing rejection reason"
// @Failure 404 {object} map[string]string "Collection not found"
// @Failure 409 {object} map[string]string "Transition not allowed from current status"
// @Failure 500 {object} map[string]string "Failed to reject collection"
// @Router /collections/{id}/reject [post]
func (h *collectionHandler) rejectCollection(c *gin.Context) {
	var req dto.RejectCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind JSON for RejectCollection", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	h.transition(c, "reject", func(ctx *gin.Context, id int64, actorID string) (*dto.CollectionResponse, error) {
		collection, err := h.collectionService.RejectCollection(ctx.Request.Context(), id, req.Reason, actorID)
		if err != nil {
			return nil, err
		}
		resp := dto.ToCollectionResponse(collection)
		return &resp, nil
	})
}

// reconcileCollection godoc
// @Summary Reconcile a collection
// @Description Settles the collection: the status flip, the agent balance decrement, and the cash reclassification entry commit atomically
// @Tags collections
// @Produce  json
// @Param   id path int true "Collection ID"
// @Success 200 {object} dto.CollectionResponse
// @Failure 404 {object} map[string]string "Collection not found"
// @Failure 409 {object} map[string]string "Already reconciled or transition not allowed"
// @Failure 500 {object} map[string]string "Failed to reconcile collection"
// @Router /collections/{id}/reconcile [post]
func (h *collectionHandler) reconcileCollection(c *gin.Context) {
	h.transition(c, "reconcile", func(ctx *gin.Context, id int64, actorID string) (*dto.CollectionResponse, error) {
		collection, err := h.collectionService.ReconcileCollection(ctx.Request.Context(), id, actorID)
		if err != nil {
			return nil, err
		}
		resp := dto.ToCollectionResponse(collection)
		return &resp, nil
	})
}

// bulkVerify godoc
// @Summary Verify a batch of collections
// @Description Verifies each collection independently. Failures are reported per item and never roll back the successes.
// @Tags collections
// @Accept  json
// @Produce  json
// @Param   batch body dto.BulkVerifyRequest true "Collection IDs"
// @Success 200 {object} dto.BulkVerifyResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 500 {object} map[string]string "Failed to verify collections"
// @Router /collections/bulk-verify [post]
func (h *collectionHandler) bulkVerify(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BulkVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for BulkVerify", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID := middleware.GetActorID(c)
	logger = logger.With(slog.String("actor_id", actorID))
	logger.Info("Received bulk verify request", slog.Int("count", len(req.CollectionIDs)))

	resp, err := h.collectionService.BulkVerify(c.Request.Context(), req, actorID)
	if err != nil {
		logger.Error("Failed to bulk verify collections", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify collections"})
		return
	}

	logger.Info("Bulk verify completed", slog.Int("verified", len(resp.Verified)), slog.Int("failed", len(resp.Failed)))
	c.JSON(http.StatusOK, resp)
}

// createDeposit godoc
// @Summary Record an agent deposit
// @Description Records a pending deposit against an agent's outstanding balance
// @Tags deposits
// @Accept  json
// @Produce  json
// @Param   deposit body dto.CreateDepositRequest true "Deposit details"
// @Success 201 {object} dto.DepositResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 409 {object} map[string]string "Deposit exceeds agent balance"
// @Failure 500 {object} map[string]string "Failed to create deposit"
// @Router /deposits [post]
func (h *collectionHandler) createDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDeposit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID := middleware.GetActorID(c)
	logger = logger.With(slog.String("actor_id", actorID), slog.Int64("agent_id", req.AgentID))
	logger.Info("Received request to create deposit")

	deposit, err := h.collectionService.CreateDeposit(c.Request.Context(), req, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating deposit", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Deposit conflicts with agent balance", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create deposit in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create deposit"})
		}
		return
	}

	logger.Info("Deposit created successfully", slog.Int64("deposit_id", deposit.ID))
	c.JSON(http.StatusCreated, dto.ToDepositResponse(deposit))
}

// verifyDeposit godoc
// @Summary Verify a deposit
// @Description Confirms a pending deposit and reduces the agent's balance
// @Tags deposits
// @Produce  json
// @Param   id path int true "Deposit ID"
// @Success 200 {object} dto.DepositResponse
// @Failure 404 {object} map[string]string "Deposit not found"
// @Failure 409 {object} map[string]string "Deposit not pending or exceeds agent balance"
// @Failure 500 {object} map[string]string "Failed to verify deposit"
// @Router /deposits/{id}/verify [post]
func (h *collectionHandler) verifyDeposit(c *gin.Context) {
	h.depositAction(c, "verify", h.collectionService.VerifyDeposit)
}

// rejectDeposit godoc
// @Summary Reject a deposit
// @Description Marks a pending deposit rejected. The agent balance is left unchanged.
// @Tags deposits
// @Produce  json
// @Param   id path int true "Deposit ID"
// @Success 200 {object} dto.DepositResponse
// @Failure 404 {object} map[string]string "Deposit not found"
// @Failure 409 {object} map[string]string "Deposit is not pending"
// @Failure 500 {object} map[string]string "Failed to reject deposit"
// @Router /deposits/{id}/reject [post]
func (h *collectionHandler) rejectDeposit(c *gin.Context) {
	h.depositAction(c, "reject", h.collectionService.RejectDeposit)
}

func (h *collectionHandler) depositAction(c *gin.Context, action string, fn func(ctx context.Context, depositID int64, userID string) (*domain.AgentDeposit, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id, ok := collectionIDParam(c)
	if !ok {
		return
	}

	actorID := middleware.GetActorID(c)
	logger = logger.With(slog.String("actor_id", actorID), slog.Int64("deposit_id", id), slog.String("action", action))
	logger.Info("Received deposit action request")

	deposit, err := fn(c.Request.Context(), id, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Deposit not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Deposit not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Deposit action refused", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Deposit action failed in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action + " deposit"})
		}
		return
	}

	logger.Info("Deposit action applied")
	c.JSON(http.StatusOK, dto.ToDepositResponse(deposit))
}

// getAgentBalance godoc
// @Summary Get an agent's cash position
// @Description Retrieves the agent's running balance, creating a zero row on first use
// @Tags agents
// @Produce  json
// @Param   id path int true "Agent ID"
// @Success 200 {object} dto.AgentBalanceResponse
// @Failure 400 {object} map[string]string "Invalid agent ID"
// @Failure 500 {object} map[string]string "Failed to retrieve balance"
// @Router /agents/{id}/balance [get]
func (h *collectionHandler) getAgentBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	agentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agent ID"})
		return
	}

	balance, err := h.collectionService.GetAgentBalance(c.Request.Context(), agentID)
	if err != nil {
		logger.Error("Failed to get agent balance", slog.Int64("agent_id", agentID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve balance"})
		return
	}

	c.JSON(http.StatusOK, dto.ToAgentBalanceResponse(balance))
}

// agingReport godoc
// @Summary Aging report for outstanding collections
// @Description Groups each agent's outstanding collections into age buckets by days held
// @Tags agents
// @Produce  json
// @Success 200 {array} domain.AgentAgingReport
// @Failure 500 {object} map[string]string "Failed to build aging report"
// @Router /agents/aging-report [get]
func (h *collectionHandler) agingReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	report, err := h.collectionService.AgingReport(c.Request.Context())
	if err != nil {
		logger.Error("Failed to build aging report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build aging report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/apperrors"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	portsrepo "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/repositories"
	portssvc "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/dto"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/middleware"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/platform/config"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/utils/accounting"
)

var (
	ErrInvalidTransition = errors.New("collection status transition not allowed")
	ErrAlreadyReconciled = errors.New("collection is already reconciled")
	ErrRejectNeedsReason = errors.New("rejection requires a reason")
)

// collectionService drives the agent cash-collection state machine:
// draft, verified, approved, reconciled, with rejected as the abort state.
type collectionService struct {
	collectionRepo portsrepo.CollectionRepositoryFacade
	orderRepo      portsrepo.OrderRepositoryFacade
	accountRepo    portsrepo.AccountRepositoryFacade
	publisher      portssvc.EventPublisher

	// allowReconcileFromVerified permits settling straight from verified,
	// skipping the approval step.
	allowReconcileFromVerified bool
}

// NewCollectionService creates a new collection service.
func NewCollectionService(collectionRepo portsrepo.CollectionRepositoryFacade, orderRepo portsrepo.OrderRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, publisher portssvc.EventPublisher, allowReconcileFromVerified bool) portssvc.CollectionSvcFacade {
	return &collectionService{
		collectionRepo:             collectionRepo,
		orderRepo:                  orderRepo,
		accountRepo:                accountRepo,
		publisher:                  publisher,
		allowReconcileFromVerified: allowReconcileFromVerified,
	}
}

var _ portssvc.CollectionSvcFacade = (*collectionService)(nil)

// CreateCollection records cash collected by an agent for one order. The
// draft row and the agent balance accrual commit together; a live
// collection already existing for the order fails with ErrDuplicate.
func (s *collectionService) CreateCollection(ctx context.Context, req dto.CreateCollectionRequest, userID string) (*domain.AgentCollection, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	order, err := s.orderRepo.FindOrderByID(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find order %d: %w", req.OrderID, err)
	}
	if !order.Live() {
		return nil, fmt.Errorf("%w: order %d is deleted", apperrors.ErrConflict, req.OrderID)
	}

	amount := req.Amount
	if amount.IsZero() {
		amount = order.TotalAmount
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: collection amount must be positive", apperrors.ErrValidation)
	}

	collectionDate := req.CollectionDate
	if collectionDate.IsZero() {
		collectionDate = time.Now().UTC()
	}

	collection := domain.AgentCollection{
		OrderID:        req.OrderID,
		AgentID:        req.AgentID,
		Amount:         amount,
		Status:         domain.CollectionDraft,
		CollectionDate: collectionDate,
		CreatedAt:      time.Now().UTC(),
	}

	saved, err := s.collectionRepo.SaveCollectionWithAccrual(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to save collection for order %d: %w", req.OrderID, err)
	}

	logger.Info("Collection recorded",
		slog.Int64("collection_id", saved.ID),
		slog.Int64("order_id", saved.OrderID),
		slog.Int64("agent_id", saved.AgentID),
		slog.String("amount", saved.Amount.String()))
	return saved, nil
}

// GetCollection retrieves a collection by ID.
func (s *collectionService) GetCollection(ctx context.Context, collectionID int64) (*domain.AgentCollection, error) {
	collection, err := s.collectionRepo.FindCollectionByID(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find collection %d: %w", collectionID, err)
	}
	return collection, nil
}

// ListCollections retrieves collections matching the filter. Collections on
// soft-deleted orders never appear.
func (s *collectionService) ListCollections(ctx context.Context, params dto.ListCollectionsParams) ([]domain.AgentCollection, error) {
	filter := portsrepo.CollectionFilter{
		AgentID: params.AgentID,
		From:    params.From,
		To:      params.To,
		Limit:   params.Limit,
	}
	if params.Status != nil {
		status := domain.CollectionStatus(*params.Status)
		filter.Status = &status
	}
	collections, err := s.collectionRepo.ListCollections(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return collections, nil
}

// GetAgentBalance retrieves an agent's cash position.
func (s *collectionService) GetAgentBalance(ctx context.Context, agentID int64) (*domain.AgentBalance, error) {
	balance, err := s.collectionRepo.GetOrCreateBalance(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance for agent %d: %w", agentID, err)
	}
	return balance, nil
}

// VerifyCollection moves a draft collection to verified.
func (s *collectionService) VerifyCollection(ctx context.Context, collectionID int64, userID string) (*domain.AgentCollection, error) {
	return s.transition(ctx, collectionID, userID, "", domain.CollectionVerified, domain.EventCollectionVerified, domain.CollectionDraft)
}

// ApproveCollection moves a verified collection to approved.
func (s *collectionService) ApproveCollection(ctx context.Context, collectionID int64, userID string) (*domain.AgentCollection, error) {
	return s.transition(ctx, collectionID, userID, "", domain.CollectionApproved, domain.EventCollectionApproved, domain.CollectionVerified)
}

// RejectCollection aborts a draft or verified collection. The agent balance
// is deliberately left unchanged: rejection disputes the record, and the
// cash position is settled manually outside the state machine.
func (s *collectionService) RejectCollection(ctx context.Context, collectionID int64, reason string, userID string) (*domain.AgentCollection, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: collection %d", ErrRejectNeedsReason, collectionID)
	}
	return s.transition(ctx, collectionID, userID, reason, domain.CollectionRejected, domain.EventCollectionRejected, domain.CollectionDraft, domain.CollectionVerified)
}

// transition performs a plain (non-monetary) status change after checking
// the current status is one of the allowed source states.
func (s *collectionService) transition(ctx context.Context, collectionID int64, userID, reason string, target domain.CollectionStatus, event domain.EventType, allowedFrom ...domain.CollectionStatus) (*domain.AgentCollection, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	collection, err := s.collectionRepo.FindCollectionByID(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find collection %d: %w", collectionID, err)
	}
	if err := checkTransition(collection.Status, target, allowedFrom); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.collectionRepo.UpdateCollectionStatus(ctx, collectionID, target, userID, reason, now); err != nil {
		return nil, fmt.Errorf("failed to update collection %d to %s: %w", collectionID, target, err)
	}

	collection.Status = target
	applyTransitionStamp(collection, target, userID, reason, now)

	if s.publisher != nil {
		s.publisher.Publish(ctx, domain.Event{
			Type:       event,
			OccurredAt: now,
			SubjectID:  collectionID,
			Amount:     collection.Amount,
			ActorID:    userID,
			Detail:     reason,
		})
	}

	logger.Info("Collection status changed",
		slog.Int64("collection_id", collectionID),
		slog.String("status", string(target)))
	return collection, nil
}

func checkTransition(current, target domain.CollectionStatus, allowedFrom []domain.CollectionStatus) error {
	if current == domain.CollectionReconciled {
		return fmt.Errorf("%w", ErrAlreadyReconciled)
	}
	for _, from := range allowedFrom {
		if current == from {
			return nil
		}
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current, target)
}

func applyTransitionStamp(c *domain.AgentCollection, target domain.CollectionStatus, userID, reason string, now time.Time) {
	switch target {
	case domain.CollectionVerified:
		c.VerifiedAt, c.VerifiedBy = &now, &userID
	case domain.CollectionApproved:
		c.ApprovedAt, c.ApprovedBy = &now, &userID
	case domain.CollectionReconciled:
		c.ReconciledAt, c.ReconciledBy = &now, &userID
	case domain.CollectionRejected:
		c.RejectedAt, c.RejectedBy = &now, &userID
		c.RejectReason = reason
	}
}

// ReconcileCollection settles a collection: the status flip, the agent
// balance decrement, and the cash reclassification entry (cash in hand from
// cash in transit) commit as one database transaction. Settling an
// already-reconciled collection fails with ErrAlreadyReconciled and changes
// nothing.
func (s *collectionService) ReconcileCollection(ctx context.Context, collectionID int64, userID string) (*domain.AgentCollection, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	collection, err := s.collectionRepo.FindCollectionByID(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find collection %d: %w", collectionID, err)
	}
	if collection.Status == domain.CollectionReconciled {
		return nil, fmt.Errorf("%w: collection %d", ErrAlreadyReconciled, collectionID)
	}
	allowed := collection.Status == domain.CollectionApproved ||
		(s.allowReconcileFromVerified && collection.Status == domain.CollectionVerified)
	if !allowed {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, collection.Status, domain.CollectionReconciled)
	}

	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, []string{config.AccountCashInHand, config.AccountCashInTransit})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cash accounts: %w", err)
	}
	for _, code := range []string{config.AccountCashInHand, config.AccountCashInTransit} {
		if acc, found := accounts[code]; !found || !acc.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrMissingAccountMapping, code)
		}
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
	transactions := []domain.AccountTransaction{
		{
			TransactionID: uuid.NewString(),
			EntryID:       entryID,
			AccountCode:   config.AccountCashInHand,
			DebitAmount:   collection.Amount,
			Description:   fmt.Sprintf("Cash received from agent %d, collection #%d", collection.AgentID, collectionID),
			AuditFields:   audit,
		},
		{
			TransactionID: uuid.NewString(),
			EntryID:       entryID,
			AccountCode:   config.AccountCashInTransit,
			CreditAmount:  collection.Amount,
			Description:   fmt.Sprintf("Cash in transit cleared, collection #%d", collectionID),
			AuditFields:   audit,
		},
	}
	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   now,
		Description: fmt.Sprintf("Agent cash reconciliation, collection #%d", collectionID),
		SourceType:  domain.SourceAgentReconcile,
		SourceID:    collectionID,
		Status:      domain.Posted,
		AuditFields: audit,
	}

	normals := map[string]domain.NormalBalance{
		config.AccountCashInHand:    accounts[config.AccountCashInHand].NormalBalance,
		config.AccountCashInTransit: accounts[config.AccountCashInTransit].NormalBalance,
	}
	balanceChanges, err := accounting.BalanceChanges(transactions, normals)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance changes: %w", err)
	}

	postedEntry, err := s.collectionRepo.SettleCollection(ctx, collectionID, userID, now, entry, transactions, balanceChanges)
	if err != nil {
		return nil, fmt.Errorf("failed to settle collection %d: %w", collectionID, err)
	}

	collection.Status = domain.CollectionReconciled
	applyTransitionStamp(collection, domain.CollectionReconciled, userID, "", now)

	if s.publisher != nil {
		s.publisher.Publish(ctx, domain.Event{
			Type:       domain.EventCollectionReconciled,
			OccurredAt: now,
			SubjectID:  collectionID,
			Amount:     collection.Amount,
			ActorID:    userID,
		})
	}

	logger.Info("Collection reconciled",
		slog.Int64("collection_id", collectionID),
		slog.Int64("agent_id", collection.AgentID),
		slog.String("amount", collection.Amount.String()),
		slog.String("entry_number", postedEntry.EntryNumber))
	return collection, nil
}

// BulkVerify verifies a batch of collections independently: each failure is
// reported per item and never rolls back the successes.
func (s *collectionService) BulkVerify(ctx context.Context, req dto.BulkVerifyRequest, userID string) (*dto.BulkVerifyResponse, error) {
	resp := &dto.BulkVerifyResponse{
		Verified: make([]int64, 0, len(req.CollectionIDs)),
	}
	for _, id := range req.CollectionIDs {
		if _, err := s.VerifyCollection(ctx, id, userID); err != nil {
			resp.Failed = append(resp.Failed, dto.BulkVerifyFailure{
				CollectionID: id,
				Reason:       err.Error(),
			})
			continue
		}
		resp.Verified = append(resp.Verified, id)
	}
	return resp, nil
}

// CreateDeposit records a pending agent deposit.
func (s *collectionService) CreateDeposit(ctx context.Context, req dto.CreateDepositRequest, userID string) (*domain.AgentDeposit, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: deposit amount must be positive", apperrors.ErrValidation)
	}

	balance, err := s.collectionRepo.GetOrCreateBalance(ctx, req.AgentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance for agent %d: %w", req.AgentID, err)
	}
	if req.Amount.GreaterThan(balance.CurrentBalance) {
		return nil, fmt.Errorf("%w: deposit %s exceeds agent balance %s", apperrors.ErrConflict, req.Amount, balance.CurrentBalance)
	}

	deposit := domain.AgentDeposit{
		AgentID:   req.AgentID,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		Notes:     req.Notes,
		Status:    domain.DepositPending,
		CreatedAt: time.Now().UTC(),
	}
	saved, err := s.collectionRepo.SaveDeposit(ctx, deposit)
	if err != nil {
		return nil, fmt.Errorf("failed to save deposit for agent %d: %w", req.AgentID, err)
	}
	return saved, nil
}

// VerifyDeposit confirms a pending deposit, reducing the agent's balance
// under a row lock. The repository re-checks the balance guard inside the
// transaction.
func (s *collectionService) VerifyDeposit(ctx context.Context, depositID int64, userID string) (*domain.AgentDeposit, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	deposit, err := s.collectionRepo.SettleDeposit(ctx, depositID, userID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to verify deposit %d: %w", depositID, err)
	}

	logger.Info("Deposit verified",
		slog.Int64("deposit_id", deposit.ID),
		slog.Int64("agent_id", deposit.AgentID),
		slog.String("amount", deposit.Amount.String()))
	return deposit, nil
}

// RejectDeposit marks a pending deposit rejected without touching the balance.
func (s *collectionService) RejectDeposit(ctx context.Context, depositID int64, userID string) (*domain.AgentDeposit, error) {
	deposit, err := s.collectionRepo.RejectDeposit(ctx, depositID, userID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to reject deposit %d: %w", depositID, err)
	}
	return deposit, nil
}

// AgingReport groups outstanding collections per agent into buckets by days
// held. Collections on soft-deleted orders and rejected collections are
// excluded upstream by the repository query.
func (s *collectionService) AgingReport(ctx context.Context) ([]domain.AgentAgingReport, error) {
	outstanding, err := s.collectionRepo.ListOutstandingCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list outstanding collections: %w", err)
	}

	now := time.Now().UTC()
	byAgent := make(map[int64]*domain.AgentAgingReport)
	for _, c := range outstanding {
		report, ok := byAgent[c.AgentID]
		if !ok {
			report = &domain.AgentAgingReport{
				AgentID: c.AgentID,
				Buckets: map[string]decimal.Decimal{
					domain.AgingBucket0To7:   decimal.Zero,
					domain.AgingBucket8To14:  decimal.Zero,
					domain.AgingBucket15To30: decimal.Zero,
					domain.AgingBucket30Plus: decimal.Zero,
				},
				TotalOutstanding: decimal.Zero,
				OldestCollection: c.CollectionDate,
			}
			byAgent[c.AgentID] = report
		}

		bucket := agingBucket(now.Sub(c.CollectionDate))
		report.Buckets[bucket] = report.Buckets[bucket].Add(c.Amount)
		report.TotalOutstanding = report.TotalOutstanding.Add(c.Amount)
		if c.CollectionDate.Before(report.OldestCollection) {
			report.OldestCollection = c.CollectionDate
		}
	}

	reports := make([]domain.AgentAgingReport, 0, len(byAgent))
	for _, report := range byAgent {
		reports = append(reports, *report)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].TotalOutstanding.GreaterThan(reports[j].TotalOutstanding)
	})
	return reports, nil
}

func agingBucket(age time.Duration) string {
	days := int(age.Hours() / 24)
	switch {
	case days <= 7:
		return domain.AgingBucket0To7
	case days <= 14:
		return domain.AgingBucket8To14
	case days <= 30:
		return domain.AgingBucket15To30
	default:
		return domain.AgingBucket30Plus
	}
}

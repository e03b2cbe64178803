package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

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
	ErrOrderNotRecognizable = errors.New("order is not in a revenue-recognizable state")
	ErrOrderDeleted         = errors.New("order is soft-deleted")
)

// revenueService posts the journal entries for order lifecycle events:
// delivery recognition, failed deliveries, and returns. It also heals
// orders whose recognition was missed.
type revenueService struct {
	orderRepo         portsrepo.OrderRepositoryFacade
	accountRepo       portsrepo.AccountRepositoryFacade
	journalSvc        portssvc.JournalSvcFacade
	publisher         portssvc.EventPublisher
	failedDeliveryFee decimal.Decimal
}

// NewRevenueService creates a new revenue service.
func NewRevenueService(orderRepo portsrepo.OrderRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, journalSvc portssvc.JournalSvcFacade, publisher portssvc.EventPublisher, failedDeliveryFee decimal.Decimal) portssvc.RevenueSvcFacade {
	return &revenueService{
		orderRepo:         orderRepo,
		accountRepo:       accountRepo,
		journalSvc:        journalSvc,
		publisher:         publisher,
		failedDeliveryFee: failedDeliveryFee,
	}
}

var _ portssvc.RevenueSvcFacade = (*revenueService)(nil)

// RecognizeOrder posts the delivery recognition entry for one order.
// Idempotent: recognizing an already-recognized order returns the existing
// entry. The posting commits before the order is flagged, so a crash in
// between is healed by the next attempt finding the entry by source.
func (s *revenueService) RecognizeOrder(ctx context.Context, orderID int64, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	order, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find order %d: %w", orderID, err)
	}
	if !order.Live() {
		return nil, fmt.Errorf("%w: order %d", ErrOrderDeleted, orderID)
	}
	if order.Status != domain.OrderDelivered {
		return nil, fmt.Errorf("%w: order %d is %s", ErrOrderNotRecognizable, orderID, order.Status)
	}

	if existing, err := s.journalSvc.GetEntryBySource(ctx, domain.SourceOrderDelivered, orderID); err == nil && existing != nil {
		if !order.RevenueRecognized {
			// A previous run crashed after posting; repair the back-reference.
			costIncomplete := s.costIncomplete(order)
			if err := s.orderRepo.MarkRevenueRecognized(ctx, orderID, existing.EntryID, costIncomplete, time.Now().UTC()); err != nil {
				return nil, fmt.Errorf("failed to record recognition for order %d: %w", orderID, err)
			}
		}
		return existing, nil
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if err := s.requireMappings(ctx,
		config.AccountCashInTransit, config.AccountProductRevenue,
		config.AccountDeliveryCommission, config.AccountSalesRepCommission,
		config.AccountCOGS, config.AccountInventory); err != nil {
		return nil, err
	}

	lines, costIncomplete := s.recognitionLines(order)
	req := dto.PostEntryRequest{
		EntryDate:   time.Now().UTC(),
		Description: fmt.Sprintf("Revenue recognition for order #%d", orderID),
		SourceType:  domain.SourceOrderDelivered,
		SourceID:    orderID,
		Lines:       lines,
	}

	entry, err := s.journalSvc.PostEntry(ctx, req, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to post recognition entry for order %d: %w", orderID, err)
	}

	if err := s.orderRepo.MarkRevenueRecognized(ctx, orderID, entry.EntryID, costIncomplete, time.Now().UTC()); err != nil {
		logger.Error("Recognition entry posted but order flag update failed",
			slog.Int64("order_id", orderID), slog.String("entry_id", entry.EntryID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to record recognition for order %d: %w", orderID, err)
	}

	logger.Info("Order revenue recognized",
		slog.Int64("order_id", orderID),
		slog.String("entry_number", entry.EntryNumber),
		slog.String("amount", order.TotalAmount.String()),
		slog.Bool("cost_data_incomplete", costIncomplete))
	return entry, nil
}

// recognitionLines builds the delivery recognition entry: cash in transit
// net of commissions, commission expenses, the full sale as revenue, and
// cost of goods against inventory when product cost data is present.
func (s *revenueService) recognitionLines(order *domain.Order) ([]dto.EntryLineRequest, bool) {
	net := order.TotalAmount.Sub(order.DeliveryCommission).Sub(order.RepCommission)

	var lines []dto.EntryLineRequest
	if net.IsPositive() {
		lines = append(lines, dto.EntryLineRequest{
			AccountCode: config.AccountCashInTransit,
			DebitAmount: net,
			Description: fmt.Sprintf("COD cash with agent, order #%d", order.ID),
		})
	}
	if order.DeliveryCommission.IsPositive() {
		lines = append(lines, dto.EntryLineRequest{
			AccountCode: config.AccountDeliveryCommission,
			DebitAmount: order.DeliveryCommission,
			Description: fmt.Sprintf("Delivery commission, order #%d", order.ID),
		})
	}
	if order.RepCommission.IsPositive() {
		lines = append(lines, dto.EntryLineRequest{
			AccountCode: config.AccountSalesRepCommission,
			DebitAmount: order.RepCommission,
			Description: fmt.Sprintf("Sales rep commission, order #%d", order.ID),
		})
	}
	lines = append(lines, dto.EntryLineRequest{
		AccountCode:  config.AccountProductRevenue,
		CreditAmount: order.TotalAmount,
		Description:  fmt.Sprintf("Product revenue, order #%d", order.ID),
	})

	cogs := s.totalCOGS(order)
	if cogs.GreaterThan(accounting.BalanceEpsilon) {
		lines = append(lines,
			dto.EntryLineRequest{
				AccountCode: config.AccountCOGS,
				DebitAmount: cogs,
				Description: fmt.Sprintf("Cost of goods sold, order #%d", order.ID),
			},
			dto.EntryLineRequest{
				AccountCode:  config.AccountInventory,
				CreditAmount: cogs,
				Description:  fmt.Sprintf("Inventory relief, order #%d", order.ID),
			},
		)
	}

	return lines, s.costIncomplete(order)
}

func (s *revenueService) totalCOGS(order *domain.Order) decimal.Decimal {
	total := decimal.Zero
	for _, item := range order.Items {
		total = total.Add(item.ProductCOGS.Mul(decimal.NewFromInt(item.Quantity)))
	}
	return total
}

// costIncomplete reports whether any item lacks product cost data, which
// means the posted entry omits the COGS leg for that item. The flag makes
// such orders findable for a later cost backfill.
func (s *revenueService) costIncomplete(order *domain.Order) bool {
	for _, item := range order.Items {
		if !item.ProductCOGS.IsPositive() {
			return true
		}
	}
	return false
}

// BackfillMissing scans live delivered orders that never produced a
// recognition entry and posts one for each. The financial leak this closes:
// orders marked delivered while posting was broken silently carry
// unrecognized revenue.
func (s *revenueService) BackfillMissing(ctx context.Context, dryRun bool, limit int, userID string) (*domain.BackfillReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	orders, err := s.orderRepo.ListDeliveredUnrecognized(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unrecognized orders: %w", err)
	}
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}

	report := &domain.BackfillReport{
		RanAt:            now,
		DryRun:           dryRun,
		Scanned:          len(orders),
		RecoveredRevenue: decimal.Zero,
	}

	for i := range orders {
		order := &orders[i]
		result := domain.BackfillOrderResult{
			OrderID: order.ID,
			Amount:  order.TotalAmount,
		}

		if dryRun {
			result.Recognized = true
			report.Recognized++
			report.RecoveredRevenue = report.RecoveredRevenue.Add(order.TotalAmount)
			report.Orders = append(report.Orders, result)
			continue
		}

		entry, err := s.RecognizeOrder(ctx, order.ID, userID)
		if err != nil {
			// One bad order never aborts the scan; record and continue.
			result.SkipReason = err.Error()
			report.Skipped++
			logger.Warn("Backfill skipped order", slog.Int64("order_id", order.ID), slog.String("reason", err.Error()))
		} else {
			result.Recognized = true
			result.EntryID = entry.EntryID
			report.Recognized++
			report.RecoveredRevenue = report.RecoveredRevenue.Add(order.TotalAmount)
		}
		report.Orders = append(report.Orders, result)
	}

	if !dryRun && s.publisher != nil {
		s.publisher.Publish(ctx, domain.Event{
			Type:       domain.EventBackfillCompleted,
			OccurredAt: now,
			Amount:     report.RecoveredRevenue,
			ActorID:    userID,
			Detail:     fmt.Sprintf("recognized %d of %d scanned orders", report.Recognized, report.Scanned),
		})
	}

	logger.Info("Revenue backfill completed",
		slog.Bool("dry_run", dryRun),
		slog.Int("scanned", report.Scanned),
		slog.Int("recognized", report.Recognized),
		slog.String("recovered_revenue", report.RecoveredRevenue.String()))
	return report, nil
}

// BackfillCosts posts the missing COGS leg for orders that were recognized
// without cost data and have since gained it. The posting is revenue-free:
// Debit COGS, Credit Inventory, nothing else. Idempotent per order via the
// cost_backfill source.
func (s *revenueService) BackfillCosts(ctx context.Context, dryRun bool, userID string) (*domain.CostBackfillReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	if err := s.requireMappings(ctx, config.AccountCOGS, config.AccountInventory); err != nil {
		return nil, err
	}

	flagged, err := s.orderRepo.ListCostIncomplete(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cost-incomplete orders: %w", err)
	}

	report := &domain.CostBackfillReport{
		RanAt:     now,
		DryRun:    dryRun,
		Scanned:   len(flagged),
		TotalCOGS: decimal.Zero,
	}

	for i := range flagged {
		result := s.backfillOrderCosts(ctx, flagged[i].ID, dryRun, userID)
		if result.Posted {
			report.Posted++
			report.TotalCOGS = report.TotalCOGS.Add(result.COGS)
		} else {
			report.Skipped++
		}
		report.Orders = append(report.Orders, result)
	}

	logger.Info("Cost backfill completed",
		slog.Bool("dry_run", dryRun),
		slog.Int("scanned", report.Scanned),
		slog.Int("posted", report.Posted),
		slog.String("total_cogs", report.TotalCOGS.String()))
	return report, nil
}

func (s *revenueService) backfillOrderCosts(ctx context.Context, orderID int64, dryRun bool, userID string) domain.CostBackfillResult {
	result := domain.CostBackfillResult{OrderID: orderID, COGS: decimal.Zero}

	order, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		result.SkipReason = err.Error()
		return result
	}
	if s.costIncomplete(order) {
		result.SkipReason = "cost data still incomplete"
		return result
	}
	cogs := s.totalCOGS(order)
	if !cogs.GreaterThan(accounting.BalanceEpsilon) {
		result.SkipReason = "no cost amount to post"
		return result
	}
	result.COGS = cogs

	if existing, err := s.journalSvc.GetEntryBySource(ctx, domain.SourceCostBackfill, orderID); err == nil && existing != nil {
		// A previous run crashed after posting; repair the flag.
		if !dryRun {
			if err := s.orderRepo.ClearCostIncomplete(ctx, orderID, time.Now().UTC()); err != nil {
				result.SkipReason = err.Error()
				return result
			}
		}
		result.Posted = true
		result.EntryID = existing.EntryID
		return result
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		result.SkipReason = err.Error()
		return result
	}

	if dryRun {
		result.Posted = true
		return result
	}

	entry, err := s.journalSvc.PostEntry(ctx, dto.PostEntryRequest{
		EntryDate:   time.Now().UTC(),
		Description: fmt.Sprintf("Cost backfill for order #%d", orderID),
		SourceType:  domain.SourceCostBackfill,
		SourceID:    orderID,
		Lines: []dto.EntryLineRequest{
			{
				AccountCode: config.AccountCOGS,
				DebitAmount: cogs,
				Description: fmt.Sprintf("Cost of goods sold, order #%d", orderID),
			},
			{
				AccountCode:  config.AccountInventory,
				CreditAmount: cogs,
				Description:  fmt.Sprintf("Inventory relief, order #%d", orderID),
			},
		},
	}, userID)
	if err != nil {
		result.SkipReason = err.Error()
		return result
	}
	result.Posted = true
	result.EntryID = entry.EntryID

	if err := s.orderRepo.ClearCostIncomplete(ctx, orderID, time.Now().UTC()); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Cost entry posted but flag update failed",
			slog.Int64("order_id", orderID), slog.String("entry_id", entry.EntryID), slog.String("error", err.Error()))
	}
	return result
}

// RecordFailedDelivery posts the flat failed-delivery fee: an operational
// expense owed to the courier even though no sale happened.
func (s *revenueService) RecordFailedDelivery(ctx context.Context, orderID int64, userID string) (*domain.JournalEntry, error) {
	order, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find order %d: %w", orderID, err)
	}
	if order.Status != domain.OrderFailedDelivery {
		return nil, fmt.Errorf("%w: order %d is %s, expected %s", apperrors.ErrConflict, orderID, order.Status, domain.OrderFailedDelivery)
	}

	if err := s.requireMappings(ctx, config.AccountFailedDeliveryExpense, config.AccountCommissionsPayable); err != nil {
		return nil, err
	}

	req := dto.PostEntryRequest{
		EntryDate:   time.Now().UTC(),
		Description: fmt.Sprintf("Failed delivery fee for order #%d", orderID),
		SourceType:  domain.SourceFailedDelivery,
		SourceID:    orderID,
		Lines: []dto.EntryLineRequest{
			{
				AccountCode: config.AccountFailedDeliveryExpense,
				DebitAmount: s.failedDeliveryFee,
				Description: fmt.Sprintf("Failed delivery fee, order #%d", orderID),
			},
			{
				AccountCode:  config.AccountCommissionsPayable,
				CreditAmount: s.failedDeliveryFee,
				Description:  fmt.Sprintf("Fee payable to courier, order #%d", orderID),
			},
		},
	}

	entry, err := s.journalSvc.PostEntry(ctx, req, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to post failed-delivery entry for order %d: %w", orderID, err)
	}
	return entry, nil
}

// RecordReturn posts the return entry for a previously recognized order:
// revenue is unwound into a refund liability and sellable stock goes back
// to inventory.
func (s *revenueService) RecordReturn(ctx context.Context, orderID int64, userID string) (*domain.JournalEntry, error) {
	order, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find order %d: %w", orderID, err)
	}
	if order.Status != domain.OrderReturned {
		return nil, fmt.Errorf("%w: order %d is %s, expected %s", apperrors.ErrConflict, orderID, order.Status, domain.OrderReturned)
	}
	if !order.RevenueRecognized {
		return nil, fmt.Errorf("%w: order %d revenue was never recognized", apperrors.ErrConflict, orderID)
	}

	if err := s.requireMappings(ctx,
		config.AccountProductRevenue, config.AccountRefundLiability,
		config.AccountInventory, config.AccountCOGS); err != nil {
		return nil, err
	}

	lines := []dto.EntryLineRequest{
		{
			AccountCode: config.AccountProductRevenue,
			DebitAmount: order.TotalAmount,
			Description: fmt.Sprintf("Revenue unwound on return, order #%d", orderID),
		},
		{
			AccountCode:  config.AccountRefundLiability,
			CreditAmount: order.TotalAmount,
			Description:  fmt.Sprintf("Refund owed to customer, order #%d", orderID),
		},
	}
	cogs := s.totalCOGS(order)
	if cogs.GreaterThan(accounting.BalanceEpsilon) {
		lines = append(lines,
			dto.EntryLineRequest{
				AccountCode: config.AccountInventory,
				DebitAmount: cogs,
				Description: fmt.Sprintf("Stock returned to inventory, order #%d", orderID),
			},
			dto.EntryLineRequest{
				AccountCode:  config.AccountCOGS,
				CreditAmount: cogs,
				Description:  fmt.Sprintf("Cost of goods reversed, order #%d", orderID),
			},
		)
	}

	req := dto.PostEntryRequest{
		EntryDate:   time.Now().UTC(),
		Description: fmt.Sprintf("Return of order #%d", orderID),
		SourceType:  domain.SourceOrderReturned,
		SourceID:    orderID,
		Lines:       lines,
	}

	entry, err := s.journalSvc.PostEntry(ctx, req, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to post return entry for order %d: %w", orderID, err)
	}
	return entry, nil
}

// requireMappings verifies the given account codes exist and are active
// before any lines are built, so a misconfigured chart fails fast with a
// clear error instead of a generic posting failure.
func (s *revenueService) requireMappings(ctx context.Context, codes ...string) error {
	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return fmt.Errorf("failed to fetch mapped accounts: %w", err)
	}
	for _, code := range codes {
		acc, found := accounts[code]
		if !found || !acc.IsActive {
			return fmt.Errorf("%w: %s", ErrMissingAccountMapping, code)
		}
	}
	return nil
}

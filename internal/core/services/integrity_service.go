package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	portsrepo "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/repositories"
	portssvc "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/middleware"
)

// integrityService repairs bulk-import damage: duplicate orders created by
// re-imported spreadsheets, and order lines where the row total was
// imported as the unit price.
type integrityService struct {
	orderRepo  portsrepo.OrderRepositoryFacade
	journalSvc portssvc.JournalSvcFacade
}

// NewIntegrityService creates a new integrity service.
func NewIntegrityService(orderRepo portsrepo.OrderRepositoryFacade, journalSvc portssvc.JournalSvcFacade) portssvc.IntegritySvcFacade {
	return &integrityService{
		orderRepo:  orderRepo,
		journalSvc: journalSvc,
	}
}

var _ portssvc.IntegritySvcFacade = (*integrityService)(nil)

// orderFingerprint identifies an order by who bought what, where, on which
// day. Two live bulk-imported orders with the same fingerprint are the same
// real-world sale imported twice.
func orderFingerprint(o *domain.Order) string {
	return strings.Join([]string{
		normalizePhone(o.CustomerPhone),
		o.TotalAmount.StringFixed(2),
		normalizeAddress(o.DeliveryAddress),
		o.CreatedAt.UTC().Format("2006-01-02"),
	}, "|")
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeAddress(address string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(address) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DeduplicateOrders fingerprints live bulk-imported orders, picks one
// survivor per duplicate group, migrates GL state from losers to the
// survivor, and soft-deletes the losers. Orders are never hard-deleted.
func (s *integrityService) DeduplicateOrders(ctx context.Context, dryRun bool, userID string) (*domain.DedupReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	orders, err := s.orderRepo.ListLiveBulkImported(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bulk-imported orders: %w", err)
	}

	groups := make(map[string][]*domain.Order)
	for i := range orders {
		fp := orderFingerprint(&orders[i])
		groups[fp] = append(groups[fp], &orders[i])
	}

	report := &domain.DedupReport{
		RanAt:         now,
		DryRun:        dryRun,
		ScannedOrders: len(orders),
	}

	// Deterministic group order keeps dry-run output stable across runs.
	fingerprints := make([]string, 0, len(groups))
	for fp, members := range groups {
		if len(members) > 1 {
			fingerprints = append(fingerprints, fp)
		}
	}
	sort.Strings(fingerprints)

	var toDelete []int64
	for _, fp := range fingerprints {
		members := groups[fp]
		survivor := pickSurvivor(members)

		group := domain.DedupGroup{
			Fingerprint: fp,
			SurvivorID:  survivor.ID,
		}
		for _, o := range members {
			if o.ID != survivor.ID {
				group.LoserIDs = append(group.LoserIDs, o.ID)
			}
		}

		resolution, detail, deletable, err := s.resolveGroupGL(ctx, dryRun, survivor, members, now)
		if err != nil {
			return nil, err
		}
		group.Resolution = resolution
		group.Detail = detail

		if resolution == domain.DedupManualReview {
			report.ManualReview++
			logger.Warn("Duplicate group needs manual review",
				slog.String("fingerprint", fp), slog.Int64("survivor_id", survivor.ID), slog.String("detail", detail))
		} else if deletable {
			toDelete = append(toDelete, group.LoserIDs...)
		}

		report.DuplicateGroups = append(report.DuplicateGroups, group)
	}

	if !dryRun && len(toDelete) > 0 {
		deleted, err := s.orderRepo.SoftDeleteOrders(ctx, toDelete, now)
		if err != nil {
			return nil, fmt.Errorf("failed to soft-delete duplicate orders: %w", err)
		}
		report.SoftDeleted = deleted
	} else if dryRun {
		report.SoftDeleted = int64(len(toDelete))
	}

	orphans, err := s.orderRepo.ListOrphanCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orphan customers: %w", err)
	}
	report.OrphanCustomers = orphans

	logger.Info("Order deduplication completed",
		slog.Bool("dry_run", dryRun),
		slog.Int("scanned", report.ScannedOrders),
		slog.Int("duplicate_groups", len(report.DuplicateGroups)),
		slog.Int64("soft_deleted", report.SoftDeleted),
		slog.Int("manual_review", report.ManualReview))
	return report, nil
}

// pickSurvivor chooses the member that progressed furthest through the
// delivery pipeline. Terminal side-states rank below every pipeline state;
// ties go to the lowest order id.
func pickSurvivor(members []*domain.Order) *domain.Order {
	survivor := members[0]
	for _, o := range members[1:] {
		or, sr := domain.StatusRank(o.Status), domain.StatusRank(survivor.Status)
		if or > sr || (or == sr && o.ID < survivor.ID) {
			survivor = o
		}
	}
	return survivor
}

// resolveGroupGL decides what happens to journal entries held by the losers
// of one duplicate group and, unless dryRun, applies it. It reports whether
// the losers are safe to soft-delete.
func (s *integrityService) resolveGroupGL(ctx context.Context, dryRun bool, survivor *domain.Order, members []*domain.Order, now time.Time) (domain.DedupResolution, string, bool, error) {
	var postedLosers []*domain.Order
	for _, o := range members {
		if o.ID != survivor.ID && o.GLEntryID != nil {
			postedLosers = append(postedLosers, o)
		}
	}

	if len(postedLosers) == 0 {
		if survivor.GLEntryID != nil {
			return domain.DedupSurvivorPosted, "", true, nil
		}
		return domain.DedupNoPosting, "", true, nil
	}

	if len(postedLosers) > 1 {
		// More than one duplicate carrying its own posting is beyond
		// automatic repair.
		return domain.DedupManualReview, fmt.Sprintf("%d duplicates carry postings", len(postedLosers)), false, nil
	}

	loser := postedLosers[0]

	if survivor.GLEntryID == nil {
		// The posting belongs to the sale; re-point it at the survivor.
		if !dryRun {
			if err := s.orderRepo.SetRecognitionLink(ctx, survivor.ID, loser.GLEntryID, true, now); err != nil {
				return "", "", false, fmt.Errorf("failed to transfer entry to order %d: %w", survivor.ID, err)
			}
			if err := s.orderRepo.SetRecognitionLink(ctx, loser.ID, nil, false, now); err != nil {
				return "", "", false, fmt.Errorf("failed to clear entry link on order %d: %w", loser.ID, err)
			}
		}
		return domain.DedupTransferredGL, fmt.Sprintf("entry %s moved from order %d", *loser.GLEntryID, loser.ID), true, nil
	}

	// Both posted. Equal amounts mean a double posting of the same sale:
	// the loser's entry is reversed. Conflicting amounts need a human.
	if !survivor.TotalAmount.Equal(loser.TotalAmount) {
		return domain.DedupManualReview,
			fmt.Sprintf("orders %d and %d both posted with different amounts (%s vs %s)",
				survivor.ID, loser.ID, survivor.TotalAmount, loser.TotalAmount),
			false, nil
	}

	if !dryRun {
		if _, err := s.journalSvc.ReverseEntry(ctx, *loser.GLEntryID, "dedup-guard"); err != nil {
			return "", "", false, fmt.Errorf("failed to reverse duplicate entry %s: %w", *loser.GLEntryID, err)
		}
		if err := s.orderRepo.SetRecognitionLink(ctx, loser.ID, nil, false, now); err != nil {
			return "", "", false, fmt.Errorf("failed to clear entry link on order %d: %w", loser.ID, err)
		}
	}
	return domain.DedupReversedLoser, fmt.Sprintf("entry %s reversed on order %d", *loser.GLEntryID, loser.ID), true, nil
}

// FixImportedAmounts finds bulk-imported order lines where the spreadsheet
// row total landed in the unit price column and corrects them. The tell: a
// multi-quantity line whose stored unit price exceeds the product's list
// price means the stored value was the line total.
func (s *integrityService) FixImportedAmounts(ctx context.Context, dryRun bool, userID string) (*domain.AmountFixReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	items, err := s.orderRepo.ListImportedItemsForAmountFix(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items for amount repair: %w", err)
	}

	report := &domain.AmountFixReport{
		RanAt:   now,
		DryRun:  dryRun,
		Scanned: len(items),
	}

	for _, item := range items {
		if item.Quantity <= 1 || !item.ProductListPrice.IsPositive() {
			continue
		}
		if item.UnitPrice.LessThanOrEqual(item.ProductListPrice) {
			continue
		}

		correctTotal := item.UnitPrice
		correctUnit := correctTotal.DivRound(decimal.NewFromInt(item.Quantity), 2)
		fix := domain.AmountFix{
			OrderID:          item.OrderID,
			ItemID:           item.ID,
			Quantity:         item.Quantity,
			BeforeUnitPrice:  item.UnitPrice,
			BeforeTotal:      item.TotalPrice,
			CorrectUnitPrice: correctUnit,
			CorrectTotal:     correctTotal,
		}
		report.Fixes = append(report.Fixes, fix)

		if dryRun {
			continue
		}
		if err := s.orderRepo.ApplyAmountFix(ctx, item.OrderID, item.ID, correctUnit, correctTotal, now); err != nil {
			return nil, fmt.Errorf("failed to apply amount fix for item %d: %w", item.ID, err)
		}
		report.Applied++
	}

	logger.Info("Imported amount repair completed",
		slog.Bool("dry_run", dryRun),
		slog.Int("scanned", report.Scanned),
		slog.Int("proposed", len(report.Fixes)),
		slog.Int("applied", report.Applied))
	return report, nil
}

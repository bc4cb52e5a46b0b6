// src/services/holding_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/claimfolio/src/logger"
	"github.com/username/claimfolio/src/metrics"
	"github.com/username/claimfolio/src/models"
	"github.com/username/claimfolio/src/processors"
	"github.com/username/claimfolio/src/repository"
	"github.com/username/claimfolio/src/utils"
)

const (
	// company, symbol, window start day, window end day
	ckCompanyHoldings = "holdings_%d_%s_%s_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type holdingServiceImpl struct {
	lots     *repository.LotRepository
	planner  *processors.LotProcessor
	patterns processors.Classifier
	cache    *cache.Cache
	locks    *keyedMutex
}

func NewHoldingService(lots *repository.LotRepository, patterns processors.Classifier, holdingsCache *cache.Cache) HoldingService {
	if holdingsCache == nil {
		holdingsCache = cache.New(DefaultCacheExpiration, CacheCleanupInterval)
	}
	return &holdingServiceImpl{
		lots:     lots,
		planner:  processors.NewLotProcessor(patterns),
		patterns: patterns,
		cache:    holdingsCache,
		locks:    newKeyedMutex(),
	}
}

// ApplyBuy opens the next lot for tx.Symbol.
func (s *holdingServiceImpl) ApplyBuy(ctx context.Context, tx models.TradeRecord) ([]models.Lot, error) {
	return s.apply(ctx, "buy", tx, s.planner.PlanBuy)
}

// ApplySell consumes open lots oldest first. The whole sell is written in one
// transaction; when it cannot be matched nothing is written.
func (s *holdingServiceImpl) ApplySell(ctx context.Context, tx models.TradeRecord) ([]models.Lot, error) {
	return s.apply(ctx, "sell", tx, s.planner.PlanSell)
}

type planFunc func(history []models.Lot, tx models.TradeRecord) (models.LotMutation, error)

func (s *holdingServiceImpl) apply(ctx context.Context, kind string, tx models.TradeRecord, plan planFunc) ([]models.Lot, error) {
	log := logger.FromContext(ctx)
	unlock := s.locks.Lock(ledgerKey(tx.UserID, tx.Symbol))
	defer unlock()

	history, err := s.lots.ListBySymbol(ctx, tx.UserID, tx.Symbol)
	if err != nil {
		metrics.IncLedgerTransaction(kind, metrics.ResultError)
		return nil, fmt.Errorf("failed to load lots of %s: %w", tx.Symbol, err)
	}

	mutation, err := plan(history, tx)
	if err != nil {
		metrics.IncLedgerTransaction(kind, metrics.ResultError)
		var insufficient *processors.InsufficientLotError
		if errors.As(err, &insufficient) {
			log.Warn("Sell exceeds open lots", "userID", tx.UserID, "symbol", tx.Symbol,
				"tradeDate", utils.DayKey(tx.TradeDate), "outstanding", insufficient.Outstanding)
		}
		return nil, err
	}

	created, err := s.lots.Apply(ctx, mutation)
	if err != nil {
		metrics.IncLedgerTransaction(kind, metrics.ResultError)
		return nil, fmt.Errorf("failed to write lots of %s: %w", tx.Symbol, err)
	}
	s.invalidate(tx.CompanyID, tx.Symbol)
	metrics.IncLedgerTransaction(kind, metrics.ResultSuccess)

	log.Debug("Applied transaction to ledger", "kind", kind, "userID", tx.UserID, "symbol", tx.Symbol,
		"quantity", tx.Quantity, "closed", len(mutation.Close), "created", len(created))
	return created, nil
}

func (s *holdingServiceImpl) OldestOpenLot(ctx context.Context, userID int64, symbol string) (*models.Lot, error) {
	history, err := s.lots.ListBySymbol(ctx, userID, symbol)
	if err != nil {
		return nil, err
	}
	return s.planner.OldestOpen(history), nil
}

func (s *holdingServiceImpl) HasOpenLot(ctx context.Context, userID int64, symbol string) (bool, error) {
	lot, err := s.OldestOpenLot(ctx, userID, symbol)
	if err != nil {
		return false, err
	}
	return lot != nil, nil
}

func (s *holdingServiceImpl) OpenPosition(ctx context.Context, userID int64, symbol string) (*OpenPosition, error) {
	history, err := s.lots.ListBySymbol(ctx, userID, symbol)
	if err != nil {
		return nil, err
	}
	position := &OpenPosition{UserID: userID, Symbol: symbol, Lots: s.planner.OpenLots(history)}
	for _, l := range position.Lots {
		position.Quantity += l.Quantity
	}
	return position, nil
}

// CompanyHoldings returns every lot of the company and symbol held at some point
// of the [from, to] window, closed lots included, ordered by start date then id.
func (s *holdingServiceImpl) CompanyHoldings(ctx context.Context, companyID int64, symbol string, from, to time.Time) ([]models.Lot, error) {
	window, err := processors.NewEligibilityWindow(from, to)
	if err != nil {
		return nil, err
	}
	cacheKey := fmt.Sprintf(ckCompanyHoldings, companyID, symbol, utils.DayKey(window.Start), utils.DayKey(window.End))
	if cached, found := s.cache.Get(cacheKey); found {
		logger.FromContext(ctx).Debug("Cache hit for company holdings", "companyID", companyID, "symbol", symbol)
		return append([]models.Lot(nil), cached.([]models.Lot)...), nil
	}

	lots, err := s.lots.ListForCompany(ctx, companyID, symbol, window.End)
	if err != nil {
		return nil, err
	}
	eligible := processors.EligibleLots(lots, window, s.patterns)
	s.cache.Set(cacheKey, eligible, cache.DefaultExpiration)
	return append([]models.Lot(nil), eligible...), nil
}

// invalidate drops every cached window of a company's symbol.
func (s *holdingServiceImpl) invalidate(companyID int64, symbol string) {
	prefix := fmt.Sprintf("holdings_%d_%s_", companyID, symbol)
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Delete(key)
		}
	}
}

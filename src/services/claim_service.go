// src/services/claim_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/username/claimfolio/src/logger"
	"github.com/username/claimfolio/src/metrics"
	"github.com/username/claimfolio/src/models"
	"github.com/username/claimfolio/src/repository"
	"github.com/username/claimfolio/src/security"
)

type claimServiceImpl struct {
	cases      *repository.CaseRepository
	claims     *repository.ClaimRepository
	users      *repository.UserRepository
	holdings   HoldingService
	dispatcher Dispatcher
}

func NewClaimService(
	cases *repository.CaseRepository,
	claims *repository.ClaimRepository,
	users *repository.UserRepository,
	holdings HoldingService,
	dispatcher Dispatcher,
) ClaimService {
	return &claimServiceImpl{
		cases:      cases,
		claims:     claims,
		users:      users,
		holdings:   holdings,
		dispatcher: dispatcher,
	}
}

// GenerateForCase runs claim generation for a stored case once and marks it claimed.
func (s *claimServiceImpl) GenerateForCase(ctx context.Context, actor models.Actor, caseID int64) (*ClaimRunResult, error) {
	claimCase, err := s.cases.Get(ctx, caseID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrCaseNotFound, caseID)
	}
	if err != nil {
		return nil, err
	}
	if claimCase.CompanyID == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoCompany, caseID)
	}
	if err := security.Authorize(actor, claimCase.CompanyID); err != nil {
		return nil, err
	}
	if claimCase.Claimed {
		return nil, fmt.Errorf("%w: %d", ErrAlreadyClaimed, caseID)
	}

	// The case is held before any record is stored, so a second run cannot
	// start while this one is in flight and a finished run cannot be repeated.
	held, err := s.cases.MarkClaimed(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !held {
		return nil, fmt.Errorf("%w: %d", ErrAlreadyClaimed, caseID)
	}

	result, err := s.ProcessClaim(ctx, actor, claimCase)
	if err != nil {
		if releaseErr := s.cases.ReleaseClaim(ctx, caseID); releaseErr != nil {
			logger.FromContext(ctx).Error("Failed to release claim case after failed run",
				"caseID", caseID, "error", releaseErr)
		}
		return nil, err
	}
	claimCase.Claimed = true
	return result, nil
}

// ProcessClaim builds one claim record per eligible lot, stores each user's
// records in one transaction and then dispatches every user group. When a group
// cannot be stored the groups stored before it are deleted again and nothing is
// dispatched. A failed dispatch is reported on its group and never stops the others.
func (s *claimServiceImpl) ProcessClaim(ctx context.Context, actor models.Actor, claimCase *models.ClaimCase) (*ClaimRunResult, error) {
	if err := security.Authorize(actor, claimCase.CompanyID); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx).With("caseID", claimCase.ID, "symbol", claimCase.TickerSymbol)

	lots, err := s.holdings.CompanyHoldings(ctx, claimCase.CompanyID, claimCase.TickerSymbol,
		claimCase.StartEligibilityDate, claimCase.FinalEligibilityDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible holdings: %w", err)
	}

	result := &ClaimRunResult{CaseID: claimCase.ID, Records: make(map[int64][]models.ClaimRecord)}
	for _, lot := range lots {
		if _, ok := result.Records[lot.UserID]; !ok {
			result.Users = append(result.Users, lot.UserID)
		}
		result.Records[lot.UserID] = append(result.Records[lot.UserID], buildClaimRecord(claimCase, lot))
	}

	var stored []string
	for _, userID := range result.Users {
		group := result.Records[userID]
		batchID := uuid.NewString()
		for i := range group {
			group[i].BatchID = batchID
		}
		saved, err := s.claims.BulkCreate(ctx, group)
		if err != nil {
			if cleanupErr := s.claims.DeleteBatches(ctx, stored); cleanupErr != nil {
				log.Error("Failed to remove claim batches of aborted run", "batches", stored, "error", cleanupErr)
			}
			return nil, fmt.Errorf("failed to store claim records of user %d: %w", userID, err)
		}
		stored = append(stored, batchID)
		result.Records[userID] = saved
	}
	for _, userID := range result.Users {
		metrics.AddClaimRecords(len(result.Records[userID]))
	}
	log.Info("Claim records stored", "users", len(result.Users), "lots", len(lots))

	s.dispatch(ctx, claimCase, result)
	return result, nil
}

func buildClaimRecord(claimCase *models.ClaimCase, lot models.Lot) models.ClaimRecord {
	return models.ClaimRecord{
		Symbol:        lot.Symbol,
		CompanyName:   claimCase.CompanyName,
		QuantityStock: lot.Quantity,
		ValuePerStock: claimCase.ValuePerShare,
		Amount:        claimCase.ValuePerShare.Mul(decimal.NewFromInt(lot.Quantity)),
		ClaimDate:     claimCase.StartEligibilityDate,
		Status:        claimCase.ClaimStatus,
		UserID:        lot.UserID,
		CompanyID:     claimCase.CompanyID,
		LotID:         lot.ID,
		CaseID:        claimCase.ID,
	}
}

func (s *claimServiceImpl) dispatch(ctx context.Context, claimCase *models.ClaimCase, result *ClaimRunResult) {
	log := logger.FromContext(ctx).With("caseID", claimCase.ID)
	method := claimCase.MethodSendClaimFormat
	if !s.dispatcher.Handles(method) {
		log.Debug("Claim method has no dispatch route, nothing sent", "method", method)
		for _, userID := range result.Users {
			result.Dispatch = append(result.Dispatch, DispatchReport{
				UserID: userID, Records: len(result.Records[userID]), Skipped: true,
			})
		}
		return
	}
	if len(result.Users) == 0 {
		return
	}

	users, err := s.users.GetUsers(ctx, result.Users)
	if err != nil {
		log.Error("Failed to load claim owners", "error", err)
		users = map[int64]models.User{}
	}

	for _, userID := range result.Users {
		records := result.Records[userID]
		report := DispatchReport{UserID: userID, Records: len(records)}

		user, ok := users[userID]
		switch {
		case !ok:
			report.Error = fmt.Sprintf("user %d could not be loaded", userID)
		default:
			if err := s.dispatcher.Send(ctx, method, user, claimCase, records); err != nil {
				report.Error = err.Error()
				break
			}
			ids := make([]int64, len(records))
			for i, r := range records {
				ids[i] = r.ID
			}
			if err := s.claims.MarkFormatSent(ctx, ids); err != nil {
				report.Error = err.Error()
				break
			}
			for i := range records {
				records[i].FormatSent = true
			}
			report.Sent = true
		}

		if report.Error != "" {
			log.Error("Claim dispatch failed", "userID", userID, "error", report.Error)
		}
		result.Dispatch = append(result.Dispatch, report)
	}
}

// src/services/import_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/username/claimfolio/src/logger"
	"github.com/username/claimfolio/src/metrics"
	"github.com/username/claimfolio/src/models"
	"github.com/username/claimfolio/src/parsers"
	"github.com/username/claimfolio/src/processors"
	"github.com/username/claimfolio/src/repository"
	"github.com/username/claimfolio/src/security/validation"
)

const DefaultImportBatchSize = 1000

type importServiceImpl struct {
	trades    *repository.TradeRepository
	logs      *repository.ImportLogRepository
	holdings  HoldingService
	grouper   processors.Grouper
	patterns  processors.Classifier
	batchSize int
}

func NewImportService(
	trades *repository.TradeRepository,
	logs *repository.ImportLogRepository,
	holdings HoldingService,
	patterns processors.Classifier,
	batchSize int,
) ImportService {
	if batchSize <= 0 {
		batchSize = DefaultImportBatchSize
	}
	return &importServiceImpl{
		trades:    trades,
		logs:      logs,
		holdings:  holdings,
		grouper:   processors.NewTransactionGrouper(patterns),
		patterns:  patterns,
		batchSize: batchSize,
	}
}

func (s *importServiceImpl) ImportFile(ctx context.Context, owner models.User, source string, file io.ReadSeeker) (*ImportResult, error) {
	if strings.TrimSpace(source) == "" {
		kind, err := validation.DetectFileKind(file)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
		}
		source = kind
	}
	parser, err := parsers.GetParser(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	rows, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	return s.ImportRows(ctx, owner, rows)
}

// ImportRows runs one import job over already parsed rows:
//
//  1. rows are converted; malformed ones fail individually
//  2. symbols whose earliest row is a sell, with nothing open in the ledger, are rejected
//  3. the remaining records are stored in chunks as the job's audit trail
//  4. records are grouped per symbol and day and applied to the ledger in order
//
// Every input row ends up in the import log. Only storage failures abort the job.
func (s *importServiceImpl) ImportRows(ctx context.Context, owner models.User, rows []models.RawRow) (*ImportResult, error) {
	startTime := time.Now()
	jobID := uuid.NewString()
	ctx = logger.WithJobID(ctx, jobID)
	log := logger.FromContext(ctx)
	log.Info("ImportRows START", "userID", owner.ID, "rows", len(rows))

	result := &ImportResult{
		JobID:           jobID,
		ImportWarnings:  make(map[string]string),
		ProcessWarnings: make(map[string]string),
	}
	// Entries are indexed by position in rows; row numbers come from the caller
	// and need not be unique. Records carry positions in SourceRows below.
	entries := make([]models.ImportLog, len(rows))
	fail := func(pos int, message string) {
		e := &entries[pos]
		e.Status = models.ImportStatusError
		if e.ErrorMessage == "" {
			e.ErrorMessage = message
		} else {
			e.ErrorMessage += "; " + message
		}
	}

	var records []models.TradeRecord
	for pos, row := range rows {
		entries[pos] = models.ImportLog{
			ImportJobID: jobID,
			Status:      models.ImportStatusSuccess,
			RowNumber:   row.Number,
			RowData:     row.Fields,
			UserID:      owner.ID,
		}
		rec, err := parsers.ToTradeRecord(row, owner)
		if err != nil {
			fail(pos, err.Error())
			result.Failed++
			continue
		}
		rec.ImportJobID = jobID
		rec.SourceRows = []int{pos}
		records = append(records, rec)
	}

	rejected, err := s.rejectSymbols(ctx, owner.ID, records, result)
	if err != nil {
		return nil, err
	}
	var accepted []models.TradeRecord
	for _, rec := range records {
		if msg, ok := rejected[rec.Symbol]; ok {
			fail(rec.SourceRows[0], msg)
			result.Failed++
			continue
		}
		accepted = append(accepted, rec)
	}

	for start := 0; start < len(accepted); start += s.batchSize {
		end := min(start+s.batchSize, len(accepted))
		if err := s.trades.BulkCreate(ctx, accepted[start:end]); err != nil {
			return nil, fmt.Errorf("failed to store trade records of job %s: %w", jobID, err)
		}
		result.Successful += end - start
	}

	for _, group := range s.grouper.GroupBySymbolThenDate(accepted) {
		for _, tx := range group.Transactions {
			if err := s.applyToLedger(ctx, tx); err != nil {
				addWarning(result.ProcessWarnings, group.Symbol, err.Error())
				for _, pos := range tx.SourceRows {
					fail(pos, err.Error())
				}
			}
		}
	}

	if err := s.logs.Log(ctx, entries...); err != nil {
		return nil, fmt.Errorf("failed to write import log of job %s: %w", jobID, err)
	}

	metrics.AddImportRows(metrics.ResultSuccess, result.Successful)
	metrics.AddImportRows(metrics.ResultError, result.Failed)
	metrics.ObserveImport(time.Since(startTime))
	log.Info("ImportRows END", "userID", owner.ID, "successful", result.Successful, "failed", result.Failed,
		"importWarnings", len(result.ImportWarnings), "processWarnings", len(result.ProcessWarnings),
		"duration", time.Since(startTime))
	return result, nil
}

// rejectSymbols validates the earliest record of every symbol against the ledger.
func (s *importServiceImpl) rejectSymbols(ctx context.Context, userID int64, records []models.TradeRecord, result *ImportResult) (map[string]string, error) {
	earliest := processors.EarliestBySymbol(records)
	symbols := make([]string, 0, len(earliest))
	for symbol := range earliest {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	rejected := make(map[string]string)
	for _, symbol := range symbols {
		hasOpen, err := s.holdings.HasOpenLot(ctx, userID, symbol)
		if err != nil {
			return nil, fmt.Errorf("failed to check open lots of %s: %w", symbol, err)
		}
		if err := s.grouper.ValidateOldestBuy(symbol, earliest[symbol].Activity, hasOpen); err != nil {
			logger.FromContext(ctx).Warn("Rejecting symbol from import", "symbol", symbol, "reason", err)
			rejected[symbol] = err.Error()
			result.ImportWarnings[symbol] = err.Error()
		}
	}
	return rejected, nil
}

func (s *importServiceImpl) applyToLedger(ctx context.Context, tx models.TradeRecord) error {
	var err error
	switch s.patterns.Classify(tx.Activity) {
	case processors.ActivityBuy:
		_, err = s.holdings.ApplyBuy(ctx, tx)
	case processors.ActivitySell:
		_, err = s.holdings.ApplySell(ctx, tx)
	default:
		logger.FromContext(ctx).Debug("Activity does not move lots", "symbol", tx.Symbol, "activity", tx.Activity)
		return nil
	}
	var insufficient *processors.InsufficientLotError
	if err != nil && !errors.As(err, &insufficient) {
		logger.FromContext(ctx).Error("Ledger failed to apply transaction", "symbol", tx.Symbol, "error", err)
	}
	return err
}

func (s *importServiceImpl) JobLog(ctx context.Context, jobID string) ([]models.ImportLog, error) {
	return s.logs.ListByJob(ctx, jobID)
}

func (s *importServiceImpl) ErrorJobs(ctx context.Context, userID int64) ([]models.ImportJobErrors, error) {
	return s.logs.ErrorJobsForUser(ctx, userID)
}

func addWarning(warnings map[string]string, symbol, message string) {
	if prev, ok := warnings[symbol]; ok {
		warnings[symbol] = prev + "; " + message
		return
	}
	warnings[symbol] = message
}

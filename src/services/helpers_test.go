package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/username/claimfolio/src/database"
	"github.com/username/claimfolio/src/models"
	"github.com/username/claimfolio/src/processors"
	"github.com/username/claimfolio/src/repository"
)

type testEnv struct {
	db       *sql.DB
	company  *models.Company
	other    *models.Company
	lots     *repository.LotRepository
	users    *repository.UserRepository
	cases    *repository.CaseRepository
	claims   *repository.ClaimRepository
	logs     *repository.ImportLogRepository
	trades   *repository.TradeRepository
	holdings HoldingService
	imports  ImportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		db:     db,
		lots:   repository.NewLotRepository(db),
		users:  repository.NewUserRepository(db),
		cases:  repository.NewCaseRepository(db),
		claims: repository.NewClaimRepository(db),
		logs:   repository.NewImportLogRepository(db),
		trades: repository.NewTradeRepository(db),
	}
	ctx := context.Background()
	env.company, err = env.users.CreateCompany(ctx, "Acme Advisors")
	require.NoError(t, err)
	env.other, err = env.users.CreateCompany(ctx, "Other Advisors")
	require.NoError(t, err)

	patterns := processors.DefaultPatternTable()
	env.holdings = NewHoldingService(env.lots, patterns, cache.New(time.Minute, time.Minute))
	env.imports = NewImportService(env.trades, env.logs, env.holdings, patterns, 2)
	return env
}

func (e *testEnv) newUser(t *testing.T, email string, companyID int64) models.User {
	t.Helper()
	u := models.User{Email: email, FirstName: "Test", LastName: email, CompanyID: companyID}
	require.NoError(t, e.users.CreateUser(context.Background(), &u))
	return u
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func trade(owner models.User, symbol, activity string, date time.Time, qty int64, cost string) models.TradeRecord {
	c := decimal.RequireFromString(cost)
	return models.TradeRecord{
		UserID:       owner.ID,
		CompanyID:    owner.CompanyID,
		Symbol:       symbol,
		Activity:     activity,
		TradeDate:    date,
		Quantity:     qty,
		CostPerStock: c,
		Amount:       c.Mul(decimal.NewFromInt(qty)),
	}
}

func row(number int, date, activity, symbol, qty, amount string) models.RawRow {
	return models.RawRow{Number: number, Fields: map[string]string{
		models.ColTradeDate: date,
		models.ColActivity:  activity,
		models.ColSymbol:    symbol,
		models.ColQuantity:  qty,
		models.ColAmount:    amount,
	}}
}

func lotNames(lots []models.Lot) []string {
	names := make([]string, len(lots))
	for i, l := range lots {
		names[i] = l.Name
	}
	return names
}

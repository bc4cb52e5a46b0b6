package services

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/claimfolio/src/models"
)

func TestImportRowsRejectsSellWithoutPrecedentBuy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.newUser(t, "ana@example.com", env.company.ID)

	res, err := env.imports.ImportRows(ctx, ana, []models.RawRow{
		row(1, "2024-01-01", "SELL", "xyz", "-10", "100"),
		row(2, "2024-01-02", "BUY", "XYZ", "10", "100"),
		row(3, "2024-01-02", "BUY", "ABC", "5", "50"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Successful)
	assert.Equal(t, 2, res.Failed)
	assert.Contains(t, res.ImportWarnings["XYZ"], "no previous buy")
	assert.Empty(t, res.ProcessWarnings)

	history, err := env.lots.ListBySymbol(ctx, ana.ID, "XYZ")
	require.NoError(t, err)
	assert.Empty(t, history)

	stored, err := env.trades.ListByJob(ctx, res.JobID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "ABC", stored[0].Symbol)

	logs, err := env.imports.JobLog(ctx, res.JobID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, models.ImportStatusError, logs[0].Status)
	assert.Equal(t, models.ImportStatusError, logs[1].Status)
	assert.Equal(t, models.ImportStatusSuccess, logs[2].Status)
}

func TestImportRowsMergesSameDayBuys(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.newUser(t, "ana@example.com", env.company.ID)

	res, err := env.imports.ImportRows(ctx, ana, []models.RawRow{
		row(1, "2024-01-03", "Buy", "ABC", "50", "$500.00"),
		row(2, "2024-01-03", " BUY ", "ABC", "50", "500"),
		row(3, "2024-01-04", "Dividend", "ABC", "0.0", "12"),
		row(4, "2024-01-04", "Journal", "ABC", "3", "0"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Successful)
	assert.Equal(t, 1, res.Failed, "zero quantity is malformed")

	position, err := env.holdings.OpenPosition(ctx, ana.ID, "ABC")
	require.NoError(t, err)
	require.Len(t, position.Lots, 1)
	assert.Equal(t, int64(100), position.Quantity)
	assert.Equal(t, "LOT00001", position.Lots[0].Name)
	assert.True(t, position.Lots[0].CostPerStock.Equal(decimal.NewFromInt(10)))
	assert.True(t, position.Lots[0].Amount.Equal(decimal.NewFromInt(1000)))

	logs, err := env.imports.JobLog(ctx, res.JobID)
	require.NoError(t, err)
	require.Len(t, logs, 4)
	assert.Equal(t, models.ImportStatusError, logs[2].Status)
	assert.Contains(t, logs[2].ErrorMessage, "quantity")
	assert.Equal(t, "Dividend", logs[2].RowData[models.ColActivity])
}

func TestImportRowsLogsEveryRowWithRepeatedNumbers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.newUser(t, "ana@example.com", env.company.ID)

	res, err := env.imports.ImportRows(ctx, ana, []models.RawRow{
		row(0, "2024-01-01", "BUY", "ABC", "10", "100"),
		row(0, "bad", "BUY", "ABC", "10", "100"),
		row(0, "2024-01-02", "SELL", "ABC", "-25", "300"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Successful)
	assert.Equal(t, 1, res.Failed)

	logs, err := env.imports.JobLog(ctx, res.JobID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, models.ImportStatusSuccess, logs[0].Status)
	assert.Empty(t, logs[0].ErrorMessage)
	assert.Equal(t, models.ImportStatusError, logs[1].Status)
	assert.Contains(t, logs[1].ErrorMessage, "trade date")
	assert.Equal(t, "bad", logs[1].RowData[models.ColTradeDate])
	assert.Equal(t, models.ImportStatusError, logs[2].Status)
	assert.Contains(t, logs[2].ErrorMessage, "15 shares unmatched")
}

func TestImportRowsReportsOversell(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.newUser(t, "ana@example.com", env.company.ID)

	res, err := env.imports.ImportRows(ctx, ana, []models.RawRow{
		row(1, "2024-01-01", "BUY", "ABC", "10", "100"),
		row(2, "2024-01-02", "SELL", "ABC", "-30", "360"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Successful)
	assert.Zero(t, res.Failed)
	assert.Contains(t, res.ProcessWarnings["ABC"], "20 shares unmatched")

	history, err := env.lots.ListBySymbol(ctx, ana.ID, "ABC")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Closed)

	jobs, err := env.imports.ErrorJobs(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, res.JobID, jobs[0].ImportJobID)
	assert.Equal(t, 1, jobs[0].ErrorCount)
	assert.Equal(t, 2, jobs[0].Errors[0].RowNumber)
}

func TestImportRowsSellsAgainstEarlierImport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.newUser(t, "ana@example.com", env.company.ID)

	_, err := env.imports.ImportRows(ctx, ana, []models.RawRow{row(1, "2024-01-01", "BUY", "ABC", "100", "1000")})
	require.NoError(t, err)

	res, err := env.imports.ImportRows(ctx, ana, []models.RawRow{row(1, "2024-01-05", "SELL", "ABC", "-40", "480")})
	require.NoError(t, err)
	assert.Empty(t, res.ImportWarnings)
	assert.Empty(t, res.ProcessWarnings)

	position, err := env.holdings.OpenPosition(ctx, ana.ID, "ABC")
	require.NoError(t, err)
	assert.Equal(t, int64(60), position.Quantity)
}

func TestImportFileDetectsCSV(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.newUser(t, "ana@example.com", env.company.ID)

	csv := "Trade Date,Activity,Symbol,Quantity,Amount\n" +
		"01/02/2024,BUY,abc,10,100\n" +
		"01/03/2024,BUY,def,5,\"1,000.00\"\n"
	res, err := env.imports.ImportFile(ctx, ana, "", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Successful)

	for _, symbol := range []string{"ABC", "DEF"} {
		has, err := env.holdings.HasOpenLot(ctx, ana.ID, symbol)
		require.NoError(t, err)
		assert.True(t, has, symbol)
	}

	_, err = env.imports.ImportFile(ctx, ana, "pdf", strings.NewReader(csv))
	assert.ErrorIs(t, err, ErrParsingFailed)
}

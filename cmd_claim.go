package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/username/claimfolio/src/utils"
)

var (
	claimCaseID int64
	claimToken  string

	holdingsCompanyID int64
	holdingsSymbol    string
	holdingsFrom      string
	holdingsTo        string
)

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Generate and dispatch the claim records of a case",
	Long: `Build one claim record per lot held by the case's company during the
eligibility window, store them per user and send each user's claim form
over the case's dispatch method. A case can only be claimed once.`,
	RunE: runClaim,
}

var holdingsCmd = &cobra.Command{
	Use:   "holdings",
	Short: "List the lots of a company held during a date range",
	RunE:  runHoldings,
}

func init() {
	rootCmd.AddCommand(claimCmd, holdingsCmd)

	claimCmd.Flags().Int64Var(&claimCaseID, "case", 0, "Claim case id")
	claimCmd.Flags().StringVar(&claimToken, "token", "", "Actor token issued by 'claimfolio token'")
	claimCmd.MarkFlagRequired("case")
	claimCmd.MarkFlagRequired("token")

	holdingsCmd.Flags().Int64Var(&holdingsCompanyID, "company", 0, "Company id")
	holdingsCmd.Flags().StringVar(&holdingsSymbol, "symbol", "", "Ticker symbol")
	holdingsCmd.Flags().StringVar(&holdingsFrom, "from", "", "First day of the range")
	holdingsCmd.Flags().StringVar(&holdingsTo, "to", "", "Last day of the range")
	for _, name := range []string{"company", "symbol", "from", "to"} {
		holdingsCmd.MarkFlagRequired(name)
	}
}

func runClaim(cmd *cobra.Command, args []string) error {
	actor, err := deps.auth.ParseActorToken(claimToken)
	if err != nil {
		return err
	}
	result, err := deps.claims.GenerateForCase(cmd.Context(), actor, claimCaseID)
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}

func runHoldings(cmd *cobra.Command, args []string) error {
	from, err := utils.ParseTradeDate(holdingsFrom)
	if err != nil {
		return fmt.Errorf("invalid --from: %w", err)
	}
	to, err := utils.ParseTradeDate(holdingsTo)
	if err != nil {
		return fmt.Errorf("invalid --to: %w", err)
	}
	lots, err := deps.holdings.CompanyHoldings(cmd.Context(), holdingsCompanyID, strings.ToUpper(holdingsSymbol), from, to)
	if err != nil {
		return err
	}
	return printJSON(cmd, lots)
}

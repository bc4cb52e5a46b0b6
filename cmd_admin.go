package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/username/claimfolio/src/models"
	"github.com/username/claimfolio/src/utils"
)

var (
	companyName string

	newUser     models.User
	newUserRole string

	newCase       models.ClaimCase
	caseValue     string
	caseStartDate string
	caseFinalDate string

	tokenUserID int64
)

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Register a company",
	RunE:  runCompany,
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Register a user, optionally inside a company",
	RunE:  runUser,
}

var caseCmd = &cobra.Command{
	Use:   "case",
	Short: "Register a class-action claim case",
	Long: `Register a claim case for a company. The eligibility window is inclusive
on both days.

Example:
  claimfolio case --company 1 --symbol ABC --name "ABC Corp" --value 0.35 \
    --start 2024-01-01 --end 2024-06-30 --method EMAIL --email claims@firm.example`,
	RunE: runCase,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an actor token for a stored user",
	RunE:  runToken,
}

func init() {
	rootCmd.AddCommand(companyCmd, userCmd, caseCmd, tokenCmd)

	companyCmd.Flags().StringVar(&companyName, "name", "", "Company name")
	companyCmd.MarkFlagRequired("name")

	userCmd.Flags().StringVar(&newUser.Email, "email", "", "Email address")
	userCmd.Flags().StringVar(&newUser.FirstName, "first-name", "", "First name")
	userCmd.Flags().StringVar(&newUser.LastName, "last-name", "", "Last name")
	userCmd.Flags().StringVar(&newUserRole, "role", string(models.RoleFinalUser), "Role")
	userCmd.Flags().Int64Var(&newUser.CompanyID, "company", 0, "Company id (0 = none)")
	userCmd.Flags().StringVar(&newUser.Address, "address", "", "Postal address")
	userCmd.Flags().StringVar(&newUser.Country, "country", "", "Country")
	userCmd.Flags().StringVar(&newUser.PhoneNumber, "phone", "", "Phone number")
	userCmd.MarkFlagRequired("email")

	caseCmd.Flags().Int64Var(&newCase.CompanyID, "company", 0, "Company id")
	caseCmd.Flags().StringVar(&newCase.TickerSymbol, "symbol", "", "Ticker symbol")
	caseCmd.Flags().StringVar(&newCase.CompanyName, "name", "", "Name of the sued company")
	caseCmd.Flags().StringVar(&newCase.Exchange, "exchange", "", "Exchange")
	caseCmd.Flags().StringVar(&newCase.LawsuitType, "lawsuit-type", "", "Lawsuit type")
	caseCmd.Flags().StringVar(&newCase.LawFirm, "law-firm", "", "Law firm handling the case")
	caseCmd.Flags().StringVar(&newCase.CaseDocketNumber, "docket", "", "Case docket number")
	caseCmd.Flags().StringVar(&caseValue, "value", "0", "Settlement value per share")
	caseCmd.Flags().StringVar(&caseStartDate, "start", "", "First day of eligibility")
	caseCmd.Flags().StringVar(&caseFinalDate, "end", "", "Last day of eligibility")
	caseCmd.Flags().StringVar(&newCase.ClaimStatus, "status", "OPEN", "Claim status")
	caseCmd.Flags().StringVar(&newCase.MethodSendClaimFormat, "method", "EMAIL", "Dispatch method")
	caseCmd.Flags().StringVar(&newCase.NotificationEmail, "email", "", "Address claim forms are sent to")
	for _, name := range []string{"company", "symbol", "start", "end"} {
		caseCmd.MarkFlagRequired(name)
	}

	tokenCmd.Flags().Int64Var(&tokenUserID, "user", 0, "User id")
	tokenCmd.MarkFlagRequired("user")
}

func runCompany(cmd *cobra.Command, args []string) error {
	company, err := deps.users.CreateCompany(cmd.Context(), strings.TrimSpace(companyName))
	if err != nil {
		return err
	}
	return printJSON(cmd, company)
}

func runUser(cmd *cobra.Command, args []string) error {
	newUser.Role = models.ParseRole(newUserRole)
	if err := deps.users.CreateUser(cmd.Context(), &newUser); err != nil {
		return err
	}
	return printJSON(cmd, newUser)
}

func runCase(cmd *cobra.Command, args []string) error {
	var err error
	if newCase.ValuePerShare, err = utils.ParseDecimal(caseValue); err != nil {
		return fmt.Errorf("invalid --value: %w", err)
	}
	if newCase.ValuePerShare.LessThan(decimal.Zero) {
		return fmt.Errorf("invalid --value: %s is negative", caseValue)
	}
	if newCase.StartEligibilityDate, err = utils.ParseTradeDate(caseStartDate); err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	if newCase.FinalEligibilityDate, err = utils.ParseTradeDate(caseFinalDate); err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}
	if newCase.FinalEligibilityDate.Before(newCase.StartEligibilityDate) {
		return fmt.Errorf("eligibility ends before it starts")
	}
	newCase.TickerSymbol = strings.ToUpper(strings.TrimSpace(newCase.TickerSymbol))
	if err := deps.cases.Create(cmd.Context(), &newCase); err != nil {
		return err
	}
	return printJSON(cmd, newCase)
}

func runToken(cmd *cobra.Command, args []string) error {
	user, err := deps.users.GetUser(cmd.Context(), tokenUserID)
	if err != nil {
		return err
	}
	token, err := deps.auth.GenerateActorToken(models.ActorFor(*user))
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]string{"token": token})
}

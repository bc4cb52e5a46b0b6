package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/username/claimfolio/src/logger"
	"github.com/username/claimfolio/src/metrics"
	"github.com/username/claimfolio/src/models"
	"golang.org/x/time/rate"
)

const MethodEmail = "EMAIL"

// DispatchRouter sends claim packages over the method a case asks for. Only
// EMAIL is wired; any other method is accepted and ignored.
type DispatchRouter struct {
	email    EmailService
	reporter *ClaimReporter
	limiter  *rate.Limiter
}

func NewDispatchRouter(email EmailService, reporter *ClaimReporter, ratePerSecond float64) *DispatchRouter {
	if ratePerSecond <= 0 {
		ratePerSecond = 5
	}
	return &DispatchRouter{
		email:    email,
		reporter: reporter,
		limiter:  rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

func normalizeMethod(method string) string {
	return strings.ToUpper(strings.TrimSpace(method))
}

func (d *DispatchRouter) Handles(method string) bool {
	return normalizeMethod(method) == MethodEmail
}

func (d *DispatchRouter) Send(ctx context.Context, method string, user models.User, claimCase *models.ClaimCase, records []models.ClaimRecord) error {
	switch m := normalizeMethod(method); m {
	case MethodEmail:
		err := d.sendEmail(ctx, user, claimCase, records)
		if err != nil {
			metrics.IncDispatch(m, metrics.ResultError)
			return err
		}
		metrics.IncDispatch(m, metrics.ResultSuccess)
		return nil
	default:
		logger.FromContext(ctx).Debug("No dispatch route for claim method", "method", method, "caseID", claimCase.ID)
		metrics.IncDispatch(m, metrics.ResultSkipped)
		return nil
	}
}

func (d *DispatchRouter) sendEmail(ctx context.Context, user models.User, claimCase *models.ClaimCase, records []models.ClaimRecord) error {
	to := claimCase.NotificationEmail
	if to == "" {
		return fmt.Errorf("claim case %d has no notification email", claimCase.ID)
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("dispatch throttled: %w", err)
	}

	form, err := d.reporter.RenderPDF(user, claimCase, records)
	if err != nil {
		return err
	}
	name := strings.ReplaceAll(user.FullName(), " ", "_")
	pkg := ClaimPackage{
		To:             to,
		Subject:        fmt.Sprintf("Claim Action for %s", user.FullName()),
		Body:           "Claimfolio - Claim Action Report",
		AttachmentName: fmt.Sprintf("ClaimAction_%s_%s.pdf", name, claimCase.TickerSymbol),
		Attachment:     form,
	}
	return d.email.SendClaimPackage(ctx, pkg)
}

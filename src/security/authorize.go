package security

import (
	"fmt"

	"github.com/username/claimfolio/src/models"
)

// AuthorizationError is returned when an actor works on a company it does not belong to.
type AuthorizationError struct {
	UserID    int64
	CompanyID int64
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user %d is not allowed to act on company %d", e.UserID, e.CompanyID)
}

// Authorize lets super-admins through and anyone else only into their own company.
func Authorize(actor models.Actor, companyID int64) error {
	if actor.Role == models.RoleSuperAdmin {
		return nil
	}
	if actor.CompanyID != 0 && actor.CompanyID == companyID {
		return nil
	}
	return &AuthorizationError{UserID: actor.UserID, CompanyID: companyID}
}

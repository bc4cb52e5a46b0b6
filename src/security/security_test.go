package security

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/claimfolio/src/models"
)

func TestActorTokenRoundTrip(t *testing.T) {
	auth := NewAuthService("test-secret", time.Minute)
	actor := models.Actor{UserID: 42, Role: models.RoleCompanyManager, CompanyID: 7}

	token, err := auth.GenerateActorToken(actor)
	require.NoError(t, err)

	got, err := auth.ParseActorToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestParseActorTokenRejects(t *testing.T) {
	auth := NewAuthService("test-secret", time.Minute)
	token, err := auth.GenerateActorToken(models.Actor{UserID: 1, Role: models.RoleClient})
	require.NoError(t, err)

	other := NewAuthService("other-secret", time.Minute)
	_, err = other.ParseActorToken(token)
	assert.Error(t, err)

	expired := NewAuthService("test-secret", -time.Minute)
	old, err := expired.GenerateActorToken(models.Actor{UserID: 1})
	require.NoError(t, err)
	_, err = auth.ParseActorToken(old)
	assert.Error(t, err)

	_, err = auth.ParseActorToken("not-a-token")
	assert.Error(t, err)

	_, err = NewAuthService("", time.Minute).GenerateActorToken(models.Actor{UserID: 1})
	assert.Error(t, err)
}

func TestAuthorize(t *testing.T) {
	cases := []struct {
		name    string
		actor   models.Actor
		company int64
		allowed bool
	}{
		{"super admin anywhere", models.Actor{UserID: 1, Role: models.RoleSuperAdmin}, 9, true},
		{"same company", models.Actor{UserID: 2, Role: models.RoleCompanyAdmin, CompanyID: 9}, 9, true},
		{"client of same company", models.Actor{UserID: 3, Role: models.RoleClient, CompanyID: 9}, 9, true},
		{"other company", models.Actor{UserID: 4, Role: models.RoleCompanyAdmin, CompanyID: 8}, 9, false},
		{"no company", models.Actor{UserID: 5, Role: models.RoleFinalUser}, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.actor, tc.company)
			if tc.allowed {
				assert.NoError(t, err)
				return
			}
			var authErr *AuthorizationError
			require.True(t, errors.As(err, &authErr))
			assert.Equal(t, tc.actor.UserID, authErr.UserID)
		})
	}
}

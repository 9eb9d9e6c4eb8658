package service

import (
	"context"

	"github.com/AlibekovAA/task-manager/backend/internal/auth/gate"
	userdomain "github.com/AlibekovAA/task-manager/backend/internal/user/domain"
)

// OwnerFromContext returns the user every task operation in this request is
// scoped to. Requests that did not pass the auth gate have no owner.
func OwnerFromContext(ctx context.Context) (userdomain.ID, error) {
	identity, ok := gate.IdentityFromContext(ctx)
	if !ok {
		return "", gate.ErrUnauthenticated
	}
	return identity.UserID, nil
}

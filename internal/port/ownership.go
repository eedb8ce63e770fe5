package port

import (
	"context"

	"github.com/google/uuid"
)

// OwnershipVerifier is the synchronous ownership-verification
// collaborator consulted at connection-application time. A negative
// answer or an unreachable verifier both reject the application.
type OwnershipVerifier interface {
	VerifyOwner(ctx context.Context, ownerID uuid.UUID, premisesNumber string) (bool, error)
}

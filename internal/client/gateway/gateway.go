// Package gateway is the boundary to the generative-text service that writes
// the assistant's replies: text in, text out, or an error.
package gateway

import (
	"context"

	"github.com/dmitrijs2005/aither/internal/client/models"
)

// Gateway produces the assistant reply to text, given the prior history of
// the session (which does not yet contain text).
type Gateway interface {
	Reply(ctx context.Context, caller Caller, history []models.Message, text string) (string, error)
}

// Caller is the identity the prompt is written for.
type Caller struct {
	Email string
	Name  string
	Owner bool
}

// CallerFrom derives the caller identity from a profile. Ownership comes from
// the stored role, never from comparing addresses.
func CallerFrom(u models.UserProfile) Caller {
	return Caller{Email: u.Email, Name: u.DisplayName, Owner: u.IsOwner()}
}

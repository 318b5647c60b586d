// Package assistant exposes the catalog, cart, and order operations the
// conversational driver calls, plus the spoken-response formatting it reads
// back. The driver (speech pipeline) is external; everything here is a
// library-level contract consumed in-process.
package assistant

import (
	"github.com/google/uuid"

	"github.com/xenking/voicecart/internal/domain/cart"
	"github.com/xenking/voicecart/internal/domain/product"
)

// Session is the state owned by one conversation. Every operation takes the
// session explicitly; there is no ambient per-conversation state anywhere
// else. Sessions are single-owner and need no locking.
type Session struct {
	ID   string
	Cart *cart.Cart

	// Conversation context: what the customer was last shown, so a driver
	// can resolve references like "the second one".
	LastShown       []product.Product
	CurrentCategory product.Category
}

// NewSession creates an empty session with a fresh identifier.
func NewSession() *Session {
	return &Session{
		ID:   uuid.New().String(),
		Cart: cart.New(),
	}
}

// Package payment defines the gateway port for opening payment sessions.
package payment

import (
	"context"

	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/order"
)

// Session is an opened payment session at the external provider. The buyer
// completes payment on the provider's hosted page at RedirectURL.
type Session struct {
	Token       string
	RedirectURL string
}

// Gateway opens payment sessions for committed orders. The order code is the
// external transaction identifier: retrying a failed session for the same
// order reuses the same code, so the provider resumes rather than duplicates
// the transaction.
type Gateway interface {
	Open(ctx context.Context, o *order.Order) (*Session, error)
}

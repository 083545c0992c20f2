package notify

import (
	"context"
	"errors"
	"fmt"
)

// Transport is the outbound mail collaborator. Implementations must honor
// the context deadline so a stuck provider cannot wedge a retry batch.
type Transport interface {
	// Send delivers one message and returns the provider message id when
	// available. A returned error wrapping ErrPermanent marks a bounce.
	Send(ctx context.Context, to string, subject string, htmlBody string) (string, error)
}

// ErrPermanent marks a delivery failure the transport classified as a
// permanent bounce (e.g. invalid recipient), as opposed to a transient
// network or provider error.
var ErrPermanent = errors.New("permanent delivery failure")

// Permanent wraps err so IsPermanent reports true for it.
func Permanent(err error) error {
	return fmt.Errorf("%w: %v", ErrPermanent, err)
}

// IsPermanent reports whether err was classified as a permanent bounce.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}

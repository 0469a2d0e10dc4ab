package headless

import (
	"context"
	"errors"
)

// ErrDisabled is returned by the NoopRenderer.
var ErrDisabled = errors.New("headless rendering disabled")

// NoopRenderer satisfies the renderer seam when headless is turned off.
type NoopRenderer struct{}

// Render always fails with ErrDisabled.
func (NoopRenderer) Render(context.Context, string) ([]byte, error) {
	return nil, ErrDisabled
}

// Close is a no-op.
func (NoopRenderer) Close() {}

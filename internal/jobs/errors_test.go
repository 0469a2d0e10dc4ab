package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNetworkErrorClassification(t *testing.T) {
	t.Parallel()

	transient := &NetworkError{URL: "https://board.example.com", StatusCode: 503, Transient: true}
	require.True(t, IsTransientNetwork(transient))
	require.False(t, IsPermanentNetwork(transient))
	require.Contains(t, transient.Error(), "transient")
	require.Contains(t, transient.Error(), "503")

	permanent := &NetworkError{URL: "https://board.example.com", StatusCode: 404}
	require.True(t, IsPermanentNetwork(permanent))
	require.False(t, IsTransientNetwork(permanent))
	require.Contains(t, permanent.Error(), "permanent")
}

func TestNetworkErrorWrapsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := fmt.Errorf("fetch page: %w", &NetworkError{URL: "https://x", Transient: true, Err: cause})
	require.True(t, IsTransientNetwork(err))
	require.ErrorIs(t, err, cause)
}

func TestIsCancellation(t *testing.T) {
	t.Parallel()

	require.True(t, IsCancellation(context.Canceled))
	require.True(t, IsCancellation(context.DeadlineExceeded))
	require.True(t, IsCancellation(&CancellationError{Op: "extract", Err: context.Canceled}))
	require.True(t, IsCancellation(fmt.Errorf("run: %w", &CancellationError{Op: "fetch", Err: context.Canceled})))
	require.False(t, IsCancellation(errors.New("boom")))
	require.False(t, IsCancellation(&NetworkError{Transient: true}))
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()

	err := &ValidationError{Field: "title"}
	require.Contains(t, err.Error(), `"title"`)
}

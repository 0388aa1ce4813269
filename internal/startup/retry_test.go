package startup

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamwise/streamwise/internal/testutil"
)

func TestIsNetworkError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"dns failure", &net.DNSError{Err: "lookup failed", Name: "api.example.com"}, true},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped refused", fmt.Errorf("probe: %w", errors.New("dial tcp 1.2.3.4:443: connection refused")), true},
		{"auth rejection", errors.New("401 unauthorized"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNetworkError(tt.err))
		})
	}
}

func fastConfig() RetryConfig {
	return RetryConfig{
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		MaxAttempts:  3,
	}
}

func TestWithRetry_NonNetworkErrorFailsImmediately(t *testing.T) {
	calls := 0
	wantErr := errors.New("invalid api key")

	err := WithRetry(context.Background(), "probe", fastConfig(), func(context.Context) error {
		calls++
		return wantErr
	}, testutil.NopLogger())

	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_NetworkErrorRetriesUntilSuccess(t *testing.T) {
	calls := 0

	err := WithRetry(context.Background(), "probe", fastConfig(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, testutil.NopLogger())

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	netErr := errors.New("no route to host")

	err := WithRetry(context.Background(), "probe", fastConfig(), func(context.Context) error {
		calls++
		return netErr
	}, testutil.NopLogger())

	require.ErrorIs(t, err, netErr)
	assert.Equal(t, 3, calls)
}

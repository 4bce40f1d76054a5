package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil error", nil, false},
		{"rate limited status", errors.New("API returned unexpected status code: 429"), true},
		{"rate limit text", errors.New("Rate limit reached for requests"), true},
		{"server error", errors.New("API returned unexpected status code: 503: overloaded"), true},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), true},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"unauthorized", errors.New("API returned unexpected status code: 401: invalid api key"), false},
		{"missing key", ErrMissingAPIKey, false},
		{"canceled", context.Canceled, false},
		{"decode failure", errors.New("invalid character 'n' looking for beginning of value"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.retryable, isRetryable(tt.err))
		})
	}
}

func TestError_DescriptionIsUnderlyingMessage(t *testing.T) {
	err := NewProviderError(errors.New("rate limited"))
	require.Equal(t, "rate limited", err.Error())
	require.Equal(t, KindProvider, err.Kind)
	require.True(t, err.Retryable)

	var target *Error
	wrapped := fmt.Errorf("relay: %w", err)
	require.ErrorAs(t, wrapped, &target)
	require.Equal(t, KindProvider, KindOf(wrapped))
	require.True(t, IsRetryable(wrapped))
}

func TestError_Transport(t *testing.T) {
	cause := errors.New("broken pipe")
	err := NewTransportError("write", cause)
	require.Equal(t, KindTransport, KindOf(err))
	require.ErrorIs(t, err, cause)
	require.False(t, IsRetryable(err))
	require.Equal(t, "transport", KindTransport.String())
}

func TestError_NilSafe(t *testing.T) {
	var e *Error
	require.Empty(t, e.Error())
	require.NoError(t, e.Unwrap())
	require.Equal(t, "provider failure", (&Error{Kind: KindProvider}).Error())
}

func TestKindOf_ForeignError(t *testing.T) {
	require.Equal(t, KindProvider, KindOf(errors.New("boom")))
}

package flow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateServer(t *testing.T, calls *atomic.Int32, status int, body any) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func TestTokenGate_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("ValidTokenStoresUser", func(t *testing.T) {
		var calls atomic.Int32
		server := newGateServer(t, &calls, http.StatusOK, TokenCheck{
			Valid: true,
			User:  &User{Username: "jdoe", FirstName: "Jane"},
		})

		client := NewClient(server.URL, WithHTTPClient(server.Client()))
		gate := NewTokenGate(client, "account-1", "secret-1")

		require.Equal(t, GatePending, gate.Result().State)

		result := gate.Validate(ctx)

		assert.Equal(t, GateValid, result.State)
		assert.Equal(t, "jdoe", result.User.Username)
		assert.Equal(t, "Jane", result.User.FirstName)
		assert.Empty(t, result.Message)
	})

	t.Run("ValidatesExactlyOnce", func(t *testing.T) {
		var calls atomic.Int32
		server := newGateServer(t, &calls, http.StatusOK, TokenCheck{
			Valid: true,
			User:  &User{Username: "jdoe"},
		})

		client := NewClient(server.URL, WithHTTPClient(server.Client()))
		gate := NewTokenGate(client, "account-1", "secret-1")

		first := gate.Validate(ctx)
		second := gate.Validate(ctx)
		third := gate.Validate(ctx)

		assert.Equal(t, first, second)
		assert.Equal(t, first, third)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("ServerRejectionUsesServerMessage", func(t *testing.T) {
		var calls atomic.Int32
		server := newGateServer(t, &calls, http.StatusOK, TokenCheck{
			Valid:   false,
			Message: "This activation link is invalid or has expired.",
		})

		client := NewClient(server.URL, WithHTTPClient(server.Client()))
		gate := NewTokenGate(client, "account-1", "secret-1")

		result := gate.Validate(ctx)

		assert.Equal(t, GateInvalid, result.State)
		assert.Equal(t, "This activation link is invalid or has expired.", result.Message)
	})

	t.Run("RejectionWithoutMessageUsesFallback", func(t *testing.T) {
		var calls atomic.Int32
		server := newGateServer(t, &calls, http.StatusOK, TokenCheck{Valid: false})

		client := NewClient(server.URL, WithHTTPClient(server.Client()))
		gate := NewTokenGate(client, "account-1", "secret-1")

		result := gate.Validate(ctx)

		assert.Equal(t, GateInvalid, result.State)
		assert.Equal(t, FallbackInvalidLinkMessage, result.Message)
	})

	t.Run("ServerErrorWithMessageIsPreferred", func(t *testing.T) {
		var calls atomic.Int32
		server := newGateServer(t, &calls, http.StatusInternalServerError,
			map[string]string{"message": "temporarily unavailable"})

		client := NewClient(server.URL, WithHTTPClient(server.Client()))
		gate := NewTokenGate(client, "account-1", "secret-1")

		result := gate.Validate(ctx)

		assert.Equal(t, GateInvalid, result.State)
		assert.Equal(t, "temporarily unavailable", result.Message)
	})

	t.Run("TransportFailureUsesFallback", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		httpClient := server.Client()
		server.Close()

		client := NewClient(server.URL, WithHTTPClient(httpClient))
		gate := NewTokenGate(client, "account-1", "secret-1")

		result := gate.Validate(ctx)

		assert.Equal(t, GateInvalid, result.State)
		assert.Equal(t, FallbackInvalidLinkMessage, result.Message)
	})

	t.Run("HungRequestTimesOutToInvalid", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(func() {
			close(release)
			server.Close()
		})

		client := NewClient(server.URL,
			WithHTTPClient(server.Client()),
			WithRequestTimeout(50*time.Millisecond))
		gate := NewTokenGate(client, "account-1", "secret-1")

		result := gate.Validate(ctx)

		assert.Equal(t, GateInvalid, result.State)
		assert.Equal(t, FallbackInvalidLinkMessage, result.Message)
	})
}

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/allisson/activation/internal/config"
	"github.com/allisson/activation/internal/flow"
)

type activateServer struct {
	srv         *httptest.Server
	createCalls atomic.Int32
	loginCalls  atomic.Int32

	validate func(w http.ResponseWriter, r *http.Request)
	create   func(w http.ResponseWriter, r *http.Request)
	login    func(w http.ResponseWriter, r *http.Request)
}

func newActivateServer(t *testing.T) *activateServer {
	t.Helper()

	s := &activateServer{}
	s.validate = func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"valid": true,
			"user":  map[string]string{"username": "jdoe", "first_name": "Jane"},
		})
	}
	s.create = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
	s.login = func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]string{"username": "jdoe", "first_name": "Jane"},
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/validate-password-token/", func(w http.ResponseWriter, r *http.Request) {
		s.validate(w, r)
	})
	mux.HandleFunc("/api/auth/create-password/", func(w http.ResponseWriter, r *http.Request) {
		s.createCalls.Add(1)
		s.create(w, r)
	})
	mux.HandleFunc("/login/", func(w http.ResponseWriter, r *http.Request) {
		s.loginCalls.Add(1)
		s.login(w, r)
	})

	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)

	return s
}

func TestRunActivate(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	accountID := uuid.Must(uuid.NewV7()).String()
	cfg := &config.Config{ClientRequestTimeout: 5 * time.Second}

	t.Run("happy-path", func(t *testing.T) {
		server := newActivateServer(t)
		client := NewFlowClient(cfg, server.srv.URL)

		var out bytes.Buffer
		err := RunActivate(ctx, client, logger, &out, accountID, "secret", "Passw0rd")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Activation link verified for jdoe.")
		require.Contains(t, out.String(), flow.MsgPasswordCreated)
		require.Contains(t, out.String(), "Signed in as jdoe.")
		require.Equal(t, int32(1), server.createCalls.Load())
		require.Equal(t, int32(1), server.loginCalls.Load())
	})

	t.Run("login-failure-degrades-to-manual-login", func(t *testing.T) {
		server := newActivateServer(t)
		server.login = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials."})
		}
		client := NewFlowClient(cfg, server.srv.URL)

		var out bytes.Buffer
		err := RunActivate(ctx, client, logger, &out, accountID, "secret", "Passw0rd")

		require.NoError(t, err)
		require.Contains(t, out.String(), flow.MsgManualLogin)
		require.Contains(t, out.String(), "Sign in at /login/ as jdoe.")
	})

	t.Run("rejected-link", func(t *testing.T) {
		server := newActivateServer(t)
		server.validate = func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"valid":   false,
				"message": "This activation link is invalid or has expired.",
			})
		}
		client := NewFlowClient(cfg, server.srv.URL)

		var out bytes.Buffer
		err := RunActivate(ctx, client, logger, &out, accountID, "secret", "Passw0rd")

		require.Error(t, err)
		require.Contains(t, err.Error(), "activation link rejected")
		require.Contains(t, err.Error(), "invalid or has expired")
		require.Equal(t, int32(0), server.createCalls.Load())
	})

	t.Run("weak-password-never-reaches-the-server", func(t *testing.T) {
		server := newActivateServer(t)
		client := NewFlowClient(cfg, server.srv.URL)

		var out bytes.Buffer
		err := RunActivate(ctx, client, logger, &out, accountID, "secret", "short")

		require.Error(t, err)
		require.Contains(t, err.Error(), "password rejected: needs")
		require.Contains(t, err.Error(), "at least 8 characters")
		require.Equal(t, int32(0), server.createCalls.Load())
	})

	t.Run("creation-rejection-surfaces-server-message", func(t *testing.T) {
		server := newActivateServer(t)
		server.create = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Token already used"})
		}
		client := NewFlowClient(cfg, server.srv.URL)

		var out bytes.Buffer
		err := RunActivate(ctx, client, logger, &out, accountID, "secret", "Passw0rd")

		require.Error(t, err)
		require.Contains(t, err.Error(), "Token already used")
		require.Equal(t, int32(0), server.loginCalls.Load())
	})

	t.Run("invalid-account-id", func(t *testing.T) {
		var out bytes.Buffer
		client := NewFlowClient(cfg, "http://localhost:0")

		err := RunActivate(ctx, client, logger, &out, "not-a-uuid", "secret", "Passw0rd")

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid account id")
	})
}

func TestNewFlowClientHonorsConfiguredTimeout(t *testing.T) {
	server := newActivateServer(t)
	server.validate = func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}

	cfg := &config.Config{ClientRequestTimeout: 50 * time.Millisecond}
	client := NewFlowClient(cfg, server.srv.URL)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	accountID := uuid.Must(uuid.NewV7()).String()

	var out bytes.Buffer
	start := time.Now()
	err := RunActivate(context.Background(), client, logger, &out, accountID, "secret", "Passw0rd")

	require.Error(t, err)
	require.Contains(t, err.Error(), flow.FallbackInvalidLinkMessage)
	require.Less(t, time.Since(start), 2*time.Second)
	require.Equal(t, int32(0), server.createCalls.Load())
}

func TestFailedRuleSummary(t *testing.T) {
	eval := flow.Evaluate("pass", true)
	summary := failedRuleSummary(eval)

	require.True(t, strings.HasPrefix(summary, "at least 8 characters"))
	require.Contains(t, summary, "an uppercase letter")
	require.Contains(t, summary, "a number")
	require.NotContains(t, summary, "lowercase")
}

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/transferledger/internal/infrastructure/auth"
	"github.com/iho/transferledger/internal/infrastructure/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestBalanceCmd(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/operations/check_balance/1001" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":true,"kind":"ACCOUNT_NOT_FOUND","data":"account not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":"R$ 200,00"}`))
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "--token", "abc", "balance", "1001")
	require.NoError(t, err)
	assert.Equal(t, "R$ 200,00\n", out)
	assert.Equal(t, "Bearer abc", gotAuth)

	_, err = execute(t, "--url", srv.URL, "balance", "9999")
	require.Error(t, err)
	assert.Equal(t, "ACCOUNT_NOT_FOUND: account not found", err.Error())
}

func TestTransferCmd(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/operations/transfer", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"data":"successful transfer"}`))
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "transfer", "1001", "1002", "50.25")
	require.NoError(t, err)
	assert.Equal(t, "successful transfer\n", out)
	assert.Equal(t, "1001", body["source_account_number"])
	assert.Equal(t, "1002", body["destination_account_number"])
	assert.Equal(t, "50.25", body["amount"])
}

func TestTransferCmdInvalidAmount(t *testing.T) {
	_, err := execute(t, "--url", "http://127.0.0.1:1", "transfer", "1001", "1002", "lots")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid amount")
}

func TestTransferCmdInsufficientFunds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":true,"kind":"INSUFFICIENT_FUNDS","data":"your balance: R$ 50,00 is insufficient"}`))
	}))
	defer srv.Close()

	_, err := execute(t, "--url", srv.URL, "transfer", "1001", "1002", "150")
	var apiErr *apiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "your balance: R$ 50,00 is insufficient", apiErr.Message)
}

func TestConsistencyCmd(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
		wantOut string
	}{
		{
			name:    "consistent",
			status:  http.StatusOK,
			body:    `{"data":{"consistent":true,"total_amount":"0","entry_count":4,"unpaired_entries":0}}`,
			wantOut: "Consistency check PASSED",
		},
		{
			name:    "inconsistent",
			status:  http.StatusConflict,
			body:    `{"data":{"consistent":false,"total_amount":"5","entry_count":3,"unpaired_entries":1}}`,
			wantErr: true,
			wantOut: "Unpaired entries: 1",
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `{"error":true,"kind":"STORAGE_FAILURE","data":"failed to check consistency"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			out, err := execute(t, "--url", srv.URL, "ledger", "consistency")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestTokenCmd(t *testing.T) {
	out, err := execute(t, "token", "teller-7", "--secret", "cli-secret", "--scope", auth.ScopeRead, "--ttl", "1h")
	require.NoError(t, err)

	claims, err := auth.NewJWTManager("cli-secret", time.Hour).Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "teller-7", claims.Subject)
	assert.True(t, claims.HasScope(auth.ScopeRead))
	assert.False(t, claims.HasScope(auth.ScopeTransfer))
}

func TestTokenCmdRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := execute(t, "token", "teller-7", "--secret", "")
	assert.Error(t, err)
}

func TestSeedCmdRequiresBalances(t *testing.T) {
	_, err := execute(t, "seed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--balance")
}

func TestAdminCommandsSurfaceConfigErrors(t *testing.T) {
	orig := loadConfig
	loadConfig = func() (*config.Config, error) { return nil, errors.New("bad config") }
	defer func() { loadConfig = orig }()

	_, err := execute(t, "migrate", "up")
	assert.EqualError(t, err, "bad config")

	_, err = execute(t, "seed", "--balance", "1001=10")
	assert.EqualError(t, err, "bad config")
}

func TestMigrateDownHelpMatchesSingleStep(t *testing.T) {
	out, err := execute(t, "migrate", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Roll back the last applied migration")
	assert.NotContains(t, out, "Roll back all migrations")
}

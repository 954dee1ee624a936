package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// envelope is the API response shape for both successes and failures.
type envelope struct {
	Error bool            `json:"error"`
	Kind  string          `json:"kind"`
	Data  json.RawMessage `json:"data"`
}

// apiError is a failure reported by the API.
type apiError struct {
	Status  int
	Kind    string
	Message string
}

func (e *apiError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("request failed (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (o *options) do(method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, o.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if o.token != "" {
		req.Header.Set("Authorization", "Bearer "+o.token)
	}

	client := &http.Client{Timeout: o.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &apiError{Status: resp.StatusCode, Message: string(raw)}
	}

	if env.Error || resp.StatusCode >= http.StatusBadRequest {
		var message string
		if err := json.Unmarshal(env.Data, &message); err != nil {
			message = string(env.Data)
		}
		return env.Data, &apiError{Status: resp.StatusCode, Kind: env.Kind, Message: message}
	}

	return env.Data, nil
}

func balanceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account-number>",
		Short: "Show the balance of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := opts.do(http.MethodGet, "/operations/check_balance/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return err
			}

			var display string
			if err := json.Unmarshal(data, &display); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), display)
			return nil
		},
	}
}

func transferCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <source> <destination> <amount>",
		Short: "Transfer money between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[2], err)
			}

			body := map[string]any{
				"source_account_number":      args[0],
				"destination_account_number": args[1],
				"amount":                     amount,
			}

			data, err := opts.do(http.MethodPost, "/operations/transfer", body)
			if err != nil {
				return err
			}

			var message string
			if err := json.Unmarshal(data, &message); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}
}

func consistencyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := opts.do(http.MethodGet, "/api/v1/ledger/consistency", nil)

			var report struct {
				Consistent      bool            `json:"consistent"`
				TotalAmount     decimal.Decimal `json:"total_amount"`
				EntryCount      int64           `json:"entry_count"`
				UnpairedEntries int64           `json:"unpaired_entries"`
			}
			hasReport := len(data) > 0 && json.Unmarshal(data, &report) == nil

			out := cmd.OutOrStdout()
			if hasReport {
				fmt.Fprintf(out, "Entries: %d\n", report.EntryCount)
				fmt.Fprintf(out, "Total amount: %s\n", report.TotalAmount)
				fmt.Fprintf(out, "Unpaired entries: %d\n", report.UnpairedEntries)
			}

			if err != nil {
				if hasReport {
					return errors.New("consistency check FAILED")
				}
				return fmt.Errorf("consistency check FAILED: %w", err)
			}

			fmt.Fprintln(out, "Consistency check PASSED")
			return nil
		},
	}
}

//go:build e2e

package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/polinfinity/staking-sync/testutil"
)

// TestSnapshotFanOut verifies that every published snapshot reaches the
// RabbitMQ exchange in version order and that the referrer from the inbound
// link is persisted in mongo.
func TestSnapshotFanOut(t *testing.T) {
	referrer := testutil.RandomAddress()
	tm := StartManager(t, referrer)

	var versions []uint64
	require.Eventually(t, func() bool {
		for {
			select {
			case d := <-tm.Snapshots:
				var snap types.Snapshot
				if err := json.Unmarshal(d.Body, &snap); err != nil {
					return false
				}
				versions = append(versions, snap.Version)
				if snap.Global.TotalStaked.String() == "5000" && snap.Referrer == referrer {
					return true
				}
			default:
				return false
			}
		}
	}, eventuallyWaitTimeOut, eventuallyPollTime)
	assert.IsIncreasing(t, versions)

	stored, err := tm.DbClient.LoadReferrer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, referrer.Hex(), stored)
}

// TestWalletSessionOverHTTP drives a session the way a dashboard would: the
// wallet reports an account, the snapshot becomes identity-scoped, and writes
// from a watch-only account are refused.
func TestWalletSessionOverHTTP(t *testing.T) {
	tm := StartManager(t, testutil.RandomAddress())
	account := testutil.RandomAddress()

	resp := doJSON(t, http.MethodPut, tm.API.URL+"/v1/wallet/accounts", map[string]any{
		"accounts": []string{account.Hex()},
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		snap, err := fetchSnapshot(t.Context(), tm.API.URL)
		return err == nil && snap.State == types.StateConnected && snap.User != nil &&
			snap.Identity != nil && *snap.Identity == account
	}, eventuallyWaitTimeOut, eventuallyPollTime)

	snap := getSnapshot(t, tm.API.URL)
	assert.Equal(t, "500", snap.User.TotalDeposited.String())
	assert.Equal(t, "90", snap.User.WalletBalance.String())
	assert.Contains(t, snap.ReferralLink, account.Hex())

	resp = doJSON(t, http.MethodPost, tm.API.URL+"/v1/tx/invest", map[string]any{"amount": "25"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, tm.API.URL+"/v1/wallet/accounts", map[string]any{
		"accounts": []string{},
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		snap, err := fetchSnapshot(t.Context(), tm.API.URL)
		return err == nil && snap.State == types.StateDisconnected && snap.User == nil
	}, eventuallyWaitTimeOut, eventuallyPollTime)
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequestWithContext(t.Context(), method, url, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func getSnapshot(t *testing.T, baseURL string) *types.Snapshot {
	t.Helper()

	snap, err := fetchSnapshot(t.Context(), baseURL)
	require.NoError(t, err)
	return snap
}

func fetchSnapshot(ctx context.Context, baseURL string) (*types.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/v1/snapshot", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var snap types.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

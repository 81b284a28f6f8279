package aggregator

import (
	"slices"
	"time"

	"github.com/polinfinity/staking-sync/internal/types"
)

// BuildTransactionHistory maps deposit events to records, newest first.
// The timestamp is the deposit's start argument (unix seconds); each record
// links to its transaction on explorerHost.
func BuildTransactionHistory(events []types.DepositEvent, explorerHost string) []types.TransactionRecord {
	records := make([]types.TransactionRecord, 0, len(events))
	for _, e := range events {
		var ts time.Time
		if e.Start != nil {
			ts = time.Unix(e.Start.Int64(), 0).UTC()
		}
		records = append(records, types.TransactionRecord{
			Amount:      FromWei(e.Amount),
			RawAmount:   orZero(e.Amount),
			Timestamp:   ts,
			TxHash:      e.TxHash,
			ExplorerURL: types.ExplorerTxURL(explorerHost, e.TxHash),
		})
	}

	slices.SortStableFunc(records, func(a, b types.TransactionRecord) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return records
}

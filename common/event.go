package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/lib/address"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
)

const (
	// EventStandard and EventVersion identify the schema of the event log
	// lines.
	EventStandard = "nep333"
	EventVersion  = "0.1.0"

	// OwnershipTransferredEvent is emitted when the vault changes its owner.
	OwnershipTransferredEvent = "ownership_transferred"
	// BalanceWithdrawnEvent is emitted when a withdrawal has settled.
	BalanceWithdrawnEvent = "balance_withdrawn"
)

// LogEvent writes a single JSON line
// {"standard", "version", "event", "data"} into the execution log.
func LogEvent(name string, data map[string]string) {
	line := std.JSONSerialize(map[string]any{
		"standard": EventStandard,
		"version":  EventVersion,
		"event":    name,
		"data":     data,
	})
	runtime.Log(string(line))
}

// SettleWithdrawal finishes a withdrawal once the transfer outcome is known.
// Successful transfer produces balance_withdrawn notification and log line,
// failed one leaves no trace. Returns the outcome.
func SettleWithdrawal(ok bool, amount int, beneficiary interop.Hash160) bool {
	if !ok {
		return false
	}

	runtime.Notify(BalanceWithdrawnEvent, amount, beneficiary)
	LogEvent(BalanceWithdrawnEvent, map[string]string{
		"amount":      std.Itoa(amount, 10),
		"beneficiary": address.FromHash160(beneficiary),
	})

	return true
}

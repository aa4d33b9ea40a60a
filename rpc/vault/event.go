package vault

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/ownervault/airdrop-contract/common"
)

// Names of the contract notifications.
const (
	OwnershipTransferredEventName = common.OwnershipTransferredEvent
	BalanceWithdrawnEventName     = common.BalanceWithdrawnEvent
)

// ErrUnknownEventSchema is returned by ParseEventData for log lines of other
// standards or versions.
var ErrUnknownEventSchema = errors.New("unknown event schema")

// EventData is a single event log line written by the contract:
//
//	{"standard":"nep333","version":"0.1.0","event":"<name>","data":{...}}
type EventData struct {
	Standard string            `json:"standard"`
	Version  string            `json:"version"`
	Event    string            `json:"event"`
	Data     map[string]string `json:"data,omitempty"`
}

func newEventData(name string, data map[string]string) EventData {
	return EventData{
		Standard: common.EventStandard,
		Version:  common.EventVersion,
		Event:    name,
		Data:     data,
	}
}

// EventData returns log line of the event.
func (e *OwnershipTransferredEvent) EventData() EventData {
	return newEventData(OwnershipTransferredEventName, map[string]string{
		"old_owner": address.Uint160ToString(e.OldOwner),
		"new_owner": address.Uint160ToString(e.NewOwner),
	})
}

// EventData returns log line of the event.
func (e *BalanceWithdrawnEvent) EventData() EventData {
	return newEventData(BalanceWithdrawnEventName, map[string]string{
		"amount":      e.Amount.String(),
		"beneficiary": address.Uint160ToString(e.Beneficiary),
	})
}

// String returns JSON representation of the line.
func (d EventData) String() string {
	b, err := json.Marshal(d)
	if err != nil {
		// map of strings is always serializable
		panic(err)
	}
	return string(b)
}

// ParseEventData decodes event log line. Lines of other standards are
// rejected with ErrUnknownEventSchema.
func ParseEventData(line string) (EventData, error) {
	var d EventData

	err := json.Unmarshal([]byte(line), &d)
	if err != nil {
		return d, fmt.Errorf("decode event line: %w", err)
	}

	if d.Standard != common.EventStandard || d.Version != common.EventVersion {
		return d, fmt.Errorf("%w: %s %s", ErrUnknownEventSchema, d.Standard, d.Version)
	}

	return d, nil
}

// EventsFromApplicationLog returns log lines of all vault events emitted by
// the contract with the given hash, in the order of emission.
func EventsFromApplicationLog(log *result.ApplicationLog, hash util.Uint160) ([]EventData, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []EventData
	for i := range log.Executions {
		evs, err := eventsFromExecution(&log.Executions[i], hash)
		if err != nil {
			return nil, fmt.Errorf("execution #%d: %w", i, err)
		}
		res = append(res, evs...)
	}

	return res, nil
}

// EventsFromAppExecResult is the same as EventsFromApplicationLog but for
// single execution result returned by transaction waiters.
func EventsFromAppExecResult(aer *state.AppExecResult, hash util.Uint160) ([]EventData, error) {
	if aer == nil {
		return nil, errors.New("nil execution result")
	}
	return eventsFromExecution(&aer.Execution, hash)
}

func eventsFromExecution(ex *state.Execution, hash util.Uint160) ([]EventData, error) {
	var res []EventData
	for j, e := range ex.Events {
		if !e.ScriptHash.Equals(hash) {
			continue
		}

		switch e.Name {
		case OwnershipTransferredEventName:
			var ev OwnershipTransferredEvent
			if err := ev.FromStackItem(e.Item); err != nil {
				return nil, fmt.Errorf("event #%d: %w", j, err)
			}
			res = append(res, ev.EventData())
		case BalanceWithdrawnEventName:
			var ev BalanceWithdrawnEvent
			if err := ev.FromStackItem(e.Item); err != nil {
				return nil, fmt.Errorf("event #%d: %w", j, err)
			}
			res = append(res, ev.EventData())
		}
	}

	return res, nil
}

// Package vault contains RPC wrappers for Owner Vault contract.
package vault

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	vaultcontract "github.com/ownervault/airdrop-contract/contracts/vault"
)

// Participant is a single airdrop recipient.
type Participant struct {
	Account util.Uint160
	Amount  *big.Int
}

// OwnershipTransferredEvent represents "ownership_transferred" event emitted by the contract.
type OwnershipTransferredEvent struct {
	OldOwner util.Uint160
	NewOwner util.Uint160
}

// BalanceWithdrawnEvent represents "balance_withdrawn" event emitted by the contract.
type BalanceWithdrawnEvent struct {
	Amount      *big.Int
	Beneficiary util.Uint160
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
	Sign(tx *transaction.Transaction) error
	Send(tx *transaction.Transaction) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
	hash  util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, hash}
}

// Hash returns the address of the contract.
func (c *ContractReader) Hash() util.Uint160 {
	return c.hash
}

// Owner invokes `owner` method of contract.
func (c *ContractReader) Owner() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "owner"))
}

// AvailableWithdraw invokes `availableWithdraw` method of contract.
func (c *ContractReader) AvailableWithdraw() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "availableWithdraw"))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// Airdrop creates a transaction invoking `airdrop` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Airdrop(participants []Participant) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "airdrop", participantsToParams(participants))
}

// AirdropTransaction creates a transaction invoking `airdrop` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) AirdropTransaction(participants []Participant) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "airdrop", participantsToParams(participants))
}

// AirdropUnsigned creates a transaction invoking `airdrop` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) AirdropUnsigned(participants []Participant) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "airdrop", nil, participantsToParams(participants))
}

// Withdraw creates a transaction invoking `withdraw` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
//
// System fee of the transaction is raised by the budget the contract requires
// for the withdrawal settlement.
func (c *Contract) Withdraw(amount *big.Int, beneficiary util.Uint160) (util.Uint256, uint32, error) {
	return c.sendWithBudget(c.WithdrawTransaction(amount, beneficiary))
}

// WithdrawTransaction creates a transaction invoking `withdraw` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) WithdrawTransaction(amount *big.Int, beneficiary util.Uint160) (*transaction.Transaction, error) {
	return c.signWithBudget(c.WithdrawUnsigned(amount, beneficiary))
}

// WithdrawUnsigned creates a transaction invoking `withdraw` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// System fee already includes the withdrawal budget.
func (c *Contract) WithdrawUnsigned(amount *big.Int, beneficiary util.Uint160) (*transaction.Transaction, error) {
	return withBudget(c.actor.MakeUnsignedCall(c.hash, "withdraw", nil, amount, beneficiary))
}

// WithdrawAll creates a transaction invoking `withdrawAll` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
//
// System fee of the transaction is raised by the budget the contract requires
// for the withdrawal settlement.
func (c *Contract) WithdrawAll(beneficiary util.Uint160) (util.Uint256, uint32, error) {
	return c.sendWithBudget(c.WithdrawAllTransaction(beneficiary))
}

// WithdrawAllTransaction creates a transaction invoking `withdrawAll` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) WithdrawAllTransaction(beneficiary util.Uint160) (*transaction.Transaction, error) {
	return c.signWithBudget(c.WithdrawAllUnsigned(beneficiary))
}

// WithdrawAllUnsigned creates a transaction invoking `withdrawAll` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// System fee already includes the withdrawal budget.
func (c *Contract) WithdrawAllUnsigned(beneficiary util.Uint160) (*transaction.Transaction, error) {
	return withBudget(c.actor.MakeUnsignedCall(c.hash, "withdrawAll", nil, beneficiary))
}

// TransferOwnership creates a transaction invoking `transferOwnership` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) TransferOwnership(newOwner util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "transferOwnership", newOwner)
}

// TransferOwnershipTransaction creates a transaction invoking `transferOwnership` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) TransferOwnershipTransaction(newOwner util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "transferOwnership", newOwner)
}

// TransferOwnershipUnsigned creates a transaction invoking `transferOwnership` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) TransferOwnershipUnsigned(newOwner util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "transferOwnership", nil, newOwner)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(nefFile []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", nefFile, manifest, data)
}

// UpdateTransaction creates a transaction invoking `update` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UpdateTransaction(nefFile []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "update", nefFile, manifest, data)
}

// UpdateUnsigned creates a transaction invoking `update` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) UpdateUnsigned(nefFile []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "update", nil, nefFile, manifest, data)
}

// withBudget raises estimated system fee so that at least
// MinWithdrawBudget GAS is left when the contract checks it.
func withBudget(tx *transaction.Transaction, err error) (*transaction.Transaction, error) {
	if err != nil {
		return nil, err
	}

	tx.SystemFee += vaultcontract.MinWithdrawBudget
	return tx, nil
}

func (c *Contract) signWithBudget(tx *transaction.Transaction, err error) (*transaction.Transaction, error) {
	if err != nil {
		return nil, err
	}

	err = c.actor.Sign(tx)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	return tx, nil
}

func (c *Contract) sendWithBudget(tx *transaction.Transaction, err error) (util.Uint256, uint32, error) {
	if err != nil {
		return util.Uint256{}, 0, err
	}

	return c.actor.Send(tx)
}

func participantsToParams(participants []Participant) []any {
	res := make([]any, 0, len(participants))
	for i := range participants {
		res = append(res, []any{participants[i].Account, participants[i].Amount})
	}
	return res
}

// OwnershipTransferredEventsFromApplicationLog retrieves a set of all emitted events
// with "ownership_transferred" name from the provided [result.ApplicationLog].
func OwnershipTransferredEventsFromApplicationLog(log *result.ApplicationLog) ([]*OwnershipTransferredEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*OwnershipTransferredEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != OwnershipTransferredEventName {
				continue
			}
			event := new(OwnershipTransferredEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize OwnershipTransferredEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to OwnershipTransferredEvent or
// returns an error if it's not possible to do to so.
func (e *OwnershipTransferredEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 2)
	if err != nil {
		return err
	}

	e.OldOwner, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field OldOwner: %w", err)
	}

	e.NewOwner, err = itemToUint160(arr[1])
	if err != nil {
		return fmt.Errorf("field NewOwner: %w", err)
	}

	return nil
}

// BalanceWithdrawnEventsFromApplicationLog retrieves a set of all emitted events
// with "balance_withdrawn" name from the provided [result.ApplicationLog].
func BalanceWithdrawnEventsFromApplicationLog(log *result.ApplicationLog) ([]*BalanceWithdrawnEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*BalanceWithdrawnEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != BalanceWithdrawnEventName {
				continue
			}
			event := new(BalanceWithdrawnEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize BalanceWithdrawnEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to BalanceWithdrawnEvent or
// returns an error if it's not possible to do to so.
func (e *BalanceWithdrawnEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 2)
	if err != nil {
		return err
	}

	e.Amount, err = arr[0].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	e.Beneficiary, err = itemToUint160(arr[1])
	if err != nil {
		return fmt.Errorf("field Beneficiary: %w", err)
	}

	return nil
}

func eventFields(item *stackitem.Array, n int) ([]stackitem.Item, error) {
	if item == nil {
		return nil, errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, errors.New("not an array")
	}
	if len(arr) != n {
		return nil, errors.New("wrong number of structure elements")
	}
	return arr, nil
}

func itemToUint160(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	u, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return util.Uint160{}, err
	}
	return u, nil
}

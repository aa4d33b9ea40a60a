package vault

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/lib/address"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/policy"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/ownervault/airdrop-contract/common"
)

// Participant is a single airdrop recipient.
type Participant struct {
	Account interop.Hash160
	Amount  int
}

const (
	ownerKey = "owner"

	// BudgetUnit is a base unit of the execution budget (0.01 GAS).
	BudgetUnit = 1_000_000
	// MinWithdrawBudget is the amount of GAS an invocation must still have
	// when withdrawal starts, so the settlement can run.
	MinWithdrawBudget = 11 * BudgetUnit
)

// OnNEP17Payment is a callback for NEP-17 compatible native GAS contract.
// Vault is funded with GAS only.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	caller := runtime.GetCallingScriptHash()
	if !caller.Equals(gas.Hash) {
		common.AbortWithMessage("vault contract accepts GAS only")
	}
}

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	if data == nil {
		runtime.Log("vault contract deployed without owner")
		return
	}

	args := data.(struct {
		owner interop.Hash160
	})

	initOwner(storage.GetContext(), args.owner)
}

func initOwner(ctx storage.Context, owner interop.Hash160) {
	common.ValidAccount(owner)
	storage.Put(ctx, ownerKey, owner)

	runtime.Log("vault contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the owner.
func Update(nefFile, manifest []byte, data any) {
	ctx := storage.GetReadOnlyContext()
	checkOwner(ctx)

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("vault contract updated")
}

// Airdrop sends GAS from the vault to each participant in order. It can be
// invoked only by the owner.
//
// Transfers are independent: a failed transfer is logged and the rest of the
// list is still processed. No result is reported back.
func Airdrop(participants []Participant) {
	ctx := storage.GetReadOnlyContext()
	checkOwner(ctx)

	self := runtime.GetExecutingScriptHash()
	for _, p := range participants {
		common.ValidAccount(p.Account)
		if p.Amount < 0 {
			panic(common.ErrInvalidAmount)
		}

		if !gas.Transfer(self, p.Account, p.Amount, nil) {
			runtime.Log("could not transfer GAS to " + address.FromHash160(p.Account))
		}
	}
}

// Withdraw transfers amount of GAS to the beneficiary. It can be invoked only
// by the owner and only with at least MinWithdrawBudget GAS left for the
// execution. Amount must be positive and must not exceed AvailableWithdraw.
//
// The result is the one reported by OnWithdraw after the transfer settles.
func Withdraw(amount int, beneficiary interop.Hash160) bool {
	checkBudget()

	ctx := storage.GetReadOnlyContext()
	checkOwner(ctx)
	common.ValidAccount(beneficiary)

	if amount > availableWithdraw(ctx) {
		panic(common.ErrExceedsAvailable)
	}

	return withdraw(amount, beneficiary)
}

// WithdrawAll transfers the whole AvailableWithdraw amount to the beneficiary.
// Preconditions are the same as for Withdraw.
func WithdrawAll(beneficiary interop.Hash160) bool {
	checkBudget()

	ctx := storage.GetReadOnlyContext()
	checkOwner(ctx)
	common.ValidAccount(beneficiary)

	return withdraw(availableWithdraw(ctx), beneficiary)
}

// TransferOwnership replaces the vault owner. It can be invoked only by the
// current owner.
//
// It produces ownership_transferred notification.
func TransferOwnership(newOwner interop.Hash160) {
	ctx := storage.GetContext()
	oldOwner := checkOwner(ctx)
	common.ValidAccount(newOwner)

	storage.Put(ctx, ownerKey, newOwner)

	runtime.Notify(common.OwnershipTransferredEvent, oldOwner, newOwner)
	common.LogEvent(common.OwnershipTransferredEvent, map[string]string{
		"old_owner": address.FromHash160(oldOwner),
		"new_owner": address.FromHash160(newOwner),
	})
}

// Owner returns the current vault owner.
func Owner() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return getOwner(ctx)
}

// AvailableWithdraw returns GAS balance of the vault minus the reserve that
// covers its storage. It fails if the reserve is greater than the balance.
func AvailableWithdraw() int {
	ctx := storage.GetReadOnlyContext()
	getOwner(ctx)

	return availableWithdraw(ctx)
}

// OnWithdraw is a continuation of Withdraw and WithdrawAll invoked with the
// transfer outcome. It can be invoked by the vault contract only.
//
// It produces balance_withdrawn notification if the transfer succeeded.
func OnWithdraw(result bool, amount int, beneficiary interop.Hash160) bool {
	if !runtime.GetCallingScriptHash().Equals(runtime.GetExecutingScriptHash()) {
		panic(common.ErrPrivateCallback)
	}

	return common.SettleWithdrawal(result, amount, beneficiary)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

func getOwner(ctx storage.Context) interop.Hash160 {
	owner := storage.Get(ctx, ownerKey)
	if owner == nil {
		panic(common.ErrNotInitialized)
	}

	return owner.(interop.Hash160)
}

func checkOwner(ctx storage.Context) interop.Hash160 {
	owner := getOwner(ctx)
	common.CheckOwnerWitness(owner)

	return owner
}

// checkBudget skips unlimited executions (GasLeft returns -1).
func checkBudget() {
	left := runtime.GasLeft()
	if left >= 0 && left < MinWithdrawBudget {
		panic(common.ErrNotEnoughBudget)
	}
}

func storageReserve(ctx storage.Context) int {
	owner := storage.Get(ctx, ownerKey).([]byte)
	return (len(ownerKey) + len(owner)) * policy.GetStoragePrice()
}

func availableWithdraw(ctx storage.Context) int {
	balance := gas.BalanceOf(runtime.GetExecutingScriptHash())
	reserve := storageReserve(ctx)
	if reserve > balance {
		panic(common.ErrUnderflow)
	}

	return balance - reserve
}

func withdraw(amount int, beneficiary interop.Hash160) bool {
	if amount <= 0 {
		panic(common.ErrNonPositiveAmount)
	}

	self := runtime.GetExecutingScriptHash()
	ok := gas.Transfer(self, beneficiary, amount, nil)

	return contract.Call(self, "onWithdraw", contract.All, ok, amount, beneficiary).(bool)
}

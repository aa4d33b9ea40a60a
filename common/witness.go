package common

import "github.com/nspcc-dev/neo-go/pkg/interop/runtime"

const (
	// ErrOwnerWitnessFailed appears when the method must be called
	// by the vault owner but was not.
	ErrOwnerWitnessFailed = "caller is not the owner"
	// ErrNotInitialized appears when the vault has no owner yet.
	ErrNotInitialized = "contract is not initialized"
	// ErrInvalidAccount appears when a passed account is not a valid
	// 20-byte script hash.
	ErrInvalidAccount = "given account id is invalid"
	// ErrInvalidAmount appears when a negative amount is passed
	// for the transfer.
	ErrInvalidAmount = "amount should not be negative"
	// ErrNonPositiveAmount appears when withdrawal amount is zero or less.
	ErrNonPositiveAmount = "withdrawal: amount should be positive"
	// ErrExceedsAvailable appears when withdrawal amount is greater than the
	// spare contract balance.
	ErrExceedsAvailable = "withdrawal: exceed available balance"
	// ErrNotEnoughBudget appears when the invocation has not enough GAS left
	// to finish the withdrawal continuation.
	ErrNotEnoughBudget = "gas: not enough"
	// ErrUnderflow appears when the storage reserve is greater than the
	// contract balance.
	ErrUnderflow = "arithmetic underflow: storage reserve exceeds balance"
	// ErrPrivateCallback appears when a callback is invoked by anyone except
	// the contract itself.
	ErrPrivateCallback = "callback can be invoked by the contract only"
)

// CheckOwnerWitness checks witness of the passed owner.
// It panics with ErrOwnerWitnessFailed message on fail.
func CheckOwnerWitness(owner []byte) {
	checkWitnessWithPanic(owner, ErrOwnerWitnessFailed)
}

func checkWitnessWithPanic(caller []byte, panicMsg string) {
	if !runtime.CheckWitness(caller) {
		panic(panicMsg)
	}
}

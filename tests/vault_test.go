package tests

import (
	"encoding/json"
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/ownervault/airdrop-contract/common"
	"github.com/ownervault/airdrop-contract/contracts/vault"
	"github.com/stretchr/testify/require"
)

const (
	vaultPath     = "../contracts/vault"
	nep17recvPath = "../internal/testcontracts/nep17recv"

	gasFactor = 1_0000_0000

	// enough for any vault method.
	withdrawSysFee = 1 * gasFactor
	// ownerKey + 20-byte hash.
	vaultStorageSize = 5 + util.Uint160Size
)

func deployVaultContract(t *testing.T, e *neotest.Executor, data any) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, vaultPath, path.Join(vaultPath, "config.yml"))
	e.DeployContract(t, c, data)
	return c.Hash
}

// newVaultInvoker deploys vault owned by a fresh account and funds it with
// the given amount of GAS. Returned invoker is signed by the owner.
func newVaultInvoker(t *testing.T, funds int64) (*neotest.ContractInvoker, neotest.Signer) {
	e := newExecutor(t)

	owner := e.NewAccount(t)
	h := deployVaultContract(t, e, []any{owner.ScriptHash()})
	if funds > 0 {
		transferGAS(t, e, h, funds)
	}

	return e.NewInvoker(h, owner), owner
}

func vaultReserve(t testing.TB, e *neotest.Executor) int64 {
	return vaultStorageSize * storagePrice(t, e)
}

func availableWithdraw(t testing.TB, c *neotest.ContractInvoker) int64 {
	s, err := c.TestInvoke(t, "availableWithdraw")
	require.NoError(t, err)

	return s.Pop().BigInt().Int64()
}

func requireOwner(t testing.TB, c *neotest.ContractInvoker, owner util.Uint160) {
	c.Invoke(t, stackitem.NewByteArray(owner.BytesBE()), "owner")
}

func TestVault_Uninitialized(t *testing.T) {
	e := newExecutor(t)
	h := deployVaultContract(t, e, nil)
	transferGAS(t, e, h, 10*gasFactor)

	c := e.CommitteeInvoker(h)
	acc := e.NewAccount(t)

	c.InvokeFail(t, common.ErrNotInitialized, "owner")
	c.InvokeFail(t, common.ErrNotInitialized, "availableWithdraw")
	c.InvokeFail(t, common.ErrNotInitialized, "transferOwnership", acc.ScriptHash())
	c.InvokeFail(t, common.ErrNotInitialized, "airdrop", []any{})

	txH := sendWithSysFee(t, c, withdrawSysFee, "withdraw", int64(gasFactor), acc.ScriptHash())
	c.CheckFault(t, txH, common.ErrNotInitialized)

	txH = sendWithSysFee(t, c, withdrawSysFee, "withdrawAll", acc.ScriptHash())
	c.CheckFault(t, txH, common.ErrNotInitialized)

	c.Invoke(t, common.Version, "version")
}

func TestVault_InvalidOwnerOnDeploy(t *testing.T) {
	e := newExecutor(t)
	c := neotest.CompileFile(t, e.CommitteeHash, vaultPath, path.Join(vaultPath, "config.yml"))
	e.DeployContractCheckFAULT(t, c, []any{[]byte{1, 2, 3}}, common.ErrInvalidAccount)
}

func TestVault_Owner(t *testing.T) {
	c, owner := newVaultInvoker(t, 0)

	requireOwner(t, c, owner.ScriptHash())
	requireOwner(t, c.WithSigners(c.NewAccount(t)), owner.ScriptHash())
}

func TestVault_NotOwner(t *testing.T) {
	c, owner := newVaultInvoker(t, 10*gasFactor)

	stranger := c.NewAccount(t)
	cStranger := c.WithSigners(stranger)
	available := availableWithdraw(t, c)

	cStranger.InvokeFail(t, common.ErrOwnerWitnessFailed, "transferOwnership", stranger.ScriptHash())
	cStranger.InvokeFail(t, common.ErrOwnerWitnessFailed, "airdrop", []any{
		[]any{stranger.ScriptHash(), int64(gasFactor)},
	})
	cStranger.InvokeFail(t, common.ErrOwnerWitnessFailed, "update", []byte{}, []byte{}, nil)

	txH := sendWithSysFee(t, cStranger, withdrawSysFee, "withdraw", int64(gasFactor), stranger.ScriptHash())
	cStranger.CheckFault(t, txH, common.ErrOwnerWitnessFailed)

	txH = sendWithSysFee(t, cStranger, withdrawSysFee, "withdrawAll", stranger.ScriptHash())
	cStranger.CheckFault(t, txH, common.ErrOwnerWitnessFailed)

	requireOwner(t, c, owner.ScriptHash())
	require.Equal(t, available, availableWithdraw(t, c))
}

func TestVault_Update(t *testing.T) {
	c, owner := newVaultInvoker(t, 0)

	ctr := neotest.CompileFile(t, c.CommitteeHash, vaultPath, path.Join(vaultPath, "config.yml"))

	rawNef, err := ctr.NEF.Bytes()
	require.NoError(t, err)
	rawManifest, err := json.Marshal(ctr.Manifest)
	require.NoError(t, err)

	// same code can not be deployed twice
	c.InvokeFail(t, common.ErrAlreadyUpdated, "update", rawNef, rawManifest, nil)
	c.InvokeFail(t, common.ErrAlreadyUpdated, "update", rawNef, rawManifest, []any{owner.ScriptHash()})

	requireOwner(t, c, owner.ScriptHash())
	c.Invoke(t, common.Version, "version")
}

func TestVault_AvailableWithdraw(t *testing.T) {
	t.Run("underflow", func(t *testing.T) {
		c, _ := newVaultInvoker(t, 0)
		c.InvokeFail(t, common.ErrUnderflow, "availableWithdraw")

		transferGAS(t, c.Executor, c.Hash, vaultReserve(t, c.Executor)-1)
		c.InvokeFail(t, common.ErrUnderflow, "availableWithdraw")
	})

	t.Run("exact reserve", func(t *testing.T) {
		c, _ := newVaultInvoker(t, 0)
		transferGAS(t, c.Executor, c.Hash, vaultReserve(t, c.Executor))
		require.EqualValues(t, 0, availableWithdraw(t, c))
	})

	t.Run("balance minus reserve", func(t *testing.T) {
		const funds = 10 * gasFactor
		c, _ := newVaultInvoker(t, funds)

		require.Equal(t, gasBalance(t, c.Executor, c.Hash)-vaultReserve(t, c.Executor), availableWithdraw(t, c))
		require.Equal(t, funds-vaultReserve(t, c.Executor), availableWithdraw(t, c))

		transferGAS(t, c.Executor, c.Hash, funds)
		require.Equal(t, 2*funds-vaultReserve(t, c.Executor), availableWithdraw(t, c))
	})
}

func TestVault_AcceptsGASOnly(t *testing.T) {
	c, _ := newVaultInvoker(t, 0)

	neoInv := nativeInvoker(t, c.Executor, nativenames.Neo).WithSigners(c.Validator)
	neoInv.InvokeFail(t, "", "transfer", c.Validator.ScriptHash(), c.Hash, int64(1), nil)
}

func TestVault_Withdraw(t *testing.T) {
	const funds = 10 * gasFactor

	t.Run("not enough budget", func(t *testing.T) {
		c, _ := newVaultInvoker(t, funds)
		bene := c.NewAccount(t)

		txH := sendWithSysFee(t, c, vault.MinWithdrawBudget/2, "withdraw", int64(gasFactor), bene.ScriptHash())
		c.CheckFault(t, txH, common.ErrNotEnoughBudget)
	})

	t.Run("invalid beneficiary", func(t *testing.T) {
		c, _ := newVaultInvoker(t, funds)

		txH := sendWithSysFee(t, c, withdrawSysFee, "withdraw", int64(gasFactor), []byte{1, 2, 3})
		c.CheckFault(t, txH, common.ErrInvalidAccount)
	})

	t.Run("invalid amount", func(t *testing.T) {
		c, _ := newVaultInvoker(t, funds)
		bene := c.NewAccount(t)
		available := availableWithdraw(t, c)

		for _, tc := range []struct {
			amount int64
			err    string
		}{
			{amount: available + 1, err: common.ErrExceedsAvailable},
			{amount: funds, err: common.ErrExceedsAvailable},
			{amount: 0, err: common.ErrNonPositiveAmount},
			{amount: -1, err: common.ErrNonPositiveAmount},
			{amount: -funds, err: common.ErrNonPositiveAmount},
		} {
			txH := sendWithSysFee(t, c, withdrawSysFee, "withdraw", tc.amount, bene.ScriptHash())
			c.CheckFault(t, txH, tc.err)
		}

		require.Equal(t, available, availableWithdraw(t, c))
	})

	t.Run("success", func(t *testing.T) {
		c, owner := newVaultInvoker(t, funds)
		bene := c.NewAccount(t)

		available := availableWithdraw(t, c)
		beneBalance := gasBalance(t, c.Executor, bene.ScriptHash())

		for _, amount := range []int64{1, gasFactor, available - gasFactor - 1} {
			txH := sendWithSysFee(t, c, withdrawSysFee, "withdraw", amount, bene.ScriptHash())
			aer := c.CheckHalt(t, txH, stackitem.NewBool(true))

			events := contractEvents(aer, c.Hash)
			require.Len(t, events, 1)
			require.Equal(t, common.BalanceWithdrawnEvent, events[0].Name)

			params := eventParams(t, events[0])
			require.Len(t, params, 2)
			requireInteger(t, amount, params[0])
			requireHash160(t, bene.ScriptHash(), params[1])

			available -= amount
			beneBalance += amount
			require.Equal(t, available, availableWithdraw(t, c))
			require.Equal(t, beneBalance, gasBalance(t, c.Executor, bene.ScriptHash()))
		}

		require.EqualValues(t, 0, availableWithdraw(t, c))
		requireOwner(t, c, owner.ScriptHash())
	})

	t.Run("to contract", func(t *testing.T) {
		c, _ := newVaultInvoker(t, funds)

		recv := neotest.CompileFile(t, c.CommitteeHash, nep17recvPath, path.Join(nep17recvPath, "config.yml"))
		c.DeployContract(t, recv, nil)

		txH := sendWithSysFee(t, c, withdrawSysFee, "withdraw", int64(gasFactor), recv.Hash)
		c.CheckHalt(t, txH, stackitem.NewBool(true))

		c.CommitteeInvoker(recv.Hash).Invoke(t, stackitem.NewStruct([]stackitem.Item{
			stackitem.NewByteArray(c.Hash.BytesBE()),
			stackitem.Make(gasFactor),
			stackitem.Null{},
		}), "get")
	})
}

func TestVault_WithdrawAll(t *testing.T) {
	const funds = 10 * gasFactor

	t.Run("not enough budget", func(t *testing.T) {
		c, _ := newVaultInvoker(t, funds)
		bene := c.NewAccount(t)

		txH := sendWithSysFee(t, c, vault.MinWithdrawBudget/2, "withdrawAll", bene.ScriptHash())
		c.CheckFault(t, txH, common.ErrNotEnoughBudget)
	})

	t.Run("invalid beneficiary", func(t *testing.T) {
		c, _ := newVaultInvoker(t, funds)

		txH := sendWithSysFee(t, c, withdrawSysFee, "withdrawAll", []byte{1, 2, 3})
		c.CheckFault(t, txH, common.ErrInvalidAccount)
	})

	t.Run("success", func(t *testing.T) {
		c, _ := newVaultInvoker(t, funds)
		bene := c.NewAccount(t)

		available := availableWithdraw(t, c)
		beneBalance := gasBalance(t, c.Executor, bene.ScriptHash())

		txH := sendWithSysFee(t, c, withdrawSysFee, "withdrawAll", bene.ScriptHash())
		aer := c.CheckHalt(t, txH, stackitem.NewBool(true))

		events := contractEvents(aer, c.Hash)
		require.Len(t, events, 1)
		params := eventParams(t, events[0])
		requireInteger(t, available, params[0])
		requireHash160(t, bene.ScriptHash(), params[1])

		require.Equal(t, beneBalance+available, gasBalance(t, c.Executor, bene.ScriptHash()))
		require.Equal(t, vaultReserve(t, c.Executor), gasBalance(t, c.Executor, c.Hash))
		require.EqualValues(t, 0, availableWithdraw(t, c))

		// nothing left to withdraw
		txH = sendWithSysFee(t, c, withdrawSysFee, "withdrawAll", bene.ScriptHash())
		c.CheckFault(t, txH, common.ErrNonPositiveAmount)
	})

	t.Run("underflow", func(t *testing.T) {
		c, _ := newVaultInvoker(t, 0)
		bene := c.NewAccount(t)

		txH := sendWithSysFee(t, c, withdrawSysFee, "withdrawAll", bene.ScriptHash())
		c.CheckFault(t, txH, common.ErrUnderflow)
	})
}

func TestVault_OnWithdrawIsPrivate(t *testing.T) {
	c, owner := newVaultInvoker(t, 10*gasFactor)

	c.InvokeFail(t, common.ErrPrivateCallback, "onWithdraw", true, int64(gasFactor), owner.ScriptHash())
	c.InvokeFail(t, common.ErrPrivateCallback, "onWithdraw", false, int64(gasFactor), owner.ScriptHash())
	c.WithSigners(c.Committee).InvokeFail(t, common.ErrPrivateCallback,
		"onWithdraw", true, int64(gasFactor), owner.ScriptHash())
}

func TestVault_TransferOwnership(t *testing.T) {
	c, owner := newVaultInvoker(t, 10*gasFactor)
	newOwner := c.NewAccount(t)

	c.InvokeFail(t, common.ErrInvalidAccount, "transferOwnership", []byte{1, 2, 3})
	requireOwner(t, c, owner.ScriptHash())

	txH := c.Invoke(t, stackitem.Null{}, "transferOwnership", newOwner.ScriptHash())
	requireOwner(t, c, newOwner.ScriptHash())

	events := contractEvents(c.CheckHalt(t, txH), c.Hash)
	require.Len(t, events, 1)
	require.Equal(t, common.OwnershipTransferredEvent, events[0].Name)

	params := eventParams(t, events[0])
	require.Len(t, params, 2)
	requireHash160(t, owner.ScriptHash(), params[0])
	requireHash160(t, newOwner.ScriptHash(), params[1])

	// previous owner lost access
	c.InvokeFail(t, common.ErrOwnerWitnessFailed, "transferOwnership", owner.ScriptHash())

	cNew := c.WithSigners(newOwner)
	cNew.Invoke(t, stackitem.Null{}, "airdrop", []any{
		[]any{owner.ScriptHash(), int64(gasFactor)},
	})
	cNew.Invoke(t, stackitem.Null{}, "transferOwnership", owner.ScriptHash())
	requireOwner(t, c, owner.ScriptHash())
}

func TestVault_Airdrop(t *testing.T) {
	const funds = 10 * gasFactor

	t.Run("each participant paid", func(t *testing.T) {
		c, _ := newVaultInvoker(t, funds)

		amounts := []int64{1, gasFactor, 2*gasFactor + 12345}
		participants := make([]any, len(amounts))
		accs := make([]neotest.Signer, len(amounts))
		balances := make([]int64, len(amounts))
		for i := range amounts {
			accs[i] = c.NewAccount(t)
			balances[i] = gasBalance(t, c.Executor, accs[i].ScriptHash())
			participants[i] = []any{accs[i].ScriptHash(), amounts[i]}
		}

		vaultBalance := gasBalance(t, c.Executor, c.Hash)

		txH := c.Invoke(t, stackitem.Null{}, "airdrop", participants)

		gasHash, err := c.Chain.GetNativeContractScriptHash(nativenames.Gas)
		require.NoError(t, err)

		transfers := contractEvents(c.CheckHalt(t, txH), gasHash)
		require.Len(t, transfers, len(amounts))

		for i := range amounts {
			params := eventParams(t, transfers[i])
			requireHash160(t, c.Hash, params[0])
			requireHash160(t, accs[i].ScriptHash(), params[1])
			requireInteger(t, amounts[i], params[2])

			require.Equal(t, balances[i]+amounts[i], gasBalance(t, c.Executor, accs[i].ScriptHash()))
			vaultBalance -= amounts[i]
		}

		require.Equal(t, vaultBalance, gasBalance(t, c.Executor, c.Hash))
	})

	t.Run("failed transfer does not stop the rest", func(t *testing.T) {
		c, _ := newVaultInvoker(t, funds)

		a, b := c.NewAccount(t), c.NewAccount(t)
		aBalance := gasBalance(t, c.Executor, a.ScriptHash())
		bBalance := gasBalance(t, c.Executor, b.ScriptHash())

		c.Invoke(t, stackitem.Null{}, "airdrop", []any{
			[]any{a.ScriptHash(), int64(2 * funds)},
			[]any{b.ScriptHash(), int64(gasFactor)},
		})

		require.Equal(t, aBalance, gasBalance(t, c.Executor, a.ScriptHash()))
		require.Equal(t, bBalance+gasFactor, gasBalance(t, c.Executor, b.ScriptHash()))
	})

	t.Run("contract participant", func(t *testing.T) {
		c, _ := newVaultInvoker(t, funds)

		recv := neotest.CompileFile(t, c.CommitteeHash, nep17recvPath, path.Join(nep17recvPath, "config.yml"))
		c.DeployContract(t, recv, nil)

		c.Invoke(t, stackitem.Null{}, "airdrop", []any{
			[]any{recv.Hash, int64(3 * gasFactor)},
		})

		c.CommitteeInvoker(recv.Hash).Invoke(t, stackitem.NewStruct([]stackitem.Item{
			stackitem.NewByteArray(c.Hash.BytesBE()),
			stackitem.Make(3 * gasFactor),
			stackitem.Null{},
		}), "get")
	})

	t.Run("invalid participant", func(t *testing.T) {
		c, _ := newVaultInvoker(t, funds)

		a := c.NewAccount(t)
		aBalance := gasBalance(t, c.Executor, a.ScriptHash())

		c.InvokeFail(t, common.ErrInvalidAccount, "airdrop", []any{
			[]any{a.ScriptHash(), int64(gasFactor)},
			[]any{[]byte{1, 2, 3}, int64(gasFactor)},
		})
		c.InvokeFail(t, common.ErrInvalidAmount, "airdrop", []any{
			[]any{a.ScriptHash(), int64(gasFactor)},
			[]any{a.ScriptHash(), int64(-1)},
		})

		require.Equal(t, aBalance, gasBalance(t, c.Executor, a.ScriptHash()))
		require.EqualValues(t, funds, gasBalance(t, c.Executor, c.Hash))
	})

	t.Run("empty list", func(t *testing.T) {
		c, _ := newVaultInvoker(t, funds)

		c.Invoke(t, stackitem.Null{}, "airdrop", []any{})
		require.EqualValues(t, funds, gasBalance(t, c.Executor, c.Hash))
	})
}

func TestVault_Scenario(t *testing.T) {
	c, alice := newVaultInvoker(t, 50*gasFactor)
	bob, carol := c.NewAccount(t), c.NewAccount(t)

	available := availableWithdraw(t, c)

	txH := sendWithSysFee(t, c, withdrawSysFee, "withdrawAll", bob.ScriptHash())
	events := contractEvents(c.CheckHalt(t, txH, stackitem.NewBool(true)), c.Hash)
	require.Len(t, events, 1)
	require.Equal(t, common.BalanceWithdrawnEvent, events[0].Name)
	params := eventParams(t, events[0])
	requireInteger(t, available, params[0])
	requireHash160(t, bob.ScriptHash(), params[1])
	requireOwner(t, c, alice.ScriptHash())

	c.Invoke(t, stackitem.Null{}, "transferOwnership", carol.ScriptHash())
	requireOwner(t, c, carol.ScriptHash())

	transferGAS(t, c.Executor, c.Hash, 5*gasFactor)
	vaultBalance := gasBalance(t, c.Executor, c.Hash)

	c.WithSigners(bob).InvokeFail(t, common.ErrOwnerWitnessFailed, "airdrop", []any{
		[]any{bob.ScriptHash(), int64(gasFactor)},
		[]any{alice.ScriptHash(), int64(gasFactor)},
	})
	require.Equal(t, vaultBalance, gasBalance(t, c.Executor, c.Hash))
}

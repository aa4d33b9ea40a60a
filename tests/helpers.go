package tests

import (
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

// sendWithSysFee sends c's method invocation with the fixed system fee
// instead of the estimated one and returns transaction hash. Methods checking
// the GAS left for the execution can't be invoked with the estimated fee.
func sendWithSysFee(t testing.TB, c *neotest.ContractInvoker, sysFee int64, method string, args ...any) util.Uint256 {
	tx := c.NewUnsignedTx(t, c.Hash, method, args...)
	c.SignTx(t, tx, sysFee, c.Signers...)
	c.AddNewBlock(t, tx)
	return tx.Hash()
}

func nativeInvoker(t testing.TB, e *neotest.Executor, name string) *neotest.ContractInvoker {
	h, err := e.Chain.GetNativeContractScriptHash(name)
	require.NoError(t, err)

	return e.CommitteeInvoker(h)
}

// transferGAS sends amount of GAS from the validator to the given account.
func transferGAS(t testing.TB, e *neotest.Executor, to util.Uint160, amount int64) {
	vc := nativeInvoker(t, e, nativenames.Gas).WithSigners(e.Validator)
	vc.Invoke(t, true, "transfer", e.Validator.ScriptHash(), to, amount, nil)
}

func gasBalance(t testing.TB, e *neotest.Executor, acc util.Uint160) int64 {
	s, err := nativeInvoker(t, e, nativenames.Gas).TestInvoke(t, "balanceOf", acc)
	require.NoError(t, err)

	return s.Pop().BigInt().Int64()
}

func storagePrice(t testing.TB, e *neotest.Executor) int64 {
	s, err := nativeInvoker(t, e, nativenames.Policy).TestInvoke(t, "getStoragePrice")
	require.NoError(t, err)

	return s.Pop().BigInt().Int64()
}

// contractEvents returns notifications of the given contract from the
// execution result.
func contractEvents(aer *state.AppExecResult, h util.Uint160) []state.NotificationEvent {
	var res []state.NotificationEvent
	for _, ev := range aer.Events {
		if ev.ScriptHash.Equals(h) {
			res = append(res, ev)
		}
	}
	return res
}

func eventParams(t testing.TB, ev state.NotificationEvent) []stackitem.Item {
	arr, ok := ev.Item.Value().([]stackitem.Item)
	require.True(t, ok, "notification %s is not an array", ev.Name)
	return arr
}

func requireHash160(t testing.TB, expected util.Uint160, item stackitem.Item) {
	b, err := item.TryBytes()
	require.NoError(t, err)

	actual, err := util.Uint160DecodeBytesBE(b)
	require.NoError(t, err)
	require.Equal(t, expected, actual)
}

func requireInteger(t testing.TB, expected int64, item stackitem.Item) {
	n, err := item.TryInteger()
	require.NoError(t, err)
	require.True(t, n.IsInt64())
	require.Equal(t, expected, n.Int64())
}

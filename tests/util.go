package tests

import (
	"encoding/hex"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/config"
	"github.com/nspcc-dev/neo-go/pkg/config/netmode"
	"github.com/nspcc-dev/neo-go/pkg/core"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

// newExecutorWithLogger is similar to newExecutor, but the chain writes its
// log (including contract runtime log) to the given logger.
func newExecutorWithLogger(t *testing.T, log *zap.Logger) *neotest.Executor {
	acc, err := wallet.NewAccount()
	require.NoError(t, err)
	require.NoError(t, acc.ConvertMultisig(1, keys.PublicKeys{acc.PublicKey()}))

	bc, err := core.NewBlockchain(storage.NewMemoryStore(), config.Blockchain{
		ProtocolConfiguration: config.ProtocolConfiguration{
			Magic:              netmode.UnitTestNet,
			MaxTraceableBlocks: chain.MaxTraceableBlocks,
			TimePerBlock:       chain.TimePerBlock,
			StandbyCommittee:   []string{hex.EncodeToString(acc.PublicKey().Bytes())},
			ValidatorsCount:    1,
			VerifyTransactions: true,
		},
	}, log)
	require.NoError(t, err)

	go bc.Run()
	t.Cleanup(bc.Close)

	signer := neotest.NewMultiSigner(acc)
	return neotest.NewExecutor(t, bc, signer, signer)
}

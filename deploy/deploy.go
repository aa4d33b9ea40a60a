package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/ownervault/airdrop-contract/rpc/vault"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for the vault deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions to the
	// blockchain.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by its
	// address. GetContractStateByHash returns error with 'Unknown contract'
	// substring if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// CommonDeployPrm groups common deployment parameters of the smart contract.
type CommonDeployPrm struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

// Prm groups all parameters of the vault deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy the vault to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// It pays for the deployment and determines the contract address.
	LocalAccount *wallet.Account

	// Initial owner of the vault. Zero means LocalAccount.
	Owner util.Uint160

	Contract CommonDeployPrm
}

// ExpectedHash returns address of the contract deployed by the sender.
func ExpectedHash(sender util.Uint160, c CommonDeployPrm) util.Uint160 {
	return state.CreateContractHash(sender, c.NEF.Checksum, c.Manifest.Name)
}

// Deploy deploys the vault contract with the initial owner and waits for the
// deployment transaction to be accepted. If the contract with expected
// address is already on the chain, Deploy returns its address without any
// transactions.
//
// Deploy aborts by context or when the deployment transaction fails.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	sender := prm.LocalAccount.ScriptHash()
	owner := prm.Owner
	if owner.Equals(util.Uint160{}) {
		owner = sender
	}

	addr := ExpectedHash(sender, prm.Contract)
	log := prm.Logger.With(zap.String("address", addr.StringLE()))

	cs, err := prm.Blockchain.GetContractStateByHash(addr)
	if err == nil {
		if cs == nil {
			return util.Uint160{}, errors.New("missing state of the existing contract")
		}

		currentOwner, err := vault.NewReader(invoker.New(prm.Blockchain, nil), addr).Owner()
		if err != nil {
			return util.Uint160{}, fmt.Errorf("read owner of the existing contract: %w", err)
		}

		log.Info("vault contract is already deployed, skip",
			zap.Int32("id", cs.ID), zap.Uint16("updates", cs.UpdateCounter),
			zap.String("owner", currentOwner.StringLE()))

		return addr, nil
	}

	if !isErrContractNotFound(err) {
		return util.Uint160{}, fmt.Errorf("get state of the vault contract by address: %w", err)
	}

	act, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("init transaction sender from single local account: %w", err)
	}

	log.Info("vault contract is missing on the chain, deploying...", zap.String("owner", owner.StringLE()))

	txHash, vub, err := management.New(act).Deploy(&prm.Contract.NEF, &prm.Contract.Manifest, []any{owner})
	if err != nil {
		return util.Uint160{}, fmt.Errorf("send deployment transaction: %w", err)
	}

	log.Debug("deployment transaction sent, waiting...", zap.Stringer("tx", txHash), zap.Uint32("vub", vub))

	aer, err := act.WaitAny(ctx, vub, txHash)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("wait for deployment transaction %s: %w", txHash.StringLE(), err)
	}

	if aer.VMState != vmstate.Halt {
		return util.Uint160{}, fmt.Errorf("deployment transaction %s failed: %s", txHash.StringLE(), aer.FaultException)
	}

	log.Info("vault contract successfully deployed", zap.Stringer("tx", txHash))

	return addr, nil
}

func isErrContractNotFound(err error) bool {
	return strings.Contains(err.Error(), "Unknown contract")
}

package main

import (
	"context"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/ownervault/airdrop-contract/config"
	"github.com/ownervault/airdrop-contract/rpc/vault"
)

// wrapper over Neo RPC providing services needed for the vault commands.
type remoteBlockchain struct {
	rpc   *rpcclient.Client
	actor *actor.Actor

	// nil for read-only commands
	acc *wallet.Account
}

// newRemoteBlockchain dials Neo RPC server of the configured network. If acc
// is nil, random account is used and transactions can not be sent.
func newRemoteBlockchain(ctx context.Context, cfg config.Config, acc *wallet.Account) (*remoteBlockchain, error) {
	endpoint, err := cfg.Endpoint()
	if err != nil {
		return nil, err
	}

	c, err := rpcclient.New(ctx, endpoint, rpcclient.Options{
		DialTimeout:    cfg.DialTimeout,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	signer := acc
	if signer == nil {
		signer, err = wallet.NewAccount()
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("generate new Neo account: %w", err)
		}
	}

	act, err := actor.NewSimple(c, signer)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("init actor: %w", err)
	}

	return &remoteBlockchain{
		rpc:   c,
		actor: act,
		acc:   acc,
	}, nil
}

func (x *remoteBlockchain) close() {
	x.rpc.Close()
}

func (x *remoteBlockchain) reader(h util.Uint160) *vault.ContractReader {
	return vault.NewReader(invoker.New(x.rpc, nil), h)
}

func (x *remoteBlockchain) contract(h util.Uint160) *vault.Contract {
	return vault.New(x.actor, h)
}

// await waits for the sent transaction and returns its execution result if
// it succeeded.
func (x *remoteBlockchain) await(ctx context.Context, h util.Uint256, vub uint32, err error) (*state.AppExecResult, error) {
	if err != nil {
		return nil, fmt.Errorf("send transaction: %w", err)
	}

	aer, err := x.actor.WaitAny(ctx, vub, h)
	if err != nil {
		return nil, fmt.Errorf("wait for transaction %s: %w", h.StringLE(), err)
	}

	if aer.VMState != vmstate.Halt {
		return aer, fmt.Errorf("transaction %s failed: %s", h.StringLE(), aer.FaultException)
	}

	return aer, nil
}

package airdrop

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/ownervault/airdrop-contract/rpc/vault"
	"go.uber.org/zap"
)

// Sender sends airdrop transactions. Implemented by [vault.Contract].
type Sender interface {
	Airdrop(participants []vault.Participant) (util.Uint256, uint32, error)
}

// Waiter awaits transaction execution. Implemented by actor.Actor.
type Waiter interface {
	WaitAny(ctx context.Context, vub uint32, hashes ...util.Uint256) (*state.AppExecResult, error)
}

// ErrChunkFailed is returned by Distributor when some chunk has not been
// paid.
var ErrChunkFailed = errors.New("airdrop chunk failed")

// Prm groups Distributor parameters.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	Sender Sender
	Waiter Waiter

	// Number of participants per transaction. Zero means DefaultChunkSize.
	ChunkSize int

	// Proceed with the next chunks after failed one.
	ContinueOnError bool
}

// ChunkResult describes processing of single chunk.
type ChunkResult struct {
	Index        int
	Participants int
	Amount       *big.Int

	// Zero if transaction has not been sent.
	Tx util.Uint256

	// Events of the vault contract thrown by the transaction.
	Events []vault.EventData

	Err error
}

// Report describes the distribution run.
type Report struct {
	RunID  uuid.UUID
	Chunks []ChunkResult
}

// Failed returns number of failed chunks.
func (r Report) Failed() int {
	var n int
	for i := range r.Chunks {
		if r.Chunks[i].Err != nil {
			n++
		}
	}
	return n
}

// Distributor pays GAS to the participant list by sequential airdrop
// transactions.
type Distributor struct {
	log             *zap.Logger
	sender          Sender
	waiter          Waiter
	chunkSize       int
	continueOnError bool
}

// NewDistributor constructs Distributor from the given parameters.
func NewDistributor(prm Prm) *Distributor {
	d := &Distributor{
		log:             prm.Logger,
		sender:          prm.Sender,
		waiter:          prm.Waiter,
		chunkSize:       prm.ChunkSize,
		continueOnError: prm.ContinueOnError,
	}

	if d.log == nil {
		d.log = zap.NewNop()
	}
	if d.chunkSize == 0 {
		d.chunkSize = DefaultChunkSize
	}

	return d
}

// Distribute splits participants into chunks and sends one airdrop
// transaction per chunk waiting for each of them to be executed. vaultHash
// selects events included into the report.
//
// Distribution stops on the first failed chunk unless Prm.ContinueOnError is
// set, in both cases the returned error wraps ErrChunkFailed if any chunk
// failed. Cancellation of ctx is checked between the chunks. Report is
// returned even on error.
func (d *Distributor) Distribute(ctx context.Context, vaultHash util.Uint160, participants []vault.Participant) (Report, error) {
	rep := Report{RunID: uuid.New()}

	chunks, err := Chunk(participants, d.chunkSize)
	if err != nil {
		return rep, err
	}

	log := d.log.With(zap.Stringer("run", rep.RunID))

	log.Info("starting airdrop",
		zap.Int("participants", len(participants)),
		zap.Int("chunks", len(chunks)),
		zap.Stringer("total", Total(participants)))

	for i := range chunks {
		err = ctx.Err()
		if err != nil {
			log.Info("airdrop interrupted", zap.Int("chunk", i), zap.Error(err))
			return rep, fmt.Errorf("interrupted before chunk #%d: %w", i, err)
		}

		res := d.distributeChunk(ctx, vaultHash, i, chunks[i])
		rep.Chunks = append(rep.Chunks, res)

		if res.Err != nil {
			log.Error("airdrop chunk failed",
				zap.Int("chunk", i), zap.Stringer("tx", res.Tx), zap.Error(res.Err))

			if !d.continueOnError {
				return rep, fmt.Errorf("%w: chunk #%d: %w", ErrChunkFailed, i, res.Err)
			}
			continue
		}

		log.Info("airdrop chunk paid",
			zap.Int("chunk", i),
			zap.Int("participants", res.Participants),
			zap.Stringer("amount", res.Amount),
			zap.Stringer("tx", res.Tx))
	}

	if n := rep.Failed(); n > 0 {
		return rep, fmt.Errorf("%w: %d of %d", ErrChunkFailed, n, len(chunks))
	}

	log.Info("airdrop completed")

	return rep, nil
}

func (d *Distributor) distributeChunk(ctx context.Context, vaultHash util.Uint160, ind int, chunk []vault.Participant) ChunkResult {
	res := ChunkResult{
		Index:        ind,
		Participants: len(chunk),
		Amount:       Total(chunk),
	}

	txHash, vub, err := d.sender.Airdrop(chunk)
	if err != nil {
		res.Err = fmt.Errorf("send transaction: %w", err)
		return res
	}

	res.Tx = txHash

	d.log.Debug("airdrop transaction sent, waiting...",
		zap.Int("chunk", ind), zap.Stringer("tx", txHash), zap.Uint32("vub", vub))

	aer, err := d.waiter.WaitAny(ctx, vub, txHash)
	if err != nil {
		res.Err = fmt.Errorf("wait for transaction: %w", err)
		return res
	}

	if aer.VMState != vmstate.Halt {
		res.Err = fmt.Errorf("transaction faulted: %s", aer.FaultException)
		return res
	}

	res.Events, err = vault.EventsFromAppExecResult(aer, vaultHash)
	if err != nil {
		res.Err = fmt.Errorf("parse events: %w", err)
	}

	return res
}

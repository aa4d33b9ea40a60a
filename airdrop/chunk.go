package airdrop

import (
	"errors"
	"math/big"

	"github.com/ownervault/airdrop-contract/rpc/vault"
)

// DefaultChunkSize is a number of participants paid by single transaction
// by default.
const DefaultChunkSize = 300

// ErrZeroChunkSize is returned by Chunk for zero size.
var ErrZeroChunkSize = errors.New("zero chunk size")

// Chunk splits participants into consecutive chunks of the given size. The
// last chunk may be shorter. Chunks share memory with the input.
func Chunk(participants []vault.Participant, size int) ([][]vault.Participant, error) {
	if size <= 0 {
		return nil, ErrZeroChunkSize
	}

	res := make([][]vault.Participant, 0, (len(participants)+size-1)/size)
	for i := 0; i < len(participants); i += size {
		res = append(res, participants[i:min(i+size, len(participants))])
	}

	return res, nil
}

// Total returns sum of the participant amounts.
func Total(participants []vault.Participant) *big.Int {
	res := new(big.Int)
	for i := range participants {
		res.Add(res, participants[i].Amount)
	}
	return res
}

package common

import "github.com/nspcc-dev/neo-go/pkg/interop"

// ValidAccount panics with ErrInvalidAccount if id is not a script hash.
func ValidAccount(id interop.Hash160) {
	if len(id) != interop.Hash160Len {
		panic(ErrInvalidAccount)
	}
}

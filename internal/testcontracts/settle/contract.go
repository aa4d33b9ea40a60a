package settle

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/ownervault/airdrop-contract/common"
)

func Settle(ok bool, amount int, beneficiary interop.Hash160) bool {
	return common.SettleWithdrawal(ok, amount, beneficiary)
}

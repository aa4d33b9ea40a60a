/*
Package vault implements Owner Vault contract.

Owner Vault is an account holding GAS on behalf of a single owner. The owner
distributes GAS to lists of participants (airdrops), withdraws the spare
balance to any beneficiary and may pass the ownership to another account.
Everything except the views requires the owner witness.

The vault keeps a reserve equal to the storage price of its own persisted
state; only the balance above the reserve can be withdrawn (see
availableWithdraw method). Airdrop transfers are not checked against the
reserve, each of them is an independent payment and the failed ones are
only reported in the execution log.

Withdrawals are two-phase: the transfer is made first and its outcome is
passed to the onWithdraw method of the same contract which is the only place
where the withdrawal is reported. onWithdraw can't be invoked from the outside.

Every event is also written into the execution log as a single JSON line:

	{"standard":"nep333","version":"0.1.0","event":"<name>","data":{...}}

# Contract notifications

ownership_transferred notification. This notification is produced when the
owner is replaced.

	ownership_transferred:
	  - name: old_owner
	    type: Hash160
	  - name: new_owner
	    type: Hash160

balance_withdrawn notification. This notification is produced when a
withdrawal transfer has succeeded.

	balance_withdrawn:
	  - name: amount
	    type: Integer
	  - name: beneficiary
	    type: Hash160
*/
package vault

/*
Contract storage model.

# Summary
Key-value storage format:
  - 'owner' -> interop.Hash160
    current owner of the vault, missing until the contract is initialized
*/

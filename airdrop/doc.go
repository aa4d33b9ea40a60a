/*
Package airdrop distributes GAS from the vault contract to the participant
list read from CSV file.

The list is split into chunks, each chunk is paid by single airdrop
transaction. Transactions are sent one by one, next chunk is sent only after
the previous transaction has been executed.
*/
package airdrop

/*
Package deploy provides deployment of the vault contract to the Neo network.

The contract is deployed by the local account with the initial owner passed
as deployment data, so it is initialized within the same transaction.
*/
package deploy

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/ownervault/airdrop-contract/airdrop"
	"github.com/ownervault/airdrop-contract/config"
	"github.com/ownervault/airdrop-contract/contracts"
	"github.com/ownervault/airdrop-contract/deploy"
	"github.com/ownervault/airdrop-contract/rpc/vault"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newInitConfigCommand(a *app) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write current configuration to the file",
		Long:  "Writes current configuration (except password) to the user configuration file or to the given path.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if path == "" {
				path, err = config.DefaultPath()
				if err != nil {
					return err
				}
			}

			err = config.WriteFile(a.cfg, path)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "out", "o", "", "Output file path")

	return cmd
}

func newDeployCommand(a *app) *cobra.Command {
	var (
		dir   string
		owner string
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the vault contract",
		Long: `Deploys compiled vault contract from the given directory. Wallet account
pays for the deployment and becomes the owner unless another one is set.
Nothing is sent if the contract is already deployed by the account.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := contracts.ReadDir(dir)
			if err != nil {
				return err
			}

			var ownerHash util.Uint160
			if owner != "" {
				ownerHash, err = airdrop.ParseAccount(owner)
				if err != nil {
					return fmt.Errorf("invalid owner: %w", err)
				}
			}

			acc, err := a.account()
			if err != nil {
				return err
			}

			b, err := newRemoteBlockchain(cmd.Context(), a.cfg, acc)
			if err != nil {
				return err
			}
			defer b.close()

			h, err := deploy.Deploy(cmd.Context(), deploy.Prm{
				Logger:       a.log,
				Blockchain:   b.rpc,
				LocalAccount: acc,
				Owner:        ownerHash,
				Contract: deploy.CommonDeployPrm{
					NEF:      c.NEF,
					Manifest: c.Manifest,
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), address.Uint160ToString(h))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", contracts.VaultDir, "Directory with contract.nef and manifest.json")
	cmd.Flags().StringVar(&owner, "owner", "", "Initial owner, wallet account if empty")

	return cmd
}

// runReader executes f against the configured vault without any wallet.
func (a *app) runReader(cmd *cobra.Command, f func(*vault.ContractReader) error) error {
	h, err := a.contractHash()
	if err != nil {
		return err
	}

	b, err := newRemoteBlockchain(cmd.Context(), a.cfg, nil)
	if err != nil {
		return err
	}
	defer b.close()

	return f(b.reader(h))
}

// runContract executes f against the configured vault on behalf of the
// wallet account.
func (a *app) runContract(cmd *cobra.Command, f func(context.Context, *remoteBlockchain, util.Uint160) error) error {
	h, err := a.contractHash()
	if err != nil {
		return err
	}

	acc, err := a.account()
	if err != nil {
		return err
	}

	b, err := newRemoteBlockchain(cmd.Context(), a.cfg, acc)
	if err != nil {
		return err
	}
	defer b.close()

	return f(cmd.Context(), b, h)
}

func newOwnerCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "owner",
		Short: "Print current owner of the vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runReader(cmd, func(r *vault.ContractReader) error {
				owner, err := r.Owner()
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), address.Uint160ToString(owner))
				return nil
			})
		},
	}
}

func newAvailableCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "available",
		Short: "Print amount of GAS available for withdrawal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runReader(cmd, func(r *vault.ContractReader) error {
				amount, err := r.AvailableWithdraw()
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), fixedn.ToString(amount, airdrop.GASDecimals))
				return nil
			})
		},
	}
}

func newContractVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "contract-version",
		Short: "Print version of the deployed vault contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runReader(cmd, func(r *vault.ContractReader) error {
				v, err := r.Version()
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			})
		},
	}
}

func newAirdropCommand(a *app) *cobra.Command {
	var continueOnError bool

	cmd := &cobra.Command{
		Use:   "airdrop <csv>",
		Short: "Distribute GAS to the participant list",
		Long: `Pays GAS from the vault to every participant listed in the CSV file with
'account' and 'amount' columns. Amount is set in GAS. The list is paid by
chunks, one transaction per chunk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			participants, err := airdrop.ParseCSV(f)
			_ = f.Close()
			if err != nil {
				return fmt.Errorf("read participant list: %w", err)
			}

			return a.runContract(cmd, func(ctx context.Context, b *remoteBlockchain, h util.Uint160) error {
				d := airdrop.NewDistributor(airdrop.Prm{
					Logger:          a.log,
					Sender:          b.contract(h),
					Waiter:          b.actor,
					ChunkSize:       a.cfg.ChunkSize,
					ContinueOnError: continueOnError,
				})

				rep, err := d.Distribute(ctx, h, participants)
				for i := range rep.Chunks {
					printEvents(cmd.OutOrStdout(), rep.Chunks[i].Events)
				}
				return err
			})
		},
	}

	cmd.Flags().Int("chunk-size", 0, "Number of participants per transaction")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Send next chunks after failed one")

	return cmd
}

func newWithdrawCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <amount> <beneficiary>",
		Short: "Withdraw GAS from the vault",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := fixedn.FromString(args[0], airdrop.GASDecimals)
			if err != nil {
				return fmt.Errorf("invalid amount: %w", err)
			}

			beneficiary, err := airdrop.ParseAccount(args[1])
			if err != nil {
				return fmt.Errorf("invalid beneficiary: %w", err)
			}

			return a.runContract(cmd, func(ctx context.Context, b *remoteBlockchain, h util.Uint160) error {
				txHash, vub, err := b.contract(h).Withdraw(amount, beneficiary)
				return a.report(ctx, cmd.OutOrStdout(), b, h, txHash, vub, err)
			})
		},
	}
}

func newWithdrawAllCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw-all <beneficiary>",
		Short: "Withdraw all available GAS from the vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			beneficiary, err := airdrop.ParseAccount(args[0])
			if err != nil {
				return fmt.Errorf("invalid beneficiary: %w", err)
			}

			return a.runContract(cmd, func(ctx context.Context, b *remoteBlockchain, h util.Uint160) error {
				txHash, vub, err := b.contract(h).WithdrawAll(beneficiary)
				return a.report(ctx, cmd.OutOrStdout(), b, h, txHash, vub, err)
			})
		},
	}
}

func newTransferOwnershipCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer-ownership <new-owner>",
		Short: "Transfer the vault to another owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			newOwner, err := airdrop.ParseAccount(args[0])
			if err != nil {
				return fmt.Errorf("invalid new owner: %w", err)
			}

			return a.runContract(cmd, func(ctx context.Context, b *remoteBlockchain, h util.Uint160) error {
				txHash, vub, err := b.contract(h).TransferOwnership(newOwner)
				return a.report(ctx, cmd.OutOrStdout(), b, h, txHash, vub, err)
			})
		},
	}
}

// report waits for the transaction and prints vault events thrown by it.
func (a *app) report(ctx context.Context, w io.Writer, b *remoteBlockchain, h util.Uint160, txHash util.Uint256, vub uint32, err error) error {
	var aer *state.AppExecResult

	aer, err = b.await(ctx, txHash, vub, err)
	if err != nil {
		return err
	}

	a.log.Info("transaction accepted", zap.Stringer("tx", txHash), zap.Int64("gas", aer.GasConsumed))

	evs, err := vault.EventsFromAppExecResult(aer, h)
	if err != nil {
		return fmt.Errorf("parse events: %w", err)
	}

	if len(evs) == 0 {
		a.log.Warn("no vault events in the transaction", zap.Stringer("tx", txHash))
	}

	printEvents(w, evs)

	return nil
}

func printEvents(w io.Writer, evs []vault.EventData) {
	for i := range evs {
		fmt.Fprintln(w, evs[i].String())
	}
}

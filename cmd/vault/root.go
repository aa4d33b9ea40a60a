package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/ownervault/airdrop-contract/airdrop"
	"github.com/ownervault/airdrop-contract/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

var version = "dev" // set by the linker

// app is a state shared by the commands.
type app struct {
	configPath string

	cfg config.Config
	log *zap.Logger
}

func newRootCommand() *cobra.Command {
	var a app

	root := &cobra.Command{
		Use:           "vault",
		Short:         "Owner vault contract management",
		Long:          "Deploys the owner vault contract, distributes GAS from it and withdraws the rest.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Path to the configuration file")
	pf.StringP("network", "n", "", "Neo network: mainnet, testnet or localnet")
	pf.StringP("rpc", "r", "", "Neo RPC endpoint overriding network default")
	pf.StringP("wallet", "w", "", "Path to the NEP-6 wallet")
	pf.StringP("account", "a", "", "Wallet account address, default account if empty")
	pf.String("contract", "", "Vault contract address or LE script hash")
	pf.Duration("dial-timeout", 0, "Neo RPC dial timeout")
	pf.Duration("request-timeout", 0, "Neo RPC request timeout")
	pf.String("log-level", "", "Logging level")

	root.AddCommand(
		newInitConfigCommand(&a),
		newDeployCommand(&a),
		newOwnerCommand(&a),
		newAvailableCommand(&a),
		newContractVersionCommand(&a),
		newAirdropCommand(&a),
		newWithdrawCommand(&a),
		newWithdrawAllCommand(&a),
		newTransferOwnershipCommand(&a),
	)

	return root
}

func (a *app) init(cmd *cobra.Command) error {
	var err error

	a.cfg, err = config.Load(cmd, a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a.log, err = newLogger(a.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	c := zap.NewProductionConfig()
	c.Level = lvl
	c.Encoding = "console"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return c.Build()
}

func (a *app) contractHash() (util.Uint160, error) {
	if a.cfg.Contract == "" {
		return util.Uint160{}, errors.New("vault contract is not set")
	}

	h, err := airdrop.ParseAccount(a.cfg.Contract)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("invalid contract: %w", err)
	}

	return h, nil
}

// account opens the configured wallet and returns its unlocked account.
func (a *app) account() (*wallet.Account, error) {
	if a.cfg.Wallet == "" {
		return nil, errors.New("wallet is not set")
	}

	w, err := wallet.NewWalletFromFile(a.cfg.Wallet)
	if err != nil {
		return nil, fmt.Errorf("open wallet: %w", err)
	}
	defer w.Close()

	var acc *wallet.Account
	if a.cfg.Account != "" {
		h, err := airdrop.ParseAccount(a.cfg.Account)
		if err != nil {
			return nil, fmt.Errorf("invalid account: %w", err)
		}

		acc = w.GetAccount(h)
		if acc == nil {
			return nil, fmt.Errorf("account %s is missing in the wallet", a.cfg.Account)
		}
	} else {
		acc = w.GetAccount(w.GetChangeAddress())
		if acc == nil {
			return nil, errors.New("wallet has no default account")
		}
	}

	password := a.cfg.Password
	if password == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, "Password for %s: ", acc.Address)
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
		password = string(b)
	}

	err = acc.Decrypt(password, w.Scrypt)
	if err != nil {
		return nil, fmt.Errorf("unlock account %s: %w", acc.Address, err)
	}

	return acc, nil
}

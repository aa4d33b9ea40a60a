package airdrop

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/ownervault/airdrop-contract/rpc/vault"
)

// GASDecimals is a precision of amounts in the participant list.
const GASDecimals = 8

// Column names of the participant list.
const (
	ColumnAccount = "account"
	ColumnAmount  = "amount"
)

// ErrNegativeAmount is returned for rows with negative amount.
var ErrNegativeAmount = errors.New("negative amount")

// ParseCSV reads participant list from r. The first row is a header naming
// ColumnAccount and ColumnAmount columns (case-insensitive, any order). If
// the header does not name them, account and amount are taken from the first
// and the second columns respectively. Every next row describes single participant: account is either Neo address or
// script hash in LE hex, amount is given in GAS with up to GASDecimals
// decimal places.
//
// Participants are returned in the order of rows.
func ParseCSV(r io.Reader) ([]vault.Participant, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	accCol, amountCol := -1, -1
	for i := range header {
		switch strings.ToLower(strings.TrimSpace(header[i])) {
		case ColumnAccount:
			accCol = i
		case ColumnAmount:
			amountCol = i
		}
	}

	if accCol < 0 || amountCol < 0 {
		if len(header) < 2 {
			return nil, fmt.Errorf("header has %d column(s), need at least 2", len(header))
		}
		if accCol > 0 || amountCol >= 0 && amountCol != 1 {
			return nil, fmt.Errorf("unnamed columns must follow '%s' and '%s' order",
				ColumnAccount, ColumnAmount)
		}
		accCol, amountCol = 0, 1
	}

	var res []vault.Participant

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		line, _ := cr.FieldPos(accCol)

		var p vault.Participant

		p.Account, err = ParseAccount(strings.TrimSpace(rec[accCol]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid account: %w", line, err)
		}

		p.Amount, err = fixedn.FromString(strings.TrimSpace(rec[amountCol]), GASDecimals)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid amount: %w", line, err)
		}
		if p.Amount.Sign() < 0 {
			return nil, fmt.Errorf("line %d: %w", line, ErrNegativeAmount)
		}

		res = append(res, p)
	}
}

// ParseAccount decodes account from Neo address or LE hex script hash.
func ParseAccount(s string) (util.Uint160, error) {
	u, err := address.StringToUint160(s)
	if err == nil {
		return u, nil
	}

	u, hexErr := util.Uint160DecodeStringLE(strings.TrimPrefix(s, "0x"))
	if hexErr != nil {
		return util.Uint160{}, fmt.Errorf("neither address (%w) nor script hash (%w)", err, hexErr)
	}

	return u, nil
}

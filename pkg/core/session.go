package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// Signer signs and submits transactions on behalf of the session's account.
type Signer interface {
	// Simulate performs a dry run of a transaction built from msgs. It never changes chain state.
	// A transaction the chain refused to execute is reported as *RejectionError.
	Simulate(ctx context.Context, msgs []Msg, fee FeeOptions) (SimulateResult, error)
	// Broadcast signs msgs as a single transaction and submits it.
	Broadcast(ctx context.Context, msgs []Msg, fee FeeOptions) (TxResponse, error)
}

// Querier provides read-only access to account state.
type Querier interface {
	Balances(ctx context.Context, address string) (Coins, error)
	Balance(ctx context.Context, address, denom string) (Coin, error)
	Delegations(ctx context.Context, delegator string) ([]Delegation, error)
	Rewards(ctx context.Context, delegator, validator string) (Coins, error)
}

// FeeOptions describes the fee of a transaction.
type FeeOptions struct {
	GasLimit uint64
	GasPrice decimal.Decimal
	FeeDenom string
}

// Fee returns the total fee amount implied by the options.
func (f FeeOptions) Fee() Coin {
	amount := f.GasPrice.Mul(decimal.NewFromInt(int64(f.GasLimit))).Ceil()
	return Coin{Denom: f.FeeDenom, Amount: amount}
}

type SimulateResult struct {
	GasUsed uint64
}

// TxResponse is the receipt of a broadcast transaction.
type TxResponse struct {
	Code    uint32
	TxHash  string
	RawLog  string
	Height  int64
	GasUsed uint64
}

type Delegation struct {
	DelegatorAddress string
	ValidatorAddress string
	Balance          Coin
}

// RejectionError is returned by a Signer when the network refused to execute a transaction.
type RejectionError struct {
	Code uint32
	Log  string
}

func (e *RejectionError) Error() string {
	return e.Log
}

// Session is the ambient context shared by the registry, the draft and the validation engine.
// The zero value, as well as a value created by Unauthenticated, has no signer.
type Session struct {
	Address          string
	AddressPrefix    string
	ValidatorAddress string
	ChainID          string
	GasDenom         string
	Signer           Signer
	Querier          Querier
}

// NewSession creates an authenticated session for the given bech32 address.
func NewSession(address, chainID, gasDenom string, signer Signer, querier Querier) (Session, error) {
	prefix, validator, err := ParseAddress(address)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Address:          address,
		AddressPrefix:    prefix,
		ValidatorAddress: validator,
		ChainID:          chainID,
		GasDenom:         gasDenom,
		Signer:           signer,
		Querier:          querier,
	}, nil
}

// Unauthenticated returns a session without an account. Examples generated for it have empty addresses.
func Unauthenticated(prefix, chainID, gasDenom string) Session {
	return Session{
		AddressPrefix: prefix,
		ChainID:       chainID,
		GasDenom:      gasDenom,
	}
}

func (s Session) IsAuthenticated() bool {
	return s.Signer != nil && s.Address != ""
}

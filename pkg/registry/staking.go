package registry

import (
	"bytes"
	"encoding/base64"

	"github.com/arnac-io/txcomposer/pkg/core"
)

type delegateParams struct {
	DelegatorAddress string `json:"delegator_address"`
	ValidatorAddress string `json:"validator_address"`
	Amount           string `json:"amount"`
}

type redelegateParams struct {
	DelegatorAddress    string `json:"delegator_address"`
	ValidatorSrcAddress string `json:"validator_src_address"`
	ValidatorDstAddress string `json:"validator_dst_address"`
	Amount              string `json:"amount"`
}

type commissionParams struct {
	MaxChangeRate float64 `json:"max_change_rate"`
	MaxRate       float64 `json:"max_rate"`
	Rate          float64 `json:"rate"`
}

type descriptionParams struct {
	Moniker         string `json:"moniker"`
	Identity        string `json:"identity"`
	Website         string `json:"website"`
	SecurityContact string `json:"security_contact"`
	Details         string `json:"details"`
}

type createValidatorParams struct {
	DelegatorAddress  string            `json:"delegator_address"`
	Commission        commissionParams  `json:"commission"`
	Description       descriptionParams `json:"description"`
	Pubkey            string            `json:"pubkey"`
	MinSelfDelegation string            `json:"min_self_delegation"`
	InitialDelegation string            `json:"initial_delegation"`
}

type editValidatorParams struct {
	ValidatorAddress  string            `json:"validator_address"`
	Description       descriptionParams `json:"description"`
	CommissionRate    float64           `json:"commission_rate"`
	MinSelfDelegation string            `json:"min_self_delegation"`
}

// examplePubkey is a syntactically valid ed25519 consensus key.
var examplePubkey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32))

func stakingDescriptors() []Descriptor {
	return []Descriptor{
		{
			Kind:     Delegate,
			Category: "staking",
			example: func(s core.Session) any {
				return delegateParams{
					DelegatorAddress: s.Address,
					ValidatorAddress: exampleValidator(s),
					Amount:           exampleAmount(s, 1),
				}
			},
			refresh: []contextField{account("delegator_address")},
			convert: func(r *reader, _ core.Session) (core.Msg, error) {
				return r.done(core.MsgDelegate{
					DelegatorAddress: r.String("delegator_address"),
					ValidatorAddress: r.String("validator_address"),
					Amount:           r.Coin("amount"),
				})
			},
			info: stakingInfo,
		},
		{
			Kind:     Undelegate,
			Category: "staking",
			example: func(s core.Session) any {
				return delegateParams{
					DelegatorAddress: s.Address,
					ValidatorAddress: exampleValidator(s),
					Amount:           exampleAmount(s, 1),
				}
			},
			refresh: []contextField{account("delegator_address")},
			convert: func(r *reader, _ core.Session) (core.Msg, error) {
				return r.done(core.MsgUndelegate{
					DelegatorAddress: r.String("delegator_address"),
					ValidatorAddress: r.String("validator_address"),
					Amount:           r.Coin("amount"),
				})
			},
			info: stakingInfo,
		},
		{
			Kind:     BeginRedelegate,
			Category: "staking",
			example: func(s core.Session) any {
				return redelegateParams{
					DelegatorAddress:    s.Address,
					ValidatorSrcAddress: exampleValidator(s),
					ValidatorDstAddress: exampleValidator(s),
					Amount:              exampleAmount(s, 1),
				}
			},
			refresh: []contextField{account("delegator_address")},
			convert: func(r *reader, _ core.Session) (core.Msg, error) {
				return r.done(core.MsgBeginRedelegate{
					DelegatorAddress:    r.String("delegator_address"),
					ValidatorSrcAddress: r.String("validator_src_address"),
					ValidatorDstAddress: r.String("validator_dst_address"),
					Amount:              r.Coin("amount"),
				})
			},
			info: stakingInfo,
		},
		{
			Kind:     CreateValidator,
			Category: "staking",
			example: func(s core.Session) any {
				return createValidatorParams{
					DelegatorAddress: s.Address,
					Commission: commissionParams{
						MaxChangeRate: 0.01,
						MaxRate:       0.1,
						Rate:          0.05,
					},
					Description: descriptionParams{
						Moniker:         "My validator's display name",
						Identity:        "ID on keybase.io, to have a logo on explorer and stuff",
						Website:         "example.com",
						SecurityContact: "security@example.com",
						Details:         "We are good",
					},
					Pubkey:            examplePubkey,
					MinSelfDelegation: "1",
					InitialDelegation: exampleAmount(s, 1),
				}
			},
			refresh: []contextField{account("delegator_address")},
			convert: convertCreateValidator,
		},
		{
			Kind:     EditValidator,
			Category: "staking",
			example: func(s core.Session) any {
				return editValidatorParams{
					ValidatorAddress: s.ValidatorAddress,
					Description: descriptionParams{
						Moniker:         "My new validator's display name",
						Identity:        "ID on keybase.io, to have a logo on explorer and stuff",
						Website:         "edited-example.com",
						SecurityContact: "security@edited-example.com",
						Details:         "We are good probably",
					},
					CommissionRate:    0.04,
					MinSelfDelegation: "3",
				}
			},
			refresh: []contextField{validator("validator_address")},
			convert: func(r *reader, _ core.Session) (core.Msg, error) {
				msg := core.MsgEditValidator{
					ValidatorAddress: r.String("validator_address"),
				}
				if d := r.OptionalNested("description"); d != nil {
					description := readDescription(d)
					msg.Description = &description
				}
				msg.CommissionRate = r.OptionalDecimal("commission_rate")
				msg.MinSelfDelegation = r.OptionalDecimal("min_self_delegation")
				return r.done(msg)
			},
		},
	}
}

func convertCreateValidator(r *reader, _ core.Session) (core.Msg, error) {
	delegator := r.String("delegator_address")
	commission := r.Nested("commission")
	description := r.Nested("description")
	msg := core.MsgCreateValidator{
		DelegatorAddress: delegator,
		Commission: core.CommissionRates{
			Rate:          commission.Decimal("rate"),
			MaxRate:       commission.Decimal("max_rate"),
			MaxChangeRate: commission.Decimal("max_change_rate"),
		},
		Description:       readDescription(description),
		Pubkey:            r.String("pubkey"),
		MinSelfDelegation: r.Decimal("min_self_delegation"),
		Value:             r.Coin("initial_delegation"),
	}
	if r.Err() == nil {
		validator, err := core.ValidatorAddress(delegator)
		if err != nil {
			r.fail("delegator_address", "not a valid bech32 address")
		}
		msg.ValidatorAddress = validator
	}
	return r.done(msg)
}

func readDescription(r *reader) core.Description {
	return core.Description{
		Moniker:         r.String("moniker"),
		Identity:        r.OptionalString("identity"),
		Website:         r.OptionalString("website"),
		SecurityContact: r.OptionalString("security_contact"),
		Details:         r.OptionalString("details"),
	}
}

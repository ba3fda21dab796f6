package registry

import (
	"github.com/arnac-io/txcomposer/pkg/core"
)

type fundCommunityPoolParams struct {
	Depositor string `json:"depositor"`
	Amount    string `json:"amount"`
}

type autoRestakeParams struct {
	DelegatorAddress string `json:"delegator_address"`
	ValidatorAddress string `json:"validator_address"`
	Enabled          bool   `json:"enabled"`
}

type withdrawAddressParams struct {
	DelegatorAddress string `json:"delegator_address"`
	WithdrawAddress  string `json:"withdraw_address"`
}

type withdrawRewardParams struct {
	DelegatorAddress string `json:"delegator_address"`
	ValidatorAddress string `json:"validator_address"`
}

type validatorCommissionParams struct {
	ValidatorAddress string `json:"validator_address"`
}

func distributionDescriptors() []Descriptor {
	return []Descriptor{
		{
			Kind:     FundCommunityPool,
			Category: "distribution",
			example: func(s core.Session) any {
				return fundCommunityPoolParams{
					Depositor: s.Address,
					Amount:    exampleAmount(s, 1),
				}
			},
			refresh: []contextField{account("depositor")},
			convert: func(r *reader, _ core.Session) (core.Msg, error) {
				return r.done(core.MsgFundCommunityPool{
					Depositor: r.String("depositor"),
					Amount:    r.Coins("amount"),
				})
			},
			info: bankInfo,
		},
		{
			Kind:     SetAutoRestake,
			Category: "distribution",
			example: func(s core.Session) any {
				return autoRestakeParams{
					DelegatorAddress: s.Address,
					ValidatorAddress: exampleValidator(s),
					Enabled:          true,
				}
			},
			refresh: []contextField{account("delegator_address")},
			convert: func(r *reader, _ core.Session) (core.Msg, error) {
				return r.done(core.MsgSetAutoRestake{
					DelegatorAddress: r.String("delegator_address"),
					ValidatorAddress: r.String("validator_address"),
					Enabled:          r.Bool("enabled"),
				})
			},
			info: stakingInfo,
		},
		{
			Kind:     SetWithdrawAddress,
			Category: "distribution",
			example: func(s core.Session) any {
				return withdrawAddressParams{
					DelegatorAddress: s.Address,
					WithdrawAddress:  exampleAddress(s),
				}
			},
			refresh: []contextField{account("delegator_address")},
			convert: func(r *reader, _ core.Session) (core.Msg, error) {
				return r.done(core.MsgSetWithdrawAddress{
					DelegatorAddress: r.String("delegator_address"),
					WithdrawAddress:  r.String("withdraw_address"),
				})
			},
		},
		{
			Kind:     WithdrawDelegatorReward,
			Category: "distribution",
			example: func(s core.Session) any {
				return withdrawRewardParams{
					DelegatorAddress: s.Address,
					ValidatorAddress: exampleValidator(s),
				}
			},
			refresh: []contextField{account("delegator_address")},
			convert: func(r *reader, _ core.Session) (core.Msg, error) {
				return r.done(core.MsgWithdrawDelegatorReward{
					DelegatorAddress: r.String("delegator_address"),
					ValidatorAddress: r.String("validator_address"),
				})
			},
			info: stakingInfo,
		},
		{
			Kind:     WithdrawValidatorCommission,
			Category: "distribution",
			example: func(s core.Session) any {
				return validatorCommissionParams{ValidatorAddress: s.ValidatorAddress}
			},
			refresh: []contextField{validator("validator_address")},
			convert: func(r *reader, _ core.Session) (core.Msg, error) {
				return r.done(core.MsgWithdrawValidatorCommission{
					ValidatorAddress: r.String("validator_address"),
				})
			},
		},
	}
}

package registry

import (
	"github.com/arnac-io/txcomposer/pkg/core"
)

type unjailParams struct {
	ValidatorAddr string `json:"validator_addr"`
}

func slashingDescriptors() []Descriptor {
	return []Descriptor{
		{
			Kind:     Unjail,
			Category: "slashing",
			example: func(s core.Session) any {
				return unjailParams{ValidatorAddr: s.ValidatorAddress}
			},
			refresh: []contextField{validator("validator_addr")},
			convert: func(r *reader, _ core.Session) (core.Msg, error) {
				return r.done(core.MsgUnjail{
					ValidatorAddr: r.String("validator_addr"),
				})
			},
		},
	}
}

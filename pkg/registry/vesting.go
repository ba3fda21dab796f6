package registry

import (
	"github.com/arnac-io/txcomposer/pkg/core"
)

type vestingAccountParams struct {
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Amount      string `json:"amount"`
	EndTime     string `json:"end_time"`
	Delayed     bool   `json:"delayed"`
}

func vestingDescriptors() []Descriptor {
	return []Descriptor{
		{
			Kind:     CreateVestingAccount,
			Category: "vesting",
			example: func(s core.Session) any {
				return vestingAccountParams{
					FromAddress: s.Address,
					ToAddress:   exampleAddress(s),
					Amount:      exampleAmount(s, 1),
					EndTime:     "2020-09-15T14:00:00Z",
				}
			},
			refresh: []contextField{account("from_address")},
			convert: func(r *reader, _ core.Session) (core.Msg, error) {
				return r.done(core.MsgCreateVestingAccount{
					FromAddress: r.String("from_address"),
					ToAddress:   r.String("to_address"),
					Amount:      r.Coins("amount"),
					EndTime:     r.Time("end_time"),
					Delayed:     r.OptionalBool("delayed"),
				})
			},
		},
	}
}

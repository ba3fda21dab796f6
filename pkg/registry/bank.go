package registry

import (
	"github.com/arnac-io/txcomposer/pkg/core"
)

type sendParams struct {
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Amount      string `json:"amount"`
}

type bankIOParams struct {
	Address string `json:"address"`
	Coins   string `json:"coins"`
}

type multiSendParams struct {
	Inputs  []bankIOParams `json:"inputs"`
	Outputs []bankIOParams `json:"outputs"`
}

func bankDescriptors() []Descriptor {
	return []Descriptor{
		{
			Kind:     Send,
			Category: "bank",
			example: func(s core.Session) any {
				return sendParams{
					FromAddress: s.Address,
					ToAddress:   exampleAddress(s),
					Amount:      exampleAmount(s, 1),
				}
			},
			refresh: []contextField{account("from_address")},
			convert: func(r *reader, _ core.Session) (core.Msg, error) {
				return r.done(core.MsgSend{
					FromAddress: r.String("from_address"),
					ToAddress:   r.String("to_address"),
					Amount:      r.Coins("amount"),
				})
			},
			info: bankInfo,
		},
		{
			Kind:     MultiSend,
			Category: "bank",
			example: func(s core.Session) any {
				return multiSendParams{
					Inputs: []bankIOParams{
						{Address: s.Address, Coins: exampleAmount(s, 2)},
					},
					Outputs: []bankIOParams{
						{Address: exampleAddress(s), Coins: exampleAmount(s, 1)},
						{Address: exampleAddress(s), Coins: exampleAmount(s, 1)},
					},
				}
			},
			refresh: []contextField{account("inputs.0.address").under("inputs.0")},
			convert: func(r *reader, _ core.Session) (core.Msg, error) {
				var msg core.MsgMultiSend
				r.Each("inputs", func(item *reader) {
					msg.Inputs = append(msg.Inputs, bankIO(item))
				})
				r.Each("outputs", func(item *reader) {
					msg.Outputs = append(msg.Outputs, bankIO(item))
				})
				return r.done(msg)
			},
			info: bankInfo,
		},
	}
}

func bankIO(r *reader) core.BankIO {
	return core.BankIO{
		Address: r.String("address"),
		Coins:   r.Coins("coins"),
	}
}

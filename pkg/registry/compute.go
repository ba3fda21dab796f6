package registry

import (
	"encoding/json"

	"github.com/arnac-io/txcomposer/pkg/core"
)

type executeContractParams struct {
	Sender          string          `json:"sender"`
	ContractAddress string          `json:"contract_address"`
	Msg             json.RawMessage `json:"msg"`
	CodeHash        string          `json:"code_hash"`
	SentFunds       string          `json:"sent_funds"`
}

type instantiateContractParams struct {
	Sender    string          `json:"sender"`
	CodeID    uint64          `json:"code_id"`
	InitMsg   json.RawMessage `json:"init_msg"`
	Label     string          `json:"label"`
	InitFunds string          `json:"init_funds"`
	CodeHash  string          `json:"code_hash"`
}

func computeDescriptors() []Descriptor {
	return []Descriptor{
		{
			Kind:     ExecuteContract,
			Category: "compute",
			example: func(s core.Session) any {
				return executeContractParams{
					Sender:          s.Address,
					ContractAddress: exampleAddress(s),
					Msg:             json.RawMessage(`{"create_viewing_key":{"entropy":"bla bla"}}`),
					CodeHash:        "abcdefg",
					SentFunds:       exampleAmount(s, 1),
				}
			},
			refresh: []contextField{account("sender")},
			convert: func(r *reader, _ core.Session) (core.Msg, error) {
				return r.done(core.MsgExecuteContract{
					Sender:    r.String("sender"),
					Contract:  r.String("contract_address"),
					Msg:       r.Object("msg"),
					CodeHash:  r.OptionalString("code_hash"),
					SentFunds: r.OptionalCoins("sent_funds"),
				})
			},
		},
		{
			Kind:     InstantiateContract,
			Category: "compute",
			example: func(s core.Session) any {
				return instantiateContractParams{
					Sender:    s.Address,
					CodeID:    1,
					InitMsg:   json.RawMessage(`{"gm":{"hello":"world"}}`),
					Label:     "gm",
					InitFunds: exampleAmount(s, 1),
					CodeHash:  "abcdefg",
				}
			},
			refresh: []contextField{account("sender")},
			convert: func(r *reader, _ core.Session) (core.Msg, error) {
				return r.done(core.MsgInstantiateContract{
					Sender:    r.String("sender"),
					CodeID:    r.Uint64("code_id"),
					InitMsg:   r.Object("init_msg"),
					Label:     r.String("label"),
					InitFunds: r.OptionalCoins("init_funds"),
					CodeHash:  r.OptionalString("code_hash"),
				})
			},
		},
	}
}

package registry

import (
	"github.com/shopspring/decimal"

	"github.com/arnac-io/txcomposer/pkg/core"
)

type depositParams struct {
	Depositor  string `json:"depositor"`
	ProposalID string `json:"proposal_id"`
	Amount     string `json:"amount"`
}

type voteParams struct {
	Voter      string `json:"voter"`
	ProposalID string `json:"proposal_id"`
	Option     string `json:"option"`
}

type weightedOptionParams struct {
	Option string  `json:"option"`
	Weight float64 `json:"weight"`
}

type voteWeightedParams struct {
	Voter      string                 `json:"voter"`
	ProposalID string                 `json:"proposal_id"`
	Options    []weightedOptionParams `json:"options"`
}

func govDescriptors() []Descriptor {
	return []Descriptor{
		{
			Kind:     Deposit,
			Category: "gov",
			example: func(s core.Session) any {
				return depositParams{
					Depositor:  s.Address,
					ProposalID: "1",
					Amount:     exampleAmount(s, 1),
				}
			},
			refresh: []contextField{account("depositor")},
			convert: func(r *reader, _ core.Session) (core.Msg, error) {
				return r.done(core.MsgDeposit{
					Depositor:  r.String("depositor"),
					ProposalID: r.Uint64("proposal_id"),
					Amount:     r.Coins("amount"),
				})
			},
		},
		{
			Kind:     Vote,
			Category: "gov",
			example: func(s core.Session) any {
				return voteParams{
					Voter:      s.Address,
					ProposalID: "123",
					Option:     "YES",
				}
			},
			refresh: []contextField{account("voter")},
			convert: func(r *reader, _ core.Session) (core.Msg, error) {
				return r.done(core.MsgVote{
					Voter:      r.String("voter"),
					ProposalID: r.Uint64("proposal_id"),
					Option:     r.VoteOption("option"),
				})
			},
		},
		{
			Kind:     VoteWeighted,
			Category: "gov",
			example: func(s core.Session) any {
				return voteWeightedParams{
					Voter:      s.Address,
					ProposalID: "123",
					Options: []weightedOptionParams{
						{Option: "YES", Weight: 0.6},
						{Option: "ABSTAIN", Weight: 0.4},
					},
				}
			},
			refresh: []contextField{account("voter")},
			convert: convertVoteWeighted,
		},
	}
}

func convertVoteWeighted(r *reader, _ core.Session) (core.Msg, error) {
	msg := core.MsgVoteWeighted{
		Voter:      r.String("voter"),
		ProposalID: r.Uint64("proposal_id"),
	}
	total := decimal.Zero
	r.Each("options", func(item *reader) {
		option := core.WeightedVoteOption{
			Option: item.VoteOption("option"),
			Weight: item.Decimal("weight"),
		}
		total = total.Add(option.Weight)
		msg.Options = append(msg.Options, option)
	})
	if r.Err() == nil {
		if len(msg.Options) == 0 {
			r.fail("options", "at least one option is required")
		} else if !total.Equal(decimal.NewFromInt(1)) {
			r.fail("options", "weights must add up to 1, got "+total.String())
		}
	}
	return r.done(msg)
}

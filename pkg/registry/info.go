package registry

import (
	"context"
	"strings"
	"text/tabwriter"

	"github.com/go-faster/errors"
	"github.com/sourcegraph/conc/iter"
	"golang.org/x/exp/slices"

	"github.com/arnac-io/txcomposer/pkg/core"
)

// maxRewardQueries bounds concurrent reward lookups for a single staking summary.
const maxRewardQueries = 8

// Info is a small table rendered next to a message editor.
type Info struct {
	Title   string     `json:"title"`
	Summary string     `json:"summary,omitempty"`
	Columns []string   `json:"columns,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
}

func (i Info) String() string {
	var b strings.Builder
	b.WriteString(i.Title)
	b.WriteByte('\n')
	if i.Summary != "" {
		b.WriteString(i.Summary)
		b.WriteByte('\n')
	}
	if len(i.Rows) == 0 {
		return b.String()
	}
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	w.Write([]byte(strings.Join(i.Columns, "\t") + "\n"))
	for _, row := range i.Rows {
		w.Write([]byte(strings.Join(row, "\t") + "\n"))
	}
	w.Flush()
	return b.String()
}

func displayCoin(c core.Coin) string {
	return core.FormatAmount(c.Amount, core.DisplayExponent) + " " + core.DisplayDenom(c.Denom)
}

func bankInfo(ctx context.Context, s core.Session) (Info, error) {
	if s.Querier == nil || s.Address == "" {
		return Info{}, core.ErrUnauthenticated
	}
	balances, err := s.Querier.Balances(ctx, s.Address)
	if err != nil {
		return Info{}, errors.Wrap(err, "get balances")
	}
	info := Info{Title: "Balances"}
	if len(balances) == 0 {
		info.Summary = "No balance"
		return info, nil
	}
	balances = slices.Clone(balances)
	slices.SortStableFunc(balances, func(a, b core.Coin) int {
		switch {
		case a.Denom == b.Denom:
			return 0
		case a.Denom == s.GasDenom:
			return -1
		case b.Denom == s.GasDenom:
			return 1
		}
		return strings.Compare(a.Denom, b.Denom)
	})
	info.Columns = []string{"Denom", "Amount", "Pretty"}
	for _, c := range balances {
		info.Rows = append(info.Rows, []string{c.Denom, c.Amount.String(), displayCoin(c)})
	}
	return info, nil
}

func stakingInfo(ctx context.Context, s core.Session) (Info, error) {
	if s.Querier == nil || s.Address == "" {
		return Info{}, core.ErrUnauthenticated
	}
	balance, err := s.Querier.Balance(ctx, s.Address, s.GasDenom)
	if err != nil {
		return Info{}, errors.Wrap(err, "get balance")
	}
	delegations, err := s.Querier.Delegations(ctx, s.Address)
	if err != nil {
		return Info{}, errors.Wrap(err, "get delegations")
	}
	mapper := iter.Mapper[core.Delegation, core.Coins]{MaxGoroutines: maxRewardQueries}
	rewards, err := mapper.MapErr(delegations, func(d *core.Delegation) (core.Coins, error) {
		return s.Querier.Rewards(ctx, s.Address, d.ValidatorAddress)
	})
	if err != nil {
		return Info{}, errors.Wrap(err, "get rewards")
	}
	info := Info{
		Title:   "Staking",
		Summary: "Balance: " + displayCoin(balance),
	}
	if len(delegations) == 0 {
		info.Summary += ", no delegations"
		return info, nil
	}
	info.Columns = []string{"Validator", "Delegated", "Pending rewards"}
	for i, d := range delegations {
		reward := core.Coin{Denom: s.GasDenom}
		for _, c := range rewards[i] {
			if c.Denom == s.GasDenom {
				reward.Amount = c.Amount.Floor()
			}
		}
		info.Rows = append(info.Rows, []string{d.ValidatorAddress, displayCoin(d.Balance), displayCoin(reward)})
	}
	return info, nil
}

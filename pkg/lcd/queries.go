package lcd

import (
	"context"
	"net/url"

	"github.com/arnac-io/txcomposer/pkg/core"
)

func (c *Client) Balances(ctx context.Context, address string) (core.Coins, error) {
	var resp struct {
		Balances core.Coins `json:"balances"`
	}
	query := url.Values{"pagination.limit": {"1000"}}
	if err := c.get(ctx, "balances", "/cosmos/bank/v1beta1/balances/"+url.PathEscape(address), query, &resp); err != nil {
		return nil, err
	}
	return resp.Balances, nil
}

func (c *Client) Balance(ctx context.Context, address, denom string) (core.Coin, error) {
	var resp struct {
		Balance core.Coin `json:"balance"`
	}
	query := url.Values{"denom": {denom}}
	if err := c.get(ctx, "balance", "/cosmos/bank/v1beta1/balances/"+url.PathEscape(address)+"/by_denom", query, &resp); err != nil {
		return core.Coin{}, err
	}
	if resp.Balance.Denom == "" {
		resp.Balance.Denom = denom
	}
	return resp.Balance, nil
}

func (c *Client) Delegations(ctx context.Context, delegator string) ([]core.Delegation, error) {
	var resp struct {
		DelegationResponses []struct {
			Delegation struct {
				DelegatorAddress string `json:"delegator_address"`
				ValidatorAddress string `json:"validator_address"`
			} `json:"delegation"`
			Balance core.Coin `json:"balance"`
		} `json:"delegation_responses"`
	}
	query := url.Values{"pagination.limit": {"1000"}}
	if err := c.get(ctx, "delegations", "/cosmos/staking/v1beta1/delegations/"+url.PathEscape(delegator), query, &resp); err != nil {
		return nil, err
	}
	delegations := make([]core.Delegation, 0, len(resp.DelegationResponses))
	for _, d := range resp.DelegationResponses {
		delegations = append(delegations, core.Delegation{
			DelegatorAddress: d.Delegation.DelegatorAddress,
			ValidatorAddress: d.Delegation.ValidatorAddress,
			Balance:          d.Balance,
		})
	}
	return delegations, nil
}

// Rewards returns the pending rewards of a delegation. Amounts may be fractional.
func (c *Client) Rewards(ctx context.Context, delegator, validator string) (core.Coins, error) {
	var resp struct {
		Rewards core.Coins `json:"rewards"`
	}
	path := "/cosmos/distribution/v1beta1/delegators/" + url.PathEscape(delegator) + "/rewards/" + url.PathEscape(validator)
	if err := c.get(ctx, "rewards", path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Rewards, nil
}

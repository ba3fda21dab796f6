package signer

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/arnac-io/txcomposer/pkg/core"
)

// SessionProvider builds sessions for the account held by the signer daemon.
type SessionProvider struct {
	client   *Client
	querier  core.Querier
	prefix   string
	chainID  string
	gasDenom string
}

func NewSessionProvider(client *Client, querier core.Querier, prefix, chainID, gasDenom string) *SessionProvider {
	return &SessionProvider{
		client:   client,
		querier:  querier,
		prefix:   prefix,
		chainID:  chainID,
		gasDenom: gasDenom,
	}
}

// Connect asks the daemon for its account and returns an authenticated session for it.
func (p *SessionProvider) Connect(ctx context.Context) (core.Session, error) {
	account, err := p.client.Account(ctx)
	if err != nil {
		return core.Session{}, errors.Wrap(err, "get signer account")
	}
	if account.ChainID != "" && account.ChainID != p.chainID {
		return core.Session{}, fmt.Errorf("signer is connected to %s, expected %s", account.ChainID, p.chainID)
	}
	s, err := core.NewSession(account.Address, p.chainID, p.gasDenom, p.client, p.querier)
	if err != nil {
		return core.Session{}, err
	}
	if s.AddressPrefix != p.prefix {
		return core.Session{}, fmt.Errorf("signer address %s does not have prefix %s", account.Address, p.prefix)
	}
	return s, nil
}

func (p *SessionProvider) Disconnected() core.Session {
	s := core.Unauthenticated(p.prefix, p.chainID, p.gasDenom)
	s.Querier = p.querier
	return s
}

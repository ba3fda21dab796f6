package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Coin is an amount of a single denomination.
// Amount is kept as a decimal so the same type can carry reward (DecCoin) values returned by the chain.
type Coin struct {
	Denom  string          `json:"denom"`
	Amount decimal.Decimal `json:"amount"`
}

// Coins is an ordered list of Coin.
type Coins []Coin

// coinRe matches "<integer amount><denom>", e.g. "1uscrt" or "10ibc/ABCD".
var coinRe = regexp.MustCompile(`^([0-9]+)\s*([a-zA-Z][a-zA-Z0-9/:._-]{2,127})$`)

func NewCoin(amount int64, denom string) Coin {
	return Coin{Denom: denom, Amount: decimal.NewFromInt(amount)}
}

func (c Coin) String() string {
	return c.Amount.String() + c.Denom
}

func (c Coins) String() string {
	parts := make([]string, 0, len(c))
	for _, coin := range c {
		parts = append(parts, coin.String())
	}
	return strings.Join(parts, ",")
}

// ParseCoin parses the "<amount><denom>" shorthand.
func ParseCoin(s string) (Coin, error) {
	s = strings.TrimSpace(s)
	m := coinRe.FindStringSubmatch(s)
	if m == nil {
		return Coin{}, fmt.Errorf("invalid coin %q: expected <amount><denom>, e.g. 1uscrt", s)
	}
	amount, err := decimal.NewFromString(m[1])
	if err != nil {
		return Coin{}, fmt.Errorf("invalid coin amount %q: %w", m[1], err)
	}
	return Coin{Denom: m[2], Amount: amount}, nil
}

// ParseCoins parses a comma separated list of coins, e.g. "1uscrt,2uatom".
func ParseCoins(s string) (Coins, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty coin list")
	}
	var coins Coins
	for _, part := range strings.Split(s, ",") {
		coin, err := ParseCoin(part)
		if err != nil {
			return nil, err
		}
		coins = append(coins, coin)
	}
	return coins, nil
}

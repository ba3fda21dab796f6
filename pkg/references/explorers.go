package references

import (
	"strings"

	"github.com/puzpuzpuz/xsync/v2"
)

// TxExplorers maps a chain id to the URL prefix of its transaction explorer page.
var TxExplorers = map[string]string{
	"secret-4":    "https://www.mintscan.io/secret/txs",
	"pulsar-3":    "https://testnet.ping.pub/secret/tx",
	"secretdev-1": "http://localhost:3000/tx",
}

// ExplorerResolver builds transaction links. Configured overrides take precedence over TxExplorers.
type ExplorerResolver struct {
	overrides *xsync.MapOf[string, string]
}

func NewExplorerResolver(overrides map[string]string) *ExplorerResolver {
	r := &ExplorerResolver{overrides: xsync.NewMapOf[string]()}
	for chainID, prefix := range overrides {
		r.Set(chainID, prefix)
	}
	return r
}

func (r *ExplorerResolver) Set(chainID, prefix string) {
	r.overrides.Store(chainID, strings.TrimSuffix(prefix, "/"))
}

// Link returns the explorer page of a transaction. Unknown chains have no link.
func (r *ExplorerResolver) Link(chainID, txHash string) (string, bool) {
	if txHash == "" {
		return "", false
	}
	prefix, ok := r.overrides.Load(chainID)
	if !ok {
		prefix, ok = TxExplorers[chainID]
	}
	if !ok {
		return "", false
	}
	return prefix + "/" + txHash, true
}

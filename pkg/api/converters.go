package api

import (
	"github.com/arnac-io/txcomposer/pkg/composer"
	"github.com/arnac-io/txcomposer/pkg/core"
	"github.com/arnac-io/txcomposer/pkg/i18n"
	"github.com/arnac-io/txcomposer/pkg/registry"
)

type Session struct {
	Authenticated    bool   `json:"authenticated"`
	Address          string `json:"address,omitempty"`
	ValidatorAddress string `json:"validator_address,omitempty"`
	ChainID          string `json:"chain_id"`
	GasDenom         string `json:"gas_denom"`
}

func convertSession(s core.Session) Session {
	return Session{
		Authenticated:    s.IsAuthenticated(),
		Address:          s.Address,
		ValidatorAddress: s.ValidatorAddress,
		ChainID:          s.ChainID,
		GasDenom:         s.GasDenom,
	}
}

type MessageTypes struct {
	MessageTypes []composer.MessageType `json:"message_types"`
}

type setTypeRequest struct {
	Type string `json:"type"`
}

type setInputRequest struct {
	Input string `json:"input"`
}

type errorJSON struct {
	Error string `json:"error"`
}

// localizeInfo translates the fixed texts of an info table. Table cells are data and stay as is.
func localizeInfo(lang string, info registry.Info) registry.Info {
	info.Title = i18n.Text(lang, info.Title)
	info.Summary = i18n.Text(lang, info.Summary)
	columns := make([]string, len(info.Columns))
	for i, c := range info.Columns {
		columns[i] = i18n.Text(lang, c)
	}
	info.Columns = columns
	return info
}

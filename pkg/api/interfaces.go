package api

import (
	"context"

	"github.com/arnac-io/txcomposer/pkg/broadcast"
	"github.com/arnac-io/txcomposer/pkg/composer"
	"github.com/arnac-io/txcomposer/pkg/core"
	"github.com/arnac-io/txcomposer/pkg/draft"
	"github.com/arnac-io/txcomposer/pkg/registry"
)

type draftComposer interface {
	MessageTypes() []composer.MessageType
	View(ctx context.Context) (composer.View, error)
	AddSlot(ctx context.Context) (draft.Slot, error)
	SetType(ctx context.Context, i int, msgType string) (draft.Slot, error)
	SetInput(ctx context.Context, i int, text string) (draft.Slot, error)
	DeleteSlot(ctx context.Context, k int) (draft.Draft, error)
	// Info renders the info table of the message type selected in slot i.
	Info(ctx context.Context, i int) (registry.Info, error)

	Session() core.Session
	SetSession(ctx context.Context, s core.Session) error

	Submit(ctx context.Context) (bool, error)
	Outcome() broadcast.Outcome
	Dismiss() bool
}

// sessions connects to the account held by the signer.
type sessions interface {
	Connect(ctx context.Context) (core.Session, error)
	Disconnected() core.Session
}

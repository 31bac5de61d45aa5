// Package store persists channels and messages.
package store

import (
	"context"

	"msgsvc/types"
)

// MessageWindow caps how many messages GetMessages returns.
const MessageWindow = 50

// Store is safe for concurrent use. Update methods return nil, nil when no
// document matched the id.
type Store interface {
	InsertChannel(ctx context.Context, channel *types.Channel) (*types.Channel, error)
	GetChannels(ctx context.Context, query ChannelQuery) ([]types.Channel, error)
	UpdateChannel(ctx context.Context, id string, updates ChannelUpdates) (*types.Channel, error)
	DeleteChannel(ctx context.Context, id string) (DeleteResult, error)

	InsertMessage(ctx context.Context, message *types.Message) (*types.Message, error)
	GetMessages(ctx context.Context, query MessageQuery) ([]types.Message, error)
	UpdateMessage(ctx context.Context, id string, updates MessageUpdates) (*types.Message, error)
	DeleteMessages(ctx context.Context, query MessageQuery) (DeleteResult, error)

	Close(ctx context.Context) error
}

// ChannelQuery matches channels by equality. Empty fields are ignored.
type ChannelQuery struct {
	ID   string
	Name string
}

// MessageQuery matches messages by equality. Empty fields are ignored.
type MessageQuery struct {
	ID        string
	ChannelID string
}

// ChannelUpdates is a partial update; nil fields are left untouched.
type ChannelUpdates struct {
	Name        *string
	Description *string
	EditedAt    int64
}

type MessageUpdates struct {
	Body     *string
	EditedAt int64
}

// DeleteResult mirrors the summary document mongod returns for a delete.
type DeleteResult struct {
	N  int64 `json:"n"`
	OK int   `json:"ok"`
}

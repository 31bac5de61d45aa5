package channels

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"msgsvc/store"
	"msgsvc/types"
)

const (
	GeneralChannelName        = "general"
	generalChannelDescription = "generic channel"
)

// EnsureGeneralChannel creates the "general" channel if it does not exist yet.
// It runs once at startup.
func EnsureGeneralChannel(ctx context.Context, s store.Store, log logrus.FieldLogger) error {
	existing, err := s.GetChannels(ctx, store.ChannelQuery{Name: GeneralChannelName})
	if err != nil {
		return errors.Wrap(err, ErrStartCheckGeneral)
	}
	if len(existing) > 0 {
		return nil
	}

	now := types.NowMillis()
	channel, err := s.InsertChannel(ctx, types.NewChannel(types.ChannelFields{
		Name:        GeneralChannelName,
		Description: generalChannelDescription,
		Creator:     types.SystemIdentity,
		CreatedAt:   now,
		EditedAt:    now,
	}))
	if err != nil {
		return errors.Wrap(err, "error creating general channel")
	}
	log.WithField("channel_id", channel.ID).Info("created general channel")
	return nil
}

package types

// ChannelFields is the field bag a new channel is built from.
type ChannelFields struct {
	Name        string
	Description string
	Creator     Identity
	CreatedAt   int64
	EditedAt    int64
}

type Channel struct {
	ID          string   `json:"id" bson:"_id"`
	Name        string   `json:"name" bson:"name"`
	Description string   `json:"description" bson:"description"`
	Creator     Identity `json:"creator" bson:"creator"`
	CreatedAt   int64    `json:"createdAt" bson:"createdAt"`
	EditedAt    int64    `json:"editedAt" bson:"editedAt"`
}

// NewChannel assigns a fresh id and copies fields verbatim. It does not validate.
func NewChannel(fields ChannelFields) *Channel {
	return &Channel{
		ID:          NewID(),
		Name:        fields.Name,
		Description: fields.Description,
		Creator:     fields.Creator,
		CreatedAt:   fields.CreatedAt,
		EditedAt:    fields.EditedAt,
	}
}

// Doc returns the persisted form of the channel.
func (ch *Channel) Doc() Channel {
	return *ch
}

package types

type MessageFields struct {
	ChannelID string
	Body      string
	Creator   Identity
	CreatedAt int64
	EditedAt  int64
}

type Message struct {
	ID        string   `json:"id" bson:"_id"`
	ChannelID string   `json:"channelID" bson:"channelID"`
	Body      string   `json:"body" bson:"body"`
	Creator   Identity `json:"creator" bson:"creator"`
	CreatedAt int64    `json:"createdAt" bson:"createdAt"`
	EditedAt  int64    `json:"editedAt" bson:"editedAt"`
}

// NewMessage assigns a fresh id and copies fields verbatim.
func NewMessage(fields MessageFields) *Message {
	return &Message{
		ID:        NewID(),
		ChannelID: fields.ChannelID,
		Body:      fields.Body,
		Creator:   fields.Creator,
		CreatedAt: fields.CreatedAt,
		EditedAt:  fields.EditedAt,
	}
}

func (m *Message) Doc() Message {
	return *m
}

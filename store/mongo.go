package store

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"msgsvc/types"
)

const (
	ChannelCollection = "channelsCollection"
	MessageCollection = "messagesCollection"
)

// MongoStore keeps channels and messages in two MongoDB collections. Ids are
// stored as hex strings in _id.
type MongoStore struct {
	client   *mongo.Client
	channels *mongo.Collection
	messages *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore uses the named database on an already connected client.
func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	database := client.Database(dbName)
	return &MongoStore{
		client:   client,
		channels: database.Collection(ChannelCollection),
		messages: database.Collection(MessageCollection),
	}
}

// EnsureIndexes creates the index backing the per-channel message window.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "channelID", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return errors.Wrap(err, "error creating message index")
}

func channelFilter(q ChannelQuery) bson.D {
	filter := bson.D{}
	if q.ID != "" {
		filter = append(filter, bson.E{Key: "_id", Value: q.ID})
	}
	if q.Name != "" {
		filter = append(filter, bson.E{Key: "name", Value: q.Name})
	}
	return filter
}

func messageFilter(q MessageQuery) bson.D {
	filter := bson.D{}
	if q.ID != "" {
		filter = append(filter, bson.E{Key: "_id", Value: q.ID})
	}
	if q.ChannelID != "" {
		filter = append(filter, bson.E{Key: "channelID", Value: q.ChannelID})
	}
	return filter
}

func (s *MongoStore) InsertChannel(ctx context.Context, channel *types.Channel) (*types.Channel, error) {
	if _, err := s.channels.InsertOne(ctx, channel.Doc()); err != nil {
		return nil, errors.Wrap(err, "error inserting channel")
	}
	return channel, nil
}

func (s *MongoStore) GetChannels(ctx context.Context, query ChannelQuery) ([]types.Channel, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.channels.Find(ctx, channelFilter(query), opts)
	if err != nil {
		return nil, errors.Wrap(err, "error querying channels")
	}
	channels := []types.Channel{}
	if err := cur.All(ctx, &channels); err != nil {
		return nil, errors.Wrap(err, "error decoding channels")
	}
	return channels, nil
}

func (s *MongoStore) UpdateChannel(ctx context.Context, id string, updates ChannelUpdates) (*types.Channel, error) {
	set := bson.D{}
	if updates.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *updates.Name})
	}
	if updates.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *updates.Description})
	}
	if updates.EditedAt != 0 {
		set = append(set, bson.E{Key: "editedAt", Value: updates.EditedAt})
	}

	var ch types.Channel
	if err := s.findOneAndSet(ctx, s.channels, id, set, &ch); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, errors.Wrap(err, "error updating channel")
	}
	return &ch, nil
}

func (s *MongoStore) DeleteChannel(ctx context.Context, id string) (DeleteResult, error) {
	res, err := s.channels.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return DeleteResult{}, errors.Wrap(err, "error deleting channel")
	}
	return DeleteResult{N: res.DeletedCount, OK: 1}, nil
}

func (s *MongoStore) InsertMessage(ctx context.Context, message *types.Message) (*types.Message, error) {
	if _, err := s.messages.InsertOne(ctx, message.Doc()); err != nil {
		return nil, errors.Wrap(err, "error inserting message")
	}
	return message, nil
}

func (s *MongoStore) GetMessages(ctx context.Context, query MessageQuery) ([]types.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(MessageWindow)
	cur, err := s.messages.Find(ctx, messageFilter(query), opts)
	if err != nil {
		return nil, errors.Wrap(err, "error querying messages")
	}
	messages := []types.Message{}
	if err := cur.All(ctx, &messages); err != nil {
		return nil, errors.Wrap(err, "error decoding messages")
	}
	return messages, nil
}

func (s *MongoStore) UpdateMessage(ctx context.Context, id string, updates MessageUpdates) (*types.Message, error) {
	set := bson.D{}
	if updates.Body != nil {
		set = append(set, bson.E{Key: "body", Value: *updates.Body})
	}
	if updates.EditedAt != 0 {
		set = append(set, bson.E{Key: "editedAt", Value: updates.EditedAt})
	}

	var msg types.Message
	if err := s.findOneAndSet(ctx, s.messages, id, set, &msg); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, errors.Wrap(err, "error updating message")
	}
	return &msg, nil
}

func (s *MongoStore) DeleteMessages(ctx context.Context, query MessageQuery) (DeleteResult, error) {
	res, err := s.messages.DeleteMany(ctx, messageFilter(query))
	if err != nil {
		return DeleteResult{}, errors.Wrap(err, "error deleting messages")
	}
	return DeleteResult{N: res.DeletedCount, OK: 1}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// findOneAndSet applies $set to the document with the given id and decodes the
// post-update document into out. An empty set only reads the document, since
// mongod rejects an empty $set.
func (s *MongoStore) findOneAndSet(ctx context.Context, col *mongo.Collection, id string, set bson.D, out interface{}) error {
	filter := bson.D{{Key: "_id", Value: id}}
	if len(set) == 0 {
		return col.FindOne(ctx, filter).Decode(out)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return col.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: set}}, opts).Decode(out)
}

package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"msgsvc/types"
)

// SQLiteStore keeps channels and messages in a sqlite database. It is meant
// for single-node deployments and tests; production runs on MongoStore.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore wraps an open connection. Call EnsureSchema first.
func NewSQLiteStore(conn *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: conn}
}

const (
	channelColumns = `id, name, description, creator, created_at, edited_at`
	messageColumns = `id, channel_id, body, creator, created_at, edited_at`
)

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanChannel(row scanner) (types.Channel, error) {
	var ch types.Channel
	err := row.Scan(&ch.ID, &ch.Name, &ch.Description, &ch.Creator, &ch.CreatedAt, &ch.EditedAt)
	return ch, err
}

func scanMessage(row scanner) (types.Message, error) {
	var msg types.Message
	err := row.Scan(&msg.ID, &msg.ChannelID, &msg.Body, &msg.Creator, &msg.CreatedAt, &msg.EditedAt)
	return msg, err
}

// where renders equality conditions for the non-empty values.
func where(conds map[string]string) (string, []interface{}) {
	var clauses []string
	var args []interface{}
	// fixed column order keeps the statement text stable
	for _, col := range []string{"id", "name", "channel_id"} {
		v, ok := conds[col]
		if !ok || v == "" {
			continue
		}
		clauses = append(clauses, col+" = ?")
		args = append(args, v)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// nullable maps an unset partial-update field to NULL so COALESCE keeps the
// stored value.
func nullable(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func (s *SQLiteStore) InsertChannel(ctx context.Context, channel *types.Channel) (*types.Channel, error) {
	doc := channel.Doc()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO channels (`+channelColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Name, doc.Description, string(doc.Creator), doc.CreatedAt, doc.EditedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "error inserting channel")
	}
	return channel, nil
}

func (s *SQLiteStore) GetChannels(ctx context.Context, query ChannelQuery) ([]types.Channel, error) {
	clause, args := where(map[string]string{"id": query.ID, "name": query.Name})
	rows, err := s.db.QueryContext(ctx, `SELECT `+channelColumns+` FROM channels`+clause+` ORDER BY created_at ASC, id ASC`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error querying channels")
	}
	defer rows.Close()

	channels := []types.Channel{}
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error scanning channel")
		}
		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating channels")
	}
	return channels, nil
}

func (s *SQLiteStore) UpdateChannel(ctx context.Context, id string, updates ChannelUpdates) (*types.Channel, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE channels
		SET name = COALESCE(?, name),
			description = COALESCE(?, description),
			edited_at = COALESCE(NULLIF(?, 0), edited_at)
		WHERE id = ?
		RETURNING `+channelColumns,
		nullable(updates.Name), nullable(updates.Description), updates.EditedAt, id,
	)
	ch, err := scanChannel(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "error updating channel")
	}
	return &ch, nil
}

func (s *SQLiteStore) DeleteChannel(ctx context.Context, id string) (DeleteResult, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM channels WHERE id = ?`, id)
	if err != nil {
		return DeleteResult{}, errors.Wrap(err, "error deleting channel")
	}
	n, _ := res.RowsAffected()
	return DeleteResult{N: n, OK: 1}, nil
}

func (s *SQLiteStore) InsertMessage(ctx context.Context, message *types.Message) (*types.Message, error) {
	doc := message.Doc()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (`+messageColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.ChannelID, doc.Body, string(doc.Creator), doc.CreatedAt, doc.EditedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "error inserting message")
	}
	return message, nil
}

func (s *SQLiteStore) GetMessages(ctx context.Context, query MessageQuery) ([]types.Message, error) {
	clause, args := where(map[string]string{"id": query.ID, "channel_id": query.ChannelID})
	args = append(args, MessageWindow)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages`+clause+`
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error querying messages")
	}
	defer rows.Close()

	messages := []types.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error scanning message")
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating messages")
	}
	return messages, nil
}

func (s *SQLiteStore) UpdateMessage(ctx context.Context, id string, updates MessageUpdates) (*types.Message, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE messages
		SET body = COALESCE(?, body),
			edited_at = COALESCE(NULLIF(?, 0), edited_at)
		WHERE id = ?
		RETURNING `+messageColumns,
		nullable(updates.Body), updates.EditedAt, id,
	)
	msg, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "error updating message")
	}
	return &msg, nil
}

func (s *SQLiteStore) DeleteMessages(ctx context.Context, query MessageQuery) (DeleteResult, error) {
	clause, args := where(map[string]string{"id": query.ID, "channel_id": query.ChannelID})
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages`+clause, args...)
	if err != nil {
		return DeleteResult{}, errors.Wrap(err, "error deleting messages")
	}
	n, _ := res.RowsAffected()
	return DeleteResult{N: n, OK: 1}, nil
}

func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}

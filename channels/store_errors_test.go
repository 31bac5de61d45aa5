package channels

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgsvc/store"
	"msgsvc/types"
)

// flakyStore wraps a working store and fails the calls named in failing.
type flakyStore struct {
	store.Store
	failing map[string]bool
}

var errUnavailable = errors.New("connection refused")

func (f *flakyStore) GetChannels(ctx context.Context, q store.ChannelQuery) ([]types.Channel, error) {
	if f.failing["GetChannels"] {
		return nil, errUnavailable
	}
	return f.Store.GetChannels(ctx, q)
}

func (f *flakyStore) InsertMessage(ctx context.Context, m *types.Message) (*types.Message, error) {
	if f.failing["InsertMessage"] {
		return nil, errUnavailable
	}
	return f.Store.InsertMessage(ctx, m)
}

func (f *flakyStore) DeleteMessages(ctx context.Context, q store.MessageQuery) (store.DeleteResult, error) {
	if f.failing["DeleteMessages"] {
		return store.DeleteResult{}, errUnavailable
	}
	return f.Store.DeleteMessages(ctx, q)
}

func newFlakyEnv(t *testing.T) (*testEnv, *flakyStore) {
	t.Helper()
	flaky := &flakyStore{Store: setupSQLiteStore(t), failing: map[string]bool{}}
	return &testEnv{t: t, store: flaky, router: newRouter(flaky)}, flaky
}

func TestStoreFailuresBecomeErrorPayloads(t *testing.T) {
	env, flaky := newFlakyEnv(t)
	dev := env.createChannel(alice, "dev")

	flaky.failing["InsertMessage"] = true
	assert.Equal(t, errUnavailable.Error(), errorOf(t, env.do(http.MethodPost, "/v1/channels/"+dev.ID, alice, gin.H{"body": "hi"})))

	flaky.failing["GetChannels"] = true
	assert.Equal(t, errUnavailable.Error(), errorOf(t, env.do(http.MethodGet, "/v1/channels", alice, nil)))
	assert.Equal(t, errUnavailable.Error(), errorOf(t, env.do(http.MethodPost, "/v1/channels", alice, gin.H{"name": "ops"})))
	assert.Equal(t, errUnavailable.Error(), errorOf(t, env.do(http.MethodPatch, "/v1/channels/"+dev.ID, alice, gin.H{"name": "x"})))
}

func TestDeleteChannelReportsOrphanedMessages(t *testing.T) {
	env, flaky := newFlakyEnv(t)
	dev := env.createChannel(alice, "dev")
	env.postMessage(alice, dev.ID, "orphan")

	flaky.failing["DeleteMessages"] = true
	rec := env.do(http.MethodDelete, "/v1/channels/"+dev.ID, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"result":{"n":1,"ok":1},"error":"connection refused"}`, rec.Body.String())

	// the channel is gone, its messages are not
	channels, err := flaky.Store.GetChannels(context.Background(), store.ChannelQuery{ID: dev.ID})
	require.NoError(t, err)
	assert.Empty(t, channels)
	msgs, err := flaky.Store.GetMessages(context.Background(), store.MessageQuery{ChannelID: dev.ID})
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestEnsureGeneralChannelPropagatesStoreErrors(t *testing.T) {
	flaky := &flakyStore{Store: setupSQLiteStore(t), failing: map[string]bool{"GetChannels": true}}

	err := EnsureGeneralChannel(context.Background(), flaky, quietLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnavailable)
	assert.Contains(t, err.Error(), ErrStartCheckGeneral)
}

package session

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, 30*time.Minute), mr
}

func TestStore_LoadUnknownStartsNewSession(t *testing.T) {
	store, _ := setupTestStore(t)

	for _, id := range []string{"", "not-a-uuid", "3f2c3cf4-6f43-4b8e-9a4b-1d7c3d0f0a11"} {
		sess, err := store.Load(context.Background(), id)
		require.NoError(t, err)
		assert.NotEqual(t, id, sess.ID())
		assert.NotEmpty(t, sess.FormKey())
		assert.False(t, sess.LoggedIn())
	}
}

func TestStore_SaveAndLoadRoundTrip(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	sess, err := store.New()
	require.NoError(t, err)
	sess.SetCustomerID("cust-1")
	sess.AddSuccess("You saved the address.")
	sess.StashAddressForm(url.Values{"city": {"CityM"}, "street[]": {"a", "b"}})
	require.NoError(t, store.Save(ctx, sess))

	assert.True(t, mr.Exists("session:"+sess.ID()))
	assert.Equal(t, 30*time.Minute, mr.TTL("session:"+sess.ID()))

	loaded, err := store.Load(ctx, sess.ID())
	require.NoError(t, err)
	assert.Equal(t, sess.ID(), loaded.ID())
	assert.Equal(t, "cust-1", loaded.CustomerID())
	assert.Equal(t, sess.FormKey(), loaded.FormKey())
	assert.Equal(t, []Message{{Type: MessageSuccess, Text: "You saved the address."}}, loaded.DrainMessages())
	assert.Empty(t, loaded.DrainMessages())

	form := loaded.TakeAddressForm()
	assert.Equal(t, []string{"a", "b"}, form["street[]"])
	assert.Nil(t, loaded.TakeAddressForm())
}

func TestStore_Regenerate(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	sess, err := store.New()
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, sess))
	old := sess.ID()
	oldKey := sess.FormKey()

	require.NoError(t, store.Regenerate(ctx, sess))
	require.NoError(t, store.Save(ctx, sess))

	assert.NotEqual(t, old, sess.ID())
	assert.NotEqual(t, oldKey, sess.FormKey())
	assert.NotEmpty(t, sess.FormKey())
	assert.False(t, mr.Exists("session:"+old))
	assert.True(t, mr.Exists("session:"+sess.ID()))

	loaded, err := store.Load(ctx, sess.ID())
	require.NoError(t, err)
	assert.Equal(t, sess.FormKey(), loaded.FormKey())
}

func TestStore_Destroy(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	sess, err := store.New()
	require.NoError(t, err)
	sess.SetCustomerID("cust-1")
	require.NoError(t, store.Save(ctx, sess))

	require.NoError(t, store.Destroy(ctx, sess))
	sess.AddSuccess("written after destroy")
	require.NoError(t, store.Save(ctx, sess))

	assert.False(t, mr.Exists("session:"+sess.ID()))
	reloaded, err := store.Load(ctx, sess.ID())
	require.NoError(t, err)
	assert.NotEqual(t, sess.ID(), reloaded.ID())
	assert.False(t, reloaded.LoggedIn())
}

func TestSession_StashCopiesValues(t *testing.T) {
	sess := &Session{}
	values := url.Values{"city": {"CityM"}}

	sess.StashAddressForm(values)
	values.Set("city", "changed")

	assert.Equal(t, "CityM", sess.TakeAddressForm().Get("city"))
}

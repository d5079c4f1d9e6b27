package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPresenceRefcount(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	store := newMemStore()
	u := store.addUser("Alice")
	p := NewPresence(store)

	// Two concurrent connections for the same user.
	req.NoError(p.Connect(ctx, u.ID))
	req.NoError(p.Connect(ctx, u.ID))
	req.Equal(2, p.Connections(u.ID))

	got, err := store.UserByID(ctx, u.ID)
	req.NoError(err)
	req.True(got.Online)

	// Closing one connection keeps the user online.
	req.NoError(p.Disconnect(ctx, u.ID))
	got, err = store.UserByID(ctx, u.ID)
	req.NoError(err)
	req.True(got.Online)
	req.Equal(1, p.Connections(u.ID))

	// The last disconnect flips the flag.
	req.NoError(p.Disconnect(ctx, u.ID))
	got, err = store.UserByID(ctx, u.ID)
	req.NoError(err)
	req.False(got.Online)
	req.Equal(0, p.Connections(u.ID))
}

func TestPresenceDisconnectWithoutConnect(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	store := newMemStore()
	u := store.addUser("Alice")
	req.NoError(store.SetOnline(ctx, u.ID, true))

	p := NewPresence(store)
	req.NoError(p.Disconnect(ctx, u.ID))

	// No tracked connection means no flag change.
	got, err := store.UserByID(ctx, u.ID)
	req.NoError(err)
	req.True(got.Online)
}

func TestPresenceMarkOnlineOffline(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	store := newMemStore()
	u := store.addUser("Alice")
	p := NewPresence(store)

	req.NoError(p.MarkOnline(ctx, u.ID))
	got, _ := store.UserByID(ctx, u.ID)
	req.True(got.Online)

	req.NoError(p.MarkOnline(ctx, u.ID)) // idempotent

	req.NoError(p.MarkOffline(ctx, u.ID))
	got, _ = store.UserByID(ctx, u.ID)
	req.False(got.Online)
}

// gatedStore blocks offline writes until released, to expose the relative
// ordering of transition writes.
type gatedStore struct {
	*memStore
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) SetOnline(ctx context.Context, id int64, online bool) error {
	if !online {
		g.entered <- struct{}{}
		<-g.release
	}
	return g.memStore.SetOnline(ctx, id, online)
}

func TestPresenceTransitionWritesStayOrdered(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	store := newMemStore()
	u := store.addUser("Alice")
	gated := &gatedStore{
		memStore: store,
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	p := NewPresence(gated)

	req.NoError(p.Connect(ctx, u.ID))

	// Last disconnect stalls mid offline write.
	disconnected := make(chan error, 1)
	go func() { disconnected <- p.Disconnect(ctx, u.ID) }()
	<-gated.entered

	// A reconnect racing the disconnect must not commit its online write
	// before the offline write lands.
	reconnected := make(chan error, 1)
	go func() { reconnected <- p.Connect(ctx, u.ID) }()
	time.Sleep(20 * time.Millisecond)

	close(gated.release)
	req.NoError(<-disconnected)
	req.NoError(<-reconnected)

	got, err := store.UserByID(ctx, u.ID)
	req.NoError(err)
	req.True(got.Online)
	req.Equal(1, p.Connections(u.ID))
}

func TestPresenceSnapshot(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	store := newMemStore()
	alice := store.addUser("Alice")
	bob := store.addUser("Bob")
	carol := store.addUser("Carol")

	p := NewPresence(store)
	req.NoError(p.Connect(ctx, bob.ID))
	req.NoError(p.MarkOnline(ctx, carol.ID))

	entries, err := p.Snapshot(ctx)
	req.NoError(err)
	req.Len(entries, 3)

	// Ordered by id, one entry per user, online derived from either the
	// stored flag or a live connection.
	req.Equal(alice.ID, entries[0].ID)
	req.False(entries[0].Online)
	req.Equal(bob.ID, entries[1].ID)
	req.True(entries[1].Online)
	req.Equal(carol.ID, entries[2].ID)
	req.True(entries[2].Online)
}

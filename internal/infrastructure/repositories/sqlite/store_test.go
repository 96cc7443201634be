package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"roomcast/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "roomcast.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSignupAndCredentialLookup(t *testing.T) {
	store := openTestStore(t)
	repo := NewSqliteCredentialsRepository(store)
	ctx := context.Background()

	user, err := repo.Signup(ctx, "alice", "alice@example.com", "phc-hash", "ABC123")
	require.NoError(t, err)

	cred, err := repo.GetCredential(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, cred.UserID)
	assert.Equal(t, "phc-hash", cred.PasswordHash)

	fetched, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, fetched.ID)
	assert.Equal(t, "alice", fetched.Name)
	assert.Equal(t, "ABC123", fetched.Code)
	assert.False(t, fetched.CreatedAt.IsZero())
}

func TestCredentialLookupUnknownEmail(t *testing.T) {
	store := openTestStore(t)
	repo := NewSqliteCredentialsRepository(store)

	_, err := repo.GetCredential(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSignupDuplicateEmail(t *testing.T) {
	store := openTestStore(t)
	repo := NewSqliteCredentialsRepository(store)
	ctx := context.Background()

	_, err := repo.Signup(ctx, "alice", "alice@example.com", "hash-1", "ABC123")
	require.NoError(t, err)

	_, err = repo.Signup(ctx, "other alice", "alice@example.com", "hash-2", "XYZ789")
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestRoomMembershipAndMessages(t *testing.T) {
	store := openTestStore(t)
	creds := NewSqliteCredentialsRepository(store)
	chat := NewSqliteChatRepository(store)
	ctx := context.Background()

	alice, err := creds.Signup(ctx, "alice", "alice@example.com", "hash", "ABC123")
	require.NoError(t, err)
	bob, err := creds.Signup(ctx, "bob", "bob@example.com", "hash", "XYZ789")
	require.NoError(t, err)

	room, err := chat.CreateRoom(ctx, alice.ID, "general", "G-001")
	require.NoError(t, err)

	code, err := chat.GetMembership(ctx, room.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "G-001", code)

	_, err = chat.GetMembership(ctx, room.ID, bob.ID)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	users, err := chat.GetUsers(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, alice.ID, users[0].ID)

	for _, text := range []string{"hello", "world"} {
		content, err := domain.ParseMessageContent(text)
		require.NoError(t, err)
		_, err = chat.CreateMessage(ctx, alice.ID, room.ID, content)
		require.NoError(t, err)
	}

	messages, err := chat.GetMessagesByRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hello", string(messages[0].Content))
	assert.Equal(t, "world", string(messages[1].Content))
	assert.Equal(t, room.ID, messages[0].RoomID)
	assert.Equal(t, alice.ID, messages[0].UserID)

	rooms, err := chat.GetUserRooms(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "general", rooms[0].Name)

	none, err := chat.GetUserRooms(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

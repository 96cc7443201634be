package services

import (
	"context"
	"strings"
	"testing"

	"roomcast/internal/core/domain"
	"roomcast/internal/infrastructure/repositories/memory"
	apperrors "roomcast/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateRoomAddsCreatorMembership(t *testing.T) {
	repo := memory.NewMemoryChatRepository()
	service := NewChatService(repo, zap.NewNop().Sugar())

	userID := domain.NewUserID()
	room, err := service.CreateRoom(context.Background(), userID, "general", "G-001")
	require.NoError(t, err)

	code, err := service.GetMembership(context.Background(), room.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, "G-001", code)

	rooms, err := service.GetUserRooms(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, room.ID, rooms[0].ID)
}

func TestCreateRoomRejectsBadName(t *testing.T) {
	repo := memory.NewMemoryChatRepository()
	service := NewChatService(repo, zap.NewNop().Sugar())

	for _, name := range []string{"", "   ", "<script>", strings.Repeat("a", 300)} {
		_, err := service.CreateRoom(context.Background(), domain.NewUserID(), name, "G-001")
		require.Error(t, err, "name %q", name)
		appErr := apperrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
	}
}

func TestGetMembershipForNonMember(t *testing.T) {
	repo := memory.NewMemoryChatRepository()
	service := NewChatService(repo, zap.NewNop().Sugar())

	room, err := service.CreateRoom(context.Background(), domain.NewUserID(), "general", "G-001")
	require.NoError(t, err)

	_, err = service.GetMembership(context.Background(), room.ID, domain.NewUserID())
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestMessagesAreOrderedPerRoom(t *testing.T) {
	repo := memory.NewMemoryChatRepository()
	service := NewChatService(repo, zap.NewNop().Sugar())

	userID := domain.NewUserID()
	room, err := service.CreateRoom(context.Background(), userID, "general", "G-001")
	require.NoError(t, err)
	other, err := service.CreateRoom(context.Background(), userID, "random", "G-002")
	require.NoError(t, err)

	for _, text := range []string{"first", "second", "third"} {
		content, err := domain.ParseMessageContent(text)
		require.NoError(t, err)
		_, err = service.CreateMessage(context.Background(), userID, room.ID, content)
		require.NoError(t, err)
	}

	messages, err := service.GetMessagesByRoom(context.Background(), room.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", string(messages[0].Content))
	assert.Equal(t, "third", string(messages[2].Content))

	empty, err := service.GetMessagesByRoom(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

package services

import (
	"testing"

	"github.com/fundraisely/bingo-server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRegistry() *Registry {
	return NewRegistry(zap.NewNop().Sugar())
}

func TestCreateRoom(t *testing.T) {
	reg := newTestRegistry()

	room, err := reg.CreateRoom("ABC123", "conn-host", "Helen", "wallet-h", "pay-ref", 100, nil)
	require.NoError(t, err)
	require.NotNil(t, room)

	view := reg.SerializeRoom(room)
	assert.Equal(t, "ABC123", view.Code)
	assert.Equal(t, "conn-host", view.HostConn)
	assert.Equal(t, uint64(100), view.EntryFee)
	assert.False(t, view.GameStarted)

	// Host is seated first, flagged, not ready.
	require.Len(t, view.Players, 1)
	assert.True(t, view.Players[0].IsHost)
	assert.False(t, view.Players[0].IsReady)
	assert.Equal(t, "Helen", view.Players[0].Name)
}

func TestCreateRoomDuplicateCode(t *testing.T) {
	reg := newTestRegistry()

	_, err := reg.CreateRoom("ABC123", "conn-1", "A", "", "", 0, nil)
	require.NoError(t, err)

	_, err = reg.CreateRoom("ABC123", "conn-2", "B", "", "", 0, nil)
	assert.ErrorIs(t, err, models.ErrDuplicateRoom)
}

func TestAddPlayerPreservesOrder(t *testing.T) {
	reg := newTestRegistry()
	_, err := reg.CreateRoom("ABC123", "conn-host", "H", "", "", 0, nil)
	require.NoError(t, err)

	require.NoError(t, reg.AddPlayer("ABC123", "conn-1", "P1", "w1", nil))
	require.NoError(t, reg.AddPlayer("ABC123", "conn-2", "P2", "w2", nil))
	require.NoError(t, reg.AddPlayer("ABC123", "conn-3", "P3", "w3", nil))

	room, _ := reg.GetRoom("ABC123")
	assert.Equal(t, []string{"conn-host", "conn-1", "conn-2", "conn-3"}, room.ConnIDs())

	// Same connection cannot be seated twice.
	err = reg.AddPlayer("ABC123", "conn-2", "P2-again", "", nil)
	assert.ErrorIs(t, err, models.ErrDuplicatePlayer)

	err = reg.AddPlayer("NOPE", "conn-9", "P9", "", nil)
	assert.ErrorIs(t, err, models.ErrRoomNotFound)
}

func TestRemovePlayer(t *testing.T) {
	reg := newTestRegistry()
	_, err := reg.CreateRoom("ABC123", "conn-host", "H", "", "", 0, nil)
	require.NoError(t, err)
	require.NoError(t, reg.AddPlayer("ABC123", "conn-1", "P1", "", nil))

	require.NoError(t, reg.RemovePlayer("ABC123", "conn-1"))
	room, _ := reg.GetRoom("ABC123")
	assert.Equal(t, 1, room.PlayerCount())

	// Removing an absent player is a no-op.
	require.NoError(t, reg.RemovePlayer("ABC123", "conn-1"))
	assert.Equal(t, 1, room.PlayerCount())

	assert.ErrorIs(t, reg.RemovePlayer("NOPE", "conn-1"), models.ErrRoomNotFound)
}

func TestToggleReady(t *testing.T) {
	reg := newTestRegistry()
	_, err := reg.CreateRoom("ABC123", "conn-host", "H", "", "", 0, nil)
	require.NoError(t, err)

	require.NoError(t, reg.ToggleReady("ABC123", "conn-host"))
	room, _ := reg.GetRoom("ABC123")
	assert.True(t, reg.SerializeRoom(room).Players[0].IsReady)

	require.NoError(t, reg.ToggleReady("ABC123", "conn-host"))
	assert.False(t, reg.SerializeRoom(room).Players[0].IsReady)

	assert.ErrorIs(t, reg.ToggleReady("ABC123", "conn-ghost"), models.ErrPlayerNotFound)
	assert.ErrorIs(t, reg.ToggleReady("NOPE", "conn-host"), models.ErrRoomNotFound)
}

func TestStartAndEndGameFlags(t *testing.T) {
	reg := newTestRegistry()
	room, err := reg.CreateRoom("ABC123", "conn-host", "H", "", "", 0, nil)
	require.NoError(t, err)

	require.NoError(t, reg.StartGame("ABC123"))
	assert.True(t, room.GameStarted())

	require.NoError(t, reg.EndGame("ABC123"))
	assert.False(t, room.GameStarted())

	assert.ErrorIs(t, reg.StartGame("NOPE"), models.ErrRoomNotFound)
}

func TestGetAllRoomsAndRemoveRoom(t *testing.T) {
	reg := newTestRegistry()
	_, err := reg.CreateRoom("A", "c1", "P", "", "", 0, nil)
	require.NoError(t, err)
	_, err = reg.CreateRoom("B", "c2", "Q", "", "", 0, nil)
	require.NoError(t, err)

	assert.Len(t, reg.GetAllRooms(), 2)

	reg.RemoveRoom("A")
	assert.Len(t, reg.GetAllRooms(), 1)
	_, ok := reg.GetRoom("A")
	assert.False(t, ok)
}

func TestSerializedViewIsDetached(t *testing.T) {
	reg := newTestRegistry()
	room, err := reg.CreateRoom("ABC123", "conn-host", "H", "", "", 0, nil)
	require.NoError(t, err)

	view := reg.SerializeRoom(room)
	view.Players[0].IsReady = true
	view.Players = append(view.Players, models.PlayerView{ConnID: "intruder"})

	fresh := reg.SerializeRoom(room)
	require.Len(t, fresh.Players, 1)
	assert.False(t, fresh.Players[0].IsReady)
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
)

type stageFixture struct {
	svc     *StageService
	rooms   *fakeMatchRoomRepo
	results *fakeResultRepo
	stage   *fakeStageResultRepo
	lobbies *fakeLobbyRepo
	hub     *fakeHub
}

func newStageFixture() *stageFixture {
	f := &stageFixture{
		rooms:   newFakeMatchRoomRepo(),
		results: newFakeResultRepo(),
		stage:   newFakeStageResultRepo(),
		lobbies: newFakeLobbyRepo(),
		hub:     &fakeHub{},
	}
	f.svc = NewStageService(&fakeTxRunner{}, f.rooms, f.results, f.stage, f.lobbies, f.hub, discardLogger())
	return f
}

func (f *stageFixture) addRoom(tournamentID, stageNumber, matchNumber int) *models.MatchRoom {
	return f.rooms.add(&models.MatchRoom{
		TenantID:     1,
		TournamentID: tournamentID,
		StageNumber:  stageNumber,
		MatchNumber:  matchNumber,
		RoomCode:     "FF-0001",
	})
}

func (f *stageFixture) addLockedResult(roomID, teamID, kills, points int) {
	r := &models.Result{MatchRoomID: roomID, TeamID: teamID, Position: 1, Kills: kills, Points: points}
	if err := f.results.Upsert(context.Background(), r); err != nil {
		panic(err)
	}
	if _, err := f.results.LockByMatchRoom(context.Background(), nil, roomID); err != nil {
		panic(err)
	}
}

func (f *stageFixture) addLobbyTeam(tournamentID, teamID, slot int, name string) {
	err := f.lobbies.Create(context.Background(), nil, &models.LobbyEntry{
		TournamentID: tournamentID,
		TeamID:       teamID,
		SlotNumber:   slot,
		TeamName:     name,
		Status:       models.LobbyAssigned,
	})
	if err != nil {
		panic(err)
	}
}

func TestGenerateStageLeaderboard_FullTieGetsDistinctRanks(t *testing.T) {
	f := newStageFixture()
	room1 := f.addRoom(10, 1, 1)
	room2 := f.addRoom(10, 1, 2)
	f.addLobbyTeam(10, 1, 1, "Night Owls")
	f.addLobbyTeam(10, 2, 2, "Dawn Patrol")
	f.addLobbyTeam(10, 3, 3, "Crimson Wave")

	// Все три команды финишируют со счётом 40 очков / 9 убийств.
	f.addLockedResult(room1.ID, 1, 4, 15)
	f.addLockedResult(room1.ID, 2, 6, 20)
	f.addLockedResult(room1.ID, 3, 2, 20)
	f.addLockedResult(room2.ID, 1, 5, 25)
	f.addLockedResult(room2.ID, 2, 3, 20)
	f.addLockedResult(room2.ID, 3, 7, 20)

	standings, err := f.svc.GenerateStageLeaderboard(context.Background(), 10, 1, []int{room1.ID, room2.ID}, adminActor(1))
	assert.Nil(t, err)
	assert.Len(t, standings, 3)

	// Ранги не делятся: даже полная ничья даёт 1, 2, 3.
	for i, sr := range standings {
		assert.Equal(t, i+1, sr.Rank)
		assert.Equal(t, 2, sr.MatchesPlayed)
		assert.Equal(t, 40, sr.TotalPoints)
		assert.Equal(t, 9, sr.TotalKills)
	}
}

func TestGenerateStageLeaderboard_OrderAndNames(t *testing.T) {
	f := newStageFixture()
	room := f.addRoom(10, 1, 1)
	f.addLobbyTeam(10, 1, 1, "Night Owls")
	f.addLobbyTeam(10, 2, 2, "Dawn Patrol")
	f.addLobbyTeam(10, 3, 3, "Crimson Wave")

	f.addLockedResult(room.ID, 1, 2, 10)
	f.addLockedResult(room.ID, 2, 8, 25)
	f.addLockedResult(room.ID, 3, 5, 10)

	standings, err := f.svc.GenerateStageLeaderboard(context.Background(), 10, 1, []int{room.ID}, adminActor(1))
	assert.Nil(t, err)
	assert.Len(t, standings, 3)

	assert.Equal(t, 2, standings[0].TeamID)
	assert.Equal(t, "Dawn Patrol", standings[0].TeamName)
	assert.Equal(t, 1, standings[0].Rank)

	// Ничья по очкам: больше убийств — выше ранг.
	assert.Equal(t, 3, standings[1].TeamID)
	assert.Equal(t, 2, standings[1].Rank)
	assert.Equal(t, 1, standings[2].TeamID)
	assert.Equal(t, 3, standings[2].Rank)

	assert.Equal(t, 1, f.hub.count())
}

func TestGenerateStageLeaderboard_RerunIsIdempotent(t *testing.T) {
	f := newStageFixture()
	room := f.addRoom(10, 1, 1)
	f.addLobbyTeam(10, 1, 1, "Night Owls")
	f.addLobbyTeam(10, 2, 2, "Dawn Patrol")

	f.addLockedResult(room.ID, 1, 2, 10)
	f.addLockedResult(room.ID, 2, 8, 25)

	admin := adminActor(1)
	first, err := f.svc.GenerateStageLeaderboard(context.Background(), 10, 1, []int{room.ID}, admin)
	assert.Nil(t, err)
	second, err := f.svc.GenerateStageLeaderboard(context.Background(), 10, 1, []int{room.ID}, admin)
	assert.Nil(t, err)

	assert.Equal(t, len(first), len(second))
	persisted, err := f.svc.StageLeaderboard(context.Background(), 10, 1)
	assert.Nil(t, err)
	assert.Len(t, persisted, 2)
	for i, sr := range persisted {
		assert.Equal(t, second[i].TeamID, sr.TeamID)
		assert.Equal(t, second[i].TotalPoints, sr.TotalPoints)
		assert.Equal(t, second[i].Rank, sr.Rank)
	}
}

func TestGenerateStageLeaderboard_RerunDropsAbsentTeams(t *testing.T) {
	f := newStageFixture()
	room1 := f.addRoom(10, 1, 1)
	room2 := f.addRoom(10, 1, 2)
	f.addLobbyTeam(10, 1, 1, "Night Owls")
	f.addLobbyTeam(10, 2, 2, "Dawn Patrol")
	f.addLobbyTeam(10, 3, 3, "Crimson Wave")
	f.addLockedResult(room1.ID, 1, 5, 30)
	f.addLockedResult(room1.ID, 2, 4, 20)
	f.addLockedResult(room2.ID, 3, 2, 10)

	_, err := f.svc.GenerateStageLeaderboard(context.Background(), 10, 1, []int{room1.ID, room2.ID}, adminActor(1))
	assert.Nil(t, err)
	_, err = f.svc.MarkQualified(context.Background(), 10, 1, 2, adminActor(1))
	assert.Nil(t, err)

	// Пересчёт без второго матча: команда из него выпадает из таблицы,
	// а флаги квалификации уцелевших переносятся.
	_, err = f.svc.GenerateStageLeaderboard(context.Background(), 10, 1, []int{room1.ID}, adminActor(1))
	assert.Nil(t, err)

	rows, err := f.svc.StageLeaderboard(context.Background(), 10, 1)
	assert.Nil(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "Night Owls", rows[0].TeamName)
	assert.True(t, rows[0].Qualified)
	assert.Equal(t, "Dawn Patrol", rows[1].TeamName)
	assert.True(t, rows[1].Qualified)
}

func TestGenerateStageLeaderboard_IgnoresUnlockedResults(t *testing.T) {
	f := newStageFixture()
	room := f.addRoom(10, 1, 1)
	f.addLobbyTeam(10, 1, 1, "Night Owls")

	// Результат есть, но не заблокирован.
	err := f.results.Upsert(context.Background(), &models.Result{
		MatchRoomID: room.ID, TeamID: 1, Position: 1, Kills: 3, Points: 12,
	})
	assert.Nil(t, err)

	_, err = f.svc.GenerateStageLeaderboard(context.Background(), 10, 1, []int{room.ID}, adminActor(1))
	assert.True(t, errors.Is(err, ErrNoStageData))
}

func TestGenerateStageLeaderboard_StageMismatchRejected(t *testing.T) {
	f := newStageFixture()
	room := f.addRoom(10, 2, 1)
	f.addLockedResult(room.ID, 1, 3, 12)

	_, err := f.svc.GenerateStageLeaderboard(context.Background(), 10, 1, []int{room.ID}, adminActor(1))
	assert.True(t, errors.Is(err, ErrValidationFailed))
}

func TestGenerateStageLeaderboard_UnresolvedRoomRejected(t *testing.T) {
	f := newStageFixture()
	room := f.addRoom(10, 1, 1)
	f.addLockedResult(room.ID, 1, 3, 12)

	_, err := f.svc.GenerateStageLeaderboard(context.Background(), 10, 1, []int{room.ID, 999}, adminActor(1))
	assert.True(t, errors.Is(err, ErrValidationFailed))
}

func TestMarkQualified_TopNExactly(t *testing.T) {
	f := newStageFixture()
	room := f.addRoom(10, 1, 1)
	f.addLobbyTeam(10, 1, 1, "Night Owls")
	f.addLobbyTeam(10, 2, 2, "Dawn Patrol")
	f.addLobbyTeam(10, 3, 3, "Crimson Wave")

	f.addLockedResult(room.ID, 1, 2, 30)
	f.addLockedResult(room.ID, 2, 8, 20)
	f.addLockedResult(room.ID, 3, 5, 10)

	admin := adminActor(1)
	_, err := f.svc.GenerateStageLeaderboard(context.Background(), 10, 1, []int{room.ID}, admin)
	assert.Nil(t, err)

	rows, err := f.svc.MarkQualified(context.Background(), 10, 1, 2, admin)
	assert.Nil(t, err)
	assert.True(t, rows[0].Qualified)
	assert.True(t, rows[1].Qualified)
	assert.False(t, rows[2].Qualified)
}

func TestMarkQualified_RerunDemotesPreviouslyQualified(t *testing.T) {
	f := newStageFixture()
	room := f.addRoom(10, 1, 1)
	f.addLobbyTeam(10, 1, 1, "Night Owls")
	f.addLobbyTeam(10, 2, 2, "Dawn Patrol")
	f.addLobbyTeam(10, 3, 3, "Crimson Wave")

	f.addLockedResult(room.ID, 1, 2, 30)
	f.addLockedResult(room.ID, 2, 8, 20)
	f.addLockedResult(room.ID, 3, 5, 10)

	admin := adminActor(1)
	_, err := f.svc.GenerateStageLeaderboard(context.Background(), 10, 1, []int{room.ID}, admin)
	assert.Nil(t, err)

	_, err = f.svc.MarkQualified(context.Background(), 10, 1, 3, admin)
	assert.Nil(t, err)

	_, err = f.svc.MarkQualified(context.Background(), 10, 1, 1, admin)
	assert.Nil(t, err)

	persisted, err := f.svc.StageLeaderboard(context.Background(), 10, 1)
	assert.Nil(t, err)
	qualified := 0
	for _, sr := range persisted {
		if sr.Qualified {
			qualified++
			assert.Equal(t, 1, sr.Rank)
		}
	}
	assert.Equal(t, 1, qualified)
}

func TestMarkQualified_CountValidation(t *testing.T) {
	f := newStageFixture()
	_, err := f.svc.MarkQualified(context.Background(), 10, 1, 0, adminActor(1))
	assert.True(t, errors.Is(err, ErrInvalidQualifyCount))
}

func TestMarkQualified_NoStandingsYet(t *testing.T) {
	f := newStageFixture()
	f.addRoom(10, 1, 1)

	_, err := f.svc.MarkQualified(context.Background(), 10, 1, 2, adminActor(1))
	assert.True(t, errors.Is(err, ErrNoStageData))
}

func TestMarkQualified_ForeignTenantReadsAsNotFound(t *testing.T) {
	f := newStageFixture()
	f.addRoom(10, 1, 1)

	_, err := f.svc.MarkQualified(context.Background(), 10, 1, 1, adminActor(2))
	assert.True(t, errors.Is(err, ErrNotFound))
}

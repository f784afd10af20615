package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
)

func newSlotFixture(slots int) (*SlotService, *fakeTournamentRepo, *fakeLobbyRepo, *fakeTeamRepo, *models.Tournament) {
	tournaments := newFakeTournamentRepo()
	lobbies := newFakeLobbyRepo()
	teams := newFakeTeamRepo()
	svc := NewSlotService(&fakeTxRunner{}, tournaments, lobbies, teams)

	tournament := tournaments.add(&models.Tournament{
		TenantID: 1,
		Name:     "Weekly Scrims",
		Game:     "Free Fire",
		Slots:    slots,
		Status:   models.StatusUpcoming,
		StartAt:  time.Now().Add(24 * time.Hour),
	})
	return svc, tournaments, lobbies, teams, tournament
}

func TestJoinSlot_FillsSlot(t *testing.T) {
	svc, _, _, teams, tournament := newSlotFixture(12)
	team := teams.add(&models.Team{Name: "Night Owls", CaptainName: "Riya", CaptainEmail: "riya@example.com"})

	entry, err := svc.JoinSlot(context.Background(), tournament.ID, team.ID, userActor("riya@example.com"))

	assert.Nil(t, err)
	assert.Equal(t, 1, entry.SlotNumber)
	assert.Equal(t, "Night Owls", entry.TeamName)
	assert.Equal(t, models.LobbyAssigned, entry.Status)
}

func TestJoinSlot_ConcurrentJoinsFillExactlyCapacity(t *testing.T) {
	const capacity = 8
	const contenders = 25

	svc, tournaments, lobbies, teams, tournament := newSlotFixture(capacity)

	teamIDs := make([]int, 0, contenders)
	for i := 0; i < contenders; i++ {
		team := teams.add(&models.Team{
			Name:         fmt.Sprintf("Squad %d", i),
			CaptainName:  fmt.Sprintf("Captain %d", i),
			CaptainEmail: fmt.Sprintf("captain%d@example.com", i),
		})
		teamIDs = append(teamIDs, team.ID)
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := userActor(fmt.Sprintf("captain%d@example.com", i))
			_, errs[i] = svc.JoinSlot(context.Background(), tournament.ID, teamIDs[i], actor)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, errors.Is(err, ErrTournamentFull), "losers must see the full-tournament error, got %v", err)
		}
	}
	assert.Equal(t, capacity, succeeded)

	stored, err := tournaments.GetByID(context.Background(), nil, tournament.ID)
	assert.Nil(t, err)
	assert.Equal(t, capacity, stored.FilledSlots)

	entries, err := lobbies.ListByTournament(context.Background(), tournament.ID)
	assert.Nil(t, err)
	assert.Len(t, entries, capacity)
	seen := make(map[int]bool)
	for _, e := range entries {
		assert.False(t, seen[e.SlotNumber], "slot %d assigned twice", e.SlotNumber)
		seen[e.SlotNumber] = true
		assert.GreaterOrEqual(t, e.SlotNumber, 1)
		assert.LessOrEqual(t, e.SlotNumber, capacity)
	}
}

func TestJoinSlot_DuplicateTeam(t *testing.T) {
	svc, _, _, teams, tournament := newSlotFixture(12)
	team := teams.add(&models.Team{Name: "Night Owls", CaptainName: "Riya", CaptainEmail: "riya@example.com"})
	actor := userActor("riya@example.com")

	_, err := svc.JoinSlot(context.Background(), tournament.ID, team.ID, actor)
	assert.Nil(t, err)

	_, err = svc.JoinSlot(context.Background(), tournament.ID, team.ID, actor)
	assert.True(t, errors.Is(err, ErrAlreadyJoined))
}

func TestJoinSlot_TournamentNotOpen(t *testing.T) {
	svc, tournaments, _, teams, tournament := newSlotFixture(12)
	team := teams.add(&models.Team{Name: "Night Owls", CaptainName: "Riya", CaptainEmail: "riya@example.com"})
	assert.Nil(t, tournaments.UpdateStatus(context.Background(), nil, tournament.ID, models.StatusOngoing))

	_, err := svc.JoinSlot(context.Background(), tournament.ID, team.ID, userActor("riya@example.com"))
	assert.True(t, errors.Is(err, ErrTournamentNotOpen))
}

func TestJoinSlot_NonCaptainForbidden(t *testing.T) {
	svc, _, _, teams, tournament := newSlotFixture(12)
	team := teams.add(&models.Team{Name: "Night Owls", CaptainName: "Riya", CaptainEmail: "riya@example.com"})

	_, err := svc.JoinSlot(context.Background(), tournament.ID, team.ID, userActor("someone.else@example.com"))
	assert.True(t, errors.Is(err, ErrForbiddenOperation))
}

func TestJoinSlot_UnknownTournament(t *testing.T) {
	svc, _, _, teams, _ := newSlotFixture(12)
	team := teams.add(&models.Team{Name: "Night Owls", CaptainName: "Riya", CaptainEmail: "riya@example.com"})

	_, err := svc.JoinSlot(context.Background(), 999, team.ID, userActor("riya@example.com"))
	assert.True(t, errors.Is(err, ErrTournamentNotFound))
}

func TestAssignSlot_TakenSlot(t *testing.T) {
	svc, _, _, teams, tournament := newSlotFixture(12)
	first := teams.add(&models.Team{Name: "Night Owls", CaptainName: "Riya", CaptainEmail: "riya@example.com"})
	second := teams.add(&models.Team{Name: "Dawn Patrol", CaptainName: "Arjun", CaptainEmail: "arjun@example.com"})
	admin := adminActor(tournament.TenantID)

	_, err := svc.AssignSlot(context.Background(), tournament.ID, first.ID, 5, admin)
	assert.Nil(t, err)

	_, err = svc.AssignSlot(context.Background(), tournament.ID, second.ID, 5, admin)
	assert.True(t, errors.Is(err, ErrSlotTaken))
}

func TestAssignSlot_OutOfRange(t *testing.T) {
	svc, _, _, teams, tournament := newSlotFixture(12)
	team := teams.add(&models.Team{Name: "Night Owls", CaptainName: "Riya", CaptainEmail: "riya@example.com"})
	admin := adminActor(tournament.TenantID)

	_, err := svc.AssignSlot(context.Background(), tournament.ID, team.ID, 0, admin)
	assert.True(t, errors.Is(err, ErrInvalidSlotNumber))

	_, err = svc.AssignSlot(context.Background(), tournament.ID, team.ID, 13, admin)
	assert.True(t, errors.Is(err, ErrInvalidSlotNumber))
}

func TestAssignSlot_RequiresCapability(t *testing.T) {
	svc, _, _, teams, tournament := newSlotFixture(12)
	team := teams.add(&models.Team{Name: "Night Owls", CaptainName: "Riya", CaptainEmail: "riya@example.com"})

	_, err := svc.AssignSlot(context.Background(), tournament.ID, team.ID, 1, staffActor(tournament.TenantID, models.CapManageRooms))
	assert.True(t, errors.Is(err, ErrForbiddenOperation))

	_, err = svc.AssignSlot(context.Background(), tournament.ID, team.ID, 1, staffActor(tournament.TenantID, models.CapManageSlots))
	assert.Nil(t, err)
}

func TestRemoveSlot_ReleasesCapacity(t *testing.T) {
	svc, tournaments, _, teams, tournament := newSlotFixture(1)
	first := teams.add(&models.Team{Name: "Night Owls", CaptainName: "Riya", CaptainEmail: "riya@example.com"})
	second := teams.add(&models.Team{Name: "Dawn Patrol", CaptainName: "Arjun", CaptainEmail: "arjun@example.com"})

	entry, err := svc.JoinSlot(context.Background(), tournament.ID, first.ID, userActor("riya@example.com"))
	assert.Nil(t, err)

	_, err = svc.JoinSlot(context.Background(), tournament.ID, second.ID, userActor("arjun@example.com"))
	assert.True(t, errors.Is(err, ErrTournamentFull))

	err = svc.RemoveSlot(context.Background(), entry.ID, adminActor(tournament.TenantID))
	assert.Nil(t, err)

	stored, err := tournaments.GetByID(context.Background(), nil, tournament.ID)
	assert.Nil(t, err)
	assert.Equal(t, 0, stored.FilledSlots)

	_, err = svc.JoinSlot(context.Background(), tournament.ID, second.ID, userActor("arjun@example.com"))
	assert.Nil(t, err)
}

func TestUpdateSlotStatus_RejectsUnknownStatus(t *testing.T) {
	svc, _, _, teams, tournament := newSlotFixture(12)
	team := teams.add(&models.Team{Name: "Night Owls", CaptainName: "Riya", CaptainEmail: "riya@example.com"})
	entry, err := svc.JoinSlot(context.Background(), tournament.ID, team.ID, userActor("riya@example.com"))
	assert.Nil(t, err)

	err = svc.UpdateSlotStatus(context.Background(), entry.ID, models.LobbyStatus("vanished"), adminActor(tournament.TenantID))
	assert.True(t, errors.Is(err, ErrValidationFailed))

	err = svc.UpdateSlotStatus(context.Background(), entry.ID, models.LobbyEliminated, adminActor(tournament.TenantID))
	assert.Nil(t, err)
}

func TestUpdateSlotStatus_SameTenantWithoutCapabilityForbidden(t *testing.T) {
	svc, _, _, teams, tournament := newSlotFixture(12)
	team := teams.add(&models.Team{Name: "Night Owls", CaptainName: "Riya", CaptainEmail: "riya@example.com"})
	entry, err := svc.JoinSlot(context.Background(), tournament.ID, team.ID, userActor("riya@example.com"))
	assert.Nil(t, err)

	// Сотрудник своего тенанта видит запись, но без права управления
	// слотами менять её не может.
	err = svc.UpdateSlotStatus(context.Background(), entry.ID, models.LobbyCheckedIn, staffActor(tournament.TenantID, models.CapManageRooms))
	assert.True(t, errors.Is(err, ErrForbiddenOperation))

	err = svc.UpdateSlotStatus(context.Background(), entry.ID, models.LobbyCheckedIn, staffActor(tournament.TenantID, models.CapManageSlots))
	assert.Nil(t, err)
}

func TestUpdateSlotStatus_ForeignTenantReadsAsNotFound(t *testing.T) {
	svc, _, _, teams, tournament := newSlotFixture(12)
	team := teams.add(&models.Team{Name: "Night Owls", CaptainName: "Riya", CaptainEmail: "riya@example.com"})
	entry, err := svc.JoinSlot(context.Background(), tournament.ID, team.ID, userActor("riya@example.com"))
	assert.Nil(t, err)

	err = svc.UpdateSlotStatus(context.Background(), entry.ID, models.LobbyCheckedIn, adminActor(2))
	assert.True(t, errors.Is(err, ErrNotFound))
}

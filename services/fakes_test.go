package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
	"github.com/usercreator005/ff-india-tournaments-sub000/repositories"
	"github.com/usercreator005/ff-india-tournaments-sub000/storage"
)

func adminActor(tenantID int) models.Actor {
	return models.Actor{Email: "admin@tenant.test", Role: models.RoleAdmin, TenantID: &tenantID}
}

func staffActor(tenantID int, caps ...models.Capability) models.Actor {
	capMap := make(map[models.Capability]bool, len(caps))
	for _, c := range caps {
		capMap[c] = true
	}
	return models.Actor{Email: "staff@tenant.test", Role: models.RoleStaff, TenantID: &tenantID, Capabilities: capMap}
}

func userActor(email string) models.Actor {
	return models.Actor{Email: email, Role: models.RoleUser}
}

// fakeTxRunner сериализует "транзакции" мьютексом, моделируя блокировки
// строк. Отката нет: тесты не полагаются на частично применённые записи.
type fakeTxRunner struct {
	mu sync.Mutex
}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(nil)
}

type fakeTournamentRepo struct {
	mu     sync.Mutex
	nextID int
	items  map[int]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{items: make(map[int]*models.Tournament)}
}

func (f *fakeTournamentRepo) add(t *models.Tournament) *models.Tournament {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t.ID = f.nextID
	f.items[t.ID] = t
	return t
}

func (f *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.TenantID == t.TenantID && existing.Name == t.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	f.nextID++
	t.ID = f.nextID
	f.items[t.ID] = t
	return nil
}

func (f *fakeTournamentRepo) GetByID(ctx context.Context, tenantID *int, id int) (*models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok || (tenantID != nil && t.TenantID != *tenantID) {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Tournament, 0)
	for _, t := range f.items {
		if filter.TenantID != nil && t.TenantID != *filter.TenantID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTournamentRepo) Update(ctx context.Context, t *models.Tournament) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	cp := *t
	f.items[t.ID] = &cp
	return nil
}

func (f *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (f *fakeTournamentRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeTournamentRepo) FillSlot(ctx context.Context, exec repositories.SQLExecutor, id int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return 0, repositories.ErrTournamentNotFound
	}
	if t.Status != models.StatusUpcoming {
		return 0, repositories.ErrTournamentNotOpen
	}
	if t.FilledSlots >= t.Slots {
		return 0, repositories.ErrTournamentFull
	}
	t.FilledSlots++
	return t.FilledSlots, nil
}

func (f *fakeTournamentRepo) ReleaseSlot(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if t.FilledSlots > 0 {
		t.FilledSlots--
	}
	return nil
}

type fakeLobbyRepo struct {
	mu      sync.Mutex
	nextID  int
	entries map[int]*models.LobbyEntry
}

func newFakeLobbyRepo() *fakeLobbyRepo {
	return &fakeLobbyRepo{entries: make(map[int]*models.LobbyEntry)}
}

func (f *fakeLobbyRepo) Create(ctx context.Context, exec repositories.SQLExecutor, entry *models.LobbyEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.TournamentID == entry.TournamentID && e.TeamID == entry.TeamID {
			return repositories.ErrLobbyTeamConflict
		}
		if e.TournamentID == entry.TournamentID && e.SlotNumber == entry.SlotNumber {
			return repositories.ErrLobbySlotTaken
		}
	}
	f.nextID++
	entry.ID = f.nextID
	cp := *entry
	f.entries[entry.ID] = &cp
	return nil
}

func (f *fakeLobbyRepo) GetByID(ctx context.Context, id int) (*models.LobbyEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, repositories.ErrLobbyEntryNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeLobbyRepo) FindByTeamAndTournament(ctx context.Context, teamID, tournamentID int) (*models.LobbyEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.TeamID == teamID && e.TournamentID == tournamentID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repositories.ErrLobbyEntryNotFound
}

func (f *fakeLobbyRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.LobbyEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.LobbyEntry, 0)
	for _, e := range f.entries {
		if e.TournamentID == tournamentID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotNumber < out[j].SlotNumber })
	return out, nil
}

func (f *fakeLobbyRepo) UpdateStatus(ctx context.Context, id int, status models.LobbyStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return repositories.ErrLobbyEntryNotFound
	}
	e.Status = status
	return nil
}

func (f *fakeLobbyRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[id]; !ok {
		return repositories.ErrLobbyEntryNotFound
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeLobbyRepo) CountByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, e := range f.entries {
		if e.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

type fakeTeamRepo struct {
	mu     sync.Mutex
	nextID int
	items  map[int]*models.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{items: make(map[int]*models.Team)}
}

func (f *fakeTeamRepo) add(t *models.Team) *models.Team {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t.ID = f.nextID
	f.items[t.ID] = t
	return t
}

func (f *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	f.nextID++
	team.ID = f.nextID
	f.items[team.ID] = team
	return nil
}

func (f *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTeamRepo) List(ctx context.Context, limit, offset int) ([]models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Team, 0, len(f.items))
	for _, t := range f.items {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeMatchRoomRepo struct {
	mu     sync.Mutex
	nextID int
	items  map[int]*models.MatchRoom
}

func newFakeMatchRoomRepo() *fakeMatchRoomRepo {
	return &fakeMatchRoomRepo{items: make(map[int]*models.MatchRoom)}
}

func (f *fakeMatchRoomRepo) add(m *models.MatchRoom) *models.MatchRoom {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m.ID = f.nextID
	f.items[m.ID] = m
	return m
}

func (f *fakeMatchRoomRepo) Create(ctx context.Context, room *models.MatchRoom) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.items {
		if m.TournamentID == room.TournamentID && m.StageNumber == room.StageNumber && m.MatchNumber == room.MatchNumber {
			return repositories.ErrMatchRoomConflict
		}
	}
	f.nextID++
	room.ID = f.nextID
	cp := *room
	f.items[room.ID] = &cp
	return nil
}

func (f *fakeMatchRoomRepo) GetByID(ctx context.Context, tenantID *int, id int) (*models.MatchRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[id]
	if !ok || (tenantID != nil && m.TenantID != *tenantID) {
		return nil, repositories.ErrMatchRoomNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMatchRoomRepo) ListByIDs(ctx context.Context, tenantID *int, tournamentID int, ids []int) ([]*models.MatchRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.MatchRoom, 0)
	seen := make(map[int]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		m, ok := f.items[id]
		if !ok || m.TournamentID != tournamentID {
			continue
		}
		if tenantID != nil && m.TenantID != *tenantID {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeMatchRoomRepo) ListByTournament(ctx context.Context, tenantID *int, tournamentID int, stageNumber *int) ([]*models.MatchRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.MatchRoom, 0)
	for _, m := range f.items {
		if m.TournamentID != tournamentID {
			continue
		}
		if tenantID != nil && m.TenantID != *tenantID {
			continue
		}
		if stageNumber != nil && m.StageNumber != *stageNumber {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMatchRoomRepo) Publish(ctx context.Context, tenantID *int, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[id]
	if !ok || (tenantID != nil && m.TenantID != *tenantID) {
		return repositories.ErrMatchRoomNotFound
	}
	if m.IsPublished {
		return repositories.ErrMatchRoomAlreadyPublished
	}
	m.IsPublished = true
	return nil
}

func (f *fakeMatchRoomRepo) GetCredentials(ctx context.Context, id int) (*models.RoomCredentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[id]
	if !ok {
		return nil, repositories.ErrMatchRoomNotFound
	}
	return &models.RoomCredentials{RoomCode: m.RoomCode, RoomPassword: m.RoomPassword}, nil
}

func (f *fakeMatchRoomRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, tenantID *int, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[id]
	if !ok || (tenantID != nil && m.TenantID != *tenantID) {
		return repositories.ErrMatchRoomNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeResultRepo struct {
	mu     sync.Mutex
	nextID int
	items  map[int]*models.Result
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{items: make(map[int]*models.Result)}
}

func (f *fakeResultRepo) Upsert(ctx context.Context, result *models.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.items {
		if r.MatchRoomID == result.MatchRoomID && r.TeamID == result.TeamID {
			if r.Locked {
				return repositories.ErrResultLocked
			}
			r.Position = result.Position
			r.Kills = result.Kills
			r.Points = result.Points
			result.ID = r.ID
			return nil
		}
	}
	f.nextID++
	result.ID = f.nextID
	cp := *result
	f.items[result.ID] = &cp
	return nil
}

func (f *fakeResultRepo) GetByID(ctx context.Context, id int) (*models.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return nil, repositories.ErrResultNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeResultRepo) LockByMatchRoom(ctx context.Context, exec repositories.SQLExecutor, matchRoomID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	locked := 0
	for _, r := range f.items {
		if r.MatchRoomID == matchRoomID && !r.Locked {
			r.Locked = true
			locked++
		}
	}
	return locked, nil
}

func (f *fakeResultRepo) DeleteUnlocked(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return repositories.ErrResultNotFound
	}
	if r.Locked {
		return repositories.ErrResultLocked
	}
	delete(f.items, id)
	return nil
}

func (f *fakeResultRepo) CountLockedByMatchRoom(ctx context.Context, exec repositories.SQLExecutor, matchRoomID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.items {
		if r.MatchRoomID == matchRoomID && r.Locked {
			count++
		}
	}
	return count, nil
}

func (f *fakeResultRepo) DeleteUnlockedByMatchRoom(ctx context.Context, exec repositories.SQLExecutor, matchRoomID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, r := range f.items {
		if r.MatchRoomID == matchRoomID && !r.Locked {
			delete(f.items, id)
		}
	}
	return nil
}

func (f *fakeResultRepo) ListByMatchRoom(ctx context.Context, matchRoomID int) ([]*models.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Result, 0)
	for _, r := range f.items {
		if r.MatchRoomID == matchRoomID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].Kills != out[j].Kills {
			return out[i].Kills > out[j].Kills
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out, nil
}

func (f *fakeResultRepo) ListLockedByMatchRooms(ctx context.Context, matchRoomIDs []int) ([]*models.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := make(map[int]bool, len(matchRoomIDs))
	for _, id := range matchRoomIDs {
		wanted[id] = true
	}
	out := make([]*models.Result, 0)
	for _, r := range f.items {
		if r.Locked && wanted[r.MatchRoomID] {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type stageKey struct {
	tournamentID int
	stageNumber  int
	teamID       int
}

type fakeStageResultRepo struct {
	mu     sync.Mutex
	nextID int
	items  map[stageKey]*models.StageResult
}

func newFakeStageResultRepo() *fakeStageResultRepo {
	return &fakeStageResultRepo{items: make(map[stageKey]*models.StageResult)}
}

func (f *fakeStageResultRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, sr *models.StageResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := stageKey{sr.TournamentID, sr.StageNumber, sr.TeamID}
	if existing, ok := f.items[key]; ok {
		existing.TeamName = sr.TeamName
		existing.MatchesPlayed = sr.MatchesPlayed
		existing.TotalKills = sr.TotalKills
		existing.TotalPoints = sr.TotalPoints
		existing.Rank = sr.Rank
		sr.ID = existing.ID
		// qualified намеренно не трогаем, как и настоящий Upsert.
		return nil
	}
	f.nextID++
	sr.ID = f.nextID
	cp := *sr
	f.items[key] = &cp
	return nil
}

func (f *fakeStageResultRepo) ListByStage(ctx context.Context, tournamentID, stageNumber int) ([]*models.StageResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.StageResult, 0)
	for key, sr := range f.items {
		if key.tournamentID == tournamentID && key.stageNumber == stageNumber {
			cp := *sr
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

func (f *fakeStageResultRepo) ClearQualified(ctx context.Context, exec repositories.SQLExecutor, tournamentID, stageNumber int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, sr := range f.items {
		if key.tournamentID == tournamentID && key.stageNumber == stageNumber {
			sr.Qualified = false
		}
	}
	return nil
}

func (f *fakeStageResultRepo) SetQualified(ctx context.Context, exec repositories.SQLExecutor, tournamentID, stageNumber int, teamIDs []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, teamID := range teamIDs {
		if sr, ok := f.items[stageKey{tournamentID, stageNumber, teamID}]; ok {
			sr.Qualified = true
		}
	}
	return nil
}

func (f *fakeStageResultRepo) DeleteByStage(ctx context.Context, exec repositories.SQLExecutor, tournamentID, stageNumber int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.items {
		if key.tournamentID == tournamentID && key.stageNumber == stageNumber {
			delete(f.items, key)
		}
	}
	return nil
}

type fakeScoringRepo struct {
	mu    sync.Mutex
	items map[int]*models.TournamentScoring
}

func newFakeScoringRepo() *fakeScoringRepo {
	return &fakeScoringRepo{items: make(map[int]*models.TournamentScoring)}
}

func (f *fakeScoringRepo) Upsert(ctx context.Context, s *models.TournamentScoring) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.items[s.TournamentID] = &cp
	return nil
}

func (f *fakeScoringRepo) GetByTournament(ctx context.Context, tournamentID int) (*models.TournamentScoring, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.items[tournamentID]
	if !ok {
		return nil, repositories.ErrScoringNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeScoringRepo) Delete(ctx context.Context, tenantID *int, tournamentID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[tournamentID]; !ok {
		return repositories.ErrScoringNotFound
	}
	delete(f.items, tournamentID)
	return nil
}

type fakeWalletRepo struct {
	mu      sync.Mutex
	nextID  int
	wallets map[int]*models.Wallet
	txns    []*models.WalletTransaction
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: make(map[int]*models.Wallet)}
}

func (f *fakeWalletRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, tenantID int) (*models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[tenantID]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (f *fakeWalletRepo) Create(ctx context.Context, exec repositories.SQLExecutor, tenantID int) (*models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Как и настоящий Create: проигравший гонку получает уже существующую
	// строку, а не ошибку уникальности.
	if w, ok := f.wallets[tenantID]; ok {
		cp := *w
		return &cp, nil
	}
	f.nextID++
	w := &models.Wallet{ID: f.nextID, TenantID: tenantID, Balance: decimal.Zero}
	f.wallets[tenantID] = w
	cp := *w
	return &cp, nil
}

func (f *fakeWalletRepo) GetByTenant(ctx context.Context, tenantID int) (*models.Wallet, error) {
	return f.GetForUpdate(ctx, nil, tenantID)
}

func (f *fakeWalletRepo) ApplyDelta(ctx context.Context, exec repositories.SQLExecutor, walletID int, newBalance decimal.Decimal, txn *models.WalletTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.wallets {
		if w.ID == walletID {
			w.Balance = newBalance
			txn.ID = len(f.txns) + 1
			cp := *txn
			f.txns = append(f.txns, &cp)
			return nil
		}
	}
	return repositories.ErrWalletNotFound
}

func (f *fakeWalletRepo) ListTransactions(ctx context.Context, tenantID int, limit, offset int) ([]*models.WalletTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.WalletTransaction, 0)
	for i := len(f.txns) - 1; i >= 0; i-- {
		if f.txns[i].TenantID == tenantID {
			cp := *f.txns[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakePaymentRepo struct {
	mu     sync.Mutex
	nextID int
	items  map[int]*models.PaymentProof
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{items: make(map[int]*models.PaymentProof)}
}

func (f *fakePaymentRepo) Create(ctx context.Context, proof *models.PaymentProof) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	proof.ID = f.nextID
	cp := *proof
	f.items[proof.ID] = &cp
	return nil
}

func (f *fakePaymentRepo) GetByID(ctx context.Context, tenantID *int, id int) (*models.PaymentProof, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok || (tenantID != nil && p.TenantID != *tenantID) {
		return nil, repositories.ErrPaymentProofNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentRepo) ListByTenant(ctx context.Context, tenantID int, status *models.PaymentProofStatus) ([]*models.PaymentProof, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.PaymentProof, 0)
	for _, p := range f.items {
		if p.TenantID != tenantID {
			continue
		}
		if status != nil && p.Status != *status {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePaymentRepo) TransitionStatus(ctx context.Context, tenantID *int, id int, status models.PaymentProofStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok || (tenantID != nil && p.TenantID != *tenantID) {
		return repositories.ErrPaymentProofNotFound
	}
	if p.Status != models.ProofPending {
		return repositories.ErrPaymentProofReviewed
	}
	p.Status = status
	return nil
}

type fakeReminderRepo struct {
	mu     sync.Mutex
	nextID int
	items  map[int]*models.Reminder
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{items: make(map[int]*models.Reminder)}
}

func (f *fakeReminderRepo) Create(ctx context.Context, reminder *models.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	reminder.ID = f.nextID
	cp := *reminder
	f.items[reminder.ID] = &cp
	return nil
}

func (f *fakeReminderRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	due := make([]*models.Reminder, 0)
	for _, r := range f.items {
		if r.Status == models.ReminderPending && !r.RemindAt.After(now) {
			cp := *r
			due = append(due, &cp)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].RemindAt.Before(due[j].RemindAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (f *fakeReminderRepo) get(id int) (*models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return nil, repositories.ErrReminderNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReminderRepo) MarkStatus(ctx context.Context, id int, status models.ReminderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return repositories.ErrReminderNotFound
	}
	r.Status = status
	return nil
}

func (f *fakeReminderRepo) ListByTenant(ctx context.Context, tenantID int) ([]*models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Reminder, 0)
	for _, r := range f.items {
		if r.TenantID == tenantID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeHub записывает рассылки для проверок.
type fakeHub struct {
	mu       sync.Mutex
	messages []broadcast
}

type broadcast struct {
	roomID  string
	message interface{}
}

func (f *fakeHub) BroadcastToRoom(roomID string, message interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, broadcast{roomID: roomID, message: message})
}

func (f *fakeHub) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

// fakeUploader держит загруженные объекты в памяти.
type fakeUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: make(map[string][]byte)}
}

func (f *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return &storage.UploadResult{Key: key, ETag: "fake"}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeUploader) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://storage.test/" + key + "?signed", nil
}

// fakeNotifier фиксирует отправки и падает для указанных адресов.
type fakeNotifier struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failFor: make(map[string]bool)}
}

func (f *fakeNotifier) Send(ctx context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[to] {
		return errors.New("delivery failed")
	}
	f.sent = append(f.sent, to)
	return nil
}

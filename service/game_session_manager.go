package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/wumpus-api/domain"
	"github.com/beka-birhanu/wumpus-api/game"
	"github.com/beka-birhanu/wumpus-api/game/cave"
	"github.com/beka-birhanu/wumpus-api/service/i"
	"github.com/google/uuid"
)

const (
	defaultLeaderboardSize = 10
	defaultHistorySize     = 20
	recordTimeout          = 3 * time.Second
)

// Session errors.
var (
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrGameNotOpen    = errors.New("game is no longer accepting players")
	ErrGameFull       = errors.New("game is full")
	ErrNotYourTurn    = errors.New("it is not your turn")
	ErrGameOver       = errors.New("game is over")
	ErrPlayerDead     = errors.New("player is dead")
)

// GameStatus is the lobby state of a session.
type GameStatus string

// Session states. A session is open until the first valid action, then running until it ends.
const (
	GameOpen    GameStatus = "open"
	GameRunning GameStatus = "running"
	GameOver    GameStatus = "over"
)

// JoinInfo is handed to a player entering a game.
type JoinInfo struct {
	GameID        uuid.UUID
	PlayerID      uuid.UUID
	StartLocation int
	Perceptions   []game.Perception
	NumCaves      int
	CurrentPlayer uuid.UUID
}

// GameSummary describes a session in the game list.
type GameSummary struct {
	ID            uuid.UUID
	Status        GameStatus
	Players       int
	NumCaves      int
	CurrentPlayer uuid.UUID
	CreatedAt     time.Time
}

// TurnInfo tells whose turn it is.
type TurnInfo struct {
	GameID        uuid.UUID
	CurrentPlayer uuid.UUID
	Status        GameStatus
	Turn          int
}

// TurnOutcome is the result of TakeTurn.
type TurnOutcome struct {
	Result     game.TurnResult
	NextPlayer uuid.UUID
	GameOver   bool
}

type session struct {
	sync.Mutex
	id        uuid.UUID
	seed      string
	game      *game.Game
	players   []uuid.UUID // turn order
	current   int
	status    GameStatus
	turns     int
	createdAt time.Time
	startedAt time.Time
	endedAt   time.Time
}

// currentPlayer returns the player whose turn it is, or uuid.Nil when nobody is seated.
func (s *session) currentPlayer() uuid.UUID {
	if len(s.players) == 0 {
		return uuid.Nil
	}
	return s.players[s.current]
}

// advance passes the turn to the next living player. With nobody else alive the
// current player keeps the turn.
func (s *session) advance() {
	n := len(s.players)
	for step := 1; step <= n; step++ {
		next := (s.current + step) % n
		if s.game.IsAlive(s.players[next]) {
			s.current = next
			return
		}
	}
}

// settle moves the turn onto a living player, starting with the current one.
func (s *session) settle() {
	n := len(s.players)
	for step := 0; step < n; step++ {
		next := (s.current + step) % n
		if s.game.IsAlive(s.players[next]) {
			s.current = next
			return
		}
	}
}

// remove takes a player out of the turn order and keeps the current index pointing
// at the same player, or at the next one when the leaver held the turn.
func (s *session) remove(playerID uuid.UUID) {
	idx := -1
	for k, pID := range s.players {
		if pID == playerID {
			idx = k
			break
		}
	}
	if idx < 0 {
		return
	}

	s.players = append(s.players[:idx], s.players[idx+1:]...)
	if idx < s.current {
		s.current--
	}
	if s.current >= len(s.players) {
		s.current = 0
	}
	if len(s.players) > 0 {
		s.settle()
	}
}

// end closes the session and builds its record.
func (s *session) end(outcome dmn.Outcome, winner *uuid.UUID) *dmn.GameRecord {
	s.status = GameOver
	s.endedAt = time.Now()
	return &dmn.GameRecord{
		ID:        s.id,
		Seed:      s.seed,
		Players:   append([]uuid.UUID{}, s.players...),
		Winner:    winner,
		Outcome:   outcome,
		Turns:     s.turns,
		StartedAt: s.startedAt,
		EndedAt:   s.endedAt,
	}
}

// GameSessionManager runs the lobby and turn order for every game on this server.
//
// The manager lock guards the session maps; each session has its own lock for
// its game. The manager lock is always taken before a session lock.
type GameSessionManager struct {
	sessions        map[uuid.UUID]*session
	playerToSession map[uuid.UUID]uuid.UUID
	caveOptions     cave.Options
	seed            string
	records         i.GameRecordRepo
	leaderboard     i.Leaderboard
	notifier        i.Notifier
	metrics         i.Metrics
	logger          i.Logger
	sync.RWMutex
}

// Config holds the dependencies of a GameSessionManager.
type Config struct {
	CaveOptions cave.Options // Size and density of every generated cave.
	Seed        string       // Fixed seed for every cave; a fresh one per game when empty.
	Records     i.GameRecordRepo
	Leaderboard i.Leaderboard
	Notifier    i.Notifier // Optional.
	Metrics     i.Metrics  // Optional.
	Logger      i.Logger
}

// NewGameSessionManager validates the configuration and returns an empty manager.
func NewGameSessionManager(c *Config) (*GameSessionManager, error) {
	if c.Records == nil || c.Leaderboard == nil || c.Logger == nil {
		return nil, errors.New("game records, leaderboard and logger are required")
	}
	if err := c.CaveOptions.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cave options: %w", err)
	}

	gsm := &GameSessionManager{
		sessions:        make(map[uuid.UUID]*session),
		playerToSession: make(map[uuid.UUID]uuid.UUID),
		caveOptions:     c.CaveOptions,
		seed:            c.Seed,
		records:         c.Records,
		leaderboard:     c.Leaderboard,
		notifier:        c.Notifier,
		metrics:         c.Metrics,
		logger:          c.Logger,
	}
	if gsm.notifier == nil {
		gsm.notifier = nopNotifier{}
	}
	if gsm.metrics == nil {
		gsm.metrics = nopMetrics{}
	}
	return gsm, nil
}

// CreateGame generates a new cave, opens a session on it and seats the creator.
func (g *GameSessionManager) CreateGame(ctx context.Context) (*JoinInfo, error) {
	seed := g.seed
	if seed == "" {
		seed = uuid.NewString()
	}

	layout, err := cave.New(seed, g.caveOptions, g.logger).Generate(ctx)
	if err != nil {
		g.logger.Error(fmt.Sprintf("generating cave: %s", err))
		return nil, err
	}

	engine, err := game.New(layout, cave.NewSeededSource(seed+":play"))
	if err != nil {
		g.logger.Error(fmt.Sprintf("creating game: %s", err))
		return nil, err
	}

	g.Lock()
	defer g.Unlock()

	s := &session{
		id:        g.newSessionID(),
		seed:      seed,
		game:      engine,
		status:    GameOpen,
		createdAt: time.Now(),
	}

	s.Lock()
	info, err := g.seat(s)
	s.Unlock()
	if err != nil {
		return nil, err
	}
	g.notifier.Open(s.id)
	g.sessions[s.id] = s

	g.metrics.GameCreated()
	g.metrics.SetActiveGames(g.activeGames())
	g.logger.Info(fmt.Sprintf("created game %s with seed %q", s.id, seed))
	return info, nil
}

// JoinGame seats a new player in an open game.
func (g *GameSessionManager) JoinGame(gameID uuid.UUID) (*JoinInfo, error) {
	g.Lock()
	defer g.Unlock()

	s, ok := g.sessions[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}

	s.Lock()
	defer s.Unlock()
	if s.status != GameOpen {
		return nil, ErrGameNotOpen
	}
	if len(s.players) >= game.MaxPlayers {
		return nil, ErrGameFull
	}

	info, err := g.seat(s)
	if err != nil {
		return nil, err
	}
	g.notifier.Publish(s.id, dmn.GameEvent{
		Type:          dmn.EventPlayerJoined,
		GameID:        s.id,
		PlayerID:      &info.PlayerID,
		CurrentPlayer: &info.CurrentPlayer,
		At:            time.Now(),
	})
	g.logger.Info(fmt.Sprintf("player %s joined game %s", info.PlayerID, s.id))
	return info, nil
}

// seat adds a fresh player to s. Both locks must be held.
func (g *GameSessionManager) seat(s *session) (*JoinInfo, error) {
	playerID := uuid.New()
	start, err := s.game.InitializePlayer(playerID)
	if errors.Is(err, game.ErrNoSpawnSlots) {
		return nil, ErrGameFull
	}
	if err != nil {
		return nil, err
	}

	s.players = append(s.players, playerID)
	g.playerToSession[playerID] = s.id

	status, err := s.game.Status(playerID)
	if err != nil {
		return nil, err
	}
	return &JoinInfo{
		GameID:        s.id,
		PlayerID:      playerID,
		StartLocation: start,
		Perceptions:   status.Perceptions,
		NumCaves:      s.game.NumRooms(),
		CurrentPlayer: s.currentPlayer(),
	}, nil
}

func (g *GameSessionManager) newSessionID() uuid.UUID {
	sessionID := uuid.New()
	for {
		if _, ok := g.sessions[sessionID]; !ok {
			break
		}
		sessionID = uuid.New()
	}
	return sessionID
}

// LeaveGame removes a player from their game. A game left without players is deleted.
func (g *GameSessionManager) LeaveGame(ctx context.Context, playerID uuid.UUID) error {
	g.Lock()
	sessionID, ok := g.playerToSession[playerID]
	if !ok {
		g.Unlock()
		return ErrPlayerNotFound
	}
	s := g.sessions[sessionID]
	delete(g.playerToSession, playerID)

	s.Lock()
	// a corner is only reused while the lobby can still seat someone
	if err := s.game.RemovePlayer(playerID, s.status == GameOpen); err != nil {
		g.logger.Warning(fmt.Sprintf("removing player %s from game %s: %s", playerID, sessionID, err))
	}
	s.remove(playerID)

	var record *dmn.GameRecord
	if s.status == GameRunning && s.game.AlivePlayers() == 0 {
		record = s.end(dmn.OutcomeAbandoned, nil)
	}
	empty := len(s.players) == 0
	current := s.currentPlayer()
	s.Unlock()

	if empty {
		delete(g.sessions, sessionID)
	}
	g.Unlock()

	g.logger.Info(fmt.Sprintf("player %s left game %s", playerID, sessionID))
	if record != nil {
		g.finish(ctx, record)
	}
	if empty {
		g.notifier.Close(sessionID)
		g.metrics.SetActiveGames(g.ActiveGames())
		return nil
	}

	g.notifier.Publish(sessionID, dmn.GameEvent{
		Type:          dmn.EventPlayerLeft,
		GameID:        sessionID,
		PlayerID:      &playerID,
		CurrentPlayer: &current,
		At:            time.Now(),
	})
	return nil
}

// DeleteGame tears a game down. A game still in progress is recorded as abandoned.
func (g *GameSessionManager) DeleteGame(ctx context.Context, gameID uuid.UUID) error {
	g.Lock()
	s, ok := g.sessions[gameID]
	if !ok {
		g.Unlock()
		return ErrGameNotFound
	}

	s.Lock()
	for _, pID := range s.players {
		delete(g.playerToSession, pID)
	}
	var record *dmn.GameRecord
	if s.status == GameRunning {
		record = s.end(dmn.OutcomeAbandoned, nil)
	}
	s.Unlock()

	delete(g.sessions, gameID)
	g.Unlock()

	if record != nil {
		g.finish(ctx, record)
	}
	g.notifier.Close(gameID)
	g.metrics.SetActiveGames(g.ActiveGames())
	g.logger.Info(fmt.Sprintf("deleted game %s", gameID))
	return nil
}

// ListGames returns every session, oldest first.
func (g *GameSessionManager) ListGames() []GameSummary {
	g.RLock()
	defer g.RUnlock()

	games := make([]GameSummary, 0, len(g.sessions))
	for _, s := range g.sessions {
		s.Lock()
		games = append(games, GameSummary{
			ID:            s.id,
			Status:        s.status,
			Players:       len(s.players),
			NumCaves:      s.game.NumRooms(),
			CurrentPlayer: s.currentPlayer(),
			CreatedAt:     s.createdAt,
		})
		s.Unlock()
	}

	sort.Slice(games, func(a, b int) bool {
		return games[a].CreatedAt.Before(games[b].CreatedAt)
	})
	return games
}

// TurnStatus reports whose turn it is in a game.
func (g *GameSessionManager) TurnStatus(gameID uuid.UUID) (TurnInfo, error) {
	s, err := g.session(gameID)
	if err != nil {
		return TurnInfo{}, err
	}

	s.Lock()
	defer s.Unlock()
	return TurnInfo{
		GameID:        s.id,
		CurrentPlayer: s.currentPlayer(),
		Status:        s.status,
		Turn:          s.turns,
	}, nil
}

// TakeTurn applies a player's action if it is their turn. Rejected actions keep the
// turn with the player; any other result passes it on to the next living player.
func (g *GameSessionManager) TakeTurn(ctx context.Context, playerID uuid.UUID, action game.Action, target int) (*TurnOutcome, error) {
	s, err := g.sessionOf(playerID)
	if err != nil {
		return nil, err
	}

	s.Lock()
	if s.status == GameOver {
		s.Unlock()
		return nil, ErrGameOver
	}
	if !s.game.IsAlive(playerID) {
		s.Unlock()
		return nil, ErrPlayerDead
	}
	if s.currentPlayer() != playerID {
		s.Unlock()
		return nil, ErrNotYourTurn
	}

	result := s.game.HandleTurn(playerID, action, target)

	var record *dmn.GameRecord
	if result.Status != game.StatusError {
		if s.status == GameOpen {
			s.status = GameRunning
			s.startedAt = time.Now()
		}
		s.turns++

		switch {
		case result.Status == game.StatusWin:
			record = s.end(dmn.OutcomeWumpusKilled, &playerID)
		case s.game.AlivePlayers() == 0:
			record = s.end(dmn.OutcomeAllDead, nil)
		default:
			s.advance()
		}
	}

	outcome := &TurnOutcome{
		Result:     result,
		NextPlayer: s.currentPlayer(),
		GameOver:   s.status == GameOver,
	}
	s.Unlock()

	g.metrics.TurnTaken(string(action), string(result.Status))
	if result.Status != game.StatusError {
		g.notifier.Publish(s.id, dmn.GameEvent{
			Type:          dmn.EventTurn,
			GameID:        s.id,
			PlayerID:      &playerID,
			CurrentPlayer: &outcome.NextPlayer,
			Status:        string(result.Status),
			Message:       result.Message,
			At:            time.Now(),
		})
	}
	if record != nil {
		g.finish(ctx, record)
	}
	return outcome, nil
}

// finish stores a finished game and announces it.
func (g *GameSessionManager) finish(ctx context.Context, record *dmn.GameRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := g.records.Save(ctx, record); err != nil {
		g.logger.Error(fmt.Sprintf("saving record of game %s: %s", record.ID, err))
	}
	if err := g.leaderboard.Record(ctx, record); err != nil {
		g.logger.Error(fmt.Sprintf("updating leaderboard for game %s: %s", record.ID, err))
	}

	g.metrics.GameEnded(string(record.Outcome))
	g.metrics.SetActiveGames(g.ActiveGames())
	g.notifier.Publish(record.ID, dmn.GameEvent{
		Type:    dmn.EventGameOver,
		GameID:  record.ID,
		Status:  string(record.Outcome),
		Message: fmt.Sprintf("Game over after %d turns.", record.Turns),
		At:      time.Now(),
	})
	g.logger.Info(fmt.Sprintf("game %s over: %s", record.ID, record.Outcome))
}

// PlayerStatus returns the state of a player.
func (g *GameSessionManager) PlayerStatus(playerID uuid.UUID) (game.PlayerStatus, error) {
	s, err := g.sessionOf(playerID)
	if err != nil {
		return game.PlayerStatus{}, err
	}

	s.Lock()
	defer s.Unlock()
	return s.game.Status(playerID)
}

// Neighbors returns the links of the player's current room.
func (g *GameSessionManager) Neighbors(playerID uuid.UUID) (cave.Links, error) {
	s, err := g.sessionOf(playerID)
	if err != nil {
		return cave.NoLinks(), err
	}

	s.Lock()
	defer s.Unlock()
	return s.game.Neighbors(playerID)
}

// MapData returns the adjacency of every room in a game.
func (g *GameSessionManager) MapData(gameID uuid.UUID) ([]cave.Links, error) {
	s, err := g.session(gameID)
	if err != nil {
		return nil, err
	}

	s.Lock()
	defer s.Unlock()
	return s.game.MapData(), nil
}

// Hazards reveals where the dangers of a game are.
func (g *GameSessionManager) Hazards(gameID uuid.UUID) (game.Hazards, error) {
	s, err := g.session(gameID)
	if err != nil {
		return game.Hazards{}, err
	}

	s.Lock()
	defer s.Unlock()
	return s.game.Hazards(), nil
}

// GameOf returns the game a player is seated in.
func (g *GameSessionManager) GameOf(playerID uuid.UUID) (uuid.UUID, error) {
	g.RLock()
	defer g.RUnlock()
	sessionID, ok := g.playerToSession[playerID]
	if !ok {
		return uuid.Nil, ErrPlayerNotFound
	}
	return sessionID, nil
}

// Leaderboard returns the top n players. A non-positive n uses the default size.
func (g *GameSessionManager) Leaderboard(ctx context.Context, n int) ([]dmn.LeaderboardEntry, error) {
	if n <= 0 {
		n = defaultLeaderboardSize
	}
	return g.leaderboard.Top(ctx, n)
}

// History returns the last n finished games. A non-positive n uses the default size.
func (g *GameSessionManager) History(ctx context.Context, n int) ([]*dmn.GameRecord, error) {
	if n <= 0 {
		n = defaultHistorySize
	}
	return g.records.Recent(ctx, n)
}

// ActiveGames counts sessions that have not ended.
func (g *GameSessionManager) ActiveGames() int {
	g.RLock()
	defer g.RUnlock()
	return g.activeGames()
}

func (g *GameSessionManager) activeGames() int {
	n := 0
	for _, s := range g.sessions {
		s.Lock()
		if s.status != GameOver {
			n++
		}
		s.Unlock()
	}
	return n
}

// PruneFinished drops ended games older than maxAge and returns how many were removed.
func (g *GameSessionManager) PruneFinished(maxAge time.Duration) int {
	g.Lock()
	cutoff := time.Now().Add(-maxAge)
	pruned := make([]uuid.UUID, 0)
	for id, s := range g.sessions {
		s.Lock()
		if s.status == GameOver && s.endedAt.Before(cutoff) {
			for _, pID := range s.players {
				delete(g.playerToSession, pID)
			}
			delete(g.sessions, id)
			pruned = append(pruned, id)
		}
		s.Unlock()
	}
	g.Unlock()

	for _, id := range pruned {
		g.notifier.Close(id)
	}
	if len(pruned) > 0 {
		g.logger.Info(fmt.Sprintf("pruned %d finished games", len(pruned)))
	}
	return len(pruned)
}

// StopAll disconnects every watcher. Sessions are kept in memory.
func (g *GameSessionManager) StopAll() {
	g.RLock()
	defer g.RUnlock()
	for id := range g.sessions {
		g.notifier.Close(id)
	}
}

func (g *GameSessionManager) session(gameID uuid.UUID) (*session, error) {
	g.RLock()
	defer g.RUnlock()
	s, ok := g.sessions[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	return s, nil
}

func (g *GameSessionManager) sessionOf(playerID uuid.UUID) (*session, error) {
	g.RLock()
	defer g.RUnlock()
	sessionID, ok := g.playerToSession[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	s, ok := g.sessions[sessionID]
	if !ok {
		return nil, ErrGameNotFound
	}
	return s, nil
}

type nopNotifier struct{}

func (nopNotifier) Open(uuid.UUID)                   {}
func (nopNotifier) Publish(uuid.UUID, dmn.GameEvent) {}
func (nopNotifier) Close(uuid.UUID)                  {}

type nopMetrics struct{}

func (nopMetrics) GameCreated()             {}
func (nopMetrics) GameEnded(string)         {}
func (nopMetrics) TurnTaken(string, string) {}
func (nopMetrics) SetActiveGames(int)       {}

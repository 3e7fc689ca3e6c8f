package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dmn "github.com/beka-birhanu/wumpus-api/domain"
	"github.com/beka-birhanu/wumpus-api/game"
	"github.com/beka-birhanu/wumpus-api/game/cave"
	"github.com/beka-birhanu/wumpus-api/infrastruture/log"
	"github.com/beka-birhanu/wumpus-api/infrastruture/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	sync.Mutex
	events  []dmn.EventType
	opened  []uuid.UUID
	closed  []uuid.UUID
	created int
	ended   []string
}

func (r *recorder) Open(gameID uuid.UUID) {
	r.Lock()
	defer r.Unlock()
	r.opened = append(r.opened, gameID)
}

func (r *recorder) Publish(_ uuid.UUID, event dmn.GameEvent) {
	r.Lock()
	defer r.Unlock()
	r.events = append(r.events, event.Type)
}

func (r *recorder) Close(gameID uuid.UUID) {
	r.Lock()
	defer r.Unlock()
	r.closed = append(r.closed, gameID)
}

func (r *recorder) GameCreated() {
	r.Lock()
	defer r.Unlock()
	r.created++
}

func (r *recorder) GameEnded(outcome string) {
	r.Lock()
	defer r.Unlock()
	r.ended = append(r.ended, outcome)
}

func (r *recorder) TurnTaken(string, string) {}
func (r *recorder) SetActiveGames(int)       {}

func newManager(t *testing.T, seed string) (*GameSessionManager, *recorder) {
	t.Helper()
	rec := &recorder{}
	gsm, err := NewGameSessionManager(&Config{
		CaveOptions: cave.DefaultOptions(),
		Seed:        seed,
		Records:     memory.NewGameRecordRepo(),
		Leaderboard: memory.NewLeaderboard(),
		Notifier:    rec,
		Metrics:     rec,
		Logger:      log.NewNop(),
	})
	require.NoError(t, err)
	return gsm, rec
}

// safePath walks the cave breadth first from start, avoiding every hazard, and
// returns the rooms to move through to reach a room satisfying goal.
func safePath(links []cave.Links, hazards game.Hazards, start int, goal func(int) bool) ([]int, bool) {
	blocked := map[int]bool{}
	for _, p := range hazards.Pits {
		blocked[p] = true
	}
	for _, b := range hazards.Bats {
		blocked[b] = true
	}
	if hazards.Wumpus != nil {
		blocked[*hazards.Wumpus] = true
	}

	prev := map[int]int{start: cave.None}
	queue := []int{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if goal(cur) {
			path := []int{}
			for r := cur; r != start; r = prev[r] {
				path = append([]int{r}, path...)
			}
			return path, true
		}
		for _, n := range links[cur].Rooms() {
			if _, seen := prev[n]; seen || blocked[n] {
				continue
			}
			prev[n] = cur
			queue = append(queue, n)
		}
	}
	return nil, false
}

// scenario is a fresh game whose creator can safely reach a room satisfying goal.
type scenario struct {
	gsm     *GameSessionManager
	rec     *recorder
	creator *JoinInfo
	hazards game.Hazards
	path    []int
}

func findScenario(t *testing.T, goal func([]cave.Links, game.Hazards) func(int) bool) scenario {
	t.Helper()
	for k := 0; k < 40; k++ {
		gsm, rec := newManager(t, fmt.Sprintf("scenario-%d", k))
		info, err := gsm.CreateGame(context.Background())
		require.NoError(t, err)

		hazards, err := gsm.Hazards(info.GameID)
		require.NoError(t, err)
		links, err := gsm.MapData(info.GameID)
		require.NoError(t, err)

		if path, ok := safePath(links, hazards, info.StartLocation, goal(links, hazards)); ok {
			return scenario{gsm: gsm, rec: rec, creator: info, hazards: hazards, path: path}
		}
	}
	t.Fatal("no seed gave a safe path")
	return scenario{}
}

func nextToWumpus(links []cave.Links, hazards game.Hazards) func(int) bool {
	return func(r int) bool { return links[r].Contains(*hazards.Wumpus) }
}

func nextToPit(links []cave.Links, hazards game.Hazards) func(int) bool {
	return func(r int) bool {
		for _, p := range hazards.Pits {
			if links[r].Contains(p) {
				return true
			}
		}
		return false
	}
}

func TestNewGameSessionManager(t *testing.T) {
	_, err := NewGameSessionManager(&Config{CaveOptions: cave.DefaultOptions()})
	assert.Error(t, err)

	_, err = NewGameSessionManager(&Config{
		CaveOptions: cave.Options{Width: 4, Height: 4},
		Records:     memory.NewGameRecordRepo(),
		Leaderboard: memory.NewLeaderboard(),
		Logger:      log.NewNop(),
	})
	assert.ErrorIs(t, err, cave.ErrDimensionTooSmall)
}

func TestLobby(t *testing.T) {
	ctx := context.Background()

	t.Run("create seats the creator", func(t *testing.T) {
		gsm, rec := newManager(t, "lobby")
		info, err := gsm.CreateGame(ctx)
		require.NoError(t, err)

		assert.Equal(t, 64, info.NumCaves)
		assert.Equal(t, info.PlayerID, info.CurrentPlayer)
		assert.NotNil(t, info.Perceptions)
		assert.Equal(t, 1, rec.created)
		assert.Equal(t, []uuid.UUID{info.GameID}, rec.opened)

		status, err := gsm.PlayerStatus(info.PlayerID)
		require.NoError(t, err)
		assert.Equal(t, info.StartLocation, status.Location)

		games := gsm.ListGames()
		require.Len(t, games, 1)
		assert.Equal(t, info.GameID, games[0].ID)
		assert.Equal(t, GameOpen, games[0].Status)
		assert.Equal(t, 1, games[0].Players)
		assert.Equal(t, 1, gsm.ActiveGames())
	})

	t.Run("join fills the four corners", func(t *testing.T) {
		gsm, rec := newManager(t, "lobby")
		info, err := gsm.CreateGame(ctx)
		require.NoError(t, err)

		starts := map[int]bool{info.StartLocation: true}
		for k := 1; k < game.MaxPlayers; k++ {
			joined, err := gsm.JoinGame(info.GameID)
			require.NoError(t, err)
			assert.Equal(t, info.PlayerID, joined.CurrentPlayer)
			starts[joined.StartLocation] = true
		}
		assert.Len(t, starts, game.MaxPlayers)
		assert.Contains(t, rec.events, dmn.EventPlayerJoined)

		_, err = gsm.JoinGame(info.GameID)
		assert.ErrorIs(t, err, ErrGameFull)

		_, err = gsm.JoinGame(uuid.New())
		assert.ErrorIs(t, err, ErrGameNotFound)
	})

	t.Run("first valid action closes the lobby", func(t *testing.T) {
		gsm, _ := newManager(t, "lobby")
		first, err := gsm.CreateGame(ctx)
		require.NoError(t, err)
		second, err := gsm.JoinGame(first.GameID)
		require.NoError(t, err)

		_, err = gsm.TakeTurn(ctx, second.PlayerID, game.ActionPass, game.NoTarget)
		assert.ErrorIs(t, err, ErrNotYourTurn)

		out, err := gsm.TakeTurn(ctx, first.PlayerID, game.ActionMove, cave.None)
		require.NoError(t, err)
		assert.Equal(t, game.StatusError, out.Result.Status)
		assert.Equal(t, first.PlayerID, out.NextPlayer)

		turn, err := gsm.TurnStatus(first.GameID)
		require.NoError(t, err)
		assert.Equal(t, GameOpen, turn.Status)
		assert.Equal(t, 0, turn.Turn)

		out, err = gsm.TakeTurn(ctx, first.PlayerID, game.ActionPass, game.NoTarget)
		require.NoError(t, err)
		assert.Equal(t, game.StatusOK, out.Result.Status)
		assert.Equal(t, second.PlayerID, out.NextPlayer)

		turn, err = gsm.TurnStatus(first.GameID)
		require.NoError(t, err)
		assert.Equal(t, GameRunning, turn.Status)
		assert.Equal(t, second.PlayerID, turn.CurrentPlayer)
		assert.Equal(t, 1, turn.Turn)

		_, err = gsm.JoinGame(first.GameID)
		assert.ErrorIs(t, err, ErrGameNotOpen)

		out, err = gsm.TakeTurn(ctx, second.PlayerID, game.ActionPass, game.NoTarget)
		require.NoError(t, err)
		assert.Equal(t, first.PlayerID, out.NextPlayer)
	})

	t.Run("leaving passes the turn on", func(t *testing.T) {
		gsm, rec := newManager(t, "lobby")
		first, err := gsm.CreateGame(ctx)
		require.NoError(t, err)
		second, err := gsm.JoinGame(first.GameID)
		require.NoError(t, err)
		third, err := gsm.JoinGame(first.GameID)
		require.NoError(t, err)

		require.NoError(t, gsm.LeaveGame(ctx, first.PlayerID))
		assert.ErrorIs(t, gsm.LeaveGame(ctx, first.PlayerID), ErrPlayerNotFound)

		turn, err := gsm.TurnStatus(first.GameID)
		require.NoError(t, err)
		assert.Equal(t, second.PlayerID, turn.CurrentPlayer)

		_, err = gsm.PlayerStatus(first.PlayerID)
		assert.ErrorIs(t, err, ErrPlayerNotFound)

		require.NoError(t, gsm.LeaveGame(ctx, third.PlayerID))
		turn, err = gsm.TurnStatus(first.GameID)
		require.NoError(t, err)
		assert.Equal(t, second.PlayerID, turn.CurrentPlayer)

		require.NoError(t, gsm.LeaveGame(ctx, second.PlayerID))
		_, err = gsm.TurnStatus(first.GameID)
		assert.ErrorIs(t, err, ErrGameNotFound)
		assert.Contains(t, rec.closed, first.GameID)
		assert.Contains(t, rec.events, dmn.EventPlayerLeft)
	})

	t.Run("delete removes the game and its players", func(t *testing.T) {
		gsm, rec := newManager(t, "lobby")
		info, err := gsm.CreateGame(ctx)
		require.NoError(t, err)

		require.NoError(t, gsm.DeleteGame(ctx, info.GameID))
		assert.ErrorIs(t, gsm.DeleteGame(ctx, info.GameID), ErrGameNotFound)

		_, err = gsm.Neighbors(info.PlayerID)
		assert.ErrorIs(t, err, ErrPlayerNotFound)
		_, err = gsm.MapData(info.GameID)
		assert.ErrorIs(t, err, ErrGameNotFound)
		assert.Empty(t, gsm.ListGames())
		assert.Contains(t, rec.closed, info.GameID)
	})

	t.Run("stop all closes every stream", func(t *testing.T) {
		gsm, rec := newManager(t, "")
		a, err := gsm.CreateGame(ctx)
		require.NoError(t, err)
		b, err := gsm.CreateGame(ctx)
		require.NoError(t, err)

		gsm.StopAll()
		assert.ElementsMatch(t, []uuid.UUID{a.GameID, b.GameID}, rec.closed)
		assert.Len(t, gsm.ListGames(), 2)
	})

	t.Run("fixed seed repeats the cave", func(t *testing.T) {
		gsm, _ := newManager(t, "same-cave")
		a, err := gsm.CreateGame(ctx)
		require.NoError(t, err)
		b, err := gsm.CreateGame(ctx)
		require.NoError(t, err)

		mapA, _ := gsm.MapData(a.GameID)
		mapB, _ := gsm.MapData(b.GameID)
		assert.Equal(t, mapA, mapB)
		assert.Equal(t, a.StartLocation, b.StartLocation)
		assert.NotEqual(t, a.GameID, b.GameID)
	})
}

func TestNeighborsFollowThePlayer(t *testing.T) {
	gsm, _ := newManager(t, "neighbors")
	info, err := gsm.CreateGame(context.Background())
	require.NoError(t, err)

	links, err := gsm.Neighbors(info.PlayerID)
	require.NoError(t, err)
	all, err := gsm.MapData(info.GameID)
	require.NoError(t, err)
	assert.Equal(t, all[info.StartLocation], links)
	assert.NotEmpty(t, links.Rooms())
}

func TestWinningGame(t *testing.T) {
	ctx := context.Background()
	s := findScenario(t, nextToWumpus)
	hunter := s.creator.PlayerID

	for _, room := range s.path {
		out, err := s.gsm.TakeTurn(ctx, hunter, game.ActionMove, room)
		require.NoError(t, err)
		require.Equal(t, game.StatusOK, out.Result.Status, out.Result.Message)
	}

	status, err := s.gsm.PlayerStatus(hunter)
	require.NoError(t, err)
	assert.Contains(t, status.Perceptions, game.Stench)

	out, err := s.gsm.TakeTurn(ctx, hunter, game.ActionShoot, *s.hazards.Wumpus)
	require.NoError(t, err)
	assert.Equal(t, game.StatusWin, out.Result.Status)
	assert.True(t, out.GameOver)

	_, err = s.gsm.TakeTurn(ctx, hunter, game.ActionPass, game.NoTarget)
	assert.ErrorIs(t, err, ErrGameOver)

	hazards, err := s.gsm.Hazards(s.creator.GameID)
	require.NoError(t, err)
	assert.Nil(t, hazards.Wumpus)

	history, err := s.gsm.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, dmn.OutcomeWumpusKilled, history[0].Outcome)
	require.NotNil(t, history[0].Winner)
	assert.Equal(t, hunter, *history[0].Winner)
	assert.Equal(t, len(s.path)+1, history[0].Turns)

	top, err := s.gsm.Leaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, dmn.LeaderboardEntry{PlayerID: hunter.String(), Wins: 1, Played: 1}, top[0])

	assert.Equal(t, []string{string(dmn.OutcomeWumpusKilled)}, s.rec.ended)
	assert.Contains(t, s.rec.events, dmn.EventGameOver)
	assert.Equal(t, 0, s.gsm.ActiveGames())
	assert.Equal(t, 1, s.gsm.PruneFinished(0))
	assert.Empty(t, s.gsm.ListGames())
}

func TestLosingGame(t *testing.T) {
	ctx := context.Background()

	t.Run("the last player falling ends the game", func(t *testing.T) {
		s := findScenario(t, nextToPit)
		victim := s.creator.PlayerID
		for _, room := range s.path {
			_, err := s.gsm.TakeTurn(ctx, victim, game.ActionMove, room)
			require.NoError(t, err)
		}

		links, err := s.gsm.Neighbors(victim)
		require.NoError(t, err)
		pit := cave.None
		for _, p := range s.hazards.Pits {
			if links.Contains(p) {
				pit = p
			}
		}
		require.NotEqual(t, cave.None, pit)

		out, err := s.gsm.TakeTurn(ctx, victim, game.ActionMove, pit)
		require.NoError(t, err)
		assert.Equal(t, game.StatusLost, out.Result.Status)
		assert.True(t, out.GameOver)

		history, err := s.gsm.History(ctx, 5)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, dmn.OutcomeAllDead, history[0].Outcome)
		assert.Nil(t, history[0].Winner)

		top, err := s.gsm.Leaderboard(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, top)
	})

	t.Run("dead players are skipped", func(t *testing.T) {
		s := findScenario(t, nextToPit)
		victim := s.creator.PlayerID
		other, err := s.gsm.JoinGame(s.creator.GameID)
		require.NoError(t, err)

		for _, room := range s.path {
			_, err := s.gsm.TakeTurn(ctx, victim, game.ActionMove, room)
			require.NoError(t, err)
			_, err = s.gsm.TakeTurn(ctx, other.PlayerID, game.ActionPass, game.NoTarget)
			require.NoError(t, err)
		}

		links, err := s.gsm.Neighbors(victim)
		require.NoError(t, err)
		for _, p := range s.hazards.Pits {
			if links.Contains(p) {
				out, err := s.gsm.TakeTurn(ctx, victim, game.ActionMove, p)
				require.NoError(t, err)
				require.Equal(t, game.StatusLost, out.Result.Status)
				assert.False(t, out.GameOver)
				assert.Equal(t, other.PlayerID, out.NextPlayer)
				break
			}
		}

		_, err = s.gsm.TakeTurn(ctx, victim, game.ActionPass, game.NoTarget)
		assert.ErrorIs(t, err, ErrPlayerDead)

		for k := 0; k < 3; k++ {
			out, err := s.gsm.TakeTurn(ctx, other.PlayerID, game.ActionPass, game.NoTarget)
			require.NoError(t, err)
			assert.Equal(t, other.PlayerID, out.NextPlayer)
		}

		status, err := s.gsm.PlayerStatus(victim)
		require.NoError(t, err)
		assert.False(t, status.Alive)
		assert.Empty(t, status.Perceptions)

		require.NoError(t, s.gsm.LeaveGame(ctx, other.PlayerID))
		history, err := s.gsm.History(ctx, 5)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, dmn.OutcomeAbandoned, history[0].Outcome)
	})
}

func TestConcurrentLobby(t *testing.T) {
	ctx := context.Background()
	gsm, _ := newManager(t, "")

	var wg sync.WaitGroup
	games := make(chan uuid.UUID, 8)
	for k := 0; k < 8; k++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, err := gsm.CreateGame(ctx)
			if assert.NoError(t, err) {
				games <- info.GameID
			}
		}()
	}
	wg.Wait()
	close(games)

	for gameID := range games {
		for k := 0; k < game.MaxPlayers; k++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = gsm.JoinGame(gameID)
				_ = gsm.ListGames()
			}()
		}
	}
	wg.Wait()

	list := gsm.ListGames()
	assert.Len(t, list, 8)
	for _, g := range list {
		assert.Equal(t, game.MaxPlayers, g.Players)
	}
}

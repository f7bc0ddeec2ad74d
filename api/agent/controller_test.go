package agentapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	identityapi "github.com/beka-birhanu/vinom-autoplayer/api/identity"
	"github.com/beka-birhanu/vinom-autoplayer/game"
	"github.com/beka-birhanu/vinom-autoplayer/game/move"
	"github.com/beka-birhanu/vinom-autoplayer/game/planner"
	"github.com/beka-birhanu/vinom-autoplayer/game/world"
	"github.com/beka-birhanu/vinom-autoplayer/service"
	"github.com/beka-birhanu/vinom-autoplayer/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMonitor struct {
	status   i.AgentStatus
	rows     [][]string
	records  []*game.TurnRecord
	turnsErr error
	gameErr  error
	limit    int64
	controls []string
}

func (s *stubMonitor) Status() i.AgentStatus { return s.status }
func (s *stubMonitor) WorldRows() [][]string { return s.rows }

func (s *stubMonitor) RecentTurns(_ context.Context, limit int64) ([]*game.TurnRecord, error) {
	s.limit = limit
	return s.records, s.turnsErr
}

func (s *stubMonitor) StartGame(context.Context) error {
	s.controls = append(s.controls, game.StartToken)
	return s.gameErr
}

func (s *stubMonitor) StopGame(context.Context) error {
	s.controls = append(s.controls, game.StopToken)
	return s.gameErr
}

// newEngine serves the controller as an operator whose token claims lobby.
func newEngine(t *testing.T, m i.AgentMonitor, lobby string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, err := NewAgentController(m)
	require.NoError(t, err)

	engine := gin.New()
	group := engine.Group("/api/v1", func(ctx *gin.Context) {
		ctx.Set(identityapi.ContextOperatorClaims, map[string]any{identityapi.ClaimLobby: lobby})
	})
	c.RegisterPublic(group)
	c.RegisterProtected(group)
	return engine
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestAgentController(t *testing.T) {
	agentID := uuid.New()
	monitor := &stubMonitor{
		status: i.AgentStatus{
			AgentID: agentID,
			Session: game.Session{LobbyName: "FirstLobby", TeamName: "Team1", PlayerName: "Player1"},
			State:   game.AwaitingObservation,
			Turns:   1,
			LastTurn: &game.Turn{
				Number:    1,
				Position:  world.At(5, 5),
				Target:    planner.NearestUnexplored,
				Path:      planner.Path{world.At(5, 4), world.At(5, 3), world.At(5, 2)},
				Direction: move.Left,
			},
		},
		rows: [][]string{{"O", "X"}, {"W", "P"}},
	}
	engine := newEngine(t, monitor, "FirstLobby")

	t.Run("Health reports the agent state", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/api/v1/health")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","state":"awaiting_observation"}`, w.Body.String())
	})

	t.Run("Status describes the last turn", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/api/v1/agent")
		require.Equal(t, http.StatusOK, w.Code)

		var response StatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, agentID.String(), response.AgentID)
		assert.Equal(t, "Player1", response.Session.Player)
		require.NotNil(t, response.LastTurn)
		assert.Equal(t, "LEFT", response.LastTurn.Command)
		assert.Equal(t, "nearest_unexplored", response.LastTurn.Target)
		assert.Equal(t, [][2]int{{5, 4}, {5, 3}, {5, 2}}, response.LastTurn.Path)
	})

	t.Run("World returns symbol rows", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/api/v1/agent/world")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"rows":[["O","X"],["W","P"]]}`, w.Body.String())
	})

	t.Run("Turns passes the limit through", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/api/v1/agent/turns?limit=5")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"turns":[]}`, w.Body.String())
		assert.Equal(t, int64(5), monitor.limit)
	})

	t.Run("Turns rejects a bad limit", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/api/v1/agent/turns?limit=abc")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = serve(engine, http.MethodGet, "/api/v1/agent/turns?limit=501")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Start and stop publish control tokens", func(t *testing.T) {
		assert.Equal(t, http.StatusAccepted, serve(engine, http.MethodPost, "/api/v1/agent/game/start").Code)
		assert.Equal(t, http.StatusAccepted, serve(engine, http.MethodPost, "/api/v1/agent/game/stop").Code)
		assert.Equal(t, []string{game.StartToken, game.StopToken}, monitor.controls)
	})

	t.Run("Start and stop are refused outside the operator's lobby", func(t *testing.T) {
		monitor.controls = nil
		for _, lobby := range []string{"SecondLobby", ""} {
			other := newEngine(t, monitor, lobby)
			assert.Equal(t, http.StatusForbidden, serve(other, http.MethodPost, "/api/v1/agent/game/start").Code)
			assert.Equal(t, http.StatusForbidden, serve(other, http.MethodPost, "/api/v1/agent/game/stop").Code)
			assert.Equal(t, http.StatusOK, serve(other, http.MethodGet, "/api/v1/agent").Code)
		}
		assert.Empty(t, monitor.controls)
	})
}

func TestAgentControllerErrors(t *testing.T) {
	monitor := &stubMonitor{
		status:   i.AgentStatus{Session: game.Session{LobbyName: "FirstLobby"}},
		turnsErr: service.ErrJournalDisabled,
		gameErr:  errors.New("broker down"),
	}
	engine := newEngine(t, monitor, "FirstLobby")

	assert.Equal(t, http.StatusServiceUnavailable, serve(engine, http.MethodGet, "/api/v1/agent/turns").Code)
	assert.Zero(t, monitor.limit)
	assert.Equal(t, http.StatusBadGateway, serve(engine, http.MethodPost, "/api/v1/agent/game/start").Code)

	monitor.turnsErr = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, serve(engine, http.MethodGet, "/api/v1/agent/turns").Code)

	_, err := NewAgentController(nil)
	assert.ErrorIs(t, err, service.ErrMissingDependency)
}

package agentapi

import (
	"errors"
	"fmt"
	"net/http"

	identityapi "github.com/beka-birhanu/vinom-autoplayer/api/identity"
	"github.com/beka-birhanu/vinom-autoplayer/game"
	"github.com/beka-birhanu/vinom-autoplayer/service"
	"github.com/beka-birhanu/vinom-autoplayer/service/i"
	"github.com/gin-gonic/gin"
)

// AgentController serves the monitor endpoints of a running agent.
type AgentController struct {
	monitor i.AgentMonitor
}

// NewAgentController creates an AgentController.
func NewAgentController(m i.AgentMonitor) (*AgentController, error) {
	if m == nil {
		return nil, service.ErrMissingDependency
	}
	return &AgentController{monitor: m}, nil
}

// RegisterPublic registers public routes.
func (ac *AgentController) RegisterPublic(route *gin.RouterGroup) {
	route.GET("/health", ac.health)
}

// RegisterProtected registers protected routes.
func (ac *AgentController) RegisterProtected(route *gin.RouterGroup) {
	agent := route.Group("/agent")
	{
		agent.GET("", ac.status)
		agent.GET("/world", ac.world)
		agent.GET("/turns", ac.turns)
		agent.POST("/game/start", ac.startGame)
		agent.POST("/game/stop", ac.stopGame)
	}
}

func (ac *AgentController) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"state":  ac.monitor.Status().State.String(),
	})
}

func (ac *AgentController) status(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, newStatusResponse(ac.monitor.Status()))
}

func (ac *AgentController) world(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, &WorldResponse{Rows: ac.monitor.WorldRows()})
}

func (ac *AgentController) turns(ctx *gin.Context) {
	var query TurnsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := ac.monitor.RecentTurns(ctx.Request.Context(), query.Limit)
	if errors.Is(err, service.ErrJournalDisabled) {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if records == nil {
		records = []*game.TurnRecord{}
	}
	ctx.JSON(http.StatusOK, &TurnsResponse{Turns: records})
}

// controlsLobby aborts with 403 unless the operator's lobby claim matches
// the lobby the agent plays in.
func (ac *AgentController) controlsLobby(ctx *gin.Context) bool {
	lobby := ac.monitor.Status().Session.LobbyName
	if claimed, ok := identityapi.OperatorLobby(ctx); !ok || claimed != lobby {
		ctx.JSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("operator may not control lobby %s", lobby)})
		return false
	}
	return true
}

func (ac *AgentController) startGame(ctx *gin.Context) {
	if !ac.controlsLobby(ctx) {
		return
	}
	if err := ac.monitor.StartGame(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusAccepted, gin.H{"message": "start requested"})
}

func (ac *AgentController) stopGame(ctx *gin.Context) {
	if !ac.controlsLobby(ctx) {
		return
	}
	if err := ac.monitor.StopGame(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusAccepted, gin.H{"message": "stop requested"})
}

package controller

import (
	"ctchen222/tictactoe/internal/api/models"
	"ctchen222/tictactoe/internal/api/response"
	"ctchen222/tictactoe/internal/api/service"
	"ctchen222/tictactoe/internal/game"
	"net/http"

	"github.com/gin-gonic/gin"
)

// EngineController serves the stateless rules endpoints.
type EngineController struct {
	engineService service.EngineService
}

// NewEngineController creates a new EngineController.
func NewEngineController(engineService service.EngineService) *EngineController {
	return &EngineController{
		engineService: engineService,
	}
}

// Evaluate handles the board evaluation endpoint.
func (ec *EngineController) Evaluate(c *gin.Context) {
	var req models.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	board, err := game.ParseBoard(req.Board)
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	response.SuccessResponse(c, ec.engineService.Evaluate(board))
}

// Move handles the computer move endpoint.
func (ec *EngineController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	board, err := game.ParseBoard(req.Board)
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	response.SuccessResponse(c, ec.engineService.Move(board, req.Difficulty, req.Mark))
}

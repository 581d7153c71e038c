package game

import (
	"encoding/json"
	"net/http"

	"github.com/PiGomoku/pi-gomoku-backend/internal/user"
	"github.com/gin-gonic/gin"
)

type RecordGameRequest struct {
	UserID     string          `json:"userId" binding:"required"`
	Username   string          `json:"username"`
	GameResult user.GameResult `json:"gameResult" binding:"required"`
	// GameData 是客户端上报的对局细节，原样入库
	GameData json.RawMessage `json:"gameData"`
}

// RecordGameHandler 处理 POST /api/games/record
func RecordGameHandler(c *gin.Context) {
	var req RecordGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "缺少userId或gameResult"})
		return
	}

	result, err := RecordGame(req.UserID, req.Username, req.GameResult, string(req.GameData))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"gameId":    result.GameID,
		"userStats": result.Stats,
	})
}

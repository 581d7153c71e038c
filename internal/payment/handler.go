package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type CreateRequest struct {
	PaymentID string  `json:"paymentId" binding:"required"`
	UserID    string  `json:"userId" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
	Memo      string  `json:"memo"`
}

// CreateHandler 处理 POST /api/payment/create
func CreateHandler(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}
	order, err := CreateOrder(req.PaymentID, req.UserID, req.Amount, req.Memo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

type ApproveRequest struct {
	PaymentID string `json:"paymentId" binding:"required"`
	UserID    string `json:"userId"`
}

// ApproveHandler 处理 POST /api/payment/approve
func ApproveHandler(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}
	order, err := ApproveOrder(req.PaymentID, req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

type CompleteRequest struct {
	PaymentID string `json:"paymentId" binding:"required"`
	TxID      string `json:"txid"`
}

// CompleteHandler 处理 POST /api/payment/complete
func CompleteHandler(c *gin.Context) {
	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}
	order, err := CompleteOrder(req.PaymentID, req.TxID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

type ConsumeRequest struct {
	UserID string  `json:"userId" binding:"required"`
	Amount float64 `json:"amount" binding:"required"`
	Memo   string  `json:"memo"`
}

// ConsumeHandler 处理 POST /api/payment/consume
func ConsumeHandler(c *gin.Context) {
	var req ConsumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}
	balance, err := Consume(req.UserID, req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "balance": balance})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// GetBalanceHandler 处理 GET /api/payment/balance?userId=...
func GetBalanceHandler(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "缺少userId参数"})
		return
	}
	balance, err := GetBalance(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "balance": balance})
}

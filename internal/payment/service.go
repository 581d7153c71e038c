package payment

import (
	"fmt"
	"sync"
	"time"

	"github.com/PiGomoku/pi-gomoku-backend/internal/user"
	"github.com/PiGomoku/pi-gomoku-backend/pkg/pinet"
)

// Status 是支付订单的状态机：created -> approved -> completed
type Status string

const (
	StatusCreated   Status = "created"
	StatusApproved  Status = "approved"
	StatusCompleted Status = "completed"
)

// Order 是一笔支付订单的内存记录。
// 订单是Pi平台回调之间的短生命周期状态，不参与快照持久化；
// 服务重启后由平台的incomplete payment回调重新驱动。
type Order struct {
	PaymentID string    `json:"paymentId"`
	UserID    string    `json:"userId"`
	Amount    float64   `json:"amount"`
	Memo      string    `json:"memo"`
	Status    Status    `json:"status"`
	TxID      string    `json:"txid,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ordersMutex sync.Mutex
	orders      = make(map[string]*Order)
)

// piClient 由 InitializeService 注入
var piClient *pinet.Client

// InitializeService 注入Pi平台客户端
func InitializeService(client *pinet.Client) {
	piClient = client
}

// CreateOrder 登记一笔新订单。paymentID重复时返回错误。
func CreateOrder(paymentID, userID string, amount float64, memo string) (Order, error) {
	if paymentID == "" || userID == "" {
		return Order{}, fmt.Errorf("缺少paymentId或userId")
	}
	if amount <= 0 {
		return Order{}, fmt.Errorf("金额必须为正数")
	}

	ordersMutex.Lock()
	defer ordersMutex.Unlock()
	if _, exists := orders[paymentID]; exists {
		return Order{}, fmt.Errorf("订单已存在: %s", paymentID)
	}
	now := time.Now()
	order := &Order{
		PaymentID: paymentID,
		UserID:    userID,
		Amount:    amount,
		Memo:      memo,
		Status:    StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	orders[paymentID] = order
	return *order, nil
}

// ApproveOrder 处理平台的approve回调：向平台核验后把订单标记为已批准。
// 对未登记的paymentID做补登记（用回调附带的userID与平台核验的金额），
// 容忍create请求丢失的场景。
func ApproveOrder(paymentID, userID string) (Order, error) {
	verified, err := piClient.VerifyPayment(paymentID)
	if err != nil {
		return Order{}, fmt.Errorf("无法核验支付 %s: %w", paymentID, err)
	}

	ordersMutex.Lock()
	defer ordersMutex.Unlock()
	order, exists := orders[paymentID]
	if !exists {
		if userID == "" {
			return Order{}, fmt.Errorf("订单 %s 未登记且回调缺少userId", paymentID)
		}
		now := time.Now()
		order = &Order{
			PaymentID: paymentID,
			UserID:    userID,
			Amount:    verified.Amount,
			Status:    StatusCreated,
			CreatedAt: now,
			UpdatedAt: now,
		}
		orders[paymentID] = order
	}
	if order.Status == StatusCompleted {
		return Order{}, fmt.Errorf("订单 %s 已完成，不能再次批准", paymentID)
	}
	order.Status = StatusApproved
	order.UpdatedAt = time.Now()
	return *order, nil
}

// CompleteOrder 处理平台的complete回调：记录链上交易ID，
// 把订单金额入账到用户余额。重复的complete回调是幂等的。
func CompleteOrder(paymentID, txid string) (Order, error) {
	ordersMutex.Lock()
	defer ordersMutex.Unlock()

	order, exists := orders[paymentID]
	if !exists {
		return Order{}, fmt.Errorf("订单不存在: %s", paymentID)
	}
	if order.Status == StatusCompleted {
		return *order, nil
	}
	if order.Status != StatusApproved {
		return Order{}, fmt.Errorf("订单 %s 尚未批准，不能完成", paymentID)
	}

	if _, ok := user.AdjustBalance(order.UserID, order.Amount); !ok {
		return Order{}, fmt.Errorf("订单 %s 的用户不存在: %s", paymentID, order.UserID)
	}
	order.Status = StatusCompleted
	order.TxID = txid
	order.UpdatedAt = time.Now()
	return *order, nil
}

// Consume 从用户余额中扣减一笔游戏内消费。
// 检查与扣减由仓库在同一个临界区完成，并发消费不会把余额打成负数。
// 返回扣减后的余额。
func Consume(userID string, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("金额必须为正数")
	}
	return user.DebitBalance(userID, amount)
}

// GetBalance 返回用户当前余额
func GetBalance(userID string) (float64, error) {
	p, ok := user.GetUser(userID)
	if !ok {
		return 0, fmt.Errorf("用户不存在: %s", userID)
	}
	return p.Balance, nil
}

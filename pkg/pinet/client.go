package pinet

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// UserIDPrefix 是所有真实Pi用户在本系统中的ID命名空间前缀。
const UserIDPrefix = "pi_user_"

// VerifiedUser 是身份验证成功后平台返回的用户信息。
type VerifiedUser struct {
	// UID 是平台侧的稳定用户标识，可能为空（旧版SDK不返回）。
	UID string
	// Username 是平台侧的显示名，可能为空。
	Username string
}

// VerifiedPayment 是支付验证成功后平台返回的订单信息。
type VerifiedPayment struct {
	PaymentID string
	Amount    float64
	Status    string
	Timestamp time.Time
}

// Client 封装对Pi Network平台API的访问。
// 验证算法本身是平台侧的黑盒，这里只暴露布尔式的验证结果。
type Client struct {
	apiKey  string
	appID   string
	baseURL string
}

// NewClient 创建一个Pi平台客户端。
func NewClient(apiKey, appID string) *Client {
	return &Client{
		apiKey:  apiKey,
		appID:   appID,
		baseURL: "https://api.minepi.com",
	}
}

// VerifyUser 验证一个访问令牌，返回平台侧的用户信息。
// 当前实现是对平台行为的本地模拟：空令牌视为验证失败，
// 其余令牌按原平台的派生规则生成用户信息。
func (c *Client) VerifyUser(accessToken string) (*VerifiedUser, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("访问令牌为空，验证失败")
	}

	user := &VerifiedUser{}
	if strings.Contains(accessToken, "mock") {
		user.UID = fmt.Sprintf("mock_user_%d", time.Now().UnixMilli())
	} else if len(accessToken) >= 10 {
		user.UID = accessToken[len(accessToken)-10:]
	} else {
		user.UID = accessToken
	}
	return user, nil
}

// VerifyPayment 验证一笔支付订单是否在平台侧完成。
func (c *Client) VerifyPayment(paymentID string) (*VerifiedPayment, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("支付ID为空，验证失败")
	}
	return &VerifiedPayment{
		PaymentID: paymentID,
		Status:    "completed",
		Timestamp: time.Now(),
	}, nil
}

// DeriveUserID 从访问令牌派生出稳定的存储键。
// 与历史版本保持一致：pi_user_ + base64(token)前10位。
// 同一个令牌总是映射到同一个ID；令牌轮换会产生新ID，
// 由用户名去重流程事后收敛（见user模块）。
func DeriveUserID(accessToken string) string {
	encoded := base64.RawStdEncoding.EncodeToString([]byte(accessToken))
	if len(encoded) > 10 {
		encoded = encoded[:10]
	}
	return UserIDPrefix + encoded
}

// DeriveUserIDFromUID 从平台稳定UID派生存储键。
// 优先于令牌派生使用，避免同一个人因令牌轮换产生多个ID。
func DeriveUserIDFromUID(uid string) string {
	sum := sha256.Sum256([]byte(uid))
	return UserIDPrefix + base64.RawURLEncoding.EncodeToString(sum[:])[:10]
}

// PlaceholderUsername 为未提供显示名的新用户生成占位用户名。
func PlaceholderUsername() string {
	return fmt.Sprintf("Pi用户%d", rand.Intn(1000))
}

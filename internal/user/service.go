package user

import (
	"fmt"
	"strings"

	"github.com/PiGomoku/pi-gomoku-backend/pkg/pinet"
)

// piClient 是与Pi平台通信的客户端，由 InitializeService 注入
var piClient *pinet.Client

// InitializeService 注入Pi平台客户端。应在启动时调用一次。
func InitializeService(client *pinet.Client) {
	piClient = client
}

// LoginResult 是一次登录的结果
type LoginResult struct {
	Profile Profile
	IsNew   bool
}

// Login 用Pi访问令牌完成登录：
// 校验令牌、派生稳定的用户ID、查找或创建用户、刷新最后登录时间。
// 优先用平台返回的UID派生ID；令牌校验不可用时退回令牌自派生，
// 保证同一令牌在两种路径下都落到确定的ID上。
func Login(accessToken, fallbackUsername string) (LoginResult, error) {
	if accessToken == "" {
		return LoginResult{}, fmt.Errorf("缺少访问令牌")
	}

	var userID, username string
	verified, err := piClient.VerifyUser(accessToken)
	if err == nil && verified.UID != "" {
		// 模拟身份保留mock_前缀ID，留在合成命名空间，不进入真实用户榜单
		if strings.HasPrefix(verified.UID, "mock_") {
			userID = verified.UID
		} else {
			userID = pinet.DeriveUserIDFromUID(verified.UID)
		}
		username = verified.Username
	} else {
		userID = pinet.DeriveUserID(accessToken)
	}
	if username == "" {
		username = fallbackUsername
	}
	if username == "" {
		username = pinet.PlaceholderUsername()
	}

	profile, isNew := GetOrCreateUser(userID, username)
	if !isNew {
		if username != "" && username != profile.Username {
			UpdateUser(userID, UpdateFields{Username: &username})
		}
		TouchLogin(userID)
		// 返回给调用方的是刷新后的状态
		if p, ok := GetUser(userID); ok {
			profile = p
		}
	}
	return LoginResult{Profile: profile, IsNew: isNew}, nil
}

// StatsView 是 /users/stats 返回的视图
type StatsView struct {
	ID       string            `json:"id"`
	Username string            `json:"username"`
	Stats    Stats             `json:"stats"`
	Lifetime CareerStats       `json:"lifetimeStats"`
	Archive  []MonthlySnapshot `json:"monthlyArchive"`
}

// GetStats 返回用户的统计视图；用户不存在时返回false。
func GetStats(id string) (StatsView, bool) {
	p, ok := GetUser(id)
	if !ok {
		return StatsView{}, false
	}
	return StatsView{
		ID:       p.ID,
		Username: p.Username,
		Stats:    p.Current,
		Lifetime: p.Lifetime,
		Archive:  p.Archive,
	}, true
}

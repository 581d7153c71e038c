package user

import (
	"encoding/json"
	"time"
)

// GameResult 定义了单局对局结果的枚举类型
type GameResult string

const (
	// ResultWin 表示用户获胜
	ResultWin GameResult = "win"
	// ResultLoss 表示用户落败
	ResultLoss GameResult = "loss"
	// ResultDraw 表示平局
	ResultDraw GameResult = "draw"
)

// IsValidResult 判断对局结果是否合法
func IsValidResult(r GameResult) bool {
	switch r {
	case ResultWin, ResultLoss, ResultDraw:
		return true
	}
	return false
}

// Stats 是当前赛季（自上次月度重置以来）的统计数据
type Stats struct {
	TotalGames int `json:"totalGames"`
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Draws      int `json:"draws"`
	// WinRate 是0-100的整数胜率，始终由计数重新计算，四舍五入
	WinRate int `json:"winRate"`
	// Score 是赛季积分：胜+10，负-5（不低于初始分），平+1
	Score int `json:"score"`
	// Rank 是最近一次计算出的排名，仅作展示缓存，不参与任何判定
	Rank int `json:"rank"`
}

// CareerStats 是生涯统计数据，自账户创建起累计，月度重置不清零
type CareerStats struct {
	TotalGames int `json:"totalGames"`
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Draws      int `json:"draws"`
	WinRate    int `json:"winRate"`
}

// MonthlySnapshot 是一次月度重置时归档的赛季统计快照
type MonthlySnapshot struct {
	// PeriodLabel 是刚结束的那个月的标签，格式 "YYYY-MM"
	PeriodLabel string    `json:"periodLabel"`
	Stats       Stats     `json:"stats"`
	ResetAt     time.Time `json:"resetAt"`
}

// maxArchiveMonths 是每个用户保留的月度归档上限，超出时淘汰最旧的
const maxArchiveMonths = 12

// Profile 是用户在内存仓库中的权威形态
type Profile struct {
	ID            string            `json:"id"`
	Username      string            `json:"username"`
	WalletAddress string            `json:"walletAddress"`
	Balance       float64           `json:"balance"`
	Current       Stats             `json:"stats"`
	Lifetime      CareerStats       `json:"lifetimeStats"`
	GameHistory   []string          `json:"gameHistory"`
	Archive       []MonthlySnapshot `json:"monthlyArchive"`
	CreatedAt     time.Time         `json:"createdAt"`
	LastLoginAt   time.Time         `json:"lastLoginAt"`
	LastUpdatedAt time.Time         `json:"lastUpdatedAt"`
}

// clone 返回Profile的深拷贝，切片不与原对象共享底层数组
func (p *Profile) clone() Profile {
	c := *p
	c.GameHistory = append([]string{}, p.GameHistory...)
	c.Archive = append([]MonthlySnapshot{}, p.Archive...)
	return c
}

// User 定义了用户在快照数据库中的持久化模型。
// 统计字段被铺平成列，历史与归档以JSON文本列存储。
type User struct {
	// ID 是用户的主键，来自Pi身份派生
	ID string `gorm:"primarykey;type:varchar(64)"`

	Username      string `gorm:"index"`
	WalletAddress string
	Balance       float64

	// --- 当前赛季统计 ---
	TotalGames int
	Wins       int
	Losses     int
	Draws      int
	WinRate    int
	Score      int
	Rank       int

	// --- 生涯统计 ---
	LifetimeTotalGames int
	LifetimeWins       int
	LifetimeLosses     int
	LifetimeDraws      int
	LifetimeWinRate    int

	GameHistoryJSON string `gorm:"type:text"`
	ArchiveJSON     string `gorm:"type:text"`

	LastLoginAt time.Time

	// 由GORM自动管理
	CreatedAt time.Time
	UpdatedAt time.Time
}

// toModel 将内存中的Profile转换为持久化模型
func (p *Profile) toModel() User {
	historyJSON, _ := json.Marshal(p.GameHistory)
	archiveJSON, _ := json.Marshal(p.Archive)
	return User{
		ID:                 p.ID,
		Username:           p.Username,
		WalletAddress:      p.WalletAddress,
		Balance:            p.Balance,
		TotalGames:         p.Current.TotalGames,
		Wins:               p.Current.Wins,
		Losses:             p.Current.Losses,
		Draws:              p.Current.Draws,
		WinRate:            p.Current.WinRate,
		Score:              p.Current.Score,
		Rank:               p.Current.Rank,
		LifetimeTotalGames: p.Lifetime.TotalGames,
		LifetimeWins:       p.Lifetime.Wins,
		LifetimeLosses:     p.Lifetime.Losses,
		LifetimeDraws:      p.Lifetime.Draws,
		LifetimeWinRate:    p.Lifetime.WinRate,
		GameHistoryJSON:    string(historyJSON),
		ArchiveJSON:        string(archiveJSON),
		LastLoginAt:        p.LastLoginAt,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.LastUpdatedAt,
	}
}

// toProfile 将持久化模型还原为内存中的Profile
func (u *User) toProfile() *Profile {
	p := &Profile{
		ID:            u.ID,
		Username:      u.Username,
		WalletAddress: u.WalletAddress,
		Balance:       u.Balance,
		Current: Stats{
			TotalGames: u.TotalGames,
			Wins:       u.Wins,
			Losses:     u.Losses,
			Draws:      u.Draws,
			WinRate:    u.WinRate,
			Score:      u.Score,
			Rank:       u.Rank,
		},
		Lifetime: CareerStats{
			TotalGames: u.LifetimeTotalGames,
			Wins:       u.LifetimeWins,
			Losses:     u.LifetimeLosses,
			Draws:      u.LifetimeDraws,
			WinRate:    u.LifetimeWinRate,
		},
		CreatedAt:     u.CreatedAt,
		LastLoginAt:   u.LastLoginAt,
		LastUpdatedAt: u.UpdatedAt,
	}
	if u.GameHistoryJSON != "" {
		_ = json.Unmarshal([]byte(u.GameHistoryJSON), &p.GameHistory)
	}
	if u.ArchiveJSON != "" {
		_ = json.Unmarshal([]byte(u.ArchiveJSON), &p.Archive)
	}
	return p
}

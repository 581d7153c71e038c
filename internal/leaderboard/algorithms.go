package leaderboard

import (
	"sort"
	"strings"

	"github.com/PiGomoku/pi-gomoku-backend/internal/user"
)

// Entry 是排行榜上的一行
type Entry struct {
	Rank       int    `json:"rank"`
	ID         string `json:"id"`
	Username   string `json:"username"`
	WinRate    int    `json:"winRate"`
	Wins       int    `json:"wins"`
	TotalGames int    `json:"totalGames"`
	Score      int    `json:"score"`
}

// Filter 定义了上榜资格规则
type Filter struct {
	// RealUserPrefix 非空时，只有ID带该前缀的用户有资格上榜
	RealUserPrefix string
	// UsernameBlocklist 中的子串命中用户名即取消资格
	UsernameBlocklist []string
}

// eligible 判断用户是否有上榜资格
func (f Filter) eligible(p *user.Profile) bool {
	if f.RealUserPrefix != "" && !strings.HasPrefix(p.ID, f.RealUserPrefix) {
		return false
	}
	for _, needle := range f.UsernameBlocklist {
		if needle != "" && strings.Contains(p.Username, needle) {
			return false
		}
	}
	return true
}

// rankProfiles 过滤、去重并按榜单顺序排序。
// 输入快照中同一ID出现多次时只保留最近登录的一份，防御性处理异常输入；
// 用户名重复的不同ID各自独立上榜，账户合并只属于清理任务，不在排名路径做。
// 排序是全序：胜率降序、胜场降序、总局数降序，最后用ID升序定序，
// 保证同一份输入永远产出同一份榜单。
func rankProfiles(profiles []user.Profile, filter Filter) []*user.Profile {
	byID := make(map[string]*user.Profile)
	for i := range profiles {
		p := &profiles[i]
		if !filter.eligible(p) {
			continue
		}
		if prev, ok := byID[p.ID]; ok {
			if p.LastLoginAt.After(prev.LastLoginAt) {
				byID[p.ID] = p
			}
			continue
		}
		byID[p.ID] = p
	}

	ranked := make([]*user.Profile, 0, len(byID))
	for _, p := range byID {
		ranked = append(ranked, p)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Current.WinRate != b.Current.WinRate {
			return a.Current.WinRate > b.Current.WinRate
		}
		if a.Current.Wins != b.Current.Wins {
			return a.Current.Wins > b.Current.Wins
		}
		if a.Current.TotalGames != b.Current.TotalGames {
			return a.Current.TotalGames > b.Current.TotalGames
		}
		return a.ID < b.ID
	})
	return ranked
}

// BuildLeaderboard 从用户快照计算前limit名的榜单。纯函数，不触碰共享状态。
func BuildLeaderboard(profiles []user.Profile, filter Filter, limit int) []Entry {
	ranked := rankProfiles(profiles, filter)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	entries := make([]Entry, len(ranked))
	for i, p := range ranked {
		entries[i] = Entry{
			Rank:       i + 1,
			ID:         p.ID,
			Username:   p.Username,
			WinRate:    p.Current.WinRate,
			Wins:       p.Current.Wins,
			TotalGames: p.Current.TotalGames,
			Score:      p.Current.Score,
		}
	}
	return entries
}

// ComputeRank 返回用户在完整榜单中的名次（从1开始）。
// 用户不存在、无资格或在去重中落选时返回0。
func ComputeRank(profiles []user.Profile, filter Filter, userID string) int {
	for i, p := range rankProfiles(profiles, filter) {
		if p.ID == userID {
			return i + 1
		}
	}
	return 0
}

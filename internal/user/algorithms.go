package user

// 本文件集中了统计聚合的纯函数。
// 所有派生值（胜率、积分）都由计数重新计算，任何路径都不允许独立存储。

const (
	scoreWinDelta  = 10
	scoreLossDelta = 5
	scoreDrawDelta = 1
)

// computeWinRate 计算0-100的整数胜率。
// totalGames为0时返回0；否则对实数商*100做四舍五入（round half up）。
func computeWinRate(wins, totalGames int) int {
	if totalGames <= 0 {
		return 0
	}
	return (wins*200 + totalGames) / (2 * totalGames)
}

// applyResultToStats 将一局结果叠加到赛季统计上，并重算派生值。
// startingScore 是积分的下限：负局扣分不会低于该值。
func applyResultToStats(s Stats, result GameResult, startingScore int) Stats {
	s.TotalGames++
	switch result {
	case ResultWin:
		s.Wins++
		s.Score += scoreWinDelta
	case ResultLoss:
		s.Losses++
		s.Score -= scoreLossDelta
		if s.Score < startingScore {
			s.Score = startingScore
		}
	case ResultDraw:
		s.Draws++
		s.Score += scoreDrawDelta
	}
	s.WinRate = computeWinRate(s.Wins, s.TotalGames)
	return s
}

// applyResultToCareer 将一局结果叠加到生涯统计上。生涯计数只增不减。
func applyResultToCareer(c CareerStats, result GameResult) CareerStats {
	c.TotalGames++
	switch result {
	case ResultWin:
		c.Wins++
	case ResultLoss:
		c.Losses++
	case ResultDraw:
		c.Draws++
	}
	c.WinRate = computeWinRate(c.Wins, c.TotalGames)
	return c
}

// zeroStats 返回一份归零后的赛季统计，积分恢复为初始值。
func zeroStats(startingScore int) Stats {
	return Stats{Score: startingScore}
}

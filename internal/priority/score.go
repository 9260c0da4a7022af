// Package priority 实现任务优先级分数与紧急判定。
// 两个函数都是纯函数：调用方注入"当前时间"，结果只取决于输入。
package priority

import (
	"math"
	"time"

	"smarttask/internal/domain"
)

// Weights 优先级权重配置。进程启动时构造一次，之后只读。
type Weights struct {
	DueDateWeight    float64  // 截止日期分量权重
	ImportanceWeight float64  // 重要度分量权重（线性乘数）
	DefaultNoDueDate *float64 // 无截止日期时的基础分，nil 按 0 处理
	OverdueScore     float64  // 逾期固定分，不随逾期天数增长
	UrgencyThreshold float64  // 紧急阈值，分数严格大于该值才算紧急
}

// Score 根据重要度与截止日期计算优先级分数。
// importance 超出 [1,5] 返回 nil（定义结果，不是错误）。
// 截止分量：逾期取固定 OverdueScore；今天到期取全额 DueDateWeight；
// 未来按 DueDateWeight/剩余天数 衰减；无截止日期取 DefaultNoDueDate。
// 结果四舍五入（half away from zero）保留两位小数。
func Score(importance int, dueDate *time.Time, w Weights, now time.Time) *float64 {
	if importance < 1 || importance > 5 {
		return nil
	}

	importanceScore := float64(importance) * w.ImportanceWeight

	dueScore := 0.0
	if dueDate != nil {
		switch days := DaysRemaining(*dueDate, now); {
		case days < 0:
			dueScore = w.OverdueScore
		case days == 0:
			dueScore = w.DueDateWeight
		default:
			dueScore = w.DueDateWeight / float64(days)
		}
	} else if w.DefaultNoDueDate != nil {
		dueScore = *w.DefaultNoDueDate
	}

	total := round2(dueScore + importanceScore)
	return &total
}

// IsUrgent 紧急判定：
//  1. 分数与截止日期都缺失 → 不紧急；
//  2. 分数存在且严格大于阈值 → 紧急（等于阈值不算）；
//  3. 截止日期为今天或已过 → 紧急，与分数无关。
func IsUrgent(score *float64, dueDate *time.Time, threshold float64, now time.Time) bool {
	if score == nil && dueDate == nil {
		return false
	}
	if score != nil && *score > threshold {
		return true
	}
	if dueDate != nil && DaysRemaining(*dueDate, now) <= 0 {
		return true
	}
	return false
}

// DaysRemaining 按 UTC 日历日计算 due 距 now 的天数差，当天为 0，逾期为负
func DaysRemaining(due, now time.Time) int {
	d := domain.DateOnly(due)
	today := domain.DateOnly(now)
	return int(d.Sub(today).Hours() / 24)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

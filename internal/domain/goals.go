package domain

// GoalResult es el resultado de evaluar las metas en un turno.
type GoalResult struct {
	Win      *WinRule
	Lose     *LoseRule
	Trackers Trackers
}

func winHolds(r WinRule, m TurnMetrics) bool {
	switch r.Type {
	case WinPassiveCoversCosts:
		return m.PassiveIncome >= m.RecurringExpenses
	case WinNetWorthReach:
		return m.NetWorth >= r.Target
	}
	return false
}

func loseHolds(r LoseRule, m TurnMetrics) bool {
	switch r.Type {
	case LoseNoLiquidity:
		return m.Cash <= 0 && m.AvailableCredit <= 0
	case LoseDebtSpiral, LoseInsolvency:
		return m.MonthlyCashFlow < 0 && m.DebtDelta > 0
	case LoseDebtRatio:
		ratio := r.MinDebtToNetWorth
		if ratio == 0 {
			ratio = 1
		}
		return m.Debt >= m.NetWorth*ratio
	}
	return false
}

// EvaluateGoals actualiza las rachas de cada regla y devuelve la primera regla
// (en el orden configurado) cuya racha alcanza lo requerido. Una regla que
// falla vuelve su racha a 0. Los trackers de entrada no se modifican.
func EvaluateGoals(win []WinRule, lose []LoseRule, trackers Trackers, m TurnMetrics) GoalResult {
	res := GoalResult{Trackers: Trackers{
		Win:  make(map[string]int, len(win)),
		Lose: make(map[string]int, len(lose)),
	}}
	for k, v := range trackers.Win {
		res.Trackers.Win[k] = v
	}
	for k, v := range trackers.Lose {
		res.Trackers.Lose[k] = v
	}

	for i := range win {
		rule := win[i]
		if !winHolds(rule, m) {
			res.Trackers.Win[rule.ID] = 0
			continue
		}
		res.Trackers.Win[rule.ID]++
		if res.Win == nil && res.Trackers.Win[rule.ID] >= max(1, rule.RequiredStreakMonths) {
			res.Win = &win[i]
		}
	}
	for i := range lose {
		rule := lose[i]
		if !loseHolds(rule, m) {
			res.Trackers.Lose[rule.ID] = 0
			continue
		}
		res.Trackers.Lose[rule.ID]++
		if res.Lose == nil && res.Trackers.Lose[rule.ID] >= max(1, rule.ConsecutiveMonths) {
			res.Lose = &lose[i]
		}
	}
	return res
}

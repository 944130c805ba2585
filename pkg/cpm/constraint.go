package cpm

import "github.com/matzehuels/critpath/pkg/schedule"

// EarliestStart returns the earliest start a dependency edge imposes on its
// successor, in day offsets.
//
//	FS: succ.ES >= pred.EF + lag
//	SS: succ.ES >= pred.ES + lag
//	FF: succ.EF >= pred.EF + lag, so succ.ES = succ.EF - duration
//	SF: succ.EF >= pred.ES + lag, so succ.ES = succ.EF - duration
//
// Lag may be negative and is applied as given. An unknown type is treated
// as FS.
func EarliestStart(typ schedule.DependencyType, predES, predEF, lag, succDuration int) int {
	switch typ {
	case schedule.StartToStart:
		return predES + lag
	case schedule.FinishToFinish:
		return predEF + lag - succDuration
	case schedule.StartToFinish:
		return predES + lag - succDuration
	default:
		return predEF + lag
	}
}

// LatestFinish is the backward form of [EarliestStart]: the latest finish a
// dependency edge allows its predecessor, given the successor's latest dates.
//
//	FS: pred.LF <= succ.LS - lag
//	SS: pred.LS <= succ.LS - lag, so pred.LF = pred.LS + duration
//	FF: pred.LF <= succ.LF - lag
//	SF: pred.LS <= succ.LF - lag, so pred.LF = pred.LS + duration
func LatestFinish(typ schedule.DependencyType, succLS, succLF, lag, predDuration int) int {
	switch typ {
	case schedule.StartToStart:
		return succLS - lag + predDuration
	case schedule.FinishToFinish:
		return succLF - lag
	case schedule.StartToFinish:
		return succLF - lag + predDuration
	default:
		return succLS - lag
	}
}

// Slack returns how many days the edge's forward constraint leaves unused
// between predecessor and successor. Zero means the edge is binding.
func Slack(typ schedule.DependencyType, pred, succ *Schedule, lag int) int {
	return succ.ES - EarliestStart(typ, pred.ES, pred.EF, lag, succ.Duration)
}

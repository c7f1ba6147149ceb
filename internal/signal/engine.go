// Package signal derives green/yellow/red operational signals and the
// cross-metric priority ranking from date-range-filtered record aggregates.
package signal

import (
	"fmt"
	"sort"
	"time"

	"mill-data/internal/config"
	"mill-data/internal/domain"
)

const (
	priorityTopN     = 10
	topReasonsN      = 5
	reasonTruncRunes = 80
)

// ProductivityDay is one in-range day's average productivity percentage.
type ProductivityDay struct {
	Date   time.Time
	AvgPct float64
}

// DowntimeDay is one in-range day's total downtime minutes.
type DowntimeDay struct {
	Date         time.Time
	TotalMinutes float64
}

// WaterDay is one in-range day's (actual, nominal) daily consumption pair.
type WaterDay struct {
	Date    time.Time
	Actual  float64
	Nominal float64
}

// ReasonMinutes is one downtime reason occurrence with its minutes.
type ReasonMinutes struct {
	Reason  string
	Minutes float64
}

// Input is the date-range-filtered view the engine evaluates. Day slices
// are expected in ascending date order.
type Input struct {
	From         time.Time
	To           time.Time
	Productivity []ProductivityDay
	Downtime     []DowntimeDay
	Water        []WaterDay
	Reasons      []ReasonMinutes
}

// Engine evaluates thresholds over an Input. It is a pure function of its
// configuration; safe for concurrent use.
type Engine struct {
	thr config.Thresholds
}

func NewEngine(thr config.Thresholds) *Engine {
	return &Engine{thr: thr}
}

// Evaluate computes the full signal summary for one input view.
func (e *Engine) Evaluate(in Input) *domain.SignalSummary {
	s := &domain.SignalSummary{
		From:          in.From,
		To:            in.To,
		PriorityItems: []domain.PriorityItem{},
	}
	s.ProductivitySignal, s.ProductivityAvgPct = e.productivitySignal(in.Productivity)
	s.DowntimeSignal, s.DowntimeAvgMinutes = e.downtimeSignal(in.Downtime)
	s.WaterSignal, s.WaterOverPct = e.waterSignal(in.Water)
	s.PriorityItems = e.priorityItems(in)
	s.TopDowntimeReasons = topReasons(in.Reasons)
	return s
}

// productivitySignal averages the daily averages and classifies the drop
// below target. Thresholds are one-sided: performance above target always
// falls through to green.
func (e *Engine) productivitySignal(days []ProductivityDay) (domain.Signal, float64) {
	if len(days) == 0 || e.thr.Productivity.TargetPct <= 0 {
		return domain.SignalGreen, 0
	}
	var sum float64
	for _, d := range days {
		sum += d.AvgPct
	}
	avg := sum / float64(len(days))
	drop := e.dropPct(avg)
	switch {
	case drop > e.thr.Productivity.RedThresholdPct:
		return domain.SignalRed, avg
	case drop > e.thr.Productivity.YellowThresholdPct:
		return domain.SignalYellow, avg
	default:
		return domain.SignalGreen, avg
	}
}

func (e *Engine) dropPct(avg float64) float64 {
	t := e.thr.Productivity.TargetPct
	return (t - avg) / t * 100
}

// downtimeSignal compares the mean of per-day totals (not the sum) against
// the minute ceilings.
func (e *Engine) downtimeSignal(days []DowntimeDay) (domain.Signal, float64) {
	if len(days) == 0 {
		return domain.SignalGreen, 0
	}
	var sum float64
	for _, d := range days {
		sum += d.TotalMinutes
	}
	mean := sum / float64(len(days))
	switch {
	case mean > e.thr.Downtime.YellowMaxMinutes:
		return domain.SignalRed, mean
	case mean > e.thr.Downtime.GreenMaxMinutes:
		return domain.SignalYellow, mean
	default:
		return domain.SignalGreen, mean
	}
}

// waterSignal evaluates only the single most recent in-range day. A
// nominal of zero or below short-circuits to green.
func (e *Engine) waterSignal(days []WaterDay) (domain.Signal, float64) {
	if len(days) == 0 {
		return domain.SignalGreen, 0
	}
	last := days[len(days)-1]
	if last.Nominal <= 0 {
		return domain.SignalGreen, 0
	}
	over := (last.Actual - last.Nominal) / last.Nominal * 100
	switch {
	case over > e.thr.Water.RedOverPct:
		return domain.SignalRed, over
	case over > e.thr.Water.YellowOverPct:
		return domain.SignalYellow, over
	default:
		return domain.SignalGreen, over
	}
}

// priorityItems emits one item per day-level breach in every metric, scores
// each with its per-metric weight, and keeps the top 10 of the merged
// cross-metric list.
func (e *Engine) priorityItems(in Input) []domain.PriorityItem {
	items := []domain.PriorityItem{}

	for _, d := range in.Downtime {
		if d.TotalMinutes <= e.thr.Downtime.GreenMaxMinutes {
			continue
		}
		sig := domain.SignalYellow
		if d.TotalMinutes > e.thr.Downtime.YellowMaxMinutes {
			sig = domain.SignalRed
		}
		items = append(items, domain.PriorityItem{
			Type:        "downtime",
			Score:       d.TotalMinutes * e.thr.Priority.DowntimeWeight,
			Description: fmt.Sprintf("Простой оборудования: %.0f мин", d.TotalMinutes),
			Signal:      sig,
			Value:       d.TotalMinutes,
			Unit:        "min",
			Date:        d.Date,
		})
	}

	for _, d := range in.Water {
		if d.Nominal <= 0 {
			continue
		}
		over := (d.Actual - d.Nominal) / d.Nominal * 100
		if over <= e.thr.Water.YellowOverPct {
			continue
		}
		sig := domain.SignalYellow
		if over > e.thr.Water.RedOverPct {
			sig = domain.SignalRed
		}
		items = append(items, domain.PriorityItem{
			Type:        "water",
			Score:       over * e.thr.Priority.WaterOverWeight,
			Description: fmt.Sprintf("Перерасход воды: +%.1f%%", over),
			Signal:      sig,
			Value:       over,
			Unit:        "%",
			Date:        d.Date,
		})
	}

	if e.thr.Productivity.TargetPct > 0 {
		for _, d := range in.Productivity {
			drop := e.dropPct(d.AvgPct)
			if drop <= e.thr.Productivity.YellowThresholdPct {
				continue
			}
			sig := domain.SignalYellow
			if drop > e.thr.Productivity.RedThresholdPct {
				sig = domain.SignalRed
			}
			items = append(items, domain.PriorityItem{
				Type:        "productivity",
				Score:       drop * e.thr.Priority.ProductivityDropWeight,
				Description: fmt.Sprintf("Падение производительности: %.1f%%", drop),
				Signal:      sig,
				Value:       drop,
				Unit:        "%",
				Date:        d.Date,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })
	if len(items) > priorityTopN {
		items = items[:priorityTopN]
	}
	return items
}

// topReasons sums minutes per distinct reason string (truncated for display
// de-duplication) and keeps the top 5.
func topReasons(reasons []ReasonMinutes) []domain.ReasonTotal {
	totals := map[string]float64{}
	for _, r := range reasons {
		key := truncateRunes(r.Reason, reasonTruncRunes)
		if key == "" {
			continue
		}
		totals[key] += r.Minutes
	}
	out := make([]domain.ReasonTotal, 0, len(totals))
	for reason, minutes := range totals {
		out = append(out, domain.ReasonTotal{Reason: reason, Minutes: minutes})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].Reason < out[j].Reason
	})
	if len(out) > topReasonsN {
		out = out[:topReasonsN]
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

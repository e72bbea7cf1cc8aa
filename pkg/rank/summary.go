package rank

import "sort"

// HighRiskThreshold is the churn risk at or above which a prospect
// counts as high risk in KPI rollups.
const HighRiskThreshold = 75.0

// KPI is the top-line aggregate over a ranked prospect list.
type KPI struct {
	Count           int     `json:"count" yaml:"count"`
	MeanRisk        float64 `json:"mean_risk_score" yaml:"meanRiskScore"`
	TotalSavings    float64 `json:"total_estimated_savings" yaml:"totalEstimatedSavings"`
	HighRiskCount   int     `json:"high_risk_count" yaml:"highRiskCount"`
	AvgFleetSize    float64 `json:"avg_fleet_size" yaml:"avgFleetSize"`
	TotalPowerUnits int     `json:"total_power_units" yaml:"totalPowerUnits"`
}

// StateSummary is the per-state rollup of a prospect list.
type StateSummary struct {
	State               string  `json:"state" yaml:"state"`
	CarrierCount        int     `json:"carrier_count" yaml:"carrierCount"`
	AvgRiskScore        float64 `json:"avg_risk_score" yaml:"avgRiskScore"`
	TotalSavings        float64 `json:"total_savings_potential" yaml:"totalSavingsPotential"`
	AvgFleetSize        float64 `json:"avg_fleet_size" yaml:"avgFleetSize"`
	AvgWagePercentile   float64 `json:"avg_wage_percentile" yaml:"avgWagePercentile"`
	AvgOutOfServiceRate float64 `json:"avg_out_of_service_rate" yaml:"avgOutOfServiceRate"`
}

// Summarize computes top-line KPIs over a prospect list. An empty list
// yields a zero-value KPI rather than an error, since an empty filter
// result is a legitimate outcome.
func Summarize(list []Prospect) KPI {
	k := KPI{Count: len(list)}
	if len(list) == 0 {
		return k
	}

	var riskSum float64
	for _, p := range list {
		riskSum += p.Score.ChurnRisk
		k.TotalSavings += p.Score.EstimatedAnnualSavings
		k.TotalPowerUnits += p.Record.FleetSize
		if p.Score.ChurnRisk >= HighRiskThreshold {
			k.HighRiskCount++
		}
	}

	k.MeanRisk = riskSum / float64(len(list))
	k.AvgFleetSize = float64(k.TotalPowerUnits) / float64(len(list))

	return k
}

// SummarizeByState rolls prospects up per state, ordered by average
// risk descending with ties broken by state code.
func SummarizeByState(list []Prospect) []StateSummary {
	type acc struct {
		count    int
		riskSum  float64
		savings  float64
		fleetSum int
		wageSum  float64
		oosSum   float64
	}

	byState := make(map[string]*acc)
	for _, p := range list {
		a, ok := byState[p.Record.State]
		if !ok {
			a = &acc{}
			byState[p.Record.State] = a
		}
		a.count++
		a.riskSum += p.Score.ChurnRisk
		a.savings += p.Score.EstimatedAnnualSavings
		a.fleetSum += p.Record.FleetSize
		a.wageSum += p.Record.WagePercentile
		a.oosSum += p.Record.OutOfServiceRate
	}

	out := make([]StateSummary, 0, len(byState))
	for state, a := range byState {
		n := float64(a.count)
		out = append(out, StateSummary{
			State:               state,
			CarrierCount:        a.count,
			AvgRiskScore:        a.riskSum / n,
			TotalSavings:        a.savings,
			AvgFleetSize:        float64(a.fleetSum) / n,
			AvgWagePercentile:   a.wageSum / n,
			AvgOutOfServiceRate: a.oosSum / n,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgRiskScore != out[j].AvgRiskScore {
			return out[i].AvgRiskScore > out[j].AvgRiskScore
		}
		return out[i].State < out[j].State
	})

	return out
}

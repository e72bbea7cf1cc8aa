package carrier

import (
	"encoding/json"
	"errors"
)

// Cargo type tags assigned to generated carriers.
const (
	CargoGeneralFreight = "general_freight"
	CargoDryVan         = "dry_van"
	CargoRefrigerated   = "refrigerated"
	CargoFlatbed        = "flatbed"
	CargoTanker         = "tanker"
	CargoHazmat         = "hazmat"
)

// ErrInvalidParameter indicates generator input that cannot produce a cohort.
var ErrInvalidParameter = errors.New("invalid parameter")

// Record is one simulated carrier with its safety and wage attributes.
type Record struct {
	CarrierID        string  `json:"carrier_id" yaml:"carrierID"`
	Name             string  `json:"name" yaml:"name"`
	State            string  `json:"state" yaml:"state"`
	City             string  `json:"city" yaml:"city"`
	FleetSize        int     `json:"fleet_size" yaml:"fleetSize"`
	SafetyScore      float64 `json:"safety_score" yaml:"safetyScore"`
	OutOfServiceRate float64 `json:"out_of_service_rate" yaml:"outOfServiceRate"`
	CrashRate        float64 `json:"crash_rate" yaml:"crashRate"`
	WagePercentile   float64 `json:"wage_percentile" yaml:"wagePercentile"`
	CargoType        string  `json:"cargo_type" yaml:"cargoType"`
	ViolationCount   int     `json:"violation_count" yaml:"violationCount"`
}

func (r Record) String() string {
	b, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return string(b)
}

// States returns the coverage footprint in canonical order.
func States() []string {
	list := make([]string, len(states))
	copy(list, states)
	return list
}

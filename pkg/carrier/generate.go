package carrier

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strconv"
)

const (
	// USDOT-style IDs start above this base so they sort naturally.
	carrierIDBase = 100000

	fleetSizeMin = 10
	fleetSizeMax = 500

	// Lognormal fleet distribution parameters.
	fleetLogMean  = 3.5
	fleetLogSigma = 0.8

	// Per-state violation scale varies around the industry mean of 2.5
	// violations per inspection-hundred.
	violationScaleMin = 1.5
	violationScaleMax = 3.5

	// Wage percentile model: state benchmark minus a violation penalty
	// plus individual noise, clamped to the observed percentile band.
	wageBenchmark        = 70.0
	wageBenchmarkStddev  = 6.0
	wageViolationPenalty = 8.0
	wageNoiseStddev      = 12.0
	wagePercentileFloor  = 5.0
	wagePercentileCeil   = 95.0

	// Safety score model: clean-record baseline minus a violation
	// penalty plus inspection noise.
	safetyBaseline         = 92.0
	safetyViolationPenalty = 9.0
	safetyNoiseStddev      = 6.0

	crashBaseMean      = 1.2
	crashViolationLoad = 0.3
	crashRateFloor     = 0.1

	outOfServiceFloor = 0.001

	violationsPerUnitRate = 0.1
	violationPoissonMean  = 2.0
)

var (
	states = []string{
		"GA", "FL", "TX", "NC", "TN", "SC", "AL",
		"MS", "LA", "AR", "OK", "KY", "VA", "WV",
	}

	cities = map[string][]string{
		"GA": {"Atlanta", "Savannah", "Augusta", "Columbus"},
		"FL": {"Miami", "Jacksonville", "Tampa", "Orlando"},
		"TX": {"Houston", "Dallas", "Austin", "San Antonio"},
		"NC": {"Charlotte", "Raleigh", "Greensboro", "Asheville"},
		"TN": {"Nashville", "Memphis", "Knoxville", "Chattanooga"},
		"SC": {"Charleston", "Columbia", "Greenville", "Spartanburg"},
		"AL": {"Birmingham", "Mobile", "Montgomery", "Huntsville"},
		"MS": {"Jackson", "Gulfport", "Meridian", "Hattiesburg"},
		"LA": {"New Orleans", "Baton Rouge", "Shreveport", "Lafayette"},
		"AR": {"Little Rock", "Fort Smith", "Fayetteville", "Pine Bluff"},
		"OK": {"Oklahoma City", "Tulsa", "Norman", "Broken Arrow"},
		"KY": {"Louisville", "Lexington", "Bowling Green", "Owensboro"},
		"VA": {"Richmond", "Norfolk", "Virginia Beach", "Newport News"},
		"WV": {"Charleston", "Huntington", "Parkersburg", "Morgantown"},
	}

	nameModifiers = []string{
		"Southern", "Regional", "Interstate", "Metro", "Premier", "Elite", "Swift",
	}

	nameTypes = []string{
		"Transport", "Logistics", "Freight", "Trucking", "Express", "Cargo", "Hauling",
	}

	cargoWeights = []struct {
		tag    string
		weight float64
	}{
		{CargoGeneralFreight, 0.35},
		{CargoDryVan, 0.20},
		{CargoRefrigerated, 0.15},
		{CargoFlatbed, 0.12},
		{CargoTanker, 0.10},
		{CargoHazmat, 0.08},
	}
)

// stateBase holds the per-state distribution parameters drawn once per
// generation run. Records inherit the base plus individual noise, which
// is what makes geographic clustering emerge in the output.
type stateBase struct {
	violationScale float64
	wageMean       float64
}

// Generate produces a reproducible cohort of carrier records simulating
// FMCSA safety and BLS wage datasets. Identical seed and count always
// yield identical records.
func Generate(seed int64, count int) ([]Record, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", ErrInvalidParameter, count)
	}

	slog.Debug("generating carriers", "seed", seed, "count", count)

	rng := rand.New(rand.NewSource(seed))

	// Per-state bases are drawn first, in canonical state order, so the
	// per-record stream below is independent of the state mix.
	bases := make(map[string]stateBase, len(states))
	for _, s := range states {
		bases[s] = stateBase{
			violationScale: violationScaleMin + rng.Float64()*(violationScaleMax-violationScaleMin),
			wageMean:       wageBenchmark + rng.NormFloat64()*wageBenchmarkStddev,
		}
	}

	list := make([]Record, 0, count)
	for i := 0; i < count; i++ {
		state := states[rng.Intn(len(states))]
		base := bases[state]

		city := cities[state][rng.Intn(len(cities[state]))]
		name := nameModifiers[rng.Intn(len(nameModifiers))] + " " +
			nameTypes[rng.Intn(len(nameTypes))] + " Co."

		fleet := int(math.Exp(fleetLogMean + rng.NormFloat64()*fleetLogSigma))
		if fleet < fleetSizeMin {
			fleet = fleetSizeMin
		}
		if fleet > fleetSizeMax {
			fleet = fleetSizeMax
		}

		rate := base.violationScale * rng.ExpFloat64()

		wage := clamp(base.wageMean-wageViolationPenalty*rate+rng.NormFloat64()*wageNoiseStddev,
			wagePercentileFloor, wagePercentileCeil)

		oos := clamp((rate+rng.NormFloat64())/100, outOfServiceFloor, 1)

		crash := crashBaseMean*rng.ExpFloat64() + crashViolationLoad*rate
		if crash < crashRateFloor {
			crash = crashRateFloor
		}

		violations := int(violationsPerUnitRate*float64(fleet)*rate) + poisson(rng, violationPoissonMean)

		safety := clamp(safetyBaseline-safetyViolationPenalty*rate+rng.NormFloat64()*safetyNoiseStddev, 0, 100)

		list = append(list, Record{
			CarrierID:        "USDOT" + strconv.Itoa(carrierIDBase+i),
			Name:             name,
			State:            state,
			City:             city,
			FleetSize:        fleet,
			SafetyScore:      safety,
			OutOfServiceRate: oos,
			CrashRate:        crash,
			WagePercentile:   wage,
			CargoType:        pickCargo(rng),
			ViolationCount:   violations,
		})
	}

	slog.Debug("carriers generated", "count", len(list))

	return list, nil
}

// poisson draws a Poisson-distributed count using Knuth's method.
// Fine for the small means used here.
func poisson(rng *rand.Rand, mean float64) int {
	if mean <= 0 {
		return 0
	}
	limit := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

func pickCargo(rng *rand.Rand) string {
	r := rng.Float64()
	acc := 0.0
	for _, c := range cargoWeights {
		acc += c.weight
		if r < acc {
			return c.tag
		}
	}
	return cargoWeights[len(cargoWeights)-1].tag
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

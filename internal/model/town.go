package model

import (
	"encoding/json"
	"math"
)

// FundingKey identifies a CPA funding category column in the source dataset.
type FundingKey string

const (
	FundHousing    FundingKey = "CPA_HOUS"
	FundOpenSpace  FundingKey = "CPA_OS"
	FundRecreation FundingKey = "CPA_REC"
	FundHistoric   FundingKey = "CPA_HIST"
	FundTotal      FundingKey = "CPA_TOT"
)

// FundingKeys lists all funding categories in fixed column order.
func FundingKeys() []FundingKey {
	return []FundingKey{FundHousing, FundOpenSpace, FundRecreation, FundHistoric, FundTotal}
}

// CorrelatedFundingKeys lists the funding categories entering the
// correlation matrix. The combined total is derived and charted but not
// correlated against health outcomes.
func CorrelatedFundingKeys() []FundingKey {
	return []FundingKey{FundHousing, FundOpenSpace, FundRecreation, FundHistoric}
}

// HealthKey identifies a CDC PLACES crude-prevalence column.
type HealthKey string

const (
	HealthMental         HealthKey = "MHLTH_CrudePrev"
	HealthPhysInactivity HealthKey = "LPA_CrudePrev"
	HealthPhysical       HealthKey = "PHLTH_CrudePrev"
)

// HealthKeys lists all health metrics in fixed column order.
func HealthKeys() []HealthKey {
	return []HealthKey{HealthMental, HealthPhysInactivity, HealthPhysical}
}

// PerCapitaSuffix is appended to a funding key to name its derived column.
const PerCapitaSuffix = "_PC"

// Town is one municipality's observation: raw funding amounts, health
// prevalences, and (after derivation) per-capita funding. Name is the
// record key; uniqueness is assumed from the source, not enforced.
type Town struct {
	Name        string                 `json:"town"`
	DisplayName string                 `json:"display_name"`
	Population  float64                `json:"population_count"`
	Funding     map[FundingKey]float64 `json:"funding"`
	PerCapita   map[FundingKey]float64 `json:"per_capita,omitempty"`
	Health      map[HealthKey]float64  `json:"health"`
}

// MarshalJSON emits NaN per-capita values as null: encoding/json rejects
// NaN, and the undefined marker still has to reach chart consumers.
func (t Town) MarshalJSON() ([]byte, error) {
	type alias Town
	out := struct {
		alias
		PerCapita map[FundingKey]*float64 `json:"per_capita,omitempty"`
	}{alias: alias(t)}

	if t.PerCapita != nil {
		out.PerCapita = make(map[FundingKey]*float64, len(t.PerCapita))
		for k, v := range t.PerCapita {
			if math.IsNaN(v) {
				out.PerCapita[k] = nil
				continue
			}
			val := v
			out.PerCapita[k] = &val
		}
	}

	return json.Marshal(out)
}

// Clone returns a deep copy of the town. Snapshots hand out clones so
// consumers cannot mutate the frozen record sequence through shared maps.
func (t Town) Clone() Town {
	out := t
	out.Funding = make(map[FundingKey]float64, len(t.Funding))
	for k, v := range t.Funding {
		out.Funding[k] = v
	}
	if t.PerCapita != nil {
		out.PerCapita = make(map[FundingKey]float64, len(t.PerCapita))
		for k, v := range t.PerCapita {
			out.PerCapita[k] = v
		}
	}
	out.Health = make(map[HealthKey]float64, len(t.Health))
	for k, v := range t.Health {
		out.Health[k] = v
	}
	return out
}

package synth

// ageBand is a half-open [min, max) age range with an annual rate per
// 1000 person-years.
type ageBand struct {
	min  float64
	max  float64
	rate float64
}

// diseaseRates pairs a registry disease key with its age-banded
// incidence table. Slice order fixes the simulation order of diseases,
// which the deterministic draw sequence depends on.
type diseaseRates struct {
	key   string
	bands []ageBand
}

// Age-specific disease incidence rates, simplified from epidemiological
// literature. Diseases without a table here are not simulated.
var incidenceRates = []diseaseRates{
	{"type2_diabetes", []ageBand{
		{0, 30, 0.5},
		{30, 40, 2.0},
		{40, 50, 5.0},
		{50, 60, 10.0},
		{60, 70, 15.0},
		{70, 80, 18.0},
		{80, 100, 12.0},
	}},
	{"alzheimer", []ageBand{
		{0, 60, 0.1},
		{60, 65, 1.0},
		{65, 70, 3.0},
		{70, 75, 8.0},
		{75, 80, 15.0},
		{80, 85, 30.0},
		{85, 100, 50.0},
	}},
	{"coronary_artery_disease", []ageBand{
		{0, 40, 0.5},
		{40, 50, 3.0},
		{50, 60, 8.0},
		{60, 70, 15.0},
		{70, 80, 25.0},
		{80, 100, 30.0},
	}},
	{"atrial_fibrillation", []ageBand{
		{0, 50, 0.2},
		{50, 60, 2.0},
		{60, 70, 5.0},
		{70, 80, 10.0},
		{80, 100, 20.0},
	}},
	{"heart_failure", []ageBand{
		{0, 50, 0.5},
		{50, 60, 2.0},
		{60, 70, 5.0},
		{70, 80, 12.0},
		{80, 100, 25.0},
	}},
	{"copd", []ageBand{
		{0, 40, 0.1},
		{40, 50, 2.0},
		{50, 60, 5.0},
		{60, 70, 10.0},
		{70, 80, 15.0},
		{80, 100, 18.0},
	}},
	{"hypertension", []ageBand{
		{0, 30, 2.0},
		{30, 40, 8.0},
		{40, 50, 15.0},
		{50, 60, 25.0},
		{60, 70, 35.0},
		{70, 80, 45.0},
		{80, 100, 50.0},
	}},
	{"stroke", []ageBand{
		{0, 50, 0.3},
		{50, 60, 2.0},
		{60, 70, 5.0},
		{70, 80, 12.0},
		{80, 100, 25.0},
	}},
}

// Age-specific mortality rates per 1000 person-years.
var mortalityRates = []ageBand{
	{0, 1, 6.0},
	{1, 5, 0.3},
	{5, 15, 0.15},
	{15, 25, 0.8},
	{25, 35, 1.0},
	{35, 45, 2.0},
	{45, 55, 4.0},
	{55, 65, 10.0},
	{65, 75, 25.0},
	{75, 85, 60.0},
	{85, 100, 150.0},
}

// rateForAge returns the rate of the band containing age, or 0 when
// no band matches.
func rateForAge(bands []ageBand, age float64) float64 {
	for _, b := range bands {
		if age >= b.min && age < b.max {
			return b.rate
		}
	}
	return 0
}

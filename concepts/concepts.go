// Package concepts defines the disease concept sets the engine analyzes.
//
// Concept IDs are OMOP standard concepts mapped from SNOMED-CT codes. The
// built-in sets are representative and should be validated against the
// vocabulary version of the target OMOP instance; site-specific sets can
// be layered on top with a YAML overlay file.
package concepts

import (
	"sort"

	"github.com/cohortlab/resilient-aging/errors"
)

// ConceptSet is a set of OMOP concept IDs representing a disease.
type ConceptSet struct {
	Name               string   `yaml:"name" json:"name"`
	ConceptIDs         []int64  `yaml:"concept_ids" json:"concept_ids"`
	Description        string   `yaml:"description" json:"description,omitempty"`
	SnomedCodes        []string `yaml:"snomed_codes" json:"snomed_codes,omitempty"`
	IncludeDescendants bool     `yaml:"include_descendants" json:"include_descendants"`
}

// Registry maps disease keys to their concept sets.
type Registry struct {
	sets map[string]ConceptSet
}

// DefaultRegistry returns a registry preloaded with the built-in disease
// concept sets.
func DefaultRegistry() *Registry {
	r := &Registry{sets: make(map[string]ConceptSet, len(builtinSets))}
	for key, cs := range builtinSets {
		r.sets[key] = cs
	}
	return r
}

// Get returns the concept set for a disease key.
func (r *Registry) Get(key string) (ConceptSet, error) {
	cs, ok := r.sets[key]
	if !ok {
		return ConceptSet{}, errors.NewUnknownDiseaseError(key)
	}
	return cs, nil
}

// Keys returns all registered disease keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.sets))
	for key := range r.sets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Register adds or replaces a concept set under the given key.
func (r *Registry) Register(key string, cs ConceptSet) {
	r.sets[key] = cs
}

// Len returns the number of registered concept sets.
func (r *Registry) Len() int {
	return len(r.sets)
}

// builtinSets holds the standard disease concept sets.
var builtinSets = map[string]ConceptSet{
	"type2_diabetes": {
		Name:               "Type 2 Diabetes Mellitus",
		ConceptIDs:         []int64{201826, 443238, 4193704},
		SnomedCodes:        []string{"44054006"},
		Description:        "Type 2 diabetes mellitus and related conditions",
		IncludeDescendants: true,
	},
	"alzheimer": {
		Name:               "Alzheimer's Disease",
		ConceptIDs:         []int64{378419, 4182210},
		SnomedCodes:        []string{"26929004"},
		Description:        "Alzheimer's disease and dementia of Alzheimer type",
		IncludeDescendants: true,
	},
	"coronary_artery_disease": {
		Name:               "Coronary Artery Disease",
		ConceptIDs:         []int64{316139, 4185932, 321318},
		SnomedCodes:        []string{"53741008", "414545008"},
		Description:        "Coronary artery disease, ischemic heart disease",
		IncludeDescendants: true,
	},
	"atrial_fibrillation": {
		Name:               "Atrial Fibrillation",
		ConceptIDs:         []int64{313217, 4141360},
		SnomedCodes:        []string{"49436004"},
		Description:        "Atrial fibrillation and atrial flutter",
		IncludeDescendants: true,
	},
	"heart_failure": {
		Name:               "Heart Failure",
		ConceptIDs:         []int64{316139, 319835},
		SnomedCodes:        []string{"84114007"},
		Description:        "Congestive heart failure and related conditions",
		IncludeDescendants: true,
	},
	"copd": {
		Name:               "Chronic Obstructive Pulmonary Disease",
		ConceptIDs:         []int64{255573, 4063381},
		SnomedCodes:        []string{"13645005"},
		Description:        "COPD, chronic bronchitis, emphysema",
		IncludeDescendants: true,
	},
	"hypertension": {
		Name:               "Essential Hypertension",
		ConceptIDs:         []int64{316866, 4028741},
		SnomedCodes:        []string{"59621000"},
		Description:        "Essential hypertension",
		IncludeDescendants: true,
	},
	"stroke": {
		Name:               "Stroke",
		ConceptIDs:         []int64{443454, 4110189, 372924},
		SnomedCodes:        []string{"230690007"},
		Description:        "Cerebrovascular accident, ischemic and hemorrhagic stroke",
		IncludeDescendants: true,
	},
	"cancer_breast": {
		Name:               "Breast Cancer",
		ConceptIDs:         []int64{4112853, 4180791},
		SnomedCodes:        []string{"254837009"},
		Description:        "Malignant neoplasm of breast",
		IncludeDescendants: true,
	},
	"cancer_prostate": {
		Name:               "Prostate Cancer",
		ConceptIDs:         []int64{4163261, 4180792},
		SnomedCodes:        []string{"399068003"},
		Description:        "Malignant neoplasm of prostate",
		IncludeDescendants: true,
	},
	"cancer_colorectal": {
		Name:               "Colorectal Cancer",
		ConceptIDs:         []int64{4180793, 4181483},
		SnomedCodes:        []string{"363406005", "363414004"},
		Description:        "Malignant neoplasm of colon and rectum",
		IncludeDescendants: true,
	},
	"osteoporosis": {
		Name:               "Osteoporosis",
		ConceptIDs:         []int64{80180, 4097107},
		SnomedCodes:        []string{"64859006"},
		Description:        "Osteoporosis and related bone density disorders",
		IncludeDescendants: true,
	},
	"chronic_kidney_disease": {
		Name:               "Chronic Kidney Disease",
		ConceptIDs:         []int64{46271022, 193782},
		SnomedCodes:        []string{"709044004"},
		Description:        "Chronic kidney disease stages 3-5",
		IncludeDescendants: true,
	},
	"parkinson": {
		Name:               "Parkinson's Disease",
		ConceptIDs:         []int64{381270},
		SnomedCodes:        []string{"49049000"},
		Description:        "Parkinson's disease and parkinsonism",
		IncludeDescendants: true,
	},
}

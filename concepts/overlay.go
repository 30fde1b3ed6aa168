package concepts

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cohortlab/resilient-aging/errors"
)

// overlayFile is the on-disk shape of a concept-set overlay.
//
//	concept_sets:
//	  rheumatoid_arthritis:
//	    name: Rheumatoid Arthritis
//	    concept_ids: [80809]
//	    snomed_codes: ["69896004"]
//	    include_descendants: true
type overlayFile struct {
	ConceptSets map[string]overlaySet `yaml:"concept_sets"`
}

type overlaySet struct {
	Name               string   `yaml:"name"`
	ConceptIDs         []int64  `yaml:"concept_ids"`
	Description        string   `yaml:"description"`
	SnomedCodes        []string `yaml:"snomed_codes"`
	IncludeDescendants *bool    `yaml:"include_descendants"`
}

// LoadOverlay merges concept sets from a YAML file into the registry.
// Keys already present are replaced, so a site can both add diseases and
// pin its own concept IDs for the built-ins. include_descendants defaults
// to true when omitted.
func (r *Registry) LoadOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading concept overlay %s", path)
	}

	var file overlayFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errors.Wrapf(err, "parsing concept overlay %s", path)
	}

	for key, set := range file.ConceptSets {
		if key == "" || len(set.ConceptIDs) == 0 {
			return errors.NewInvalidRequestError(
				"concept overlay %s: set %q must have a key and at least one concept_id", path, key)
		}
		include := true
		if set.IncludeDescendants != nil {
			include = *set.IncludeDescendants
		}
		r.Register(key, ConceptSet{
			Name:               set.Name,
			ConceptIDs:         set.ConceptIDs,
			Description:        set.Description,
			SnomedCodes:        set.SnomedCodes,
			IncludeDescendants: include,
		})
	}

	return nil
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cohortlab/resilient-aging/sym"
)

// DiseasesCmd represents the diseases command
var DiseasesCmd = &cobra.Command{
	Use:   "diseases",
	Short: sym.Registry + " List the disease concept registry",
	Long: sym.Registry + ` diseases — List the disease concept registry

Shows every disease key the analysis commands accept, with its OMOP
concept IDs. Sets from a --concepts overlay are merged in.

Examples:
  resilient-aging diseases
  resilient-aging diseases --concepts ./site_concepts.yaml`,
	RunE: runDiseases,
}

func runDiseases(cmd *cobra.Command, args []string) error {
	registry, err := loadRegistry(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("%s Disease Concept Registry (%d diseases)\n", sym.Registry, registry.Len())
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")

	for _, key := range registry.Keys() {
		cs, err := registry.Get(key)
		if err != nil {
			return err
		}
		fmt.Printf("%-26s %s\n", key, cs.Name)
		suffix := ""
		if cs.IncludeDescendants {
			suffix = " (+descendants)"
		}
		fmt.Printf("  concepts: %v%s\n", cs.ConceptIDs, suffix)
	}

	return nil
}

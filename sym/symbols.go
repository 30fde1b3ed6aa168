// Package sym defines canonical glyphs for the engine's subsystems.
// Each top-level CLI command is prefixed with its subsystem glyph, and
// the same markers appear in documentation.
package sym

// Subsystem glyphs.
const (
	Gen      = "⚄" // synthetic population generator
	Analysis = "⌖" // single-disease resilience analysis
	Batch    = "꩜" // multi-disease batch runs
	Curve    = "∿" // cumulative-incidence curves
	Export   = "⇲" // cohort CSV export
	Registry = "☰" // disease concept registry
	DB       = "⊔" // database/storage layer
)

// Commands lists the glyph-carrying commands in help order.
var Commands = []string{"generate", "analyze", "compare", "incidence", "export", "diseases", "db"}

// CommandToSymbol maps command names to their canonical glyphs.
var CommandToSymbol = map[string]string{
	"generate":  Gen,
	"analyze":   Analysis,
	"compare":   Batch,
	"incidence": Curve,
	"export":    Export,
	"diseases":  Registry,
	"db":        DB,
}

// CommandDescriptions provides one-line explanations for help output.
var CommandDescriptions = map[string]string{
	"generate":  "Generate a synthetic OMOP population",
	"analyze":   "Run the resilience analysis for one disease",
	"compare":   "Run the analysis across many diseases",
	"incidence": "Write a cumulative-incidence curve",
	"export":    "Export a classified cohort as CSV",
	"diseases":  "List the disease concept registry",
	"db":        "Manage the OMOP database",
}

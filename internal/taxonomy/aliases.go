package taxonomy

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Aliases map common scraped vocabulary onto canonical index keys. Lookup is
// by substring containment against the scraped term.
type Aliases struct {
	Categories map[string]string `yaml:"categories"`
	Tags       map[string]string `yaml:"tags"`
	Features   map[string]string `yaml:"features"`
}

// DefaultAliases returns the hand-curated alias tables built from observed
// directory vocabulary.
func DefaultAliases() Aliases {
	return Aliases{
		Categories: map[string]string{
			"chatbots":         "natural language processing",
			"language models":  "natural language processing",
			"nlp":              "natural language processing",
			"computer vision":  "computer vision",
			"image":            "computer vision",
			"vision":           "computer vision",
			"data science":     "data science & analytics",
			"analytics":        "data science & analytics",
			"data analysis":    "data science & analytics",
			"machine learning": "machine learning platforms",
			"ml":               "machine learning platforms",
			"developer":        "developer tools",
			"development":      "developer tools",
			"coding":           "developer tools",
			"infrastructure":   "ai infrastructure",
			"robotics":         "robotics & automation",
			"automation":       "robotics & automation",
			"education":        "ai education & learning",
			"learning":         "ai education & learning",
			"ethics":           "ai ethics & governance",
		},
		Tags: map[string]string{
			"free":     "free tier",
			"api":      "api access",
			"cloud":    "cloud-based",
			"beginner": "beginner-friendly",
		},
		Features: map[string]string{
			"free trial":    "free trial available",
			"trial":         "free trial available",
			"documentation": "detailed documentation",
			"community":     "active community support",
			"gui":           "gui interface",
			"command line":  "cli tool",
			"cli":           "cli tool",
		},
	}
}

// LoadAliases reads alias tables from a YAML file. Entries extend and
// override the defaults, so a partial file is fine.
func LoadAliases(path string) (Aliases, error) {
	aliases := DefaultAliases()

	data, err := os.ReadFile(path)
	if err != nil {
		return aliases, eris.Wrapf(err, "taxonomy: read aliases %s", path)
	}

	var override Aliases
	if err := yaml.Unmarshal(data, &override); err != nil {
		return aliases, eris.Wrap(err, "taxonomy: parse aliases")
	}

	for k, v := range override.Categories {
		aliases.Categories[k] = v
	}
	for k, v := range override.Tags {
		aliases.Tags[k] = v
	}
	for k, v := range override.Features {
		aliases.Features[k] = v
	}

	return aliases, nil
}

// Package vocab holds the injected domain vocabulary: the accepted lead
// sources and the RNR (ring-no-response) ladder ceiling. Keeping these in
// configuration means new marketing sources or a different ceiling never
// touch pipeline logic.
package vocab

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary is the enumerated configuration consumed by the validation
// engine and the contact-status state machine.
type Vocabulary struct {
	// LeadSources is the accepted vocabulary for the Lead Source column.
	LeadSources []string `yaml:"leadSources"`
	// RNRCeiling caps the rnr-N ladder. Zero means uncapped.
	RNRCeiling int `yaml:"rnrCeiling"`
}

// Default returns the compiled-in vocabulary used when no file is configured.
func Default() Vocabulary {
	return Vocabulary{
		LeadSources: []string{
			"whatsApp",
			"instagram",
			"facebook",
			"referral",
			"direct",
			"website",
			"housing",
			"magicbricks",
		},
		RNRCeiling: 6,
	}
}

// Load reads a vocabulary YAML file, falling back to Default when path is
// empty. Entries in the file replace the defaults wholesale; an empty
// leadSources list in the file is rejected.
func Load(path string) (Vocabulary, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary file: %w", err)
	}

	var v Vocabulary
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary file: %w", err)
	}

	if len(v.LeadSources) == 0 {
		return Vocabulary{}, fmt.Errorf("vocabulary file %s defines no lead sources", path)
	}
	if v.RNRCeiling < 0 {
		return Vocabulary{}, fmt.Errorf("vocabulary file %s has negative rnrCeiling", path)
	}

	return v, nil
}

// HasSource reports whether source is part of the accepted vocabulary.
// Comparison is case-insensitive so spreadsheet typing variations pass.
func (v Vocabulary) HasSource(source string) bool {
	for _, s := range v.LeadSources {
		if strings.EqualFold(s, strings.TrimSpace(source)) {
			return true
		}
	}
	return false
}

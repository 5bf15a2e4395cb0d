package createdoi

import "fmt"

// DescriptionTypes accepted by DataCite for the descriptionType attribute.
var DescriptionTypes = []string{
	"Abstract",
	"Methods",
	"SeriesInformation",
	"TableOfContents",
	"TechnicalInfo",
	"Other",
}

type Config struct {
	// DescriptionType is attached to the Description column when it is set.
	DescriptionType string `mapstructure:"description_type"`
	// ValidatePayload checks every payload against the DataCite schema
	// before it is returned or sent.
	ValidatePayload bool `mapstructure:"validate_payload"`
}

func DefaultConfig() *Config {
	return &Config{
		DescriptionType: "Abstract",
		ValidatePayload: true,
	}
}

func (c *Config) Validate() error {
	for _, t := range DescriptionTypes {
		if c.DescriptionType == t {
			return nil
		}
	}
	return fmt.Errorf("description_type %q is not a DataCite description type", c.DescriptionType)
}

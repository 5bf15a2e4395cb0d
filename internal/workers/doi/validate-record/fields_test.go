package validaterecord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckURL(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"http accepted", "http://example.com", true},
		{"https accepted", "https://example.com", true},
		{"ftp accepted", "ftp://example.com", true},
		{"upper case scheme accepted", "HTTPS://example.com/a?b=c", true},
		{"empty rejected", "", false},
		{"bad protocol rejected", "feed://example.com/rss.xml", false},
		{"mailto rejected", "mailto:someone@example.com", false},
		{"no scheme rejected", "example.com/page", false},
		{"no host rejected", "http://", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckURL(tt.value)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCheckCreators(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"normal organization", "[Some Organization]", true},
		{"organization with comma", "[University of California, Berkeley]", true},
		{"normal single name", "Madonna", true},
		{"normal double name", "Smith, Joe", true},
		{"multiple items", "[Some Organization];Smith, Joe", true},
		{"multiple items with spaces", "Smith, Joe ; Brown, Alice; [Carleton University]", true},
		{"empty rejected", "", false},
		{"extra left bracket", "[[Some Organization]", false},
		{"double brackets", "[First][Second]", false},
		{"multiple commas", "Brown, Alice, Mary", false},
		{"name with embedded left bracket", "Brown, Al[ice", false},
		{"name with embedded right bracket", "Brown], Alice", false},
		{"bracket not around whole entry", "Dept [Physics]", false},
		{"empty organization", "[ ]", false},
		{"empty entry", "Smith, Joe;;Madonna", false},
		{"missing given name", "Smith,", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCreators(tt.value)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCheckTitleAndPublisher(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"normal text", "This is a title", true},
		{"single character", "x", true},
		{"whitespace only accepted", "   ", true},
		{"surrounding whitespace accepted", "  Title  ", true},
		{"empty rejected", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, check := range []func(string) error{CheckTitle, CheckPublisher} {
				err := check(tt.value)
				if tt.valid {
					assert.NoError(t, err)
				} else {
					assert.Error(t, err)
				}
			}
		})
	}
}

func TestParsePublicationYear(t *testing.T) {
	tests := []struct {
		value    string
		expected int
		valid    bool
	}{
		{"1999", 1999, true},
		{"1999.0", 1999, true},
		{" 2020 ", 2020, true},
		{"1", 1, true},
		{"0", 0, false},
		{"0.0", 0, false},
		{"-1999", 0, false},
		{"", 0, false},
		{"nineteen", 0, false},
		{"1999.5", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			year, err := ParsePublicationYear(tt.value)
			if !tt.valid {
				assert.Error(t, err)
				assert.Error(t, CheckPublicationYear(tt.value))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, year)
		})
	}
}

func TestCheckResourceType(t *testing.T) {
	accepted := []string{
		"Audiovisual", "Collection", "DataPaper", "Dataset", "Event", "Image",
		"InteractiveResource", "Model", "PhysicalObject", "Service", "Software",
		"Sound", "Text", "Workflow",
	}
	for _, value := range accepted {
		assert.NoError(t, CheckResourceType(value), value)
	}

	for _, value := range []string{"SomeWeirdValue", "dataset", "", "Journal Article"} {
		assert.Error(t, CheckResourceType(value), value)
	}
}

func TestCheckDescription(t *testing.T) {
	assert.NoError(t, CheckDescription(""))
	assert.NoError(t, CheckDescription("Anything [at] all, really; even this."))
}

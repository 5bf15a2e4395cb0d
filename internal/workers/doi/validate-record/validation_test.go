package validaterecord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() Record {
	return Record{
		Row:             1,
		URL:             "https://repository.library.carleton.ca/items/1",
		Creators:        "[Carleton University Library];Smith, Joe",
		Title:           "Survey data",
		Publisher:       "Carleton University",
		PublicationYear: "2019",
		ResourceType:    "Dataset",
		Description:     "Raw survey responses.",
	}
}

func TestValidateRecord_Valid(t *testing.T) {
	result := ValidateRecord(validRecord())
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateRecord_CollectsAllErrors(t *testing.T) {
	rec := validRecord()
	rec.URL = "feed://example.com/rss.xml"
	rec.Title = ""
	rec.ResourceType = "SomeWeirdValue"

	result := ValidateRecord(rec)
	require.False(t, result.Valid)
	require.Len(t, result.Errors, 3)

	assert.Equal(t, ColumnURL, result.Errors[0].Field)
	assert.Equal(t, ColumnTitle, result.Errors[1].Field)
	assert.Equal(t, ColumnResourceType, result.Errors[2].Field)
	for _, e := range result.Errors {
		assert.Equal(t, CodeMalformedField, e.Code)
	}
	assert.Contains(t, result.Errors[0].Message, `"feed"`)
}

func TestValidateRecord_EmptyRecord(t *testing.T) {
	result := ValidateRecord(Record{})
	assert.False(t, result.Valid)
	// every column except Description has a rule that rejects an empty value
	assert.Len(t, result.Errors, len(Columns)-1)
	assert.False(t, result.HasErrors(ColumnDescription))
}

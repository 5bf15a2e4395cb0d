package validaterecord

import "bulk-doi/internal/common/validation"

// CodeMalformedField marks a field that failed its column rule.
const CodeMalformedField = "MALFORMED_FIELD"

var fieldChecks = []struct {
	column string
	check  func(string) error
}{
	{ColumnURL, CheckURL},
	{ColumnCreators, CheckCreators},
	{ColumnTitle, CheckTitle},
	{ColumnPublisher, CheckPublisher},
	{ColumnPublicationYear, CheckPublicationYear},
	{ColumnResourceType, CheckResourceType},
	{ColumnDescription, CheckDescription},
}

// ValidateRecord runs every column rule and collects all failures in column
// order. The record is acceptable only when the result is Valid.
func ValidateRecord(rec Record) *validation.ValidationResult {
	result := validation.NewResult()
	for _, fc := range fieldChecks {
		if err := fc.check(rec.Get(fc.column)); err != nil {
			result.Add(fc.column, CodeMalformedField, err.Error())
		}
	}
	return result
}

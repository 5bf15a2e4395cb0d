package validaterecord

import "strings"

// Required CSV columns, in canonical spelling and output order.
const (
	ColumnURL             = "URL"
	ColumnCreators        = "Creators"
	ColumnTitle           = "Title"
	ColumnPublisher       = "Publisher"
	ColumnPublicationYear = "Publication Year"
	ColumnResourceType    = "Resource Type"
	ColumnDescription     = "Description"
)

// Columns is the fixed input schema.
var Columns = []string{
	ColumnURL,
	ColumnCreators,
	ColumnTitle,
	ColumnPublisher,
	ColumnPublicationYear,
	ColumnResourceType,
	ColumnDescription,
}

// ResourceTypes are the accepted values of the Resource Type column
// (DataCite resourceTypeGeneral).
var ResourceTypes = []string{
	"Audiovisual",
	"Collection",
	"DataPaper",
	"Dataset",
	"Event",
	"Image",
	"InteractiveResource",
	"Model",
	"PhysicalObject",
	"Service",
	"Software",
	"Sound",
	"Text",
	"Workflow",
}

// Record is one input row.
type Record struct {
	Row             int // 1-based data row number, header excluded
	URL             string
	Creators        string
	Title           string
	Publisher       string
	PublicationYear string
	ResourceType    string
	Description     string
}

// Get returns the value of a column by its canonical name.
func (r Record) Get(column string) string {
	switch column {
	case ColumnURL:
		return r.URL
	case ColumnCreators:
		return r.Creators
	case ColumnTitle:
		return r.Title
	case ColumnPublisher:
		return r.Publisher
	case ColumnPublicationYear:
		return r.PublicationYear
	case ColumnResourceType:
		return r.ResourceType
	case ColumnDescription:
		return r.Description
	default:
		return ""
	}
}

// HeaderIndex maps canonical column names to their position in a CSV row.
type HeaderIndex map[string]int

// NewHeaderIndex indexes a header that has already passed CheckHeader.
func NewHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, raw := range header {
		if canon, ok := canonicalColumn(raw); ok {
			if _, dup := idx[canon]; !dup {
				idx[canon] = i
			}
		}
	}
	return idx
}

// RecordFromRow builds a Record from a CSV row using the header index.
// Missing trailing cells read as empty. Structured columns are trimmed;
// Title, Publisher and Description are kept as written.
func (h HeaderIndex) RecordFromRow(rowNum int, row []string) Record {
	raw := func(column string) string {
		pos, ok := h[column]
		if !ok || pos >= len(row) {
			return ""
		}
		return row[pos]
	}
	trimmed := func(column string) string {
		return strings.TrimSpace(raw(column))
	}

	return Record{
		Row:             rowNum,
		URL:             trimmed(ColumnURL),
		Creators:        trimmed(ColumnCreators),
		Title:           raw(ColumnTitle),
		Publisher:       raw(ColumnPublisher),
		PublicationYear: trimmed(ColumnPublicationYear),
		ResourceType:    trimmed(ColumnResourceType),
		Description:     raw(ColumnDescription),
	}
}

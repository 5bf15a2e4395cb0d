package datacite

// Payload is the JSON:API document accepted by the DataCite REST API on
// POST /dois and PUT /dois/{id}.
type Payload struct {
	Data Data `json:"data"`
}

type Data struct {
	ID         string     `json:"id,omitempty"`
	Type       string     `json:"type"`
	Attributes Attributes `json:"attributes"`
}

type Attributes struct {
	DOI             string        `json:"doi,omitempty"`
	Prefix          string        `json:"prefix,omitempty"`
	Suffix          string        `json:"suffix,omitempty"`
	Event           string        `json:"event,omitempty"`
	URL             string        `json:"url,omitempty"`
	Creators        []Creator     `json:"creators,omitempty"`
	Titles          []Title       `json:"titles,omitempty"`
	Publisher       string        `json:"publisher,omitempty"`
	PublicationYear int           `json:"publicationYear,omitempty"`
	Types           *Types        `json:"types,omitempty"`
	Descriptions    []Description `json:"descriptions,omitempty"`
	State           string        `json:"state,omitempty"`
}

// Name types used by the DataCite metadata schema.
const (
	NameTypePersonal       = "Personal"
	NameTypeOrganizational = "Organizational"
)

type Creator struct {
	Name       string `json:"name"`
	NameType   string `json:"nameType,omitempty"`
	GivenName  string `json:"givenName,omitempty"`
	FamilyName string `json:"familyName,omitempty"`
}

type Title struct {
	Title string `json:"title"`
}

type Types struct {
	ResourceTypeGeneral string `json:"resourceTypeGeneral"`
}

type Description struct {
	Description     string `json:"description"`
	DescriptionType string `json:"descriptionType"`
}

// EventPublish moves a draft DOI to findable. It cannot be undone.
const EventPublish = "publish"

// ResourceType is the JSON:API type of DOI resources.
const ResourceType = "dois"

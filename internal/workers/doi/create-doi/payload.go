package createdoi

import (
	"fmt"
	"strings"

	"bulk-doi/internal/common/datacite"
	validaterecord "bulk-doi/internal/workers/doi/validate-record"
)

// BuildPayload maps a validated record onto a DataCite create request for doi.
func BuildPayload(doi string, rec validaterecord.Record, descriptionType string) (*datacite.Payload, error) {
	prefix, suffix, ok := strings.Cut(doi, "/")
	if !ok || prefix == "" || suffix == "" {
		return nil, fmt.Errorf("doi %q is not of the form prefix/suffix", doi)
	}

	year, err := validaterecord.ParsePublicationYear(rec.PublicationYear)
	if err != nil {
		return nil, fmt.Errorf("publication year: %w", err)
	}

	attrs := datacite.Attributes{
		DOI:             doi,
		Prefix:          prefix,
		Suffix:          suffix,
		URL:             rec.URL,
		Creators:        ParseCreators(rec.Creators),
		Titles:          []datacite.Title{{Title: rec.Title}},
		Publisher:       rec.Publisher,
		PublicationYear: year,
		Types:           &datacite.Types{ResourceTypeGeneral: rec.ResourceType},
	}
	if strings.TrimSpace(rec.Description) != "" {
		attrs.Descriptions = []datacite.Description{{
			Description:     rec.Description,
			DescriptionType: descriptionType,
		}}
	}

	return &datacite.Payload{
		Data: datacite.Data{
			ID:         doi,
			Type:       datacite.ResourceType,
			Attributes: attrs,
		},
	}, nil
}

// ParseCreators splits a Creators cell. "[Name]" is an organisation,
// "Family, Given" a person, and anything else a name without parts.
func ParseCreators(value string) []datacite.Creator {
	var creators []datacite.Creator
	for _, entry := range strings.Split(value, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.HasPrefix(entry, "[") && strings.HasSuffix(entry, "]") {
			creators = append(creators, datacite.Creator{
				Name:     strings.TrimSpace(entry[1 : len(entry)-1]),
				NameType: datacite.NameTypeOrganizational,
			})
			continue
		}

		family, given, found := strings.Cut(entry, ",")
		if !found {
			creators = append(creators, datacite.Creator{Name: entry})
			continue
		}
		family, given = strings.TrimSpace(family), strings.TrimSpace(given)
		creators = append(creators, datacite.Creator{
			Name:       family + ", " + given,
			NameType:   datacite.NameTypePersonal,
			GivenName:  given,
			FamilyName: family,
		})
	}
	return creators
}

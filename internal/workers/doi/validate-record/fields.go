package validaterecord

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

var allowedSchemes = []string{"http", "https", "ftp"}

// CheckURL accepts absolute http, https and ftp URLs.
func CheckURL(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("value is empty")
	}
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("cannot parse URL: %v", err)
	}
	if !slices.Contains(allowedSchemes, u.Scheme) {
		if u.Scheme == "" {
			return errors.New("missing scheme, expected http, https or ftp")
		}
		return fmt.Errorf("scheme %q is not allowed, expected http, https or ftp", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// CheckCreators accepts a ';'-separated list where each entry is either an
// organization in square brackets, "[Name]", or a personal name with at
// most one comma ("Name" or "Last, First").
func CheckCreators(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("value is empty")
	}
	for i, entry := range strings.Split(value, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			return fmt.Errorf("creator %d is empty", i+1)
		}
		if err := checkCreator(entry); err != nil {
			return fmt.Errorf("creator %d %q: %w", i+1, entry, err)
		}
	}
	return nil
}

func checkCreator(entry string) error {
	opens := strings.Count(entry, "[")
	closes := strings.Count(entry, "]")

	if opens == 0 && closes == 0 {
		if strings.Count(entry, ",") > 1 {
			return errors.New("personal name has more than one comma")
		}
		if family, given, found := strings.Cut(entry, ","); found {
			if strings.TrimSpace(family) == "" || strings.TrimSpace(given) == "" {
				return errors.New(`personal name must be "Last, First"`)
			}
		}
		return nil
	}

	if opens != 1 || closes != 1 {
		return errors.New("organization must be enclosed in exactly one pair of brackets")
	}
	if !strings.HasPrefix(entry, "[") || !strings.HasSuffix(entry, "]") {
		return errors.New("brackets are only allowed around a whole organization name")
	}
	if strings.TrimSpace(entry[1:len(entry)-1]) == "" {
		return errors.New("organization name is empty")
	}
	return nil
}

// CheckTitle rejects an empty title. Any other text, whitespace included,
// is a title.
func CheckTitle(value string) error {
	if value == "" {
		return errors.New("value is empty")
	}
	return nil
}

// CheckPublisher rejects an empty publisher.
func CheckPublisher(value string) error {
	if value == "" {
		return errors.New("value is empty")
	}
	return nil
}

// ParsePublicationYear parses an integer or whole float ("1999", "1999.0")
// year greater than zero.
func ParsePublicationYear(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("value is empty")
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a number", value)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not a whole year", value)
	}
	if f <= 0 {
		return 0, fmt.Errorf("%q must be greater than 0", value)
	}
	if f > math.MaxInt32 {
		return 0, fmt.Errorf("%q is out of range", value)
	}
	return int(f), nil
}

// CheckPublicationYear is ParsePublicationYear without the value.
func CheckPublicationYear(value string) error {
	_, err := ParsePublicationYear(value)
	return err
}

// CheckResourceType accepts only the DataCite resourceTypeGeneral values.
func CheckResourceType(value string) error {
	if !slices.Contains(ResourceTypes, value) {
		return fmt.Errorf("%q is not one of %s", value, strings.Join(ResourceTypes, ", "))
	}
	return nil
}

// CheckDescription accepts any text, including none.
func CheckDescription(string) error {
	return nil
}

package models

import (
	"encoding/json"
	"regexp"
)

// ReferenceType selects the citation style of a Reference.
type ReferenceType string

// Reference types.
const (
	ReferenceJournal ReferenceType = "journal"
	ReferenceBook    ReferenceType = "book"
	ReferenceWebsite ReferenceType = "website"
	ReferenceReport  ReferenceType = "report"
	ReferenceOther   ReferenceType = "other"
)

// Reference is one bibliography entry.
type Reference struct {
	ID         string        `json:"id,omitempty"`
	Type       ReferenceType `json:"type,omitempty"`
	Authors    string        `json:"authors,omitempty"`
	Year       Scalar        `json:"year,omitzero"`
	Title      string        `json:"title,omitempty"`
	Journal    string        `json:"journal,omitempty"`
	Volume     Scalar        `json:"volume,omitzero"`
	Pages      Scalar        `json:"pages,omitzero"`
	Publisher  string        `json:"publisher,omitempty"`
	Location   string        `json:"location,omitempty"`
	Website    string        `json:"website,omitempty"`
	AccessDate string        `json:"access_date,omitempty"`
	URL        string        `json:"url,omitempty"`
}

var jsonNumberRe = regexp.MustCompile(`^-?(?:0|[1-9][0-9]*)(?:\.[0-9]+)?(?:[eE][+-]?[0-9]+)?$`)

// Scalar is a string that may also be written as a bare JSON number.
// Hand-written metadata uses both "year": 2020 and "year": "2020"; Number
// remembers which form was read so it is written back the same way.
type Scalar struct {
	Text   string
	Number bool
}

// Text returns a Scalar written as a JSON string.
func Text(s string) Scalar { return Scalar{Text: s} }

// Number returns a Scalar written as a JSON number when s is numeric.
func Number(s string) Scalar { return Scalar{Text: s, Number: true} }

func (s Scalar) String() string { return s.Text }

// IsZero reports whether the scalar is empty.
func (s Scalar) IsZero() bool { return s.Text == "" }

// MarshalJSON writes numbers read as numbers back as numbers.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if s.Number && jsonNumberRe.MatchString(s.Text) {
		return []byte(s.Text), nil
	}
	return json.Marshal(s.Text)
}

// UnmarshalJSON accepts a JSON string or number.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Text(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = Number(n.String())
	return nil
}

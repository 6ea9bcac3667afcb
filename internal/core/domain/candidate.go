package domain

import (
	"fmt"
	"strings"
)

// NotSpecified marks a field the extractors found no value for.
const NotSpecified = "Not specified"

type CandidateRecord struct {
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	Location          string `json:"location"`
	Qualification     string `json:"qualification"`
	Skills            string `json:"skills"`
	YearsOfExperience string `json:"years_of_experience"`
	SourceFilename    string `json:"source_filename"`
}

// Field identifies one exportable column of a CandidateRecord.
type Field string

const (
	FieldName              Field = "Name"
	FieldPhone             Field = "Phone"
	FieldEmail             Field = "Email"
	FieldLocation          Field = "Location"
	FieldQualification     Field = "Qualification"
	FieldSkills            Field = "Skills"
	FieldYearsOfExperience Field = "YearsOfExperience"
	FieldFilename          Field = "Filename"
)

// AllFields is the full export column order.
var AllFields = []Field{
	FieldName,
	FieldPhone,
	FieldEmail,
	FieldLocation,
	FieldQualification,
	FieldSkills,
	FieldYearsOfExperience,
	FieldFilename,
}

var fieldHeaders = map[Field]string{
	FieldName:              "Name",
	FieldPhone:             "Phone",
	FieldEmail:             "Email",
	FieldLocation:          "Location",
	FieldQualification:     "Qualification",
	FieldSkills:            "Skills",
	FieldYearsOfExperience: "Years of Experience",
	FieldFilename:          "Filename",
}

// Header is the column title used by tabular exports.
func (f Field) Header() string {
	if h, ok := fieldHeaders[f]; ok {
		return h
	}
	return string(f)
}

// ParseField resolves a field name case-insensitively; spaces and underscores are ignored.
func ParseField(name string) (Field, error) {
	key := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(name)))
	for _, f := range AllFields {
		if strings.ToLower(string(f)) == key {
			return f, nil
		}
	}
	switch key {
	case "mobile":
		return FieldPhone, nil
	case "experience", "yearsofexperience":
		return FieldYearsOfExperience, nil
	case "sourcefilename", "file":
		return FieldFilename, nil
	}
	return "", WrapError(ErrInvalidInput, "parse field", fmt.Errorf("unknown field %q", name))
}

// ParseFields resolves names in order, skipping blanks.
func ParseFields(names []string) ([]Field, error) {
	out := make([]Field, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		f, err := ParseField(name)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Value returns the record's value for f.
func (r CandidateRecord) Value(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldPhone:
		return r.Phone
	case FieldEmail:
		return r.Email
	case FieldLocation:
		return r.Location
	case FieldQualification:
		return r.Qualification
	case FieldSkills:
		return r.Skills
	case FieldYearsOfExperience:
		return r.YearsOfExperience
	case FieldFilename:
		return r.SourceFilename
	default:
		return ""
	}
}

// IsSpecified reports whether v carries a real extracted value.
func IsSpecified(v string) bool {
	return v != "" && v != NotSpecified
}

package usecase

import (
	"strings"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/core/extract"
)

// Normalizer combines every field extractor into one record per document and
// owns the "Not specified" fallback.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize returns false only when text is empty after cleanup.
func (n *Normalizer) Normalize(text, filename string) (domain.CandidateRecord, bool) {
	cleaned := extract.CleanText(text)
	if cleaned == "" {
		return domain.CandidateRecord{}, false
	}

	return domain.CandidateRecord{
		Name:              orNotSpecified(extract.Name(cleaned)),
		Phone:             orNotSpecified(extract.Phone(cleaned)),
		Email:             orNotSpecified(extract.Email(cleaned)),
		Location:          orNotSpecified(extract.Location(cleaned)),
		Qualification:     orNotSpecified(extract.QualificationText(cleaned)),
		Skills:            orNotSpecified(extract.Skills(cleaned)),
		YearsOfExperience: orNotSpecified(extract.YearsOfExperience(cleaned)),
		SourceFilename:    orNotSpecified(filename, true),
	}, true
}

func orNotSpecified(value string, ok bool) string {
	if !ok || strings.TrimSpace(value) == "" {
		return domain.NotSpecified
	}
	return value
}

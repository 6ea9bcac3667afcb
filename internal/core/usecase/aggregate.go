package usecase

import "github.com/kirillkom/resume-extractor/internal/core/domain"

// documentOutcome is the result slot owned by exactly one document task.
type documentOutcome struct {
	record  domain.CandidateRecord
	failure *domain.DocumentFailure
}

// aggregate flattens per-document slots in submission order. Failed documents
// contribute no record.
func aggregate(outcomes []documentOutcome) ([]domain.CandidateRecord, []domain.DocumentFailure) {
	records := make([]domain.CandidateRecord, 0, len(outcomes))
	failures := make([]domain.DocumentFailure, 0)
	for _, outcome := range outcomes {
		if outcome.failure != nil {
			failures = append(failures, *outcome.failure)
			continue
		}
		records = append(records, outcome.record)
	}
	return records, failures
}

// ComputeStats counts specified values per field in a single pass.
func ComputeStats(records []domain.CandidateRecord) domain.ProcessingStats {
	stats := domain.ProcessingStats{Records: len(records)}
	for _, r := range records {
		stats.Name += specified(r.Name)
		stats.Phone += specified(r.Phone)
		stats.Email += specified(r.Email)
		stats.Location += specified(r.Location)
		stats.Qualification += specified(r.Qualification)
		stats.Skills += specified(r.Skills)
		stats.YearsOfExperience += specified(r.YearsOfExperience)
	}
	return stats
}

func specified(v string) int {
	if domain.IsSpecified(v) {
		return 1
	}
	return 0
}

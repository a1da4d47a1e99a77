package loopgo

// Status classifies the outcome of one detection call.
type Status uint8

const (
	// StatusUnknown is reported together with an error when a collaborator failed.
	StatusUnknown Status = iota
	// LoopDetected means the frame revisits DetectionResult.Match.
	LoopDetected
	// LowNSSFactor means the frame shares too little with the previous one
	// to normalize scores.
	LowNSSFactor
	// NoDBResults means no eligible frame shares a word with the query.
	NoDBResults
	// LowScores means every candidate scored below Alpha.
	LowScores
	// NoGroups means no island covered enough frames.
	NoGroups
	// NoTemporalConsistency means no island has matched for K consecutive queries.
	NoTemporalConsistency
	// NoGeometricalConsistency means the best candidate failed geometric verification.
	NoGeometricalConsistency

	numStatuses
)

var statusNames = [numStatuses]string{
	StatusUnknown:            "unknown",
	LoopDetected:             "loop_detected",
	LowNSSFactor:             "low_nss_factor",
	NoDBResults:              "no_db_results",
	LowScores:                "low_scores",
	NoGroups:                 "no_groups",
	NoTemporalConsistency:    "no_temporal_consistency",
	NoGeometricalConsistency: "no_geometrical_consistency",
}

func (s Status) String() string {
	if s < numStatuses {
		return statusNames[s]
	}
	return "invalid"
}

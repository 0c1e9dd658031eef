package domain

// LeadStatus is the lifecycle state of a lead.
type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "new"
	LeadStatusProcessing  LeadStatus = "processing"
	LeadStatusQualified   LeadStatus = "qualified"
	LeadStatusReview      LeadStatus = "review"
	LeadStatusRejected    LeadStatus = "rejected"
	LeadStatusUnqualified LeadStatus = "unqualified"
	LeadStatusContacted   LeadStatus = "contacted"
	LeadStatusConverted   LeadStatus = "converted"
)

var knownStatuses = map[LeadStatus]struct{}{
	LeadStatusNew:         {},
	LeadStatusProcessing:  {},
	LeadStatusQualified:   {},
	LeadStatusReview:      {},
	LeadStatusRejected:    {},
	LeadStatusUnqualified: {},
	LeadStatusContacted:   {},
	LeadStatusConverted:   {},
}

// qualificationOutcomes are the only statuses the pipeline writes as a verdict.
var qualificationOutcomes = map[LeadStatus]bool{
	LeadStatusQualified: true,
	LeadStatusReview:    true,
	LeadStatusRejected:  true,
}

// pipelineTransitions lists every status change the qualification pipeline may make.
// Tenant-driven statuses (contacted, converted, unqualified) have no entry: the
// pipeline never moves a lead out of them.
var pipelineTransitions = map[LeadStatus]map[LeadStatus]bool{
	LeadStatusNew: {
		LeadStatusProcessing: true,
	},
	LeadStatusProcessing: {
		LeadStatusQualified: true,
		LeadStatusReview:    true,
		LeadStatusRejected:  true,
		LeadStatusNew:       true,
	},
}

// IsKnownStatus reports whether s is a valid lead status.
func IsKnownStatus(s LeadStatus) bool {
	_, ok := knownStatuses[s]
	return ok
}

// IsQualificationOutcome reports whether s is one of qualified, review or rejected.
func IsQualificationOutcome(s LeadStatus) bool {
	return qualificationOutcomes[s]
}

// CanTransition reports whether the pipeline may move a lead from one status to another.
func CanTransition(from, to LeadStatus) bool {
	return pipelineTransitions[from][to]
}

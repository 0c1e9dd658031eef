package email

const (
	subjectLeadQualifiedFmt = "Thanks for reaching out, %s"
	subjectLeadQualified    = "Thanks for reaching out"
)

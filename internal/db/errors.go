package db

import "errors"

// ErrDuplicateApplicant indicates the (job_id, email) uniqueness constraint
// rejected an insert. The orchestrator treats this identically to a
// pre-check duplicate skip: two concurrent submissions of the same email
// may both pass the pre-check race, and the constraint is the tiebreaker.
var ErrDuplicateApplicant = errors.New("applicant already exists for this job and email")

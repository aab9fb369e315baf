package models

import "time"

// Problem status values. An empty status is allowed and treated as not done.
const (
	ProblemStatusOpen     = "Open"
	ProblemStatusProgress = "Progress"
	ProblemStatusDone     = "Selesai"
)

// PriorityHigh marks an issue as high priority; any other value is ordinary.
const PriorityHigh = "Tinggi"

// CloneSuffix is appended to the title of a cloned problem or program.
const CloneSuffix = " (Salinan)"

// Problem is a manually logged organisational issue.
type Problem struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	RootCause string    `json:"rootCause"`
	Impact    string    `json:"impact"`
	Solution  string    `json:"solution"`
	PJ        string    `json:"pj"`
	Deadline  string    `json:"deadline"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
}

// Done reports whether the problem is resolved.
func (p Problem) Done() bool {
	return p.Status == ProblemStatusDone
}

// Draft reports whether the problem has not been persisted yet.
func (p Problem) Draft() bool {
	return p.ID == ""
}

// Clone returns an unsaved copy with the title suffixed.
func (p Problem) Clone() Problem {
	p.ID = ""
	p.CreatedAt = time.Time{}
	p.Title += CloneSuffix
	return p
}

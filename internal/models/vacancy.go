package models

import "time"

// Vacancy is the normalized representation of one remote catalog item.
// ID is the globally unique key in the durable store. Salary fields are
// pointers: the remote salary sub-object may be absent entirely, or carry
// only one bound. Description holds plain text with all markup stripped.
type Vacancy struct {
	ID          int       `json:"id" badgerhold:"key"`
	Name        string    `json:"name"`
	Area        string    `json:"area"`
	SalaryFrom  *float64  `json:"salary_from,omitempty"`
	SalaryTo    *float64  `json:"salary_to,omitempty"`
	Currency    *string   `json:"currency,omitempty"`
	Experience  string    `json:"experience"`
	Schedule    string    `json:"schedule"`
	Employment  string    `json:"employment"`
	Description string    `json:"description"`
	KeySkills   []string  `json:"key_skills"`
	SourceURL   string    `json:"source_url"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}

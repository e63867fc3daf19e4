// Package hh provides a client for the HeadHunter vacancy catalog API.
// This package centralizes all catalog API interactions for the application.
package hh

import (
	"fmt"
)

// SearchPage is one page of vacancy search results. Pages declares the
// total page count for the query; Items carries up to PerPage identifiers.
type SearchPage struct {
	Pages int          `json:"pages"`
	Found int          `json:"found"`
	Page  int          `json:"page"`
	Items []SearchItem `json:"items"`
}

// SearchItem is one result-list entry. The API serializes IDs as strings.
type SearchItem struct {
	ID string `json:"id"`
}

// NamedRef is the API's {"id": ..., "name": ...} reference shape.
type NamedRef struct {
	Name string `json:"name"`
}

// Salary is the optional salary sub-object of a vacancy.
type Salary struct {
	From     *float64 `json:"from"`
	To       *float64 `json:"to"`
	Currency *string  `json:"currency"`
}

// VacancyDetail is the raw detail payload for a single vacancy.
type VacancyDetail struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Area         *NamedRef  `json:"area"`
	Salary       *Salary    `json:"salary"`
	Experience   *NamedRef  `json:"experience"`
	Schedule     *NamedRef  `json:"schedule"`
	Employment   *NamedRef  `json:"employment"`
	Description  string     `json:"description"`
	KeySkills    []NamedRef `json:"key_skills"`
	AlternateURL string     `json:"alternate_url"`
	PublishedAt  string     `json:"published_at"`
}

// APIError represents a non-2xx response from the catalog API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// IsClientError reports whether the response was a 4xx. Client errors are
// the only recognized upstream failure signal; they abort the invocation.
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

package crawler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/colligo/internal/hh"
	"github.com/ternarybob/colligo/internal/models"
)

// normalize flattens a raw catalog detail payload into the storage record.
// Optional sub-objects collapse to zero values or nil pointers; the HTML
// description is reduced to plain text; the publication timestamp is kept
// as a date only.
func normalize(detail *hh.VacancyDetail) (*models.Vacancy, error) {
	id, err := strconv.Atoi(detail.ID)
	if err != nil {
		return nil, fmt.Errorf("vacancy has non-numeric id %q: %w", detail.ID, err)
	}

	vacancy := &models.Vacancy{
		ID:          id,
		Name:        detail.Name,
		Description: stripHTML(detail.Description),
		SourceURL:   detail.AlternateURL,
		CreatedAt:   time.Now().UTC(),
	}

	if detail.Area != nil {
		vacancy.Area = detail.Area.Name
	}
	if detail.Experience != nil {
		vacancy.Experience = detail.Experience.Name
	}
	if detail.Schedule != nil {
		vacancy.Schedule = detail.Schedule.Name
	}
	if detail.Employment != nil {
		vacancy.Employment = detail.Employment.Name
	}
	if detail.Salary != nil {
		vacancy.SalaryFrom = detail.Salary.From
		vacancy.SalaryTo = detail.Salary.To
		vacancy.Currency = detail.Salary.Currency
	}

	// Skill order is preserved as published.
	for _, skill := range detail.KeySkills {
		vacancy.KeySkills = append(vacancy.KeySkills, skill.Name)
	}

	if detail.PublishedAt != "" {
		published, err := parsePublishedDate(detail.PublishedAt)
		if err != nil {
			return nil, fmt.Errorf("vacancy %d has malformed published_at %q: %w", id, detail.PublishedAt, err)
		}
		vacancy.PublishedAt = published
	}

	return vacancy, nil
}

// parsePublishedDate keeps only the calendar date of the catalog's
// "2006-01-02T15:04:05-0700" timestamps. The time-of-day and zone are
// discarded rather than converted.
func parsePublishedDate(raw string) (time.Time, error) {
	datePart, _, _ := strings.Cut(raw, "T")
	return time.Parse("2006-01-02", datePart)
}

// stripHTML reduces an HTML fragment to its text content. Malformed markup
// falls back to the raw string; the description is informational and never
// worth failing a record over.
func stripHTML(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.TrimSpace(doc.Text())
}

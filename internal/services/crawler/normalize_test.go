package crawler

import (
	"testing"
	"time"

	"github.com/ternarybob/colligo/internal/hh"
)

func floatPtr(f float64) *float64 { return &f }
func stringPtr(s string) *string  { return &s }

func TestNormalizeFullRecord(t *testing.T) {
	detail := &hh.VacancyDetail{
		ID:   "12345",
		Name: "Go Developer",
		Area: &hh.NamedRef{Name: "Moscow"},
		Salary: &hh.Salary{
			From:     floatPtr(200000),
			To:       floatPtr(300000),
			Currency: stringPtr("RUR"),
		},
		Experience:   &hh.NamedRef{Name: "3-6 years"},
		Schedule:     &hh.NamedRef{Name: "remote"},
		Employment:   &hh.NamedRef{Name: "full"},
		Description:  "<p>We build <strong>services</strong> in Go.</p>",
		KeySkills:    []hh.NamedRef{{Name: "Go"}, {Name: "PostgreSQL"}, {Name: "Docker"}},
		AlternateURL: "https://hh.ru/vacancy/12345",
		PublishedAt:  "2025-06-15T12:30:00+0300",
	}

	vacancy, err := normalize(detail)
	if err != nil {
		t.Fatalf("normalize() error = %v", err)
	}

	if vacancy.ID != 12345 {
		t.Errorf("ID = %d, want 12345", vacancy.ID)
	}
	if vacancy.Area != "Moscow" {
		t.Errorf("Area = %q, want Moscow", vacancy.Area)
	}
	if vacancy.SalaryFrom == nil || *vacancy.SalaryFrom != 200000 {
		t.Errorf("SalaryFrom = %v, want 200000", vacancy.SalaryFrom)
	}
	if vacancy.Description != "We build services in Go." {
		t.Errorf("Description = %q, want markup stripped", vacancy.Description)
	}
	wantSkills := []string{"Go", "PostgreSQL", "Docker"}
	if len(vacancy.KeySkills) != len(wantSkills) {
		t.Fatalf("KeySkills = %v, want %v", vacancy.KeySkills, wantSkills)
	}
	for i, skill := range wantSkills {
		if vacancy.KeySkills[i] != skill {
			t.Errorf("KeySkills[%d] = %q, want %q (order must be preserved)", i, vacancy.KeySkills[i], skill)
		}
	}
	wantDate := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if !vacancy.PublishedAt.Equal(wantDate) {
		t.Errorf("PublishedAt = %v, want date-only %v", vacancy.PublishedAt, wantDate)
	}
	if vacancy.SourceURL != "https://hh.ru/vacancy/12345" {
		t.Errorf("SourceURL = %q", vacancy.SourceURL)
	}
}

func TestNormalizeMinimalRecord(t *testing.T) {
	detail := &hh.VacancyDetail{
		ID:   "7",
		Name: "Bare Vacancy",
	}

	vacancy, err := normalize(detail)
	if err != nil {
		t.Fatalf("normalize() error = %v", err)
	}

	if vacancy.Area != "" || vacancy.Experience != "" || vacancy.Schedule != "" || vacancy.Employment != "" {
		t.Error("expected empty strings for absent references")
	}
	if vacancy.SalaryFrom != nil || vacancy.SalaryTo != nil || vacancy.Currency != nil {
		t.Error("expected nil salary fields for absent salary")
	}
	if !vacancy.PublishedAt.IsZero() {
		t.Errorf("PublishedAt = %v, want zero", vacancy.PublishedAt)
	}
}

func TestNormalizePartialSalary(t *testing.T) {
	detail := &hh.VacancyDetail{
		ID:     "8",
		Name:   "Lower Bound Only",
		Salary: &hh.Salary{From: floatPtr(150000), Currency: stringPtr("RUR")},
	}

	vacancy, err := normalize(detail)
	if err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	if vacancy.SalaryFrom == nil || *vacancy.SalaryFrom != 150000 {
		t.Errorf("SalaryFrom = %v, want 150000", vacancy.SalaryFrom)
	}
	if vacancy.SalaryTo != nil {
		t.Errorf("SalaryTo = %v, want nil", vacancy.SalaryTo)
	}
}

func TestNormalizeRejectsNonNumericID(t *testing.T) {
	if _, err := normalize(&hh.VacancyDetail{ID: "abc"}); err == nil {
		t.Error("expected error for non-numeric ID")
	}
}

func TestNormalizeRejectsMalformedDate(t *testing.T) {
	detail := &hh.VacancyDetail{ID: "9", PublishedAt: "June 15th"}
	if _, err := normalize(detail); err == nil {
		t.Error("expected error for malformed published_at")
	}
}

func TestStripHTMLFallsBackToRawOnEmpty(t *testing.T) {
	if got := stripHTML(""); got != "" {
		t.Errorf("stripHTML(\"\") = %q, want empty", got)
	}
	if got := stripHTML("plain text"); got != "plain text" {
		t.Errorf("stripHTML(plain) = %q", got)
	}
}

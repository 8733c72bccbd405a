package headhunter

import (
	"testing"

	"jobcompass/internal/storage"
)

func TestBuildParams(t *testing.T) {
	params := &SearchParams{
		Text:           "golang",
		Area:           1,
		Salary:         150000,
		OnlyWithSalary: true,
		Schedule:       "remote",
		Period:         3,
		PerPage:        "100",
	}

	q := buildParams(params)

	if got := q.Get("text"); got != "golang" {
		t.Fatalf("text = %q", got)
	}
	if got := q.Get("area"); got != "1" {
		t.Fatalf("area = %q", got)
	}
	if got := q.Get("salary"); got != "150000" {
		t.Fatalf("salary = %q", got)
	}
	if got := q.Get("only_with_salary"); got != "true" {
		t.Fatalf("only_with_salary = %q", got)
	}
	if got := q.Get("schedule"); got != "remote" {
		t.Fatalf("schedule = %q", got)
	}
	if got := q.Get("period"); got != "3" {
		t.Fatalf("period = %q", got)
	}
	if got := q.Get("per_page"); got != "100" {
		t.Fatalf("per_page = %q", got)
	}
}

func TestBuildParamsDropsZeroValues(t *testing.T) {
	q := buildParams(&SearchParams{Text: "golang"})

	for _, key := range []string{"area", "salary", "only_with_salary", "schedule", "employment", "experience"} {
		if q.Has(key) {
			t.Fatalf("zero-valued %q must be dropped, got %q", key, q.Get(key))
		}
	}
}

func TestParamsFromCriteria(t *testing.T) {
	c := &storage.SearchCriteria{
		Position:      "Go Developer",
		City:          "Москва",
		MinSalary:     200000,
		Remote:        true,
		FreshnessDays: 7,
		Employment:    "full",
		Experience:    "between3And6",
	}

	params := ParamsFromCriteria(c)

	if params.Text != "Go Developer" {
		t.Fatalf("Text = %q", params.Text)
	}
	if params.Area != 1 {
		t.Fatalf("Area = %d, want Moscow id 1", params.Area)
	}
	if params.Salary != 200000 || !params.OnlyWithSalary {
		t.Fatalf("Salary = %d, OnlyWithSalary = %v", params.Salary, params.OnlyWithSalary)
	}
	if params.Schedule != "remote" {
		t.Fatalf("Schedule = %q", params.Schedule)
	}
	if params.Period != 7 {
		t.Fatalf("Period = %d", params.Period)
	}
	if params.Employment != "full" || params.Experience != "between3And6" {
		t.Fatalf("Employment = %q, Experience = %q", params.Employment, params.Experience)
	}
}

func TestParamsFromCriteriaUnknownCity(t *testing.T) {
	params := ParamsFromCriteria(&storage.SearchCriteria{
		Position: "Go Developer",
		City:     "Атлантида",
	})

	// An unknown city degrades to an unfiltered-by-location search.
	if params.Area != 0 {
		t.Fatalf("Area = %d, want 0", params.Area)
	}
	if params.Period != 1 {
		t.Fatalf("Period = %d, want default 1", params.Period)
	}
}

func TestParamsFromCriteriaNoSalary(t *testing.T) {
	params := ParamsFromCriteria(&storage.SearchCriteria{Position: "QA"})

	if params.OnlyWithSalary {
		t.Fatal("OnlyWithSalary must stay false without a minimum salary")
	}
}

func TestResolveArea(t *testing.T) {
	if id, ok := ResolveArea("Москва"); !ok || id != 1 {
		t.Fatalf("ResolveArea(Москва) = %d, %v", id, ok)
	}
	if id, ok := ResolveArea("москва"); !ok || id != 1 {
		t.Fatalf("ResolveArea must be case-insensitive, got %d, %v", id, ok)
	}
	if _, ok := ResolveArea("Nowhere"); ok {
		t.Fatal("ResolveArea must report unknown cities")
	}
}

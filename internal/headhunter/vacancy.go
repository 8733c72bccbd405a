package headhunter

// Vacancies is a page-merged list of raw vacancy payloads.
type Vacancies struct {
	Items []*Vacancy
}

// Vacancy mirrors the hh.ru vacancy payload returned by the search endpoint.
// Fields are kept raw; normalization into a canonical listing happens in the
// listing package.
type Vacancy struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Area struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"area,omitempty"`
	// Salary stays a pointer: hh.ru distinguishes a missing salary object
	// from a present-but-empty one, and so does the compensation formatting
	// rule.
	Salary   *Salary `json:"salary,omitempty"`
	Employer struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employer,omitempty"`
	Snippet struct {
		Requirement    string `json:"requirement,omitempty"`
		Responsibility string `json:"responsibility,omitempty"`
	} `json:"snippet,omitempty"`
	Employment struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employment,omitempty"`
	Experience struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"experience,omitempty"`
	Schedule struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"schedule,omitempty"`
	AlternateURL      string `json:"alternate_url,omitempty"`
	ApplyAlternateURL string `json:"apply_alternate_url,omitempty"`
	PublishedAt       string `json:"published_at,omitempty"`
	Archived          bool   `json:"archived,omitempty"`
}

// Salary is the hh.ru salary sub-object. From and To are pointers because
// either bound may be absent independently.
type Salary struct {
	From     *int   `json:"from,omitempty"`
	To       *int   `json:"to,omitempty"`
	Currency string `json:"currency,omitempty"`
	Gross    bool   `json:"gross,omitempty"`
}

// Package docgen generates application documents (cover letters and resume
// drafts) for a recipient and a concrete listing.
package docgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"jobcompass/internal/storage"
)

// ErrInsufficientData is returned when the recipient's profile lacks the
// fields a document needs. The caller should ask the user to fill in their
// profile instead of producing an empty document.
var ErrInsufficientData = errors.New("recipient profile has insufficient data for document generation")

// Generator produces one document kind from a profile and a listing.
type Generator interface {
	Generate(ctx context.Context, kind storage.DocumentKind, r *storage.Recipient, l *storage.Listing) (string, error)
}

func validateProfile(r *storage.Recipient) error {
	if r == nil || strings.TrimSpace(r.FullName) == "" {
		return fmt.Errorf("%w: full name is required", ErrInsufficientData)
	}
	if strings.TrimSpace(r.Skills) == "" && strings.TrimSpace(r.BaseResume) == "" {
		return fmt.Errorf("%w: skills or a base resume are required", ErrInsufficientData)
	}

	return nil
}

var coverLetterTmpl = template.Must(template.New("cover_letter").Parse(
	`Dear {{.Employer}} hiring team,

I am writing to apply for the {{.Title}} position. My background as
{{.Position}} and experience with {{.Skills}} make me a strong match for
this role.

{{if .Snippet}}The posting mentions: {{.Snippet}}
I have directly relevant experience in this area.

{{end}}I would welcome the chance to discuss how I can contribute.

Best regards,
{{.FullName}}
`))

var resumeTmpl = template.Must(template.New("resume").Parse(
	`{{.FullName}}
{{.Position}}{{if .City}}, {{.City}}{{end}}

TARGET ROLE
{{.Title}} at {{.Employer}}

KEY SKILLS
{{.Skills}}

{{if .BaseResume}}EXPERIENCE
{{.BaseResume}}
{{end}}`))

// TemplateGenerator renders documents from static templates. It is the
// fallback when no AI backend is configured.
type TemplateGenerator struct{}

var _ Generator = (*TemplateGenerator)(nil)

func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

func (g *TemplateGenerator) Generate(_ context.Context, kind storage.DocumentKind, r *storage.Recipient, l *storage.Listing) (string, error) {
	if err := validateProfile(r); err != nil {
		return "", err
	}

	data := map[string]string{
		"FullName":   r.FullName,
		"Position":   r.DesiredPosition,
		"City":       r.City,
		"Skills":     r.Skills,
		"BaseResume": r.BaseResume,
		"Title":      l.Title,
		"Employer":   l.Employer,
		"Snippet":    l.Snippet,
	}
	if data["Position"] == "" {
		data["Position"] = l.Title
	}
	if data["Skills"] == "" {
		data["Skills"] = "the technologies listed in my resume"
	}

	var tmpl *template.Template
	switch kind {
	case storage.DocumentCoverLetter:
		tmpl = coverLetterTmpl
	case storage.DocumentResume:
		tmpl = resumeTmpl
	default:
		return "", fmt.Errorf("unknown document kind %q", kind)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", kind, err)
	}

	return b.String(), nil
}

func buildPrompt(kind storage.DocumentKind, r *storage.Recipient, l *storage.Listing) (string, error) {
	var task string
	switch kind {
	case storage.DocumentCoverLetter:
		task = "Write a concise, professional cover letter (under 250 words) for the vacancy below. Address the employer directly and tie the candidate's experience to the posting. Output only the letter text."
	case storage.DocumentResume:
		task = "Write a tailored one-page resume draft for the vacancy below, reordering the candidate's experience to highlight what the posting asks for. Output only the resume text."
	default:
		return "", fmt.Errorf("unknown document kind %q", kind)
	}

	var b strings.Builder
	b.WriteString(task)
	b.WriteString("\n\nVACANCY\n")
	fmt.Fprintf(&b, "Title: %s\nEmployer: %s\nCity: %s\nCompensation: %s\n", l.Title, l.Employer, l.City, l.Compensation)
	if l.Snippet != "" {
		fmt.Fprintf(&b, "Details: %s\n", l.Snippet)
	}
	b.WriteString("\nCANDIDATE\n")
	fmt.Fprintf(&b, "Name: %s\nDesired position: %s\nCity: %s\nSkills: %s\n", r.FullName, r.DesiredPosition, r.City, r.Skills)
	if r.BaseResume != "" {
		fmt.Fprintf(&b, "\nBase resume:\n%s\n", r.BaseResume)
	}

	return b.String(), nil
}

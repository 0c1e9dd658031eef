package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

// LeadQualifiedData fills the follow-up email sent to a qualified lead.
type LeadQualifiedData struct {
	Name  string
	Email string
	// Phone is expected in E.164 form; empty hides the callback line.
	Phone string
	// ContactURL is an optional link shown as the call to action.
	ContactURL string
}

type leadQualifiedEmailData struct {
	baseEmailData
	LeadQualifiedData
}

// RenderLeadQualified returns the subject and HTML body for a qualified-lead follow-up.
func RenderLeadQualified(data LeadQualifiedData) (string, string, error) {
	subject := subjectLeadQualified
	if data.Name != "" {
		subject = fmt.Sprintf(subjectLeadQualifiedFmt, data.Name)
	}

	content, err := renderEmailTemplate("lead_qualified.html", leadQualifiedEmailData{
		baseEmailData: baseEmailData{
			Title:    subjectLeadQualified,
			Heading:  "We received your request",
			CTALabel: ctaLabel(data.ContactURL),
			CTAURL:   data.ContactURL,
		},
		LeadQualifiedData: data,
	})
	if err != nil {
		return "", "", err
	}
	return subject, content, nil
}

func ctaLabel(url string) string {
	if url == "" {
		return ""
	}
	return "Book a call"
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

package sections

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/models"
)

const doiResolver = "https://doi.org/"

// FormatCitation renders a reference as one citation sentence in the style
// of its type. References without authors, year or title degrade to the
// bare title.
func FormatCitation(ref models.Reference) string {
	r := trimReference(ref)
	if err := validateCitation(&r); err != nil {
		return r.Title
	}

	parts := []string{r.Authors + " (" + r.Year.Text + ")."}
	link := ResolveURL(r.URL)

	switch r.Type {
	case models.ReferenceJournal:
		parts = append(parts, sentence(r.Title))
		if r.Journal != "" {
			src := "*" + r.Journal + "*"
			if !r.Volume.IsZero() {
				src += ", " + r.Volume.Text
			}
			if !r.Pages.IsZero() {
				src += ", " + r.Pages.Text
			}
			parts = append(parts, src+".")
		}
	case models.ReferenceBook:
		parts = append(parts, sentence("*"+r.Title+"*"))
		if pub := joinNonEmpty(": ", r.Location, r.Publisher); pub != "" {
			parts = append(parts, sentence(pub))
		}
	case models.ReferenceWebsite:
		parts = append(parts, sentence(r.Title))
		if r.Website != "" {
			parts = append(parts, sentence("*"+r.Website+"*"))
		}
		switch {
		case link != "" && r.AccessDate != "":
			parts = append(parts, "Retrieved "+r.AccessDate+", from "+link)
		case link != "":
			parts = append(parts, "Retrieved from "+link)
		}
	case models.ReferenceReport:
		parts = append(parts, sentence("*"+r.Title+"*"))
		if r.Publisher != "" {
			parts = append(parts, sentence(r.Publisher))
		}
	default:
		parts = append(parts, sentence(r.Title))
	}

	if link != "" && r.Type != models.ReferenceWebsite {
		parts = append(parts, link)
	}
	return strings.Join(parts, " ") + " "
}

// ResolveURL rewrites doi: URLs to the DOI resolver.
func ResolveURL(u string) string {
	u = strings.TrimSpace(u)
	if len(u) >= 4 && strings.EqualFold(u[:4], "doi:") {
		return doiResolver + strings.TrimSpace(u[4:])
	}
	return u
}

func validateCitation(r *models.Reference) error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Authors, validation.Required),
		validation.Field(&r.Year, validation.By(requiredScalar)),
		validation.Field(&r.Title, validation.Required),
	)
}

func requiredScalar(value any) error {
	if s, ok := value.(models.Scalar); ok && s.IsZero() {
		return validation.ErrRequired
	}
	return nil
}

func trimReference(r models.Reference) models.Reference {
	r.Type = models.ReferenceType(strings.ToLower(strings.TrimSpace(string(r.Type))))
	r.Authors = strings.TrimSpace(r.Authors)
	r.Year.Text = strings.TrimSpace(r.Year.Text)
	r.Title = strings.TrimSpace(r.Title)
	r.Journal = strings.TrimSpace(r.Journal)
	r.Volume.Text = strings.TrimSpace(r.Volume.Text)
	r.Pages.Text = strings.TrimSpace(r.Pages.Text)
	r.Publisher = strings.TrimSpace(r.Publisher)
	r.Location = strings.TrimSpace(r.Location)
	r.Website = strings.TrimSpace(r.Website)
	r.AccessDate = strings.TrimSpace(r.AccessDate)
	return r
}

func sentence(s string) string {
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!") {
		return s
	}
	return s + "."
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

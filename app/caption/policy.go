package caption

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mudikgratis2025/detik-syndicator/app/source"
)

// Policy composes the caption posted with a video. The composition rule is
// pluggable because different deployments want different amounts of context
// (description only, title prefix, source attribution).
type Policy func(c source.Candidate) string

// Default composes description plus derived hashtags, without the title or
// a source link.
func Default(c source.Candidate) string {
	return join(c.Description, Hashtags(c.Keywords))
}

// WithTitle prepends the video title to the default composition.
func WithTitle(c source.Candidate) string {
	return join(c.Title, c.Description, Hashtags(c.Keywords))
}

// Hashtags turns source keywords into "#tag" markup. Diacritics are folded
// and inner spaces removed so multi-word Indonesian keywords survive as
// single tags.
func Hashtags(keywords []string) string {
	tags := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		tag := foldDiacritics(strings.TrimSpace(keyword))
		tag = strings.ReplaceAll(tag, " ", "")
		if tag == "" {
			continue
		}
		tags = append(tags, "#"+tag)
	}
	return strings.Join(tags, " ")
}

func join(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

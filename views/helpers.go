package views

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// absoluteURL joins base with an already escaped site path.
func absoluteURL(base, link string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(link, "/")
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(site Site, post PostView) string {
	postURL := absoluteURL(site.URL, post.Link)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   post.ShortSnippet,
		"datePublished": post.Created.Format("2006-01-02"),
		"url":           postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  site.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if post.AuthorName != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  post.AuthorName,
		}
	}
	if len(post.Labels) > 0 {
		names := make([]string, len(post.Labels))
		for i, l := range post.Labels {
			names[i] = l.Name
		}
		data["keywords"] = strings.Join(names, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	// Keep "</script>" inside a string value from closing the tag early.
	return strings.ReplaceAll(string(b), "</", `<\/`)
}

// JoinLabels formats label names as a comma-separated string for form fields.
func JoinLabels(labels []LabelView) string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return strings.Join(names, ", ")
}

// htmlWriter writes markup and escaped text, remembering the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) attr(s string) string {
	return templ.EscapeString(s)
}

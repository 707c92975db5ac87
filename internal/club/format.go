package club

import (
	"fmt"
	"strings"

	"github.com/adroit-club/assistant/internal/index"
)

// Document renders a resource as an indexable document. The field layout
// is fixed so retrieval results read uniformly regardless of which fields
// the record fills in.
func (r Resource) Document() index.Document {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", r.Title)
	fmt.Fprintf(&b, "Type: %s\n", r.Type)
	fmt.Fprintf(&b, "Domain: %s\n", r.Domain)
	fmt.Fprintf(&b, "Difficulty: %s\n", r.Difficulty)
	fmt.Fprintf(&b, "URL: %s\n", r.URL)
	fmt.Fprintf(&b, "Tags: %s\n", strings.Join(r.Tags, ", "))
	fmt.Fprintf(&b, "\nDescription:\n%s", r.Description)

	return index.Document{
		Content: b.String(),
		Metadata: map[string]string{
			// source must be unique per record: chunk identifiers are
			// derived from it, and colliding identifiers overwrite each
			// other in the persisted index.
			"source": "resource:" + r.ID,
			"id":     r.ID,
			"title":  r.Title,
			"domain": r.Domain,
			"type":   r.Type,
			"url":    r.URL,
		},
	}
}

// Documents renders the whole catalogue.
func Documents(resources []Resource) []index.Document {
	docs := make([]index.Document, len(resources))
	for i, r := range resources {
		docs[i] = r.Document()
	}
	return docs
}

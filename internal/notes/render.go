package notes

import (
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// RenderHTML converts note content from markdown to a sanitized HTML
// fragment for the presentation layer. Content is free text, so the output
// is run through a UGC sanitizer; script and event-handler markup never
// survives. The fragment is derived state and never stored.
func RenderHTML(content string) string {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(content))

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	raw := markdown.Render(doc, renderer)

	return string(bluemonday.UGCPolicy().SanitizeBytes(raw))
}

package docs

import (
	"fmt"
	"io"

	md "github.com/russross/blackfriday/v2"
)

// RenderVocabulary runs markdown through blackfriday and writes the
// resulting HTML fragment to out, the same one-call convention as the
// teacher's RenderSpecHTML uses for a node's Doc string.
func RenderVocabulary(markdown string, out io.Writer) error {
	html := md.Run([]byte(markdown))
	_, err := fmt.Fprintf(out, `<div class="vocabularyDoc doc">%s</div>`+"\n", html)
	return err
}

// RenderPage wraps RenderVocabulary in a minimal standalone HTML page,
// following RenderSpecPage's shape (title, optional stylesheet links,
// body).
func RenderPage(title, markdown string, out io.Writer, cssFiles []string) error {
	fmt.Fprintf(out, "<!DOCTYPE html>\n<meta charset=\"utf-8\">\n<html>\n  <head>\n  <title>%s</title>\n", title)
	for _, css := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", css)
	}
	fmt.Fprintf(out, "  </head>\n  <body>\n    <h1>%s</h1>\n", title)
	if err := RenderVocabulary(markdown, out); err != nil {
		return err
	}
	fmt.Fprintf(out, "  </body>\n</html>\n")
	return nil
}

package ui

import "github.com/charmbracelet/glamour"

// maxReadableWidth caps word wrap on wide terminals.
const maxReadableWidth = 100

// RenderMarkdown renders doc for the terminal, word wrapped at width (capped
// at 100 columns). Unstyled output, or any rendering failure, returns doc
// unchanged.
func RenderMarkdown(doc string, width int, styled bool) string {
	if !styled {
		return doc
	}

	wrapWidth := width
	if wrapWidth <= 0 {
		wrapWidth = DefaultWidth
	}
	if wrapWidth > maxReadableWidth {
		wrapWidth = maxReadableWidth
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return doc
	}

	rendered, err := renderer.Render(doc)
	if err != nil {
		return doc
	}
	return rendered
}

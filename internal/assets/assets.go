// Package assets provides the HTML templates, LaTeX template, and CSS
// styles used to render the site and the typeset CV. Assets can be loaded
// from the embedded defaults or overridden from a filesystem directory.
package assets

// Loader defines the contract for loading render resources.
type Loader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads an HTML template by name (without .html extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)

	// LoadTexTemplate loads a LaTeX template by name (without .tex extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTexTemplate(name string) (string, error)
}

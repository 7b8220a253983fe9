// Package cardtemplate renders contract cards to HTML.
//
// Renderer executes a named template ("card" by default) through a
// TemplateExecutor. NewRenderer wires the embedded html/template card; the
// Pongo2Executor runs Django-style templates with the same data. Status badges
// and progress bars are pluggable pure functions so hosts can restyle them
// without touching the card template.
package cardtemplate

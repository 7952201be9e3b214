// Package preview summarises a fill session: the answers given to the
// question flow followed by the ordinary field values. Summaries render to
// plain text or HTML through pongo2 templates.
package preview

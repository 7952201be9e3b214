// Package catalog holds the palette of field kinds the builder can insert and
// the defaults each kind starts with. The table is built once and never
// mutated; lookups hand out copies so callers cannot alter shared defaults.
package catalog

// Package console is the operator side of an agentzero session: it narrates
// agent progress with lipgloss styles and turns keystrokes typed during a
// generation into pauses, interventions or an exit request on the
// intervention board.
package console

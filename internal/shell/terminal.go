package shell

import "pkt.systems/termfolio/console"

// NewTerminal wires a console session to a portfolio interpreter that sizes
// its banner and QR codes from that session's live width.
func NewTerminal(surface console.Surface, content ContentSource, cfg console.Config) *console.Session {
	var term *console.Session
	interp := New(content, WithColumns(func() int { return term.Columns() }))
	term = console.NewSession(surface, interp, cfg)
	return term
}

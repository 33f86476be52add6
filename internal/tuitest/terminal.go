package tuitest

import (
	"bytes"
	"io"
)

// terminalResponder answers the terminal capability queries bubbletea and
// lipgloss issue on startup (cursor position, default colors), so the
// program under test does not stall waiting for a real terminal.
type terminalResponder struct {
	w   io.Writer
	buf []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, buf: make([]byte, 0, 128)}
}

var terminalReplies = []struct {
	query    []byte
	response []byte
}{
	{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
	{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

func (tr *terminalResponder) Process(chunk []byte) {
	tr.buf = append(tr.buf, chunk...)
	for tr.scanOnce() {
	}
	// Keep a small tail so queries that span reads are still detected.
	if len(tr.buf) > 256 {
		tr.buf = tr.buf[len(tr.buf)-64:]
	}
}

func (tr *terminalResponder) scanOnce() bool {
	for _, reply := range terminalReplies {
		idx := bytes.Index(tr.buf, reply.query)
		if idx < 0 {
			continue
		}
		tr.buf = tr.buf[idx+len(reply.query):]
		_, _ = tr.w.Write(reply.response)
		return true
	}
	return false
}

package console

import (
	"bufio"
	"io"
	"unicode"
	"unicode/utf8"
)

type keyKind int

const (
	keyRune keyKind = iota
	keyEnter
	keyBackspace
	keyKillLine
	keyDelete
	keyLeft
	keyRight
	keyUp
	keyDown
	keyHome
	keyEnd
	keyTab
	keyCtrlA
	keyCtrlE
	keyCtrlU
	keyCtrlK
	keyCtrlW
	keyCtrlC
	keyCtrlD
	keyCtrlL
	keyAltB
	keyAltF
)

type key struct {
	kind keyKind
	r    rune
}

// keyDecoder turns raw terminal bytes into events. It stops when the reader
// fails or done is closed.
type keyDecoder struct {
	br   *bufio.Reader
	out  chan<- Event
	done <-chan struct{}
}

func decodeKeys(r io.Reader, out chan<- Event, done <-chan struct{}) {
	defer close(out)
	d := &keyDecoder{br: bufio.NewReader(r), out: out, done: done}
	d.run()
}

func (d *keyDecoder) emitKey(kind keyKind) bool {
	return d.emit(keyEvent(UserSourced, key{kind: kind}))
}

func (d *keyDecoder) emit(ev Event) bool {
	select {
	case d.out <- ev:
		return true
	case <-d.done:
		return false
	}
}

func (d *keyDecoder) run() {
	lastWasCR := false
	for {
		b, err := d.br.ReadByte()
		if err != nil {
			return
		}
		if lastWasCR {
			lastWasCR = false
			if b == '\n' {
				continue
			}
		}
		ok := true
		switch b {
		case 0x1b:
			ok = d.readEscape()
		case '\r':
			ok = d.emitKey(keyEnter)
			lastWasCR = true
		case '\n':
			ok = d.emitKey(keyEnter)
		case 0x7f, 0x08:
			ok = d.emitKey(keyBackspace)
		case 0x01:
			ok = d.emitKey(keyCtrlA)
		case 0x05:
			ok = d.emitKey(keyCtrlE)
		case 0x15:
			ok = d.emitKey(keyCtrlU)
		case 0x0b:
			ok = d.emitKey(keyCtrlK)
		case 0x17:
			ok = d.emitKey(keyCtrlW)
		case 0x03:
			ok = d.emitKey(keyCtrlC)
		case 0x04:
			ok = d.emitKey(keyCtrlD)
		case 0x0c:
			ok = d.emitKey(keyCtrlL)
		case 0x09:
			ok = d.emitKey(keyTab)
		default:
			if b < 0x20 {
				continue
			}
			if b < utf8.RuneSelf {
				ok = d.emit(keyEvent(UserSourced, key{kind: keyRune, r: rune(b)}))
				break
			}
			_ = d.br.UnreadByte()
			rn, _, err := d.br.ReadRune()
			if err != nil {
				return
			}
			if rn == utf8.RuneError {
				continue
			}
			ok = d.emit(keyEvent(UserSourced, key{kind: keyRune, r: rn}))
		}
		if !ok {
			return
		}
	}
}

func (d *keyDecoder) readEscape() bool {
	b, err := d.br.ReadByte()
	if err != nil {
		return false
	}
	switch b {
	case '[':
		return d.readCSI()
	case 'O':
		return d.readSS3()
	case 0x7f, 0x08:
		// Alt+Backspace: one kill-line event, never a plain backspace too.
		return d.emitKey(keyKillLine)
	case 'b', 'B':
		return d.emitKey(keyAltB)
	case 'f', 'F':
		return d.emitKey(keyAltF)
	}
	// A bare ESC: the byte after it is an ordinary keystroke.
	_ = d.br.UnreadByte()
	return true
}

func (d *keyDecoder) readCSI() bool {
	seq := []byte{}
	for {
		b, err := d.br.ReadByte()
		if err != nil {
			return false
		}
		seq = append(seq, b)
		if b == '~' || unicode.IsLetter(rune(b)) {
			break
		}
		if len(seq) > 8 {
			return true
		}
	}
	switch string(seq) {
	case "A":
		return d.emitKey(keyUp)
	case "B":
		return d.emitKey(keyDown)
	case "C":
		return d.emitKey(keyRight)
	case "D":
		return d.emitKey(keyLeft)
	case "H", "1~", "7~":
		return d.emitKey(keyHome)
	case "F", "4~", "8~":
		return d.emitKey(keyEnd)
	case "3~":
		return d.emitKey(keyDelete)
	case "I":
		return d.emit(focusEvent(UserSourced, true))
	case "O":
		return d.emit(focusEvent(UserSourced, false))
	}
	return true
}

func (d *keyDecoder) readSS3() bool {
	b, err := d.br.ReadByte()
	if err != nil {
		return false
	}
	switch b {
	case 'A':
		return d.emitKey(keyUp)
	case 'B':
		return d.emitKey(keyDown)
	case 'C':
		return d.emitKey(keyRight)
	case 'D':
		return d.emitKey(keyLeft)
	case 'H':
		return d.emitKey(keyHome)
	case 'F':
		return d.emitKey(keyEnd)
	}
	return true
}

package console

// lineEditor is the single-line input buffer. The cursor is a rune offset
// and always stays within [0, len(buf)].
type lineEditor struct {
	buf    []rune
	cursor int
}

func (e *lineEditor) String() string {
	return string(e.buf)
}

func (e *lineEditor) Len() int {
	return len(e.buf)
}

func (e *lineEditor) Cursor() int {
	return e.cursor
}

func (e *lineEditor) Clear() {
	e.buf = nil
	e.cursor = 0
}

// SetString replaces the buffer and puts the cursor at the end.
func (e *lineEditor) SetString(value string) {
	if value == "" {
		e.Clear()
		return
	}
	e.buf = []rune(value)
	e.cursor = len(e.buf)
}

func (e *lineEditor) clamp() {
	if e.cursor < 0 {
		e.cursor = 0
	}
	if e.cursor > len(e.buf) {
		e.cursor = len(e.buf)
	}
}

func (e *lineEditor) InsertRune(r rune) {
	e.clamp()
	e.buf = append(e.buf[:e.cursor], append([]rune{r}, e.buf[e.cursor:]...)...)
	e.cursor++
}

func (e *lineEditor) Backspace() bool {
	e.clamp()
	if e.cursor == 0 {
		return false
	}
	e.buf = append(e.buf[:e.cursor-1], e.buf[e.cursor:]...)
	e.cursor--
	return true
}

func (e *lineEditor) Delete() bool {
	e.clamp()
	if e.cursor >= len(e.buf) {
		return false
	}
	e.buf = append(e.buf[:e.cursor], e.buf[e.cursor+1:]...)
	return true
}

func (e *lineEditor) MoveLeft() bool {
	if e.cursor <= 0 {
		return false
	}
	e.cursor--
	return true
}

func (e *lineEditor) MoveRight() bool {
	if e.cursor >= len(e.buf) {
		return false
	}
	e.cursor++
	return true
}

func (e *lineEditor) MoveStart() {
	e.cursor = 0
}

func (e *lineEditor) MoveEnd() {
	e.cursor = len(e.buf)
}

func (e *lineEditor) MoveWordLeft() {
	e.clamp()
	i := e.cursor
	for i > 0 && isSpace(e.buf[i-1]) {
		i--
	}
	for i > 0 && !isSpace(e.buf[i-1]) {
		i--
	}
	e.cursor = i
}

func (e *lineEditor) MoveWordRight() {
	e.clamp()
	i := e.cursor
	for i < len(e.buf) && isSpace(e.buf[i]) {
		i++
	}
	for i < len(e.buf) && !isSpace(e.buf[i]) {
		i++
	}
	e.cursor = i
}

func (e *lineEditor) DeleteWordBackward() bool {
	e.clamp()
	if e.cursor == 0 {
		return false
	}
	start := e.cursor
	for start > 0 && isSpace(e.buf[start-1]) {
		start--
	}
	for start > 0 && !isSpace(e.buf[start-1]) {
		start--
	}
	e.buf = append(e.buf[:start], e.buf[e.cursor:]...)
	e.cursor = start
	return true
}

// KillLineEnd deletes from the cursor to the end of the buffer.
func (e *lineEditor) KillLineEnd() bool {
	e.clamp()
	if e.cursor >= len(e.buf) {
		return false
	}
	e.buf = e.buf[:e.cursor]
	return true
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

// History holds submitted lines, oldest first. The browse position is -1
// while the live line is being edited.
type History struct {
	entries []string
	index   int
	limit   int
}

// NewHistory returns an empty history keeping at most limit entries; a limit
// of zero or less keeps everything.
func NewHistory(limit int) *History {
	return &History{index: -1, limit: limit}
}

// Push appends entry and returns to the live line.
func (h *History) Push(entry string) {
	h.entries = append(h.entries, entry)
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = append([]string(nil), h.entries[len(h.entries)-h.limit:]...)
	}
	h.index = -1
}

// Older steps back one entry, stopping at the oldest. It reports false when
// there is nothing to recall.
func (h *History) Older() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.index == -1:
		h.index = len(h.entries) - 1
	case h.index > 0:
		h.index--
	}
	return h.entries[h.index], true
}

// Newer steps forward one entry. Stepping past the newest returns to the
// live line with an empty value. It reports false when not browsing.
func (h *History) Newer() (string, bool) {
	if h.index == -1 {
		return "", false
	}
	if h.index < len(h.entries)-1 {
		h.index++
		return h.entries[h.index], true
	}
	h.index = -1
	return "", true
}

// Reset stops browsing without touching the entries.
func (h *History) Reset() {
	h.index = -1
}

func (h *History) Browsing() bool {
	return h.index != -1
}

func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the recorded lines, oldest first.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}

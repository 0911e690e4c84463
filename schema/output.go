package schema

// RecordKind classifies an interpreter output record.
type RecordKind string

const (
	// RecordCommand echoes the command that produced a batch.
	RecordCommand RecordKind = "command"
	// RecordOutput is regular output, possibly ANSI coded and multi-line.
	RecordOutput RecordKind = "output"
	// RecordError is an interpreter-reported error, rendered in the error color.
	RecordError RecordKind = "error"
)

// ClearSentinel is the record content that asks the terminal to clear the screen.
const ClearSentinel = "__CLEAR__"

// OutputRecord is one unit of interpreter output.
type OutputRecord struct {
	Kind    RecordKind `json:"type"`
	Content string     `json:"content"`
}

// IsClear reports whether the record carries the clear-screen sentinel.
func (r OutputRecord) IsClear() bool {
	return r.Content == ClearSentinel
}

// Output builds an output record.
func Output(content string) OutputRecord {
	return OutputRecord{Kind: RecordOutput, Content: content}
}

// Error builds an error record.
func Error(content string) OutputRecord {
	return OutputRecord{Kind: RecordError, Content: content}
}

// Clear builds the clear-screen sentinel record.
func Clear() OutputRecord {
	return OutputRecord{Kind: RecordOutput, Content: ClearSentinel}
}

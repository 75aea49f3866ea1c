package failure

type Severity int

// Severity is scoped to the item being processed: a fatal failure ends
// work on that URL, a recoverable one may be attempted again.
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

type ClassifiedError interface {
	error
	Severity() Severity
}

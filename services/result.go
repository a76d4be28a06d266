package services

import "fmt"

// ErrorKind is the closed set of failure categories an adapter may report.
type ErrorKind string

const (
	InvalidInput      ErrorKind = "invalid_input"
	MissingCredential ErrorKind = "missing_credential"
	SourceUnavailable ErrorKind = "source_unavailable"
	NotFound          ErrorKind = "not_found"
	RateNotFound      ErrorKind = "rate_not_found"
	NoResults         ErrorKind = "no_results"
)

// IsEmptyData reports kinds that describe a well-formed response with nothing usable in it.
func (k ErrorKind) IsEmptyData() bool {
	return k == NotFound || k == RateNotFound || k == NoResults
}

// Error carries an ErrorKind through ordinary error returns.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Errorf builds an *Error with a formatted detail.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Result is the outcome of one adapter invocation: either display text or a failure.
// The zero Kind means success. PromptTokens is set by language-model adapters.
type Result struct {
	Text         string    `json:"text,omitempty"`
	Kind         ErrorKind `json:"kind,omitempty"`
	Detail       string    `json:"detail,omitempty"`
	PromptTokens int       `json:"prompt_tokens,omitempty"`
}

func Ok(text string) Result {
	return Result{Text: text}
}

func Failed(kind ErrorKind, detail string) Result {
	return Result{Kind: kind, Detail: detail}
}

// OK reports whether the adapter produced display text.
func (r Result) OK() bool {
	return r.Kind == ""
}

// FailureBody renders a failed Result as the user-facing section body.
func FailureBody(kind ErrorKind, detail string) string {
	switch {
	case kind == MissingCredential:
		return fmt.Sprintf("⚠️ Sorry, this panel is not configured (%s: %s).", kind, detail)
	case kind.IsEmptyData():
		return fmt.Sprintf("ℹ️ Nothing found for this panel (%s: %s).", kind, detail)
	case kind == InvalidInput:
		return fmt.Sprintf("⚠️ Please check your input (%s: %s).", kind, detail)
	default:
		return fmt.Sprintf("❌ Sorry, this information is unavailable right now (%s: %s).", kind, detail)
	}
}

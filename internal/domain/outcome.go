package domain

import "strings"

// EventKind identifies a successful mutating operation.
type EventKind string

const (
	EventClientCreated             EventKind = "client_created"
	EventClientUpdated             EventKind = "client_updated"
	EventClientDeleted             EventKind = "client_deleted"
	EventProcedureCreated          EventKind = "procedure_created"
	EventProcedureDeleted          EventKind = "procedure_deleted"
	EventClientAndProcedureCreated EventKind = "client_and_procedure_created"
	EventProposalCreated           EventKind = "proposal_created"
	EventMilestoneCreated          EventKind = "milestone_created"
	EventProposalLinked            EventKind = "proposal_linked"
)

// ErrorKind identifies a recoverable failure surfaced to the caller.
type ErrorKind string

const (
	ErrRutExists     ErrorKind = "rut_exists"
	ErrRutInvalid    ErrorKind = "rut_invalid"
	ErrMissingFields ErrorKind = "missing_fields"
	ErrUnknown       ErrorKind = "unknown"
)

// Outcome is the discriminated result of a mutating operation: exactly one
// of Event or Error is set. It is translated to a query parameter at the
// transport boundary and to a localized message in the CLI.
type Outcome struct {
	Event EventKind
	Error ErrorKind
}

func OK(e EventKind) Outcome      { return Outcome{Event: e} }
func Failed(e ErrorKind) Outcome  { return Outcome{Error: e} }
func (o Outcome) Succeeded() bool { return o.Error == "" }

// RedirectURL appends the outcome's result code to a destination path,
// respecting an existing query string.
func (o Outcome) RedirectURL(dest string) string {
	sep := "?"
	if strings.Contains(dest, "?") {
		sep = "&"
	}
	if o.Succeeded() {
		return dest + sep + "ok=" + string(o.Event)
	}
	return dest + sep + "error=" + string(o.Error)
}

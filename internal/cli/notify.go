package cli

import (
	"fmt"
	"io"

	"caudal/internal/cli/formatter"
	"caudal/internal/domain"
	"caudal/internal/service"
)

// Result-code messages, es-CL.
var okMessages = map[domain.EventKind]string{
	domain.EventClientCreated:             "Cliente creado exitosamente.",
	domain.EventClientUpdated:             "Cliente actualizado exitosamente.",
	domain.EventClientDeleted:             "Cliente eliminado exitosamente.",
	domain.EventProcedureCreated:          "Gestión creada exitosamente.",
	domain.EventProcedureDeleted:          "Gestión eliminada exitosamente.",
	domain.EventClientAndProcedureCreated: "Cliente y gestión creados exitosamente.",
	domain.EventProposalCreated:           "Propuesta creada exitosamente.",
	domain.EventMilestoneCreated:          "Hito creado exitosamente.",
	domain.EventProposalLinked:            "Propuesta vinculada a la gestión.",
}

var errorMessages = map[domain.ErrorKind]string{
	domain.ErrRutExists:     "RUT ya registrado.",
	domain.ErrRutInvalid:    "RUT con formato inválido.",
	domain.ErrMissingFields: "Completa los campos obligatorios.",
	domain.ErrUnknown:       "No se pudo completar la acción. Intenta nuevamente.",
}

// Message returns the localized text of an outcome. Unmapped codes fall back
// to the unknown-error message or the raw event code.
func Message(o domain.Outcome) string {
	if o.Succeeded() {
		if msg, ok := okMessages[o.Event]; ok {
			return msg
		}
		return string(o.Event)
	}
	if msg, ok := errorMessages[o.Error]; ok {
		return msg
	}
	return errorMessages[domain.ErrUnknown]
}

// Notify prints a styled outcome line: green check on success, red warning
// on failure.
func Notify(w io.Writer, o domain.Outcome) {
	if o.Succeeded() {
		fmt.Fprintf(w, "%s %s\n", formatter.StyleGreen.Render("✓"), Message(o))
		return
	}
	fmt.Fprintf(w, "%s %s\n", formatter.StyleRed.Render("⚠"), Message(o))
}

// notifyOutcome maps a service result to an outcome, prints it, and returns
// the original error so the command exits nonzero on failure.
func notifyOutcome(w io.Writer, event domain.EventKind, err error) error {
	Notify(w, service.Outcome(event, err))
	return err
}

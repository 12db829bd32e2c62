package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"caudal/internal/domain"
)

func TestMessage_CoversAllResultCodes(t *testing.T) {
	events := []domain.EventKind{
		domain.EventClientCreated, domain.EventClientUpdated, domain.EventClientDeleted,
		domain.EventProcedureCreated, domain.EventProcedureDeleted,
		domain.EventClientAndProcedureCreated,
		domain.EventProposalCreated, domain.EventMilestoneCreated, domain.EventProposalLinked,
	}
	for _, e := range events {
		msg := Message(domain.OK(e))
		assert.NotEmpty(t, msg)
		assert.NotEqual(t, string(e), msg, "event %s should have a localized message", e)
	}

	for _, k := range []domain.ErrorKind{
		domain.ErrRutExists, domain.ErrRutInvalid, domain.ErrMissingFields, domain.ErrUnknown,
	} {
		assert.NotEmpty(t, Message(domain.Failed(k)))
	}
}

func TestMessage_UnmappedErrorFallsBackToUnknown(t *testing.T) {
	assert.Equal(t,
		Message(domain.Failed(domain.ErrUnknown)),
		Message(domain.Failed(domain.ErrorKind("algo_raro"))),
	)
}

func TestNotify_Markers(t *testing.T) {
	var buf bytes.Buffer
	Notify(&buf, domain.OK(domain.EventClientCreated))
	assert.Contains(t, buf.String(), "Cliente creado exitosamente.")

	buf.Reset()
	Notify(&buf, domain.Failed(domain.ErrRutExists))
	assert.Contains(t, buf.String(), "RUT ya registrado.")
}

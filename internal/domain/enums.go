package domain

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// ValidStatuses is the canonical set of accepted procedure status strings.
var ValidStatuses = map[string]bool{
	"PENDING": true, "IN_PROGRESS": true, "DONE": true,
}

type BillingMode string

const (
	BillingHitos BillingMode = "HITOS"
	BillingHora  BillingMode = "HORA"
	BillingMixto BillingMode = "MIXTO"
)

var ValidBillingModes = map[string]bool{
	"HITOS": true, "HORA": true, "MIXTO": true,
}

type Naturaleza string

const (
	NaturalezaSubterraneo Naturaleza = "SUBTERRANEO"
	NaturalezaSuperficial Naturaleza = "SUPERFICIAL"
)

type DocumentType string

const (
	DocBoleta  DocumentType = "BOLETA"
	DocFactura DocumentType = "FACTURA"
	DocOtro    DocumentType = "OTRO"
)

// TypeCustom marks procedures built from a caller-supplied step list instead
// of a catalog template.
const TypeCustom = "CUSTOM"

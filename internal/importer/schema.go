package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// SnapshotSchema is the top-level JSON structure for a practice snapshot,
// the migration path from the previous web-based tracker.
type SnapshotSchema struct {
	Clients []ClientImport `json:"clients"`
	UFRates []UFRateImport `json:"uf_rates,omitempty"`
}

// ClientImport defines one client with its nested records.
type ClientImport struct {
	RUT        string            `json:"rut"`
	Name       string            `json:"name"`
	Alias      *string           `json:"alias,omitempty"`
	Email      *string           `json:"email,omitempty"`
	Phone      *string           `json:"phone,omitempty"`
	Notes      *string           `json:"notes,omitempty"`
	Contacts   []ContactImport   `json:"contacts,omitempty"`
	Proposals  []ProposalImport  `json:"proposals,omitempty"`
	Procedures []ProcedureImport `json:"procedures,omitempty"`
}

// ContactImport is one entry of a client's contact list.
type ContactImport struct {
	Nombre   string `json:"nombre"`
	Cargo    string `json:"cargo,omitempty"`
	Correo   string `json:"correo,omitempty"`
	Telefono string `json:"telefono,omitempty"`
}

// ProposalImport defines a proposal; Ref is a file-local handle procedures
// use to link themselves to it.
type ProposalImport struct {
	Ref         string            `json:"ref"`
	Title       string            `json:"title"`
	Description *string           `json:"description,omitempty"`
	BillingMode string            `json:"billing_mode,omitempty"`
	TotalFeeUF  *string           `json:"total_fee_uf,omitempty"`
	Notes       *string           `json:"notes,omitempty"`
	Milestones  []MilestoneImport `json:"milestones,omitempty"`
}

// MilestoneImport defines a milestone; Ref is a file-local handle steps use
// to link themselves to it.
type MilestoneImport struct {
	Ref         string  `json:"ref,omitempty"`
	Title       string  `json:"title"`
	FeeUF       *string `json:"fee_uf,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Triggered   bool    `json:"triggered,omitempty"`
	TriggeredAt *string `json:"triggered_at,omitempty"`
	Note        *string `json:"note,omitempty"`
}

// ProcedureImport defines a procedure with its checklist and child records.
type ProcedureImport struct {
	Type        string             `json:"type"`
	Title       *string            `json:"title,omitempty"`
	Status      string             `json:"status,omitempty"`
	Region      *string            `json:"region,omitempty"`
	Province    *string            `json:"province,omitempty"`
	GeneralInfo *string            `json:"general_info,omitempty"`
	Tags        []string           `json:"tags,omitempty"`
	ProposalRef *string            `json:"proposal_ref,omitempty"`
	Steps       []StepImport       `json:"steps"`
	Expenses    []ExpenseImport    `json:"expenses,omitempty"`
	Todos       []TodoImport       `json:"todos,omitempty"`
	WaterRights []WaterRightImport `json:"water_rights,omitempty"`
}

// StepImport defines one checklist step in file order.
type StepImport struct {
	Title        string  `json:"title"`
	Done         bool    `json:"done,omitempty"`
	DoneAt       *string `json:"done_at,omitempty"`
	Comment      *string `json:"comment,omitempty"`
	MilestoneRef *string `json:"milestone_ref,omitempty"`
}

// ExpenseImport defines one expense entry.
type ExpenseImport struct {
	Reason         string  `json:"reason"`
	DocumentType   string  `json:"document_type,omitempty"`
	DocumentNumber *string `json:"document_number,omitempty"`
	AmountUF       string  `json:"amount_uf"`
	Organism       *string `json:"organism,omitempty"`
	PaidAt         *string `json:"paid_at,omitempty"`
	BilledAt       *string `json:"billed_at,omitempty"`
}

// TodoImport defines one pending item.
type TodoImport struct {
	Text    string  `json:"text"`
	Done    bool    `json:"done,omitempty"`
	DueDate *string `json:"due_date,omitempty"`
}

// WaterRightImport defines one CBR inscription.
type WaterRightImport struct {
	Naturaleza string `json:"naturaleza,omitempty"`
	Foja       string `json:"foja"`
	Numero     string `json:"numero"`
	Anio       int    `json:"anio"`
	CBR        string `json:"cbr"`
}

// UFRateImport defines one UF rate entry.
type UFRateImport struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// LoadSnapshot reads and parses a snapshot JSON file.
func LoadSnapshot(path string) (*SnapshotSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var schema SnapshotSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing snapshot file: %w", err)
	}
	return &schema, nil
}

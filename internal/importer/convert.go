package importer

import (
	"time"

	"github.com/shopspring/decimal"

	"caudal/internal/domain"
)

// Snapshot is the validated, domain-typed form of a snapshot file, ready to
// be persisted. Refs stay symbolic until insertion assigns real ids.
type Snapshot struct {
	Clients []ClientBundle
	Rates   []domain.UFRate
}

type ClientBundle struct {
	Client     domain.Client
	Proposals  []ProposalBundle
	Procedures []ProcedureBundle
}

type ProposalBundle struct {
	Ref        string
	Proposal   domain.Proposal
	Milestones []MilestoneBundle
}

type MilestoneBundle struct {
	Ref       string
	Milestone domain.Milestone
}

type ProcedureBundle struct {
	ProposalRef *string
	Procedure   domain.Procedure
	Steps       []StepBundle
	Expenses    []domain.Expense
	Todos       []domain.Todo
	WaterRights []domain.WaterRight
}

type StepBundle struct {
	MilestoneRef *string
	Step         domain.Step
}

// Convert maps a schema that passed ValidateSnapshot into domain records.
// It is not a second validation pass; malformed values that slip through
// validation surface as errors here.
func Convert(s *SnapshotSchema) (*Snapshot, error) {
	out := &Snapshot{}

	for _, ci := range s.Clients {
		bundle, err := convertClient(&ci)
		if err != nil {
			return nil, err
		}
		out.Clients = append(out.Clients, *bundle)
	}

	for _, ri := range s.UFRates {
		date, err := time.Parse("2006-01-02", ri.Date)
		if err != nil {
			return nil, err
		}
		value, err := decimal.NewFromString(ri.Value)
		if err != nil {
			return nil, err
		}
		out.Rates = append(out.Rates, domain.UFRate{Date: date, Value: value})
	}

	return out, nil
}

func convertClient(ci *ClientImport) (*ClientBundle, error) {
	bundle := &ClientBundle{
		Client: domain.Client{
			RUT:   ci.RUT,
			Name:  ci.Name,
			Alias: ci.Alias,
			Email: ci.Email,
			Phone: ci.Phone,
			Notes: ci.Notes,
		},
	}

	if len(ci.Contacts) > 0 {
		list := make([]domain.Contact, 0, len(ci.Contacts))
		for _, c := range ci.Contacts {
			list = append(list, domain.Contact{
				Nombre:   c.Nombre,
				Cargo:    c.Cargo,
				Correo:   c.Correo,
				Telefono: c.Telefono,
			})
		}
		if err := bundle.Client.SetContactList(list); err != nil {
			return nil, err
		}
	}

	for _, pi := range ci.Proposals {
		pb, err := convertProposal(&pi)
		if err != nil {
			return nil, err
		}
		bundle.Proposals = append(bundle.Proposals, *pb)
	}

	for _, gi := range ci.Procedures {
		gb, err := convertProcedure(&gi)
		if err != nil {
			return nil, err
		}
		bundle.Procedures = append(bundle.Procedures, *gb)
	}

	return bundle, nil
}

func convertProposal(pi *ProposalImport) (*ProposalBundle, error) {
	mode := domain.BillingHitos
	if pi.BillingMode != "" {
		mode = domain.BillingMode(pi.BillingMode)
	}
	total, err := parseOptionalDecimal(pi.TotalFeeUF)
	if err != nil {
		return nil, err
	}

	bundle := &ProposalBundle{
		Ref: pi.Ref,
		Proposal: domain.Proposal{
			Title:       pi.Title,
			Description: pi.Description,
			BillingMode: mode,
			TotalFeeUF:  total,
			Notes:       pi.Notes,
		},
	}

	for _, mi := range pi.Milestones {
		fee, err := parseOptionalDecimal(mi.FeeUF)
		if err != nil {
			return nil, err
		}
		due, err := parseOptionalDay(mi.DueDate)
		if err != nil {
			return nil, err
		}
		triggeredAt, err := parseOptionalDay(mi.TriggeredAt)
		if err != nil {
			return nil, err
		}
		m := domain.Milestone{
			Title:       mi.Title,
			FeeUF:       fee,
			DueDate:     due,
			IsTriggered: mi.Triggered,
			TriggeredAt: triggeredAt,
			Note:        mi.Note,
		}
		// A triggered milestone without a recorded date keeps IsTriggered
		// and simply has no trigger timestamp, same as the prior tool.
		bundle.Milestones = append(bundle.Milestones, MilestoneBundle{Ref: mi.Ref, Milestone: m})
	}

	return bundle, nil
}

func convertProcedure(gi *ProcedureImport) (*ProcedureBundle, error) {
	status := domain.StatusPending
	if gi.Status != "" {
		status = domain.Status(gi.Status)
	}

	info := gi.GeneralInfo
	if len(gi.Tags) > 0 {
		base := ""
		if info != nil {
			base = *info
		}
		tagged := domain.SetTags(base, gi.Tags)
		info = &tagged
	}

	bundle := &ProcedureBundle{
		ProposalRef: gi.ProposalRef,
		Procedure: domain.Procedure{
			Type:        gi.Type,
			Title:       gi.Title,
			Region:      gi.Region,
			Province:    gi.Province,
			GeneralInfo: info,
			Status:      status,
		},
	}

	for i, si := range gi.Steps {
		doneAt, err := parseOptionalDay(si.DoneAt)
		if err != nil {
			return nil, err
		}
		bundle.Steps = append(bundle.Steps, StepBundle{
			MilestoneRef: si.MilestoneRef,
			Step: domain.Step{
				Order:   i + 1,
				Title:   si.Title,
				Done:    si.Done,
				DoneAt:  doneAt,
				Comment: si.Comment,
			},
		})
	}

	for _, ei := range gi.Expenses {
		amount, err := decimal.NewFromString(ei.AmountUF)
		if err != nil {
			return nil, err
		}
		paidAt, err := parseOptionalDay(ei.PaidAt)
		if err != nil {
			return nil, err
		}
		billedAt, err := parseOptionalDay(ei.BilledAt)
		if err != nil {
			return nil, err
		}
		docType := domain.DocOtro
		if ei.DocumentType != "" {
			docType = domain.DocumentType(ei.DocumentType)
		}
		bundle.Expenses = append(bundle.Expenses, domain.Expense{
			Reason:         ei.Reason,
			DocumentType:   docType,
			DocumentNumber: ei.DocumentNumber,
			AmountUF:       amount,
			Organism:       ei.Organism,
			PaidAt:         paidAt,
			BilledAt:       billedAt,
		})
	}

	for _, ti := range gi.Todos {
		due, err := parseOptionalDay(ti.DueDate)
		if err != nil {
			return nil, err
		}
		bundle.Todos = append(bundle.Todos, domain.Todo{
			Text:    ti.Text,
			Done:    ti.Done,
			DueDate: due,
		})
	}

	for _, wi := range gi.WaterRights {
		nat := domain.NaturalezaSubterraneo
		if wi.Naturaleza != "" {
			nat = domain.Naturaleza(wi.Naturaleza)
		}
		bundle.WaterRights = append(bundle.WaterRights, domain.WaterRight{
			Naturaleza: nat,
			Foja:       wi.Foja,
			Numero:     wi.Numero,
			Anio:       wi.Anio,
			CBR:        wi.CBR,
		})
	}

	return bundle, nil
}

func parseOptionalDecimal(raw *string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseOptionalDay(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

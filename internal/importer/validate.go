package importer

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"caudal/internal/catalog"
	"caudal/internal/domain"
)

var (
	rutPattern  = regexp.MustCompile(`^[0-9]{7,8}-[0-9kK]$`)
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

var validDocumentTypes = map[string]bool{
	"BOLETA": true, "FACTURA": true, "OTRO": true,
}

var validNaturalezas = map[string]bool{
	"SUBTERRANEO": true, "SUPERFICIAL": true,
}

// ValidateSnapshot checks a parsed snapshot and returns every problem found,
// so a migration file can be fixed in one pass instead of one error at a time.
func ValidateSnapshot(s *SnapshotSchema) []error {
	var errs []error

	if len(s.Clients) == 0 {
		errs = append(errs, fmt.Errorf("snapshot has no clients"))
	}

	seenRUT := map[string]int{}
	for i, c := range s.Clients {
		prefix := fmt.Sprintf("clients[%d]", i)
		errs = append(errs, validateClient(prefix, &c)...)
		if c.RUT != "" {
			if prev, dup := seenRUT[c.RUT]; dup {
				errs = append(errs, fmt.Errorf("%s: rut %q already used by clients[%d]", prefix, c.RUT, prev))
			}
			seenRUT[c.RUT] = i
		}
	}

	for i, r := range s.UFRates {
		prefix := fmt.Sprintf("uf_rates[%d]", i)
		errs = append(errs, validateDate(prefix+".date", r.Date)...)
		if v, err := decimal.NewFromString(r.Value); err != nil {
			errs = append(errs, fmt.Errorf("%s: value %q is not a number", prefix, r.Value))
		} else if !v.IsPositive() {
			errs = append(errs, fmt.Errorf("%s: value must be positive, got %s", prefix, r.Value))
		}
	}

	return errs
}

func validateClient(prefix string, c *ClientImport) []error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, fmt.Errorf("%s: name is required", prefix))
	}
	if c.RUT == "" {
		errs = append(errs, fmt.Errorf("%s: rut is required", prefix))
	} else if !rutPattern.MatchString(c.RUT) {
		errs = append(errs, fmt.Errorf("%s: rut %q must match NNNNNNN-D", prefix, c.RUT))
	}

	// Proposal and milestone refs are file-local handles; build the
	// resolution maps here so procedure and step links can be checked.
	proposalRefs := map[string]bool{}
	milestoneRefs := map[string]bool{}
	for j, p := range c.Proposals {
		pPrefix := fmt.Sprintf("%s.proposals[%d]", prefix, j)
		errs = append(errs, validateProposal(pPrefix, &p)...)
		if p.Ref != "" {
			if proposalRefs[p.Ref] {
				errs = append(errs, fmt.Errorf("%s: duplicate proposal ref %q", pPrefix, p.Ref))
			}
			proposalRefs[p.Ref] = true
		}
		for k, m := range p.Milestones {
			if m.Ref == "" {
				continue
			}
			if milestoneRefs[m.Ref] {
				errs = append(errs, fmt.Errorf("%s.milestones[%d]: duplicate milestone ref %q", pPrefix, k, m.Ref))
			}
			milestoneRefs[m.Ref] = true
		}
	}

	for j, g := range c.Procedures {
		gPrefix := fmt.Sprintf("%s.procedures[%d]", prefix, j)
		errs = append(errs, validateProcedure(gPrefix, &g, proposalRefs, milestoneRefs)...)
	}

	return errs
}

func validateProposal(prefix string, p *ProposalImport) []error {
	var errs []error

	if p.Ref == "" {
		errs = append(errs, fmt.Errorf("%s: ref is required", prefix))
	}
	if p.Title == "" {
		errs = append(errs, fmt.Errorf("%s: title is required", prefix))
	}
	if p.BillingMode != "" && !domain.ValidBillingModes[p.BillingMode] {
		errs = append(errs, fmt.Errorf("%s: unknown billing_mode %q", prefix, p.BillingMode))
	}
	errs = append(errs, validateDecimal(prefix+".total_fee_uf", p.TotalFeeUF)...)

	for k, m := range p.Milestones {
		mPrefix := fmt.Sprintf("%s.milestones[%d]", prefix, k)
		if m.Title == "" {
			errs = append(errs, fmt.Errorf("%s: title is required", mPrefix))
		}
		errs = append(errs, validateDecimal(mPrefix+".fee_uf", m.FeeUF)...)
		errs = append(errs, validateOptionalDate(mPrefix+".due_date", m.DueDate)...)
		errs = append(errs, validateOptionalDate(mPrefix+".triggered_at", m.TriggeredAt)...)
		if m.TriggeredAt != nil && !m.Triggered {
			errs = append(errs, fmt.Errorf("%s: triggered_at set but triggered is false", mPrefix))
		}
	}

	return errs
}

func validateProcedure(prefix string, g *ProcedureImport, proposalRefs, milestoneRefs map[string]bool) []error {
	var errs []error

	if g.Type == "" {
		errs = append(errs, fmt.Errorf("%s: type is required", prefix))
	} else if g.Type != domain.TypeCustom {
		if _, err := catalog.ByKey(g.Type); err != nil {
			errs = append(errs, fmt.Errorf("%s: unknown type %q", prefix, g.Type))
		}
	}
	if g.Status != "" && !domain.ValidStatuses[g.Status] {
		errs = append(errs, fmt.Errorf("%s: unknown status %q", prefix, g.Status))
	}
	if g.Region != nil {
		region, ok := catalog.FindRegion(*g.Region)
		if !ok {
			errs = append(errs, fmt.Errorf("%s: unknown region %q", prefix, *g.Region))
		} else if g.Province != nil && !catalog.ValidProvince(region.Name, *g.Province) {
			errs = append(errs, fmt.Errorf("%s: province %q is not in region %q", prefix, *g.Province, region.Name))
		}
	} else if g.Province != nil {
		errs = append(errs, fmt.Errorf("%s: province set without a region", prefix))
	}
	if g.ProposalRef != nil && !proposalRefs[*g.ProposalRef] {
		errs = append(errs, fmt.Errorf("%s: proposal_ref %q matches no proposal", prefix, *g.ProposalRef))
	}

	if len(g.Steps) == 0 {
		errs = append(errs, fmt.Errorf("%s: at least one step is required", prefix))
	}
	for k, st := range g.Steps {
		sPrefix := fmt.Sprintf("%s.steps[%d]", prefix, k)
		if st.Title == "" {
			errs = append(errs, fmt.Errorf("%s: title is required", sPrefix))
		}
		errs = append(errs, validateOptionalDate(sPrefix+".done_at", st.DoneAt)...)
		if st.DoneAt != nil && !st.Done {
			errs = append(errs, fmt.Errorf("%s: done_at set but done is false", sPrefix))
		}
		if st.MilestoneRef != nil && !milestoneRefs[*st.MilestoneRef] {
			errs = append(errs, fmt.Errorf("%s: milestone_ref %q matches no milestone", sPrefix, *st.MilestoneRef))
		}
	}

	for k, e := range g.Expenses {
		ePrefix := fmt.Sprintf("%s.expenses[%d]", prefix, k)
		if e.Reason == "" {
			errs = append(errs, fmt.Errorf("%s: reason is required", ePrefix))
		}
		if e.DocumentType != "" && !validDocumentTypes[e.DocumentType] {
			errs = append(errs, fmt.Errorf("%s: unknown document_type %q", ePrefix, e.DocumentType))
		}
		if v, err := decimal.NewFromString(e.AmountUF); err != nil {
			errs = append(errs, fmt.Errorf("%s: amount_uf %q is not a number", ePrefix, e.AmountUF))
		} else if v.IsNegative() {
			errs = append(errs, fmt.Errorf("%s: amount_uf must not be negative, got %s", ePrefix, e.AmountUF))
		}
		errs = append(errs, validateOptionalDate(ePrefix+".paid_at", e.PaidAt)...)
		errs = append(errs, validateOptionalDate(ePrefix+".billed_at", e.BilledAt)...)
	}

	for k, t := range g.Todos {
		tPrefix := fmt.Sprintf("%s.todos[%d]", prefix, k)
		if t.Text == "" {
			errs = append(errs, fmt.Errorf("%s: text is required", tPrefix))
		}
		errs = append(errs, validateOptionalDate(tPrefix+".due_date", t.DueDate)...)
	}

	for k, w := range g.WaterRights {
		wPrefix := fmt.Sprintf("%s.water_rights[%d]", prefix, k)
		if w.Naturaleza != "" && !validNaturalezas[w.Naturaleza] {
			errs = append(errs, fmt.Errorf("%s: unknown naturaleza %q", wPrefix, w.Naturaleza))
		}
		if w.Foja == "" || w.Numero == "" || w.Anio == 0 || w.CBR == "" {
			errs = append(errs, fmt.Errorf("%s: foja, numero, anio and cbr are all required", wPrefix))
		}
	}

	return errs
}

func validateDecimal(field string, raw *string) []error {
	if raw == nil {
		return nil
	}
	v, err := decimal.NewFromString(*raw)
	if err != nil {
		return []error{fmt.Errorf("%s: %q is not a number", field, *raw)}
	}
	if v.IsNegative() {
		return []error{fmt.Errorf("%s: must not be negative, got %s", field, *raw)}
	}
	return nil
}

func validateDate(field, raw string) []error {
	if !datePattern.MatchString(raw) {
		return []error{fmt.Errorf("%s: %q is not a date, expected YYYY-MM-DD", field, raw)}
	}
	return nil
}

func validateOptionalDate(field string, raw *string) []error {
	if raw == nil {
		return nil
	}
	return validateDate(field, *raw)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"caudal/internal/db"
	"caudal/internal/domain"
	"caudal/internal/repository"
)

type proposalService struct {
	clients    repository.ClientRepo
	procedures repository.ProcedureRepo
	proposals  repository.ProposalRepo
	milestones repository.MilestoneRepo
	ufRates    repository.UFRateRepo
	uow        db.UnitOfWork
	observer   UseCaseObserver
}

func NewProposalService(
	clients repository.ClientRepo,
	procedures repository.ProcedureRepo,
	proposals repository.ProposalRepo,
	milestones repository.MilestoneRepo,
	ufRates repository.UFRateRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) ProposalService {
	return &proposalService{
		clients:    clients,
		procedures: procedures,
		proposals:  proposals,
		milestones: milestones,
		ufRates:    ufRates,
		uow:        uow,
		observer:   useCaseObserverOrNoop(observers),
	}
}

func (s *proposalService) Create(ctx context.Context, in CreateProposalInput) (_ *domain.Proposal, err error) {
	started := time.Now()
	defer func() {
		observe(ctx, s.observer, "proposal_create", started, err, map[string]any{"client_id": in.ClientID})
	}()

	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("proposal title: %w", ErrMissingFields)
	}
	if _, err = s.clients.GetByID(ctx, in.ClientID); err != nil {
		return nil, err
	}

	mode := in.BillingMode
	if mode == "" {
		mode = domain.BillingHitos
	}
	if !domain.ValidBillingModes[string(mode)] {
		return nil, fmt.Errorf("invalid billing mode %q", mode)
	}

	now := time.Now().UTC()
	p := &domain.Proposal{
		ClientID:    in.ClientID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		BillingMode: mode,
		TotalFeeUF:  in.TotalFeeUF,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err = s.proposals.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *proposalService) GetByID(ctx context.Context, id int64) (*domain.Proposal, error) {
	return s.proposals.GetByID(ctx, id)
}

func (s *proposalService) GetDetail(ctx context.Context, id int64) (*ProposalDetail, error) {
	p, err := s.proposals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := s.clients.GetByID(ctx, p.ClientID)
	if err != nil {
		return nil, err
	}
	milestones, err := s.milestones.ListByProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	// Procedures billed under this proposal.
	procedures, err := s.procedures.ListByClient(ctx, p.ClientID)
	if err != nil {
		return nil, err
	}
	var linked []*domain.Procedure
	for _, proc := range procedures {
		if proc.ProposalID != nil && *proc.ProposalID == id {
			linked = append(linked, proc)
		}
	}
	return &ProposalDetail{Proposal: p, Client: c, Milestones: milestones, Procedures: linked}, nil
}

func (s *proposalService) List(ctx context.Context) ([]*domain.Proposal, error) {
	return s.proposals.List(ctx)
}

func (s *proposalService) ListByClient(ctx context.Context, clientID int64) ([]*domain.Proposal, error) {
	return s.proposals.ListByClient(ctx, clientID)
}

func (s *proposalService) Update(ctx context.Context, p *domain.Proposal) error {
	if !domain.ValidBillingModes[string(p.BillingMode)] {
		return fmt.Errorf("invalid billing mode %q", p.BillingMode)
	}
	p.UpdatedAt = time.Now().UTC()
	return s.proposals.Update(ctx, p)
}

// Delete removes a proposal with its milestones. Steps linked to those
// milestones and procedures billed under the proposal are unlinked, not
// deleted.
func (s *proposalService) Delete(ctx context.Context, id int64) (err error) {
	started := time.Now()
	defer func() { observe(ctx, s.observer, "proposal_delete", started, err, map[string]any{"id": id}) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		proposals := repository.NewSQLiteProposalRepo(tx)
		milestones := repository.NewSQLiteMilestoneRepo(tx)
		steps := repository.NewSQLiteStepRepo(tx)
		procedures := repository.NewSQLiteProcedureRepo(tx)

		list, txErr := milestones.ListByProposal(ctx, id)
		if txErr != nil {
			return txErr
		}
		for _, m := range list {
			if txErr := steps.UnlinkMilestone(ctx, m.ID); txErr != nil {
				return txErr
			}
		}
		if txErr := milestones.DeleteByProposal(ctx, id); txErr != nil {
			return txErr
		}
		if txErr := procedures.UnlinkProposal(ctx, id); txErr != nil {
			return txErr
		}
		return proposals.Delete(ctx, id)
	})
	return err
}

func (s *proposalService) AddMilestone(ctx context.Context, in CreateMilestoneInput) (_ *domain.Milestone, err error) {
	started := time.Now()
	defer func() {
		observe(ctx, s.observer, "milestone_create", started, err, map[string]any{"proposal_id": in.ProposalID})
	}()

	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("milestone title: %w", ErrMissingFields)
	}
	if _, err = s.proposals.GetByID(ctx, in.ProposalID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	m := &domain.Milestone{
		ProposalID: in.ProposalID,
		Title:      strings.TrimSpace(in.Title),
		FeeUF:      in.FeeUF,
		DueDate:    in.DueDate,
		Note:       in.Note,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err = s.milestones.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ListMilestones flattens milestones across proposals into the consolidated
// view. The reference date of a milestone is its trigger date once triggered,
// otherwise its due date; a month/year filter drops rows without one. Peso
// amounts use the rate effective at the reference date and stay nil when no
// rate is loaded.
func (s *proposalService) ListMilestones(ctx context.Context, f MilestoneFilter) ([]MilestoneRow, error) {
	overview, err := s.milestones.ListOverview(ctx, f.ClientID)
	if err != nil {
		return nil, err
	}

	var out []MilestoneRow
	for _, o := range overview {
		m := o.Milestone
		if f.Triggered != nil && m.IsTriggered != *f.Triggered {
			continue
		}

		ref := m.DueDate
		if m.IsTriggered {
			ref = m.TriggeredAt
		}
		if f.Month != 0 && f.Year != 0 {
			if ref == nil || ref.UTC().Year() != f.Year || int(ref.UTC().Month()) != f.Month {
				continue
			}
		}

		row := MilestoneRow{MilestoneOverview: o, ReferenceDate: ref}
		if m.FeeUF != nil && ref != nil {
			rate, rateErr := s.ufRates.GetAtOrBefore(ctx, *ref)
			switch {
			case rateErr == nil:
				clp := m.FeeUF.Mul(rate.Value).Round(0)
				row.AmountCLP = &clp
				row.Rate = rate
			case errors.Is(rateErr, repository.ErrNotFound):
				// listed without a peso amount
			default:
				return nil, rateErr
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *proposalService) UpdateMilestone(ctx context.Context, m *domain.Milestone) error {
	m.UpdatedAt = time.Now().UTC()
	return s.milestones.Update(ctx, m)
}

func (s *proposalService) DeleteMilestone(ctx context.Context, id int64) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		milestones := repository.NewSQLiteMilestoneRepo(tx)
		steps := repository.NewSQLiteStepRepo(tx)

		if err := steps.UnlinkMilestone(ctx, id); err != nil {
			return err
		}
		return milestones.Delete(ctx, id)
	})
}

// LinkToProcedure bills an existing procedure under a proposal. Both must
// belong to the same client.
func (s *proposalService) LinkToProcedure(ctx context.Context, proposalID, procedureID int64) (err error) {
	started := time.Now()
	defer func() {
		observe(ctx, s.observer, "proposal_link", started, err, map[string]any{"proposal_id": proposalID, "procedure_id": procedureID})
	}()

	prop, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return err
	}
	proc, err := s.procedures.GetByID(ctx, procedureID)
	if err != nil {
		return err
	}
	if prop.ClientID != proc.ClientID {
		return fmt.Errorf("proposal %d and procedure %d belong to different clients", proposalID, procedureID)
	}

	proc.ProposalID = &proposalID
	now := time.Now().UTC()
	proc.LastAction = now
	proc.UpdatedAt = now
	return s.procedures.Update(ctx, proc)
}

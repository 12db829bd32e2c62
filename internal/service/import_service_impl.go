package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"caudal/internal/db"
	"caudal/internal/importer"
	"caudal/internal/repository"
)

type importService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewImportService(uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *importService) ImportSnapshot(ctx context.Context, snap *importer.Snapshot) (_ *ImportStats, err error) {
	started := time.Now()
	defer func() {
		observe(ctx, s.observer, "snapshot_import", started, err, map[string]any{"clients": len(snap.Clients)})
	}()

	stats := &ImportStats{}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		for i := range snap.Clients {
			if txErr := importClient(ctx, tx, &snap.Clients[i], stats); txErr != nil {
				return txErr
			}
		}
		rates := repository.NewSQLiteUFRateRepo(tx)
		for i := range snap.Rates {
			if txErr := rates.Upsert(ctx, &snap.Rates[i]); txErr != nil {
				return txErr
			}
			stats.Rates++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func importClient(ctx context.Context, tx db.DBTX, bundle *importer.ClientBundle, stats *ImportStats) error {
	clients := repository.NewSQLiteClientRepo(tx)

	if other, err := clients.GetByRUT(ctx, bundle.Client.RUT); err == nil {
		return fmt.Errorf("rut %s already belongs to client %d: %w", other.RUT, other.ID, ErrRUTExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	now := time.Now().UTC()
	bundle.Client.CreatedAt = now
	bundle.Client.UpdatedAt = now
	if err := clients.Create(ctx, &bundle.Client); err != nil {
		return err
	}
	stats.Clients++

	proposalIDs := map[string]int64{}
	milestoneIDs := map[string]int64{}
	if err := importProposals(ctx, tx, bundle, now, proposalIDs, milestoneIDs, stats); err != nil {
		return err
	}
	return importProcedures(ctx, tx, bundle, now, proposalIDs, milestoneIDs, stats)
}

func importProposals(
	ctx context.Context,
	tx db.DBTX,
	bundle *importer.ClientBundle,
	now time.Time,
	proposalIDs, milestoneIDs map[string]int64,
	stats *ImportStats,
) error {
	proposals := repository.NewSQLiteProposalRepo(tx)
	milestones := repository.NewSQLiteMilestoneRepo(tx)

	for i := range bundle.Proposals {
		pb := &bundle.Proposals[i]
		pb.Proposal.ClientID = bundle.Client.ID
		pb.Proposal.CreatedAt = now
		pb.Proposal.UpdatedAt = now
		if err := proposals.Create(ctx, &pb.Proposal); err != nil {
			return err
		}
		proposalIDs[pb.Ref] = pb.Proposal.ID
		stats.Proposals++

		for j := range pb.Milestones {
			mb := &pb.Milestones[j]
			mb.Milestone.ProposalID = pb.Proposal.ID
			mb.Milestone.CreatedAt = now
			mb.Milestone.UpdatedAt = now
			if err := milestones.Create(ctx, &mb.Milestone); err != nil {
				return err
			}
			if mb.Ref != "" {
				milestoneIDs[mb.Ref] = mb.Milestone.ID
			}
			stats.Milestones++
		}
	}
	return nil
}

func importProcedures(
	ctx context.Context,
	tx db.DBTX,
	bundle *importer.ClientBundle,
	now time.Time,
	proposalIDs, milestoneIDs map[string]int64,
	stats *ImportStats,
) error {
	procedures := repository.NewSQLiteProcedureRepo(tx)
	steps := repository.NewSQLiteStepRepo(tx)
	expenses := repository.NewSQLiteExpenseRepo(tx)
	todos := repository.NewSQLiteTodoRepo(tx)
	waterRights := repository.NewSQLiteWaterRightRepo(tx)

	for i := range bundle.Procedures {
		gb := &bundle.Procedures[i]
		gb.Procedure.ClientID = bundle.Client.ID
		if gb.ProposalRef != nil {
			id := proposalIDs[*gb.ProposalRef]
			gb.Procedure.ProposalID = &id
		}
		gb.Procedure.LastAction = now
		gb.Procedure.CreatedAt = now
		gb.Procedure.UpdatedAt = now
		if err := procedures.Create(ctx, &gb.Procedure); err != nil {
			return err
		}
		stats.Procedures++

		for j := range gb.Steps {
			sb := &gb.Steps[j]
			sb.Step.ProcedureID = gb.Procedure.ID
			if sb.MilestoneRef != nil {
				id := milestoneIDs[*sb.MilestoneRef]
				sb.Step.MilestoneID = &id
			}
			sb.Step.CreatedAt = now
			sb.Step.UpdatedAt = now
			if err := steps.Create(ctx, &sb.Step); err != nil {
				return err
			}
			stats.Steps++
		}
		for j := range gb.Expenses {
			gb.Expenses[j].ProcedureID = gb.Procedure.ID
			gb.Expenses[j].CreatedAt = now
			if err := expenses.Create(ctx, &gb.Expenses[j]); err != nil {
				return err
			}
			stats.Expenses++
		}
		for j := range gb.Todos {
			gb.Todos[j].ProcedureID = gb.Procedure.ID
			gb.Todos[j].CreatedAt = now
			gb.Todos[j].UpdatedAt = now
			if err := todos.Create(ctx, &gb.Todos[j]); err != nil {
				return err
			}
			stats.Todos++
		}
		for j := range gb.WaterRights {
			gb.WaterRights[j].ProcedureID = gb.Procedure.ID
			gb.WaterRights[j].CreatedAt = now
			if err := waterRights.Create(ctx, &gb.WaterRights[j]); err != nil {
				return err
			}
			stats.WaterRights++
		}
	}
	return nil
}

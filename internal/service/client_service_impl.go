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

type clientService struct {
	clients    repository.ClientRepo
	procedures repository.ProcedureRepo
	proposals  repository.ProposalRepo
	uow        db.UnitOfWork
	observer   UseCaseObserver
}

func NewClientService(
	clients repository.ClientRepo,
	procedures repository.ProcedureRepo,
	proposals repository.ProposalRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) ClientService {
	return &clientService{
		clients:    clients,
		procedures: procedures,
		proposals:  proposals,
		uow:        uow,
		observer:   useCaseObserverOrNoop(observers),
	}
}

func (s *clientService) Create(ctx context.Context, in CreateClientInput) (_ *domain.Client, err error) {
	started := time.Now()
	defer func() { observe(ctx, s.observer, "client_create", started, err, map[string]any{"rut": in.RUT}) }()

	return createClient(ctx, s.clients, in)
}

func (s *clientService) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	return s.clients.GetByID(ctx, id)
}

func (s *clientService) GetDetail(ctx context.Context, id int64) (*ClientDetail, error) {
	c, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	procedures, err := s.procedures.ListByClient(ctx, id)
	if err != nil {
		return nil, err
	}
	proposals, err := s.proposals.ListByClient(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ClientDetail{Client: c, Procedures: procedures, Proposals: proposals}, nil
}

func (s *clientService) List(ctx context.Context) ([]*domain.Client, error) {
	return s.clients.List(ctx)
}

func (s *clientService) Update(ctx context.Context, in UpdateClientInput) (_ *domain.Client, err error) {
	started := time.Now()
	defer func() { observe(ctx, s.observer, "client_update", started, err, map[string]any{"id": in.ID}) }()

	c, err := s.clients.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if rut := strings.TrimSpace(in.RUT); rut != "" && rut != c.RUT {
		probe := domain.Client{RUT: rut}
		if vErr := probe.ValidateRUT(); vErr != nil {
			return nil, fmt.Errorf("%v: %w", vErr, ErrInvalidRUT)
		}
		if other, lookupErr := s.clients.GetByRUT(ctx, rut); lookupErr == nil && other.ID != c.ID {
			return nil, fmt.Errorf("rut %s: %w", rut, ErrRUTExists)
		} else if lookupErr != nil && !errors.Is(lookupErr, repository.ErrNotFound) {
			return nil, lookupErr
		}
		c.RUT = rut
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		c.Name = name
	}
	if in.Alias != nil {
		c.Alias = in.Alias
	}
	if in.Email != nil {
		c.Email = in.Email
	}
	if in.Phone != nil {
		c.Phone = in.Phone
	}
	if in.Notes != nil {
		c.Notes = in.Notes
	}
	if in.Contacts != nil {
		if cErr := c.SetContactList(in.Contacts); cErr != nil {
			return nil, cErr
		}
	}

	c.UpdatedAt = time.Now().UTC()
	if err = s.clients.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a client and everything under it. Children go first so a
// mid-way failure rolls back to an intact client.
func (s *clientService) Delete(ctx context.Context, id int64) (err error) {
	started := time.Now()
	defer func() { observe(ctx, s.observer, "client_delete", started, err, map[string]any{"id": id}) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		clients := repository.NewSQLiteClientRepo(tx)
		procedures := repository.NewSQLiteProcedureRepo(tx)
		steps := repository.NewSQLiteStepRepo(tx)
		proposals := repository.NewSQLiteProposalRepo(tx)
		milestones := repository.NewSQLiteMilestoneRepo(tx)
		expenses := repository.NewSQLiteExpenseRepo(tx)
		todos := repository.NewSQLiteTodoRepo(tx)
		waterRights := repository.NewSQLiteWaterRightRepo(tx)

		clientProcedures, err := procedures.ListByClient(ctx, id)
		if err != nil {
			return err
		}
		for _, p := range clientProcedures {
			if err := steps.DeleteByProcedure(ctx, p.ID); err != nil {
				return err
			}
			if err := expenses.DeleteByProcedure(ctx, p.ID); err != nil {
				return err
			}
			if err := todos.DeleteByProcedure(ctx, p.ID); err != nil {
				return err
			}
			if err := waterRights.DeleteByProcedure(ctx, p.ID); err != nil {
				return err
			}
			if err := procedures.Delete(ctx, p.ID); err != nil {
				return err
			}
		}

		clientProposals, err := proposals.ListByClient(ctx, id)
		if err != nil {
			return err
		}
		for _, prop := range clientProposals {
			if err := milestones.DeleteByProposal(ctx, prop.ID); err != nil {
				return err
			}
			if err := proposals.Delete(ctx, prop.ID); err != nil {
				return err
			}
		}

		return clients.Delete(ctx, id)
	})
	return err
}

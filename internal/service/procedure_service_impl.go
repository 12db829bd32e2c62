package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"caudal/internal/catalog"
	"caudal/internal/db"
	"caudal/internal/domain"
	"caudal/internal/repository"
)

type procedureService struct {
	clients     repository.ClientRepo
	procedures  repository.ProcedureRepo
	steps       repository.StepRepo
	milestones  repository.MilestoneRepo
	expenses    repository.ExpenseRepo
	todos       repository.TodoRepo
	waterRights repository.WaterRightRepo
	uow         db.UnitOfWork
	observer    UseCaseObserver
}

func NewProcedureService(
	clients repository.ClientRepo,
	procedures repository.ProcedureRepo,
	steps repository.StepRepo,
	milestones repository.MilestoneRepo,
	expenses repository.ExpenseRepo,
	todos repository.TodoRepo,
	waterRights repository.WaterRightRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) ProcedureService {
	return &procedureService{
		clients:     clients,
		procedures:  procedures,
		steps:       steps,
		milestones:  milestones,
		expenses:    expenses,
		todos:       todos,
		waterRights: waterRights,
		uow:         uow,
		observer:    useCaseObserverOrNoop(observers),
	}
}

// buildProcedure assembles the domain object for a new procedure without
// persisting it.
func buildProcedure(clientID int64, in CreateProcedureInput, now time.Time) *domain.Procedure {
	return &domain.Procedure{
		ClientID:    clientID,
		ProposalID:  in.ProposalID,
		Type:        in.TypeKey,
		Title:       in.Title,
		Region:      in.Region,
		Province:    in.Province,
		GeneralInfo: generalInfoWithTags(in.GeneralInfo, in.Tags),
		Status:      domain.StatusPending,
		LastAction:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// insertProcedure persists a procedure and its checklist through
// transaction-scoped repos.
func insertProcedure(ctx context.Context, tx db.DBTX, clientID int64, in CreateProcedureInput) (*domain.Procedure, error) {
	titles, err := stepTitlesFor(in)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := buildProcedure(clientID, in, now)

	procedures := repository.NewSQLiteProcedureRepo(tx)
	steps := repository.NewSQLiteStepRepo(tx)

	if err := procedures.Create(ctx, p); err != nil {
		return nil, err
	}
	for i, title := range titles {
		s := &domain.Step{
			ProcedureID: p.ID,
			Order:       i + 1,
			Title:       title,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := steps.Create(ctx, s); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *procedureService) Create(ctx context.Context, in CreateProcedureInput) (_ *domain.Procedure, err error) {
	started := time.Now()
	defer func() {
		observe(ctx, s.observer, "procedure_create", started, err, map[string]any{"type": in.TypeKey})
	}()

	if _, err = s.clients.GetByID(ctx, in.ClientID); err != nil {
		return nil, err
	}

	var created *domain.Procedure
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var txErr error
		created, txErr = insertProcedure(ctx, tx, in.ClientID, in)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateWithClient registers a client and its first procedure atomically:
// a failure on either side leaves neither.
func (s *procedureService) CreateWithClient(ctx context.Context, client CreateClientInput, in CreateProcedureInput) (_ *domain.Client, _ *domain.Procedure, err error) {
	started := time.Now()
	defer func() {
		observe(ctx, s.observer, "client_and_procedure_create", started, err, map[string]any{"rut": client.RUT, "type": in.TypeKey})
	}()

	var (
		createdClient    *domain.Client
		createdProcedure *domain.Procedure
	)
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		clients := repository.NewSQLiteClientRepo(tx)
		c, txErr := createClient(ctx, clients, client)
		if txErr != nil {
			return txErr
		}
		p, txErr := insertProcedure(ctx, tx, c.ID, in)
		if txErr != nil {
			return txErr
		}
		createdClient, createdProcedure = c, p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return createdClient, createdProcedure, nil
}

func (s *procedureService) GetByID(ctx context.Context, id int64) (*domain.Procedure, error) {
	return s.procedures.GetByID(ctx, id)
}

func (s *procedureService) GetDetail(ctx context.Context, id int64) (*ProcedureDetail, error) {
	p, err := s.procedures.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := s.clients.GetByID(ctx, p.ClientID)
	if err != nil {
		return nil, err
	}
	steps, err := s.steps.ListByProcedure(ctx, id)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ListByProcedure(ctx, id)
	if err != nil {
		return nil, err
	}
	todos, err := s.todos.ListByProcedure(ctx, id)
	if err != nil {
		return nil, err
	}
	waterRights, err := s.waterRights.ListByProcedure(ctx, id)
	if err != nil {
		return nil, err
	}

	states := make([]catalog.StepState, len(steps))
	for i, st := range steps {
		states[i] = catalog.StepState{Title: st.Title, Done: st.Done}
	}

	return &ProcedureDetail{
		Procedure:    p,
		Client:       c,
		Steps:        steps,
		Expenses:     expenses,
		Todos:        todos,
		WaterRights:  waterRights,
		Stages:       catalog.InferStageSet(p.Type),
		CurrentStage: catalog.CurrentStage(p.Type, states),
	}, nil
}

func (s *procedureService) List(ctx context.Context, f repository.ProcedureFilter) ([]*domain.Procedure, error) {
	return s.procedures.List(ctx, f)
}

func (s *procedureService) Update(ctx context.Context, in UpdateProcedureInput) error {
	p, err := s.procedures.GetByID(ctx, in.ID)
	if err != nil {
		return err
	}
	if in.Title != nil {
		p.Title = in.Title
	}
	if in.Region != nil {
		p.Region = in.Region
	}
	if in.Province != nil {
		p.Province = in.Province
	}
	if in.GeneralInfo != nil {
		// Re-apply the existing tag set so editing the text never drops tags.
		tags := p.Tags()
		p.GeneralInfo = generalInfoWithTags(in.GeneralInfo, tags)
	}
	if in.ProposalID != nil {
		p.ProposalID = in.ProposalID
	}
	now := time.Now().UTC()
	p.LastAction = now
	p.UpdatedAt = now
	return s.procedures.Update(ctx, p)
}

func (s *procedureService) SetTags(ctx context.Context, id int64, tags []string) error {
	p, err := s.procedures.GetByID(ctx, id)
	if err != nil {
		return err
	}
	base := ""
	if p.GeneralInfo != nil {
		base = *p.GeneralInfo
	}
	updated := domain.SetTags(base, tags)
	p.GeneralInfo = &updated
	now := time.Now().UTC()
	p.LastAction = now
	p.UpdatedAt = now
	return s.procedures.Update(ctx, p)
}

func (s *procedureService) ToggleTag(ctx context.Context, id int64, tag string) error {
	p, err := s.procedures.GetByID(ctx, id)
	if err != nil {
		return err
	}
	base := ""
	if p.GeneralInfo != nil {
		base = *p.GeneralInfo
	}
	updated := domain.ToggleTag(base, tag)
	p.GeneralInfo = &updated
	now := time.Now().UTC()
	p.LastAction = now
	p.UpdatedAt = now
	return s.procedures.Update(ctx, p)
}

// SetStatus moves the procedure between kanban states. Reaching DONE stamps
// DoneAt; leaving it clears the stamp.
func (s *procedureService) SetStatus(ctx context.Context, id int64, status domain.Status) error {
	if !domain.ValidStatuses[string(status)] {
		return fmt.Errorf("invalid status %q", status)
	}
	p, err := s.procedures.GetByID(ctx, id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	p.Status = status
	if status == domain.StatusDone {
		if p.DoneAt == nil {
			p.DoneAt = &now
		}
	} else {
		p.DoneAt = nil
	}
	p.LastAction = now
	p.UpdatedAt = now
	return s.procedures.Update(ctx, p)
}

// MoveToStage fast-forwards the checklist so the procedure lands in the given
// kanban stage: every step up to the stage's last matching step is marked
// done. In strict mode later steps are unmarked as well.
func (s *procedureService) MoveToStage(ctx context.Context, id int64, stageKey string, strict bool) (err error) {
	started := time.Now()
	defer func() {
		observe(ctx, s.observer, "procedure_move_stage", started, err, map[string]any{"id": id, "stage": stageKey})
	}()

	p, err := s.procedures.GetByID(ctx, id)
	if err != nil {
		return err
	}

	stages := catalog.InferStageSet(p.Type)
	known := false
	for _, st := range stages {
		if st.Key == stageKey {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("stage %q is not part of this procedure's stage set", stageKey)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		steps := repository.NewSQLiteStepRepo(tx)
		procedures := repository.NewSQLiteProcedureRepo(tx)

		list, txErr := steps.ListByProcedure(ctx, id)
		if txErr != nil {
			return txErr
		}
		titles := make([]string, len(list))
		for i, st := range list {
			titles[i] = st.Title
		}
		boundary := catalog.LastStepOfStage(stageKey, titles)

		now := time.Now().UTC()
		for i, st := range list {
			switch {
			case i <= boundary && !st.Done:
				st.Done = true
				st.DoneAt = &now
			case i > boundary && strict && st.Done:
				st.Done = false
				st.DoneAt = nil
			default:
				continue
			}
			st.UpdatedAt = now
			if txErr := steps.Update(ctx, st); txErr != nil {
				return txErr
			}
		}
		return procedures.TouchLastAction(ctx, id, now)
	})
	return err
}

// Delete removes a procedure and its children inside one transaction.
func (s *procedureService) Delete(ctx context.Context, id int64) (err error) {
	started := time.Now()
	defer func() { observe(ctx, s.observer, "procedure_delete", started, err, map[string]any{"id": id}) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		procedures := repository.NewSQLiteProcedureRepo(tx)
		steps := repository.NewSQLiteStepRepo(tx)
		expenses := repository.NewSQLiteExpenseRepo(tx)
		todos := repository.NewSQLiteTodoRepo(tx)
		waterRights := repository.NewSQLiteWaterRightRepo(tx)

		if txErr := steps.DeleteByProcedure(ctx, id); txErr != nil {
			return txErr
		}
		if txErr := expenses.DeleteByProcedure(ctx, id); txErr != nil {
			return txErr
		}
		if txErr := todos.DeleteByProcedure(ctx, id); txErr != nil {
			return txErr
		}
		if txErr := waterRights.DeleteByProcedure(ctx, id); txErr != nil {
			return txErr
		}
		return procedures.Delete(ctx, id)
	})
	return err
}

func (s *procedureService) AddStep(ctx context.Context, procedureID int64, title string) (*domain.Step, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("step title: %w", ErrMissingFields)
	}
	var created *domain.Step
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		steps := repository.NewSQLiteStepRepo(tx)
		procedures := repository.NewSQLiteProcedureRepo(tx)

		max, txErr := steps.MaxOrder(ctx, procedureID)
		if txErr != nil {
			return txErr
		}
		now := time.Now().UTC()
		st := &domain.Step{
			ProcedureID: procedureID,
			Order:       max + 1,
			Title:       strings.TrimSpace(title),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if txErr := steps.Create(ctx, st); txErr != nil {
			return txErr
		}
		created = st
		return procedures.TouchLastAction(ctx, procedureID, now)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SetStepDone toggles a checklist step. Completing a step linked to a
// milestone fires the milestone once; the newly triggered milestone (if any)
// is returned so the caller can announce it.
func (s *procedureService) SetStepDone(ctx context.Context, stepID int64, done bool) (_ *domain.Milestone, err error) {
	started := time.Now()
	defer func() {
		observe(ctx, s.observer, "step_set_done", started, err, map[string]any{"step_id": stepID, "done": done})
	}()

	var triggered *domain.Milestone
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		steps := repository.NewSQLiteStepRepo(tx)
		milestones := repository.NewSQLiteMilestoneRepo(tx)
		procedures := repository.NewSQLiteProcedureRepo(tx)

		st, txErr := steps.GetByID(ctx, stepID)
		if txErr != nil {
			return txErr
		}

		now := time.Now().UTC()
		st.Done = done
		if done {
			st.DoneAt = &now
		} else {
			st.DoneAt = nil
		}
		st.UpdatedAt = now
		if txErr := steps.Update(ctx, st); txErr != nil {
			return txErr
		}

		if done && st.MilestoneID != nil {
			m, txErr := milestones.GetByID(ctx, *st.MilestoneID)
			if txErr != nil {
				return txErr
			}
			if !m.IsTriggered {
				m.Trigger(now)
				m.UpdatedAt = now
				if txErr := milestones.Update(ctx, m); txErr != nil {
					return txErr
				}
				triggered = m
			}
		}

		return procedures.TouchLastAction(ctx, st.ProcedureID, now)
	})
	if err != nil {
		return nil, err
	}
	return triggered, nil
}

func (s *procedureService) CommentStep(ctx context.Context, stepID int64, comment string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		steps := repository.NewSQLiteStepRepo(tx)
		procedures := repository.NewSQLiteProcedureRepo(tx)

		st, err := steps.GetByID(ctx, stepID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if strings.TrimSpace(comment) == "" {
			st.Comment = nil
		} else {
			c := comment
			st.Comment = &c
		}
		st.UpdatedAt = now
		if err := steps.Update(ctx, st); err != nil {
			return err
		}
		return procedures.TouchLastAction(ctx, st.ProcedureID, now)
	})
}

// LinkStepMilestone binds (or with nil, unbinds) a step to a billing
// milestone. The milestone's proposal and the step's procedure must belong
// to the same client.
func (s *procedureService) LinkStepMilestone(ctx context.Context, stepID int64, milestoneID *int64) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		steps := repository.NewSQLiteStepRepo(tx)
		st, err := steps.GetByID(ctx, stepID)
		if err != nil {
			return err
		}
		if milestoneID != nil {
			milestones := repository.NewSQLiteMilestoneRepo(tx)
			ms, err := milestones.GetByID(ctx, *milestoneID)
			if err != nil {
				return err
			}
			proposals := repository.NewSQLiteProposalRepo(tx)
			prop, err := proposals.GetByID(ctx, ms.ProposalID)
			if err != nil {
				return err
			}
			procedures := repository.NewSQLiteProcedureRepo(tx)
			proc, err := procedures.GetByID(ctx, st.ProcedureID)
			if err != nil {
				return err
			}
			if prop.ClientID != proc.ClientID {
				return fmt.Errorf("milestone %d and step %d belong to different clients", *milestoneID, stepID)
			}
		}
		st.MilestoneID = milestoneID
		st.UpdatedAt = time.Now().UTC()
		return steps.Update(ctx, st)
	})
}

func (s *procedureService) AddExpense(ctx context.Context, in CreateExpenseInput) (*domain.Expense, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, fmt.Errorf("expense reason: %w", ErrMissingFields)
	}
	docType := in.DocumentType
	if docType == "" {
		docType = domain.DocOtro
	}
	var created *domain.Expense
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		expenses := repository.NewSQLiteExpenseRepo(tx)
		procedures := repository.NewSQLiteProcedureRepo(tx)

		now := time.Now().UTC()
		e := &domain.Expense{
			ProcedureID:    in.ProcedureID,
			Reason:         strings.TrimSpace(in.Reason),
			DocumentType:   docType,
			DocumentNumber: in.DocumentNumber,
			AmountUF:       in.AmountUF,
			Organism:       in.Organism,
			PaidAt:         in.PaidAt,
			BilledAt:       in.BilledAt,
			CreatedAt:      now,
		}
		if txErr := expenses.Create(ctx, e); txErr != nil {
			return txErr
		}
		created = e
		return procedures.TouchLastAction(ctx, in.ProcedureID, now)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *procedureService) DeleteExpense(ctx context.Context, expenseID int64) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		expenses := repository.NewSQLiteExpenseRepo(tx)
		procedures := repository.NewSQLiteProcedureRepo(tx)

		e, err := expenses.GetByID(ctx, expenseID)
		if err != nil {
			return err
		}
		if err := expenses.Delete(ctx, expenseID); err != nil {
			return err
		}
		return procedures.TouchLastAction(ctx, e.ProcedureID, time.Now().UTC())
	})
}

func (s *procedureService) AddTodo(ctx context.Context, procedureID int64, text string, dueDate *time.Time) (*domain.Todo, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("todo text: %w", ErrMissingFields)
	}
	var created *domain.Todo
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		todos := repository.NewSQLiteTodoRepo(tx)
		procedures := repository.NewSQLiteProcedureRepo(tx)

		now := time.Now().UTC()
		todo := &domain.Todo{
			ProcedureID: procedureID,
			Text:        strings.TrimSpace(text),
			DueDate:     dueDate,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if txErr := todos.Create(ctx, todo); txErr != nil {
			return txErr
		}
		created = todo
		return procedures.TouchLastAction(ctx, procedureID, now)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *procedureService) ToggleTodo(ctx context.Context, todoID int64) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		todos := repository.NewSQLiteTodoRepo(tx)
		procedures := repository.NewSQLiteProcedureRepo(tx)

		todo, err := todos.GetByID(ctx, todoID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		todo.Done = !todo.Done
		todo.UpdatedAt = now
		if err := todos.Update(ctx, todo); err != nil {
			return err
		}
		return procedures.TouchLastAction(ctx, todo.ProcedureID, now)
	})
}

func (s *procedureService) DeleteTodo(ctx context.Context, todoID int64) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		todos := repository.NewSQLiteTodoRepo(tx)
		procedures := repository.NewSQLiteProcedureRepo(tx)

		todo, err := todos.GetByID(ctx, todoID)
		if err != nil {
			return err
		}
		if err := todos.Delete(ctx, todoID); err != nil {
			return err
		}
		return procedures.TouchLastAction(ctx, todo.ProcedureID, time.Now().UTC())
	})
}

// AddWaterRight records a CBR inscription. Entries missing any inscription
// field are silently dropped, mirroring how incomplete rows are skipped at
// intake.
func (s *procedureService) AddWaterRight(ctx context.Context, in CreateWaterRightInput) (*domain.WaterRight, error) {
	naturaleza := in.Naturaleza
	if naturaleza == "" {
		naturaleza = domain.NaturalezaSubterraneo
	}
	w := &domain.WaterRight{
		ProcedureID: in.ProcedureID,
		Naturaleza:  naturaleza,
		Foja:        strings.TrimSpace(in.Foja),
		Numero:      strings.TrimSpace(in.Numero),
		Anio:        in.Anio,
		CBR:         strings.TrimSpace(in.CBR),
		CreatedAt:   time.Now().UTC(),
	}
	if !w.Complete() {
		return nil, nil
	}
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		waterRights := repository.NewSQLiteWaterRightRepo(tx)
		procedures := repository.NewSQLiteProcedureRepo(tx)

		if txErr := waterRights.Create(ctx, w); txErr != nil {
			return txErr
		}
		return procedures.TouchLastAction(ctx, in.ProcedureID, w.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (s *procedureService) DeleteWaterRight(ctx context.Context, waterRightID int64) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		waterRights := repository.NewSQLiteWaterRightRepo(tx)
		procedures := repository.NewSQLiteProcedureRepo(tx)

		w, err := waterRights.GetByID(ctx, waterRightID)
		if err != nil {
			return err
		}
		if err := waterRights.Delete(ctx, waterRightID); err != nil {
			return err
		}
		return procedures.TouchLastAction(ctx, w.ProcedureID, time.Now().UTC())
	})
}

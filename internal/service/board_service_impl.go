package service

import (
	"context"
	"fmt"

	"caudal/internal/catalog"
	"caudal/internal/domain"
	"caudal/internal/repository"
)

type boardService struct {
	procedures repository.ProcedureRepo
	steps      repository.StepRepo
}

func NewBoardService(procedures repository.ProcedureRepo, steps repository.StepRepo) BoardService {
	return &boardService{procedures: procedures, steps: steps}
}

// statusColumns is the fixed column set of the estado board.
var statusColumns = []struct {
	status domain.Status
	label  string
}{
	{domain.StatusPending, "Pendiente"},
	{domain.StatusInProgress, "En curso"},
	{domain.StatusDone, "Terminada"},
}

func (s *boardService) Board(ctx context.Context, mode string, f BoardFilter) (*BoardView, error) {
	if f.Category != nil {
		if _, ok := catalog.CategoryPrefix[catalog.Category(*f.Category)]; !ok {
			return nil, fmt.Errorf("unknown category %q", *f.Category)
		}
	}
	switch mode {
	case BoardModeEstado, "":
		return s.estadoBoard(ctx, f)
	case BoardModeEtapas:
		return s.etapasBoard(ctx, f)
	default:
		return nil, fmt.Errorf("unknown board mode %q", mode)
	}
}

// cardFilter carries the board-level narrowing into a repository filter.
// An explicit type wins over the category, which contributes only its
// template-key prefix.
func (s *boardService) cardFilter(f BoardFilter) repository.ProcedureFilter {
	filter := repository.ProcedureFilter{
		ClientID: f.ClientID,
		Type:     f.Type,
		Region:   f.Region,
		Province: f.Province,
		Tags:     f.Tags,
		Order:    f.Order,
	}
	if f.Category != nil {
		prefix := catalog.CategoryPrefix[catalog.Category(*f.Category)]
		filter.TypePrefix = &prefix
	}
	return filter
}

func (s *boardService) estadoBoard(ctx context.Context, f BoardFilter) (*BoardView, error) {
	view := &BoardView{Mode: BoardModeEstado}
	for _, col := range statusColumns {
		status := col.status
		skip := f.Skip[string(status)]
		filter := s.cardFilter(f)
		filter.Status = &status
		// One extra row tells us whether another page exists.
		filter.Limit = BoardPageSize + 1
		filter.Offset = skip
		cards, err := s.procedures.ListCards(ctx, filter)
		if err != nil {
			return nil, err
		}
		hasMore := len(cards) > BoardPageSize
		if hasMore {
			cards = cards[:BoardPageSize]
		}
		view.Columns = append(view.Columns, BoardColumn{
			Key:     string(status),
			Label:   col.label,
			Cards:   cards,
			HasMore: hasMore,
		})
	}
	return view, nil
}

// etapasBoard groups one procedure type's cards by inferred stage. The stage
// of each card comes from its checklist, so all cards of the type are
// fetched and paged per column after bucketing.
func (s *boardService) etapasBoard(ctx context.Context, f BoardFilter) (*BoardView, error) {
	types, err := s.procedures.ListTypes(ctx)
	if err != nil {
		return nil, err
	}

	view := &BoardView{Mode: BoardModeEtapas, TypeTabs: types}
	typeKey := ""
	if f.Type != nil && *f.Type != "" {
		typeKey = *f.Type
	} else if len(types) > 0 {
		typeKey = types[0]
	}
	if typeKey == "" {
		return view, nil
	}

	filter := s.cardFilter(f)
	filter.Type = &typeKey
	cards, err := s.procedures.ListCards(ctx, filter)
	if err != nil {
		return nil, err
	}

	stages := catalog.InferStageSet(typeKey)
	buckets := make(map[string][]repository.ProcedureCard, len(stages))
	for _, card := range cards {
		steps, err := s.steps.ListByProcedure(ctx, card.Procedure.ID)
		if err != nil {
			return nil, err
		}
		states := make([]catalog.StepState, len(steps))
		for i, st := range steps {
			states[i] = catalog.StepState{Title: st.Title, Done: st.Done}
		}
		stage := catalog.CurrentStage(typeKey, states)
		buckets[stage] = append(buckets[stage], card)
	}

	for _, stage := range stages {
		bucket := buckets[stage.Key]
		skip := f.Skip[stage.Key]
		if skip > len(bucket) {
			skip = len(bucket)
		}
		bucket = bucket[skip:]
		hasMore := len(bucket) > BoardPageSize
		if hasMore {
			bucket = bucket[:BoardPageSize]
		}
		view.Columns = append(view.Columns, BoardColumn{
			Key:     stage.Key,
			Label:   stage.Label,
			Cards:   bucket,
			HasMore: hasMore,
		})
	}
	return view, nil
}

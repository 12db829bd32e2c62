package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"caudal/internal/catalog"
	"caudal/internal/domain"
	"caudal/internal/repository"
)

// createClient validates and inserts a client through the given repo, which
// may be transaction-scoped.
func createClient(ctx context.Context, clients repository.ClientRepo, in CreateClientInput) (*domain.Client, error) {
	if strings.TrimSpace(in.RUT) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("rut and name: %w", ErrMissingFields)
	}

	now := time.Now().UTC()
	c := &domain.Client{
		RUT:       strings.TrimSpace(in.RUT),
		Name:      strings.TrimSpace(in.Name),
		Alias:     in.Alias,
		Email:     in.Email,
		Phone:     in.Phone,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.ValidateRUT(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidRUT)
	}
	if err := c.SetContactList(in.Contacts); err != nil {
		return nil, err
	}

	if _, err := clients.GetByRUT(ctx, c.RUT); err == nil {
		return nil, fmt.Errorf("rut %s: %w", c.RUT, ErrRUTExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if err := clients.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// fallbackCustomStep seeds a custom procedure created without steps, so
// the checklist is never empty.
const fallbackCustomStep = "Definir etapas"

// stepTitlesFor resolves the checklist titles of a new procedure: the
// flattened template for catalog types, the caller's list (or the single
// fallback step) for custom ones.
func stepTitlesFor(in CreateProcedureInput) ([]string, error) {
	if in.TypeKey == domain.TypeCustom {
		var titles []string
		for _, t := range in.CustomSteps {
			if s := strings.TrimSpace(t); s != "" {
				titles = append(titles, s)
			}
		}
		if len(titles) == 0 {
			titles = []string{fallbackCustomStep}
		}
		return titles, nil
	}

	tpl, err := catalog.ByKey(in.TypeKey)
	if err != nil {
		return nil, err
	}
	return tpl.Flatten(in.IncludeGroups), nil
}

// generalInfoWithTags folds the requested tag set into the general info text.
func generalInfoWithTags(info *string, tags []string) *string {
	if len(tags) == 0 {
		return info
	}
	base := ""
	if info != nil {
		base = *info
	}
	tagged := domain.SetTags(base, tags)
	return &tagged
}

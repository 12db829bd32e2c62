package domain

import (
	"strings"
	"time"
)

// Procedure is a tracked case (gestión) for a client, composed of ordered
// checklist steps. Type is either a catalog template key or TypeCustom.
type Procedure struct {
	ID          int64
	ClientID    int64
	ProposalID  *int64
	Type        string
	Title       *string
	Region      *string
	Province    *string
	GeneralInfo *string
	Status      Status
	DoneAt      *time.Time
	LastAction  time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DisplayTitle returns the explicit title when present, otherwise the first
// non-tag line of the general info, otherwise "Gestión s/n".
func (p *Procedure) DisplayTitle() string {
	if p.Title != nil && strings.TrimSpace(*p.Title) != "" {
		return strings.TrimSpace(*p.Title)
	}
	if p.GeneralInfo != nil {
		for _, line := range strings.Split(*p.GeneralInfo, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(strings.ToLower(line), "tags:") {
				continue
			}
			return line
		}
	}
	return "Gestión s/n"
}

// Tags returns the tag set encoded in the general info field.
func (p *Procedure) Tags() []string {
	if p.GeneralInfo == nil {
		return nil
	}
	return ExtractTags(*p.GeneralInfo)
}

type Step struct {
	ID          int64
	ProcedureID int64
	MilestoneID *int64
	Order       int
	Title       string
	Done        bool
	DoneAt      *time.Time
	Comment     *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

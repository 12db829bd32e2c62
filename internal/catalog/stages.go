package catalog

import "strings"

// Stage is one display-only kanban bucket derived from step completion.
type Stage struct {
	Key   string
	Label string
	Order int
}

type stageKeyword struct {
	key      string
	label    string
	keywords []string
}

// stageKeywords maps canonical stage keys to the substrings matched against
// step titles, in canonical order.
var stageKeywords = []stageKeyword{
	{"recopilacion", "Recopilación", []string{"Recopilación", "Recopilacion"}},
	{"redaccion", "Redacción", []string{"Redacción", "Redaccion"}},
	{"presentacion", "Presentación", []string{"Presentación", "Presentacion"}},
	{"admisibilidad", "Admisibilidad", []string{"Admisibilidad"}},
	{"publicaciones", "Publicaciones", []string{"Publicaciones"}},
	{"visita_tecnica", "Visita Técnica", []string{"Visita Técnica"}},
	{"resolucion", "Resolución", []string{"Resolución"}},
	{"cbr", "CBR", []string{"CBR", "Anotación en CBR", "Anotacion en CBR"}},
}

func fallbackStages() []Stage {
	return []Stage{
		{"inicio", "Inicio", 1},
		{"publicaciones", "Publicaciones", 2},
		{"visita_tecnica", "Visita Técnica", 3},
		{"resolucion", "Resolución", 4},
		{"cbr", "CBR", 5},
	}
}

// InferStageSet derives the ordered stage set for a template key by scanning
// its step titles (group sub-steps included) for stage keywords. Unknown keys
// and templates matching no keyword get the fixed 5-stage fallback.
func InferStageSet(typeKey string) []Stage {
	spec, ok := templatesByKey[typeKey]
	if !ok {
		return fallbackStages()
	}

	var stages []Stage
	order := 1
	for _, s := range stageKeywords {
		found := false
	blocks:
		for _, b := range spec.Blocks {
			titles := []string{b.Title}
			if b.Group {
				titles = b.Steps
			}
			for _, title := range titles {
				for _, k := range s.keywords {
					if strings.Contains(title, k) {
						found = true
						break blocks
					}
				}
			}
		}
		if found {
			stages = append(stages, Stage{Key: s.key, Label: s.label, Order: order})
			order++
		}
	}

	if len(stages) == 0 {
		return fallbackStages()
	}
	return stages
}

// StepState is the minimal step view needed for stage derivation.
type StepState struct {
	Title string
	Done  bool
}

// CurrentStage derives the procedure's kanban stage: walking the stage set in
// order, a stage is covered when every one of its keywords matches at least
// one done step title; the current stage is the last contiguously covered one.
// Scanning stops at the first uncovered stage.
func CurrentStage(typeKey string, steps []StepState) string {
	stages := InferStageSet(typeKey)
	current := "inicio"
	if len(stages) > 0 {
		current = stages[0].Key
	}

	var doneTitles []string
	for _, s := range steps {
		if s.Done {
			doneTitles = append(doneTitles, s.Title)
		}
	}

	for _, stage := range stages {
		meta, ok := stageMeta(stage.Key)
		if !ok {
			continue
		}
		covered := true
		for _, k := range meta.keywords {
			matched := false
			for _, title := range doneTitles {
				if strings.Contains(title, k) {
					matched = true
					break
				}
			}
			if !matched {
				covered = false
				break
			}
		}
		if !covered {
			break
		}
		current = stage.Key
	}
	return current
}

// LastStepOfStage returns the index of the last step title matching the given
// stage's keywords, or -1 when no title matches (stages without keyword
// metadata, like "inicio", never match).
func LastStepOfStage(stageKey string, titles []string) int {
	meta, ok := stageMeta(stageKey)
	if !ok {
		return -1
	}
	last := -1
	for i, title := range titles {
		for _, k := range meta.keywords {
			if strings.Contains(title, k) {
				last = i
				break
			}
		}
	}
	return last
}

func stageMeta(key string) (stageKeyword, bool) {
	for _, s := range stageKeywords {
		if s.key == key {
			return s, true
		}
	}
	return stageKeyword{}, false
}

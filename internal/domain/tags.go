package domain

import (
	"regexp"
	"strings"
)

// Recognized tag vocabulary.
const (
	TagDelegable = "#Delegable"
	TagPrioridad = "#Prioridad"
)

var KnownTags = []string{TagDelegable, TagPrioridad}

var (
	tagToken = regexp.MustCompile(`#[\p{L}\p{N}_-]+`)
	// Legacy encoding written by an older toggle path: a "\n\n[TAGS]: ..."
	// suffix. Still read for compatibility; never written back.
	legacyTagBlock = regexp.MustCompile(`\n\n\[TAGS\]: (.*)$`)
)

// ExtractTags returns the tag set encoded in a general-info text. The
// canonical encoding is a "Tags: #A #B" line (case-insensitive prefix);
// the legacy "[TAGS]:" suffix is honored when no canonical line exists.
func ExtractTags(text string) []string {
	if text == "" {
		return nil
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "tags:") {
			return tagToken.FindAllString(line, -1)
		}
	}
	if m := legacyTagBlock.FindStringSubmatch(text); m != nil {
		return strings.Fields(strings.TrimSpace(m[1]))
	}
	return nil
}

// SetTags rewrites the tag line of a general-info text wholesale: any
// existing canonical line or legacy block is stripped, and a single
// "Tags: ..." line is appended when the set is non-empty. Callers pass the
// full desired set; there is no merging.
func SetTags(text string, tags []string) string {
	text = legacyTagBlock.ReplaceAllString(text, "")
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "tags:") {
			continue
		}
		kept = append(kept, line)
	}
	if len(tags) > 0 {
		kept = append(kept, "Tags: "+strings.Join(tags, " "))
	}
	return strings.Join(kept, "\n")
}

// ToggleTag flips one tag in the encoded set and returns the rewritten text.
func ToggleTag(text, tag string) string {
	tags := ExtractTags(text)
	var next []string
	found := false
	for _, t := range tags {
		if t == tag {
			found = true
			continue
		}
		next = append(next, t)
	}
	if !found {
		next = append(next, tag)
	}
	return SetTags(text, next)
}

// Package onboarding models the applicant intake wizard: a fixed, strictly ordered list of
// sections where each section unlocks only after its predecessor is completed.
// The first section is split into sub-tabs that follow the same linear rule.
package onboarding

import (
	"errors"
	"slices"
	"strings"
)

// SectionID identifies a top-level wizard section.
type SectionID string

const (
	SectionDetails     SectionID = "details"
	SectionHighwayCode SectionID = "highway-code"
	SectionInterview   SectionID = "interview"
	SectionTraining    SectionID = "training"
	SectionBank        SectionID = "bank"
)

// Section pairs an ID with its display title.
type Section struct {
	ID    SectionID
	Title string
}

//nolint:gochecknoglobals // fixed declaration order of the wizard
var sections = []Section{
	{ID: SectionDetails, Title: "Personal & Experience Details"},
	{ID: SectionHighwayCode, Title: "Highway Code Test"},
	{ID: SectionInterview, Title: "Book an Interview"},
	{ID: SectionTraining, Title: "Book Rider Training"},
	{ID: SectionBank, Title: "Add Bank Details"},
}

// TabID identifies a sub-tab of the details section.
type TabID string

const (
	TabPersonal     TabID = "personal"
	TabExperience   TabID = "experience"
	TabAvailability TabID = "availability"
)

//nolint:gochecknoglobals // fixed declaration order of the details sub-tabs
var tabs = []TabID{TabPersonal, TabExperience, TabAvailability}

var (
	ErrUnknownSection = errors.New("unknown section")
	ErrUnknownTab     = errors.New("unknown tab")
	ErrSectionLocked  = errors.New("section is locked until the previous section is completed")
	ErrTabLocked      = errors.New("tab is locked until the previous tab is completed")
	ErrTabsIncomplete = errors.New("complete every tab before completing this section")
)

// Sections returns the wizard sections in declared order.
func Sections() []Section { return slices.Clone(sections) }

// Tabs returns the details sub-tabs in declared order.
func Tabs() []TabID { return slices.Clone(tabs) }

// SectionIndex returns the position of id in the declared order, or -1.
func SectionIndex(id SectionID) int {
	return slices.IndexFunc(sections, func(s Section) bool { return s.ID == id })
}

// TabIndex returns the position of id in the declared order, or -1.
func TabIndex(id TabID) int { return slices.Index(tabs, id) }

// ParseSection validates a raw section identifier (e.g. from a URL path).
func ParseSection(raw string) (SectionID, error) {
	id := SectionID(strings.TrimSpace(raw))
	if SectionIndex(id) < 0 {
		return "", ErrUnknownSection
	}
	return id, nil
}

// ParseTab validates a raw tab identifier.
func ParseTab(raw string) (TabID, error) {
	id := TabID(strings.TrimSpace(raw))
	if TabIndex(id) < 0 {
		return "", ErrUnknownTab
	}
	return id, nil
}

// TitleOf returns the display title for a section.
func TitleOf(id SectionID) string {
	if i := SectionIndex(id); i >= 0 {
		return sections[i].Title
	}
	return ""
}

// State is the progress of one applicant through the wizard.
// Completed and CompletedTabs have set semantics and are kept in declared order.
// Completed only grows.
type State struct {
	Completed     []SectionID                  `json:"completed"`
	Current       SectionID                    `json:"current"`
	CurrentTab    TabID                        `json:"current_tab"`
	CompletedTabs []TabID                      `json:"completed_tabs"`
	Answers       map[string]map[string]string `json:"answers,omitempty"`
}

// NewState returns the initial state: first section and first tab active, nothing completed.
func NewState() State {
	return State{
		Completed:     []SectionID{},
		Current:       sections[0].ID,
		CurrentTab:    tabs[0],
		CompletedTabs: []TabID{},
		Answers:       map[string]map[string]string{},
	}
}

// IsCompleted reports whether a section has been completed.
func (s *State) IsCompleted(id SectionID) bool {
	return slices.Contains(s.Completed, id)
}

// IsTabCompleted reports whether a sub-tab has been completed.
func (s *State) IsTabCompleted(id TabID) bool {
	return slices.Contains(s.CompletedTabs, id)
}

// CanExpand reports whether a section may be opened: it is first in order,
// or its immediate predecessor is completed.
func (s *State) CanExpand(id SectionID) bool {
	i := SectionIndex(id)
	switch {
	case i < 0:
		return false
	case i == 0:
		return true
	default:
		return s.IsCompleted(sections[i-1].ID)
	}
}

// CanSelectTab applies the same sequential rule to sub-tabs.
func (s *State) CanSelectTab(id TabID) bool {
	i := TabIndex(id)
	switch {
	case i < 0:
		return false
	case i == 0:
		return true
	default:
		return s.IsTabCompleted(tabs[i-1])
	}
}

// TabsComplete reports whether every sub-tab of the details section is done.
func (s *State) TabsComplete() bool {
	for _, t := range tabs {
		if !s.IsTabCompleted(t) {
			return false
		}
	}
	return true
}

// Navigate makes id the current section. Locked sections are rejected and the state is left untouched.
func (s *State) Navigate(id SectionID) error {
	if SectionIndex(id) < 0 {
		return ErrUnknownSection
	}
	if !s.CanExpand(id) {
		return ErrSectionLocked
	}
	s.Current = id
	return nil
}

// Complete marks a section completed and advances Current to the next section.
// Completing an already completed section is a no-op. The details section
// additionally requires all of its sub-tabs.
func (s *State) Complete(id SectionID) error {
	i := SectionIndex(id)
	if i < 0 {
		return ErrUnknownSection
	}
	if s.IsCompleted(id) {
		return nil
	}
	if !s.CanExpand(id) {
		return ErrSectionLocked
	}
	if id == SectionDetails && !s.TabsComplete() {
		return ErrTabsIncomplete
	}

	s.Completed = append(s.Completed, id)
	slices.SortFunc(s.Completed, func(a, b SectionID) int { return SectionIndex(a) - SectionIndex(b) })
	if i+1 < len(sections) {
		s.Current = sections[i+1].ID
	}
	return nil
}

// CompleteTab marks the current sub-tab completed and moves CurrentTab forward.
// Only the tab under the cursor can be completed.
// On the last tab the cursor stays put; the parent section is completed separately.
func (s *State) CompleteTab(id TabID) error {
	i := TabIndex(id)
	if i < 0 {
		return ErrUnknownTab
	}
	if id != s.CurrentTab {
		return ErrTabLocked
	}
	if !s.IsTabCompleted(id) {
		s.CompletedTabs = append(s.CompletedTabs, id)
		slices.SortFunc(s.CompletedTabs, func(a, b TabID) int { return TabIndex(a) - TabIndex(b) })
	}
	if i+1 < len(tabs) {
		s.CurrentTab = tabs[i+1]
	} else {
		s.CurrentTab = id
	}
	return nil
}

// SelectTab moves the tab cursor to a reachable tab (used by Back links).
func (s *State) SelectTab(id TabID) error {
	if TabIndex(id) < 0 {
		return ErrUnknownTab
	}
	if !s.CanSelectTab(id) {
		return ErrTabLocked
	}
	s.CurrentTab = id
	return nil
}

// IsFinished reports whether every section has been completed.
func (s *State) IsFinished() bool {
	return len(s.Completed) == len(sections)
}

// Progress returns completed and total section counts.
func (s *State) Progress() (int, int) {
	return len(s.Completed), len(sections)
}

// SetAnswers records the submitted values for a step, replacing earlier ones.
func (s *State) SetAnswers(step Step, values map[string]string) {
	if s.Answers == nil {
		s.Answers = map[string]map[string]string{}
	}
	s.Answers[string(step)] = values
}

// AnswersFor returns the recorded values for a step (never nil).
func (s *State) AnswersFor(step Step) map[string]string {
	if v, ok := s.Answers[string(step)]; ok && v != nil {
		return v
	}
	return map[string]string{}
}

// Normalize repairs a state decoded from storage so callers can rely on its invariants.
// Unknown entries are dropped and cursors are reset when they point at a locked step.
func (s *State) Normalize() {
	completed := make([]SectionID, 0, len(s.Completed))
	for _, sec := range sections {
		if slices.Contains(s.Completed, sec.ID) {
			completed = append(completed, sec.ID)
		}
	}
	s.Completed = completed

	doneTabs := make([]TabID, 0, len(s.CompletedTabs))
	for _, t := range tabs {
		if slices.Contains(s.CompletedTabs, t) {
			doneTabs = append(doneTabs, t)
		}
	}
	s.CompletedTabs = doneTabs

	if !s.CanExpand(s.Current) {
		s.Current = sections[0].ID
	}
	if !s.CanSelectTab(s.CurrentTab) {
		s.CurrentTab = tabs[0]
	}
	if s.Answers == nil {
		s.Answers = map[string]map[string]string{}
	}
}

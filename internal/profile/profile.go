package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"justdo/internal/analyzer"
)

// SchemaVersion tags the on-disk document. A mismatch on load discards the
// file and starts fresh; there is no migration path.
const SchemaVersion = 1

// MaxFileSize is the ceiling for the serialized profile. Save invokes the
// cleanup hook before writing when the document would exceed it.
const MaxFileSize = 10 * 1024

const dateLayout = "2006-01-02"

// Action identifies a task mutation being recorded.
type Action string

const (
	ActionAdd      Action = "add"
	ActionComplete Action = "complete"
	ActionDelete   Action = "delete"
)

// Stats holds the aggregate counters.
//
// CompletedTasks is never decremented, and TotalTasks is decremented on
// delete, so CompletedTasks can exceed TotalTasks after deleting completed
// items. That is the historical behavior and is preserved deliberately.
type Stats struct {
	TotalTasks        int    `json:"total_tasks"`
	CompletedTasks    int    `json:"completed_tasks"`
	CurrentStreak     int    `json:"current_streak"`
	LongestStreak     int    `json:"longest_streak"`
	LastCompletedDate string `json:"last_completed_date,omitempty"`
}

// CategoryStat counts tasks seen and completed for one category label.
type CategoryStat struct {
	Count     int `json:"count"`
	Completed int `json:"completed"`
}

// Recent7Days holds rolling convenience fields. MostActiveHour is the argmax
// of the all-time hourly histogram as of the last write, not a windowed
// value; the name is kept for compatibility with the on-disk schema.
type Recent7Days struct {
	TasksCompleted int  `json:"tasks_completed"`
	MostActiveHour *int `json:"most_active_hour"`
}

// Profile is the persisted rolling summary of one user's task behavior.
type Profile struct {
	Version        int                     `json:"version"`
	CreatedAt      string                  `json:"created_at"`
	LastUpdated    string                  `json:"last_updated"`
	Stats          Stats                   `json:"stats"`
	HourlyActivity [24]int                 `json:"hourly_activity"`
	TaskCategories map[string]CategoryStat `json:"task_categories,omitempty"`
	Recent7Days    Recent7Days             `json:"recent_7_days"`
}

// CleanupFunc trims a profile that has grown past MaxFileSize. The default
// policy drops the per-category detail first, since the fixed-size counters
// cannot grow unbounded.
type CleanupFunc func(*Profile)

// DropCategories is the default cleanup policy.
func DropCategories(p *Profile) {
	p.TaskCategories = nil
}

// Store owns the profile document at a fixed path. It is not safe for
// concurrent writers; last write wins, which is accepted for a single-user
// local tool.
type Store struct {
	path    string
	profile *Profile

	now     func() time.Time
	cleanup CleanupFunc
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source. Used by tests to drive streak logic.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithCleanup overrides the size-ceiling cleanup policy.
func WithCleanup(fn CleanupFunc) Option {
	return func(s *Store) { s.cleanup = fn }
}

// Open loads the profile at path, or starts a fresh one if the file is
// absent, unreadable, or carries a different schema version. Load failures
// are deliberately soft: a broken profile must never block task operations.
func Open(path string, opts ...Option) *Store {
	s := &Store{
		path:    path,
		now:     time.Now,
		cleanup: DropCategories,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.profile = s.loadOrCreate()
	return s
}

// Profile exposes the in-memory document for reads.
func (s *Store) Profile() *Profile {
	return s.profile
}

func (s *Store) loadOrCreate() *Profile {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return s.fresh()
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return s.fresh()
	}
	if p.Version != SchemaVersion {
		return s.fresh()
	}
	return &p
}

func (s *Store) fresh() *Profile {
	now := s.now()
	return &Profile{
		Version:     SchemaVersion,
		CreatedAt:   now.Format(dateLayout),
		LastUpdated: now.Format(time.RFC3339),
	}
}

// Record applies one task mutation to the in-memory profile. The change is
// not persisted until Save.
func (s *Store) Record(text string, action Action) {
	now := s.now()

	switch action {
	case ActionAdd:
		s.profile.Stats.TotalTasks++
		s.bumpCategory(text, false)

	case ActionComplete:
		s.profile.Stats.CompletedTasks++
		s.recordHourlyActivity(now.Hour())
		s.updateStreak(now)
		s.profile.Recent7Days.TasksCompleted++
		s.bumpCategory(text, true)

	case ActionDelete:
		if s.profile.Stats.TotalTasks > 0 {
			s.profile.Stats.TotalTasks--
		}
	}

	s.profile.LastUpdated = now.Format(time.RFC3339)
}

func (s *Store) bumpCategory(text string, completed bool) {
	category := string(analyzer.Categorize(text))
	if s.profile.TaskCategories == nil {
		s.profile.TaskCategories = make(map[string]CategoryStat)
	}
	stat := s.profile.TaskCategories[category]
	if completed {
		stat.Completed++
	} else {
		stat.Count++
	}
	s.profile.TaskCategories[category] = stat
}

func (s *Store) recordHourlyActivity(hour int) {
	s.profile.HourlyActivity[hour]++

	current := s.profile.Recent7Days.MostActiveHour
	if current == nil || s.profile.HourlyActivity[hour] > s.profile.HourlyActivity[*current] {
		h := hour
		s.profile.Recent7Days.MostActiveHour = &h
	}
}

// updateStreak maintains the consecutive-day counters. Multiple completions
// on the same calendar day count once; a completion on the day after the
// last recorded day extends the streak; any other gap resets it to 1.
func (s *Store) updateStreak(now time.Time) {
	today := now.Format(dateLayout)
	last := s.profile.Stats.LastCompletedDate

	if last == today {
		return
	}

	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)
	if last == yesterday {
		s.profile.Stats.CurrentStreak++
	} else {
		s.profile.Stats.CurrentStreak = 1
	}

	if s.profile.Stats.CurrentStreak > s.profile.Stats.LongestStreak {
		s.profile.Stats.LongestStreak = s.profile.Stats.CurrentStreak
	}

	s.profile.Stats.LastCompletedDate = today
}

// CompletionRate returns completed/total, or 0 when nothing has been added.
func (s *Store) CompletionRate() float64 {
	if s.profile.Stats.TotalTasks == 0 {
		return 0.0
	}
	return float64(s.profile.Stats.CompletedTasks) / float64(s.profile.Stats.TotalTasks)
}

// PeakHours returns up to topN hours with nonzero completion counts, sorted
// by count descending. Ties keep the lower hour index first.
func (s *Store) PeakHours(topN int) []int {
	type hourCount struct {
		hour  int
		count int
	}

	ranked := make([]hourCount, 0, 24)
	for hour, count := range s.profile.HourlyActivity {
		if count > 0 {
			ranked = append(ranked, hourCount{hour, count})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].count > ranked[j].count
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	hours := make([]int, len(ranked))
	for i, hc := range ranked {
		hours[i] = hc.hour
	}
	return hours
}

// topCategory returns the label with the highest combined count, or "".
func (s *Store) topCategory() string {
	best := ""
	bestCount := 0
	labels := make([]string, 0, len(s.profile.TaskCategories))
	for label := range s.profile.TaskCategories {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		stat := s.profile.TaskCategories[label]
		total := stat.Count + stat.Completed
		if total > bestCount {
			best = label
			bestCount = total
		}
	}
	return best
}

// ContextSummary builds a short bullet list of behavioral facts for model
// prompts. Returns "" when there is no data yet.
func (s *Store) ContextSummary() string {
	var parts []string

	if s.profile.Stats.TotalTasks > 0 {
		parts = append(parts, fmt.Sprintf("completion rate: %.0f%%", s.CompletionRate()*100))
	}
	if s.profile.Stats.CurrentStreak > 0 {
		parts = append(parts, fmt.Sprintf("current streak: %d day(s)", s.profile.Stats.CurrentStreak))
	}
	if peaks := s.PeakHours(2); len(peaks) > 0 {
		hours := make([]string, len(peaks))
		for i, h := range peaks {
			hours[i] = fmt.Sprintf("%d:00", h)
		}
		parts = append(parts, "most productive around "+strings.Join(hours, ", "))
	}
	if top := s.topCategory(); top != "" && top != string(analyzer.CategoryOther) {
		parts = append(parts, "most frequent category: "+top)
	}

	if len(parts) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("User profile:\n")
	for _, part := range parts {
		b.WriteString("- ")
		b.WriteString(part)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Save serializes the profile to its path, creating the parent directory if
// needed. If the document exceeds MaxFileSize the cleanup hook runs once
// before writing.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.profile, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	if len(data) > MaxFileSize && s.cleanup != nil {
		s.cleanup(s.profile)
		data, err = json.MarshalIndent(s.profile, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding profile after cleanup: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating profile directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}
	return nil
}

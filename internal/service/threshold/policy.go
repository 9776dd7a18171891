package threshold

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// Minutes is a campaign status threshold in minutes. Disabled marks a
// status that is never timed.
type Minutes int

const Disabled Minutes = -1

// DefaultMinutes is applied to statuses missing from the table. The
// value is deliberately aggressive so renamed or unexpected statuses
// still get monitored instead of silently going dark.
const DefaultMinutes Minutes = 5

func (m Minutes) Duration() time.Duration {
	return time.Duration(m) * time.Minute
}

// disabledStatusPrefixes are matched case-insensitively against the
// incoming status name; a hit disables the timer even if the exact
// table key differs (Jira truncates some status names).
var disabledStatusPrefixes = []string{
	"1: LANDER URL DELIVERY",
	"2: CREATIVE DELIVERY",
	"3: ANGLE",
	"7: MEDIABUYER HANDOUT",
}

func defaultTable() map[string]Minutes {
	return map[string]Minutes{
		"1: Lander URL delivery":         Disabled,
		"2: Creative Delivery (video, i": Disabled,
		"3: Angle (copy y headline) cre": Disabled,
		"4: Campaign creation":           1440,
		"5: Submission Review":           1440,
		"6: Live - FASE1-5":              12960,
		"7: mediabuyer handout":          Disabled,
	}
}

// Entry is one non-disabled row of the threshold table.
type Entry struct {
	Status  string
	Minutes Minutes
}

// Policy maps campaign status names to alert thresholds. Safe for
// concurrent use; the table is mutable at runtime via Update.
type Policy struct {
	mu    sync.RWMutex
	table map[string]Minutes
}

func NewPolicy() *Policy {
	return &Policy{table: defaultTable()}
}

// ThresholdFor returns the alert threshold for status, or disabled=true
// when the status is not timed. Statuses absent from the table fall
// back to DefaultMinutes.
func (p *Policy) ThresholdFor(status string) (time.Duration, bool) {
	upper := strings.ToUpper(status)
	for _, prefix := range disabledStatusPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return 0, true
		}
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	minutes, ok := p.table[status]
	if !ok {
		return DefaultMinutes.Duration(), false
	}
	if minutes == Disabled {
		return 0, true
	}

	return minutes.Duration(), false
}

// Update replaces the threshold for an already-known status, including
// replacement with Disabled. Unknown statuses are rejected as a no-op
// with a warning so a typo cannot grow the table.
func (p *Policy) Update(status string, minutes Minutes) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.table[status]; !ok {
		slog.Warn("ignoring threshold update for unknown campaign status",
			slog.String("status", status),
			slog.Int("minutes", int(minutes)),
		)
		return false
	}

	p.table[status] = minutes
	slog.Info("campaign status threshold updated",
		slog.String("status", status),
		slog.Int("minutes", int(minutes)),
	)
	return true
}

// List returns the non-disabled entries ordered by status name.
func (p *Policy) List() []Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entries := make([]Entry, 0, len(p.table))
	for status, minutes := range p.table {
		if minutes == Disabled {
			continue
		}
		entries = append(entries, Entry{Status: status, Minutes: minutes})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Status < entries[j].Status
	})

	return entries
}

package interpreter

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/polkiloo/foodbridge/internal/domain/model"
)

var clockTime = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*(am|pm)?\b`)

// Heuristic extracts a preparation time written as HH:MM with an optional AM/PM suffix.
// Times are read in loc on the day the note was posted.
type Heuristic struct {
	loc       *time.Location
	shelfLife time.Duration
}

// NewHeuristic constructs Heuristic. A nil loc means UTC.
func NewHeuristic(loc *time.Location, shelfLife time.Duration) *Heuristic {
	if loc == nil {
		loc = time.UTC
	}
	return &Heuristic{loc: loc, shelfLife: shelfLife}
}

// Interpret never fails. Notes without a recognizable time only yield a description.
func (h *Heuristic) Interpret(_ context.Context, note string, postedAt time.Time) (*model.NoteInterpretation, error) {
	out := &model.NoteInterpretation{Description: strings.TrimSpace(note)}

	hour, minute, ok := parseClock(note)
	if !ok {
		return out, nil
	}
	local := postedAt.In(h.loc)
	prepared := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, h.loc)
	// a time later than the posting refers to the previous evening
	if prepared.After(postedAt) {
		prepared = prepared.AddDate(0, 0, -1)
	}
	prepared = prepared.UTC()
	out.PreparedAt = &prepared
	if h.shelfLife > 0 {
		expires := prepared.Add(h.shelfLife)
		out.ExpiresAt = &expires
	}
	return out, nil
}

func parseClock(note string) (int, int, bool) {
	m := clockTime.FindStringSubmatch(note)
	if m == nil {
		return 0, 0, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if minute > 59 {
		return 0, 0, false
	}

	switch strings.ToLower(m[3]) {
	case "am":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return 0, 0, false
		}
	}
	return hour, minute, true
}

// Package calendar exports project milestones as iCalendar events so target
// dates can be tracked in an external calendar.
package calendar

import (
	"fmt"
	"io"
	"time"

	ical "github.com/emersion/go-ical"

	"intakr/internal/intake"
)

// WriteMilestones encodes one all-day event per milestone of the project.
func WriteMilestones(w io.Writer, projectID string, p intake.Project) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//intakr//milestone export//EN")

	now := time.Now().UTC()
	for i, m := range p.Milestones {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, fmt.Sprintf("%s-milestone-%d@intakr", projectID, i))
		event.Props.SetDateTime(ical.PropDateTimeStamp, now)
		event.Props.SetDateTime(ical.PropDateTimeStart, m.TargetDate)
		event.Props.SetDateTime(ical.PropDateTimeEnd, m.TargetDate.Add(24*time.Hour))
		event.Props.SetText(ical.PropSummary, fmt.Sprintf("%s: %s", p.Name, m.Title))
		event.Props.SetText(ical.PropDescription,
			fmt.Sprintf("%d feature(s), %s priority", len(m.FeatureIndexes), m.Priority))
		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	return nil
}

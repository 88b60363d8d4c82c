package attendance

import (
	"time"
)

// Break is one break window inside a work session. End is nil while the
// break is still open.
type Break struct {
	Start time.Time
	End   *time.Time
}

// Day is one employee's attendance record for one calendar day. At most one
// open session (CheckIn set, CheckOut nil) exists per employee per day, and
// at most one open break per open session.
type Day struct {
	SessionID  string
	EmployeeID string
	Date       string
	CheckIn    *time.Time
	CheckOut   *time.Time
	Breaks     []Break
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Working reports whether an open check-in exists.
func (d *Day) Working() bool {
	return d != nil && d.CheckIn != nil && d.CheckOut == nil
}

// OpenBreak returns the currently open break, or nil.
func (d *Day) OpenBreak() *Break {
	if d == nil || len(d.Breaks) == 0 {
		return nil
	}
	last := &d.Breaks[len(d.Breaks)-1]
	if last.End == nil {
		return last
	}
	return nil
}

// WorkedMinutes computes the accumulated worked minutes as of now, excluding
// break time. While a break is open the figure is frozen at the minute count
// accrued when the break began; after checkout it is the final total.
func (d *Day) WorkedMinutes(now time.Time) int {
	if d == nil || d.CheckIn == nil {
		return 0
	}

	end := now
	if d.CheckOut != nil {
		end = *d.CheckOut
	} else if b := d.OpenBreak(); b != nil {
		end = b.Start
	}

	worked := end.Sub(*d.CheckIn)
	for _, b := range d.Breaks {
		if b.End == nil {
			continue
		}
		worked -= b.End.Sub(b.Start)
	}

	if worked < 0 {
		return 0
	}
	return int(worked / time.Minute)
}

package course

import "time"

// Window is an ad-hoc reporting period.
type Window struct {
	Start time.Time
	End   time.Time
}

// Buckets groups courses by lifecycle bucket relative to a window.
type Buckets struct {
	Ongoing   []Course
	Planning  []Course
	Completed []Course
}

// Classify reclassifies courses into lifecycle buckets relative to the given
// window. A nil window means "all time" and delegates to Resolve. The
// explicit status flag wins, otherwise interval overlap decides; ties break
// completed > ongoing > planning. A course matches at most one bucket and a
// course whose interval ended before the window start matches none.
// PRE: window is nil or has Start before End
// POST: Each course appears in at most one bucket
func Classify(courses []Course, window *Window, now time.Time) Buckets {
	var b Buckets
	for _, c := range courses {
		if window == nil {
			switch c.Resolve(now) {
			case BucketOngoing:
				b.Ongoing = append(b.Ongoing, c)
			case BucketPlanning:
				b.Planning = append(b.Planning, c)
			case BucketCompleted:
				b.Completed = append(b.Completed, c)
			}
			continue
		}
		switch classifyInWindow(c, *window, now) {
		case BucketOngoing:
			b.Ongoing = append(b.Ongoing, c)
		case BucketPlanning:
			b.Planning = append(b.Planning, c)
		case BucketCompleted:
			b.Completed = append(b.Completed, c)
		}
	}
	return b
}

// classifyInWindow applies the window rules to a single course. The empty
// bucket "" means the course does not belong to any bucket for this window.
func classifyInWindow(c Course, w Window, now time.Time) Bucket {
	switch c.Status {
	case StatusOngoing:
		return BucketOngoing
	case StatusDraft:
		return BucketPlanning
	}

	// Completed: the course ended inside the window, or is flagged so.
	endedInWindow := !c.EndDate.IsZero() &&
		!c.EndDate.Before(w.Start) && !c.EndDate.After(w.End)
	if endedInWindow || c.Status == StatusCompleted {
		return BucketCompleted
	}

	// Ongoing: started by the window's end and still extends past it.
	if !c.StartDate.After(w.End) && (c.EndDate.IsZero() || c.EndDate.After(w.End)) {
		return BucketOngoing
	}

	// Planning: starts after the window, or starts inside it but has not
	// started yet at evaluation time.
	if c.StartDate.After(w.End) {
		return BucketPlanning
	}
	startsInWindow := !c.StartDate.Before(w.Start) && !c.StartDate.After(w.End)
	if startsInWindow && c.StartDate.After(now) {
		return BucketPlanning
	}
	return ""
}

package mockup

import (
	"github.com/apex/log"
	"github.com/fatih/color"
)

// Status is the outcome logged for every item that did not fail.
type Status string

const (
	StatusDone      Status = "DONE"
	StatusMissing   Status = "MISSING"
	StatusUndefined Status = "UNDEFINED"
)

func (s Status) tag() string {
	switch s {
	case StatusDone:
		return color.GreenString("[%s]", s)
	case StatusMissing:
		return color.RedString("[%s]", s)
	default:
		return color.YellowString("[%s]", s)
	}
}

// Stats counts the outcomes of processed items.
type Stats struct {
	Done      int64
	Missing   int64
	Undefined int64
	Failed    int64
}

// Total returns the number of processed items.
func (s Stats) Total() int64 {
	return s.Done + s.Missing + s.Undefined + s.Failed
}

func (t *Transform) report(status Status, path, template string) {
	fields := log.Fields{
		"status": string(status),
		"path":   path,
	}
	msg := status.tag() + " " + path

	switch status {
	case StatusDone:
		t.done.Add(1)
		fields["template"] = template
		msg += " " + color.HiBlackString("(%s)", template)
	case StatusMissing:
		t.missing.Add(1)
		fields["template"] = template
	case StatusUndefined:
		t.undefined.Add(1)
	}

	t.logger.WithFields(fields).Info(msg)
}

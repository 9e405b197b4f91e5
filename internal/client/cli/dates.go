package cli

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/dailyreflect/internal/models"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var dateParser = newDateParser()

func newDateParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// resolveDate turns a date answer into a DateLayout day. Empty means today,
// ISO dates pass through, and phrases like "yesterday" or "last friday" are
// resolved relative to now. Anything unrecognised is returned as typed so
// validation can reject it.
func resolveDate(in string, now time.Time) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return now.Format(models.DateLayout)
	}
	if _, err := time.Parse(models.DateLayout, in); err == nil {
		return in
	}
	r, err := dateParser.Parse(in, now)
	if err != nil || r == nil {
		return in
	}
	return r.Time.Format(models.DateLayout)
}

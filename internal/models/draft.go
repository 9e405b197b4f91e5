package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMissingField = errors.New("required field is empty")
	ErrInvalidDate  = errors.New("date must be YYYY-MM-DD")
)

// Draft is what the entry form collects before an entry exists.
type Draft struct {
	Date        string
	Gratitude   string
	Achievement string
	Improvement string
	Mood        string
}

// Validate checks the form. An empty Date is allowed and means today.
func (d Draft) Validate() error {
	if err := requireText("gratitude", d.Gratitude); err != nil {
		return err
	}
	if err := requireText("achievement", d.Achievement); err != nil {
		return err
	}
	if err := requireText("improvement", d.Improvement); err != nil {
		return err
	}
	if d.Date != "" {
		if err := validateDate(d.Date); err != nil {
			return err
		}
	}
	return nil
}

// ToReflection builds an unsynced entry from a validated draft.
func (d Draft) ToReflection(id, userID string, now time.Time) Reflection {
	date := strings.TrimSpace(d.Date)
	if date == "" {
		date = now.Format(DateLayout)
	}
	ts := now.UTC()
	return Reflection{
		ID:          id,
		Date:        date,
		Timestamp:   &ts,
		Gratitude:   strings.TrimSpace(d.Gratitude),
		Achievement: strings.TrimSpace(d.Achievement),
		Improvement: strings.TrimSpace(d.Improvement),
		Mood:        NormalizeMood(d.Mood),
		UserID:      userID,
	}
}

// Patch holds the fields an edit changes; nil means unchanged. The id and
// owner of an entry cannot be patched.
type Patch struct {
	Date        *string `json:"date,omitempty"`
	Gratitude   *string `json:"gratitude,omitempty"`
	Achievement *string `json:"achievement,omitempty"`
	Improvement *string `json:"improvement,omitempty"`
	Mood        *string `json:"mood,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Date == nil && p.Gratitude == nil && p.Achievement == nil &&
		p.Improvement == nil && p.Mood == nil
}

// Apply returns r with the patch applied. The result is validated with the
// same rules as a new entry.
func (p Patch) Apply(r Reflection) (Reflection, error) {
	if p.Date != nil {
		if err := validateDate(*p.Date); err != nil {
			return r, err
		}
		r.Date = strings.TrimSpace(*p.Date)
	}
	if p.Gratitude != nil {
		if err := requireText("gratitude", *p.Gratitude); err != nil {
			return r, err
		}
		r.Gratitude = strings.TrimSpace(*p.Gratitude)
	}
	if p.Achievement != nil {
		if err := requireText("achievement", *p.Achievement); err != nil {
			return r, err
		}
		r.Achievement = strings.TrimSpace(*p.Achievement)
	}
	if p.Improvement != nil {
		if err := requireText("improvement", *p.Improvement); err != nil {
			return r, err
		}
		r.Improvement = strings.TrimSpace(*p.Improvement)
	}
	if p.Mood != nil {
		r.Mood = NormalizeMood(*p.Mood)
	}
	return r, nil
}

func requireText(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s: %w", field, ErrMissingField)
	}
	return nil
}

func validateDate(s string) error {
	if _, err := time.Parse(DateLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("%q: %w", s, ErrInvalidDate)
	}
	return nil
}

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/errors"
)

// Tracker is a habit with a weekly schedule, or a one-off event when Schedule is 0.
type Tracker struct {
	ID                 string      `json:"id" yaml:"id" cbor:"1,keyasint"`
	Title              string      `json:"title" yaml:"title" cbor:"2,keyasint"`
	Emoji              string      `json:"emoji" yaml:"emoji" cbor:"3,keyasint"`
	Color              string      `json:"color" yaml:"color" cbor:"4,keyasint"`
	Schedule           WeekdayMask `json:"schedule" yaml:"schedule" cbor:"5,keyasint"`
	CategoryID         string      `json:"category_id" yaml:"category_id" cbor:"6,keyasint"`
	IsPinned           bool        `json:"is_pinned" yaml:"is_pinned" cbor:"7,keyasint"`
	OriginalCategoryID string      `json:"original_category_id,omitempty" yaml:"original_category_id,omitempty" cbor:"8,keyasint,omitempty"`
	CreatedAt          time.Time   `json:"created_at" yaml:"created_at" cbor:"9,keyasint"`
}

// Category groups trackers. The pinned category is reserved and only holds
// pinned trackers.
type Category struct {
	ID        string    `json:"id" yaml:"id" cbor:"1,keyasint"`
	Title     string    `json:"title" yaml:"title" cbor:"2,keyasint"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at" cbor:"3,keyasint"`
}

// TrackerRecord states that a tracker was completed on a calendar day.
// Date is always YYYY-MM-DD.
type TrackerRecord struct {
	TrackerID string `json:"tracker_id" yaml:"tracker_id" cbor:"1,keyasint"`
	Date      string `json:"date" yaml:"date" cbor:"2,keyasint"`
}

// NewTracker builds a validated tracker with the given ID.
func NewTracker(id, title, emoji, color string, schedule WeekdayMask, categoryID string, createdAt time.Time) (Tracker, error) {
	t := Tracker{
		ID:         id,
		Title:      strings.TrimSpace(title),
		Emoji:      emoji,
		Color:      strings.ToUpper(color),
		Schedule:   schedule & AllDays,
		CategoryID: categoryID,
		CreatedAt:  createdAt,
	}
	if err := t.Validate(); err != nil {
		return Tracker{}, err
	}
	return t, nil
}

// Validate checks the tracker invariants.
func (t Tracker) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: tracker id is required", errors.ErrValidation)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", errors.ErrValidation)
	}
	if len([]rune(t.Title)) > constants.DefaultMaxTitleRunes {
		return fmt.Errorf("%w: title is longer than %d characters", errors.ErrValidation, constants.DefaultMaxTitleRunes)
	}
	if !IsPaletteEmoji(t.Emoji) {
		return fmt.Errorf("%w: emoji %q is not in the emoji set", errors.ErrValidation, t.Emoji)
	}
	if !IsPaletteColor(t.Color) {
		return fmt.Errorf("%w: color %q is not in the palette", errors.ErrValidation, t.Color)
	}
	if t.CategoryID == "" {
		return fmt.Errorf("%w: category is required", errors.ErrValidation)
	}
	if t.IsPinned != (t.CategoryID == constants.PinnedCategoryID) {
		return fmt.Errorf("%w: pinned trackers must belong to the pinned category", errors.ErrValidation)
	}
	return nil
}

// HomeCategoryID is the category the tracker belongs to when not pinned.
func (t Tracker) HomeCategoryID() string {
	if t.IsPinned {
		return t.OriginalCategoryID
	}
	return t.CategoryID
}

// IsReserved reports whether the category is owned by the system.
func (c Category) IsReserved() bool {
	return c.ID == constants.PinnedCategoryID || c.ID == constants.UncategorizedCategoryID
}

// IsPinned reports whether c is the pinned category.
func (c Category) IsPinned() bool {
	return c.ID == constants.PinnedCategoryID
}

// IsPaletteColor reports whether hex is one of the fixed tracker colors.
func IsPaletteColor(hex string) bool {
	for _, c := range constants.Colors {
		if strings.EqualFold(c, hex) {
			return true
		}
	}
	return false
}

// IsPaletteEmoji reports whether e is one of the fixed tracker emojis.
func IsPaletteEmoji(e string) bool {
	for _, x := range constants.Emojis {
		if x == e {
			return true
		}
	}
	return false
}

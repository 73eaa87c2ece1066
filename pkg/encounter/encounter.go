// Package encounter models combats and the combatants taking part in them.
// A Combat owns its combatants in join order and keeps their names unique
// by passing every requested name through a naming.Resolver.
package encounter

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"initiative/pkg/naming"
)

var (
	// ErrInvalidCombat is returned when a combat fails validation.
	ErrInvalidCombat = errors.New("invalid combat")
	// ErrInvalidCombatant is returned when a join request fails validation.
	ErrInvalidCombatant = errors.New("invalid combatant")
	// ErrCombatantNotFound is returned when no combatant has the requested ID.
	ErrCombatantNotFound = errors.New("combatant not found")
)

const (
	// MaxNameLength bounds both requested and assigned names, in runes.
	MaxNameLength = 64
	// MaxJoinCount bounds a single bulk join.
	MaxJoinCount = 1000
)

// whitespaceRegex matches runs of whitespace inside a requested name.
var whitespaceRegex = regexp.MustCompile(`\s+`)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Combatant is a single participant in a combat.
type Combatant struct {
	ID         string    `json:"id"`
	CombatID   string    `json:"combat_id"`
	Name       string    `json:"name"`
	Initiative int       `json:"initiative"`
	HitPoints  int       `json:"hit_points"`
	JoinedAt   time.Time `json:"joined_at"`
}

// Combat is an encounter and its combatants, kept in join order.
type Combat struct {
	ID         string      `json:"id"`
	Name       string      `json:"name" validate:"required,max=64"`
	Round      int         `json:"round"`
	CreatedAt  time.Time   `json:"created_at"`
	Combatants []Combatant `json:"combatants"`
}

// JoinRequest describes a combatant asking to join a combat.
// Name is the candidate name; the assigned name may differ.
type JoinRequest struct {
	Name       string `validate:"required,max=64"`
	Initiative int
	HitPoints  int `validate:"gte=0"`
}

// NewCombat creates an empty combat at round 1.
func NewCombat(name string) (*Combat, error) {
	c := &Combat{
		ID:        uuid.NewString(),
		Name:      NormalizeName(name),
		Round:     1,
		CreatedAt: time.Now().UTC(),
	}

	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCombat, describe(err))
	}

	return c, nil
}

// NormalizeName trims a requested name and collapses internal whitespace
// to single spaces. Matching against existing names stays exact.
func NormalizeName(name string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(name, " "))
}

// Names returns the names of all combatants in join order.
func (c *Combat) Names() []string {
	return lo.Map(c.Combatants, func(item Combatant, _ int) string {
		return item.Name
	})
}

// Join validates req, resolves its name against the current combatants and
// appends the new combatant. Combat is not safe for concurrent use; callers
// sharing a combat must serialize Join calls.
func (c *Combat) Join(req JoinRequest, resolver *naming.Resolver) (Combatant, error) {
	req.Name = NormalizeName(req.Name)
	if err := validate.Struct(req); err != nil {
		return Combatant{}, fmt.Errorf("%w: %s", ErrInvalidCombatant, describe(err))
	}

	name := resolver.Resolve(req.Name, c.Names())
	if utf8.RuneCountInString(name) > MaxNameLength {
		return Combatant{}, fmt.Errorf("%w: assigned name %q exceeds %d characters",
			ErrInvalidCombatant, name, MaxNameLength)
	}

	combatant := Combatant{
		ID:         uuid.NewString(),
		CombatID:   c.ID,
		Name:       name,
		Initiative: req.Initiative,
		HitPoints:  req.HitPoints,
		JoinedAt:   time.Now().UTC(),
	}
	c.Combatants = append(c.Combatants, combatant)

	return combatant, nil
}

// JoinMany adds count combatants built from the same request. Each one is
// resolved against the names assigned before it, so "Goblin" three times
// yields "Goblin", "Goblin 1" and "Goblin 2" in an empty combat.
// Nothing is added if any of the joins fails.
func (c *Combat) JoinMany(req JoinRequest, count int, resolver *naming.Resolver) ([]Combatant, error) {
	if count < 1 || count > MaxJoinCount {
		return nil, fmt.Errorf("%w: count must be between 1 and %d, got %d",
			ErrInvalidCombatant, MaxJoinCount, count)
	}

	before := len(c.Combatants)
	joined := make([]Combatant, 0, count)
	for range count {
		combatant, err := c.Join(req, resolver)
		if err != nil {
			c.Combatants = c.Combatants[:before]
			return nil, err
		}
		joined = append(joined, combatant)
	}

	return joined, nil
}

// Combatant returns the combatant with the given ID.
func (c *Combat) Combatant(id string) (Combatant, error) {
	combatant, ok := lo.Find(c.Combatants, func(item Combatant) bool {
		return item.ID == id
	})
	if !ok {
		return Combatant{}, fmt.Errorf("%w: %s", ErrCombatantNotFound, id)
	}

	return combatant, nil
}

// Remove deletes the combatant with the given ID and returns it. Its name
// becomes available to later joins.
func (c *Combat) Remove(id string) (Combatant, error) {
	_, index, ok := lo.FindIndexOf(c.Combatants, func(item Combatant) bool {
		return item.ID == id
	})
	if !ok {
		return Combatant{}, fmt.Errorf("%w: %s", ErrCombatantNotFound, id)
	}

	removed := c.Combatants[index]
	c.Combatants = append(c.Combatants[:index], c.Combatants[index+1:]...)

	return removed, nil
}

// Order returns the combatants in turn order: highest initiative first,
// ties kept in join order.
func (c *Combat) Order() []Combatant {
	ordered := append([]Combatant(nil), c.Combatants...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Initiative > ordered[j].Initiative
	})

	return ordered
}

// describe flattens validator errors into one readable line.
func describe(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err.Error()
	}

	parts := lo.Map(validationErrs, func(fe validator.FieldError, _ int) string {
		if fe.Param() != "" {
			return fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s is %s", fe.Field(), fe.Tag())
	})

	return strings.Join(parts, ", ")
}

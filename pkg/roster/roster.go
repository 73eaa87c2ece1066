// Package roster reads and writes roster files: lists of combatants to add
// to a combat in one go, or the exported roster of an existing combat.
// Files are YAML or JSON, picked by extension.
package roster

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"initiative/pkg/encounter"
)

// Format is a roster file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Version is written into exported rosters.
const Version = 1

var (
	// ErrUnknownFormat is returned for unsupported extensions or format names.
	ErrUnknownFormat = errors.New("unknown roster format")
	// ErrInvalidCount is returned when an entry's count is negative or above
	// encounter.MaxJoinCount.
	ErrInvalidCount = errors.New("invalid count")
)

// Entry is one line of a roster. Count copies join with the same requested
// name; 0 means 1.
type Entry struct {
	Name       string `yaml:"name" json:"name"`
	Initiative int    `yaml:"initiative,omitempty" json:"initiative,omitempty"`
	HitPoints  int    `yaml:"hit_points,omitempty" json:"hit_points,omitempty"`
	Count      int    `yaml:"count,omitempty" json:"count,omitempty"`
}

// Request converts the entry into a join request.
func (e Entry) Request() encounter.JoinRequest {
	return encounter.JoinRequest{
		Name:       e.Name,
		Initiative: e.Initiative,
		HitPoints:  e.HitPoints,
	}
}

// Roster is the content of a roster file.
type Roster struct {
	Version    int     `yaml:"version" json:"version"`
	Combat     string  `yaml:"combat,omitempty" json:"combat,omitempty"`
	Combatants []Entry `yaml:"combatants" json:"combatants"`
}

// Total returns how many combatants a decoded roster adds.
func (r *Roster) Total() int {
	return lo.SumBy(r.Combatants, func(e Entry) int { return e.Count })
}

// ParseFormat converts a flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// Load reads a roster file.
func Load(path string) (*Roster, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}
	defer f.Close()

	return Decode(f, format)
}

// Decode parses a roster and fills in default counts.
func Decode(r io.Reader, format Format) (*Roster, error) {
	var roster Roster

	var err error
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&roster)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&roster)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}

	for i := range roster.Combatants {
		entry := &roster.Combatants[i]
		if entry.Count < 0 || entry.Count > encounter.MaxJoinCount {
			return nil, fmt.Errorf("%w: entry %d (%q) has count %d, want 0 to %d",
				ErrInvalidCount, i+1, entry.Name, entry.Count, encounter.MaxJoinCount)
		}
		if entry.Count == 0 {
			entry.Count = 1
		}
	}

	return &roster, nil
}

// FromCombat builds a roster listing the combat's combatants in join order
// under their assigned names.
func FromCombat(c *encounter.Combat) *Roster {
	return &Roster{
		Version: Version,
		Combat:  c.Name,
		Combatants: lo.Map(c.Combatants, func(item encounter.Combatant, _ int) Entry {
			return Entry{
				Name:       item.Name,
				Initiative: item.Initiative,
				HitPoints:  item.HitPoints,
			}
		}),
	}
}

// Export writes the combat's roster to w.
func Export(w io.Writer, c *encounter.Combat, format Format) error {
	roster := FromCombat(c)

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(roster); err != nil {
			return fmt.Errorf("failed to encode roster: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(roster); err != nil {
			return fmt.Errorf("failed to encode roster: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Package usecase provides application-level orchestration for CLI workflows.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/samber/lo"

	"initiative/pkg/encounter"
	"initiative/pkg/journal"
	"initiative/pkg/naming"
	"initiative/pkg/roster"
	"initiative/pkg/store"
)

// Options configures a Service.
type Options struct {
	Store *store.Store
	// JournalPath enables the join journal when non-empty.
	JournalPath string
	Ordering    naming.Ordering
	Logger      *slog.Logger
}

// Service orchestrates command workflows without Cobra dependencies.
type Service struct {
	store       *store.Store
	resolver    *naming.Resolver
	journal     *journal.Writer
	journalPath string
	log         *slog.Logger
}

// New creates a use-case service. The caller keeps ownership of the store;
// Close only releases the journal.
func New(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("usecase: store is required")
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	s := &Service{
		store:       opts.Store,
		resolver:    naming.New(opts.Ordering),
		journalPath: opts.JournalPath,
		log:         log,
	}

	if opts.JournalPath != "" {
		w, err := journal.NewWriter(opts.JournalPath)
		if err != nil {
			return nil, err
		}
		s.journal = w
	}

	return s, nil
}

// Close releases the journal writer.
func (s *Service) Close() error {
	if s.journal == nil {
		return nil
	}
	return s.journal.Close()
}

// Ordering returns the name ordering used for joins.
func (s *Service) Ordering() naming.Ordering {
	return s.resolver.Ordering()
}

// JoinedCombatant pairs a new combatant with the name it asked for.
type JoinedCombatant struct {
	Requested string
	encounter.Combatant
}

// Renamed reports whether the assigned name differs from the requested one.
func (j JoinedCombatant) Renamed() bool {
	return j.Requested != j.Name
}

// JoinRequest contains inputs for the join workflow.
type JoinRequest struct {
	CombatID   string
	Name       string
	Initiative int
	HitPoints  int
	// Count defaults to 1.
	Count int
}

// JoinExecution contains join workflow outputs.
type JoinExecution struct {
	CombatID string
	Joined   []JoinedCombatant
	Duration time.Duration
}

// RenamedCount returns how many joined combatants received a different name.
func (e JoinExecution) RenamedCount() int {
	return lo.CountBy(e.Joined, func(j JoinedCombatant) bool { return j.Renamed() })
}

// ImportRequest contains inputs for the roster import workflow.
type ImportRequest struct {
	CombatID string
	Path     string
}

// ExportRequest contains inputs for the roster export workflow.
type ExportRequest struct {
	CombatID string
	Format   roster.Format
	Output   io.Writer
}

// ResolveRequest contains inputs for a storage-free name resolution.
type ResolveRequest struct {
	Candidate string
	Siblings  []string
}

// CreateCombat creates and stores an empty combat.
func (s *Service) CreateCombat(name string) (*encounter.Combat, error) {
	c, err := encounter.NewCombat(name)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateCombat(c); err != nil {
		return nil, fmt.Errorf("failed to store combat: %w", err)
	}

	s.log.Info("combat created", "combat", c.ID, "name", c.Name)
	s.record(journal.Entry{Type: journal.TypeCreate, Combat: c.ID})

	return c, nil
}

// ListCombats returns all stored combats, oldest first.
func (s *Service) ListCombats() ([]*encounter.Combat, error) {
	return s.store.ListCombats()
}

// ShowCombat loads one combat.
func (s *Service) ShowCombat(id string) (*encounter.Combat, error) {
	return s.store.GetCombat(id)
}

// DeleteCombat removes a combat and its combatants.
func (s *Service) DeleteCombat(id string) error {
	if err := s.store.DeleteCombat(id); err != nil {
		return err
	}

	s.log.Info("combat deleted", "combat", id)
	s.record(journal.Entry{Type: journal.TypeDelete, Combat: id})

	return nil
}

// Join adds one or more combatants to a combat. Names are resolved and
// persisted in one store transaction, so concurrent joins never see a stale
// sibling list.
func (s *Service) Join(req JoinRequest) (JoinExecution, error) {
	count := req.Count
	if count == 0 {
		count = 1
	}

	start := time.Now()
	var joined []encounter.Combatant
	_, err := s.store.Update(req.CombatID, func(c *encounter.Combat) error {
		var err error
		joined, err = c.JoinMany(encounter.JoinRequest{
			Name:       req.Name,
			Initiative: req.Initiative,
			HitPoints:  req.HitPoints,
		}, count, s.resolver)
		return err
	})
	if err != nil {
		return JoinExecution{}, err
	}

	requested := encounter.NormalizeName(req.Name)
	execution := JoinExecution{
		CombatID: req.CombatID,
		Joined: lo.Map(joined, func(item encounter.Combatant, _ int) JoinedCombatant {
			return JoinedCombatant{Requested: requested, Combatant: item}
		}),
		Duration: time.Since(start),
	}
	s.recordJoins(execution)

	return execution, nil
}

// ImportRoster joins every roster entry in file order within one store
// transaction. Either the whole roster joins or nothing does.
func (s *Service) ImportRoster(req ImportRequest) (JoinExecution, error) {
	r, err := roster.Load(req.Path)
	if err != nil {
		return JoinExecution{}, err
	}

	start := time.Now()
	var joined []JoinedCombatant
	_, err = s.store.Update(req.CombatID, func(c *encounter.Combat) error {
		for i, entry := range r.Combatants {
			added, err := c.JoinMany(entry.Request(), entry.Count, s.resolver)
			if err != nil {
				return fmt.Errorf("roster entry %d: %w", i+1, err)
			}
			for _, combatant := range added {
				joined = append(joined, JoinedCombatant{
					Requested: encounter.NormalizeName(entry.Name),
					Combatant: combatant,
				})
			}
		}
		return nil
	})
	if err != nil {
		return JoinExecution{}, err
	}

	execution := JoinExecution{
		CombatID: req.CombatID,
		Joined:   joined,
		Duration: time.Since(start),
	}
	s.recordJoins(execution)

	return execution, nil
}

// Leave removes a combatant from its combat.
func (s *Service) Leave(combatID, combatantID string) (encounter.Combatant, error) {
	var removed encounter.Combatant
	_, err := s.store.Update(combatID, func(c *encounter.Combat) error {
		var err error
		removed, err = c.Remove(combatantID)
		return err
	})
	if err != nil {
		return encounter.Combatant{}, err
	}

	s.log.Info("combatant left", "combat", combatID, "name", removed.Name)
	s.record(journal.Entry{
		Type:      journal.TypeLeave,
		Combat:    combatID,
		Combatant: removed.ID,
		Assigned:  removed.Name,
	})

	return removed, nil
}

// ExportRoster writes a combat's roster to req.Output.
func (s *Service) ExportRoster(req ExportRequest) error {
	c, err := s.store.GetCombat(req.CombatID)
	if err != nil {
		return err
	}

	return roster.Export(req.Output, c, req.Format)
}

// Resolve runs the name resolver without touching storage.
func (s *Service) Resolve(req ResolveRequest) string {
	return s.resolver.Resolve(encounter.NormalizeName(req.Candidate), req.Siblings)
}

// History returns the journal entries of a combat, newest first. It
// returns nothing when the journal is disabled or not yet written.
func (s *Service) History(combatID string) ([]journal.Entry, error) {
	if s.journalPath == "" {
		return nil, nil
	}

	entries, err := journal.NewReader(s.journalPath).ForCombat(combatID)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	return entries, err
}

func (s *Service) recordJoins(execution JoinExecution) {
	for _, j := range execution.Joined {
		level := slog.LevelDebug
		if j.Renamed() {
			level = slog.LevelInfo
		}
		s.log.Log(context.Background(), level, "combatant joined",
			"combat", execution.CombatID,
			"requested", j.Requested,
			"assigned", j.Name,
			"ordering", s.resolver.Ordering().String(),
		)

		s.record(journal.Entry{
			Type:      journal.TypeJoin,
			Combat:    execution.CombatID,
			Combatant: j.ID,
			Requested: j.Requested,
			Assigned:  j.Name,
		})
	}
}

// record appends to the journal. The store change is already committed, so
// a journal failure is logged rather than returned.
func (s *Service) record(entry journal.Entry) {
	if s.journal == nil {
		return
	}

	if err := s.journal.Log(entry); err != nil {
		s.log.Warn("journal write failed", "type", entry.Type, "combat", entry.Combat, "error", err)
	}
}

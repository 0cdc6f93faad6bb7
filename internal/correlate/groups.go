package correlate

import (
	"sort"
	"sync"

	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

// IngestAction describes what happened to an ingested message.
type IngestAction string

// Ingest outcomes.
const (
	ActionAppended  IngestAction = "appended"
	ActionDuplicate IngestAction = "duplicate"
	ActionMerged    IngestAction = "merged"
)

// IngestResult reports the outcome of one correlation call.
type IngestResult struct {
	GroupKey string
	Action   IngestAction
	Matched  bool
}

// Store owns every MessageGroup. It keeps an arena of groups addressed
// by a stable key plus a reverse index from every known identifier to
// its group key, so grouping and pairing lookups are O(1).
//
// Correlation is driven by a single goroutine; the mutex exists so the
// periodic cull and read-side consumers can run between insertions.
type Store struct {
	mu       sync.RWMutex
	arena    map[string]*core.MessageGroup
	index    map[string]string
	matcher  *Matcher
	redecode RedecodeFunc
}

// NewStore creates an empty store using the given alert matcher and
// re-decode hook for multi-part merges.
func NewStore(matcher *Matcher, redecode RedecodeFunc) *Store {
	return &Store{
		arena:    make(map[string]*core.MessageGroup),
		index:    make(map[string]string),
		matcher:  matcher,
		redecode: redecode,
	}
}

// Len returns the number of groups held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.arena)
}

// GroupByIdentifier resolves a normalized identifier to its group.
func (s *Store) GroupByIdentifier(id string) (*core.MessageGroup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.index[id]
	if !ok {
		return nil, false
	}
	g, ok := s.arena[key]
	return g, ok
}

// Ingest runs one message through the correlation pipeline: resolve or
// create the owning group, fold the message in as a duplicate, a
// continuation merge, or a fresh append, stamp the alert result, and
// update the group's identifiers and counters. Messages with no
// identity fields land in a fallback group keyed by their own UID, so
// nothing is silently dropped.
func (s *Store) Ingest(msg *core.Message) IngestResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := IdentifiersFromMessage(msg)
	group := s.findGroup(ids)
	if group == nil {
		group = &core.MessageGroup{Key: groupKey(ids, msg.UID)}
		s.arena[group.Key] = group
	}

	action := ActionAppended
	target := msg

	if existing := s.findDuplicate(group, msg); existing != nil {
		existing.Duplicates++
		action = ActionDuplicate
		target = existing
	} else if existing := s.findContinuation(group, msg); existing != nil {
		Merge(existing, msg, s.redecode)
		action = ActionMerged
		target = existing
	} else {
		group.Messages = append(group.Messages, msg)
	}

	if action != ActionDuplicate {
		s.matcher.Stamp(target)
	}

	s.adoptIdentifiers(group, ids)
	if msg.Timestamp > group.LastUpdated {
		group.LastUpdated = msg.Timestamp
	}
	refreshAlertCounters(group)

	return IngestResult{GroupKey: group.Key, Action: action, Matched: target.Matched}
}

// Cull applies the eviction policy: groups paired against the snapshot
// are protected unconditionally, unpaired groups are kept newest-first
// within the remaining budget, and a paired count above the budget
// keeps everything. A nil snapshot degrades to pure oldest-first
// eviction.
func (s *Store) Cull(maxGroups int, snapshot *core.PositionSnapshot) (dropped int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.arena)
	s.arena = cullGroups(s.arena, maxGroups, snapshot)
	if dropped = before - len(s.arena); dropped > 0 {
		s.rebuildIndex()
	}
	return dropped
}

// PairAll joins every snapshot entry against the current groups.
func (s *Store) PairAll(snapshot *core.PositionSnapshot) []core.PairedAircraft {
	if snapshot == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	lookup := arenaLookup{arena: s.arena, index: s.index}
	paired := make([]core.PairedAircraft, 0, len(snapshot.Aircraft))
	for _, entry := range snapshot.Aircraft {
		paired = append(paired, Pair(entry, lookup))
	}
	return paired
}

// Groups returns the group list ordered by lastUpdated descending.
func (s *Store) Groups() []*core.MessageGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]*core.MessageGroup, 0, len(s.arena))
	for _, g := range s.arena {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].LastUpdated > groups[j].LastUpdated
	})
	return groups
}

func (s *Store) findGroup(ids core.Identifiers) *core.MessageGroup {
	for _, id := range []string{ids.Hex, ids.Flight, ids.Tail} {
		if id == "" {
			continue
		}
		if key, ok := s.index[id]; ok {
			return s.arena[key]
		}
	}
	return nil
}

func (s *Store) findDuplicate(group *core.MessageGroup, msg *core.Message) *core.Message {
	for i := len(group.Messages) - 1; i >= 0; i-- {
		if IsDuplicate(group.Messages[i], msg) {
			return group.Messages[i]
		}
	}
	return nil
}

func (s *Store) findContinuation(group *core.MessageGroup, msg *core.Message) *core.Message {
	for i := len(group.Messages) - 1; i >= 0; i-- {
		if IsContinuation(group.Messages[i], msg) {
			return group.Messages[i]
		}
	}
	return nil
}

// adoptIdentifiers records identifiers a message newly revealed.
// Identifiers already owned by another group stay with their first
// owner.
func (s *Store) adoptIdentifiers(group *core.MessageGroup, ids core.Identifiers) {
	if ids.Hex != "" && group.IDs.Hex == "" {
		group.IDs.Hex = ids.Hex
	}
	if ids.Flight != "" && group.IDs.Flight == "" {
		group.IDs.Flight = ids.Flight
	}
	if ids.Tail != "" && group.IDs.Tail == "" {
		group.IDs.Tail = ids.Tail
	}
	for _, id := range []string{group.IDs.Hex, group.IDs.Flight, group.IDs.Tail} {
		if id == "" {
			continue
		}
		if _, taken := s.index[id]; !taken {
			s.index[id] = group.Key
		}
	}
}

func (s *Store) rebuildIndex() {
	s.index = make(map[string]string, len(s.index))
	for key, g := range s.arena {
		for _, id := range []string{g.IDs.Hex, g.IDs.Flight, g.IDs.Tail} {
			if id == "" {
				continue
			}
			if _, taken := s.index[id]; !taken {
				s.index[id] = key
			}
		}
	}
}

func refreshAlertCounters(group *core.MessageGroup) {
	count := 0
	for _, m := range group.Messages {
		if m.Matched {
			count++
		}
	}
	group.AlertCount = count
	group.HasAlerts = count > 0
}

// groupKey picks the stable arena key for a new group: the highest
// priority identifier present, or the message's own UID for the
// unidentified fallback group.
func groupKey(ids core.Identifiers, uid string) string {
	switch {
	case ids.Hex != "":
		return ids.Hex
	case ids.Flight != "":
		return ids.Flight
	case ids.Tail != "":
		return ids.Tail
	default:
		return uid
	}
}

// arenaLookup adapts a raw arena+index pair to the pairing lookup,
// used by cull passes that run against a candidate arena.
type arenaLookup struct {
	arena map[string]*core.MessageGroup
	index map[string]string
}

func (l arenaLookup) GroupByIdentifier(id string) (*core.MessageGroup, bool) {
	key, ok := l.index[id]
	if !ok {
		return nil, false
	}
	g, ok := l.arena[key]
	return g, ok
}

// cullGroups is the eviction policy as a pure function from
// (arena, budget, snapshot) to the retained arena.
func cullGroups(arena map[string]*core.MessageGroup, maxGroups int, snapshot *core.PositionSnapshot) map[string]*core.MessageGroup {
	if len(arena) <= maxGroups {
		return arena
	}

	paired := pairedKeys(arena, snapshot)
	if len(paired) > maxGroups {
		// The policy never drops a currently observable aircraft,
		// even when that violates the budget.
		return arena
	}

	type aged struct {
		key         string
		lastUpdated float64
	}
	var unpaired []aged
	for key, g := range arena {
		if _, ok := paired[key]; !ok {
			unpaired = append(unpaired, aged{key, g.LastUpdated})
		}
	}
	sort.Slice(unpaired, func(i, j int) bool {
		return unpaired[i].lastUpdated < unpaired[j].lastUpdated
	})

	budget := maxGroups - len(paired)
	keep := make(map[string]*core.MessageGroup, maxGroups)
	for key := range paired {
		keep[key] = arena[key]
	}
	if budget > 0 {
		for _, a := range unpaired[len(unpaired)-budget:] {
			keep[a.key] = arena[a.key]
		}
	}
	return keep
}

// pairedKeys classifies every group as paired or unpaired against the
// snapshot. A nil snapshot pairs nothing.
func pairedKeys(arena map[string]*core.MessageGroup, snapshot *core.PositionSnapshot) map[string]struct{} {
	paired := make(map[string]struct{})
	if snapshot == nil {
		return paired
	}

	index := make(map[string]string)
	for key, g := range arena {
		for _, id := range []string{g.IDs.Hex, g.IDs.Flight, g.IDs.Tail} {
			if id == "" {
				continue
			}
			if _, taken := index[id]; !taken {
				index[id] = key
			}
		}
	}

	lookup := arenaLookup{arena: arena, index: index}
	for _, entry := range snapshot.Aircraft {
		if p := Pair(entry, lookup); p.Strategy != core.MatchNone {
			paired[p.GroupKey] = struct{}{}
		}
	}
	return paired
}

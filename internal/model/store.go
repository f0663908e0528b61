package model

import (
	"sort"
	"sync"
)

// Store is the live domain model.
//
// Thread Safety: all methods are safe for concurrent use. Mutator callbacks
// passed to Update* run with the write lock held and must not call back into
// the Store.
type Store struct {
	mu sync.RWMutex

	counters     map[int]*Counter
	pvSystems    map[int]*PvSystem
	batteries    map[int]*Battery
	chargePoints map[int]*ChargePoint

	global  GlobalData
	sources SourceSummary
	usage   UsageSummary
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

// Reset discards every entity, summary and global setting.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Store) reset() {
	s.counters = make(map[int]*Counter)
	s.pvSystems = make(map[int]*PvSystem)
	s.batteries = make(map[int]*Battery)
	s.chargePoints = make(map[int]*ChargePoint)
	s.global = GlobalData{}
	s.sources = SourceSummary{}
	s.usage = UsageSummary{}
}

// EnsureCounter creates the counter if it does not exist yet.
// It reports whether a new counter was created.
func (s *Store) EnsureCounter(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ensure(s.counters, id, newCounter)
}

// EnsurePvSystem creates the PV system if it does not exist yet.
func (s *Store) EnsurePvSystem(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ensure(s.pvSystems, id, newPvSystem)
}

// EnsureBattery creates the battery if it does not exist yet.
func (s *Store) EnsureBattery(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ensure(s.batteries, id, newBattery)
}

// EnsureChargePoint creates the charge point if it does not exist yet.
func (s *Store) EnsureChargePoint(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ensure(s.chargePoints, id, newChargePoint)
}

func ensure[T any](m map[int]*T, id int, create func(int) *T) bool {
	if _, ok := m[id]; ok {
		return false
	}
	m[id] = create(id)
	return true
}

// ResetChargePoints removes all charge points.
func (s *Store) ResetChargePoints() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chargePoints = make(map[int]*ChargePoint)
}

// ResetBatteries removes all batteries.
func (s *Store) ResetBatteries() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batteries = make(map[int]*Battery)
}

// SetGridMeterID marks the counter id that represents the grid connection.
// The counter itself does not have to exist.
func (s *Store) SetGridMeterID(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global.GridMeterID = id
	s.global.HasGridMeter = true
}

// GridMeterID returns the grid meter id, or false if no hierarchy has
// named one yet.
func (s *Store) GridMeterID() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.global.GridMeterID, s.global.HasGridMeter
}

// SetPVBatteryPriority stores openWB's PV-charging battery mode.
func (s *Store) SetPVBatteryPriority(mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global.PVBatteryPriority = mode
}

// UpdateCounter applies fn to an existing counter.
// It returns false, without calling fn, if the counter is unknown.
func (s *Store) UpdateCounter(id int, fn func(*Counter)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return update(s.counters, id, fn)
}

// UpdatePvSystem applies fn to an existing PV system.
func (s *Store) UpdatePvSystem(id int, fn func(*PvSystem)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return update(s.pvSystems, id, fn)
}

// UpdateBattery applies fn to an existing battery.
func (s *Store) UpdateBattery(id int, fn func(*Battery)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return update(s.batteries, id, fn)
}

// UpdateChargePoint applies fn to an existing charge point.
func (s *Store) UpdateChargePoint(id int, fn func(*ChargePoint)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return update(s.chargePoints, id, fn)
}

func update[T any](m map[int]*T, id int, fn func(*T)) bool {
	entity, ok := m[id]
	if !ok {
		return false
	}
	fn(entity)
	return true
}

// UpdateSummaries applies fn to the source and usage summaries.
func (s *Store) UpdateSummaries(fn func(*SourceSummary, *UsageSummary)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.sources, &s.usage)
}

// Counters returns copies of all counters ordered by id.
func (s *Store) Counters() []Counter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return values(s.counters)
}

// Counter returns a copy of one counter.
func (s *Store) Counter(id int) (Counter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.counters[id]
	if !ok {
		return Counter{}, false
	}
	return *c, true
}

// PvSystems returns copies of all PV systems ordered by id.
func (s *Store) PvSystems() []PvSystem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return values(s.pvSystems)
}

// PvSystem returns a copy of one PV system.
func (s *Store) PvSystem(id int) (PvSystem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pv, ok := s.pvSystems[id]
	if !ok {
		return PvSystem{}, false
	}
	return *pv, true
}

// Batteries returns copies of all batteries ordered by id.
func (s *Store) Batteries() []Battery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return values(s.batteries)
}

// ChargePoints returns copies of all charge points ordered by id.
func (s *Store) ChargePoints() []ChargePoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return values(s.chargePoints)
}

// Global returns a copy of the global settings.
func (s *Store) Global() GlobalData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.global
}

// Summaries returns copies of the source and usage summaries.
func (s *Store) Summaries() (SourceSummary, UsageSummary) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sources, s.usage
}

// Snapshot returns a consistent copy of the whole store.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Counters:     values(s.counters),
		PvSystems:    values(s.pvSystems),
		Batteries:    values(s.batteries),
		ChargePoints: values(s.chargePoints),
		Global:       s.global,
		Sources:      s.sources,
		Usage:        s.usage,
	}
}

func values[T any](m map[int]*T) []T {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m[id])
	}
	return out
}

package memory

import "sync"

// store is an ordered in-memory collection keyed by a monotonically increasing
// id. Entities live in an append-only arena; an id→slot map and an explicit
// order slice give O(1) lookup and stable listing order. All mutations
// serialize through one mutex, so no two inserts can ever observe the same id
// and patches always apply on the latest committed state. Every value handed
// out is a snapshot produced by clone.
type store[T any] struct {
	mu     sync.RWMutex
	nextID int64
	arena  []T
	slots  map[int64]int
	order  []int64

	prepend bool
	setID   func(*T, int64)
	clone   func(T) T
}

func newStore[T any](prepend bool, setID func(*T, int64), clone func(T) T) *store[T] {
	return &store[T]{
		slots:   make(map[int64]int),
		prepend: prepend,
		setID:   setID,
		clone:   clone,
	}
}

func (s *store[T]) insert(value T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(value)
}

// insertIf runs check against every committed entity and inserts only when
// all checks pass. Check and insert happen under the same write lock, so two
// concurrent inserts can never both pass a check against each other.
func (s *store[T]) insertIf(value T, check func(existing T) error) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		if err := check(s.arena[s.slots[id]]); err != nil {
			var zero T
			return zero, err
		}
	}
	return s.commit(value), nil
}

// commit assumes the write lock is held.
func (s *store[T]) commit(value T) T {
	s.nextID++
	id := s.nextID
	s.setID(&value, id)

	s.arena = append(s.arena, value)
	s.slots[id] = len(s.arena) - 1

	if s.prepend {
		s.order = append([]int64{id}, s.order...)
	} else {
		s.order = append(s.order, id)
	}

	return s.clone(value)
}

func (s *store[T]) get(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[id]
	if !ok {
		var zero T
		return zero, false
	}
	return s.clone(s.arena[slot]), true
}

// update applies fn to the committed entity under the write lock and returns
// the new snapshot.
func (s *store[T]) update(id int64, fn func(*T)) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		var zero T
		return zero, false
	}
	fn(&s.arena[slot])
	return s.clone(s.arena[slot]), true
}

// updateIf is update with a precondition: check runs against every other
// committed entity under the same write lock, and fn applies only when all
// checks pass.
func (s *store[T]) updateIf(id int64, check func(other T) error, fn func(*T)) (T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		var zero T
		return zero, false, nil
	}
	for _, oid := range s.order {
		if oid == id {
			continue
		}
		if err := check(s.arena[s.slots[oid]]); err != nil {
			var zero T
			return zero, true, err
		}
	}
	fn(&s.arena[slot])
	return s.clone(s.arena[slot]), true, nil
}

// remove detaches the entity, preserving the order of the remaining entries.
// The arena slot is abandoned, not reused.
func (s *store[T]) remove(id int64) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		var zero T
		return zero, false
	}
	removed := s.clone(s.arena[slot])
	delete(s.slots, id)

	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return removed, true
}

// list filters the collection in listing order and returns the requested page
// plus the total match count. Page and limit below 1 are clamped to 1;
// out-of-range pages yield an empty result.
func (s *store[T]) list(match func(T) bool, page, limit int) ([]T, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []int
	for _, id := range s.order {
		slot := s.slots[id]
		if match == nil || match(s.arena[slot]) {
			matched = append(matched, slot)
		}
	}

	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return []T{}, total
	}
	end := start + limit
	if end > total {
		end = total
	}

	items := make([]T, 0, end-start)
	for _, slot := range matched[start:end] {
		items = append(items, s.clone(s.arena[slot]))
	}
	return items, total
}

// find returns the first entity in listing order matching fn.
func (s *store[T]) find(match func(T) bool) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		slot := s.slots[id]
		if match(s.arena[slot]) {
			return s.clone(s.arena[slot]), true
		}
	}
	var zero T
	return zero, false
}

func (s *store[T]) all() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]T, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.clone(s.arena[s.slots[id]]))
	}
	return items
}

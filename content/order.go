package content

import (
	"sort"
	"time"
)

// Sort orders items by position, breaking ties by id so that the order is
// stable across stores.
func Sort(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Header(), items[j].Header()
		if a.Position != b.Position {
			return a.Position < b.Position
		}

		return a.ID.String() < b.ID.String()
	})
}

// Renumber assigns contiguous positions 0..n-1 following the slice order and
// returns the items whose position changed.
func Renumber(items []Item) []Item {
	now := time.Now()

	changed := make([]Item, 0)
	for i, item := range items {
		h := item.Header()
		if h.Position == i {
			continue
		}

		h.Position = i
		h.UpdatedAt = now
		changed = append(changed, item)
	}

	return changed
}

// Reorder moves the item at index from to index to and renumbers the list.
func Reorder(items []Item, from int, to int) ([]Item, error) {
	n := len(items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, ErrInvalidPosition
	}

	result := make([]Item, 0, n)
	result = append(result, items...)

	moved := result[from]
	result = append(result[:from], result[from+1:]...)

	result = append(result[:to], append([]Item{moved}, result[to:]...)...)

	Renumber(result)
	return result, nil
}

// Arrange orders items following ids, which must be a permutation of the
// current item ids.
func Arrange(items []Item, ids []ItemID) ([]Item, error) {
	if len(ids) != len(items) {
		return nil, ErrInvalidOrder
	}

	index := make(map[ItemID]Item, len(items))
	for _, item := range items {
		index[item.Header().ID] = item
	}

	result := make([]Item, 0, len(items))
	for _, id := range ids {
		item, ok := index[id]
		if !ok {
			return nil, ErrInvalidOrder
		}

		delete(index, id)
		result = append(result, item)
	}

	Renumber(result)
	return result, nil
}

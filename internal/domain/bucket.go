package domain

import "github.com/google/uuid"

// BucketListItem is a single aspirational entry in a bucket list.
type BucketListItem struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
}

// BucketList is a user's ordered list of items. Insertion order is
// significant and preserved across mutations. Version is the optimistic
// concurrency token enforced at the storage boundary: every successful
// update increments it.
type BucketList struct {
	ID      uuid.UUID        `json:"id"`
	Version int64            `json:"-"`
	Items   []BucketListItem `json:"items"`
}

// NewBucketList returns an empty list with the given identity.
func NewBucketList(id uuid.UUID) *BucketList {
	return &BucketList{ID: id, Items: []BucketListItem{}}
}

// AppendItem adds a new incomplete item at the end of the list and returns it.
func (b *BucketList) AppendItem(description string) BucketListItem {
	item := BucketListItem{
		ID:          uuid.New(),
		Description: description,
	}
	b.Items = append(b.Items, item)
	return item
}

// SetItemCompleted sets the completed flag of the named item. Setting the
// same value twice is a no-op. Returns ErrItemNotFound if the id is absent.
func (b *BucketList) SetItemCompleted(itemID uuid.UUID, completed bool) error {
	for i := range b.Items {
		if b.Items[i].ID == itemID {
			b.Items[i].Completed = completed
			return nil
		}
	}
	return ErrItemNotFound
}

// RemoveItem deletes the named item, keeping the relative order of the
// remaining items. Returns ErrItemNotFound if the id is absent.
func (b *BucketList) RemoveItem(itemID uuid.UUID) error {
	for i := range b.Items {
		if b.Items[i].ID == itemID {
			b.Items = append(b.Items[:i], b.Items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

// Item returns the item with the given id, if present.
func (b *BucketList) Item(itemID uuid.UUID) (BucketListItem, bool) {
	for _, item := range b.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return BucketListItem{}, false
}

// Clone returns a deep copy. Services mutate clones so a failed
// compare-and-swap never leaves a half-applied list in memory.
func (b *BucketList) Clone() *BucketList {
	items := make([]BucketListItem, len(b.Items))
	copy(items, b.Items)
	return &BucketList{ID: b.ID, Version: b.Version, Items: items}
}

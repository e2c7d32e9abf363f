package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestBucketList_AppendItem(t *testing.T) {
	b := NewBucketList(uuid.New())

	first := b.AppendItem("see the northern lights")
	second := b.AppendItem("walk the Camino")

	if len(b.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(b.Items))
	}
	if first.ID == second.ID {
		t.Error("item ids must be distinct within a bucket")
	}
	if first.Completed || second.Completed {
		t.Error("new items must start incomplete")
	}
	if b.Items[0].ID != first.ID || b.Items[1].ID != second.ID {
		t.Error("items must keep insertion order")
	}
	if b.Items[0].Description != "see the northern lights" {
		t.Errorf("description stored verbatim, got %q", b.Items[0].Description)
	}
}

func TestBucketList_SetItemCompleted(t *testing.T) {
	b := NewBucketList(uuid.New())
	item := b.AppendItem("learn to sail")

	if err := b.SetItemCompleted(item.ID, true); err != nil {
		t.Fatalf("set completed: %v", err)
	}
	if !b.Items[0].Completed {
		t.Error("expected item to be completed")
	}

	// Idempotent: same value twice, same observable result
	if err := b.SetItemCompleted(item.ID, true); err != nil {
		t.Fatalf("second set completed: %v", err)
	}
	if !b.Items[0].Completed {
		t.Error("expected item to stay completed")
	}

	if err := b.SetItemCompleted(uuid.New(), true); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestBucketList_RemoveItem(t *testing.T) {
	b := NewBucketList(uuid.New())
	first := b.AppendItem("a")
	second := b.AppendItem("b")
	third := b.AppendItem("c")

	if err := b.RemoveItem(second.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if len(b.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(b.Items))
	}
	if b.Items[0].ID != first.ID || b.Items[1].ID != third.ID {
		t.Error("remaining items must keep relative order")
	}

	if err := b.RemoveItem(uuid.New()); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
	if len(b.Items) != 2 {
		t.Error("failed remove must leave the item sequence unchanged")
	}
}

func TestBucketList_Clone(t *testing.T) {
	b := NewBucketList(uuid.New())
	b.AppendItem("dive the Great Barrier Reef")
	b.Version = 3

	c := b.Clone()
	c.AppendItem("added to clone only")
	c.Items[0].Completed = true

	if len(b.Items) != 1 {
		t.Error("clone mutation leaked into original length")
	}
	if b.Items[0].Completed {
		t.Error("clone mutation leaked into original item")
	}
	if c.Version != 3 || c.ID != b.ID {
		t.Error("clone must preserve identity and version")
	}
}

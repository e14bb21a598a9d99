package profile

import (
	"sync"
	"testing"

	"github.com/trypromptly/promptly-cli/internal/api"
)

func TestTracker_Resize(t *testing.T) {
	tests := []struct {
		width int
		want  bool
	}{
		{0, true},
		{320, true},
		{899, true},
		{900, false},
		{901, false},
		{1920, false},
	}

	store := NewStore()
	tracker := NewTracker(store, 900)
	defer tracker.Close()

	for _, tt := range tests {
		tracker.Resize(tt.width)
		if got := store.IsMobile(); got != tt.want {
			t.Errorf("Resize(%d): IsMobile() = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestTracker_NoChangesAfterClose(t *testing.T) {
	store := NewStore()
	tracker := NewTracker(store, 900)

	var mu sync.Mutex
	var changes []bool
	unsubscribe := store.Subscribe(func(s State) {
		mu.Lock()
		changes = append(changes, s.IsMobile)
		mu.Unlock()
	})
	defer unsubscribe()

	tracker.Resize(500)
	tracker.Resize(1200)
	tracker.Close()
	tracker.Resize(500)
	tracker.Resize(300)

	if store.IsMobile() {
		t.Error("resize after Close must not change state")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(changes) != 2 || changes[0] != true || changes[1] != false {
		t.Errorf("changes = %v, want [true false]", changes)
	}
}

func TestTracker_SingleWriter(t *testing.T) {
	store := NewStore()
	first := NewTracker(store, 900)
	if first == nil {
		t.Fatal("expected first tracker")
	}
	if second := NewTracker(store, 900); second != nil {
		t.Error("second tracker must not attach while first is open")
	}

	first.Close()
	first.Close()

	third := NewTracker(store, 900)
	if third == nil {
		t.Fatal("expected tracker to attach after Close")
	}
	third.Close()
}

func TestTracker_UnchangedWidthDoesNotNotify(t *testing.T) {
	store := NewStore()
	tracker := NewTracker(store, 100)
	defer tracker.Close()

	calls := 0
	store.Subscribe(func(State) { calls++ })

	tracker.Resize(120)
	tracker.Resize(140)
	tracker.Resize(80)
	tracker.Resize(60)

	if calls != 1 {
		t.Errorf("listener called %d times, want 1", calls)
	}
}

func TestStore_Flags(t *testing.T) {
	store := NewStore()
	if store.Flags().IsOrganizationOwner() {
		t.Error("new store should have no flags")
	}

	input := api.ProfileFlags{api.FlagOrganizationOwner: true}
	store.SetFlags(input)
	input[api.FlagOrganizationOwner] = false

	flags := store.Flags()
	if !flags.IsOrganizationOwner() {
		t.Error("SetFlags must copy its input")
	}
	flags[api.FlagOrganizationOwner] = false
	if !store.Flags().IsOrganizationOwner() {
		t.Error("Flags must return a copy")
	}
}

func TestStore_Unsubscribe(t *testing.T) {
	store := NewStore()
	calls := 0
	unsubscribe := store.Subscribe(func(State) { calls++ })

	store.SetFlags(api.ProfileFlags{})
	unsubscribe()
	unsubscribe()
	store.SetFlags(api.ProfileFlags{api.FlagOrganizationOwner: true})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestStore_Snapshot(t *testing.T) {
	store := NewStore()
	tracker := NewTracker(store, 900)
	defer tracker.Close()

	tracker.Resize(400)
	store.SetFlags(api.ProfileFlags{api.FlagOrganizationOwner: true})

	snap := store.Snapshot()
	if !snap.IsMobile || !snap.Flags.IsOrganizationOwner() {
		t.Errorf("Snapshot() = %+v", snap)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore()
	tracker := NewTracker(store, 900)
	defer tracker.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			tracker.Resize(w * 40)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.IsMobile()
			_ = store.Flags()
		}()
	}
	wg.Wait()
}

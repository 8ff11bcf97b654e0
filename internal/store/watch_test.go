package store

import (
	"testing"
	"time"

	"dindin/internal/models"
	"dindin/internal/testutil"
)

func receiveSnapshot(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.C:
		if !ok {
			t.Fatal("subscription channel closed unexpectedly")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}

func newExpense(cents int64, date string) *models.Transaction {
	return &models.Transaction{
		Type:           models.TransactionTypeExpense,
		AmountCents:    cents,
		Date:           date,
		MonthReference: date[:7],
	}
}

func TestWatchDeliversCurrentSnapshotFirst(t *testing.T) {
	db, s, user := setupStore(t)
	testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 100, "2024-03-05", "A")

	sub, err := s.Watch(user.ID)
	testutil.AssertNoError(t, err)
	defer sub.Unsubscribe()

	snap := receiveSnapshot(t, sub)
	if len(snap.Transactions) != 1 {
		t.Fatalf("expected the pre-existing record in the first snapshot, got %d", len(snap.Transactions))
	}
}

func TestWatchDeliversAfterCommit(t *testing.T) {
	_, s, user := setupStore(t)

	sub, err := s.Watch(user.ID)
	testutil.AssertNoError(t, err)
	defer sub.Unsubscribe()

	if snap := receiveSnapshot(t, sub); len(snap.Transactions) != 0 {
		t.Fatalf("expected empty initial snapshot, got %d", len(snap.Transactions))
	}

	testutil.AssertNoError(t, s.Commit(user.ID, Batch{Creates: []*models.Transaction{newExpense(100, "2024-03-05")}}))

	snap := receiveSnapshot(t, sub)
	if len(snap.Transactions) != 1 {
		t.Fatalf("expected 1 record after commit, got %d", len(snap.Transactions))
	}
	if snap.Transactions[0].AmountCents != 100 {
		t.Errorf("unexpected record: %+v", snap.Transactions[0])
	}
}

func TestWatchCoalescesWhenConsumerLags(t *testing.T) {
	_, s, user := setupStore(t)

	sub, err := s.Watch(user.ID)
	testutil.AssertNoError(t, err)
	defer sub.Unsubscribe()

	// Do not read between commits: the buffered snapshot is replaced, not
	// queued.
	for i := 0; i < 3; i++ {
		testutil.AssertNoError(t, s.Commit(user.ID, Batch{Creates: []*models.Transaction{newExpense(int64(100 + i), "2024-03-05")}}))
	}

	snap := receiveSnapshot(t, sub)
	if len(snap.Transactions) != 3 {
		t.Fatalf("expected the latest snapshot with all 3 records, got %d", len(snap.Transactions))
	}
}

// TestWatchSeesConcurrentCommit races subscription acquisition against a
// commit. However the two serialize, the committed record must reach the
// subscription: in the initial snapshot if the commit won, in a follow-up
// broadcast if acquisition won. A commit landing between the initial
// snapshot query and registration must not be lost.
func TestWatchSeesConcurrentCommit(t *testing.T) {
	_, s, user := setupStore(t)

	const rounds = 25
	for i := 0; i < rounds; i++ {
		committed := make(chan error, 1)
		go func(n int64) {
			var err error
			// Shared-cache sqlite can report a locked table under
			// concurrent access; retry until the write lands.
			for attempt := 0; attempt < 100; attempt++ {
				err = s.Commit(user.ID, Batch{Creates: []*models.Transaction{newExpense(n, "2024-03-05")}})
				if err == nil {
					break
				}
				time.Sleep(time.Millisecond)
			}
			committed <- err
		}(int64(i + 1))

		sub, err := s.Watch(user.ID)
		testutil.AssertNoError(t, err)
		if err := <-committed; err != nil {
			t.Fatalf("round %d: commit failed: %v", i+1, err)
		}

		want := i + 1
		deadline := time.After(2 * time.Second)
	wait:
		for {
			select {
			case snap, ok := <-sub.C:
				if !ok {
					t.Fatal("subscription channel closed unexpectedly")
				}
				if len(snap.Transactions) >= want {
					break wait
				}
			case <-deadline:
				t.Fatalf("round %d: subscription never observed the committed record", want)
			}
		}
		sub.Unsubscribe()
	}
}

func TestWatchIsolatesUsers(t *testing.T) {
	db, s, user := setupStore(t)
	other := testutil.CreateTestUser(t, db)

	sub, err := s.Watch(user.ID)
	testutil.AssertNoError(t, err)
	defer sub.Unsubscribe()
	receiveSnapshot(t, sub)

	testutil.AssertNoError(t, s.Commit(other.ID, Batch{Creates: []*models.Transaction{newExpense(100, "2024-03-05")}}))

	select {
	case snap := <-sub.C:
		t.Fatalf("received another user's snapshot: %+v", snap)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatchBroadcastsToAllSubscribers(t *testing.T) {
	_, s, user := setupStore(t)

	first, err := s.Watch(user.ID)
	testutil.AssertNoError(t, err)
	defer first.Unsubscribe()
	second, err := s.Watch(user.ID)
	testutil.AssertNoError(t, err)
	defer second.Unsubscribe()

	receiveSnapshot(t, first)
	receiveSnapshot(t, second)

	testutil.AssertNoError(t, s.Commit(user.ID, Batch{Creates: []*models.Transaction{newExpense(100, "2024-03-05")}}))

	for _, sub := range []*Subscription{first, second} {
		if snap := receiveSnapshot(t, sub); len(snap.Transactions) != 1 {
			t.Errorf("expected both subscribers to receive the commit, got %d records", len(snap.Transactions))
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	t.Run("closes the channel", func(t *testing.T) {
		_, s, user := setupStore(t)

		sub, err := s.Watch(user.ID)
		testutil.AssertNoError(t, err)
		receiveSnapshot(t, sub)

		sub.Unsubscribe()

		select {
		case _, ok := <-sub.C:
			if ok {
				t.Error("expected closed channel, got a snapshot")
			}
		case <-time.After(time.Second):
			t.Error("expected channel to close on unsubscribe")
		}
	})

	t.Run("safe to call twice", func(t *testing.T) {
		_, s, user := setupStore(t)

		sub, err := s.Watch(user.ID)
		testutil.AssertNoError(t, err)
		sub.Unsubscribe()
		sub.Unsubscribe()
	})

	t.Run("commits after unsubscribe do not panic", func(t *testing.T) {
		_, s, user := setupStore(t)

		sub, err := s.Watch(user.ID)
		testutil.AssertNoError(t, err)
		sub.Unsubscribe()

		testutil.AssertNoError(t, s.Commit(user.ID, Batch{Creates: []*models.Transaction{newExpense(100, "2024-03-05")}}))
	})
}

package patterns

import (
	"testing"
	"time"
)

func TestLocationAnomalyWithinWindow(t *testing.T) {
	// Mumbai at t0, Delhi five hours later.
	table := mkTable(
		mkTx(1, 100001, 100, at(0), in("Mumbai")),
		mkTx(2, 100001, 100, at(5*time.Hour), in("Delhi")),
	)

	res := EvaluateLocation(table)

	if !res.Flagged[2] {
		t.Fatal("expected transaction 2 flagged")
	}
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 report row, got %d", len(res.Rows))
	}

	row := res.Rows[0]
	if row.TimeDiffHours != 5.0 {
		t.Errorf("expected time diff 5.0 hours, got %v", row.TimeDiffHours)
	}
	if row.PrevLocation != "Mumbai" {
		t.Errorf("expected prev location Mumbai, got %s", row.PrevLocation)
	}
	if !row.PrevTime.Equal(testBase) {
		t.Errorf("expected prev time %v, got %v", testBase, row.PrevTime)
	}
}

func TestLocationFirstTransactionNeverFires(t *testing.T) {
	table := mkTable(
		mkTx(1, 100001, 100, at(0), in("Mumbai")),
		mkTx(2, 100002, 100, at(time.Hour), in("Delhi")),
	)

	res := EvaluateLocation(table)

	if len(res.Flagged) != 0 {
		t.Errorf("account-first transactions must never be flagged, got %v", res.Flagged)
	}
	if _, ok := res.TimeDiff[1]; ok {
		t.Error("first transaction of an account has no time diff")
	}
}

func TestLocationSameLocationNotFlagged(t *testing.T) {
	table := mkTable(
		mkTx(1, 100001, 100, at(0), in("Pune")),
		mkTx(2, 100001, 100, at(time.Hour), in("Pune")),
	)

	res := EvaluateLocation(table)
	if len(res.Flagged) != 0 {
		t.Errorf("unchanged location must not be flagged, got %v", res.Flagged)
	}
}

func TestLocationWindowBoundary(t *testing.T) {
	table := mkTable(
		mkTx(1, 100001, 100, at(0), in("Mumbai")),
		mkTx(2, 100001, 100, at(24*time.Hour), in("Delhi")),
		mkTx(3, 100002, 100, at(0), in("Mumbai")),
		mkTx(4, 100002, 100, at(24*time.Hour+time.Minute), in("Delhi")),
	)

	res := EvaluateLocation(table)

	if !res.Flagged[2] {
		t.Error("exactly 24 hours is inside the window and must be flagged")
	}
	if res.Flagged[4] {
		t.Error("over 24 hours must not be flagged")
	}
}

func TestLocationRowsSortedByWindowAsc(t *testing.T) {
	table := mkTable(
		mkTx(1, 100001, 100, at(0), in("Mumbai")),
		mkTx(2, 100001, 100, at(10*time.Hour), in("Delhi")),
		mkTx(3, 100002, 100, at(0), in("Pune")),
		mkTx(4, 100002, 100, at(2*time.Hour), in("Bangalore")),
	)

	res := EvaluateLocation(table)

	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Rows))
	}
	if res.Rows[0].Tx.ID != 4 || res.Rows[1].Tx.ID != 2 {
		t.Errorf("expected shortest window first [4 2], got [%d %d]",
			res.Rows[0].Tx.ID, res.Rows[1].Tx.ID)
	}
}

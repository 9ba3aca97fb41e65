package patterns

import (
	"testing"
	"time"
)

func TestRapidFireFlagsWholeGroup(t *testing.T) {
	// Three transactions on the same calendar day: the whole group is
	// rapid-fire, not just the third.
	table := mkTable(
		mkTx(1, 100001, 100, at(0)),
		mkTx(2, 100001, 100, at(2*time.Hour)),
		mkTx(3, 100001, 100, at(4*time.Hour)),
	)

	res := EvaluateRapidFire(table)

	for _, id := range []int64{1, 2, 3} {
		if !res.Flagged[id] {
			t.Errorf("expected transaction %d flagged", id)
		}
	}

	if len(res.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(res.Groups))
	}
	g := res.Groups[0]
	if g.AccountID != 100001 || g.Count != 3 {
		t.Errorf("unexpected group %+v", g)
	}
	if g.Day != testBase.Format("2006-01-02") {
		t.Errorf("expected day %s, got %s", testBase.Format("2006-01-02"), g.Day)
	}
}

func TestRapidFireBelowThresholdNotFlagged(t *testing.T) {
	table := mkTable(
		mkTx(1, 100001, 100, at(0)),
		mkTx(2, 100001, 100, at(time.Hour)),
	)

	res := EvaluateRapidFire(table)

	if len(res.Flagged) != 0 {
		t.Errorf("two transactions in a day must not be flagged, got %v", res.Flagged)
	}
	if len(res.Groups) != 0 {
		t.Errorf("expected no groups, got %v", res.Groups)
	}
	if res.DailyCount[1] != 2 || res.DailyCount[2] != 2 {
		t.Errorf("daily counts should still be recorded, got %v", res.DailyCount)
	}
}

func TestRapidFireSplitsOnCalendarDay(t *testing.T) {
	// Grouping is by calendar day, not a sliding 24-hour window: the
	// fourth transaction lands hours after the third but on the next
	// day, so it does not join the group.
	table := mkTable(
		mkTx(1, 100001, 100, at(10*time.Hour)), // 19:00
		mkTx(2, 100001, 100, at(12*time.Hour)), // 21:00
		mkTx(3, 100001, 100, at(14*time.Hour)), // 23:00
		mkTx(4, 100001, 100, at(18*time.Hour)), // 03:00 next day
	)

	res := EvaluateRapidFire(table)

	for _, id := range []int64{1, 2, 3} {
		if !res.Flagged[id] {
			t.Errorf("expected transaction %d flagged (3 on first day)", id)
		}
	}
	if res.Flagged[4] {
		t.Error("transaction on the next calendar day must not be flagged")
	}
}

func TestRapidFireGroupsSortedByCountDesc(t *testing.T) {
	table := mkTable(
		mkTx(1, 100001, 100, at(0)),
		mkTx(2, 100001, 100, at(time.Hour)),
		mkTx(3, 100001, 100, at(2*time.Hour)),
		mkTx(4, 100002, 100, at(0)),
		mkTx(5, 100002, 100, at(time.Hour)),
		mkTx(6, 100002, 100, at(2*time.Hour)),
		mkTx(7, 100002, 100, at(3*time.Hour)),
	)

	res := EvaluateRapidFire(table)

	if len(res.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(res.Groups))
	}
	if res.Groups[0].AccountID != 100002 || res.Groups[0].Count != 4 {
		t.Errorf("expected account 100002 (count 4) first, got %+v", res.Groups[0])
	}
	if res.Groups[1].AccountID != 100001 || res.Groups[1].Count != 3 {
		t.Errorf("expected account 100001 (count 3) second, got %+v", res.Groups[1])
	}
}

package store

import (
	"testing"
)

func TestOffsetDefaultsToZero(t *testing.T) {
	db := testDB(t)

	off, err := db.Offset("bridge")
	if err != nil {
		t.Fatalf("Offset: %v", err)
	}
	if off != 0 {
		t.Errorf("offset = %d, want 0", off)
	}
}

func TestCommitBatch(t *testing.T) {
	db := testDB(t)

	batch := []Routing{
		{RecordID: "r1", Kind: "booking_interest", Target: "KAIROS", Action: "booking", Artist: "Circuit Prophet", RoutedAt: 1},
		{RecordID: "r1", Kind: "booking_interest", Target: "SEVER", Action: "audit", RoutedAt: 2},
		{RecordID: "r1", Kind: "booking_interest", Target: "LUMENA", Action: "promotion_candidate", RoutedAt: 3},
	}
	if err := db.CommitBatch("bridge", 4, batch); err != nil {
		t.Fatalf("CommitBatch: %v", err)
	}

	off, err := db.Offset("bridge")
	if err != nil {
		t.Fatalf("Offset: %v", err)
	}
	if off != 4 {
		t.Errorf("offset = %d, want 4", off)
	}

	all, err := db.ListRoutings("", 0)
	if err != nil {
		t.Fatalf("ListRoutings: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("routings = %d, want 3", len(all))
	}
	if all[0].Target != "LUMENA" {
		t.Errorf("newest first: got %s", all[0].Target)
	}

	kairos, err := db.ListRoutings("KAIROS", 10)
	if err != nil {
		t.Fatalf("ListRoutings: %v", err)
	}
	if len(kairos) != 1 || kairos[0].Artist != "Circuit Prophet" {
		t.Errorf("kairos routings = %+v", kairos)
	}
}

func TestCommitBatchIgnoresDuplicates(t *testing.T) {
	db := testDB(t)

	r := Routing{RecordID: "r1", Kind: "booking_interest", Target: "KAIROS", Action: "booking"}
	if err := db.CommitBatch("bridge", 1, []Routing{r}); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if err := db.CommitBatch("bridge", 2, []Routing{r}); err != nil {
		t.Fatalf("second commit: %v", err)
	}

	counts, err := db.CountRoutings()
	if err != nil {
		t.Fatalf("CountRoutings: %v", err)
	}
	if counts["KAIROS"] != 1 {
		t.Errorf("KAIROS count = %d, want 1", counts["KAIROS"])
	}
}

func TestCommitBatchRollsBack(t *testing.T) {
	db := testDB(t)

	bad := []Routing{
		{RecordID: "r1", Kind: "booking_interest", Target: "KAIROS", Action: "booking"},
		{RecordID: "r1", Kind: "booking_interest", Target: "NOBODY", Action: "booking"},
	}
	if err := db.CommitBatch("bridge", 7, bad); err == nil {
		t.Fatal("expected error for invalid target")
	}

	off, _ := db.Offset("bridge")
	if off != 0 {
		t.Errorf("offset advanced to %d despite failed batch", off)
	}
	counts, _ := db.CountRoutings()
	if len(counts) != 0 {
		t.Errorf("routings persisted despite failed batch: %v", counts)
	}
}

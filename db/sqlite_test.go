package db

import (
	"os"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	// Setup
	dbPath := "./test.db"
	if err := InitDB(dbPath); err != nil {
		panic(err)
	}

	code := m.Run()

	// Teardown
	Close()
	os.Remove(dbPath)
	os.Exit(code)
}

func TestSaveAndLoadHistory(t *testing.T) {
	records := []QueryRecord{
		{AminoAcid: "K", Codon: "AAA", HostSpecies: "homo sapiens", Status: 200, DurationMs: 1.2, CreatedAt: time.Now().Add(-2 * time.Minute).UTC()},
		{AminoAcid: "L", Status: 200, DurationMs: 0.8, CreatedAt: time.Now().Add(-time.Minute).UTC()},
		{AminoAcid: "B", Status: 400, DurationMs: 0.1, CreatedAt: time.Now().UTC()},
	}
	for _, rec := range records {
		if err := SaveQuery(rec); err != nil {
			t.Fatal(err)
		}
	}

	history, err := LoadHistory(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 records, got %d", len(history))
	}
	// newest first
	if history[0].AminoAcid != "B" || history[0].Status != 400 {
		t.Fatalf("unexpected newest record: %+v", history[0])
	}
	if history[2].Codon != "AAA" || history[2].HostSpecies != "homo sapiens" {
		t.Fatalf("unexpected oldest record: %+v", history[2])
	}

	limited, err := LoadHistory(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}

func TestSaveQueryDefaultsTimestamp(t *testing.T) {
	if err := SaveQuery(QueryRecord{AminoAcid: "F", Status: 200, DurationMs: 0.5}); err != nil {
		t.Fatal(err)
	}
	history, err := LoadHistory(1)
	if err != nil {
		t.Fatal(err)
	}
	if history[0].CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be filled in")
	}
}

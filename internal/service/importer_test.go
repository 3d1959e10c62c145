package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func rosterHeader() []string {
	return []string{"First Name", "Last Name", "Email", "Phone", "Public ID", "Category"}
}

func TestImporterRun(t *testing.T) {
	s := newTestStore(t)
	importer := NewImporter(s.attendees)
	ctx := context.Background()

	// 150 rows: 10 lack a first name and are invalid, 5 share a public
	// ID with an earlier row and are skipped as duplicates.
	header := rosterHeader()
	rows := make([][]string, 0, 150)
	for i := 0; i < 150; i++ {
		first := fmt.Sprintf("First%03d", i)
		if i < 10 {
			first = ""
		}
		publicID := fmt.Sprintf("A-IMP%06d", i)
		if i >= 145 {
			publicID = fmt.Sprintf("A-IMP%06d", i-100) // collides with an earlier row
		}
		rows = append(rows, []string{first, fmt.Sprintf("Last%03d", i), "", "", publicID, ""})
	}

	report, err := importer.Run(ctx, "guest", header, rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Total != 140 {
		t.Fatalf("expected 140 valid records, got %d", report.Total)
	}
	if report.Invalid != 10 {
		t.Fatalf("expected 10 invalid records, got %d", report.Invalid)
	}
	if report.Created != 135 {
		t.Fatalf("expected 135 created, got %d", report.Created)
	}
	if len(report.Errors) != 0 {
		t.Fatalf("expected no batch errors, got %+v", report.Errors)
	}

	count, err := s.attendees.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 135 {
		t.Fatalf("expected 135 attendees stored, got %d", count)
	}

	a, err := s.attendees.GetByPublicID(ctx, "A-IMP000050")
	if err != nil {
		t.Fatalf("GetByPublicID: %v", err)
	}
	if a.Category != "guest" {
		t.Fatalf("expected batch category applied, got %q", a.Category)
	}
}

func TestImporterRunIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	importer := NewImporter(s.attendees)
	ctx := context.Background()

	header := rosterHeader()
	rows := [][]string{
		{"Ada", "Lovelace", "ada@example.com", "", "A-IDEM00001", ""},
		{"Grace", "Hopper", "", "", "A-IDEM00002", "speaker"},
	}

	first, err := importer.Run(ctx, "guest", header, rows)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.Created != 2 {
		t.Fatalf("expected 2 created, got %d", first.Created)
	}

	// The same file again creates nothing and fails nothing.
	second, err := importer.Run(ctx, "guest", header, rows)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.Total != 2 || second.Created != 0 || len(second.Errors) != 0 {
		t.Fatalf("expected idempotent re-import, got %+v", second)
	}

	// The row's own category wins over the batch label.
	a, err := s.attendees.GetByPublicID(ctx, "A-IDEM00002")
	if err != nil {
		t.Fatalf("GetByPublicID: %v", err)
	}
	if a.Category != "speaker" {
		t.Fatalf("expected row category, got %q", a.Category)
	}
}

func TestImporterGeneratesPublicIDs(t *testing.T) {
	s := newTestStore(t)
	importer := NewImporter(s.attendees)
	ctx := context.Background()

	header := []string{"firstname", "lastname"} // no public id column at all
	rows := [][]string{
		{"Mary", "Jackson"},
		{"Dorothy", "Vaughan"},
	}

	report, err := importer.Run(ctx, "staff", header, rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Created != 2 {
		t.Fatalf("expected 2 created, got %d", report.Created)
	}

	listed, err := s.attendees.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, a := range listed {
		if !strings.HasPrefix(a.PublicID, "A-") || len(a.PublicID) != 11 {
			t.Fatalf("expected generated badge id, got %q", a.PublicID)
		}
	}
}

func TestImporterHeaderAliases(t *testing.T) {
	s := newTestStore(t)
	importer := NewImporter(s.attendees)
	ctx := context.Background()

	// Alternate spellings and extra columns must still resolve.
	header := []string{"Notes", "first_name", "LAST NAME", "e-mail", "badge id"}
	rows := [][]string{
		{"vip", "Annie", "Easley", "annie@example.com", "A-ALIAS0001"},
	}

	report, err := importer.Run(ctx, "guest", header, rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Created != 1 {
		t.Fatalf("expected 1 created, got %d", report.Created)
	}

	a, err := s.attendees.GetByPublicID(ctx, "A-ALIAS0001")
	if err != nil {
		t.Fatalf("GetByPublicID: %v", err)
	}
	if a.FirstName != "Annie" || a.LastName != "Easley" || a.Email != "annie@example.com" {
		t.Fatalf("unexpected attendee: %+v", a)
	}
}

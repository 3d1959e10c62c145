package service

import (
	"context"
	"strings"

	"github.com/venuedesk/room-checkin/internal/metrics"
	"github.com/venuedesk/room-checkin/internal/model"
	"github.com/venuedesk/room-checkin/internal/repository"
	"github.com/venuedesk/room-checkin/internal/utils"
)

// importBatchSize is the number of attendee rows inserted per
// statement during bulk import. Each batch commits independently so a
// failing batch never takes the rest of the file down with it.
const importBatchSize = 100

// fieldAliases maps each attendee field to the spreadsheet header
// spellings accepted for it, in priority order. Rosters come from many
// hands, so the common variants of each column name are recognised.
// Matching is case-insensitive and ignores surrounding whitespace.
var fieldAliases = map[string][]string{
	"firstName": {"firstname", "first name", "first_name"},
	"lastName":  {"lastname", "last name", "last_name"},
	"email":     {"email", "e-mail", "email address"},
	"phone":     {"phone", "phone number", "mobile"},
	"publicID":  {"publicid", "public id", "public_id", "badge id"},
	"category":  {"category", "group", "type"},
}

// BatchError records the failure of one insert batch. The batch number
// is 1-based over the valid records in file order.
type BatchError struct {
	Batch int    `json:"batch"`
	Error string `json:"error"`
}

// ImportReport summarises a bulk import run. Created can be lower than
// Total when records collided with existing public IDs; those records
// are silently skipped, which is what keeps re-importing the same file
// harmless. Partial success is always reported with counts, never
// collapsed into a boolean.
type ImportReport struct {
	Total   int          `json:"total"`
	Invalid int          `json:"invalid"`
	Created int          `json:"created"`
	Errors  []BatchError `json:"errors"`
}

// Importer turns externally-parsed tabular rosters into idempotent
// attendee upserts. File parsing (CSV/XLSX tokenizing) happens
// upstream; the importer receives a header row and raw cell rows.
type Importer struct {
	attendees *repository.AttendeeRepo
}

// NewImporter returns an Importer writing through the given repo.
func NewImporter(attendees *repository.AttendeeRepo) *Importer {
	if attendees == nil {
		panic("nil repository passed to NewImporter")
	}
	return &Importer{attendees: attendees}
}

// columnIndexes resolves the header once per import into a field→column
// mapping using fieldAliases. Unknown columns are ignored; a field with
// no matching column resolves to -1.
func columnIndexes(header []string) map[string]int {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}
	idx := make(map[string]int, len(fieldAliases))
	for field, aliases := range fieldAliases {
		idx[field] = -1
		for _, alias := range aliases {
			for col, h := range normalized {
				if h == alias {
					idx[field] = col
					break
				}
			}
			if idx[field] >= 0 {
				break
			}
		}
	}
	return idx
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Run imports a roster. The category label is applied to every record
// that does not carry its own category column value. A record is valid
// only when first name, last name and public ID are all non-empty;
// records missing a public ID get one generated before that check, so
// every imported attendee ends up scannable. Invalid records are
// dropped and counted, never failing the run. Valid records are
// inserted in fixed-size batches with skip-duplicate semantics keyed on
// the public ID; a batch that fails outright is recorded in the report
// and the remaining batches are still attempted.
func (im *Importer) Run(ctx context.Context, category string, header []string, rows [][]string) (*ImportReport, error) {
	idx := columnIndexes(header)

	valid := make([]model.Attendee, 0, len(rows))
	invalid := 0
	for _, row := range rows {
		publicID := cell(row, idx["publicID"])
		if publicID == "" {
			generated, err := utils.NewPublicID()
			if err != nil {
				return nil, err
			}
			publicID = generated
		}
		rowCategory := cell(row, idx["category"])
		if rowCategory == "" {
			rowCategory = category
		}
		a := model.Attendee{
			PublicID:  publicID,
			FirstName: cell(row, idx["firstName"]),
			LastName:  cell(row, idx["lastName"]),
			Email:     cell(row, idx["email"]),
			Phone:     cell(row, idx["phone"]),
			Category:  rowCategory,
			Status:    model.AttendeeStatusActive,
		}
		if a.FirstName == "" || a.LastName == "" || a.PublicID == "" {
			invalid++
			continue
		}
		valid = append(valid, a)
	}

	report := &ImportReport{
		Total:   len(valid),
		Invalid: invalid,
		Errors:  []BatchError{},
	}
	for start := 0; start < len(valid); start += importBatchSize {
		end := start + importBatchSize
		if end > len(valid) {
			end = len(valid)
		}
		created, err := im.attendees.CreateBatchIgnore(ctx, valid[start:end])
		if err != nil {
			metrics.ImportBatchErrors.Inc()
			report.Errors = append(report.Errors, BatchError{
				Batch: start/importBatchSize + 1,
				Error: err.Error(),
			})
			continue
		}
		report.Created += int(created)
	}
	metrics.ImportedRows.Add(float64(report.Created))
	return report, nil
}

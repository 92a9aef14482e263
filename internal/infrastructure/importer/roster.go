package importer

import (
	"github.com/schoolpay/backend/internal/domain/academics"
)

// Header aliases accepted for the roster columns, matched case-insensitively
var (
	firstNameAliases = []string{"first name", "first_name", "firstname", "prenom", "prénom"}
	lastNameAliases  = []string{"last name", "last_name", "lastname", "nom"}
	sexAliases       = []string{"sex", "sexe", "gender"}
)

// RosterRow is one validated roster line ready for enrollment
type RosterRow struct {
	Line      int
	FirstName string
	LastName  string
	Sex       academics.Sex
}

// Roster is the outcome of parsing a roster file: the valid rows plus the
// total number of data rows seen (valid or not)
type Roster struct {
	Rows      []RosterRow
	TotalRows int
}

// ReadRoster parses a roster CSV. File-level problems (encoding, missing
// header, size) are returned as an error; per-row problems go into errs and
// the offending rows are skipped, never aborting the batch.
func ReadRoster(data []byte, maxRows int, errs *ErrorCollection) (*Roster, error) {
	parser, err := ParseFromBytes(data)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}

	firstIdx, ok := parser.ColumnIndex(firstNameAliases...)
	if !ok {
		return nil, ErrMissingHeader
	}
	lastIdx, ok := parser.ColumnIndex(lastNameAliases...)
	if !ok {
		return nil, ErrMissingHeader
	}
	sexIdx, hasSex := parser.ColumnIndex(sexAliases...)

	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, err
	}
	if maxRows > 0 && len(rows) > maxRows {
		return nil, ErrTooManyRows
	}

	roster := &Roster{TotalRows: len(rows)}
	for _, row := range rows {
		firstName := row.Get(firstIdx)
		lastName := row.Get(lastIdx)
		if firstName == "" {
			errs.AddRequired(row.LineNumber, "first name")
			continue
		}
		if lastName == "" {
			errs.AddRequired(row.LineNumber, "last name")
			continue
		}

		sex := academics.SexUnknown
		if hasSex {
			raw := row.Get(sexIdx)
			sex = academics.NormalizeSex(raw)
			if raw != "" && sex == academics.SexUnknown {
				errs.AddFormat(row.LineNumber, "sex", "unrecognized sex value '"+raw+"'")
				continue
			}
		}

		roster.Rows = append(roster.Rows, RosterRow{
			Line:      row.LineNumber,
			FirstName: firstName,
			LastName:  lastName,
			Sex:       sex,
		})
	}
	return roster, nil
}

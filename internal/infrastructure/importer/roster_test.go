package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolpay/backend/internal/domain/academics"
)

func TestReadRoster(t *testing.T) {
	t.Run("parses rows with french headers and BOM", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Prenom,Nom,Sexe\nJean,Pierre,M\nAwa,Diallo,Fille\n")...)
		errs := NewErrorCollection(10)

		roster, err := ReadRoster(data, 0, errs)
		require.NoError(t, err)
		assert.False(t, errs.HasErrors())
		assert.Equal(t, 2, roster.TotalRows)
		require.Len(t, roster.Rows, 2)
		assert.Equal(t, RosterRow{Line: 2, FirstName: "Jean", LastName: "Pierre", Sex: academics.SexMale}, roster.Rows[0])
		assert.Equal(t, RosterRow{Line: 3, FirstName: "Awa", LastName: "Diallo", Sex: academics.SexFemale}, roster.Rows[1])
	})

	t.Run("header matching is case-insensitive", func(t *testing.T) {
		data := []byte("FIRST NAME,Last Name,GENDER\nJean,Pierre,male\n")
		errs := NewErrorCollection(10)

		roster, err := ReadRoster(data, 0, errs)
		require.NoError(t, err)
		require.Len(t, roster.Rows, 1)
		assert.Equal(t, academics.SexMale, roster.Rows[0].Sex)
	})

	t.Run("accepts the other sex marker", func(t *testing.T) {
		data := []byte("first name,last name,sex\nJean,Pierre,OTHER\nAwa,Diallo,O\n")
		errs := NewErrorCollection(10)

		roster, err := ReadRoster(data, 0, errs)
		require.NoError(t, err)
		assert.False(t, errs.HasErrors())
		require.Len(t, roster.Rows, 2)
		assert.Equal(t, academics.SexOther, roster.Rows[0].Sex)
		assert.Equal(t, academics.SexOther, roster.Rows[1].Sex)
	})

	t.Run("collects row errors without aborting", func(t *testing.T) {
		data := []byte("first_name,last_name,sex\n,Pierre,M\nJean,,F\nAwa,Diallo,Q\nOk,Row,\n")
		errs := NewErrorCollection(10)

		roster, err := ReadRoster(data, 0, errs)
		require.NoError(t, err)
		assert.Equal(t, 4, roster.TotalRows)
		require.Len(t, roster.Rows, 1)
		assert.Equal(t, "Ok", roster.Rows[0].FirstName)
		assert.Equal(t, academics.SexUnknown, roster.Rows[0].Sex)

		require.Equal(t, 3, errs.TotalCount())
		codes := []string{errs.Errors()[0].Code, errs.Errors()[1].Code, errs.Errors()[2].Code}
		assert.Equal(t, []string{ErrCodeRequiredField, ErrCodeRequiredField, ErrCodeInvalidFormat}, codes)
		assert.Equal(t, 2, errs.Errors()[0].Row)
	})

	t.Run("skips blank lines", func(t *testing.T) {
		data := []byte("first_name,last_name\nJean,Pierre\n,,\n  , \nAwa,Diallo\n")
		errs := NewErrorCollection(10)

		roster, err := ReadRoster(data, 0, errs)
		require.NoError(t, err)
		assert.Equal(t, 2, roster.TotalRows)
		assert.Len(t, roster.Rows, 2)
		assert.False(t, errs.HasErrors())
	})

	t.Run("missing name column fails the file", func(t *testing.T) {
		data := []byte("first_name,sex\nJean,M\n")
		_, err := ReadRoster(data, 0, NewErrorCollection(10))
		assert.ErrorIs(t, err, ErrMissingHeader)
	})

	t.Run("empty file fails", func(t *testing.T) {
		_, err := ReadRoster(nil, 0, NewErrorCollection(10))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("non UTF-8 content fails", func(t *testing.T) {
		data := []byte{0xFF, 0xFE, 'a', ',', 'b', '\n'}
		_, err := ReadRoster(data, 0, NewErrorCollection(10))
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("enforces the row cap", func(t *testing.T) {
		data := []byte("first_name,last_name\nA,B\nC,D\nE,F\n")
		_, err := ReadRoster(data, 2, NewErrorCollection(10))
		assert.ErrorIs(t, err, ErrTooManyRows)
	})
}

func TestErrorCollection(t *testing.T) {
	t.Run("caps collected errors but keeps counting", func(t *testing.T) {
		ec := NewErrorCollection(2)
		ec.AddRequired(2, "first name")
		ec.AddRequired(3, "first name")
		ec.AddRequired(4, "first name")

		assert.Len(t, ec.Errors(), 2)
		assert.Equal(t, 3, ec.TotalCount())
		assert.True(t, ec.IsTruncated())
	})

	t.Run("converts to persisted detail format", func(t *testing.T) {
		ec := NewErrorCollection(10)
		ec.AddDuplicate(5, "Jean Pierre", false)
		ec.AddDuplicate(6, "Awa Diallo", true)

		details := ec.Details()
		require.Len(t, details, 2)
		assert.Equal(t, ErrCodeDuplicateInFile, details[0].Code)
		assert.Equal(t, 5, details[0].Row)
		assert.Equal(t, ErrCodeDuplicateInDB, details[1].Code)
	})
}

package csvfile_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tapsafe/sdwis-ingest/internal/adapter/csvfile"
	"github.com/tapsafe/sdwis-ingest/internal/domain"
)

var relaxed = csvfile.Options{RelaxQuotes: true, RelaxColumnCount: true}

func readAll(t *testing.T, r *csvfile.Reader) ([]domain.RawRow, error) {
	t.Helper()
	var rows []domain.RawRow
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

func TestReader_HeaderKeyedRows(t *testing.T) {
	src := "PWSID,PWS_NAME,STATE_CODE\nPWS001, Acme Water ,CA\nPWS002,Beta Water,TX\n"
	r := csvfile.NewReader(strings.NewReader(src), relaxed)

	rows, err := readAll(t, r)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.RawRow{"PWSID": "PWS001", "PWS_NAME": "Acme Water", "STATE_CODE": "CA"}, rows[0])
	assert.Equal(t, "TX", rows[1]["STATE_CODE"])
}

func TestReader_StripsBOMAndSkipsBlankRows(t *testing.T) {
	src := "\ufeffPWSID,PWS_NAME\n\nPWS001,Acme\n , \nPWS002,Beta\n"
	r := csvfile.NewReader(strings.NewReader(src), relaxed)

	rows, err := readAll(t, r)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "PWS001", rows[0]["PWSID"])
	assert.Equal(t, "PWS002", rows[1]["PWSID"])
}

func TestReader_RelaxedColumnCount(t *testing.T) {
	src := "A,B,C\n1,2\n1,2,3,4\n"
	r := csvfile.NewReader(strings.NewReader(src), relaxed)

	rows, err := readAll(t, r)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	_, hasC := rows[0]["C"]
	assert.False(t, hasC)
	assert.Equal(t, "", rows[0].Get("C"))
	assert.Equal(t, domain.RawRow{"A": "1", "B": "2", "C": "3"}, rows[1])
}

func TestReader_StrictColumnCountStopsWithParseError(t *testing.T) {
	src := "A,B\n1,2\n3\n4,5\n"
	r := csvfile.NewReader(strings.NewReader(src), csvfile.Options{RelaxQuotes: true})

	rows, err := readAll(t, r)
	require.Error(t, err)
	assert.Len(t, rows, 1)

	var pe *csvfile.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Row)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_RelaxedQuotes(t *testing.T) {
	src := "PWSID,PWS_NAME\nPWS001,Joe \"Big\" Water\n"

	r := csvfile.NewReader(strings.NewReader(src), relaxed)
	rows, err := readAll(t, r)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, `Joe "Big" Water`, rows[0]["PWS_NAME"])

	strict := csvfile.NewReader(strings.NewReader(src), csvfile.Options{RelaxColumnCount: true})
	_, err = readAll(t, strict)
	var pe *csvfile.ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestReader_MalformedTrailingRow(t *testing.T) {
	src := "PWSID,PWS_NAME\nPWS001,Acme\nPWS002,Be\"ta"
	r := csvfile.NewReader(strings.NewReader(src), csvfile.Options{RelaxColumnCount: true})

	rows, err := readAll(t, r)
	require.Error(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "PWS001", rows[0]["PWSID"])
}

func TestReader_EmptyInput(t *testing.T) {
	r := csvfile.NewReader(strings.NewReader(""), relaxed)
	_, err := r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_FingerprintIsStable(t *testing.T) {
	src := "A\n1\n2\n"
	a := csvfile.NewReader(strings.NewReader(src), relaxed)
	b := csvfile.NewReader(strings.NewReader(src), relaxed)
	c := csvfile.NewReader(strings.NewReader(src+"3\n"), relaxed)
	for _, r := range []*csvfile.Reader{a, b, c} {
		_, err := readAll(t, r)
		require.NoError(t, err)
	}
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.csv")
	require.NoError(t, os.WriteFile(path, []byte("A\n1\n"), 0o600))

	r, err := csvfile.Open(path, relaxed)
	require.NoError(t, err)
	rows, err := readAll(t, r)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	require.NoError(t, r.Close())

	_, err = csvfile.Open(filepath.Join(dir, "missing.csv"), relaxed)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finsim/internal/accounts"
	"github.com/cleared-dev/finsim/internal/balance"
	"github.com/cleared-dev/finsim/internal/journal"
	"github.com/cleared-dev/finsim/internal/model"
)

const (
	chaseHeader = "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n"
	frHeader    = "Date;Libellé;Montant\n"
)

func total(txns []model.BankTransaction) decimal.Decimal {
	sum := decimal.Zero
	for _, txn := range txns {
		sum = sum.Add(txn.Amount)
	}
	return sum
}

func TestParsers_Statements(t *testing.T) {
	tests := []struct {
		format    string
		file      string
		count     int
		total     string
		firstDate time.Time
		firstRef  string
	}{
		{"chase", "chase_checking.csv", 6, "3364.44", time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC), "chase_20250103_GITHUBPROS"},
		{"fr", "releve_fr.csv", 4, "1128.34", time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC), "fr_20250102_PRLVSEPAOR"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			p, err := DefaultRegistry().Get(tt.format)
			require.NoError(t, err)
			txns, err := ParseFile(p, filepath.Join("../../testdata", tt.file))
			require.NoError(t, err)
			require.Len(t, txns, tt.count)
			assert.True(t, decimal.RequireFromString(tt.total).Equal(total(txns)), total(txns).String())
			assert.True(t, tt.firstDate.Equal(txns[0].Date))
			assert.Equal(t, tt.firstRef, txns[0].Reference)
		})
	}
}

func TestChaseParser_Types(t *testing.T) {
	txns, err := ParseFile(&ChaseParser{}, "../../testdata/chase_checking.csv")
	require.NoError(t, err)
	assert.Equal(t, "ACH_DEBIT", txns[0].Type)
	assert.Equal(t, "ACME CONSULTING INVOICE 1042", txns[3].Description)
	assert.Equal(t, "ACH_CREDIT", txns[3].Type)
}

func TestSemicolonParser_FrenchNotation(t *testing.T) {
	txns, err := ParseFile(&SemicolonParser{}, "../../testdata/releve_fr.csv")
	require.NoError(t, err)

	var refs, amounts []string
	for _, txn := range txns {
		refs = append(refs, txn.Reference)
		amounts = append(amounts, txn.Amount.StringFixed(2))
	}
	want := []string{
		"fr_20250102_PRLVSEPAOR",
		"fr_20250106_CBOVHCLOUD",
		"fr_20250115_VIRSEPAACM",
		"fr_20250131_FRAISTENUE",
	}
	if diff := cmp.Diff(want, refs); diff != "" {
		t.Errorf("references mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"-39.99", "-23.17", "1200.00", "-8.50"}, amounts); diff != "" {
		t.Errorf("amounts mismatch (-want +got):\n%s", diff)
	}
	// Dates are day first.
	assert.Equal(t, time.January, txns[1].Date.Month())
	assert.Equal(t, 6, txns[1].Date.Day())
	assert.Empty(t, txns[1].Type)
}

func TestParsers_EmptyStatement(t *testing.T) {
	for _, tt := range []struct {
		parser Parser
		input  string
	}{
		{&ChaseParser{}, ""},
		{&ChaseParser{}, chaseHeader},
		{&SemicolonParser{}, ""},
		{&SemicolonParser{}, frHeader},
	} {
		txns, err := tt.parser.Parse(strings.NewReader(tt.input))
		require.NoError(t, err, "%s %q", tt.parser.Format(), tt.input)
		assert.Nil(t, txns)
	}
}

func TestParsers_Errors(t *testing.T) {
	tests := []struct {
		name   string
		parser Parser
		input  string
		want   string
	}{
		{"chase bad date", &ChaseParser{}, chaseHeader + "DEBIT,NOTADATE,desc,-4.00,ACH_DEBIT,100.00,\n", "row 2: parsing date"},
		{"chase bad amount", &ChaseParser{}, chaseHeader + "DEBIT,01/03/2025,desc,douze,ACH_DEBIT,100.00,\n", "row 2: parsing amount"},
		{"chase wrong header", &ChaseParser{}, "a,b,c,d,e,f,g\n", "not a chase export"},
		{"fr iso date", &SemicolonParser{}, frHeader + "2025-01-03;X;1\n", "row 2: parsing date"},
		{"fr bad amount", &SemicolonParser{}, frHeader + "03/01/2025;X;1\n04/01/2025;Y;douze\n", "row 3: parsing amount"},
		{"fr short row", &SemicolonParser{}, frHeader + "03/01/2025;X\n", "expected at least 3 fields"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parser.Parse(strings.NewReader(tt.input))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParseFile_NamesStatement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "janvier.csv")
	require.NoError(t, os.WriteFile(path, []byte(frHeader+"xx;X;1\n"), 0o644))
	_, err := ParseFile(&SemicolonParser{}, path)
	assert.ErrorContains(t, err, "janvier.csv: row 2")
}

func TestPost_FrenchStatement(t *testing.T) {
	txns, err := ParseFile(&SemicolonParser{}, "../../testdata/releve_fr.csv")
	require.NoError(t, err)

	c := &Categorizer{
		Bank:     "512",
		Suspense: "471",
		Rules: []Rule{
			{Match: "orange", Account: "626", Label: "Téléphone"},
			{Match: "frais", Account: "627"},
			{Match: "acme", Account: "411"},
		},
	}
	postings, err := c.CategorizeAll(txns)
	require.NoError(t, err)
	assert.Equal(t, "Téléphone", postings[0].Description)
	assert.False(t, postings[1].Matched)

	chart := balance.Mirror(accounts.DefaultChart())
	entries, err := Post(journal.New("BQ", "Banque", chart), postings)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "fr_20250115_VIRSEPAACM", entries[2].Document())

	for number, want := range map[string]string{
		"512": "-1128.34",
		"411": "1200",
		"471": "-23.17",
		"626": "-39.99",
		"627": "-8.50",
	} {
		b, err := chart.Get(number)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString(want).Equal(b.InnerBalance()), "%s: %s", number, b.InnerBalance())
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&SemicolonParser{}))
	assert.ErrorIs(t, r.Register(&SemicolonParser{}), ErrDuplicateFormat)

	for _, name := range []string{"fr", "FR", "Fr"} {
		p, err := r.Get(name)
		require.NoError(t, err, name)
		assert.Equal(t, "fr", p.Format())
	}

	p, err := r.Get("ofx")
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.ErrorContains(t, err, "known: fr")

	assert.Equal(t, []string{"chase", "fr"}, DefaultRegistry().Formats())
}

func TestScanAndMarkProcessed(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "import")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "processed"), 0o755))
	for _, name := range []string{"releve.csv", "RELEVE2.CSV", "notes.txt", filepath.Join("processed", "decembre.csv")} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(frHeader), 0o644))
	}

	files, err := Scan(root)
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
		assert.Equal(t, int64(len(frHeader)), f.Size)
	}
	assert.Equal(t, []string{"RELEVE2.CSV", "releve.csv"}, names)

	require.NoError(t, MarkProcessed(root, "releve.csv"))
	_, err = os.Stat(filepath.Join(dir, "processed", "releve.csv"))
	require.NoError(t, err)

	files, err = Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "RELEVE2.CSV", files[0].Name)

	assert.Error(t, MarkProcessed(root, "absent.csv"))
}

func TestScan_NoImportDir(t *testing.T) {
	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed_CreatesDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "import"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "import", "a.csv"), nil, 0o644))

	require.NoError(t, MarkProcessed(root, "a.csv"))
	info, err := os.Stat(filepath.Join(root, "import", "processed"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

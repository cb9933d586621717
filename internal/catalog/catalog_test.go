package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() Record {
	return Record{
		ID:          1,
		Name:        "Erling Haaland",
		Club:        "Man City",
		Position:    "Forward",
		Price:       14.0,
		TotalPoints: 150,
		Form:        6.5,
	}
}

func TestLoadDerivesExpectedPoints(t *testing.T) {
	cat, err := Load([]Record{validRecord()}, DeriveConfig{FormWeight: 2.0})
	require.NoError(t, err)
	require.Equal(t, 1, cat.Len())

	p, ok := cat.ByID(1)
	require.True(t, ok)
	assert.InDelta(t, 150+2.0*6.5, p.ExpectedPoints, 1e-9)
	assert.Equal(t, Forward, p.Position)
}

func TestLoadDerivationIsDeterministic(t *testing.T) {
	records := []Record{validRecord()}
	first, err := Load(records, DeriveConfig{FormWeight: 2.0})
	require.NoError(t, err)
	second, err := Load(records, DeriveConfig{FormWeight: 2.0})
	require.NoError(t, err)
	assert.Equal(t, first.Players(), second.Players())
}

func TestLoadRejectsNegativePrice(t *testing.T) {
	r := validRecord()
	r.Price = -0.5

	cat, err := Load([]Record{r}, DeriveConfig{FormWeight: 2.0})
	assert.Nil(t, cat)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 1, validationErr.RecordID)
}

func TestLoadRejectsMalformedRecords(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Record)
		field  string
	}{
		{"missing name", func(r *Record) { r.Name = "" }, "name"},
		{"missing club", func(r *Record) { r.Club = "" }, "club"},
		{"unknown position", func(r *Record) { r.Position = "Libero" }, "position"},
		{"bad id", func(r *Record) { r.ID = 0 }, "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(&r)
			cat, err := Load([]Record{r}, DeriveConfig{FormWeight: 2.0})
			assert.Nil(t, cat)
			var formatErr *DataFormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Equal(t, tt.field, formatErr.Field)
		})
	}
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	cat, err := Load([]Record{validRecord(), validRecord()}, DeriveConfig{FormWeight: 2.0})
	assert.Nil(t, cat)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, validRecord().ID, validationErr.RecordID)
}

func TestLoadRejectsNonAdjacentDuplicateIDs(t *testing.T) {
	a := validRecord()
	other := validRecord()
	other.ID = 9
	other.Name = "Mohamed Salah"
	other.Position = "Midfielder"
	dup := validRecord()
	dup.Name = "Same Player Again"

	cat, err := Load([]Record{a, other, dup}, DeriveConfig{FormWeight: 2.0})
	assert.Nil(t, cat)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, a.ID, validationErr.RecordID)
}

func TestLoadOrdersPlayersByID(t *testing.T) {
	a := validRecord()
	b := validRecord()
	b.ID = 9
	b.Name = "Mohamed Salah"
	b.Position = "Midfielder"
	c := validRecord()
	c.ID = 4
	c.Name = "William Saliba"
	c.Position = "Defender"

	cat, err := Load([]Record{b, c, a}, DeriveConfig{FormWeight: 2.0})
	require.NoError(t, err)

	var ids []int
	for _, p := range cat.Players() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int{1, 4, 9}, ids)
}

func TestCatalogAggregates(t *testing.T) {
	a := validRecord()
	b := validRecord()
	b.ID = 2
	b.Club = "Liverpool"
	b.Position = "Midfielder"

	cat, err := Load([]Record{a, b}, DeriveConfig{FormWeight: 2.0})
	require.NoError(t, err)

	assert.Equal(t, []string{"Liverpool", "Man City"}, cat.Clubs())
	counts := cat.CountByPosition()
	assert.Equal(t, 1, counts[Forward])
	assert.Equal(t, 1, counts[Midfielder])
}

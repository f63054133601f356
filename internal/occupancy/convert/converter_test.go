package convert

import (
	"testing"

	"github.com/farxc/fleet_occupancy/internal/occupancy/types"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDfToSnapshotRecords(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"Rac Rec", "Rac For"}, series.String, types.ColUnit),
		series.New([]string{"B", "H"}, series.String, types.ColGroup),
		series.New([]string{"Alugado", "Disponível"}, series.String, types.ColStatus),
		series.New([]string{"AAA1A11", "BBB2B22"}, series.String, types.ColPlate),
		series.New([]string{"01/03/2024", ""}, series.String, types.ColOrigin),
		series.New([]string{"Recife", "Fortaleza"}, series.String, "Cidade"),
	)
	require.NoError(t, df.Err)

	recs := DfToSnapshotRecords(df)
	require.Len(t, recs, 2)

	assert.Equal(t, types.SnapshotRecord{
		Unit:   "Rac Rec",
		Group:  "B",
		Status: "Alugado",
		Plate:  "AAA1A11",
		Origin: "01/03/2024",
		Extra:  map[string]string{"Cidade": "Recife"},
	}, recs[0])
	assert.True(t, recs[0].IsRented())
	assert.False(t, recs[1].IsRented())
	assert.Equal(t, "", recs[1].Origin)
}

func TestGetStrMissingColumn(t *testing.T) {
	df := dataframe.New(series.New([]string{"x"}, series.String, "A"))
	assert.Equal(t, "", GetStr("B", 0, &df))
	assert.Equal(t, "", GetStr("A", 0, nil))
}

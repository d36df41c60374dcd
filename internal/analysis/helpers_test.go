package analysis

import (
	"testing"

	"datadigest/adapters/datareadiness/coercer"
	"datadigest/domain/dataset"
	"datadigest/internal/testkit"

	"github.com/stretchr/testify/require"
)

var (
	num  = dataset.Number
	text = dataset.Text
	miss = dataset.Missing
)

func newDataset(t *testing.T, columns []string, types []dataset.ColumnType, rows ...[]dataset.Value) *dataset.Dataset {
	t.Helper()
	typeMap := make(map[string]dataset.ColumnType, len(columns))
	for i, col := range columns {
		typeMap[col] = types[i]
	}
	ds, err := dataset.NewDataset("test", columns, typeMap, rows)
	require.NoError(t, err)
	return ds
}

// regionSales is the three-row example: East 100, East 50, West 30
func regionSales(t *testing.T) *dataset.Dataset {
	return newDataset(t,
		[]string{"region", "sales"},
		[]dataset.ColumnType{dataset.TypeString, dataset.TypeNumber},
		[]dataset.Value{text("East"), num(100)},
		[]dataset.Value{text("East"), num(50)},
		[]dataset.Value{text("West"), num(30)},
	)
}

func generatedSales(t *testing.T, rows int) *dataset.Dataset {
	t.Helper()
	config := testkit.DefaultSalesConfig()
	config.Rows = rows
	records := testkit.NewSalesDataGenerator(config).GenerateRecords()

	ds, err := coercer.NewTypeCoercer(coercer.DefaultConfig()).BuildDataset("sales", testkit.SalesColumns, records, nil)
	require.NoError(t, err)
	return ds
}

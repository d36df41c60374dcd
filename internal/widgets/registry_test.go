package widgets

import (
	"testing"

	"datadigest/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_Names(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{
		"BarChart", "DataTable", "KPICard", "LineChart",
		"PieChart", "ScatterPlot", "StatCard", "TextBlock",
	}, r.Names())

	specs := r.Specs()
	require.Len(t, specs, 8)
	assert.Equal(t, "BarChart", specs[0].Name)

	spec, ok := r.Lookup("KPICard")
	require.True(t, ok)
	assert.Equal(t, "Display a key performance indicator with value and trend", spec.Description)

	_, ok = r.Lookup("Gauge")
	assert.False(t, ok)
}

func TestRegistry_NamesIsACopy(t *testing.T) {
	r := DefaultRegistry()
	names := r.Names()
	names[0] = "Mutated"
	assert.Equal(t, "BarChart", r.Names()[0])
}

func TestNewRegistry_Rejects(t *testing.T) {
	_, err := NewRegistry(Spec{Name: "A"}, Spec{Name: "A"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = NewRegistry(Spec{})
	require.Error(t, err)
}

func TestRegistry_Validate(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name    string
		in      Instruction
		wantErr string
	}{
		{
			name: "valid kpi",
			in:   Instruction{Name: "KPICard", Props: map[string]interface{}{"title": "Total", "value": 12.5, "color": "blue"}},
		},
		{
			name: "string value accepted",
			in:   Instruction{Name: "StatCard", Props: map[string]interface{}{"label": "Rows", "value": "1.2K"}},
		},
		{
			name:    "unknown widget",
			in:      Instruction{Name: "Gauge"},
			wantErr: `unknown widget "Gauge"`,
		},
		{
			name:    "missing required",
			in:      Instruction{Name: "TextBlock", Props: map[string]interface{}{"title": "x"}},
			wantErr: `missing required prop "content"`,
		},
		{
			name:    "wrong kind",
			in:      Instruction{Name: "LineChart", Props: map[string]interface{}{"title": "x", "xAxis": 1, "yAxis": "y"}},
			wantErr: `prop "xAxis" must be string`,
		},
		{
			name:    "outside enum",
			in:      Instruction{Name: "KPICard", Props: map[string]interface{}{"title": "x", "value": 1, "color": "teal"}},
			wantErr: `prop "color" must be one of`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Validate(tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
		})
	}
}

package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseField(t *testing.T) {
	field, err := ParseField("dataSources.inventory")
	require.NoError(t, err)
	assert.Equal(t, InventorySource, field)

	field, err = ParseField(" advancedSettings.exportFormat ")
	require.NoError(t, err)
	assert.Equal(t, ExportFormat, field)

	for _, raw := range []string{"", "darkMode", "preferences.", "preferences.theme", "advanced.exportFormat"} {
		_, err := ParseField(raw)
		assert.ErrorIs(t, err, ErrUnknownField, raw)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name    string
		field   Field
		raw     string
		want    any
		wantErr bool
	}{
		{name: "bool true", field: DarkMode, raw: "true", want: true},
		{name: "bool on", field: CompactView, raw: "on", want: true},
		{name: "bool zero", field: ERPSource, raw: "0", want: false},
		{name: "bool disconnected", field: ERPSource, raw: "disconnected", want: false},
		{name: "bool garbage", field: ERPSource, raw: "maybe", wantErr: true},
		{name: "option exact", field: DataRefreshInterval, raw: "15 minutes", want: "15 minutes"},
		{name: "option case folded", field: ExportFormat, raw: "csv", want: "CSV"},
		{name: "option with punctuation", field: MarginAlertThreshold, raw: "5% (conservative)", want: "5% (Conservative)"},
		{name: "option unknown", field: DefaultRegion, raw: "Midwest", wantErr: true},
		{name: "unknown field", field: Field{Group: GroupAdvanced, Key: "theme"}, raw: "dark", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue(tt.field, tt.raw)
			if tt.wantErr {
				var validationErr *ValidationError
				assert.ErrorAs(t, err, &validationErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldsCoverEveryGroup(t *testing.T) {
	counts := make(map[Group]int)
	for _, field := range Fields() {
		require.True(t, field.Valid(), field.String())
		counts[field.Group]++
	}

	assert.Equal(t, map[Group]int{
		GroupNotifications: 4,
		GroupDataSources:   TotalDataSources,
		GroupPreferences:   3,
		GroupAdvanced:      4,
	}, counts)
	assert.Len(t, Groups(), 4)
}

func TestWithFieldLeavesReceiverUntouched(t *testing.T) {
	base := Default()

	next, _, err := base.WithField(DefaultRegion, "Southwest")
	require.NoError(t, err)

	assert.Equal(t, "Northeast", base.Advanced.DefaultRegion)
	assert.Equal(t, "Southwest", next.Advanced.DefaultRegion)
}

func TestBundleGroup(t *testing.T) {
	values := Default().Group(GroupPreferences)

	assert.Equal(t, map[string]any{"autoRefresh": true, "darkMode": false, "compactView": false}, values)
}

package settings

// NotificationSettings toggles which dashboard alerts the user receives.
type NotificationSettings struct {
	MarginAlerts    bool `json:"marginAlerts" yaml:"marginAlerts"`
	TariffUpdates   bool `json:"tariffUpdates" yaml:"tariffUpdates"`
	SupplierChanges bool `json:"supplierChanges" yaml:"supplierChanges"`
	WeeklyReports   bool `json:"weeklyReports" yaml:"weeklyReports"`
}

// DataSourceSettings marks which upstream data sources are connected.
type DataSourceSettings struct {
	ERP       bool `json:"erp" yaml:"erp"`
	Pricing   bool `json:"pricing" yaml:"pricing"`
	Tariffs   bool `json:"tariffs" yaml:"tariffs"`
	Inventory bool `json:"inventory" yaml:"inventory"`
}

// TotalDataSources is the number of data sources a dashboard can connect.
const TotalDataSources = 4

// ConnectedCount returns the number of connected data sources.
func (d DataSourceSettings) ConnectedCount() int {
	count := 0
	for _, connected := range []bool{d.ERP, d.Pricing, d.Tariffs, d.Inventory} {
		if connected {
			count++
		}
	}

	return count
}

// PreferenceSettings stores view preferences.
type PreferenceSettings struct {
	AutoRefresh bool `json:"autoRefresh" yaml:"autoRefresh"`
	DarkMode    bool `json:"darkMode" yaml:"darkMode"`
	CompactView bool `json:"compactView" yaml:"compactView"`
}

// AdvancedSettings stores values picked from closed option lists, see Options.
type AdvancedSettings struct {
	MarginAlertThreshold string `json:"marginAlertThreshold" yaml:"marginAlertThreshold"`
	DataRefreshInterval  string `json:"dataRefreshInterval" yaml:"dataRefreshInterval"`
	DefaultRegion        string `json:"defaultRegion" yaml:"defaultRegion"`
	ExportFormat         string `json:"exportFormat" yaml:"exportFormat"`
}

// Bundle is the full set of persisted user settings.
type Bundle struct {
	Notifications NotificationSettings `json:"notifications" yaml:"notifications"`
	DataSources   DataSourceSettings   `json:"dataSources" yaml:"dataSources"`
	Preferences   PreferenceSettings   `json:"preferences" yaml:"preferences"`
	Advanced      AdvancedSettings     `json:"advancedSettings" yaml:"advancedSettings"`
}

func DefaultNotifications() NotificationSettings {
	return NotificationSettings{
		MarginAlerts:    true,
		TariffUpdates:   true,
		SupplierChanges: false,
		WeeklyReports:   true,
	}
}

func DefaultDataSources() DataSourceSettings {
	return DataSourceSettings{
		ERP:       true,
		Pricing:   true,
		Tariffs:   true,
		Inventory: false,
	}
}

func DefaultPreferences() PreferenceSettings {
	return PreferenceSettings{
		AutoRefresh: true,
		DarkMode:    false,
		CompactView: false,
	}
}

func DefaultAdvanced() AdvancedSettings {
	return AdvancedSettings{
		MarginAlertThreshold: "10% (Standard)",
		DataRefreshInterval:  "5 minutes",
		DefaultRegion:        "Northeast",
		ExportFormat:         "Excel (.xlsx)",
	}
}

// Default returns the bundle a new store starts with.
func Default() Bundle {
	return Bundle{
		Notifications: DefaultNotifications(),
		DataSources:   DefaultDataSources(),
		Preferences:   DefaultPreferences(),
		Advanced:      DefaultAdvanced(),
	}
}

// Validate reports the first advanced value outside its option list.
func (a AdvancedSettings) Validate() error {
	b := Bundle{Advanced: a}
	for _, field := range Fields() {
		if field.Group != GroupAdvanced {
			continue
		}
		value := *fieldSpecs[field].option(&b)
		if !field.Allows(value) {
			return &ValidationError{Field: field, Value: value, Err: ErrInvalidValue}
		}
	}

	return nil
}

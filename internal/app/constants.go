package app

const (
	Name               = "marginiq"
	DisplayName        = "MarginIQ"
	PreferencesAppID   = "io.marginiq.settings"
	ConfigFilename     = "config.json"
	DBFilename         = "settings.db"
	LogFilename        = "marginiq.log"
	DarkMarkerFilename = "dark"
)

package settings

import "time"

// Bus topics the store publishes on.
const (
	TopicLoaded            = "settings.loaded"
	TopicFieldChanged      = "settings.field_changed"
	TopicSaved             = "settings.saved"
	TopicSaveFailed        = "settings.save_failed"
	TopicReset             = "settings.reset"
	TopicUpdateCheckStart  = "settings.update_check.started"
	TopicUpdateCheckDone   = "settings.update_check.finished"
	TopicUpdateCheckFailed = "settings.update_check.failed"
)

// Publisher receives store events. It must not block for long.
type Publisher interface {
	Publish(topic string, msg any)
}

// LoadOutcome describes how Initialize produced the current bundle.
type LoadOutcome string

const (
	// LoadDefaults means no record was stored.
	LoadDefaults LoadOutcome = "defaults"
	// LoadLoaded means a stored record was reconciled into the bundle.
	LoadLoaded LoadOutcome = "loaded"
	// LoadRecovered means the record could not be read or parsed.
	LoadRecovered LoadOutcome = "recovered"
)

type Loaded struct {
	Outcome LoadOutcome
	Bundle  Bundle
}

type FieldChanged struct {
	Field  Field
	Value  any
	Effect Effect
}

type Saved struct {
	Bundle Bundle
	At     time.Time
}

type SaveFailed struct {
	Err error
}

type Reset struct {
	Bundle Bundle
}

type UpdateCheckStarted struct{}

type UpdateCheckFinished struct {
	Result UpdateResult
}

type UpdateCheckFailed struct {
	Err error
}

package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeResult is a bundle reconciled from a persisted record.
type DecodeResult struct {
	Bundle Bundle
	// Loaded lists groups taken from the record.
	Loaded []Group
	// Fallbacks holds groups that were present but unusable, with the reason.
	Fallbacks map[Group]error
}

type record struct {
	Notifications json.RawMessage `json:"notifications"`
	DataSources   json.RawMessage `json:"dataSources"`
	Preferences   json.RawMessage `json:"preferences"`
	Advanced      json.RawMessage `json:"advancedSettings"`
}

// Encode serializes the full bundle into the persisted record shape.
func Encode(b Bundle) (string, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("encode settings: %w", err)
	}

	return string(raw), nil
}

// Decode reconciles a persisted record with base one group at a time. A group
// present in the record replaces the base group wholesale (keys missing inside it
// take the group defaults). A group missing from the record, or null, keeps its
// value from base. A group that is present but cannot be decoded, or holds a
// value outside its option list, also keeps base and is reported in Fallbacks.
// Only a record that is not a JSON object at all is an error.
func Decode(raw string, base Bundle) (DecodeResult, error) {
	var rec record
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return DecodeResult{}, fmt.Errorf("%w: not a JSON object", ErrMalformedRecord)
	}
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return DecodeResult{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}

	res := DecodeResult{Bundle: base, Fallbacks: make(map[Group]error)}
	merge := func(group Group, data json.RawMessage, decode func(json.RawMessage) error) {
		if len(data) == 0 || bytes.Equal(data, []byte("null")) {
			return
		}
		if err := decode(data); err != nil {
			res.Fallbacks[group] = err
			return
		}
		res.Loaded = append(res.Loaded, group)
	}

	merge(GroupNotifications, rec.Notifications, func(data json.RawMessage) error {
		v := DefaultNotifications()
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		res.Bundle.Notifications = v
		return nil
	})
	merge(GroupDataSources, rec.DataSources, func(data json.RawMessage) error {
		v := DefaultDataSources()
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		res.Bundle.DataSources = v
		return nil
	})
	merge(GroupPreferences, rec.Preferences, func(data json.RawMessage) error {
		v := DefaultPreferences()
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		res.Bundle.Preferences = v
		return nil
	})
	merge(GroupAdvanced, rec.Advanced, func(data json.RawMessage) error {
		v := DefaultAdvanced()
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		if err := v.Validate(); err != nil {
			return err
		}
		res.Bundle.Advanced = v
		return nil
	})

	return res, nil
}

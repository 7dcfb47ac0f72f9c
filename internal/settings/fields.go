package settings

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Group names a settings group as it appears in the persisted record.
type Group string

const (
	GroupNotifications Group = "notifications"
	GroupDataSources   Group = "dataSources"
	GroupPreferences   Group = "preferences"
	GroupAdvanced      Group = "advancedSettings"
)

// Groups returns all groups in record order.
func Groups() []Group {
	return []Group{GroupNotifications, GroupDataSources, GroupPreferences, GroupAdvanced}
}

// Kind is the declared value type of a field.
type Kind int

const (
	KindBool Kind = iota + 1
	KindOption
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindOption:
		return "option"
	default:
		return "unknown"
	}
}

// Field addresses one setting inside a group.
type Field struct {
	Group Group
	Key   string
}

var (
	MarginAlerts    = Field{Group: GroupNotifications, Key: "marginAlerts"}
	TariffUpdates   = Field{Group: GroupNotifications, Key: "tariffUpdates"}
	SupplierChanges = Field{Group: GroupNotifications, Key: "supplierChanges"}
	WeeklyReports   = Field{Group: GroupNotifications, Key: "weeklyReports"}

	ERPSource       = Field{Group: GroupDataSources, Key: "erp"}
	PricingSource   = Field{Group: GroupDataSources, Key: "pricing"}
	TariffsSource   = Field{Group: GroupDataSources, Key: "tariffs"}
	InventorySource = Field{Group: GroupDataSources, Key: "inventory"}

	AutoRefresh = Field{Group: GroupPreferences, Key: "autoRefresh"}
	DarkMode    = Field{Group: GroupPreferences, Key: "darkMode"}
	CompactView = Field{Group: GroupPreferences, Key: "compactView"}

	MarginAlertThreshold = Field{Group: GroupAdvanced, Key: "marginAlertThreshold"}
	DataRefreshInterval  = Field{Group: GroupAdvanced, Key: "dataRefreshInterval"}
	DefaultRegion        = Field{Group: GroupAdvanced, Key: "defaultRegion"}
	ExportFormat         = Field{Group: GroupAdvanced, Key: "exportFormat"}
)

type fieldSpec struct {
	kind    Kind
	flag    func(*Bundle) *bool
	option  func(*Bundle) *string
	options []string
}

var fieldOrder = []Field{
	MarginAlerts, TariffUpdates, SupplierChanges, WeeklyReports,
	ERPSource, PricingSource, TariffsSource, InventorySource,
	AutoRefresh, DarkMode, CompactView,
	MarginAlertThreshold, DataRefreshInterval, DefaultRegion, ExportFormat,
}

var fieldSpecs = map[Field]fieldSpec{
	MarginAlerts:    boolSpec(func(b *Bundle) *bool { return &b.Notifications.MarginAlerts }),
	TariffUpdates:   boolSpec(func(b *Bundle) *bool { return &b.Notifications.TariffUpdates }),
	SupplierChanges: boolSpec(func(b *Bundle) *bool { return &b.Notifications.SupplierChanges }),
	WeeklyReports:   boolSpec(func(b *Bundle) *bool { return &b.Notifications.WeeklyReports }),

	ERPSource:       boolSpec(func(b *Bundle) *bool { return &b.DataSources.ERP }),
	PricingSource:   boolSpec(func(b *Bundle) *bool { return &b.DataSources.Pricing }),
	TariffsSource:   boolSpec(func(b *Bundle) *bool { return &b.DataSources.Tariffs }),
	InventorySource: boolSpec(func(b *Bundle) *bool { return &b.DataSources.Inventory }),

	AutoRefresh: boolSpec(func(b *Bundle) *bool { return &b.Preferences.AutoRefresh }),
	DarkMode:    boolSpec(func(b *Bundle) *bool { return &b.Preferences.DarkMode }),
	CompactView: boolSpec(func(b *Bundle) *bool { return &b.Preferences.CompactView }),

	MarginAlertThreshold: optionSpec(func(b *Bundle) *string { return &b.Advanced.MarginAlertThreshold },
		"5% (Conservative)", "10% (Standard)", "15% (Aggressive)"),
	DataRefreshInterval: optionSpec(func(b *Bundle) *string { return &b.Advanced.DataRefreshInterval },
		"1 minute", "5 minutes", "15 minutes", "30 minutes"),
	DefaultRegion: optionSpec(func(b *Bundle) *string { return &b.Advanced.DefaultRegion },
		"All Regions", "Northeast", "Southeast", "West", "Southwest"),
	ExportFormat: optionSpec(func(b *Bundle) *string { return &b.Advanced.ExportFormat },
		"Excel (.xlsx)", "CSV", "PDF", "JSON"),
}

func boolSpec(ref func(*Bundle) *bool) fieldSpec {
	return fieldSpec{kind: KindBool, flag: ref}
}

func optionSpec(ref func(*Bundle) *string, options ...string) fieldSpec {
	return fieldSpec{kind: KindOption, option: ref, options: options}
}

// Fields returns every valid field in record order.
func Fields() []Field {
	return slices.Clone(fieldOrder)
}

// ParseField parses the "group.key" notation used by the CLI.
func ParseField(raw string) (Field, error) {
	group, key, ok := strings.Cut(strings.TrimSpace(raw), ".")
	field := Field{Group: Group(group), Key: key}
	if !ok || !field.Valid() {
		return Field{}, &ValidationError{Field: field, Err: ErrUnknownField}
	}

	return field, nil
}

func (f Field) String() string {
	return string(f.Group) + "." + f.Key
}

func (f Field) Valid() bool {
	_, ok := fieldSpecs[f]
	return ok
}

func (f Field) Kind() Kind {
	return fieldSpecs[f].kind
}

// Options returns the allowed values of an option field, nil for other kinds.
func (f Field) Options() []string {
	return slices.Clone(fieldSpecs[f].options)
}

func (f Field) Allows(value string) bool {
	spec, ok := fieldSpecs[f]
	return ok && spec.kind == KindOption && slices.Contains(spec.options, value)
}

// ParseValue converts textual input into the field's declared type.
func ParseValue(field Field, raw string) (any, error) {
	spec, ok := fieldSpecs[field]
	if !ok {
		return nil, &ValidationError{Field: field, Value: raw, Err: ErrUnknownField}
	}

	switch spec.kind {
	case KindBool:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "on", "yes", "enabled", "connected":
			return true, nil
		case "off", "no", "disabled", "disconnected":
			return false, nil
		}
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, &ValidationError{Field: field, Value: raw, Err: fmt.Errorf("%w: expected a boolean", ErrInvalidValue)}
		}

		return v, nil
	default:
		value := strings.TrimSpace(raw)
		for _, option := range spec.options {
			if strings.EqualFold(option, value) {
				return option, nil
			}
		}

		return nil, &ValidationError{Field: field, Value: raw, Err: fmt.Errorf("%w: expected one of %q", ErrInvalidValue, spec.options)}
	}
}

// Value returns the current value of a field.
func (b Bundle) Value(field Field) (any, error) {
	spec, ok := fieldSpecs[field]
	if !ok {
		return nil, &ValidationError{Field: field, Err: ErrUnknownField}
	}
	if spec.kind == KindBool {
		return *spec.flag(&b), nil
	}

	return *spec.option(&b), nil
}

// WithField returns a copy of the bundle with one field replaced, plus the
// side effect the caller must apply. The receiver is never modified.
func (b Bundle) WithField(field Field, value any) (Bundle, Effect, error) {
	spec, ok := fieldSpecs[field]
	if !ok {
		return b, Effect{}, &ValidationError{Field: field, Value: value, Err: ErrUnknownField}
	}

	next := b
	switch spec.kind {
	case KindBool:
		v, ok := value.(bool)
		if !ok {
			return b, Effect{}, &ValidationError{Field: field, Value: value, Err: fmt.Errorf("%w: expected a boolean", ErrInvalidValue)}
		}
		*spec.flag(&next) = v
	case KindOption:
		v, ok := value.(string)
		if !ok || !slices.Contains(spec.options, v) {
			return b, Effect{}, &ValidationError{Field: field, Value: value, Err: fmt.Errorf("%w: expected one of %q", ErrInvalidValue, spec.options)}
		}
		*spec.option(&next) = v
	}

	return next, effectFor(field, value), nil
}

// Group returns the current values of one group keyed by field key.
func (b Bundle) Group(group Group) map[string]any {
	out := make(map[string]any)
	for _, field := range fieldOrder {
		if field.Group != group {
			continue
		}
		value, _ := b.Value(field)
		out[field.Key] = value
	}

	return out
}

package settings

// EffectKind identifies a side effect a field write asks the environment to perform.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectAddDarkMarker
	EffectRemoveDarkMarker
)

func (k EffectKind) String() string {
	switch k {
	case EffectAddDarkMarker:
		return "add-dark-marker"
	case EffectRemoveDarkMarker:
		return "remove-dark-marker"
	default:
		return "none"
	}
}

// Effect describes work outside the bundle that must follow a state transition.
type Effect struct {
	Kind EffectKind
}

func (e Effect) None() bool {
	return e.Kind == EffectNone
}

func effectFor(field Field, value any) Effect {
	if field != DarkMode {
		return Effect{}
	}
	if dark, _ := value.(bool); dark {
		return Effect{Kind: EffectAddDarkMarker}
	}

	return Effect{Kind: EffectRemoveDarkMarker}
}

// ThemeMarker toggles the global dark marker the rest of the UI reads.
type ThemeMarker interface {
	Add()
	Remove()
}

// ApplyEffect performs the effect against a theme marker.
func ApplyEffect(marker ThemeMarker, effect Effect) {
	if marker == nil {
		return
	}

	switch effect.Kind {
	case EffectAddDarkMarker:
		marker.Add()
	case EffectRemoveDarkMarker:
		marker.Remove()
	}
}

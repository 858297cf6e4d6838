package catalog

// Category is a behavioral observation area.
type Category string

const (
	CategoryEyeContact         Category = "eye-contact"
	CategorySocialInteraction  Category = "social-interaction"
	CategoryCommunication      Category = "communication"
	CategoryRepetitiveBehavior Category = "repetitive-behavior"
	CategorySensorySensitivity Category = "sensory-sensitivity"
	CategoryFocusAttention     Category = "focus-attention"
)

// AllCategories returns every category in display order.
func AllCategories() []Category {
	return []Category{
		CategoryEyeContact,
		CategorySocialInteraction,
		CategoryCommunication,
		CategoryRepetitiveBehavior,
		CategorySensorySensitivity,
		CategoryFocusAttention,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryEyeContact, CategorySocialInteraction, CategoryCommunication,
		CategoryRepetitiveBehavior, CategorySensorySensitivity, CategoryFocusAttention:
		return true
	}
	return false
}

// DisplayName returns a human-readable name for the category.
func (c Category) DisplayName() string {
	switch c {
	case CategoryEyeContact:
		return "Eye Contact"
	case CategorySocialInteraction:
		return "Social Interaction"
	case CategoryCommunication:
		return "Communication"
	case CategoryRepetitiveBehavior:
		return "Repetitive Behavior"
	case CategorySensorySensitivity:
		return "Sensory Sensitivity"
	case CategoryFocusAttention:
		return "Focus & Attention"
	default:
		return string(c)
	}
}

// Icon returns the display icon for the category.
func (c Category) Icon() string {
	switch c {
	case CategoryEyeContact:
		return "👀"
	case CategorySocialInteraction:
		return "🤝"
	case CategoryCommunication:
		return "💬"
	case CategoryRepetitiveBehavior:
		return "🔁"
	case CategorySensorySensitivity:
		return "🎧"
	case CategoryFocusAttention:
		return "🎯"
	default:
		return "•"
	}
}

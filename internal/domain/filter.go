package domain

// FieldCondition is an equality condition on a single event field.
// A nil Eq value matches nothing: a subscriber that filtered on an absent
// argument receives no events rather than all of them.
type FieldCondition struct {
	Field string `json:"field"`
	Eq    any    `json:"eq"`
}

// SubscriptionFilter narrows which published events are delivered to a
// subscriber. Conditions are combined with AND. The zero filter matches
// every event.
type SubscriptionFilter struct {
	Conditions []FieldCondition `json:"conditions,omitempty"`
}

// Matches reports whether the given event fields satisfy every condition.
func (f SubscriptionFilter) Matches(fields map[string]any) bool {
	for _, c := range f.Conditions {
		if c.Eq == nil {
			return false
		}
		v, ok := fields[c.Field]
		if !ok || v != c.Eq {
			return false
		}
	}
	return true
}

// IsZero reports whether the filter has no conditions.
func (f SubscriptionFilter) IsZero() bool {
	return len(f.Conditions) == 0
}

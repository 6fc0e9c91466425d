package selection

// Policy decides what an explicit dish select does to the dish's slots
type Policy int

const (
	// PolicyDefaultOriginals switches on the original form of every
	// ingredient when a dish is selected with ToggleDish.
	PolicyDefaultOriginals Policy = iota
	// PolicyLeaveEmpty selects the dish with no active slots.
	PolicyLeaveEmpty
)

// PolicyFor maps the configuration flag to a policy
func PolicyFor(defaultOriginals bool) Policy {
	if defaultOriginals {
		return PolicyDefaultOriginals
	}
	return PolicyLeaveEmpty
}

func (p Policy) String() string {
	switch p {
	case PolicyLeaveEmpty:
		return "leave_empty"
	default:
		return "default_originals"
	}
}

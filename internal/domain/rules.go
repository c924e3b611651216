package domain

// CollisionRule maps a set of narrative keywords to a collision type.
type CollisionRule struct {
	Type     CollisionType
	Keywords []string
}

// Rules holds the keyword tables used by normalization and geocoding.
// CollisionRules are evaluated in order and the first match wins.
type Rules struct {
	Prefixes       []string
	CollisionRules []CollisionRule
}

// DefaultRules returns the built-in address prefixes and collision keywords.
func DefaultRules() Rules {
	return Rules{
		Prefixes: []string{
			"Parking lot at ",
			"Underground parking lot at ",
			"Back parking lot of ",
			"Westbound ",
			"Eastbound ",
			"Northbound ",
			"Southbound ",
		},
		CollisionRules: []CollisionRule{
			{Type: CollisionRearEnd, Keywords: []string{"rear-end", "rear end"}},
			{Type: CollisionSideswipe, Keywords: []string{"side-swipe", "sideswipe", "brush"}},
			{Type: CollisionStationaryObject, Keywords: []string{"stationary object", "parked"}},
			{Type: CollisionBroadside, Keywords: []string{"broadside", "t-bone"}},
		},
	}
}

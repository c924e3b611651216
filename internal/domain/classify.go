package domain

import "strings"

// Person is the subset of a listed person the severity rule reads.
type Person struct {
	Deceased bool
	Injured  bool
}

// ClassifySeverity derives the report severity from the listed persons.
// Any deceased person makes it a fatality regardless of anyone's injury flag.
func ClassifySeverity(persons []Person) Severity {
	var injured bool
	for _, p := range persons {
		if p.Deceased {
			return SeverityFatality
		}
		if p.Injured {
			injured = true
		}
	}
	if injured {
		return SeverityInjury
	}
	return SeverityPropertyDamage
}

// ClassifyCollision scans the narrative and property damage description for
// the first rule whose keyword appears (case-insensitive). Unmatched text is
// CollisionOther.
func ClassifyCollision(rules []CollisionRule, narrative, propertyDamage string) CollisionType {
	text := strings.ToLower(narrative) + " " + strings.ToLower(propertyDamage)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(text, strings.ToLower(kw)) {
				return rule.Type
			}
		}
	}
	return CollisionOther
}

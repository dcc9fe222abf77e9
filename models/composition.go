package models

// RequiredAreas are the areas every non-empty project member set must cover.
var RequiredAreas = []AreaName{AreaGestao, AreaBackend, AreaFrontend}

// MissingAreas reports which required areas are not present among areaNames,
// the flattened list of area names across a project's members. Duplicates are
// fine, order is irrelevant. The result is in RequiredAreas order.
func MissingAreas(areaNames []AreaName) []AreaName {
	seen := make(map[AreaName]bool, len(areaNames))
	for _, name := range areaNames {
		seen[name] = true
	}

	var missing []AreaName
	for _, required := range RequiredAreas {
		if !seen[required] {
			missing = append(missing, required)
		}
	}
	return missing
}

// ValidComposition reports whether a project with memberCount members whose
// combined areas are areaNames satisfies the composition rule. A project with
// zero members is exempt; "no members" is not the same thing as "members with
// no areas", so the exemption is keyed on the member count.
func ValidComposition(memberCount int, areaNames []AreaName) bool {
	if memberCount == 0 {
		return true
	}
	return len(MissingAreas(areaNames)) == 0
}

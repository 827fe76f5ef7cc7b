package service

// CurrentAssignment is the diff calculator's view of one persisted assignment.
type CurrentAssignment struct {
	Code    string
	Special bool
}

// SpecialFlip records an in-place special flag change for a retained course.
type SpecialFlip struct {
	Code    string
	Special bool
}

// AssignmentDiff captures everything that must change to move the persisted
// assignment set to the desired one. ToAdd preserves desired order, ToRemove
// preserves current order, and the two never intersect.
type AssignmentDiff struct {
	ToAdd        []string
	ToRemove     []string
	SpecialFlips []SpecialFlip

	SpecialAdded   int
	SpecialRemoved int
}

// AddedCount returns the number of assignments to create.
func (d AssignmentDiff) AddedCount() int { return len(d.ToAdd) }

// RemovedCount returns the number of assignments to destroy.
func (d AssignmentDiff) RemovedCount() int { return len(d.ToRemove) }

// ComputeAssignmentDiff compares the desired course-code set (with its special
// subset) against the current assignments. Pure function: no side effects,
// deterministic for identical inputs. An empty desired set removes everything.
func ComputeAssignmentDiff(desired, special []string, current []CurrentAssignment) AssignmentDiff {
	desired = dedupe(desired)

	specialSet := make(map[string]struct{}, len(special))
	for _, code := range special {
		specialSet[code] = struct{}{}
	}

	currentByCode := make(map[string]CurrentAssignment, len(current))
	for _, assignment := range current {
		currentByCode[assignment.Code] = assignment
	}
	desiredSet := make(map[string]struct{}, len(desired))
	for _, code := range desired {
		desiredSet[code] = struct{}{}
	}

	var diff AssignmentDiff
	for _, code := range desired {
		_, wantSpecial := specialSet[code]
		existing, assigned := currentByCode[code]
		if !assigned {
			diff.ToAdd = append(diff.ToAdd, code)
			if wantSpecial {
				diff.SpecialAdded++
			}
			continue
		}
		if existing.Special != wantSpecial {
			diff.SpecialFlips = append(diff.SpecialFlips, SpecialFlip{Code: code, Special: wantSpecial})
			if wantSpecial {
				diff.SpecialAdded++
			} else {
				diff.SpecialRemoved++
			}
		}
	}

	for _, assignment := range current {
		if _, keep := desiredSet[assignment.Code]; keep {
			continue
		}
		diff.ToRemove = append(diff.ToRemove, assignment.Code)
		if assignment.Special {
			diff.SpecialRemoved++
		}
	}

	return diff
}

func dedupe(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	result := make([]string, 0, len(codes))
	for _, code := range codes {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		result = append(result, code)
	}
	return result
}

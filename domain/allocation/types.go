package allocation

// MaxPoolSize bounds a single group and the sum of all groups in one randomization.
// Keep the lte tag on GroupDefinition.Size in step with it.
const MaxPoolSize = 1 << 24

// GroupDefinition is a named arm of a study with its target sample size.
type GroupDefinition struct {
	Name string `json:"name" db:"name" validate:"required"`
	Size int    `json:"size" db:"size" validate:"gte=1,lte=16777216"`
}

// Record pairs an anonymized participant identifier with the group it was allocated to.
type Record struct {
	ParticipantID int    `json:"participant_id"`
	GroupName     string `json:"group_name"`
}

// Result is the outcome of a single randomization. It is immutable once produced.
type Result struct {
	Allocations []Record          `json:"allocations"`
	Seed        Seed              `json:"seed"`
	Groups      []GroupDefinition `json:"groups"`
}

// Total returns the number of allocated participants
func (r *Result) Total() int {
	return len(r.Allocations)
}

// Counts returns the number of participants allocated to each group name
func (r *Result) Counts() map[string]int {
	counts := make(map[string]int, len(r.Groups))
	for _, rec := range r.Allocations {
		counts[rec.GroupName]++
	}
	return counts
}

// ParticipantIDs returns the participant IDs allocated to the named group, in allocation order
func (r *Result) ParticipantIDs(groupName string) []int {
	var ids []int
	for _, rec := range r.Allocations {
		if rec.GroupName == groupName {
			ids = append(ids, rec.ParticipantID)
		}
	}
	return ids
}

// TotalSize sums the declared sizes of the given definitions
func TotalSize(groups []GroupDefinition) int {
	total := 0
	for _, g := range groups {
		total += g.Size
	}
	return total
}

// GroupNames returns the distinct group names in first-seen order
func GroupNames(groups []GroupDefinition) []string {
	seen := make(map[string]bool, len(groups))
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		if seen[g.Name] {
			continue
		}
		seen[g.Name] = true
		names = append(names, g.Name)
	}
	return names
}

package setlist

import (
	"slices"
	"strings"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/samber/lo"
)

// MedleyGroup is a derived view of the entries sharing one medley number.
type MedleyGroup struct {
	Number  int                   `json:"number"`
	Entries []models.SetlistEntry `json:"entries"`
}

// Label joins the member song names in playback order, e.g. "Song A + Song B".
func (g MedleyGroup) Label() string {
	names := lo.Map(g.Entries, func(e models.SetlistEntry, _ int) string { return e.Song.Name })
	return strings.Join(names, " + ")
}

// MedleyGroups returns every group in use, ascending by number, each with its members in order.
func (s Setlist) MedleyGroups() []MedleyGroup {
	medleys := lo.Filter(s.entries, func(e models.SetlistEntry, _ int) bool { return e.IsMedley })
	byGroup := lo.GroupBy(medleys, func(e models.SetlistEntry) int { return e.MedleyGroup })

	groups := make([]MedleyGroup, 0, len(byGroup))
	for _, n := range s.groupNumbers() {
		groups = append(groups, MedleyGroup{Number: n, Entries: byGroup[n]})
	}
	return groups
}

// Group returns the medley with the given number.
func (s Setlist) Group(number int) (MedleyGroup, bool) {
	return lo.Find(s.MedleyGroups(), func(g MedleyGroup) bool { return g.Number == number })
}

// groupNumbers lists the distinct group numbers in use, ascending.
func (s Setlist) groupNumbers() []int {
	medleys := lo.Filter(s.entries, func(e models.SetlistEntry, _ int) bool { return e.IsMedley && e.MedleyGroup != 0 })
	numbers := lo.Uniq(lo.Map(medleys, func(e models.SetlistEntry, _ int) int { return e.MedleyGroup }))
	slices.Sort(numbers)
	return numbers
}

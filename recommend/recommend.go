package recommend

import (
	"cmp"
	"slices"

	"github.com/puoklam/intersection-backend/db/model"
)

const (
	DefaultLimit = 20

	schoolWeight    = 50
	regionWeight    = 30
	admissionWeight = 15
	birthWeight     = 10
	yearTolerance   = 1
)

type Profile struct {
	ID            uint
	SchoolName    string
	Region        string
	AdmissionYear int
	BirthYear     int
}

func FromUser(u *model.User) Profile {
	return Profile{
		ID:            u.ID,
		SchoolName:    u.SchoolName,
		Region:        u.Region,
		AdmissionYear: u.AdmissionYear,
		BirthYear:     u.BirthYear,
	}
}

type Scored struct {
	User  model.User
	Score int
}

func Score(me, c Profile) int {
	score := 0
	if c.SchoolName == me.SchoolName {
		score += schoolWeight
	}
	if c.Region == me.Region {
		score += regionWeight
	}
	if within(c.AdmissionYear, me.AdmissionYear) {
		score += admissionWeight
	}
	if within(c.BirthYear, me.BirthYear) {
		score += birthWeight
	}
	return score
}

func within(a, b int) bool {
	d := a - b
	return d >= -yearTolerance && d <= yearTolerance
}

// Rank scores candidates against me and returns at most limit of them.
// The requester is skipped if present; limit <= 0 means DefaultLimit.
func Rank(me *model.User, candidates []model.User, limit int) []Scored {
	if limit <= 0 {
		limit = DefaultLimit
	}
	p := FromUser(me)
	scored := make([]Scored, 0, len(candidates))
	for i := range candidates {
		if candidates[i].ID == me.ID {
			continue
		}
		scored = append(scored, Scored{User: candidates[i], Score: Score(p, FromUser(&candidates[i]))})
	}
	slices.SortFunc(scored, func(a, b Scored) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.User.ID, b.User.ID)
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

func Users(scored []Scored) []model.User {
	users := make([]model.User, len(scored))
	for i, s := range scored {
		users[i] = s.User
	}
	return users
}

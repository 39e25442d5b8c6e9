// Package recommend ranks candidate users by how much of their school
// profile they share with the requester.
//
// Each candidate scores
//
//	+50 when the school name matches exactly
//	+30 when the region matches exactly
//	+15 when admission years are at most one apart
//	+10 when birth years are at most one apart
//
// Candidates are ordered by score, highest first, and equal scores by
// ascending user id, so the same inputs always produce the same ranking.
package recommend

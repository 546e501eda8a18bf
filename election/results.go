// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"math"
	"sort"
	"time"

	"github.com/rtvote/rtvote-server/models"
)

const hiddenResultsMessage = "Results are available after you vote or when the election ends"

// BuildResults ranks candidates by votes. For the AllSubDistricts scope the
// candidates are split per sub-district, since each one elects its own head.
// Tallies are withheld until the viewer has voted or the election ended.
// The winner is only named once the election ended.
func BuildResults(candidates []models.Candidate, s models.ElectionSettings, subDistrict string, hasVoted bool, now time.Time) models.ResultsResponse {
	resp := models.ResultsResponse{
		Visible:     ResultsVisible(s, hasVoted, now),
		Ended:       Ended(s, now),
		SubDistrict: subDistrict,
	}
	if !resp.Visible {
		resp.Message = hiddenResultsMessage
		return resp
	}

	if subDistrict != models.AllSubDistricts {
		tally(&resp, candidates)
		return resp
	}

	groups := make(map[string][]models.Candidate)
	for _, c := range candidates {
		groups[c.SubDistrict] = append(groups[c.SubDistrict], c)
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	resp.SubDistricts = make([]models.ResultsResponse, 0, len(names))
	for _, name := range names {
		group := models.ResultsResponse{
			Visible:     true,
			Ended:       resp.Ended,
			SubDistrict: name,
		}
		tally(&group, groups[name])
		resp.TotalVotes += group.TotalVotes
		resp.SubDistricts = append(resp.SubDistricts, group)
	}
	return resp
}

// tally fills in the tallies, ranks and winner of a single sub-district
func tally(resp *models.ResultsResponse, candidates []models.Candidate) {
	sorted := make([]models.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Votes != sorted[j].Votes {
			return sorted[i].Votes > sorted[j].Votes
		}
		return sorted[i].Name < sorted[j].Name
	})

	for _, c := range sorted {
		resp.TotalVotes += c.Votes
	}

	resp.Candidates = make([]models.CandidateTally, len(sorted))
	for i, c := range sorted {
		rank := i + 1
		// Equal tallies share a rank
		if i > 0 && c.Votes == sorted[i-1].Votes {
			rank = resp.Candidates[i-1].Rank
		}
		resp.Candidates[i] = models.CandidateTally{
			CandidateID: c.ID,
			Name:        c.Name,
			PhotoURL:    c.PhotoURL,
			Votes:       c.Votes,
			Percentage:  percentage(c.Votes, resp.TotalVotes),
			Rank:        rank,
		}
	}

	if resp.Ended && len(resp.Candidates) > 0 {
		winner := resp.Candidates[0]
		resp.Winner = &winner
	}
}

// percentage rounds to one decimal place
func percentage(votes, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(votes)*1000/float64(total)) / 10
}

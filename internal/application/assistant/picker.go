package assistant

import (
	"github.com/mediclic/vademecum-ai/internal/domain/match"
	"github.com/mediclic/vademecum-ai/internal/domain/record"
	"github.com/mediclic/vademecum-ai/internal/domain/section"
)

// drugGroup is every retrieved fragment of one drug, in retrieval order.
type drugGroup struct {
	key     string
	records []record.Record
}

// groupByDrug partitions records by drug identity key, preserving the order
// in which drugs first appeared. Fragments of different drugs never mix
// inside a group, which is what keeps answers single-sourced.
func groupByDrug(records []record.Record) []drugGroup {
	index := make(map[string]int)
	var groups []drugGroup
	for _, r := range records {
		key := r.DrugKey()
		if key == "|" || key == "" {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, drugGroup{key: key})
		}
		groups[i].records = append(groups[i].records, r)
	}
	return groups
}

// pickBestGroup chooses the drug group closest to the query name by token
// set similarity of the group's names. The maximum-scoring group wins; ties
// keep the earliest group, so retrieval order is the final tie-break. Name
// precision is enforced by the retrieval queries, which only surface records
// whose name fields matched the hint, so a low-scoring sole group (a drug
// stored under its generic name) still answers.
func pickBestGroup(groups []drugGroup, queryName string) (drugGroup, bool) {
	if len(groups) == 0 {
		return drugGroup{}, false
	}
	if queryName == "" {
		return groups[0], true
	}

	best, bestScore := 0, -1.0
	for i, g := range groups {
		score := 0.0
		for _, r := range g.records {
			if s := match.TokenSetRatio(queryName, r.NameBlob()); s > score {
				score = s
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return groups[best], true
}

// pickBestRecord chooses the fragment of a group to answer from. preferred
// is the section the query asked about; records of that section outrank all
// others, then the default section order applies, then records that carry
// prose beat records that do not.
func pickBestRecord(g drugGroup, preferred section.Section) (record.Record, bool) {
	if len(g.records) == 0 {
		return record.Record{}, false
	}

	bestIdx, bestRank := -1, 0
	for i, r := range g.records {
		rank := recordRank(r, preferred)
		if bestIdx == -1 || rank < bestRank {
			bestIdx, bestRank = i, rank
		}
	}
	return g.records[bestIdx], true
}

// recordRank orders records: lower is better. Preferred-section records with
// text rank first, then default section order, with textless records pushed
// behind every record that has prose.
func recordRank(r record.Record, preferred section.Section) int {
	rank := section.DefaultPriority(r.Section)
	if preferred != "" && r.Section == preferred {
		rank = -1
	}
	if !r.HasText() {
		rank += 100
	}
	return rank
}

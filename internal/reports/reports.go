// Package reports derives read-only views from the current vehicle list.
// Every function here is a pure derivation: same input, same output, nothing
// cached and nothing stored.
package reports

import (
	"sort"
	"strings"

	"github.com/mzjcars/stockdesk/internal/models"
)

// InventoryGroup is one (car, variant, modelYear) bucket with its unit count.
type InventoryGroup struct {
	Car       string `json:"car"`
	Variant   string `json:"variant"`
	ModelYear string `json:"modelYear"`
	Count     int    `json:"count"`
}

// GroupedInventory buckets the whole vehicle list by model, variant and year.
// Output order is stable so repeated derivations compare equal.
func GroupedInventory(stock []models.VehicleRecord) []InventoryGroup {
	byKey := make(map[string]*InventoryGroup)
	for _, v := range stock {
		key := strings.Join([]string{v.Car, v.Variant, v.ModelYear}, "|")
		g, ok := byKey[key]
		if !ok {
			g = &InventoryGroup{Car: v.Car, Variant: v.Variant, ModelYear: v.ModelYear}
			byKey[key] = g
		}
		g.Count++
	}

	groups := make([]InventoryGroup, 0, len(byKey))
	for _, g := range byKey {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.Car != b.Car {
			return a.Car < b.Car
		}
		if a.Variant != b.Variant {
			return a.Variant < b.Variant
		}
		return a.ModelYear < b.ModelYear
	})
	return groups
}

// Combination is the full visual spec a branch either stocks or lacks.
type Combination struct {
	Car       string `json:"car"`
	Variant   string `json:"variant"`
	IntColor  string `json:"intColor"`
	ExtColor  string `json:"extColor"`
	ModelYear string `json:"modelYear"`
}

func (c Combination) key() string {
	return strings.Join([]string{c.Car, c.Variant, c.IntColor, c.ExtColor, c.ModelYear}, "|")
}

// Shortage flags one branch missing one combination that is physically on the
// ground somewhere else.
type Shortage struct {
	Combination
	Branch models.Site `json:"branch"`
}

// BranchShortages reports, across exactly the three branches, every
// (combination, branch) pair where the branch holds zero units of a
// combination that exists elsewhere in physically-present stock. Only actual
// rows at available/with-notes locations count; sold and in-transit rows are
// out of the denominator.
func BranchShortages(stock []models.VehicleRecord) []Shortage {
	type tally struct {
		combo    Combination
		byBranch map[models.Site]int
	}
	byKey := make(map[string]*tally)
	var order []string

	for _, v := range stock {
		if !v.IsActualRow() || !v.Location.IsPhysicallyPresent() {
			continue
		}
		combo := Combination{Car: v.Car, Variant: v.Variant, IntColor: v.IntColor, ExtColor: v.ExtColor, ModelYear: v.ModelYear}
		key := combo.key()
		tl, ok := byKey[key]
		if !ok {
			tl = &tally{combo: combo, byBranch: make(map[models.Site]int)}
			byKey[key] = tl
			order = append(order, key)
		}
		tl.byBranch[v.Location.Site()]++
	}
	sort.Strings(order)

	var shortages []Shortage
	for _, key := range order {
		tl := byKey[key]
		for _, branch := range models.BranchSites {
			if tl.byBranch[branch] == 0 {
				shortages = append(shortages, Shortage{Combination: tl.combo, Branch: branch})
			}
		}
	}
	return shortages
}

// LiveTotals splits live stock between agency-held and dealership-held units.
type LiveTotals struct {
	Total      int `json:"total"`
	Live       int `json:"live"`
	Agency     int `json:"agency"`
	Dealership int `json:"dealership"`
}

// LiveStockTotals counts records not yet in a terminal sold state, split by
// the agency location prefix.
func LiveStockTotals(stock []models.VehicleRecord) LiveTotals {
	totals := LiveTotals{Total: len(stock)}
	for _, v := range stock {
		if !v.Location.IsLive() {
			continue
		}
		totals.Live++
		if v.Location.IsAgency() {
			totals.Agency++
		} else {
			totals.Dealership++
		}
	}
	return totals
}

// DashboardStats is the stat block the central dashboard renders.
type DashboardStats struct {
	Total        int `json:"total"`
	Available    int `json:"available"`
	Pending      int `json:"pending"`
	Delivered    int `json:"delivered"`
	Agency       int `json:"agency"`
	Moves        int `json:"moves"`
	OpenRequests int `json:"openRequests"`
}

// Stats derives the dashboard counters from one aggregate snapshot plus the
// open request list.
func Stats(state models.StockState, requests []models.Request) DashboardStats {
	stats := DashboardStats{Total: len(state.Stock), Moves: len(state.Moves)}
	for _, v := range state.Stock {
		switch {
		case v.Location.IsSoldPending():
			stats.Pending++
		case !v.Location.IsLive():
			stats.Delivered++
		}
		if v.Location.IsAgency() {
			stats.Agency++
		}
		if !v.Location.IsSoldOrAgency() {
			stats.Available++
		}
	}
	for _, r := range requests {
		if r.Status != models.RequestComplete {
			stats.OpenRequests++
		}
	}
	return stats
}

package models

import "strings"

// Site is the physical place part of a location ("Warehouse", "Branch 1 Showroom", ...).
type Site string

const (
	SiteWarehouse Site = "Warehouse"
	SiteAgency    Site = "Agency"
	SiteBranch1   Site = "Branch 1 Showroom"
	SiteBranch2   Site = "Branch 2 Almultaqa"
	SiteBranch3   Site = "Branch 3 Qadisiyah"
)

// LocationStatus is the pipeline status part of a location.
type LocationStatus string

const (
	StatusAvailable     LocationStatus = "Available Stock"
	StatusWithNotes     LocationStatus = "Cars With Notes"
	StatusSoldPending   LocationStatus = "Sold - Pending Handover"
	StatusSoldDelivered LocationStatus = "Sold - Delivered"
)

// Location is one of the twenty fixed "site : status" strings every
// location-valued field must draw from. Any other value is invalid input.
type Location string

// Sites in display order.
var Sites = []Site{SiteWarehouse, SiteAgency, SiteBranch1, SiteBranch2, SiteBranch3}

// BranchSites are the three named branches the shortage report spans.
var BranchSites = []Site{SiteBranch1, SiteBranch2, SiteBranch3}

// Statuses in the order they appear within each site.
var Statuses = []LocationStatus{StatusAvailable, StatusWithNotes, StatusSoldPending, StatusSoldDelivered}

// FixedLocations is the closed taxonomy: every site crossed with every status.
var FixedLocations = buildFixedLocations()

func buildFixedLocations() []Location {
	locs := make([]Location, 0, len(Sites)*len(Statuses))
	for _, site := range Sites {
		for _, status := range Statuses {
			locs = append(locs, MakeLocation(site, status))
		}
	}
	return locs
}

// MakeLocation joins a site and status into the canonical location string.
func MakeLocation(site Site, status LocationStatus) Location {
	return Location(string(site) + " : " + string(status))
}

// IsValid reports whether l is a member of the fixed location set.
func (l Location) IsValid() bool {
	for _, fixed := range FixedLocations {
		if l == fixed {
			return true
		}
	}
	return false
}

// Site returns the site part of the location, or "" if the separator is missing.
func (l Location) Site() Site {
	if i := strings.Index(string(l), " : "); i >= 0 {
		return Site(l[:i])
	}
	return ""
}

// Status returns the status part of the location, or "" if the separator is missing.
func (l Location) Status() LocationStatus {
	if i := strings.Index(string(l), " : "); i >= 0 {
		return LocationStatus(l[i+3:])
	}
	return ""
}

// soldOrAgencyStates drive the "hidden from live views" membership test. The
// agency entry matches the site prefix while the other two match statuses, so
// membership is a substring test, not a status comparison.
var soldOrAgencyStates = []string{
	string(StatusSoldPending),
	string(StatusSoldDelivered),
	string(SiteAgency),
}

// IsSoldOrAgency reports whether the location is a sold state or an agency site.
func (l Location) IsSoldOrAgency() bool {
	for _, s := range soldOrAgencyStates {
		if strings.Contains(string(l), s) {
			return true
		}
	}
	return false
}

// IsSoldPending reports whether the location is the "sold, pending handover"
// state that gates dual approval.
func (l Location) IsSoldPending() bool {
	return strings.Contains(string(l), string(StatusSoldPending))
}

// IsLive reports whether a vehicle at this location still counts as live stock
// (anything not yet delivered).
func (l Location) IsLive() bool {
	return !strings.Contains(string(l), string(StatusSoldDelivered))
}

// IsAgency reports whether the location belongs to the agency site.
func (l Location) IsAgency() bool {
	return strings.HasPrefix(string(l), string(SiteAgency))
}

// IsPhysicallyPresent reports whether a vehicle at this location is actually
// sitting on a lot: available or flagged-with-notes, not in a sold pipeline
// state. The shortage report only counts physically present rows.
func (l Location) IsPhysicallyPresent() bool {
	st := l.Status()
	return st == StatusAvailable || st == StatusWithNotes
}

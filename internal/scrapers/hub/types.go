package hub

import (
	"hubsync-backend/lib/htmlutil"
	"time"
)

// Link is an anchor with an absolute href.
type Link = htmlutil.Anchor

type LocationMode string

const (
	LocationVirtual  LocationMode = "Virtual"
	LocationInPerson LocationMode = "In-Person"
	LocationHybrid   LocationMode = "In-Person & Virtual"
)

// EventRecord is one meeting the member is registered for.
type EventRecord struct {
	EventName   string       `json:"eventName"`
	Location    LocationMode `json:"location"`
	MonthYear   string       `json:"monthYear"`
	StartDate   string       `json:"startDate"`
	EndDate     string       `json:"endDate"`
	Timezone    string       `json:"timezone"`
	EventType   string       `json:"eventType"`
	GuestStatus string       `json:"guestStatus"`
}

// Key identifies a registration, the same meeting shows up on several
// pages when the portal reshuffles during pagination.
func (e EventRecord) Key() string {
	return e.EventName + "|" + e.StartDate
}

type Registrations struct {
	Events       []EventRecord `json:"events"`
	Total        int           `json:"total"`
	PagesScraped int           `json:"pages_scraped"`
	ActionLinks  []Link        `json:"action_links"`
}

// Card is a loosely parsed container: its rendered text and the links in it.
type Card struct {
	Text  string `json:"text"`
	Links []Link `json:"links"`
}

type EventListing struct {
	Events   []Card `json:"events"`
	Links    []Link `json:"links"`
	PageText string `json:"pageText"`
}

type GroupListing struct {
	Groups   []Card `json:"groups"`
	Links    []Link `json:"links"`
	PageText string `json:"pageText"`
}

type PersonalSnapshot struct {
	PageText string `json:"pageText"`
	Links    []Link `json:"links"`
}

type MemberRecord struct {
	Name       string   `json:"name"`
	Company    string   `json:"company"`
	Profession string   `json:"profession"`
	Groups     []string `json:"groups"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Links      []Link   `json:"links"`
}

// DirectoryMember is one card of the member directory results.
type DirectoryMember struct {
	Name       string `json:"name"`
	Profession string `json:"profession"`
	Focus      string `json:"focus"`
	Email      string `json:"email"`
	Company    string `json:"company"`
	HomeGroup  string `json:"homeGroup"`
	Groups     string `json:"groups"`
	Bio        string `json:"bio"`
	Phone      string `json:"phone"`
}

type RegisterResult struct {
	Success  bool   `json:"success"`
	PageText string `json:"page_text,omitempty"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// SyncSnapshot is everything one full sync read from the portal.
type SyncSnapshot struct {
	LoggedIn       bool             `json:"logged_in"`
	Timestamp      time.Time        `json:"timestamp"`
	Snapshot       PersonalSnapshot `json:"snapshot"`
	Registrations  Registrations    `json:"registrations"`
	UpcomingEvents EventListing     `json:"upcoming_events"`
	EventSearch    EventListing     `json:"event_search"`
	MyGroups       GroupListing     `json:"my_groups"`
}

// Package contacts turns directory search results into the contact list the
// frontend embeds.
package contacts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hubsync-backend/internal/components/chrono"
	"hubsync-backend/internal/components/telemetry"
	"hubsync-backend/internal/scrapers/hub"
	"hubsync-backend/lib/textutil"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const report_harvest = "contacts.harvest"

const SourceHub = "hub"

type Contact struct {
	Name       string `json:"name"`
	Company    string `json:"company"`
	Profession string `json:"profession"`
	Groups     string `json:"groups"`
	Notes      string `json:"notes"`
	Source     string `json:"source"`
	Added      string `json:"added"`
}

// Directory is the part of the session a harvest needs.
type Directory interface {
	HarvestProfession(ctx context.Context, profession string) ([]hub.DirectoryMember, error)
}

// Collector accumulates unique contacts across directory searches.
type Collector struct {
	added    string
	seen     map[string]struct{}
	contacts []Contact
}

func NewCollector(clock chrono.API) *Collector {
	return &Collector{
		added: clock.Now().Format("2006-01-02"),
		seen:  map[string]struct{}{},
	}
}

// Add keeps members not seen before and returns how many were new. The
// member email goes into notes.
func (c *Collector) Add(members []hub.DirectoryMember) int {
	added := 0
	for _, m := range members {
		key := textutil.IdentityKey(m.Name)
		if key == "" {
			continue
		}
		if _, ok := c.seen[key]; ok {
			continue
		}
		c.seen[key] = struct{}{}
		c.contacts = append(c.contacts, Contact{
			Name:       strings.TrimSpace(m.Name),
			Company:    strings.TrimSpace(m.Company),
			Profession: strings.TrimSpace(m.Profession),
			Groups:     strings.TrimSpace(strings.TrimRight(strings.TrimSpace(m.Groups), ",")),
			Notes:      strings.TrimSpace(m.Email),
			Source:     SourceHub,
			Added:      c.added,
		})
		added++
	}
	return added
}

// Contacts returns the collected contacts sorted by lower-cased name.
func (c *Collector) Contacts() []Contact {
	out := make([]Contact, len(c.contacts))
	copy(out, c.contacts)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Harvest searches the directory once per profession and merges the results.
func Harvest(ctx context.Context, dir Directory, professions []string, clock chrono.API, tel telemetry.API) ([]Contact, error) {
	collector := NewCollector(clock)
	for _, profession := range professions {
		members, err := dir.HarvestProfession(ctx, profession)
		if err != nil {
			tel.ReportBroken(report_harvest, profession, err)
			return nil, fmt.Errorf("harvest %s: %w", profession, err)
		}
		added := collector.Add(members)
		tel.ReportDebug("harvested profession", profession, len(members), added)
	}
	contacts := collector.Contacts()
	tel.ReportCount(report_harvest, int64(len(contacts)))
	return contacts, nil
}

func WriteJSON(path string, contacts []Contact) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	err := enc.Encode(contacts)
	if err != nil {
		return err
	}
	err = os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func ReadJSON(path string) ([]Contact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var contacts []Contact
	err = json.Unmarshal(data, &contacts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return contacts, nil
}

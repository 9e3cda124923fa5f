package contacts

import (
	"context"
	"errors"
	"hubsync-backend/internal/components/chrono"
	"hubsync-backend/internal/components/telemetry"
	"hubsync-backend/internal/scrapers/hub"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	results map[string][]hub.DirectoryMember
	fail    string
	asked   []string
}

func (f *fakeDirectory) HarvestProfession(_ context.Context, profession string) ([]hub.DirectoryMember, error) {
	f.asked = append(f.asked, profession)
	if profession == f.fail {
		return nil, errors.New("directory unavailable")
	}
	return f.results[profession], nil
}

var harvestDay = chrono.FixedImpl{Time: time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)}

func TestHarvestNormalizesAndDedupes(t *testing.T) {
	dir := &fakeDirectory{results: map[string][]hub.DirectoryMember{
		"Attorney": {
			{Name: "zoe Park", Company: "Park Law", Profession: "Attorney", Groups: "Irvine 2, Westside,", Email: "zoe@park.law"},
			{Name: "Adam Li", Company: "Li LLP", Profession: "Attorney", Groups: " Downtown ", Email: ""},
		},
		"CPA": {
			{Name: "ZOE  PARK", Company: "Other", Profession: "CPA"},
			{Name: "Maria Gomez", Company: "Gomez CPA", Profession: "CPA", Groups: "Irvine 2", Email: "maria@gomez.cpa"},
			{Name: "   "},
		},
	}}
	rec := telemetry.NewRecorderAPI()

	contacts, err := Harvest(context.Background(), dir, []string{"Attorney", "CPA"}, harvestDay, rec)
	require.NoError(t, err)

	expected := []Contact{
		{Name: "Adam Li", Company: "Li LLP", Profession: "Attorney", Groups: "Downtown", Source: "hub", Added: "2024-06-01"},
		{Name: "Maria Gomez", Company: "Gomez CPA", Profession: "CPA", Groups: "Irvine 2", Notes: "maria@gomez.cpa", Source: "hub", Added: "2024-06-01"},
		{Name: "zoe Park", Company: "Park Law", Profession: "Attorney", Groups: "Irvine 2, Westside", Notes: "zoe@park.law", Source: "hub", Added: "2024-06-01"},
	}
	if diff := cmp.Diff(expected, contacts); diff != "" {
		t.Fatalf("contacts mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"Attorney", "CPA"}, dir.asked)

	count, ok := rec.Count(report_harvest)
	require.True(t, ok)
	require.EqualValues(t, 3, count)
}

func TestHarvestStopsOnError(t *testing.T) {
	dir := &fakeDirectory{fail: "CPA"}
	rec := telemetry.NewRecorderAPI()

	_, err := Harvest(context.Background(), dir, []string{"Attorney", "CPA", "Banking"}, harvestDay, rec)
	require.ErrorContains(t, err, "harvest CPA")
	require.Equal(t, []string{"Attorney", "CPA"}, dir.asked)
	require.True(t, rec.HasReport("broken", report_harvest))
}

func TestContactsFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "contacts.json")
	contacts := []Contact{
		{Name: "Tom & Jerry <Partners>", Company: "A&B", Source: "hub", Added: "2024-06-01"},
	}
	require.NoError(t, WriteJSON(path, contacts))

	got, err := ReadJSON(path)
	require.NoError(t, err)
	require.Equal(t, contacts, got)
}

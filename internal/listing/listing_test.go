package listing

import (
	"testing"
	"time"

	"github.com/gauthierbraillon/playlens/internal/playlist"
)

func sample() []playlist.Video {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return []playlist.Video{
		{ID: "a", Order: 1, Title: "Intro to Go", ChannelID: "UC1", PublishedAt: base.Add(48 * time.Hour), DurationSeconds: 600, ViewCount: 50},
		{ID: "b", Order: 2, Title: "Goroutines deep dive", ChannelID: "UC2", PublishedAt: base, DurationSeconds: 1800, ViewCount: 900},
		{ID: "c", Order: 4, Title: "Channels", ChannelID: "UC1", PublishedAt: base.Add(24 * time.Hour), DurationSeconds: 600, ViewCount: 300},
	}
}

func ids(videos []playlist.Video) []string {
	out := make([]string, 0, len(videos))
	for _, v := range videos {
		out = append(out, v.ID)
	}
	return out
}

func assertIDs(t *testing.T, got []playlist.Video, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("user should see %v, got %v", want, g)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("user should see %v, got %v", want, g)
		}
	}
}

func TestAC200_Listing_DefaultsToPlaylistOrder(t *testing.T) {
	assertIDs(t, Apply(sample(), Options{}), "a", "b", "c")
}

func TestAC200_Listing_SortsByEachKey(t *testing.T) {
	tests := []struct {
		sort SortKey
		desc bool
		want []string
	}{
		{SortDate, false, []string{"b", "c", "a"}},
		{SortDate, true, []string{"a", "c", "b"}},
		{SortViews, true, []string{"b", "c", "a"}},
		{SortDuration, false, []string{"a", "c", "b"}},
		{SortOrder, true, []string{"c", "b", "a"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			assertIDs(t, Apply(sample(), Options{Sort: tt.sort, Descending: tt.desc}), tt.want...)
		})
	}
}

func TestAC201_Listing_TiesKeepPlaylistOrder(t *testing.T) {
	// a and c share a duration.
	assertIDs(t, Apply(sample(), Options{Sort: SortDuration, Descending: true}), "b", "a", "c")
}

func TestAC202_Listing_SearchIsCaseInsensitive(t *testing.T) {
	assertIDs(t, Apply(sample(), Options{Search: "  GO"}), "a", "b")
}

func TestAC203_Listing_FiltersByChannel(t *testing.T) {
	assertIDs(t, Apply(sample(), Options{ChannelID: "UC1"}), "a", "c")
}

func TestAC204_Listing_FiltersByDateRange(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	got := Apply(sample(), Options{Since: base.Add(time.Hour), Until: base.Add(30 * time.Hour)})
	assertIDs(t, got, "c")
}

func TestAC205_Listing_LimitsResults(t *testing.T) {
	assertIDs(t, Apply(sample(), Options{Sort: SortViews, Descending: true, Limit: 2}), "b", "c")
}

func TestAC205_Listing_NoMatchesIsEmptyNotNil(t *testing.T) {
	got := Apply(sample(), Options{Search: "rust"})
	if got == nil || len(got) != 0 {
		t.Errorf("user should see an empty list, got %#v", got)
	}
}

func TestListing_DoesNotMutateInput(t *testing.T) {
	in := sample()
	_ = Apply(in, Options{Sort: SortViews, Descending: true})
	assertIDs(t, in, "a", "b", "c")
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		in       string
		wantKey  SortKey
		wantDesc bool
	}{
		{"", SortOrder, false},
		{"views", SortViews, false},
		{"views_desc", SortViews, true},
		{"DATE_ASC", SortDate, false},
		{"duration_desc", SortDuration, true},
	}
	for _, tt := range tests {
		key, desc, err := ParseSort(tt.in)
		if err != nil {
			t.Fatalf("ParseSort(%q) error: %v", tt.in, err)
		}
		if key != tt.wantKey || desc != tt.wantDesc {
			t.Errorf("ParseSort(%q) = %s,%v want %s,%v", tt.in, key, desc, tt.wantKey, tt.wantDesc)
		}
	}

	for _, bad := range []string{"likes", "views_up", "_desc"} {
		if _, _, err := ParseSort(bad); err == nil {
			t.Errorf("ParseSort(%q) should fail", bad)
		}
	}
}

func TestParseBound(t *testing.T) {
	tests := []struct {
		in    string
		upper bool
		want  time.Time
	}{
		{"", false, time.Time{}},
		{"2024-06-02", false, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)},
		{"2024-06-02", true, time.Date(2024, 6, 2, 23, 59, 59, 999999999, time.UTC)},
		{" 2024-06-02T10:00:00Z ", true, time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseBound(tt.in, tt.upper)
		if err != nil {
			t.Fatalf("ParseBound(%q) error: %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseBound(%q, %v) = %v, want %v", tt.in, tt.upper, got, tt.want)
		}
	}

	for _, bad := range []string{"06/02/2024", "2024-13-01", "yesterday"} {
		if _, err := ParseBound(bad, false); err == nil {
			t.Errorf("ParseBound(%q) should fail", bad)
		}
	}
}

func TestAC204_Listing_DateOnlyUntilIncludesWholeDay(t *testing.T) {
	until, err := ParseBound("2024-06-02", true)
	if err != nil {
		t.Fatal(err)
	}
	since, err := ParseBound("2024-06-02", false)
	if err != nil {
		t.Fatal(err)
	}
	// "c" is published at 2024-06-02T00:00Z; "a" a day later.
	assertIDs(t, Apply(sample(), Options{Since: since, Until: until}), "c")
}

package coding

import (
	"math"
	"reflect"
	"testing"

	"github.com/intercoder-data/naics.report/internal/naics"
)

func profileDataset() *Dataset {
	recs := []Record{
		// alice: 3 construction, 1 repair
		{Coder: "alice", Codes: naics.CodeSet{"237310"}},
		{Coder: "alice", Codes: naics.CodeSet{"236220"}},
		{Coder: "alice", Codes: naics.CodeSet{"238990"}},
		{Coder: "alice", Codes: naics.CodeSet{"811111"}},
		// bob: 2 construction, 2 public admin
		{Coder: "bob", Codes: naics.CodeSet{"237110"}},
		{Coder: "bob", Codes: naics.CodeSet{"237130"}},
		{Coder: "bob", Codes: naics.CodeSet{"922120"}},
		{Coder: "bob", Codes: naics.CodeSet{"922160"}},
		// missing rows never count
		{Coder: "bob", Missing: true},
	}
	return NewDataset(recs)
}

func TestProfiles(t *testing.T) {
	set := Profiles(profileDataset())

	if len(set.Coders) != 2 {
		t.Fatalf("got %d coder profiles, want 2", len(set.Coders))
	}
	alice := set.Coders[0]
	if alice.Coder != "alice" || alice.Rows != 4 {
		t.Fatalf("first profile = %q with %d rows, want alice with 4", alice.Coder, alice.Rows)
	}
	if got := alice.PrefixPct["23"]; math.Abs(got-75) > 1e-9 {
		t.Errorf("alice pct 23 = %v, want 75", got)
	}
	if got := alice.PrefixPct["81"]; math.Abs(got-25) > 1e-9 {
		t.Errorf("alice pct 81 = %v, want 25", got)
	}

	bob := set.Coders[1]
	if got := bob.PrefixPct["92"]; math.Abs(got-50) > 1e-9 {
		t.Errorf("bob pct 92 = %v, want 50", got)
	}

	if set.Totals["23"] != 5 {
		t.Errorf("total 23 = %d, want 5", set.Totals["23"])
	}
}

func TestTopPrefixes(t *testing.T) {
	set := Profiles(profileDataset())

	if got, want := set.TopPrefixes(2), []string{"23", "92"}; !reflect.DeepEqual(got, want) {
		t.Errorf("TopPrefixes(2) = %v, want %v", got, want)
	}
	// Ties (81 and 92 would tie at k large enough only if counts equal); here
	// 92 has 2 and 81 has 1, so full order is count-descending.
	if got, want := set.TopPrefixes(0), []string{"23", "92", "81"}; !reflect.DeepEqual(got, want) {
		t.Errorf("TopPrefixes(0) = %v, want %v", got, want)
	}
}

func TestTendencies(t *testing.T) {
	set := Profiles(profileDataset())

	// Construction: alice 75%, bob 50%, mean 62.5. Both deviate by 12.5pp.
	got := set.Tendencies([]string{"23"}, 5)
	if len(got) != 2 {
		t.Fatalf("got %d tendencies, want 2", len(got))
	}
	if !got[0].Favors || got[0].Coder != "alice" {
		t.Errorf("tendency[0] = %+v, want alice favoring", got[0])
	}
	if got[1].Favors || got[1].Coder != "bob" {
		t.Errorf("tendency[1] = %+v, want bob avoiding", got[1])
	}
	if math.Abs(got[0].DeltaPP-12.5) > 1e-9 {
		t.Errorf("alice delta = %v, want 12.5", got[0].DeltaPP)
	}

	// A threshold above the deviation yields nothing.
	if got := set.Tendencies([]string{"23"}, 20); len(got) != 0 {
		t.Errorf("expected no tendencies at 20pp, got %+v", got)
	}
}

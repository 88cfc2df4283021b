package patient

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ids(patients []*Patient) []string {
	out := make([]string, len(patients))
	for i, p := range patients {
		out[i] = p.ID
	}
	return out
}

func TestComparePriority_AcuityDominates(t *testing.T) {
	a := &Patient{ID: "a", Name: "Zed", AcuityLevel: 5, RiskLevel: RiskLow}
	b := &Patient{ID: "b", Name: "Amy", AcuityLevel: 3, RiskLevel: RiskCritical, HasAlerts: true}
	if ComparePriority(a, b) >= 0 {
		t.Error("expected acuity 5 / low risk to sort before acuity 3 / critical risk")
	}
	if ComparePriority(b, a) <= 0 {
		t.Error("comparator is not antisymmetric")
	}
}

func TestComparePriority_TieBreakChain(t *testing.T) {
	tests := []struct {
		name string
		a, b *Patient
	}{
		{
			name: "alerts before no alerts",
			a:    &Patient{Name: "B", AcuityLevel: 3, RiskLevel: RiskLow, HasAlerts: true},
			b:    &Patient{Name: "A", AcuityLevel: 3, RiskLevel: RiskCritical},
		},
		{
			name: "higher risk first",
			a:    &Patient{Name: "B", AcuityLevel: 2, RiskLevel: RiskHigh},
			b:    &Patient{Name: "A", AcuityLevel: 2, RiskLevel: RiskMedium},
		},
		{
			name: "name ascending",
			a:    &Patient{Name: "Chen", AcuityLevel: 2, RiskLevel: RiskMedium},
			b:    &Patient{Name: "Johnson", AcuityLevel: 2, RiskLevel: RiskMedium},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComparePriority(tt.a, tt.b); got >= 0 {
				t.Errorf("ComparePriority(a, b) = %d, want < 0", got)
			}
			if got := ComparePriority(tt.b, tt.a); got <= 0 {
				t.Errorf("ComparePriority(b, a) = %d, want > 0", got)
			}
		})
	}
}

func TestComparePriority_FullTie(t *testing.T) {
	a := &Patient{ID: "1", Name: "Same", AcuityLevel: 2, RiskLevel: RiskLow}
	b := &Patient{ID: "2", Name: "Same", AcuityLevel: 2, RiskLevel: RiskLow}
	if got := ComparePriority(a, b); got != 0 {
		t.Errorf("ComparePriority = %d, want 0", got)
	}
}

func censusFixture() []*Patient {
	return []*Patient{
		{ID: "2", Name: "Michael Chen", Room: "Med-205", AcuityLevel: 3, RiskLevel: RiskMedium},
		{ID: "4", Name: "Dorothy Williams", Room: "Med-210", AcuityLevel: 2, RiskLevel: RiskLow, IsPendingDischarge: true},
		{ID: "1", Name: "Sarah Johnson", Room: "ICU-101", AcuityLevel: 5, RiskLevel: RiskCritical, HasAlerts: true},
		{ID: "3", Name: "Emma Rodriguez", Room: "ICU-103", AcuityLevel: 4, RiskLevel: RiskHigh, HasAlerts: true},
		{ID: "6", Name: "Robert Taylor", Room: "ICU-105", AcuityLevel: 4, RiskLevel: RiskCritical},
		{ID: "5", Name: "James Wilson", Room: "Med-212", AcuityLevel: 3, RiskLevel: RiskHigh},
	}
}

func TestSortByPriority(t *testing.T) {
	ps := censusFixture()
	SortByPriority(ps)
	want := []string{"1", "3", "6", "5", "2", "4"}
	if diff := cmp.Diff(want, ids(ps)); diff != "" {
		t.Errorf("priority order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortByPriority_Idempotent(t *testing.T) {
	once := censusFixture()
	SortByPriority(once)
	twice := append([]*Patient(nil), once...)
	SortByPriority(twice)
	if diff := cmp.Diff(ids(once), ids(twice)); diff != "" {
		t.Errorf("sorting twice changed the order (-once +twice):\n%s", diff)
	}
}

func TestSortByPriority_StableOnFullTies(t *testing.T) {
	ps := []*Patient{
		{ID: "x", Name: "Same", AcuityLevel: 1, RiskLevel: RiskLow},
		{ID: "y", Name: "Same", AcuityLevel: 1, RiskLevel: RiskLow},
		{ID: "z", Name: "Same", AcuityLevel: 1, RiskLevel: RiskLow},
	}
	SortByPriority(ps)
	if diff := cmp.Diff([]string{"x", "y", "z"}, ids(ps)); diff != "" {
		t.Errorf("ties reordered (-want +got):\n%s", diff)
	}
}

func TestSort_Modes(t *testing.T) {
	tests := []struct {
		mode SortMode
		want []string
	}{
		{SortPriority, []string{"1", "3", "6", "5", "2", "4"}},
		{SortAcuity, []string{"1", "3", "6", "2", "5", "4"}},
		{SortRoom, []string{"1", "3", "6", "2", "4", "5"}},
		{SortName, []string{"4", "3", "5", "2", "6", "1"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			ps := censusFixture()
			Sort(ps, tt.mode)
			if diff := cmp.Diff(tt.want, ids(ps)); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSort_CaseInsensitiveText(t *testing.T) {
	ps := []*Patient{
		{ID: "zoe", Name: "Zoe", Room: "b-2", AcuityLevel: 2, RiskLevel: RiskLow},
		{ID: "bob", Name: "bob", Room: "B-1", AcuityLevel: 2, RiskLevel: RiskLow},
		{ID: "Bob", Name: "Bob", Room: "a-9", AcuityLevel: 2, RiskLevel: RiskLow},
	}
	SortByPriority(ps)
	if diff := cmp.Diff([]string{"Bob", "bob", "zoe"}, ids(ps)); diff != "" {
		t.Errorf("priority name tie-break (-want +got):\n%s", diff)
	}
	Sort(ps, SortRoom)
	if diff := cmp.Diff([]string{"Bob", "bob", "zoe"}, ids(ps)); diff != "" {
		t.Errorf("room order (-want +got):\n%s", diff)
	}
	if compareText("bob", "Bob") <= 0 || compareText("Bob", "bob") >= 0 {
		t.Error("case-only differences must still order by bytes")
	}
}

func TestParseSortMode(t *testing.T) {
	if m, err := ParseSortMode(""); err != nil || m != SortPriority {
		t.Errorf("ParseSortMode(\"\") = %q, %v", m, err)
	}
	if _, err := ParseSortMode("age"); err == nil {
		t.Error("expected error for unknown sort mode")
	}
}

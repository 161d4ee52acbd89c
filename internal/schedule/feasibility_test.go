package schedule

import "testing"

func TestProcessingTime(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name  string
		vials int
		want  int64
	}{
		{name: "scenario 1: small lot", vials: 10000, want: 1808},
		{name: "single vial rounds up", vials: 1, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProcessingTime(Lot{ID: "x", Type: "t", Vials: tt.vials}, cfg)
			if got != tt.want {
				t.Errorf("ProcessingTime(%d) = %d, want %d", tt.vials, got, tt.want)
			}
		})
	}
}

func TestChangeoverCost(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name      string
		prev      string
		next      string
		wantHours float64
	}{
		{name: "fresh window has no changeover", prev: "", next: "VialE", wantHours: 0},
		{name: "same type", prev: "VialE", next: "VialE", wantHours: 4},
		{name: "different type", prev: "VialE", next: "VialH", wantHours: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChangeoverCost(tt.prev, tt.next, cfg)
			want := secondsFromHours(tt.wantHours)
			if got != want {
				t.Errorf("ChangeoverCost(%q, %q) = %d, want %d", tt.prev, tt.next, got, want)
			}
		})
	}
}

func TestAdmit(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("closed window always reopens", func(t *testing.T) {
		d := Admit(windowState{}, Lot{ID: "a", Type: "VialE", Vials: 1000}, cfg)
		if d.Kind != DecisionCloseAndReopen {
			t.Fatalf("got %v, want DecisionCloseAndReopen", d.Kind)
		}
		if d.CleanDuration != CleanDurationSeconds(cfg) {
			t.Errorf("CleanDuration = %d, want %d", d.CleanDuration, CleanDurationSeconds(cfg))
		}
	})

	t.Run("open window that fits appends", func(t *testing.T) {
		ws := windowState{open: true, lastType: "VialE", used: 0}
		d := Admit(ws, Lot{ID: "a", Type: "VialE", Vials: 1000}, cfg)
		if d.Kind != DecisionAppend {
			t.Fatalf("got %v, want DecisionAppend", d.Kind)
		}
		if d.ChangeoverDuration != changeoverSameSeconds(cfg) {
			t.Errorf("ChangeoverDuration = %d, want %d", d.ChangeoverDuration, changeoverSameSeconds(cfg))
		}
	})

	t.Run("open window that would overflow closes and reopens", func(t *testing.T) {
		ws := windowState{open: true, lastType: "VialE", used: WindowCeilingSeconds(cfg) - 10}
		d := Admit(ws, Lot{ID: "a", Type: "VialE", Vials: 1_000_000}, cfg)
		if d.Kind != DecisionCloseAndReopen {
			t.Fatalf("got %v, want DecisionCloseAndReopen", d.Kind)
		}
	})

	t.Run("oversized lot is rejected", func(t *testing.T) {
		oversizedVials := int(float64(WindowCeilingSeconds(cfg)+3600) * cfg.FillRateVialsPerMin / 60.0)
		d := Admit(windowState{}, Lot{ID: "a", Type: "VialE", Vials: oversizedVials}, cfg)
		if d.Kind != DecisionReject {
			t.Fatalf("got %v, want DecisionReject", d.Kind)
		}
	})
}

func TestLotSetValidate(t *testing.T) {
	tests := []struct {
		name    string
		lots    LotSet
		wantErr bool
	}{
		{name: "empty set rejected", lots: LotSet{}, wantErr: true},
		{
			name:    "blank id rejected",
			lots:    LotSet{Lots: []Lot{{ID: "", Type: "t", Vials: 1}}},
			wantErr: true,
		},
		{
			name:    "duplicate id rejected",
			lots:    LotSet{Lots: []Lot{{ID: "a", Type: "t", Vials: 1}, {ID: "a", Type: "t", Vials: 1}}},
			wantErr: true,
		},
		{
			name:    "blank type rejected",
			lots:    LotSet{Lots: []Lot{{ID: "a", Type: "", Vials: 1}}},
			wantErr: true,
		},
		{
			name:    "non-positive vials rejected",
			lots:    LotSet{Lots: []Lot{{ID: "a", Type: "t", Vials: 0}}},
			wantErr: true,
		},
		{
			name:    "valid set accepted",
			lots:    LotSet{Lots: []Lot{{ID: "a", Type: "t", Vials: 1}}},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.lots.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLotSetValidateAgainstConfig(t *testing.T) {
	cfg := DefaultConfig()
	oversizedVials := int(float64(WindowCeilingSeconds(cfg)+3600) * cfg.FillRateVialsPerMin / 60.0)

	lots := LotSet{Lots: []Lot{{ID: "a", Type: "t", Vials: oversizedVials}}}
	if err := lots.ValidateAgainstConfig(cfg); err == nil {
		t.Fatal("expected oversized lot to be rejected")
	}

	lots = LotSet{Lots: []Lot{{ID: "a", Type: "t", Vials: 1000}}}
	if err := lots.ValidateAgainstConfig(cfg); err != nil {
		t.Fatalf("expected valid lot to pass, got %v", err)
	}
}

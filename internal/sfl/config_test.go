package sfl

import "testing"

func validConfig() PersonaConfiguration {
	return PersonaConfiguration{
		Ideational: IdeationalSettings{
			MaterialProcesses:   40,
			MentalProcesses:     30,
			RelationalProcesses: 20,
			VerbalProcesses:     10,
			TechnicalityLevel:   5,
			LogicalRelations:    "additive and causal",
		},
		Interpersonal: InterpersonalSettings{
			Statements:           70,
			Questions:            20,
			OffersCommands:       10,
			ProbabilityModality:  6,
			UsualityModality:     4,
			QuestioningFrequency: "Medium",
			Appraisal:            "measured and appreciative",
		},
		Textual: TextualSettings{
			LexicalDensity:       7,
			GrammaticalIntricacy: 4,
			ReferenceChains:      "pronominal chains",
			ConjunctiveAdverbs:   "however, therefore",
			ThematicProgression:  "linear",
			QuestionSequences:    "rare",
		},
	}
}

func TestIsSaveable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PersonaConfiguration)
		want   bool
	}{
		{"valid", func(c *PersonaConfiguration) {}, true},
		{"process shares short", func(c *PersonaConfiguration) {
			c.Ideational.MaterialProcesses = 30
		}, false},
		{"process shares over", func(c *PersonaConfiguration) {
			c.Ideational.VerbalProcesses = 25
		}, false},
		{"speech shares short", func(c *PersonaConfiguration) {
			c.Interpersonal.Statements = 60
		}, false},
		{"fractional shares rounding to 100", func(c *PersonaConfiguration) {
			c.Ideational.MaterialProcesses = 39.7
			c.Ideational.MentalProcesses = 30.1
			c.Ideational.RelationalProcesses = 20.1
			c.Ideational.VerbalProcesses = 10.2 // 100.1 rounds to 100
		}, true},
		{"fractional shares rounding to 101", func(c *PersonaConfiguration) {
			c.Ideational.MaterialProcesses = 40.3
			c.Ideational.VerbalProcesses = 10.3
		}, false},
		{"out-of-range sliders are not validated", func(c *PersonaConfiguration) {
			c.Ideational.TechnicalityLevel = 99
			c.Textual.LexicalDensity = -3
		}, true},
		{"both invariants broken", func(c *PersonaConfiguration) {
			c.Ideational.MaterialProcesses = 0
			c.Interpersonal.Questions = 0
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if got := IsSaveable(cfg); got != tt.want {
				t.Errorf("IsSaveable() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Permuting the four process shares must not change the verdict: the
// invariant depends only on their sum.
func TestIsSaveablePermutationInvariant(t *testing.T) {
	base := validConfig()
	shares := []float64{40, 30, 20, 10}
	perms := [][4]int{
		{0, 1, 2, 3}, {3, 2, 1, 0}, {1, 0, 3, 2}, {2, 3, 0, 1}, {3, 0, 1, 2},
	}
	for _, p := range perms {
		cfg := base
		cfg.Ideational.MaterialProcesses = shares[p[0]]
		cfg.Ideational.MentalProcesses = shares[p[1]]
		cfg.Ideational.RelationalProcesses = shares[p[2]]
		cfg.Ideational.VerbalProcesses = shares[p[3]]
		if !IsSaveable(cfg) {
			t.Errorf("permutation %v changed the validity verdict", p)
		}
	}
}

package model

import "testing"

func TestCriteriaValidate(t *testing.T) {
	cases := []struct {
		name    string
		crit    TestCriteria
		wantErr bool
	}{
		{"valid range", TestCriteria{RequirementName: "Gain Range", Mode: ModeRange, MinValue: 27.5, MaxValue: 31.3}, false},
		{"inverted range", TestCriteria{RequirementName: "Gain Range", Mode: ModeRange, MinValue: 31.3, MaxValue: 27.5}, true},
		{"valid max-only", TestCriteria{RequirementName: "VSWR Max", Mode: ModeMaxOnly, MaxValue: 1.5}, false},
		{"oob no windows", TestCriteria{RequirementName: "OOB Rejection", Mode: ModeOOBRanges}, true},
		{"oob inverted window", TestCriteria{RequirementName: "OOB Rejection", Mode: ModeOOBRanges,
			OOBWindows: []OOBWindow{{FreqMin: 3.0, FreqMax: 2.5, MinRejection: 60}}}, true},
		{"valid oob", TestCriteria{RequirementName: "OOB Rejection", Mode: ModeOOBRanges,
			OOBWindows: []OOBWindow{{FreqMin: 2.5, FreqMax: 3.5, MinRejection: 60}}}, false},
		{"unknown mode", TestCriteria{RequirementName: "Gain Range", Mode: "between"}, true},
	}
	for _, tc := range cases {
		err := tc.crit.Validate()
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
	}
}

func TestEvaluateScalarNonStrict(t *testing.T) {
	rng := TestCriteria{Mode: ModeRange, MinValue: 27.5, MaxValue: 31.3}
	// Boundary values pass: comparisons are non-strict.
	for _, v := range []float64{27.5, 31.3, 29.0} {
		if !rng.EvaluateScalar(v) {
			t.Fatalf("range: %.2f should pass", v)
		}
	}
	for _, v := range []float64{27.49, 31.31} {
		if rng.EvaluateScalar(v) {
			t.Fatalf("range: %.2f should fail", v)
		}
	}

	maxOnly := TestCriteria{Mode: ModeMaxOnly, MaxValue: 1.5}
	if !maxOnly.EvaluateScalar(1.5) {
		t.Fatalf("max-only: boundary value should pass")
	}
	if maxOnly.EvaluateScalar(1.51) {
		t.Fatalf("max-only: 1.51 should fail")
	}
}

package domain

import "testing"

func TestSegmentForMonthlyChargeBoundaries(t *testing.T) {
	cases := []struct {
		raw  string
		want ValueSegment
	}{
		{"80.00", SegmentHigh},
		{"79.99", SegmentMedium},
		{"40.00", SegmentMedium},
		{"39.99", SegmentLow},
		{"120.5", SegmentHigh},
		{"0", SegmentLow},
		{" 85.3 ", SegmentHigh},
	}
	for _, tc := range cases {
		got, err := SegmentForMonthlyCharge(tc.raw)
		if err != nil {
			t.Fatalf("SegmentForMonthlyCharge(%q) failed: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Errorf("SegmentForMonthlyCharge(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestSegmentForMonthlyChargeRejectsMalformedValues(t *testing.T) {
	for _, raw := range []string{"", "  ", "abc", "12,50"} {
		if _, err := SegmentForMonthlyCharge(raw); err == nil {
			t.Errorf("SegmentForMonthlyCharge(%q) should fail, got nil error", raw)
		}
	}
}

func TestFieldsKeepsPresentationOrder(t *testing.T) {
	r := CustomerRecord{CustomerID: "C1", Gender: "Female", Tenure: 12, MonthlyCharges: "29.85"}
	fields := r.Fields()
	if fields[0].Name != "customerID" || fields[0].Value != "C1" {
		t.Fatalf("unexpected first field: %+v", fields[0])
	}
	if fields[len(fields)-1].Name != "PaymentMethod" {
		t.Fatalf("unexpected last field: %+v", fields[len(fields)-1])
	}
}

package discovery

import (
	"errors"
	"strings"
	"testing"
)

func TestParseTXTDefaultsAndDrops(t *testing.T) {
	p := ParseTXT(map[string]string{
		"SII": "500",
		"T":   "1", // reserved value, clamps to 0
		"bogus": "ignored",
	})
	if p.Data.SII != 500 {
		t.Fatalf("SII = %d, want 500", p.Data.SII)
	}
	if p.Data.T != 0 {
		t.Fatalf("T = %d, want 0 (reserved value clamped)", p.Data.T)
	}
	if p.Data.ICD != 0 {
		t.Fatalf("ICD = %d, want 0 default", p.Data.ICD)
	}
}

func TestParseTXTDropsUnparseableInteger(t *testing.T) {
	p := ParseTXT(map[string]string{"SII": "not-a-number"})
	if p.Data.SII != 0 {
		t.Fatalf("SII = %d, want 0 (dropped)", p.Data.SII)
	}
}

func TestValidCommissionableRequiresDAndCM(t *testing.T) {
	p := ParseTXT(map[string]string{"D": "3840"})
	if p.ValidCommissionable() {
		t.Fatal("expected invalid: CM missing")
	}
	p = ParseTXT(map[string]string{"D": "3840", "CM": "2"})
	if !p.ValidCommissionable() {
		t.Fatal("expected valid: D and CM present")
	}
}

func TestValidationErrorReportsMissingKey(t *testing.T) {
	p := ParseTXT(map[string]string{})
	if err := p.ValidationError(); !errors.Is(err, ErrMissingRequired) {
		t.Fatalf("got %v, want ErrMissingRequired", err)
	}
	p = ParseTXT(map[string]string{"D": "3840"})
	if err := p.ValidationError(); !errors.Is(err, ErrMissingRequired) {
		t.Fatalf("got %v, want ErrMissingRequired for missing CM", err)
	}
}

func TestValidationErrorRejectsOutOfRangeDiscriminator(t *testing.T) {
	p := ParseTXT(map[string]string{"D": "4096", "CM": "1"}) // > MaxDiscriminator
	err := p.ValidationError()
	if !errors.Is(err, ErrInvalidDiscriminator) {
		t.Fatalf("got %v, want ErrInvalidDiscriminator", err)
	}
	if p.ValidCommissionable() {
		t.Fatal("expected invalid: discriminator exceeds MaxDiscriminator")
	}
}

func TestParseTXTTruncatesOverlongDeviceName(t *testing.T) {
	long := strings.Repeat("x", MaxDeviceNameLength+10)
	p := ParseTXT(map[string]string{"DN": long})
	if len(p.Data.DN) != MaxDeviceNameLength {
		t.Fatalf("DN length = %d, want %d", len(p.Data.DN), MaxDeviceNameLength)
	}
}

func TestShortDiscriminatorDerivation(t *testing.T) {
	// S4: D=3840 (0xF00) -> SD = (3840>>8)&0xF = 15
	if sd := ShortDiscriminator(3840); sd != 15 {
		t.Fatalf("SD = %d, want 15", sd)
	}
	if sd := ShortDiscriminator(0x0F23); sd != 0xF {
		t.Fatalf("SD = %d, want 15", sd)
	}
}

func TestSplitVendorProduct(t *testing.T) {
	v, p, ok := SplitVendorProduct("65521+32768")
	if !ok || v != 65521 || p != 32768 {
		t.Fatalf("got v=%d p=%d ok=%v", v, p, ok)
	}
	if _, _, ok := SplitVendorProduct(""); ok {
		t.Fatal("expected ok=false for empty value")
	}
}

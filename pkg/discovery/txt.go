package discovery

import (
	"fmt"
	"strconv"
)

// TXT key names per §4.2 and §6.
const (
	txtKeySII = "SII"
	txtKeySAI = "SAI"
	txtKeySAT = "SAT"
	txtKeyT   = "T"
	txtKeyD   = "D"
	txtKeyCM  = "CM"
	txtKeyDT  = "DT"
	txtKeyPH  = "PH"
	txtKeyICD = "ICD"
	txtKeyVP  = "VP"
	txtKeyDN  = "DN"
	txtKeyRI  = "RI"
	txtKeyPI  = "PI"
)

// reservedT is the reserved T value that is clamped to 0, same as an
// absent key.
const reservedT = 1

// ParsedTXT is the intermediate decode of a TXT record before it is
// merged into a device's DiscoveryData (and, for commissionable records,
// its identifier surface).
type ParsedTXT struct {
	Data DiscoveryData

	// HasD and HasCM report whether the D/CM keys were present, which
	// callers use to decide whether a commissionable parse is valid.
	HasD bool
	D    uint16
	HasCM bool
	CM   uint8
	DT   uint32
	HasDT bool
	PH   int
	HasPH bool
}

// ParseTXT decodes a TXT record's key=value pairs per §4.2: integer
// fields that fail to parse are dropped rather than failing the whole
// record; unknown keys are ignored.
func ParseTXT(pairs map[string]string) ParsedTXT {
	var p ParsedTXT

	if v, ok := pairs[txtKeySII]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			p.Data.SII = n
		}
	}
	if v, ok := pairs[txtKeySAI]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			p.Data.SAI = n
		}
	}
	if v, ok := pairs[txtKeySAT]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			p.Data.SAT = n
		}
	}
	p.Data.T = 0
	if v, ok := pairs[txtKeyT]; ok {
		if n, err := strconv.Atoi(v); err == nil && n != reservedT {
			p.Data.T = n
		}
	}
	if v, ok := pairs[txtKeyICD]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			p.Data.ICD = n
		}
	} else {
		p.Data.ICD = 0
	}
	if v, ok := pairs[txtKeyD]; ok {
		if n, err := strconv.ParseUint(v, 10, 16); err == nil {
			p.HasD = true
			p.D = uint16(n)
		}
	}
	if v, ok := pairs[txtKeyCM]; ok {
		if n, err := strconv.ParseUint(v, 10, 8); err == nil {
			p.HasCM = true
			p.CM = uint8(n)
		}
	}
	if v, ok := pairs[txtKeyDT]; ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			p.HasDT = true
			p.DT = uint32(n)
		}
	}
	if v, ok := pairs[txtKeyPH]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			p.HasPH = true
			p.PH = n
		}
	}

	p.Data.VP = pairs[txtKeyVP]
	p.Data.DN = pairs[txtKeyDN]
	if len(p.Data.DN) > MaxDeviceNameLength {
		p.Data.DN = p.Data.DN[:MaxDeviceNameLength]
	}
	p.Data.RI = pairs[txtKeyRI]
	p.Data.PI = pairs[txtKeyPI]

	return p
}

// ValidationError reports why a TXT record fails §4.2's commissionable
// requirement, or nil if it satisfies it: D and CM must both be present,
// and D must fall within the valid discriminator range.
func (p ParsedTXT) ValidationError() error {
	if !p.HasD {
		return fmt.Errorf("%w: D", ErrMissingRequired)
	}
	if !p.HasCM {
		return fmt.Errorf("%w: CM", ErrMissingRequired)
	}
	if p.D > MaxDiscriminator {
		return fmt.Errorf("%w: %d", ErrInvalidDiscriminator, p.D)
	}
	return nil
}

// ValidCommissionable reports whether the parse satisfies §4.2's
// commissionable requirement: both D and CM must be present, and D must
// not exceed MaxDiscriminator (see ValidationError).
func (p ParsedTXT) ValidCommissionable() bool {
	return p.ValidationError() == nil
}

// ShortDiscriminator derives SD from D per §3: (D>>8)&0x0F.
func ShortDiscriminator(d uint16) uint8 {
	return uint8((d >> 8) & 0x0F)
}

// SplitVendorProduct splits a "V+P" TXT value into its vendor/product
// halves. Returns ok=false if the value is absent or malformed.
func SplitVendorProduct(vp string) (vendor, product uint16, ok bool) {
	if vp == "" {
		return 0, 0, false
	}
	var v, p int
	n, err := scanVP(vp, &v, &p)
	if err != nil || n != 2 {
		return 0, 0, false
	}
	if v < 0 || v > 0xFFFF || p < 0 || p > 0xFFFF {
		return 0, 0, false
	}
	return uint16(v), uint16(p), true
}

// scanVP parses "<v>+<p>" without pulling in fmt's reflection-based
// Sscanf, which would be overkill for a two-field fixed format.
func scanVP(vp string, v, p *int) (int, error) {
	for i := 0; i < len(vp); i++ {
		if vp[i] == '+' {
			vv, err1 := strconv.Atoi(vp[:i])
			pp, err2 := strconv.Atoi(vp[i+1:])
			if err1 != nil || err2 != nil {
				return 0, err1
			}
			*v, *p = vv, pp
			return 2, nil
		}
	}
	return 0, strconv.ErrSyntax
}

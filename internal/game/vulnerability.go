package game

// Vulnerability flags each partnership for the deal. It is an input to
// scoring; the engine never mutates it.
type Vulnerability struct {
	NS bool
	EW bool
}

// Of returns whether the given partnership is vulnerable.
func (v Vulnerability) Of(p Partnership) bool {
	if p == NorthSouth {
		return v.NS
	}
	return v.EW
}

// String returns the conventional display form.
func (v Vulnerability) String() string {
	switch {
	case v.NS && v.EW:
		return "Both"
	case v.NS:
		return "N-S"
	case v.EW:
		return "E-W"
	default:
		return "None"
	}
}

// VulnerabilityForDeal returns the duplicate-style cycle by deal
// number: none, N-S, E-W, both, repeating every four deals.
func VulnerabilityForDeal(dealNumber int) Vulnerability {
	switch (dealNumber - 1) % 4 {
	case 1:
		return Vulnerability{NS: true}
	case 2:
		return Vulnerability{EW: true}
	case 3:
		return Vulnerability{NS: true, EW: true}
	default:
		return Vulnerability{}
	}
}

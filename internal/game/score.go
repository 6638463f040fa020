package game

// ScoreBreakdown itemizes one partnership's score for a completed deal.
type ScoreBreakdown struct {
	ContractPoints    int
	OvertrickPoints   int
	SlamBonus         int
	DoubleBonus       int
	GameBonus         int
	UndertrickPenalty int
	Total             int
}

// ScoreResult is the duplicate score for a completed deal. The caller
// partitions it into "we"/"they" per viewer; that is a display concern.
type ScoreResult struct {
	DeclarerSide Partnership
	Declarer     ScoreBreakdown
	Defender     ScoreBreakdown
	ContractMade bool
	TricksTaken  int
	TricksNeeded int
}

// PassedOutResult is the all-zero score recorded when the deal is
// passed out.
func PassedOutResult() ScoreResult {
	return ScoreResult{}
}

// Score computes the duplicate bridge score for a completed deal from
// the contract, the tricks taken by the declaring side, and the
// vulnerability. Pure function, no engine state.
func Score(c Contract, tricksTaken int, vul Vulnerability) ScoreResult {
	side := c.Declarer.Partnership()
	vulnerable := vul.Of(side)
	needed := c.TricksNeeded()

	result := ScoreResult{
		DeclarerSide: side,
		ContractMade: tricksTaken >= needed,
		TricksTaken:  tricksTaken,
		TricksNeeded: needed,
	}

	if !result.ContractMade {
		result.Defender.UndertrickPenalty = undertrickPenalty(c, needed-tricksTaken, vulnerable)
		result.Defender.Total = result.Defender.UndertrickPenalty
		return result
	}

	s := &result.Declarer
	overtricks := tricksTaken - needed

	s.ContractPoints = contractPoints(c)
	s.OvertrickPoints = overtrickPoints(c, overtricks, vulnerable)

	if s.ContractPoints >= 100 {
		if vulnerable {
			s.GameBonus = 500
		} else {
			s.GameBonus = 300
		}
	} else {
		s.GameBonus = 50
	}

	switch c.Level {
	case 6:
		if vulnerable {
			s.SlamBonus = 750
		} else {
			s.SlamBonus = 500
		}
	case 7:
		if vulnerable {
			s.SlamBonus = 1500
		} else {
			s.SlamBonus = 1000
		}
	}

	if c.Redoubled {
		s.DoubleBonus = 100
	} else if c.Doubled {
		s.DoubleBonus = 50
	}

	s.Total = s.ContractPoints + s.OvertrickPoints + s.SlamBonus + s.DoubleBonus + s.GameBonus
	return result
}

// contractPoints returns the trick score for the bid tricks: 20 per
// trick in the minors, 30 in the majors, 40 for the first no-trump
// trick and 30 thereafter; doubled x2, redoubled x4.
func contractPoints(c Contract) int {
	var points int
	switch c.Strain {
	case Clubs, Diamonds:
		points = c.Level * 20
	case Hearts, Spades:
		points = c.Level * 30
	case NoTrump:
		points = 40 + (c.Level-1)*30
	}
	if c.Redoubled {
		return points * 4
	}
	if c.Doubled {
		return points * 2
	}
	return points
}

// overtrickPoints returns the score for tricks beyond the contract.
// Undoubled overtricks are worth the strain's trick value; doubled
// overtricks are 100 (200 vulnerable) each, redoubled twice that.
func overtrickPoints(c Contract, overtricks int, vulnerable bool) int {
	if overtricks <= 0 {
		return 0
	}
	switch {
	case c.Redoubled:
		if vulnerable {
			return overtricks * 400
		}
		return overtricks * 200
	case c.Doubled:
		if vulnerable {
			return overtricks * 200
		}
		return overtricks * 100
	default:
		value := 30
		if c.Strain == Clubs || c.Strain == Diamonds {
			value = 20
		}
		return overtricks * value
	}
}

// undertrickPenalty returns the defenders' score when the contract
// fails. Undoubled undertricks are 50 (100 vulnerable) each. Doubled,
// the first is 100 (200 vulnerable), the second and third 200 (300),
// and every trick from the fourth 300 regardless of vulnerability;
// redoubled doubles the doubled figures.
func undertrickPenalty(c Contract, undertricks int, vulnerable bool) int {
	if !c.Doubled && !c.Redoubled {
		per := 50
		if vulnerable {
			per = 100
		}
		return undertricks * per
	}

	var penalty int
	for i := 1; i <= undertricks; i++ {
		switch {
		case i == 1:
			if vulnerable {
				penalty += 200
			} else {
				penalty += 100
			}
		case vulnerable || i >= 4:
			penalty += 300
		default:
			penalty += 200
		}
	}
	if c.Redoubled {
		penalty *= 2
	}
	return penalty
}

package model

// ClearLinePattern classifies the outcome of the most recent lock
type ClearLinePattern string

const (
	PatternNone            ClearLinePattern = "none"
	PatternSingle          ClearLinePattern = "single"
	PatternDouble          ClearLinePattern = "double"
	PatternTriple          ClearLinePattern = "triple"
	PatternTetris          ClearLinePattern = "tetris"
	PatternTSpin           ClearLinePattern = "tspin"
	PatternTSpinSingle     ClearLinePattern = "tspin_single"
	PatternTSpinDouble     ClearLinePattern = "tspin_double"
	PatternTSpinTriple     ClearLinePattern = "tspin_triple"
	PatternMiniTSpin       ClearLinePattern = "mini_tspin"
	PatternMiniTSpinSingle ClearLinePattern = "mini_tspin_single"
)

// AllPatterns lists every non-empty pattern
var AllPatterns = []ClearLinePattern{
	PatternSingle, PatternDouble, PatternTriple, PatternTetris,
	PatternTSpin, PatternTSpinSingle, PatternTSpinDouble, PatternTSpinTriple,
	PatternMiniTSpin, PatternMiniTSpinSingle,
}

// Rows returns the number of rows removed by the pattern
func (p ClearLinePattern) Rows() int {
	switch p {
	case PatternSingle, PatternTSpinSingle, PatternMiniTSpinSingle:
		return 1
	case PatternDouble, PatternTSpinDouble:
		return 2
	case PatternTriple, PatternTSpinTriple:
		return 3
	case PatternTetris:
		return 4
	default:
		return 0
	}
}

// IsSpin reports whether the pattern is a full or mini spin
func (p ClearLinePattern) IsSpin() bool {
	switch p {
	case PatternTSpin, PatternTSpinSingle, PatternTSpinDouble, PatternTSpinTriple,
		PatternMiniTSpin, PatternMiniTSpinSingle:
		return true
	default:
		return false
	}
}

// PatternForRows classifies a plain (non-spin) clear by row count
func PatternForRows(rows int) ClearLinePattern {
	switch rows {
	case 1:
		return PatternSingle
	case 2:
		return PatternDouble
	case 3:
		return PatternTriple
	case 4:
		return PatternTetris
	default:
		return PatternNone
	}
}

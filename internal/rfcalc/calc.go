// Package rfcalc computes worst-case S-parameter metrics over a sampled
// network: gain range, flatness, VSWR, return loss, and out-of-band
// rejection. All functions are pure and safe to call concurrently.
package rfcalc

// #region imports
import (
	"math"

	"github.com/macallanrf/rfcompliance/internal/rfnet"
)

// #endregion

// #region db-conversion

// magToDB converts a linear magnitude to 20·log10(mag) dB. A magnitude
// of exactly zero is perfect rejection, reported as the -Inf sentinel
// rather than an error.
func magToDB(mag float64) float64 {
	if mag == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(mag)
}

// #endregion

// #region band-filter

// bandIndices restricts the sweep to the inclusive band [fmin, fmax]
// using the nearest-enclosing-samples rule: when a boundary falls
// between samples, the sample just outside it is included so the
// reported worst case never excludes the true edge behavior.
func bandIndices(net *rfnet.Network, fmin, fmax float64) (lo, hi int, err error) {
	if fmin > fmax {
		fmin, fmax = fmax, fmin
	}
	n := net.Points()
	if fmax < net.Freq(0) || fmin > net.Freq(n-1) {
		return 0, 0, &InsufficientDataError{FreqMin: fmin, FreqMax: fmax}
	}

	lo = 0
	for i := 0; i < n; i++ {
		if net.Freq(i) <= fmin {
			lo = i
		} else {
			break
		}
	}
	hi = n - 1
	for i := n - 1; i >= 0; i-- {
		if net.Freq(i) >= fmax {
			hi = i
		} else {
			break
		}
	}
	return lo, hi, nil
}

// #endregion

// #region gain-range

// GainRange returns the minimum and maximum of 20·log10(|S{out,in}|)
// over the inclusive band [fmin, fmax] GHz.
func GainRange(net *rfnet.Network, outPort, inPort int, fmin, fmax float64) (minDB, maxDB float64, err error) {
	lo, hi, err := bandIndices(net, fmin, fmax)
	if err != nil {
		return 0, 0, err
	}
	minDB = math.Inf(1)
	maxDB = math.Inf(-1)
	for i := lo; i <= hi; i++ {
		g := magToDB(net.SMag(i, outPort, inPort))
		if g < minDB {
			minDB = g
		}
		if g > maxDB {
			maxDB = g
		}
	}
	return minDB, maxDB, nil
}

// GainFlatness returns max gain − min gain over [fmin, fmax]; ≥ 0 by
// construction.
func GainFlatness(net *rfnet.Network, outPort, inPort int, fmin, fmax float64) (float64, error) {
	minDB, maxDB, err := GainRange(net, outPort, inPort, fmin, fmax)
	if err != nil {
		return 0, err
	}
	return maxDB - minDB, nil
}

// LowestInBandGain returns the minimum gain over the operational band.
// This is the reference level for out-of-band rejection.
func LowestInBandGain(net *rfnet.Network, outPort, inPort int, fmin, fmax float64) (float64, error) {
	minDB, _, err := GainRange(net, outPort, inPort, fmin, fmax)
	return minDB, err
}

// #endregion

// #region vswr

// VSWR computes (1+|Γ|)/(1−|Γ|) per point over the full sweep for the
// given port's reflection parameter and returns the worst case (maximum).
// |Γ| ≥ 1 at any point is an open-circuit-like reading and fails with a
// DomainError instead of producing infinity.
func VSWR(net *rfnet.Network, port int) (float64, error) {
	worst := 0.0
	for i := 0; i < net.Points(); i++ {
		mag := net.SMag(i, port, port)
		if mag >= 1 {
			return 0, &DomainError{Port: port, Freq: net.Freq(i), Mag: mag, Op: "vswr"}
		}
		v := (1 + mag) / (1 - mag)
		if v > worst {
			worst = v
		}
	}
	return worst, nil
}

// #endregion

// #region return-loss

// ReturnLoss returns the minimum of −20·log10(|Γ|) over the full sweep
// for the given port. Smaller is worse: the worst-matched point bounds
// the figure.
func ReturnLoss(net *rfnet.Network, port int) (float64, error) {
	worst := math.Inf(1)
	for i := 0; i < net.Points(); i++ {
		rl := -magToDB(net.SMag(i, port, port))
		if rl < worst {
			worst = rl
		}
	}
	return worst, nil
}

// #endregion

// #region oob-rejection

// OOBRejection returns the worst-case out-of-band rejection in dBc over
// the inclusive window [oobMin, oobMax] GHz. Rejection at a point is the
// lowest in-band gain (over [opMin, opMax]) minus the gain at that
// point; the worst case is the MINIMUM across the window, since one
// weak-rejection frequency fails the requirement regardless of the rest.
func OOBRejection(net *rfnet.Network, outPort, inPort int, oobMin, oobMax, opMin, opMax float64) (float64, error) {
	ref, err := LowestInBandGain(net, outPort, inPort, opMin, opMax)
	if err != nil {
		return 0, err
	}
	lo, hi, err := bandIndices(net, oobMin, oobMax)
	if err != nil {
		return 0, err
	}
	worst := math.Inf(1)
	for i := lo; i <= hi; i++ {
		rej := ref - magToDB(net.SMag(i, outPort, inPort))
		if rej < worst {
			worst = rej
		}
	}
	return worst, nil
}

// #endregion

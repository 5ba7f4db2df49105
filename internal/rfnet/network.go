package rfnet

// #region imports
import (
	"fmt"
	"math/cmplx"
)

// #endregion

// #region network

// Network holds an already-sampled multi-port scattering network:
// an ascending frequency sweep with one complex S-matrix per point.
// Frequencies are in GHz. Port numbering is 1-indexed, matching RF
// convention (S21 = input at port 1, output at port 2).
type Network struct {
	freqs []float64
	// s[point][out-1][in-1]
	s      [][][]complex128
	nports int
}

// NewNetwork builds a Network from a frequency sweep and per-point
// S-matrices. The sweep must be strictly ascending with at least two
// points, and every matrix must be nports×nports.
func NewNetwork(freqs []float64, s [][][]complex128) (*Network, error) {
	if len(freqs) < 2 {
		return nil, fmt.Errorf("network needs at least 2 frequency points, got %d", len(freqs))
	}
	if len(s) != len(freqs) {
		return nil, fmt.Errorf("frequency count %d does not match S-matrix count %d", len(freqs), len(s))
	}
	for i := 1; i < len(freqs); i++ {
		if freqs[i] <= freqs[i-1] {
			return nil, fmt.Errorf("frequency sweep not strictly ascending at index %d (%.6f GHz after %.6f GHz)", i, freqs[i], freqs[i-1])
		}
	}
	nports := len(s[0])
	if nports == 0 {
		return nil, fmt.Errorf("network has no ports")
	}
	for i, m := range s {
		if len(m) != nports {
			return nil, fmt.Errorf("S-matrix at point %d has %d rows, want %d", i, len(m), nports)
		}
		for r, row := range m {
			if len(row) != nports {
				return nil, fmt.Errorf("S-matrix at point %d row %d has %d columns, want %d", i, r, len(row), nports)
			}
		}
	}
	return &Network{freqs: freqs, s: s, nports: nports}, nil
}

// #endregion

// #region accessors

// NPorts returns the port count.
func (n *Network) NPorts() int { return n.nports }

// Points returns the number of frequency samples.
func (n *Network) Points() int { return len(n.freqs) }

// Freq returns the frequency in GHz at sample index i.
func (n *Network) Freq(i int) float64 { return n.freqs[i] }

// Freqs returns the full sweep. Callers must not mutate it.
func (n *Network) Freqs() []float64 { return n.freqs }

// S returns the complex scattering value S{out,in} at sample index i.
// Ports are 1-indexed.
func (n *Network) S(i, outPort, inPort int) complex128 {
	return n.s[i][outPort-1][inPort-1]
}

// SMag returns |S{out,in}| at sample index i.
func (n *Network) SMag(i, outPort, inPort int) float64 {
	return cmplx.Abs(n.s[i][outPort-1][inPort-1])
}

// HasPort reports whether a 1-indexed port exists in this network.
func (n *Network) HasPort(p int) bool {
	return p >= 1 && p <= n.nports
}

// #endregion

package store

// #region imports
import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/macallanrf/rfcompliance/internal/rfnet"
)

// #endregion

// #region network-encoding

// Blob layout: uint32 nports, uint32 npoints, then npoints float64
// frequencies, then npoints row-major nports×nports complex values as
// (re, im) float64 pairs. All little-endian.

func encodeNetwork(net *rfnet.Network) ([]byte, error) {
	nports := net.NPorts()
	npoints := net.Points()
	size := 8 + npoints*8 + npoints*nports*nports*16
	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf[0:], uint32(nports))
	binary.LittleEndian.PutUint32(buf[4:], uint32(npoints))
	off := 8
	for i := 0; i < npoints; i++ {
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(net.Freq(i)))
		off += 8
	}
	for i := 0; i < npoints; i++ {
		for out := 1; out <= nports; out++ {
			for in := 1; in <= nports; in++ {
				v := net.S(i, out, in)
				binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(real(v)))
				binary.LittleEndian.PutUint64(buf[off+8:], math.Float64bits(imag(v)))
				off += 16
			}
		}
	}
	return buf, nil
}

func decodeNetwork(b []byte) (*rfnet.Network, error) {
	if len(b) < 8 {
		return nil, fmt.Errorf("network blob too short: %d bytes", len(b))
	}
	nports := int(binary.LittleEndian.Uint32(b[0:]))
	npoints := int(binary.LittleEndian.Uint32(b[4:]))
	want := 8 + npoints*8 + npoints*nports*nports*16
	if len(b) != want {
		return nil, fmt.Errorf("network blob is %d bytes, want %d for %d ports × %d points", len(b), want, nports, npoints)
	}
	freqs := make([]float64, npoints)
	off := 8
	for i := range freqs {
		freqs[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[off:]))
		off += 8
	}
	s := make([][][]complex128, npoints)
	for i := range s {
		s[i] = make([][]complex128, nports)
		for out := 0; out < nports; out++ {
			s[i][out] = make([]complex128, nports)
			for in := 0; in < nports; in++ {
				re := math.Float64frombits(binary.LittleEndian.Uint64(b[off:]))
				im := math.Float64frombits(binary.LittleEndian.Uint64(b[off+8:]))
				s[i][out][in] = complex(re, im)
				off += 16
			}
		}
	}
	return rfnet.NewNetwork(freqs, s)
}

// #endregion

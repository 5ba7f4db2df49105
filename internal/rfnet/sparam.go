package rfnet

import "fmt"

// #region sparam

// SParam identifies one scattering parameter by its 1-indexed port pair.
// Out == In is a reflection parameter; otherwise transmission.
type SParam struct {
	Out int
	In  int
}

// Label renders the conventional name: "S21", "S11". Beyond port 9 the
// comma form is used ("S10,2") since digit concatenation is ambiguous.
func (p SParam) Label() string {
	if p.Out > 9 || p.In > 9 {
		return fmt.Sprintf("S%d,%d", p.Out, p.In)
	}
	return fmt.Sprintf("S%d%d", p.Out, p.In)
}

// IsReflection reports whether this is a same-port (Γ) parameter.
func (p SParam) IsReflection() bool { return p.Out == p.In }

// #endregion

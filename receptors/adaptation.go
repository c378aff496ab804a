package receptors

// Adapt returns dR/dt for a binding site of density r relaxing toward its
// baseline r0 at rate kUp while occupancy drives down-regulation at kDown.
func Adapt(r, occupancy, kUp, kDown, r0 float64) float64 {
	return kUp*(r0-r) - kDown*occupancy*r
}

// SteadyState is the density at which Adapt is zero for a constant occupancy.
func SteadyState(occupancy, kUp, kDown, r0 float64) float64 {
	den := kUp + kDown*occupancy
	if den <= 0 {
		return r0
	}
	return kUp * r0 / den
}

package systems

// Smoothing kernels. All return 0 for dst >= radius.

// Poly6Kernel is used for density and viscosity weighting.
func Poly6Kernel(dst, radius, scale float32) float32 {
	if dst >= radius {
		return 0
	}
	v := radius*radius - dst*dst
	return v * v * v * scale
}

// SpikyPow3Kernel is used for near density.
func SpikyPow3Kernel(dst, radius, scale float32) float32 {
	if dst >= radius {
		return 0
	}
	v := radius - dst
	return v * v * v * scale
}

// SpikyPow2Kernel is the quadratic spiky kernel.
func SpikyPow2Kernel(dst, radius, scale float32) float32 {
	if dst >= radius {
		return 0
	}
	v := radius - dst
	return v * v * scale
}

// DerivativeSpikyPow3 is the radial derivative of SpikyPow3Kernel (near pressure).
func DerivativeSpikyPow3(dst, radius, scale float32) float32 {
	if dst >= radius {
		return 0
	}
	v := radius - dst
	return -v * v * scale
}

// DerivativeSpikyPow2 is the radial derivative of SpikyPow2Kernel (pressure).
func DerivativeSpikyPow2(dst, radius, scale float32) float32 {
	if dst >= radius {
		return 0
	}
	v := radius - dst
	return -v * scale
}

package kernels

// allKernels collects every kernel group into the flat list NewRegistry indexes.
func allKernels() []Kernel {
	var all []Kernel
	all = append(all, overlapKernels()...)
	all = append(all, oscillatorKernels()...)
	all = append(all, volatilityKernels()...)
	all = append(all, volumeKernels()...)
	all = append(all, patternKernels()...)
	return all
}

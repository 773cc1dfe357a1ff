// Package commands builds the dsctl command tree.
//
//	dsctl solve FILE [--max-iterations N] [--max-time D] [--remote URL]
//	dsctl health --remote URL
//	dsctl reliability exponential --rate λ --time t
//	dsctl reliability mtbf VALUE
//	dsctl reliability series R...
//	dsctl reliability kofn --k K R...
package commands

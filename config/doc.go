// SPDX-License-Identifier: MIT

// Package config loads the YAML configuration of a sieve run.
//
// Parse overlays the document on Default, so a file only names what it
// changes. Validate rejects unknown enumerations and out-of-range numbers
// with ErrInvalid* sentinels; StructureConfig.GraphOptions turns the
// structure section into structure.Graph options.
//
// A minimal file:
//
//	sieve:
//	  kind: random
//	  random: {iterations: 20, z: 1.96, seed: 7}
//	structure:
//	  overwrite: conserve
//	  inverse: {BEFORE: AFTER}
//	transforms:
//	  - kind: closure
//	closure:
//	  compositions:
//	    - {first: BEFORE, second: BEFORE, result: BEFORE}
package config

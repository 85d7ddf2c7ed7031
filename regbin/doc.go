// Package regbin decodes bootreg files: the register write scripts
// stored in the parameter area of a fastboot image. A bootreg file is a
// short header followed by regions of register blocks, each block a run
// of bit-granular register write requests against a base address.
package regbin

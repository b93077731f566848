/*
	Package chunkgrid provides types, constants, and functions that have no other dependencies
	and can be used by all packages within chunkgrid.  This includes the grid coordinate types,
	bounding extents, sentinel errors and the logging facade.  The sampler, tree, topology,
	placement and schematic layers all exchange values defined here.
*/
package chunkgrid

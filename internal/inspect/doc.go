// Package inspect verifies provisioned MPI images.
//
// Verification runs the built components' own diagnostics commands
// (ompi_info, ucx_info) inside a container started from the produced image
// and checks the properties the provisioning pipeline is supposed to
// guarantee: the compiled-in transport set (tcp and ucx in, openib out,
// psm2 where the architecture supports it), the launch agent override in
// the generated MCA params file, and the installed component versions
// against the recipe's pins.
//
// Parsing is line-oriented and tolerant: unknown ompi_info output lines are
// ignored, so the checks keep working across runtime versions that add
// fields.
package inspect

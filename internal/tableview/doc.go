// Package tableview formats caller-supplied rows into the admin data table.
//
// Callers filter and slice rows before handing them over; the package only
// formats cells (prices, status and category badges, clamped long text) and
// computes the clamped prev/next page controls. Nothing here performs I/O.
package tableview

// Package calendar defines the personal calendar used to label ledger events.
//
// A calendar is an ordered table of eras plus a month-length sequence. Month
// lengths grow like the Fibonacci numbers (1, 1, 2, 3, 5, ...), so early months
// end quickly and later months stretch out. Eras are named epochs that only
// ever advance forward.
package calendar

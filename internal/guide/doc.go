// Package guide synthesizes the TV guide overlay for downloaded items.
//
// Everything here is pure: the same item metadata and file always produce the
// same category, channel, callsign, timeslot, and day, with the download date
// as the only clock-dependent field. Channel and schedule placement come from
// wrapping byte-sum hashes so any implementation of the same formulas agrees
// bit for bit.
package guide

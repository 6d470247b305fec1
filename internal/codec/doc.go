// Package codec converts single Toodledo field values between their Go domain
// representation and the primitive the API puts on the wire.
//
// The Toodledo v3 API always returns a fixed field set and marks "not set" with an
// in-band sentinel instead of omitting the key:
//   - booleans are the integers 0 and 1
//   - dates are Unix timestamps at noon UTC, 0 when unset
//   - datetimes are Unix timestamps, 0 when unset
//   - times of day are Unix timestamps whose UTC clock part is significant, 0 when unset
//   - folder and context references are ids, 0 when the task has none
//   - tag lists are one comma separated string
//   - enumerations are small integers
//
// Every codec reproduces that convention in both directions. Decoding never
// coerces an unknown value into a default: an undeclared enum code or a boolean
// other than 0/1 is reported as a *DecodeError.
//
// A time of day of exactly midnight is indistinguishable from "unset" on the
// wire; TimeOfDay always decodes 0 as unset.
package codec

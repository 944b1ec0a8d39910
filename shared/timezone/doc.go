// Package timezone provides the application calendar clock.
//
// Every booking date is a calendar day in a fixed UTC+7 zone, independent of the
// locale of the server or of the client that submitted it. "Today" is the current
// instant shifted by seven hours and truncated to the start of that day.
//
// Usage Examples:
//
//  1. Current time and calendar day:
//     now := timezone.Now()     // current instant in UTC+7
//     today := timezone.Today() // midnight of the current UTC+7 day
//
//  2. Parsing and formatting calendar dates:
//     date, err := timezone.ParseDate("2024-01-01")
//     key := timezone.FormatDate(date) // "2024-01-01"
//
//  3. Past-date rejection:
//     if timezone.IsPast(date) { ... }
//
// There is no timezone database lookup; the offset is a constant.
package timezone

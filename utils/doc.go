// Package utils provides internal helpers shared by the busboard packages.
//
// It contains:
//   - Time formatting and minutes-until-arrival arithmetic
//   - JSON response and error writers for HTTP handlers
package utils

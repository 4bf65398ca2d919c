// Package builtin provides built-in functions for use in spag placeholders.
//
// Available functions:
//   - uuid(): Generate a random UUID v4
//   - now(): Current time in RFC 3339 format
//   - timestamp(), timestampMs(): Current Unix time
//   - date(layout): Current UTC date, "2006-01-02" by default
//   - random(min, max): Random integer in range
//   - randomString(length): Random alphanumeric string
//   - base64(value), base64Decode(value)
//   - md5(value), sha256(value): Hex digests
//   - urlEncode(value), urlDecode(value)
//   - env(name): OS environment variable value
//
// Functions are invoked as {{uuid()}} or {{$uuid()}} in resources, bodies
// and header values.
package builtin

package types

// redactedPlaceholder replaces secret values in logs and serialized output.
const redactedPlaceholder = "***REDACTED***"

var redactedJSON = []byte(`"***REDACTED***"`)

// SecretString is a string type that prevents accidental logging or
// serialization of sensitive values (Stripe keys, database URLs). Both
// String() and MarshalJSON() return a redacted placeholder, so secrets
// cannot leak through fmt functions, structured logs, or JSON config dumps.
//
// Call Unmask() to retrieve the raw plaintext when it is genuinely needed,
// e.g. when building an Authorization header or a connection string.
type SecretString string

// String returns a redacted placeholder instead of the raw value.
func (s SecretString) String() string {
	return redactedPlaceholder
}

// MarshalJSON returns the redacted placeholder as a JSON string.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// Unmask returns the raw plaintext value of the secret. Usage should be
// limited to the points where the actual secret crosses a process boundary.
func (s SecretString) Unmask() string {
	return string(s)
}

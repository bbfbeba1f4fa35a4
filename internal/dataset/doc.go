// Package dataset turns raw columnar rows into canonical enrollment records.
//
// The raw source varies in column naming and presence (the CAPES exports use
// Portuguese headers, older extracts use abbreviations like "UF"), so the
// normalizer resolves columns through an ordered alias-rule table and
// synthesizes defaults for guaranteed columns that are missing entirely.
// Normalization is pure and total: it never fails because an optional column
// is absent or a value cannot be coerced.
package dataset

package identity

import "strings"

// Normalizer strips honorific prefixes and credential suffixes from free-text
// names. The prefix and suffix tables are injected; see refdata.Default.
type Normalizer struct {
	prefixes map[string]struct{}
	suffixes map[string]struct{}
}

// NewNormalizer builds a Normalizer from prefix-title and suffix-credential tables.
// Table entries are matched upper-cased with trailing commas removed.
func NewNormalizer(titlePrefixes, credentialSuffixes []string) *Normalizer {
	n := &Normalizer{
		prefixes: make(map[string]struct{}, len(titlePrefixes)),
		suffixes: make(map[string]struct{}, len(credentialSuffixes)),
	}
	for _, p := range titlePrefixes {
		n.prefixes[strings.ToUpper(p)] = struct{}{}
	}
	for _, s := range credentialSuffixes {
		n.suffixes[strings.ToUpper(s)] = struct{}{}
	}
	return n
}

// Normalize parses a raw name into first/last/full forms. Total function:
// never fails, empty input yields empty fields, and it is idempotent over Full.
// Fewer than two surviving tokens leave Last empty; callers must treat that as
// "cannot resolve identity without a surname".
func (n *Normalizer) Normalize(raw string) NormalizedName {
	parts := strings.Fields(raw)

	for len(parts) > 0 {
		if _, ok := n.prefixes[foldToken(parts[0])]; !ok {
			break
		}
		parts = parts[1:]
	}

	// Strip suffixes and comma tails to a fixpoint: truncating "MD,PhD"
	// exposes another credential, and a punctuation-only token truncates to
	// nothing. Full must stay stable under re-normalization.
	for len(parts) > 0 {
		last := parts[len(parts)-1]
		if _, ok := n.suffixes[foldToken(last)]; ok {
			parts = parts[:len(parts)-1]
			continue
		}
		i := strings.Index(last, ",")
		if i < 0 {
			break
		}
		if i == 0 {
			parts = parts[:len(parts)-1]
			continue
		}
		parts[len(parts)-1] = last[:i]
	}

	// A comma tail can reduce the whole name to a bare title ("Dr,x").
	// Drop it, or Full would not survive re-normalization.
	if len(parts) == 1 {
		if _, ok := n.prefixes[foldToken(parts[0])]; ok {
			parts = nil
		}
	}

	if len(parts) < 2 {
		name := NormalizedName{Full: strings.Join(parts, " ")}
		if len(parts) == 1 {
			name.First = parts[0]
		}
		return name
	}

	return NormalizedName{
		First: parts[0],
		Last:  parts[len(parts)-1],
		Full:  strings.Join(parts, " "),
	}
}

// foldToken prepares a token for table lookup: upper-case, trailing commas removed.
func foldToken(tok string) string {
	return strings.TrimRight(strings.ToUpper(tok), ",")
}

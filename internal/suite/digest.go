package suite

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"golang.org/x/text/unicode/norm"
)

// digestDomain prefixes the hashed bytes so the algorithm can be changed
// later without colliding with old digests.
const digestDomain = "philotest/suite/v1"

// digestCase holds the fields that influence a verdict. Descriptions are
// left out so rewording one does not change the digest.
type digestCase struct {
	Name          string   `json:"name"`
	Args          []string `json:"args"`
	Timeout       int      `json:"timeout"`
	ExpectedDeath bool     `json:"expected_death"`
	Window        *Window  `json:"window,omitempty"`
}

// Digest returns a hex SHA-256 over the verdict-relevant content of cases,
// in order. Two runs with the same digest executed the same scenarios.
func Digest(cases []TestCase) string {
	dc := make([]digestCase, len(cases))
	for i, tc := range cases {
		args := make([]string, len(tc.Args))
		for j, a := range tc.Args {
			args[j] = norm.NFC.String(a)
		}
		dc[i] = digestCase{
			Name:          norm.NFC.String(tc.Name),
			Args:          args,
			Timeout:       tc.TimeoutSeconds,
			ExpectedDeath: tc.ExpectedDeath,
			Window:        tc.DeathWindow,
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Plain structs of strings, ints and bools always encode.
	_ = enc.Encode(dc)

	h := sha256.New()
	h.Write([]byte(digestDomain))
	h.Write([]byte{0x00})
	h.Write(buf.Bytes())
	return hex.EncodeToString(h.Sum(nil))
}

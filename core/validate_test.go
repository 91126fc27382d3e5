package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"scan-service/core"
)

func TestIsValidCandidate(t *testing.T) {
	testCases := []struct {
		desc  string
		token string
		want  bool
	}{
		{
			desc:  "success - mixed letters and digits",
			token: "AB12CD",
			want:  true,
		},
		{
			desc:  "success - case insensitive",
			token: "ab12cd",
			want:  true,
		},
		{
			desc:  "error - letters only",
			token: "ABCDEF",
			want:  false,
		},
		{
			desc:  "error - digits only",
			token: "123456",
			want:  false,
		},
		{
			desc:  "error - single digit",
			token: "AB1CDE",
			want:  false,
		},
		{
			desc:  "error - single letter",
			token: "12345A",
			want:  false,
		},
		{
			desc:  "error - blacklisted word",
			token: "PLEASE",
			want:  false,
		},
		{
			desc:  "error - blacklisted word, lowercase",
			token: "nobody",
			want:  false,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			require.Equal(t, tc.want, core.IsValidCandidate(tc.token))
		})
	}
}

func TestIsValidCandidateCaseInsensitive(t *testing.T) {
	require.Equal(t, core.IsValidCandidate("ab12cd"), core.IsValidCandidate("AB12CD"))
}

func TestExtractCodes(t *testing.T) {
	testCases := []struct {
		desc string
		text string
		want []string
	}{
		{
			desc: "filters blacklisted and prose words",
			text: "Thanks! Here is ABC123 and PLEASE, also ZZ99ZZ and NOBODY.",
			want: []string{"ABC123", "ZZ99ZZ"},
		},
		{
			desc: "normalizes to uppercase",
			text: "New codes: QR12TY, ab12cd, and works? nope.",
			want: []string{"QR12TY", "AB12CD"},
		},
		{
			desc: "ignores runs longer than six characters",
			text: "AB12CD3 is too long, AB12C too short",
			want: nil,
		},
		{
			desc: "preserves in-text duplicates",
			text: "AB12CD once, AB12CD twice",
			want: []string{"AB12CD", "AB12CD"},
		},
		{
			desc: "no candidates",
			text: "nothing of interest here",
			want: nil,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			require.Equal(t, tc.want, core.ExtractCodes(tc.text))
		})
	}
}

package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstallNote(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		want string
	}{
		{"cran", Row{Type: TypeCRAN}, ""},
		{"standard", Row{Type: TypeStandard, Metadata: map[string]string{}}, ""},
		{"standard cran provenance", Row{Type: TypeStandard, Metadata: map[string]string{"RemoteType": "cran"}}, ""},
		{"standard other provenance", Row{Type: TypeStandard, Metadata: map[string]string{"RemoteType": "url"}}, "(url)"},
		{"bioc", Row{Type: TypeBioc}, "(BioC)"},
		{"local", Row{Type: TypeLocal}, "(local)"},
		{
			"github",
			Row{Type: TypeGitHub, Metadata: map[string]string{
				MetaRemoteUsername: "r-lib",
				MetaRemoteRepo:     "rlang",
				MetaRemoteSha:      "abcdef1234567890",
			}},
			"(github::r-lib/rlang@abcdef1)",
		},
		{
			"github short sha",
			Row{Type: TypeGitHub, Metadata: map[string]string{
				MetaRemoteUsername: "u",
				MetaRemoteRepo:     "r",
				MetaRemoteSha:      "abc",
			}},
			"(github::u/r@abc)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InstallNote(&tt.row))
		})
	}
}

package proc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	forgeexec "github.com/joss/pkgforge/internal/exec"
)

func TestSupportsFlagProbesOnce(t *testing.T) {
	mock := forgeexec.NewMockRunner()
	mock.AddResponse("R", forgeexec.MockResponse{
		Output: []byte("Options:\n  --pkglock\n  --no-staged-install\n"),
	})

	r := NewRRunner("")
	r.Exec = mock

	assert.True(t, r.supportsFlag("--pkglock"))
	assert.True(t, r.supportsFlag("--no-staged-install"))
	assert.False(t, r.supportsFlag("--imaginary"))
	assert.Len(t, mock.Calls, 1, "help output must be probed once and cached")
}

func TestSupportsFlagOldToolchain(t *testing.T) {
	mock := forgeexec.NewMockRunner()
	mock.AddResponse("R-3.4", forgeexec.MockResponse{Output: []byte("Options:\n")})

	r := NewRRunner("R-3.4")
	r.Exec = mock

	assert.False(t, r.supportsFlag("--no-staged-install"))
}

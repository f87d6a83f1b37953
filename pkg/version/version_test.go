package version_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pqc-lab/kembench/pkg/version"
)

func TestString(t *testing.T) {
	want := fmt.Sprintf("v%d.%d.%d", version.Major, version.Minor, version.Patch)
	if version.Label != "" {
		want += "-" + version.Label
	}
	assert.Equal(t, want, version.String())
}

func TestFull(t *testing.T) {
	assert.True(t, strings.HasPrefix(version.Full(), "kembench v"))
	assert.Contains(t, version.Full(), version.String())
}

package cli

import (
	"testing"
)

func TestManifestArg(t *testing.T) {
	if got := manifestArg(nil); got != defaultManifest {
		t.Errorf("manifestArg(nil) = %q", got)
	}
	if got := manifestArg([]string{"deps.txt"}); got != "deps.txt" {
		t.Errorf("manifestArg = %q", got)
	}
}

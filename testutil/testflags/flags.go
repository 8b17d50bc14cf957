package testflags

import (
	"os"
	"testing"
)

// CorpusDir returns the directory of sample drawings named by
// DXF_CORPUS_DIR and skips the test when it is unset.
func CorpusDir(t *testing.T) string {
	dir, ok := os.LookupEnv("DXF_CORPUS_DIR")
	if !ok {
		t.SkipNow()
	}
	t.Parallel()
	return dir
}

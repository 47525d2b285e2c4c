package logfields

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttrsUseCanonicalKeys(t *testing.T) {
	assert.Equal(t, KeyTask, Task("clean").Key)
	assert.Equal(t, "clean", Task("clean").Value.String())

	assert.Equal(t, KeyRunID, RunID("abc").Key)
	assert.Equal(t, KeyGlob, Glob("**/*.md").Key)
	assert.Equal(t, KeyFiles, Files(3).Key)
	assert.Equal(t, int64(3), Files(3).Value.Int64())
}

func TestErrorAttr(t *testing.T) {
	assert.Equal(t, "", Error(nil).Value.String())
	assert.Equal(t, "boom", Error(fmt.Errorf("boom")).Value.String())
}

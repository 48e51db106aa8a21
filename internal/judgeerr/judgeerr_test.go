package judgeerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfThroughWrapping(t *testing.T) {
	base := New(KindCompile, "compilation failed").WithDetail("Main.java:3: error").WithPhase("compile")
	wrapped := fmt.Errorf("failed to prepare program: %w", base)

	assert.Equal(t, KindCompile, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindCompile))
	assert.False(t, Is(wrapped, KindRuntime))

	e, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "Main.java:3: error", e.Detail)
	assert.Equal(t, "compile", e.Phase)
}

func TestForeignErrorsAreInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, KindRuntime, "x"))
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("no such image")
	err := Wrap(cause, KindInternal, "failed to ensure image")
	assert.Equal(t, "failed to ensure image: no such image", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "timeout error", (&Error{Kind: KindTimeout}).Error())
	assert.Equal(t, "grading", KindGrading.String())
}

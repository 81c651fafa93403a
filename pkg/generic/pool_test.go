package generic

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_ResetsOnPut(t *testing.T) {
	p := NewPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset)

	buf := p.Get()
	buf.WriteString("frame")
	p.Put(buf)

	assert.Zero(t, buf.Len())
	assert.NotNil(t, p.Get())
}

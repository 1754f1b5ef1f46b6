package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBondDisclosure(t *testing.T) {
	b := Bond{
		UseOfProceeds:  "proceeds allocated to solar",
		DisclosureText: "full disclosure with annual reporting",
	}
	assert.Equal(t, "full disclosure with annual reporting", b.Disclosure())

	b.DisclosureText = ""
	assert.Equal(t, "proceeds allocated to solar", b.Disclosure())

	assert.Empty(t, (&Bond{}).Disclosure())
}

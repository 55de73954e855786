package utilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateNonBlockingSender_Delivers(t *testing.T) {
	ch := make(chan int, 1)
	send := CreateNonBlockingSender(ch)

	send(1)
	assert.Equal(t, 1, <-ch)
}

func TestCreateNonBlockingSender_NeverBlocks(t *testing.T) {
	ch := make(chan int, 1)
	send := CreateNonBlockingSender(ch)

	// With no receiver the older message is displaced by the newer one.
	send(1)
	send(2)
	send(3)

	assert.Equal(t, 3, <-ch)
	assert.Empty(t, ch)
}

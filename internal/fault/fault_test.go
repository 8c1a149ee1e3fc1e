package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("order not found")))
	assert.Equal(t, KindInvalidRequest, KindOf(InvalidRequest("cart is empty")))
	assert.Equal(t, KindForbidden, KindOf(Forbidden("access denied")))
	assert.Equal(t, KindConflict, KindOf(Conflict("slug taken")))
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("placing order: %w", InvalidRequest("insufficient stock for %q", "Widget"))
	assert.Equal(t, KindInvalidRequest, KindOf(err))
	assert.Contains(t, err.Error(), `insufficient stock for "Widget"`)
}

func TestMessageFormatting(t *testing.T) {
	err := NotFound("product %d not found", 42)
	assert.EqualError(t, err, "product 42 not found")
}

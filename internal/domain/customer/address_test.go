package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeAddress_AppendNew(t *testing.T) {
	saved := []Address{
		{Key: "a1", Label: "Home", IsDefault: true},
	}

	merged := MergeAddress(saved, Address{Key: "a2", Label: "Office"})

	require.Len(t, merged, 2)
	assert.Equal(t, "a1", merged[0].Key)
	assert.True(t, merged[0].IsDefault, "existing default untouched by non-default entry")
	assert.Equal(t, "a2", merged[1].Key)
}

func TestMergeAddress_ReplaceInPlace(t *testing.T) {
	saved := []Address{
		{Key: "a1", Label: "Home", Line1: "old street"},
		{Key: "a2", Label: "Office"},
	}

	merged := MergeAddress(saved, Address{Key: "a1", Label: "Home", Line1: "new street"})

	require.Len(t, merged, 2)
	assert.Equal(t, "new street", merged[0].Line1)
	assert.Equal(t, "a2", merged[1].Key)
}

func TestMergeAddress_DefaultClearsOthers(t *testing.T) {
	saved := []Address{
		{Key: "a1", IsDefault: true},
		{Key: "a2"},
	}

	merged := MergeAddress(saved, Address{Key: "a3", IsDefault: true})

	require.Len(t, merged, 3)
	defaults := 0
	for _, a := range merged {
		if a.IsDefault {
			defaults++
			assert.Equal(t, "a3", a.Key)
		}
	}
	assert.Equal(t, 1, defaults, "exactly one default after any merge")
}

func TestMergeAddress_ReplaceAndTakeDefault(t *testing.T) {
	saved := []Address{
		{Key: "a1"},
		{Key: "a2", IsDefault: true},
	}

	merged := MergeAddress(saved, Address{Key: "a1", IsDefault: true})

	require.Len(t, merged, 2)
	assert.True(t, merged[0].IsDefault)
	assert.False(t, merged[1].IsDefault)
}

func TestMergeAddress_DoesNotMutateInput(t *testing.T) {
	saved := []Address{{Key: "a1", IsDefault: true}}

	_ = MergeAddress(saved, Address{Key: "a2", IsDefault: true})

	assert.True(t, saved[0].IsDefault, "input slice must stay untouched")
}

func TestHasDefault(t *testing.T) {
	assert.False(t, HasDefault(nil))
	assert.False(t, HasDefault([]Address{{Key: "a1"}}))
	assert.True(t, HasDefault([]Address{{Key: "a1"}, {Key: "a2", IsDefault: true}}))
}

func TestFindByKey(t *testing.T) {
	addrs := []Address{{Key: "a1", Label: "Home"}, {Key: "a2", Label: "Office"}}

	got := FindByKey(addrs, "a2")
	require.NotNil(t, got)
	assert.Equal(t, "Office", got.Label)

	assert.Nil(t, FindByKey(addrs, "missing"))
	assert.Nil(t, FindByKey(addrs, ""), "empty key never matches")
	assert.Nil(t, FindByKey([]Address{{Key: ""}}, ""), "even against an empty stored key")
}

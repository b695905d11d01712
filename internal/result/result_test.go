package result

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuccessCarriesValueAndMessage(t *testing.T) {
	res := Success(42, "done")

	require.True(t, res.IsSuccess())
	require.False(t, res.IsInvalid())
	require.False(t, res.IsNotFound())
	require.Equal(t, StatusSuccess, res.Status())
	require.Equal(t, 42, res.Value())
	require.Equal(t, "done", res.Message())
	require.Empty(t, res.ValidationErrors())
}

func TestInvalidPreservesErrorOrder(t *testing.T) {
	res := Invalid[string](
		FieldError{Field: "name", Message: "is required"},
		FieldError{Field: "price", Message: "must be greater than or equal to 0"},
	)

	require.True(t, res.IsInvalid())
	require.False(t, res.IsSuccess())

	errs := res.ValidationErrors()
	require.Len(t, errs, 2)
	require.Equal(t, "name", errs[0].Field)
	require.Equal(t, "price", errs[1].Field)
}

func TestZeroValueIsNotSuccess(t *testing.T) {
	var res Result[int]

	require.Equal(t, StatusUnspecified, res.Status())
	require.False(t, res.IsSuccess())
	require.False(t, res.IsInvalid())
	require.False(t, res.IsNotFound())
}

func TestNotFoundCarriesMessageAndZeroValue(t *testing.T) {
	res := NotFound[string]("no product found")

	require.True(t, res.IsNotFound())
	require.Equal(t, "no product found", res.Message())
	require.Equal(t, "", res.Value())
}

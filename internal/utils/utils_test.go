package utils

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActorContext(t *testing.T) {
	actor := Actor{Email: "clerk@uniasia.io", Name: "Maria Santos", Role: "operator"}

	t.Run("RoundTrip", func(t *testing.T) {
		ctx := SetActorContext(context.Background(), actor)
		got, ok := GetActorFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, actor, got)
	})

	t.Run("Missing", func(t *testing.T) {
		_, ok := GetActorFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("EmptyEmailTreatedAsMissing", func(t *testing.T) {
		ctx := SetActorContext(context.Background(), Actor{Name: "no email"})
		_, ok := GetActorFromContext(ctx)
		assert.False(t, ok)
	})
}

func TestToUint(t *testing.T) {
	n, err := ToUint("42")
	assert.NoError(t, err)
	assert.Equal(t, uint(42), n)

	_, err = ToUint("not-a-number")
	assert.Error(t, err)
}

func TestWriteJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONError(rec, "boom", 422)

	assert.Equal(t, 422, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "boom", body["error"])
}

func TestGenerateSaleReference(t *testing.T) {
	pattern := regexp.MustCompile(`^SAL-\d{8}-\d{6}-\d{3}-\d{4}$`)

	ref1 := GenerateSaleReference()
	ref2 := GenerateSaleReference()

	assert.Regexp(t, pattern, ref1)
	assert.Regexp(t, pattern, ref2)
	assert.NotEqual(t, ref1, ref2)
}

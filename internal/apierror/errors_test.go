package apierror

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(602)
	assert.Equal(t, 602, err.Code)
	assert.Contains(t, err.Message, "Only 50 tasks")
	assert.True(t, err.Known())

	unknown := New(9999)
	assert.Equal(t, 9999, unknown.Code)
	assert.Equal(t, UnknownMessage, unknown.Message)
	assert.False(t, unknown.Known())
	assert.Contains(t, unknown.Error(), "9999")
}

func TestMessageTable(t *testing.T) {
	codes := []int{1, 2, 3, 4, 101, 102, 103}
	for c := 201; c <= 206; c++ {
		codes = append(codes, c)
	}
	for c := 301; c <= 306; c++ {
		codes = append(codes, c)
	}
	for c := 601; c <= 616; c++ {
		codes = append(codes, c)
	}
	for _, c := range codes {
		msg, ok := Message(c)
		assert.True(t, ok, "code %d", c)
		assert.NotEmpty(t, msg, "code %d", c)
	}
	assert.Len(t, messages, len(codes))

	_, ok := Message(0)
	assert.False(t, ok)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantDesc string
	}{
		{name: "object with error", body: `{"errorCode":602,"errorDesc":"too many"}`, wantCode: 602, wantDesc: "too many"},
		{name: "string code", body: `{"errorCode":"2"}`, wantCode: 2},
		{name: "array with per item error", body: `[{"id":1,"title":"a"},{"errorCode":601,"ref":"x"}]`, wantCode: 601},
		{name: "plain object", body: `{"deleted":12}`},
		{name: "get response", body: `[{"num":1,"total":1},{"id":5,"title":"a"}]`},
		{name: "empty array", body: `[]`},
		{name: "empty body", body: ``},
		{name: "scalar", body: `42`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(json.RawMessage(tt.body))
			if tt.wantCode == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, Code(err))
			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantDesc, apiErr.Description)
		})
	}
}

func TestIsAuthorization(t *testing.T) {
	assert.True(t, IsAuthorization(New(1)))
	assert.True(t, IsAuthorization(fmt.Errorf("get account: %w", New(2))))
	assert.False(t, IsAuthorization(New(3)))
	assert.False(t, IsAuthorization(New(602)))
	assert.False(t, IsAuthorization(fmt.Errorf("plain")))
	assert.False(t, IsAuthorization(nil))
}

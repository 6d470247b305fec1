package codec

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBool(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    bool
		wantErr bool
	}{
		{name: "zero", raw: `0`, want: false},
		{name: "one", raw: `1`, want: true},
		{name: "numeric string", raw: `"1"`, want: true},
		{name: "two", raw: `2`, wantErr: true},
		{name: "negative", raw: `-1`, wantErr: true},
		{name: "not a number", raw: `"yes"`, wantErr: true},
		{name: "empty string", raw: `""`, wantErr: true},
		{name: "blank string", raw: `" "`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Bool.Decode(json.RawMessage(tt.raw))
			if tt.wantErr {
				var decErr *DecodeError
				require.ErrorAs(t, err, &decErr)
				assert.Equal(t, "boolean", decErr.Kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, v := range []bool{true, false} {
		wire, err := Bool.Encode(v)
		require.NoError(t, err)
		got, err := Bool.Decode(json.RawMessage(FormatWire(wire)))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestDateOnly(t *testing.T) {
	t.Run("unset is zero on the wire", func(t *testing.T) {
		wire, err := DateOnly.Encode(Date{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), wire)

		got, err := DateOnly.Decode(json.RawMessage(`0`))
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("noon UTC", func(t *testing.T) {
		d := NewDate(2024, time.March, 15)
		wire, err := DateOnly.Encode(d)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC).Unix(), wire)

		got, err := DateOnly.Decode(json.RawMessage(FormatWire(wire)))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	})

	t.Run("any time of day decodes to its UTC date", func(t *testing.T) {
		ts := time.Date(2023, time.December, 31, 23, 59, 0, 0, time.UTC).Unix()
		raw, _ := json.Marshal(ts)
		got, err := DateOnly.Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, NewDate(2023, time.December, 31), got)
	})

	t.Run("invalid calendar date", func(t *testing.T) {
		_, err := DateOnly.Encode(NewDate(2023, time.February, 30))
		assert.Error(t, err)
	})
}

func TestDatetime(t *testing.T) {
	wire, err := Datetime.Encode(time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), wire)

	got, err := Datetime.Decode(json.RawMessage(`0`))
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	ts := time.Date(2022, time.June, 1, 8, 30, 15, 0, time.UTC)
	wire, err = Datetime.Encode(ts)
	require.NoError(t, err)
	got, err = Datetime.Decode(json.RawMessage(FormatWire(wire)))
	require.NoError(t, err)
	assert.True(t, ts.Equal(got))
	assert.Equal(t, time.UTC, got.Location())
}

func TestTimeOfDay(t *testing.T) {
	c := NewClock(14, 5, 30)
	wire, err := TimeOfDay.Encode(c)
	require.NoError(t, err)
	got, err := TimeOfDay.Decode(json.RawMessage(FormatWire(wire)))
	require.NoError(t, err)
	assert.Equal(t, c, got)

	// The API sends full timestamps; only the UTC clock part counts.
	ts := time.Date(2020, time.January, 2, 9, 15, 0, 0, time.UTC).Unix()
	raw, _ := json.Marshal(ts)
	got, err = TimeOfDay.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, NewClock(9, 15, 0), got)

	got, err = TimeOfDay.Decode(json.RawMessage(`0`))
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = TimeOfDay.Encode(NewClock(25, 0, 0))
	assert.Error(t, err)
}

func TestListID(t *testing.T) {
	wire, err := ListID.Encode(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), wire)

	got, err := ListID.Decode(json.RawMessage(`"0"`))
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)

	got, err = ListID.Decode(json.RawMessage(`123456`))
	require.NoError(t, err)
	assert.Equal(t, int64(123456), got)

	_, err = ListID.Encode(-4)
	assert.Error(t, err)
}

func TestTags(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		wire, err := Tags.Encode(nil)
		require.NoError(t, err)
		assert.Equal(t, "", wire)

		got, err := Tags.Decode(json.RawMessage(`""`))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("sorted on encode", func(t *testing.T) {
		in := []string{"b", "a"}
		wire, err := Tags.Encode(in)
		require.NoError(t, err)
		assert.Equal(t, "a, b", wire)
		assert.Equal(t, []string{"b", "a"}, in, "input must not be reordered")
	})

	t.Run("split and trimmed on decode", func(t *testing.T) {
		got, err := Tags.Decode(json.RawMessage(`"z, a, b, c"`))
		require.NoError(t, err)
		assert.Equal(t, []string{"z", "a", "b", "c"}, got)
		assert.True(t, TagsEqual(got, []string{"a", "b", "c", "z"}))
	})

	t.Run("round trip is set equal", func(t *testing.T) {
		in := []string{"work", "errand", "home"}
		wire, err := Tags.Encode(in)
		require.NoError(t, err)
		raw, _ := json.Marshal(wire)
		got, err := Tags.Decode(raw)
		require.NoError(t, err)
		assert.True(t, TagsEqual(in, got))
	})
}

func TestTagsEqual(t *testing.T) {
	assert.True(t, TagsEqual(nil, []string{}))
	assert.True(t, TagsEqual([]string{"a", "b"}, []string{"b", "a"}))
	assert.False(t, TagsEqual([]string{"a"}, []string{"a", "b"}))
	assert.False(t, TagsEqual([]string{"a", "c"}, []string{"a", "b"}))
}

type color int

func TestEnum(t *testing.T) {
	colors := NewEnum[color]("color", 0, 1, 2)

	wire, err := colors.Encode(2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), wire)

	got, err := colors.Decode(json.RawMessage(`1`))
	require.NoError(t, err)
	assert.Equal(t, color(1), got)

	_, err = colors.Decode(json.RawMessage(`7`))
	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, "color", decErr.Kind)
	assert.Equal(t, "7", decErr.Raw)

	_, err = colors.Encode(9)
	assert.Error(t, err)

	for _, raw := range []string{`""`, `"  "`} {
		_, err = colors.Decode(json.RawMessage(raw))
		require.ErrorAs(t, err, &decErr, raw)
		assert.Equal(t, "empty value", decErr.Reason)
	}
}

func TestDecodeInt(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: `42`, want: 42},
		{raw: `"42"`, want: 42},
		{raw: `""`, want: 0},
		{raw: `42.0`, want: 42},
		{raw: `42.5`, wantErr: true},
		{raw: `1e300`, wantErr: true},
		{raw: `-1e300`, wantErr: true},
		{raw: `9.3e18`, wantErr: true},
		{raw: `null`, wantErr: true},
		{raw: `"4x"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Int.Decode(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBoundedString(t *testing.T) {
	c := BoundedString(5)
	_, err := c.Encode("hello")
	assert.NoError(t, err)
	_, err = c.Encode("hello!")
	assert.Error(t, err)
}

func TestParseDateAndClock(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = ParseDate("2024-02-30")
	assert.Error(t, err)

	c, err := ParseClock("07:45")
	require.NoError(t, err)
	assert.Equal(t, "07:45:00", c.String())
}

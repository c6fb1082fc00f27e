package record

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novaheap/internal/storage/common"
)

func makeTestSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema(
		[]FieldType{IntType, StringType(16), IntType},
		[]string{"id", "name", "age"},
	)
	require.NoError(t, err)
	return s
}

func TestSchema_Basics(t *testing.T) {
	s := makeTestSchema(t)

	require.Equal(t, 3, s.NumFields())
	require.Equal(t, 4+(4+16)+4, s.Size())

	name, err := s.FieldName(1)
	require.NoError(t, err)
	require.Equal(t, "name", name)

	ft, err := s.FieldType(1)
	require.NoError(t, err)
	require.Equal(t, StringType(16), ft)

	_, err = s.FieldType(3)
	require.ErrorIs(t, err, ErrNoSuchField)

	i, err := s.IndexOf("age")
	require.NoError(t, err)
	require.Equal(t, 2, i)

	_, err = s.IndexOf("missing")
	require.ErrorIs(t, err, ErrNoSuchField)
}

func TestSchema_NewSchemaErrors(t *testing.T) {
	_, err := NewSchema(nil, nil)
	require.ErrorIs(t, err, ErrEmptySchema)

	_, err = NewSchema([]FieldType{IntType}, []string{"a", "b"})
	require.ErrorIs(t, err, ErrSchemaMismatch)

	s, err := NewSchema([]FieldType{IntType, IntType}, nil)
	require.NoError(t, err)
	name, _ := s.FieldName(0)
	require.Equal(t, "", name)
}

func TestSchema_EqualIgnoresNames(t *testing.T) {
	a, _ := NewSchema([]FieldType{IntType, StringType(8)}, []string{"x", "y"})
	b, _ := NewSchema([]FieldType{IntType, StringType(8)}, []string{"p", "q"})
	c, _ := NewSchema([]FieldType{IntType, StringType(9)}, []string{"x", "y"})
	d, _ := NewSchema([]FieldType{IntType}, []string{"x"})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.False(t, a.Equal(nil))
}

func TestSchema_PrefixAndMerge(t *testing.T) {
	s := makeTestSchema(t)
	p := s.WithPrefix("u")

	name, _ := p.FieldName(0)
	require.Equal(t, "u.id", name)
	require.True(t, p.Equal(s))

	// unqualified lookup still resolves against qualified names
	i, err := p.IndexOf("name")
	require.NoError(t, err)
	require.Equal(t, 1, i)

	m := MergeSchemas(s, p)
	require.Equal(t, 6, m.NumFields())
	require.Equal(t, 2*s.Size(), m.Size())
	name, _ = m.FieldName(3)
	require.Equal(t, "u.id", name)
}

func TestTuple_SetTypeChecks(t *testing.T) {
	s := makeTestSchema(t)
	tp := NewTuple(s)

	require.NoError(t, tp.Set(0, Int(7)))
	err := tp.Set(1, Int(3))
	require.ErrorIs(t, err, ErrSchemaMismatch)

	err = tp.Set(5, Int(1))
	require.ErrorIs(t, err, ErrNoSuchField)

	v, err := tp.Value(1)
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestTuple_Locator(t *testing.T) {
	s := makeTestSchema(t)
	tp := NewTuple(s)

	_, ok := tp.Locator()
	require.False(t, ok)

	loc := common.RecordLocator{Page: common.PageID{Table: 9, PageNo: 2}, Slot: 5}
	tp.SetLocator(loc)
	got, ok := tp.Locator()
	require.True(t, ok)
	require.Equal(t, loc, got)

	c := tp.Clone()
	tp.ClearLocator()
	got, ok = c.Locator()
	require.True(t, ok)
	require.Equal(t, loc, got)
}

func TestTuple_StringAndMerge(t *testing.T) {
	s := makeTestSchema(t)
	a, err := NewTupleWith(s, Int(1), String("bob"), Int(30))
	require.NoError(t, err)
	require.Equal(t, "1\tbob\t30", a.String())

	m := MergeTuples(a, a)
	require.Equal(t, 6, m.Schema().NumFields())
	require.Equal(t, "1\tbob\t30\t1\tbob\t30", m.String())

	a.ResetSchema(m.Schema())
	v, _ := a.Value(5)
	require.Nil(t, v)
}

func TestRowCodec_RoundTrip(t *testing.T) {
	s := makeTestSchema(t)
	in, err := NewTupleWith(s, Int(-42), String("alice"), Int(1<<30))
	require.NoError(t, err)

	buf := make([]byte, s.Size())
	require.NoError(t, EncodeTuple(in, buf))

	out, err := DecodeTuple(s, buf)
	require.NoError(t, err)
	require.Equal(t, in.Values(), out.Values())
}

func TestRowCodec_PadsAndOverwrites(t *testing.T) {
	s, _ := NewSchema([]FieldType{StringType(8)}, nil)
	buf := make([]byte, s.Size())
	for i := range buf {
		buf[i] = 0xFF
	}

	tp, _ := NewTupleWith(s, String("ab"))
	require.NoError(t, EncodeTuple(tp, buf))
	require.Equal(t, []byte{2, 0, 0, 0, 'a', 'b', 0, 0, 0, 0, 0, 0}, buf)
}

func TestRowCodec_Errors(t *testing.T) {
	s := makeTestSchema(t)

	tp := NewTuple(s)
	_ = tp.Set(0, Int(1))
	err := EncodeTuple(tp, make([]byte, s.Size()))
	require.ErrorIs(t, err, ErrUnsetField)

	full, _ := NewTupleWith(s, Int(1), String("x"), Int(2))
	err = EncodeTuple(full, make([]byte, s.Size()-1))
	require.ErrorIs(t, err, ErrBadBuffer)

	long, _ := NewTupleWith(s, Int(1), String("this string is far too long"), Int(2))
	err = EncodeTuple(long, make([]byte, s.Size()))
	require.ErrorIs(t, err, ErrValueTooLong)

	_, err = DecodeTuple(s, make([]byte, 3))
	require.ErrorIs(t, err, ErrBadBuffer)

	bad := make([]byte, s.Size())
	bad[4] = 200 // string length beyond MaxLen
	_, err = DecodeTuple(s, bad)
	require.True(t, errors.Is(err, ErrBadBuffer))
}

func TestValue_Compare(t *testing.T) {
	cases := []struct {
		a, b Value
		op   Op
		want bool
	}{
		{Int(1), Int(2), LessThan, true},
		{Int(2), Int(2), LessThanOrEq, true},
		{Int(3), Int(2), GreaterThan, true},
		{Int(2), Int(3), GreaterThanOrEq, false},
		{Int(2), Int(2), Equals, true},
		{Int(2), Int(3), NotEquals, true},
		{Int(2), Int(2), Like, true},
		{String("apple"), String("banana"), LessThan, true},
		{String("pineapple"), String("apple"), Like, true},
		{String("pear"), String("apple"), Like, false},
	}
	for _, c := range cases {
		got, err := c.a.Compare(c.op, c.b)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%v %v %v", c.a, c.op, c.b)
	}

	_, err := Int(1).Compare(Equals, String("1"))
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestParseHelpers(t *testing.T) {
	op, err := ParseOp("<=")
	require.NoError(t, err)
	require.Equal(t, LessThanOrEq, op)
	_, err = ParseOp("~")
	require.Error(t, err)

	ft, err := ParseFieldType("STRING", 0)
	require.NoError(t, err)
	require.Equal(t, StringType(DefaultStringLen), ft)

	v, err := ParseValue(IntType, " 12 ")
	require.NoError(t, err)
	require.Equal(t, Int(12), v)

	_, err = ParseValue(IntType, "x")
	require.Error(t, err)

	_, err = ParseValue(StringType(2), "abc")
	require.ErrorIs(t, err, ErrValueTooLong)
}

func TestTuple_Rebind(t *testing.T) {
	s := makeTestSchema(t)
	tp, _ := NewTupleWith(s, Int(1), String("a"), Int(2))

	require.NoError(t, tp.Rebind(s.WithPrefix("u")))
	name, _ := tp.Schema().FieldName(0)
	require.Equal(t, "u.id", name)

	other, _ := NewSchema([]FieldType{IntType}, nil)
	require.ErrorIs(t, tp.Rebind(other), ErrSchemaMismatch)
}

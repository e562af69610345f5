package card

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runeboard/runeboard-client/internal/game/grid"
)

func TestDecode_Monster(t *testing.T) {
	c, err := Decode([]byte(`{
		"id": "ember_wolf", "name": "Ember Wolf", "owner": "1", "type": "monster",
		"mana": 3, "role": "red",
		"movement": {"forward": 2, "left": "any", "back": 0}
	}`))
	require.NoError(t, err)

	m, ok := c.(*Monster)
	require.True(t, ok, "expected *Monster, got %T", c)
	assert.Equal(t, KindMonster, m.Kind())
	assert.Equal(t, "Ember Wolf", m.Name)
	assert.Equal(t, grid.SeatOne, m.Owner)
	assert.Equal(t, 3, m.Mana)
	assert.Equal(t, Range(2), m.Movement.Range(grid.Forward))
	assert.Equal(t, RangeAny, m.Movement.Range(grid.Left))
	assert.True(t, m.Movement.CanStep(grid.Left))
	assert.False(t, m.Movement.CanStep(grid.Back))
	assert.False(t, m.Movement.CanStep(grid.Right))
}

func TestDecode_SorceryAndLand(t *testing.T) {
	c, err := Decode([]byte(`{"id":"s1","type":"sorcery","owner":2,"mana":4,"role":"blue","activation_needs":["forward","back-left"]}`))
	require.NoError(t, err)
	s, ok := c.(*Sorcery)
	require.True(t, ok)
	assert.Equal(t, grid.SeatTwo, s.Owner)
	assert.Equal(t, []grid.Direction{grid.Forward, grid.BackLeft}, s.RequiredDirections())

	c, err = Decode([]byte(`{"id":"l1","type":"land","owner":"1","role":"red","creation_needs":["back"]}`))
	require.NoError(t, err)
	l, ok := c.(*Land)
	require.True(t, ok)
	assert.Equal(t, 0, l.Mana)
	assert.True(t, l.HasNeed(grid.Back))
	assert.False(t, l.HasNeed(grid.Forward))

	var _ Supported = s
	var _ Supported = l
}

func TestDecode_NullAndUnknown(t *testing.T) {
	c, err := Decode([]byte(`null`))
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = Decode([]byte(`{"id":"x","name":"Relic","type":"artifact","owner":"2","mana":4}`))
	require.NoError(t, err)
	u, ok := c.(*Unknown)
	require.True(t, ok)
	assert.Equal(t, KindUnknown, u.Kind())
	assert.Equal(t, "artifact", u.Type)
	assert.Equal(t, Info{ID: "x", Name: "Relic", Owner: grid.SeatTwo, Mana: 4}, u.Base())
	assert.ErrorIs(t, u.Err, ErrUnknownCardType)

	_, err = Decode([]byte(`{"id":7}`))
	assert.Error(t, err)

	u, ok = DecodeLenient([]byte(`{"id":7}`)).(*Unknown)
	require.True(t, ok)
	assert.Error(t, u.Err)
	assert.Empty(t, u.Type)
}

func TestDecode_BadRangeOnlyDropsThatDirection(t *testing.T) {
	c, err := Decode([]byte(`{"id":"m","type":"monster","owner":"1","movement":{"forward":"3","back":2,"left":true,"right":"any"}}`))
	require.NoError(t, err)
	m, ok := c.(*Monster)
	require.True(t, ok)
	assert.Equal(t, Movement{grid.Back: 2, grid.Right: RangeAny}, m.Movement)
	assert.False(t, m.Movement.CanStep(grid.Forward))

	u, ok := DecodeLenient([]byte(`{"id":"m","type":"monster","movement":"fast"}`)).(*Unknown)
	require.True(t, ok, "a movement that is not an object fails the card, not the frame")
	assert.Error(t, u.Err)
}

func TestRange_JSON(t *testing.T) {
	var r Range
	require.NoError(t, json.Unmarshal([]byte(`"any"`), &r))
	assert.Equal(t, RangeAny, r)
	assert.Equal(t, 7, r.Steps(7))

	require.NoError(t, json.Unmarshal([]byte(`2`), &r))
	assert.Equal(t, 2, r.Steps(7))

	assert.Error(t, json.Unmarshal([]byte(`"far"`), &r))

	data, err := json.Marshal(Movement{grid.Forward: RangeAny})
	require.NoError(t, err)
	assert.JSONEq(t, `{"forward":"any"}`, string(data))
}

func TestList_UnmarshalAndFind(t *testing.T) {
	var l List
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id":"a","type":"monster","owner":"1"},
		{"id":"b","type":"land","owner":"1"}
	]`), &l))
	require.Len(t, l, 2)

	c, idx, ok := l.Find("b")
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, KindLand, c.Kind())

	_, _, ok = l.Find("zzz")
	assert.False(t, ok)

	require.NoError(t, json.Unmarshal([]byte(`[{"id":"a","type":"monster"},{"id":"c","type":"bogus"},"junk",null]`), &l))
	require.Len(t, l, 4)
	assert.Equal(t, KindMonster, l[0].Kind())
	assert.Nil(t, l[3])
	unknowns := l.Unknowns()
	require.Len(t, unknowns, 2)
	assert.Equal(t, "c", unknowns[0].ID)
	assert.ErrorIs(t, unknowns[0].Err, ErrUnknownCardType)
	assert.NotErrorIs(t, unknowns[1].Err, ErrUnknownCardType)

	_, idx, ok = l.Find("c")
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	assert.Error(t, json.Unmarshal([]byte(`{"id":"a"}`), &l))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Fire Bolt", DisplayName("fire_bolt"))
	assert.Equal(t, "Tide", DisplayName("tide"))
	assert.Equal(t, "", DisplayName(""))
}
